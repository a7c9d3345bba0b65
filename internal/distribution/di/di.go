// Package di wires the engine's concrete dependencies together. The teacher
// generates this wiring with google/wire (see cmd/order_service's
// wireinject-tagged provider file); that codegen step needs the wire CLI,
// which this build cannot run, so the providers below are hand-written in
// the same shape the teacher's own cmd/order_service/main.go falls back to
// (initRepositories/initUsecases) when it isn't going through wire_gen.go.
package di

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongorepo "github.com/festivalpos/distribution-engine/internal/distribution/adapter/repository/mongo"
	httpctl "github.com/festivalpos/distribution-engine/internal/distribution/adapter/controller/http"
	"github.com/festivalpos/distribution-engine/internal/distribution/adapter/event/consumer"
	"github.com/festivalpos/distribution-engine/internal/distribution/adapter/event/producer"
	"github.com/festivalpos/distribution-engine/internal/distribution/config"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/repository"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/service"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
	"github.com/festivalpos/distribution-engine/internal/distribution/event/trigger"
	"github.com/festivalpos/distribution-engine/internal/distribution/infrastructure/identifier"
	infratime "github.com/festivalpos/distribution-engine/internal/distribution/infrastructure/time"
	"github.com/festivalpos/distribution-engine/internal/distribution/usecase/command"
	"github.com/festivalpos/distribution-engine/pkg/health"
	"github.com/festivalpos/distribution-engine/pkg/jwt_service"
	"github.com/festivalpos/distribution-engine/pkg/logger"
)

// Container holds every wired component main.go needs to start and stop
// the engine.
type Container struct {
	Mongo         *mongo.Client
	Gateway       repository.Gateway
	Scheduler     *command.DistributionScheduler
	Retry         *command.RetryDistribution
	Notifications *service.NotificationService
	Tokens        jwt_service.TokenService
	APIKeyHash    string
	Health        *health.Health
	HTTP          *httpctl.DistributionHandler
	Producer      *producer.KafkaProducer
	Consumer      *consumer.KafkaConsumer
}

// ProvideLogger builds the application logger.
func ProvideLogger() logger.Logger {
	return logger.NewZapLogger()
}

// ProvideIDGenerator builds the domain id generator.
func ProvideIDGenerator() valueobject.IDGenerator {
	return identifier.NewUUIDGenerator()
}

// ProvideTimeProvider builds the domain clock.
func ProvideTimeProvider() valueobject.TimeProvider {
	return infratime.NewSystemTimeProvider()
}

// ProvideMongoClient connects to the document store.
func ProvideMongoClient(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.PoolSize).
		SetConnectTimeout(cfg.ConnTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// ProvideGateway builds the store gateway backed by db.
func ProvideGateway(db *mongo.Database, ids valueobject.IDGenerator, cfg config.EngineConfig) repository.Gateway {
	return mongorepo.NewGateway(db, ids, cfg.CanonicalItemsCollection)
}

// ProvideTokenService builds the JWT service securing the distributeOrder
// RPC (spec.md §6.1).
func ProvideTokenService(cfg config.AuthConfig) jwt_service.TokenService {
	return jwt_service.NewJWTService(jwt_service.Config{
		SecretKey: cfg.JWTSigningKey,
		Issuer:    "distribution-engine",
	})
}

// ProvideNotificationService builds the deduplicated notification writer
// (spec.md §4.7) shared by the Availability Reconciler and the cash-order
// notifier.
func ProvideNotificationService(gw repository.Gateway, clock valueobject.TimeProvider) *service.NotificationService {
	return service.NewNotificationService(gw, clock)
}

// ProvideScheduler builds the Distribution Scheduler (spec.md §4.3).
func ProvideScheduler(gw repository.Gateway, clock valueobject.TimeProvider, log logger.Logger) *command.DistributionScheduler {
	return command.NewDistributionScheduler(gw, clock, log)
}

// ProvideRetryDistribution builds the manual retry usecase (SPEC_FULL.md §5).
func ProvideRetryDistribution(gw repository.Gateway, scheduler *command.DistributionScheduler, clock valueobject.TimeProvider, log logger.Logger) *command.RetryDistribution {
	return command.NewRetryDistribution(gw, scheduler, clock, log)
}

// ProvideCreateAndDistribute builds the distributeOrder RPC's
// purchase-creation usecase (spec.md §6.1).
func ProvideCreateAndDistribute(gw repository.Gateway, ids valueobject.IDGenerator, scheduler *command.DistributionScheduler, clock valueobject.TimeProvider, log logger.Logger) *command.CreateAndDistributeOrder {
	return command.NewCreateAndDistributeOrder(gw, ids, scheduler, clock, log)
}

// ProvideHTTPHandler builds the distributeOrder RPC controller.
func ProvideHTTPHandler(create *command.CreateAndDistributeOrder, retry *command.RetryDistribution, log logger.Logger) *httpctl.DistributionHandler {
	return httpctl.NewDistributionHandler(create, retry, log)
}

// ProvideHealth builds the combined fiber/gRPC health surface.
func ProvideHealth(log logger.Logger, mongoClient *mongo.Client, kafkaBrokers string) *health.Health {
	return health.NewHealth(log, mongoClient, kafkaBrokers)
}

// ProvideReactors builds the four trigger handlers the Kafka consumer
// dispatches onto (spec.md §6.3).
func ProvideReactors(gw repository.Gateway, scheduler *command.DistributionScheduler, notifications *service.NotificationService, clock valueobject.TimeProvider, log logger.Logger) consumer.Reactors {
	return consumer.Reactors{
		PurchaseOrchestrator:   trigger.NewPurchaseOrchestrator(gw, scheduler, clock, log),
		AvailabilityReconciler: trigger.NewAvailabilityReconciler(gw, notifications, clock, log),
		RefundPropagator:       trigger.NewRefundPropagator(gw, log),
		CashOrderNotifier:      trigger.NewCashOrderNotifier(notifications, log),
	}
}

// ProvideProducer builds a Kafka producer with a writer for each trigger
// topic; the container only holds it and closes it on shutdown.
func ProvideProducer(cfg config.KafkaConfig, log logger.Logger) (*producer.KafkaProducer, error) {
	topics := []string{cfg.Topics.PurchaseWrites, cfg.Topics.PosItemUpdates, cfg.Topics.NotificationUpdates, cfg.Topics.OrderCreates}
	return producer.NewKafkaProducer(cfg.Brokers, topics, log)
}

// ProvideConsumer builds the Kafka consumer dispatching the four trigger
// feeds onto reactors.
func ProvideConsumer(cfg config.KafkaConfig, reactors consumer.Reactors, log logger.Logger) (*consumer.KafkaConsumer, error) {
	topics := consumer.Topics{
		PurchaseWrites:      cfg.Topics.PurchaseWrites,
		PosItemUpdates:      cfg.Topics.PosItemUpdates,
		NotificationUpdates: cfg.Topics.NotificationUpdates,
		OrderCreates:        cfg.Topics.OrderCreates,
	}
	return consumer.NewKafkaConsumer(cfg.Brokers, cfg.GroupID, topics, reactors, log)
}

// Build wires every component described by cfg into a Container.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (*Container, error) {
	mongoClient, err := ProvideMongoClient(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	db := mongoClient.Database(cfg.Mongo.Database)

	ids := ProvideIDGenerator()
	clock := ProvideTimeProvider()
	gw := ProvideGateway(db, ids, cfg.Engine)
	tokens := ProvideTokenService(cfg.Auth)
	notifications := ProvideNotificationService(gw, clock)
	scheduler := ProvideScheduler(gw, clock, log)
	retry := ProvideRetryDistribution(gw, scheduler, clock, log)
	create := ProvideCreateAndDistribute(gw, ids, scheduler, clock, log)
	httpHandler := ProvideHTTPHandler(create, retry, log)
	hc := ProvideHealth(log, mongoClient, cfg.Kafka.Brokers)

	reactors := ProvideReactors(gw, scheduler, notifications, clock, log)

	prod, err := ProvideProducer(cfg.Kafka, log)
	if err != nil {
		return nil, err
	}
	cons, err := ProvideConsumer(cfg.Kafka, reactors, log)
	if err != nil {
		return nil, err
	}

	return &Container{
		Mongo:         mongoClient,
		Gateway:       gw,
		Scheduler:     scheduler,
		Retry:         retry,
		Notifications: notifications,
		Tokens:        tokens,
		APIKeyHash:    cfg.Auth.APIKeyHash,
		Health:        hc,
		HTTP:          httpHandler,
		Producer:      prod,
		Consumer:      cons,
	}, nil
}
