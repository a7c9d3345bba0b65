// cmd/distribution-engine/main.go
package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	appconfig "github.com/festivalpos/distribution-engine/internal/distribution/config"
	"github.com/festivalpos/distribution-engine/internal/distribution/di"
	"github.com/festivalpos/distribution-engine/pkg/middleware"

	applogger "github.com/festivalpos/distribution-engine/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.distribution.yaml", "path to config file")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := applogger.NewZapLogger()
	log.Info("starting distribution engine")

	cfg, err := appconfig.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("failed to load configuration", "error", err)
	}

	container, err := di.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to wire dependencies", "error", err)
	}
	defer func() {
		if err := container.Mongo.Disconnect(context.Background()); err != nil {
			log.Error("failed to disconnect mongo client", "error", err)
		}
	}()

	if err := container.Consumer.Start(ctx); err != nil {
		log.Fatal("failed to start kafka consumer", "error", err)
	}
	defer func() {
		if err := container.Consumer.Close(); err != nil {
			log.Error("failed to close kafka consumer", "error", err)
		}
		if err := container.Producer.Close(); err != nil {
			log.Error("failed to close kafka producer", "error", err)
		}
	}()

	httpServer := initHTTPServer(cfg.Server, container, log)
	go func() {
		log.Info("starting fiber server", "addr", cfg.Server.Address)
		if err := httpServer.Listen(cfg.Server.Address); err != nil {
			log.Fatal("http server failed to start", "error", err)
		}
	}()

	grpcServer := initGRPCServer(cfg.GRPC, container, log)

	handleGracefulShutdown(cancel, httpServer, grpcServer, log)
}

// initHTTPServer wires the distributeOrder RPC and health endpoints onto a
// fiber app, the way the teacher's initHTTPServer wires OrderHandler.
func initHTTPServer(cfg appconfig.ServerConfig, container *di.Container, log applogger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			log.Error("http error", "status", code, "error", err.Error())
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(middleware.CorrelationID(log))
	app.Use(middleware.RequestLogger(log))
	app.Use(middleware.SecurityHeaders())
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, err interface{}) {
			log.Error("recovered from panic", "error", err, "stack", string(debug.Stack()))
			c.Status(fiber.StatusInternalServerError).SendString("internal server error")
		},
	}))

	for path, handler := range container.Health.GetHandlers() {
		app.Get(path, handler)
	}

	api := app.Group("/api", middleware.Authenticate(container.Tokens, container.APIKeyHash))
	container.HTTP.RegisterRoutes(api)

	return app
}

// initGRPCServer advertises grpc_health_v1 and server reflection, both
// pre-built in grpc-go; the engine has no hand-written protobuf surface
// (SPEC_FULL.md §3.1).
func initGRPCServer(cfg appconfig.GRPCConfig, container *di.Container, log applogger.Logger) *grpc.Server {
	lis, err := net.Listen("tcp", "127.0.0.1:"+cfg.Port)
	if err != nil {
		log.Fatal("failed to listen for grpc", "error", err)
	}

	s := grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(s, container.Health)
	reflection.Register(s)

	log.Info("starting grpc health server", "port", cfg.Port)
	go func() {
		if err := s.Serve(lis); err != nil {
			log.Fatal("failed to serve grpc", "error", err)
		}
	}()

	return s
}

func handleGracefulShutdown(cancel context.CancelFunc, httpServer *fiber.App, grpcServer *grpc.Server, log applogger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down servers...")

	if err := httpServer.Shutdown(); err != nil {
		log.Error("error during http server shutdown", "error", err)
	}

	grpcServer.GracefulStop()

	cancel()
	log.Info("shutdown complete")
}
