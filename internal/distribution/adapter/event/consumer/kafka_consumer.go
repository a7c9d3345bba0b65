// Package consumer dispatches the store-change feeds spec.md §6.3 describes
// as simulated triggers onto the matching in-process reactor, the way the
// teacher's KafkaConsumer dispatches order-result topics onto the order
// usecase.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/segmentio/kafka-go"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
	"github.com/festivalpos/distribution-engine/internal/distribution/event/trigger"
	"github.com/festivalpos/distribution-engine/pkg/logger"
)

// Topics names the four feeds the engine consumes (spec.md §6.3).
type Topics struct {
	PurchaseWrites      string
	PosItemUpdates      string
	NotificationUpdates string
	OrderCreates        string
}

// Reactors groups the trigger handlers the consumer dispatches onto.
type Reactors struct {
	PurchaseOrchestrator *trigger.PurchaseOrchestrator
	AvailabilityReconciler *trigger.AvailabilityReconciler
	RefundPropagator     *trigger.RefundPropagator
	CashOrderNotifier    *trigger.CashOrderNotifier
}

// KafkaConsumer reads every configured topic on its own goroutine and
// dispatches each message to the matching reactor.
type KafkaConsumer struct {
	readers  []*kafka.Reader
	reactors Reactors
	log      logger.Logger
	wg       sync.WaitGroup
}

// NewKafkaConsumer constructs a KafkaConsumer with one reader per topic.
func NewKafkaConsumer(brokers, groupID string, topics Topics, reactors Reactors, log logger.Logger) (*KafkaConsumer, error) {
	if brokers == "" {
		return nil, fmt.Errorf("kafka consumer: no brokers configured")
	}
	addrs := strings.Split(brokers, ",")

	newReader := func(topic string) *kafka.Reader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers: addrs,
			GroupID: groupID,
			Topic:   topic,
		})
	}

	kc := &KafkaConsumer{
		readers: []*kafka.Reader{
			newReader(topics.PurchaseWrites),
			newReader(topics.PosItemUpdates),
			newReader(topics.NotificationUpdates),
			newReader(topics.OrderCreates),
		},
		reactors: reactors,
		log:      log,
	}
	return kc, nil
}

// purchaseWriteEnvelope mirrors the before/after purchase snapshot the
// store-change feed delivers for onPurchaseWrite (spec.md §4.4).
type purchaseWriteEnvelope struct {
	EventID    valueobject.ID          `json:"eventId"`
	PurchaseID valueobject.ID          `json:"purchaseId"`
	Before     *purchaseSnapshotWire   `json:"before"`
	After      *purchaseSnapshotWire   `json:"after"`
}

type purchaseSnapshotWire struct {
	IsPaid         bool           `json:"isPaid"`
	Distributed    bool           `json:"distributed"`
	ServingPointID valueobject.ID `json:"servingPointId"`
}

func (w purchaseWriteEnvelope) toTrigger() trigger.PurchaseWrite {
	toSnap := func(s *purchaseSnapshotWire) *trigger.PurchaseSnapshot {
		if s == nil {
			return nil
		}
		return &trigger.PurchaseSnapshot{IsPaid: s.IsPaid, Distributed: s.Distributed, ServingPointID: s.ServingPointID}
	}
	return trigger.PurchaseWrite{
		EventID:    w.EventID,
		PurchaseID: w.PurchaseID,
		Before:     toSnap(w.Before),
		After:      toSnap(w.After),
	}
}

// posItemUpdateEnvelope mirrors onPosItemUpdate (spec.md §4.5).
type posItemUpdateEnvelope struct {
	EventID valueobject.ID `json:"eventId"`
	POSID   valueobject.ID `json:"posId"`
	ItemID  valueobject.ID `json:"itemId"`
	Before  *bool          `json:"before"`
	After   *bool          `json:"after"`
}

func (w posItemUpdateEnvelope) toTrigger() trigger.PosItemUpdate {
	return trigger.PosItemUpdate{EventID: w.EventID, POSID: w.POSID, ItemID: w.ItemID, Before: w.Before, After: w.After}
}

// notificationUpdateEnvelope mirrors onNotificationUpdate (spec.md §4.6).
type notificationUpdateEnvelope struct {
	EventID        valueobject.ID                   `json:"eventId"`
	NotificationID valueobject.ID                   `json:"notificationId"`
	BeforeStatus   valueobject.NotificationStatus   `json:"beforeStatus"`
	AfterStatus    valueobject.NotificationStatus   `json:"afterStatus"`
	OrderID        valueobject.ID                   `json:"orderId"`
	ItemIDs        []valueobject.ID                 `json:"itemIds"`
}

func (w notificationUpdateEnvelope) toTrigger() trigger.NotificationUpdate {
	return trigger.NotificationUpdate{
		EventID:        w.EventID,
		NotificationID: w.NotificationID,
		BeforeStatus:   w.BeforeStatus,
		AfterStatus:    w.AfterStatus,
		OrderID:        w.OrderID,
		ItemIDs:        w.ItemIDs,
	}
}

// orderCreateEnvelope mirrors onOrderCreate (spec.md §6.3).
type orderCreateEnvelope struct {
	EventID        valueobject.ID `json:"eventId"`
	OrderID        valueobject.ID `json:"orderId"`
	PaymentMethod  string         `json:"paymentMethod"`
	PointOfService string         `json:"pointOfService"`
}

func (w orderCreateEnvelope) toTrigger() trigger.OrderCreate {
	return trigger.OrderCreate{EventID: w.EventID, OrderID: w.OrderID, PaymentMethod: w.PaymentMethod, PointOfService: w.PointOfService}
}

// Start launches one goroutine per configured topic.
func (kc *KafkaConsumer) Start(ctx context.Context) error {
	handlers := []func(context.Context, kafka.Message) error{
		kc.handlePurchaseWrite,
		kc.handlePosItemUpdate,
		kc.handleNotificationUpdate,
		kc.handleOrderCreate,
	}
	for i, reader := range kc.readers {
		reader, handle := reader, handlers[i]
		kc.wg.Add(1)
		go func() {
			defer kc.wg.Done()
			kc.consumeLoop(ctx, reader, handle)
		}()
	}
	return nil
}

func (kc *KafkaConsumer) consumeLoop(ctx context.Context, reader *kafka.Reader, handle func(context.Context, kafka.Message) error) {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			kc.log.Error("failed to read message", "topic", reader.Config().Topic, "error", err)
			continue
		}
		if err := handle(ctx, msg); err != nil {
			kc.log.Error("failed to handle message", "topic", reader.Config().Topic, "error", err)
		}
	}
}

func (kc *KafkaConsumer) handlePurchaseWrite(ctx context.Context, msg kafka.Message) error {
	var env purchaseWriteEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return fmt.Errorf("unmarshal purchase write: %w", err)
	}
	return kc.reactors.PurchaseOrchestrator.Handle(ctx, env.toTrigger())
}

func (kc *KafkaConsumer) handlePosItemUpdate(ctx context.Context, msg kafka.Message) error {
	var env posItemUpdateEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return fmt.Errorf("unmarshal pos item update: %w", err)
	}
	return kc.reactors.AvailabilityReconciler.Handle(ctx, env.toTrigger())
}

func (kc *KafkaConsumer) handleNotificationUpdate(ctx context.Context, msg kafka.Message) error {
	var env notificationUpdateEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return fmt.Errorf("unmarshal notification update: %w", err)
	}
	return kc.reactors.RefundPropagator.Handle(ctx, env.toTrigger())
}

func (kc *KafkaConsumer) handleOrderCreate(ctx context.Context, msg kafka.Message) error {
	var env orderCreateEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return fmt.Errorf("unmarshal order create: %w", err)
	}
	return kc.reactors.CashOrderNotifier.Handle(ctx, env.toTrigger())
}

// Close stops every reader and waits for its goroutine to exit.
func (kc *KafkaConsumer) Close() error {
	var firstErr error
	for _, r := range kc.readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	kc.wg.Wait()
	return firstErr
}
