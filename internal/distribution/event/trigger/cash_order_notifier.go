package trigger

import (
	"context"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/entity"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/service"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
	"github.com/festivalpos/distribution-engine/pkg/logger"
)

// OrderCreate is the envelope onOrderCreate delivers (spec.md §6.3,
// "cash-payment notification side channel; peripheral").
type OrderCreate struct {
	EventID        valueobject.ID
	OrderID        valueobject.ID
	PaymentMethod  string
	PointOfService string
}

// CashOrderNotifier emits an informational notification for cash-paid
// orders so front-of-house staff know to collect payment, a peripheral
// concern the spec names as a trigger registration but does not specify
// further (spec.md §6.3 onOrderCreate).
type CashOrderNotifier struct {
	notifications *service.NotificationService
	log           logger.Logger
}

// NewCashOrderNotifier constructs a CashOrderNotifier.
func NewCashOrderNotifier(notifications *service.NotificationService, log logger.Logger) *CashOrderNotifier {
	return &CashOrderNotifier{notifications: notifications, log: log}
}

// Handle emits the cash-collection notification, if applicable.
func (n *CashOrderNotifier) Handle(ctx context.Context, w OrderCreate) error {
	if w.PaymentMethod != "cash" {
		return nil
	}

	_, err := n.notifications.CreateNotification(ctx, w.EventID, entity.Notification{
		Title:          "Bargeld kassieren",
		Message:        "Zahlung bei Übergabe einsammeln",
		PointOfService: w.PointOfService,
		OrderID:        w.OrderID,
		PaymentMethod:  w.PaymentMethod,
		Severity:       valueobject.SeverityInfo,
		Status:         valueobject.NotificationCreated,
	})
	if err != nil {
		n.log.Error("failed to emit cash order notification", "orderId", w.OrderID, "error", err)
	}
	return err
}
