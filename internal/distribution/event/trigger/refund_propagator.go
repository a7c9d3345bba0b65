package trigger

import (
	"context"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/repository"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/service"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
	"github.com/festivalpos/distribution-engine/pkg/logger"
)

// NotificationUpdate is the before/after envelope onNotificationUpdate
// delivers (spec.md §4.6).
type NotificationUpdate struct {
	EventID        valueobject.ID
	NotificationID valueobject.ID
	BeforeStatus   valueobject.NotificationStatus
	AfterStatus    valueobject.NotificationStatus
	OrderID        valueobject.ID
	ItemIDs        []valueobject.ID
}

// RefundPropagator implements spec.md §4.6: on a refund notification
// transition, it cancels matching line items across the main order and its
// distributed copies and recomputes totals.
type RefundPropagator struct {
	gateway repository.Gateway
	log     logger.Logger
}

// NewRefundPropagator constructs a RefundPropagator.
func NewRefundPropagator(gateway repository.Gateway, log logger.Logger) *RefundPropagator {
	return &RefundPropagator{gateway: gateway, log: log}
}

// Handle runs the refund-edge guard and, if it passes, cancels and
// recomputes totals everywhere orderID appears.
func (p *RefundPropagator) Handle(ctx context.Context, w NotificationUpdate) error {
	if w.BeforeStatus == valueobject.NotificationRefund || w.AfterStatus != valueobject.NotificationRefund {
		return nil
	}
	if w.OrderID == "" || len(w.ItemIDs) == 0 {
		return nil
	}

	if err := p.gateway.CancelPurchaseItems(ctx, w.EventID, w.OrderID, w.ItemIDs); err != nil {
		return err
	}
	if err := p.gateway.RecomputePurchaseTotal(ctx, w.EventID, w.OrderID); err != nil {
		return err
	}

	refs, err := p.gateway.ListDistributedOrdersByID(ctx, w.EventID, w.OrderID)
	if err != nil {
		return err
	}

	wanted := make(map[valueobject.ID]struct{}, len(w.ItemIDs))
	for _, id := range w.ItemIDs {
		wanted[id] = struct{}{}
	}

	for _, ref := range refs {
		items, err := p.gateway.ListDistributedOrderItems(ctx, w.EventID, ref.POSID, w.OrderID)
		if err != nil {
			p.log.Error("failed to read distributed order items for refund propagation, continuing with siblings", "posId", ref.POSID, "orderId", w.OrderID, "error", err)
			continue
		}

		var keys []string
		for _, it := range items {
			if _, ok := wanted[it.ItemID]; !ok {
				continue
			}
			if _, err := service.LineItemStateMachine.FireEvent(it.Status, service.ItemEventCancel, nil); err != nil {
				p.log.Warn("item not eligible for cancellation, skipping", "posId", ref.POSID, "orderId", w.OrderID, "itemKey", it.Key(), "status", it.Status, "error", err)
				continue
			}
			keys = append(keys, it.Key())
		}
		if len(keys) == 0 {
			continue
		}

		if err := p.gateway.MergeDistributedOrderItemStatus(ctx, w.EventID, ref.POSID, w.OrderID, keys, valueobject.LineItemCanceled, true); err != nil {
			p.log.Error("failed to cancel distributed order items, continuing with siblings", "posId", ref.POSID, "orderId", w.OrderID, "error", err)
			continue
		}
		if err := p.gateway.RecomputeDistributedOrderTotal(ctx, w.EventID, ref.POSID, w.OrderID, w.ItemIDs); err != nil {
			p.log.Error("failed to recompute distributed order total, continuing with siblings", "posId", ref.POSID, "orderId", w.OrderID, "error", err)
		}
	}
	return nil
}
