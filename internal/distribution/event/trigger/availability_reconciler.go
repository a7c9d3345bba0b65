package trigger

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/entity"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/repository"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/service"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
	"github.com/festivalpos/distribution-engine/pkg/apperr"
	"github.com/festivalpos/distribution-engine/pkg/logger"
)

// PosItemUpdate is the before/after envelope onPosItemUpdate delivers
// (spec.md §4.5). Absent booleans are treated as true.
type PosItemUpdate struct {
	EventID valueobject.ID
	POSID   valueobject.ID
	ItemID  valueobject.ID
	Before  *bool
	After   *bool
}

// AvailabilityReconciler implements spec.md §4.5: on a POS-local item flag
// change, it finds a substitute POS, migrates open-order items, recomputes
// the canonical availability flag, and emits refund notifications or
// cancellation markers when no substitute exists.
type AvailabilityReconciler struct {
	gateway       repository.Gateway
	notifications *service.NotificationService
	clock         valueobject.TimeProvider
	log           logger.Logger
}

// NewAvailabilityReconciler constructs an AvailabilityReconciler.
func NewAvailabilityReconciler(gateway repository.Gateway, notifications *service.NotificationService, clock valueobject.TimeProvider, log logger.Logger) *AvailabilityReconciler {
	return &AvailabilityReconciler{gateway: gateway, notifications: notifications, clock: clock, log: log}
}

func boolOrTrue(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}

// Handle dispatches to Case A (reactivation) or Case B (deactivation).
func (r *AvailabilityReconciler) Handle(ctx context.Context, w PosItemUpdate) error {
	before := boolOrTrue(w.Before)
	after := boolOrTrue(w.After)
	if before == after {
		return nil
	}
	if after {
		return r.handleReactivated(ctx, w)
	}
	return r.handleDeactivated(ctx, w)
}

func (r *AvailabilityReconciler) handleReactivated(ctx context.Context, w PosItemUpdate) error {
	if err := r.gateway.SetCanonicalItemAvailability(ctx, w.EventID, w.ItemID, true); err != nil {
		return err
	}
	return r.syncGlobalAvailability(ctx, w.EventID, w.ItemID)
}

// syncGlobalAvailability implements spec.md §4.5.1.
func (r *AvailabilityReconciler) syncGlobalAvailability(ctx context.Context, eventID, itemID valueobject.ID) error {
	posList, err := r.gateway.ListPOS(ctx, eventID)
	if err != nil {
		return err
	}

	available := false
	for _, p := range posList {
		item, err := r.gateway.GetPOSItem(ctx, eventID, p.ID, itemID)
		if err != nil {
			if apperr.KindOf(err) == apperr.NotFound {
				continue
			}
			return err
		}
		if item.IsAvailable() {
			available = true
			break
		}
	}

	return r.gateway.SetCanonicalItemAvailability(ctx, eventID, itemID, available)
}

type substituteCandidate struct {
	posID     valueobject.ID
	openCount int
}

func (r *AvailabilityReconciler) handleDeactivated(ctx context.Context, w PosItemUpdate) error {
	posList, err := r.gateway.ListPOS(ctx, w.EventID)
	if err != nil {
		return err
	}

	var candidates []substituteCandidate
	for _, q := range posList {
		if q.ID == w.POSID {
			continue
		}
		item, err := r.gateway.GetPOSItem(ctx, w.EventID, q.ID, w.ItemID)
		if err != nil {
			if apperr.KindOf(err) == apperr.NotFound {
				continue
			}
			return err
		}
		if !item.IsAvailable() {
			continue
		}
		count, err := r.gateway.CountOpenOrders(ctx, w.EventID, q.ID)
		if err != nil {
			return err
		}
		candidates = append(candidates, substituteCandidate{posID: q.ID, openCount: count})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].openCount < candidates[j].openCount
	})

	// Process-local memoized global-availability cache for this call,
	// forcibly treating the triggering item as unavailable even before its
	// own write lands (spec.md §4.5.2, §5 "Global availability cache").
	cache := map[valueobject.ID]bool{w.ItemID: false}
	globalAvailable := func(id valueobject.ID) bool {
		if v, ok := cache[id]; ok {
			return v
		}
		item, err := r.gateway.GetCanonicalItem(ctx, w.EventID, id)
		v := err == nil && item.IsAvailable
		cache[id] = v
		return v
	}

	if len(candidates) == 0 {
		if err := r.gateway.SetCanonicalItemAvailability(ctx, w.EventID, w.ItemID, false); err != nil {
			return err
		}
		if err := r.emitRefundNotifications(ctx, w.EventID, w.POSID, globalAvailable); err != nil {
			return err
		}
		if err := r.markForCanceling(ctx, w.EventID, w.POSID, w.ItemID); err != nil {
			return err
		}
		return r.syncGlobalAvailability(ctx, w.EventID, w.ItemID)
	}

	dest := candidates[0].posID
	if err := r.migrateOpenOrders(ctx, w.EventID, w.POSID, dest, w.ItemID, globalAvailable); err != nil {
		return err
	}
	return r.syncGlobalAvailability(ctx, w.EventID, w.ItemID)
}

// emitRefundNotifications implements spec.md §4.5.2.
func (r *AvailabilityReconciler) emitRefundNotifications(ctx context.Context, eventID, posID valueobject.ID, globalAvailable func(valueobject.ID) bool) error {
	orders, err := r.gateway.ListOpenDistributedOrders(ctx, eventID, posID)
	if err != nil {
		return err
	}

	for _, order := range orders {
		items, err := r.gateway.ListDistributedOrderItems(ctx, eventID, posID, order.ID)
		if err != nil {
			r.log.Error("failed to read order items for refund notification", "orderId", order.ID, "error", err)
			continue
		}

		refund := decimal.Zero
		var itemIDs []valueobject.ID
		for _, it := range items {
			if globalAvailable(it.ItemID) {
				continue
			}
			refund = refund.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Count))))
			itemIDs = append(itemIDs, it.ItemID)
		}

		if len(itemIDs) == 0 || !refund.IsPositive() {
			continue
		}

		_, err = r.notifications.CreateNotification(ctx, eventID, entity.Notification{
			Title:          "Artikel ist/sind ausverkauft",
			Message:        "Unten stehenden Betrag erstatten und bestätigen",
			PointOfService: order.ServingPointName,
			Price:          refund,
			ItemIDs:        itemIDs,
			OrderID:        order.ID,
			Severity:       valueobject.SeverityError,
			Action:         valueobject.ActionRefund,
			Status:         valueobject.NotificationCreated,
		})
		if err != nil {
			r.log.Error("failed to emit refund notification", "orderId", order.ID, "error", err)
		}
	}
	return nil
}

// markForCanceling implements spec.md §4.5 Case B step 3.
func (r *AvailabilityReconciler) markForCanceling(ctx context.Context, eventID, posID, itemID valueobject.ID) error {
	orders, err := r.gateway.ListOpenDistributedOrders(ctx, eventID, posID)
	if err != nil {
		return err
	}

	for _, order := range orders {
		items, err := r.gateway.ListDistributedOrderItems(ctx, eventID, posID, order.ID)
		if err != nil {
			r.log.Error("failed to read order items for cancellation marking", "orderId", order.ID, "error", err)
			continue
		}

		var keys []string
		for _, it := range items {
			if it.ItemID != itemID {
				continue
			}
			if _, err := service.LineItemStateMachine.FireEvent(it.Status, service.ItemEventMarkForCanceling, nil); err != nil {
				r.log.Warn("item not eligible for canceling mark, skipping", "orderId", order.ID, "itemKey", it.Key(), "status", it.Status, "error", err)
				continue
			}
			keys = append(keys, it.Key())
		}
		if len(keys) == 0 {
			continue
		}

		if err := r.gateway.MergeDistributedOrderItemStatus(ctx, eventID, posID, order.ID, keys, valueobject.LineItemMarkedForCanceling, false); err != nil {
			r.log.Error("failed to mark items for canceling", "orderId", order.ID, "error", err)
		}
	}
	return nil
}

// migrateOpenOrders implements spec.md §4.5.3. A failed migration of one
// order does not abort migration of sibling orders (spec.md §7, "Local
// recovery").
func (r *AvailabilityReconciler) migrateOpenOrders(ctx context.Context, eventID, source, dest, triggeringItem valueobject.ID, globalAvailable func(valueobject.ID) bool) error {
	orders, err := r.gateway.ListOpenDistributedOrders(ctx, eventID, source)
	if err != nil {
		return err
	}

	for _, order := range orders {
		if err := r.migrateOneOrder(ctx, eventID, source, dest, order, triggeringItem, globalAvailable); err != nil {
			r.log.Error("failed to migrate order, continuing with siblings", "orderId", order.ID, "source", source, "dest", dest, "error", err)
		}
	}
	return nil
}

// servedAtSource reports whether itemID is still available at the source
// POS (spec.md §4.5 S4: an item other than the one that triggered migration
// stays at the source as long as the source can still serve it, regardless
// of whether some other POS also carries it).
func (r *AvailabilityReconciler) servedAtSource(ctx context.Context, eventID, source, itemID valueobject.ID) (bool, error) {
	item, err := r.gateway.GetPOSItem(ctx, eventID, source, itemID)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return false, nil
		}
		return false, err
	}
	return item.IsAvailable(), nil
}

func (r *AvailabilityReconciler) migrateOneOrder(ctx context.Context, eventID, source, dest valueobject.ID, order entity.DistributedOrder, triggeringItem valueobject.ID, globalAvailable func(valueobject.ID) bool) error {
	items, err := r.gateway.ListDistributedOrderItems(ctx, eventID, source, order.ID)
	if err != nil {
		return err
	}

	var toMigrate []entity.DistributedOrderItem
	remaining := 0
	for _, it := range items {
		if it.ItemID == triggeringItem {
			toMigrate = append(toMigrate, it)
			continue
		}
		served, err := r.servedAtSource(ctx, eventID, source, it.ItemID)
		if err != nil {
			return err
		}
		if served {
			remaining++
			continue
		}
		if globalAvailable(it.ItemID) {
			toMigrate = append(toMigrate, it)
		} else {
			remaining++
		}
	}
	if len(toMigrate) == 0 {
		return nil
	}

	destOrder, err := r.gateway.GetDistributedOrder(ctx, eventID, dest, order.ID)
	switch {
	case err != nil && apperr.KindOf(err) == apperr.NotFound:
		newOrder := entity.DistributedOrder{
			ID:                   order.ID,
			OrderStatus:          valueobject.DistributedOrderOpen,
			OrderDate:            r.clock.Now(),
			ServingPointName:     order.ServingPointName,
			ServingPointLocation: order.ServingPointLocation,
			Note:                 order.Note,
		}
		if err := r.gateway.UpsertDistributedOrderHeader(ctx, eventID, dest, newOrder); err != nil {
			return err
		}
	case err != nil:
		return err
	case destOrder.OrderStatus != valueobject.DistributedOrderOpen:
		if _, err := service.DistributedOrderStateMachine.FireEvent(destOrder.OrderStatus, service.OrderEventReopen, nil); err != nil {
			return err
		}
		history := entity.StatusHistoryItem{Status: valueobject.DistributedOrderOpen, At: r.clock.Now(), Reason: "reopened by migration from " + string(source)}
		if err := r.gateway.SetDistributedOrderStatus(ctx, eventID, dest, order.ID, valueobject.DistributedOrderOpen, history); err != nil {
			return err
		}
	}

	for _, it := range toMigrate {
		if err := r.gateway.MigrateOrderItem(ctx, eventID, source, dest, order.ID, it); err != nil {
			return err
		}
	}

	if remaining == 0 {
		if _, err := service.DistributedOrderStateMachine.FireEvent(order.OrderStatus, service.OrderEventTransfer, nil); err != nil {
			return err
		}
		history := entity.StatusHistoryItem{Status: valueobject.DistributedOrderTransferred, At: r.clock.Now(), Reason: "migrated from " + string(source)}
		return r.gateway.SetDistributedOrderStatus(ctx, eventID, source, order.ID, valueobject.DistributedOrderTransferred, history)
	}
	return nil
}
