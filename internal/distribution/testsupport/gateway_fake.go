// Package testsupport holds an in-memory Store Gateway fake, shared across
// package test files the way the teacher's repositories are shared across
// usecases — standing in for the mongo-backed adapter without requiring a
// running document store (no mockery/testify-mock generator runs in this
// build, so the fake is hand-written rather than codegenerated).
package testsupport

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/entity"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/repository"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/service"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
	"github.com/festivalpos/distribution-engine/pkg/apperr"
)

const sep = "\x1f"

func key(parts ...valueobject.ID) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = string(p)
	}
	return strings.Join(s, sep)
}

// FakeGateway implements repository.Gateway entirely in memory.
type FakeGateway struct {
	mu sync.Mutex

	events         map[valueobject.ID]entity.Event
	pos            map[valueobject.ID][]entity.PointOfSale
	posItems       map[string]entity.POSItem
	servingPoints  map[string]entity.ServingPoint
	canonicalItems map[string]entity.CanonicalItem
	purchaseItems  map[string][]entity.PurchaseItem
	purchases      map[string]entity.Purchase
	orders         map[string]entity.DistributedOrder
	orderItems     map[string][]entity.DistributedOrderItem
	notifications  map[string]entity.Notification
	notifSeq       int
}

// NewFakeGateway returns an empty fake, ready for seeding.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		events:         make(map[valueobject.ID]entity.Event),
		pos:            make(map[valueobject.ID][]entity.PointOfSale),
		posItems:       make(map[string]entity.POSItem),
		servingPoints:  make(map[string]entity.ServingPoint),
		canonicalItems: make(map[string]entity.CanonicalItem),
		purchaseItems:  make(map[string][]entity.PurchaseItem),
		purchases:      make(map[string]entity.Purchase),
		orders:         make(map[string]entity.DistributedOrder),
		orderItems:     make(map[string][]entity.DistributedOrderItem),
		notifications:  make(map[string]entity.Notification),
	}
}

// --- seeding helpers, used by test setup code only ---

func (f *FakeGateway) SeedEvent(eventID valueobject.ID, e entity.Event) {
	f.events[eventID] = e
}

func (f *FakeGateway) SeedPOS(eventID valueobject.ID, p entity.PointOfSale) {
	f.pos[eventID] = append(f.pos[eventID], p)
}

func (f *FakeGateway) SeedPOSItem(eventID, posID valueobject.ID, it entity.POSItem) {
	f.posItems[key(eventID, posID, it.ID)] = it
}

func (f *FakeGateway) SeedServingPoint(eventID valueobject.ID, sp entity.ServingPoint) {
	f.servingPoints[key(eventID, sp.ID)] = sp
}

func (f *FakeGateway) SeedCanonicalItem(eventID valueobject.ID, it entity.CanonicalItem) {
	f.canonicalItems[key(eventID, it.ID)] = it
}

func (f *FakeGateway) SeedPurchaseItems(eventID, purchaseID valueobject.ID, items []entity.PurchaseItem) {
	f.purchaseItems[key(eventID, purchaseID)] = items
}

func (f *FakeGateway) SeedPurchase(eventID valueobject.ID, p entity.Purchase) {
	f.purchases[key(eventID, p.ID)] = p
}

func (f *FakeGateway) SeedDistributedOrder(eventID, posID valueobject.ID, o entity.DistributedOrder, items []entity.DistributedOrderItem) {
	f.orders[key(eventID, posID, o.ID)] = o
	f.orderItems[key(eventID, posID, o.ID)] = items
}

func (f *FakeGateway) SeedNotification(eventID valueobject.ID, n entity.Notification) {
	f.notifications[key(eventID, n.ID)] = n
}

// --- inspection helpers, used by test assertions only ---

func (f *FakeGateway) Purchase(eventID, purchaseID valueobject.ID) (entity.Purchase, bool) {
	p, ok := f.purchases[key(eventID, purchaseID)]
	return p, ok
}

func (f *FakeGateway) DistributedOrder(eventID, posID, orderID valueobject.ID) (entity.DistributedOrder, bool) {
	o, ok := f.orders[key(eventID, posID, orderID)]
	return o, ok
}

func (f *FakeGateway) DistributedOrderItems(eventID, posID, orderID valueobject.ID) []entity.DistributedOrderItem {
	return f.orderItems[key(eventID, posID, orderID)]
}

func (f *FakeGateway) CanonicalItem(eventID, itemID valueobject.ID) (entity.CanonicalItem, bool) {
	c, ok := f.canonicalItems[key(eventID, itemID)]
	return c, ok
}

func (f *FakeGateway) Notifications() map[string]entity.Notification {
	return f.notifications
}

// FixedIDGenerator returns a pre-set sequence of ids, one per call, cycling
// back to the last one once exhausted.
type FixedIDGenerator struct {
	ids []valueobject.ID
	n   int
}

// NewFixedIDGenerator returns a FixedIDGenerator yielding ids in order.
func NewFixedIDGenerator(ids ...valueobject.ID) *FixedIDGenerator {
	return &FixedIDGenerator{ids: ids}
}

func (g *FixedIDGenerator) NewID() valueobject.ID {
	if len(g.ids) == 0 {
		return ""
	}
	if g.n >= len(g.ids) {
		return g.ids[len(g.ids)-1]
	}
	id := g.ids[g.n]
	g.n++
	return id
}

// --- repository.Gateway ---

func notFound(op string, err error) error {
	return apperr.New("FakeGateway."+op, apperr.NotFound, err)
}

func (f *FakeGateway) GetEvent(_ context.Context, eventID valueobject.ID) (*entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[eventID]
	if !ok {
		return nil, notFound("GetEvent", entity.ErrEventNotFound)
	}
	return &e, nil
}

func (f *FakeGateway) ListPOS(_ context.Context, eventID valueobject.ID) ([]entity.PointOfSale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.PointOfSale, len(f.pos[eventID]))
	copy(out, f.pos[eventID])
	return out, nil
}

func (f *FakeGateway) ListPOSItems(_ context.Context, eventID, posID valueobject.ID) ([]entity.POSItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := key(eventID, posID) + sep
	var out []entity.POSItem
	for k, it := range f.posItems {
		if strings.HasPrefix(k, prefix) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeGateway) GetPOSItem(_ context.Context, eventID, posID, itemID valueobject.ID) (*entity.POSItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.posItems[key(eventID, posID, itemID)]
	if !ok {
		return nil, notFound("GetPOSItem", entity.ErrCanonicalItemNotFound)
	}
	return &it, nil
}

func (f *FakeGateway) GetServingPoint(_ context.Context, eventID, id valueobject.ID) (*entity.ServingPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sp, ok := f.servingPoints[key(eventID, id)]
	if !ok {
		return nil, notFound("GetServingPoint", entity.ErrServingPointNotFound)
	}
	return &sp, nil
}

func (f *FakeGateway) GetCanonicalItem(_ context.Context, eventID, itemID valueobject.ID) (*entity.CanonicalItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.canonicalItems[key(eventID, itemID)]
	if !ok {
		return nil, notFound("GetCanonicalItem", entity.ErrCanonicalItemNotFound)
	}
	return &it, nil
}

func (f *FakeGateway) SetCanonicalItemAvailability(_ context.Context, eventID, itemID valueobject.ID, available bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(eventID, itemID)
	it, ok := f.canonicalItems[k]
	if !ok {
		it = entity.CanonicalItem{ID: itemID}
	}
	it.IsAvailable = available
	f.canonicalItems[k] = it
	return nil
}

func (f *FakeGateway) ListPurchaseItems(_ context.Context, eventID, purchaseID valueobject.ID) ([]entity.PurchaseItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.PurchaseItem, len(f.purchaseItems[key(eventID, purchaseID)]))
	copy(out, f.purchaseItems[key(eventID, purchaseID)])
	return out, nil
}

func (f *FakeGateway) GetPurchase(_ context.Context, eventID, purchaseID valueobject.ID) (*entity.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.purchases[key(eventID, purchaseID)]
	if !ok {
		return nil, notFound("GetPurchase", entity.ErrPurchaseNotFound)
	}
	return &p, nil
}

func (f *FakeGateway) UpsertPurchase(_ context.Context, eventID valueobject.ID, purchase entity.Purchase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purchases[key(eventID, purchase.ID)] = purchase
	return nil
}

func (f *FakeGateway) CreatePurchase(_ context.Context, eventID valueobject.ID, purchase entity.Purchase, items []entity.PurchaseItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purchases[key(eventID, purchase.ID)] = purchase
	f.purchaseItems[key(eventID, purchase.ID)] = items
	return nil
}

func (f *FakeGateway) CountOpenOrders(_ context.Context, eventID, posID valueobject.ID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	prefix := key(eventID, posID) + sep
	for k, o := range f.orders {
		if strings.HasPrefix(k, prefix) && o.OrderStatus == valueobject.DistributedOrderOpen {
			n++
		}
	}
	return n, nil
}

func (f *FakeGateway) WriteDistributedOrderBatch(_ context.Context, eventID, posID valueobject.ID, order entity.DistributedOrder, items []entity.DistributedOrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(eventID, posID, order.ID)
	f.orders[k] = order
	f.orderItems[k] = items
	return nil
}

func (f *FakeGateway) GetDistributedOrder(_ context.Context, eventID, posID, orderID valueobject.ID) (*entity.DistributedOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[key(eventID, posID, orderID)]
	if !ok {
		return nil, notFound("GetDistributedOrder", entity.ErrInternal)
	}
	return &o, nil
}

func (f *FakeGateway) ListOpenDistributedOrders(_ context.Context, eventID, posID valueobject.ID) ([]entity.DistributedOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := key(eventID, posID) + sep
	var out []entity.DistributedOrder
	for k, o := range f.orders {
		if strings.HasPrefix(k, prefix) && o.OrderStatus == valueobject.DistributedOrderOpen {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeGateway) ListDistributedOrderItems(_ context.Context, eventID, posID, orderID valueobject.ID) ([]entity.DistributedOrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := f.orderItems[key(eventID, posID, orderID)]
	out := make([]entity.DistributedOrderItem, len(items))
	copy(out, items)
	return out, nil
}

func (f *FakeGateway) UpsertDistributedOrderHeader(_ context.Context, eventID, posID valueobject.ID, order entity.DistributedOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[key(eventID, posID, order.ID)] = order
	return nil
}

func (f *FakeGateway) MergeDistributedOrderItemStatus(_ context.Context, eventID, posID, orderID valueobject.ID, keys []string, status valueobject.LineItemStatus, clearQuantity bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		wanted[k] = struct{}{}
	}
	items := f.orderItems[key(eventID, posID, orderID)]
	for i, it := range items {
		if _, ok := wanted[it.Key()]; !ok {
			continue
		}
		it.Status = status
		if clearQuantity {
			it.Count = 0
		}
		items[i] = it
	}
	return nil
}

func (f *FakeGateway) ListDistributedOrdersByID(_ context.Context, eventID, orderID valueobject.ID) ([]repository.DistributedOrderRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.DistributedOrderRef
	for k, o := range f.orders {
		if o.ID != orderID {
			continue
		}
		parts := strings.Split(k, sep)
		if len(parts) != 3 || valueobject.ID(parts[0]) != eventID {
			continue
		}
		out = append(out, repository.DistributedOrderRef{POSID: valueobject.ID(parts[1]), Order: o})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].POSID < out[j].POSID })
	return out, nil
}

func (f *FakeGateway) MigrateOrderItem(_ context.Context, eventID, sourcePOS, destPOS, orderID valueobject.ID, item entity.DistributedOrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	srcKey := key(eventID, sourcePOS, orderID)
	src := f.orderItems[srcKey]
	for i, it := range src {
		if it.Key() == item.Key() {
			src = append(src[:i], src[i+1:]...)
			break
		}
	}
	f.orderItems[srcKey] = src

	destKey := key(eventID, destPOS, orderID)
	dest := f.orderItems[destKey]
	merged := false
	for i, it := range dest {
		if it.Key() == item.Key() {
			it.Count += item.Count
			dest[i] = it
			merged = true
			break
		}
	}
	if !merged {
		dest = append(dest, item)
	}
	f.orderItems[destKey] = dest
	return nil
}

func (f *FakeGateway) SetDistributedOrderStatus(_ context.Context, eventID, posID, orderID valueobject.ID, status valueobject.DistributedOrderStatus, history entity.StatusHistoryItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(eventID, posID, orderID)
	o, ok := f.orders[k]
	if !ok {
		return notFound("SetDistributedOrderStatus", entity.ErrInternal)
	}
	o = o.AppendHistory(status, history.At, history.Reason)
	if status == valueobject.DistributedOrderTransferred {
		at := history.At
		o.TransferredAt = &at
	}
	f.orders[k] = o
	return nil
}

func (f *FakeGateway) FindNotification(_ context.Context, eventID, orderID valueobject.ID, action valueobject.NotificationAction, statuses []valueobject.NotificationStatus) (*entity.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	allowed := make(map[valueobject.NotificationStatus]struct{}, len(statuses))
	for _, s := range statuses {
		allowed[s] = struct{}{}
	}
	prefix := string(eventID) + sep
	for k, n := range f.notifications {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if n.OrderID != orderID || n.Action != action {
			continue
		}
		if _, ok := allowed[n.Status]; ok {
			return &n, nil
		}
	}
	return nil, notFound("FindNotification", entity.ErrNotificationNotFound)
}

func (f *FakeGateway) UpsertNotification(_ context.Context, eventID valueobject.ID, n entity.Notification) (valueobject.ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.ID == "" {
		f.notifSeq++
		n.ID = valueobject.ID("notif-" + strconv.Itoa(f.notifSeq))
	}
	f.notifications[key(eventID, n.ID)] = n
	return n.ID, nil
}

func (f *FakeGateway) CancelPurchaseItems(_ context.Context, eventID, purchaseID valueobject.ID, itemIDs []valueobject.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := make(map[valueobject.ID]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = struct{}{}
	}
	k := key(eventID, purchaseID)
	items := f.purchaseItems[k]
	zero := 0.0
	for i, it := range items {
		if _, ok := wanted[it.ItemID]; !ok {
			continue
		}
		it.Status = valueobject.LineItemCanceled
		it.Quantity = &zero
		it.Count = &zero
		items[i] = it
	}
	return nil
}

func (f *FakeGateway) RecomputePurchaseTotal(_ context.Context, eventID, purchaseID valueobject.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := f.purchaseItems[key(eventID, purchaseID)]

	total := decimal.Zero
	for _, it := range items {
		if it.Status == valueobject.LineItemCanceled {
			continue
		}
		price := f.canonicalItems[key(eventID, it.ItemID)].Price
		lines := service.Normalize(it)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(len(lines)))))
	}

	pk := key(eventID, purchaseID)
	p, ok := f.purchases[pk]
	if !ok {
		return notFound("RecomputePurchaseTotal", entity.ErrPurchaseNotFound)
	}
	p.TotalPrice = total
	f.purchases[pk] = p
	return nil
}

func (f *FakeGateway) RecomputeDistributedOrderTotal(_ context.Context, eventID, posID, orderID valueobject.ID, _ []valueobject.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := f.orderItems[key(eventID, posID, orderID)]

	total := decimal.Zero
	for _, it := range items {
		if it.Status == valueobject.LineItemCanceled {
			continue
		}
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Count))))
	}

	ok := key(eventID, posID, orderID)
	if _, exists := f.orders[ok]; !exists {
		return notFound("RecomputeDistributedOrderTotal", entity.ErrInternal)
	}
	// Total is telemetry-only (see gateway_mongo.go); the fake does not carry
	// a dedicated field on DistributedOrder, so recomputation is a no-op
	// beyond validating the order exists.
	return nil
}

func (f *FakeGateway) RunTxn(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
