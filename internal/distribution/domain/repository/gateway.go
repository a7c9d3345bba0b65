// Package repository defines the Store Gateway contract: the only interface
// through which any other component talks to the document store (spec.md
// §4.1). Every other component is written against this interface, never
// against a concrete driver type.
package repository

import (
	"context"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/entity"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
)

// DistributedOrderRef identifies one POS-local sub-order by its owning POS,
// returned by queries that scan across POS for a given order id (used by the
// Refund Propagator, spec.md §4.6 step 3).
type DistributedOrderRef struct {
	POSID valueobject.ID
	Order entity.DistributedOrder
}

// Gateway exposes typed reads/writes over the collection paths of spec.md
// §6.2. All multi-document mutations are submitted through either Batch
// (atomic, no read-modify-write) or RunTxn (read-modify-write under
// optimistic concurrency), per spec.md §4.1.
type Gateway interface {
	// GetEvent reads the tenant document.
	GetEvent(ctx context.Context, eventID valueobject.ID) (*entity.Event, error)

	// ListPOS lists every point of sale owned by the event.
	ListPOS(ctx context.Context, eventID valueobject.ID) ([]entity.PointOfSale, error)

	// ListPOSItems lists the available-items snapshot owned by one POS.
	ListPOSItems(ctx context.Context, eventID, posID valueobject.ID) ([]entity.POSItem, error)

	// GetPOSItem reads one POS-local available-item document, for the
	// candidate-store scan of spec.md §4.5 Case B.
	GetPOSItem(ctx context.Context, eventID, posID, itemID valueobject.ID) (*entity.POSItem, error)

	// GetServingPoint reads one serving point document.
	GetServingPoint(ctx context.Context, eventID, id valueobject.ID) (*entity.ServingPoint, error)

	// GetCanonicalItem reads one event-level item document.
	GetCanonicalItem(ctx context.Context, eventID, itemID valueobject.ID) (*entity.CanonicalItem, error)

	// SetCanonicalItemAvailability persists the reconciler-owned derived
	// availability flag (spec.md §3, I4).
	SetCanonicalItemAvailability(ctx context.Context, eventID, itemID valueobject.ID, available bool) error

	// ListPurchaseItems lists the raw purchase-item documents for a
	// purchase, ahead of normalization (spec.md §4.2).
	ListPurchaseItems(ctx context.Context, eventID, purchaseID valueobject.ID) ([]entity.PurchaseItem, error)

	// GetPurchase reads the main purchase document.
	GetPurchase(ctx context.Context, eventID, purchaseID valueobject.ID) (*entity.Purchase, error)

	// UpsertPurchase writes the purchase document (create or full replace).
	UpsertPurchase(ctx context.Context, eventID valueobject.ID, purchase entity.Purchase) error

	// CreatePurchase writes a brand-new purchase header together with its
	// items sub-collection in one batched write (spec.md §6.1
	// distributeOrder: "creates a main purchase with a newly generated id").
	CreatePurchase(ctx context.Context, eventID valueobject.ID, purchase entity.Purchase, items []entity.PurchaseItem) error

	// CountOpenOrders counts distributed orders at posID with
	// orderStatus=="open" (spec.md §4.3 step 2).
	CountOpenOrders(ctx context.Context, eventID, posID valueobject.ID) (int, error)

	// WriteDistributedOrderBatch atomically upserts one distributed-order
	// document and its grouped item documents (spec.md §4.3, "single
	// batched write").
	WriteDistributedOrderBatch(ctx context.Context, eventID, posID valueobject.ID, order entity.DistributedOrder, items []entity.DistributedOrderItem) error

	// GetDistributedOrder reads one POS-local sub-order.
	GetDistributedOrder(ctx context.Context, eventID, posID, orderID valueobject.ID) (*entity.DistributedOrder, error)

	// ListOpenDistributedOrders lists posID's sub-orders with
	// orderStatus=="open" (spec.md §4.5 Case B, §4.5.2, §4.5.3).
	ListOpenDistributedOrders(ctx context.Context, eventID, posID valueobject.ID) ([]entity.DistributedOrder, error)

	// ListDistributedOrderItems lists the item documents of one
	// distributed order.
	ListDistributedOrderItems(ctx context.Context, eventID, posID, orderID valueobject.ID) ([]entity.DistributedOrderItem, error)

	// UpsertDistributedOrderHeader writes (create or merge) the header
	// fields of a distributed order, used to open/re-open a destination
	// order during migration (spec.md §4.5.3).
	UpsertDistributedOrderHeader(ctx context.Context, eventID, posID valueobject.ID, order entity.DistributedOrder) error

	// MergeDistributedOrderItemStatus merge-writes a status change on
	// matching item documents; count is left as is unless clearQuantity is
	// set, in which case it is written as 0 (spec.md §4.5 Case B step 3,
	// §4.6 step 1).
	MergeDistributedOrderItemStatus(ctx context.Context, eventID, posID, orderID valueobject.ID, keys []string, status valueobject.LineItemStatus, clearQuantity bool) error

	// ListDistributedOrdersByID scans every POS of the event for a
	// distributed order sharing orderID (spec.md §4.6 step 3).
	ListDistributedOrdersByID(ctx context.Context, eventID, orderID valueobject.ID) ([]DistributedOrderRef, error)

	// MigrateOrderItem runs the per-item migration merge of spec.md §4.5.3
	// inside a transaction: reads the destination item doc, sums counts,
	// writes the merged payload, and deletes the source item doc.
	MigrateOrderItem(ctx context.Context, eventID, sourcePOS, destPOS, orderID valueobject.ID, item entity.DistributedOrderItem) error

	// SetDistributedOrderStatus merge-writes the order header's status
	// (and TransferredAt marker) after migration empties or refills it.
	SetDistributedOrderStatus(ctx context.Context, eventID, posID, orderID valueobject.ID, status valueobject.DistributedOrderStatus, history entity.StatusHistoryItem) error

	// FindNotification looks up an existing notification for
	// (orderId, action, status ∈ statuses), per spec.md §4.7.
	FindNotification(ctx context.Context, eventID, orderID valueobject.ID, action valueobject.NotificationAction, statuses []valueobject.NotificationStatus) (*entity.Notification, error)

	// UpsertNotification writes a new or updated notification document and
	// returns its id.
	UpsertNotification(ctx context.Context, eventID valueobject.ID, n entity.Notification) (valueobject.ID, error)

	// CancelPurchaseItems merge-writes {status:"canceled", quantity:0} on
	// the purchase's item docs whose itemId is in itemIDs, in a single write;
	// itemIDs is not split into chunks (spec.md §4.6 step 1).
	CancelPurchaseItems(ctx context.Context, eventID, purchaseID valueobject.ID, itemIDs []valueobject.ID) error

	// RecomputePurchaseTotal reads the purchase's item docs, sums
	// price×quantity over non-canceled items, and merges the result back
	// as totalPrice (spec.md §4.6 step 2).
	RecomputePurchaseTotal(ctx context.Context, eventID, purchaseID valueobject.ID) error

	// RecomputeDistributedOrderTotal performs the same recomputation at
	// POS scope for the matching distributed order (spec.md §4.6 step 3).
	RecomputeDistributedOrderTotal(ctx context.Context, eventID, posID, orderID valueobject.ID, itemIDs []valueobject.ID) error

	// RunTxn runs fn under a read-modify-write transaction with optimistic
	// concurrency (spec.md §4.1).
	RunTxn(ctx context.Context, fn func(ctx context.Context) error) error
}
