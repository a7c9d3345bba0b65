package entity

import (
	"github.com/shopspring/decimal"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
)

// StatusHistoryItem records one transition of a distributed order's status,
// generalized from the teacher's OrderStatusHistoryItem pattern. Purely
// additive telemetry; not read by any invariant.
type StatusHistoryItem struct {
	Status valueobject.DistributedOrderStatus
	At     valueobject.Timestamp
	Reason string
}

// DistributedOrder is the POS-local sub-order, sharing the originating
// purchase's id (spec.md §3, "Distributed Order").
type DistributedOrder struct {
	ID                   valueobject.ID
	OrderStatus          valueobject.DistributedOrderStatus
	OrderDate            valueobject.Timestamp
	ServingPointName     string
	ServingPointLocation string
	Note                 string
	TabletNumber         string
	TransferredAt        *valueobject.Timestamp
	StatusHistory        []StatusHistoryItem
}

// DistributedOrderItem is one item document within a distributed order,
// keyed by "{itemId}_{extras-csv}_{excluded-csv}" (spec.md §3).
type DistributedOrderItem struct {
	ItemID              valueobject.ID
	Name                string
	Price               decimal.Decimal
	Count               int
	Category            string
	CategoryName        string
	SelectedExtras      []string
	ExcludedIngredients []string
	Status              valueobject.LineItemStatus
}

// Key returns the document key spec.md §3 defines for distributed-order
// items.
func (i DistributedOrderItem) Key() string {
	return string(i.ItemID) + "_" + csvJoin(i.SelectedExtras) + "_" + csvJoin(i.ExcludedIngredients)
}

// AppendHistory returns a copy of the order with a new status-history entry
// appended, mirroring the teacher's AddStatusHistoryItem.
func (o DistributedOrder) AppendHistory(status valueobject.DistributedOrderStatus, at valueobject.Timestamp, reason string) DistributedOrder {
	o.StatusHistory = append(o.StatusHistory, StatusHistoryItem{Status: status, At: at, Reason: reason})
	o.OrderStatus = status
	return o
}
