package entity

import (
	"github.com/shopspring/decimal"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
)

// Purchase is the customer-facing order at event scope (spec.md §3, "Main
// Order"). It is created externally with IsPaid=false; the Purchase
// Orchestrator distributes it on the false→true transition.
type Purchase struct {
	ID                 valueobject.ID
	ServingPointID     valueobject.ID
	UserID             string
	Note               string
	OrderPlaced        valueobject.Timestamp
	IsPaid             bool
	Distributed        bool
	DistributedAt      valueobject.Timestamp
	DistributionError  string
	DistributionFailed bool
	TotalPrice         decimal.Decimal
}

// PurchaseItemEntry is one entry of a purchase-item document's entries[]
// array (spec.md §4.2, representation 3).
type PurchaseItemEntry struct {
	Quantity            float64
	SelectedExtras      []string
	ExcludedIngredients []string
}

// PurchaseItem is the raw purchase-item document as persisted, carrying
// whichever of the three legacy quantity representations the writer used.
// The Item Quantity Normalizer (spec.md §4.2) reduces it to canonical line
// items.
type PurchaseItem struct {
	ItemID              valueobject.ID
	Quantity            *float64
	Count               *float64
	SelectedExtras      []string
	ExcludedIngredients []string
	Entries             []PurchaseItemEntry
	Status              valueobject.LineItemStatus
	Calculated          bool
}

// CanonicalLineItem is one unit of a purchased item, carrying count=1 by
// construction (spec.md §4.2). Catalog fields are filled in by the
// orchestrator from the canonical item document before scheduling.
type CanonicalLineItem struct {
	ItemID              valueobject.ID
	Name                string
	Price               decimal.Decimal
	Category            string
	CategoryName        string
	SelectedExtras      []string
	ExcludedIngredients []string
}

// GroupKey returns the grouping key used by the scheduler to merge
// canonical line items sharing (itemId, extras, excluded) (spec.md §4.3).
func (c CanonicalLineItem) GroupKey() string {
	return string(c.ItemID) + "_" + csvJoin(c.SelectedExtras) + "_" + csvJoin(c.ExcludedIngredients)
}
