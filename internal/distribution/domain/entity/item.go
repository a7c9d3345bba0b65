package entity

import (
	"github.com/shopspring/decimal"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
)

// CanonicalItem is the event-wide item definition. IsAvailable is a derived
// flag owned exclusively by the Availability Reconciler (spec.md §3, I4).
type CanonicalItem struct {
	ID            valueobject.ID
	Name          string
	Price         decimal.Decimal
	Category      string
	CategoryName  string
	IsAvailable   bool
	SoldOut       bool
}

// POSItem is a POS-local snapshot of a canonical item plus the producer's
// own availability flag. AvailabilityFlag is a pointer so "absent" can be
// distinguished from "explicitly false" — both spec.md §4.5 and §9 treat
// an absent isAvailable as true.
type POSItem struct {
	ID                  valueobject.ID
	Name                string
	Price               decimal.Decimal
	Category            string
	CategoryName        string
	AvailabilityFlag    *bool
	SoldOut             bool
	SelectedExtras      []string
	ExcludedIngredients []string
}

// IsAvailable reports the POS-local availability, defaulting absent to true
// per spec.md §4.5 ("before/after.isAvailable be booleans (absent ≡ true)").
func (i POSItem) IsAvailable() bool {
	if i.AvailabilityFlag == nil {
		return true
	}
	return *i.AvailabilityFlag
}
