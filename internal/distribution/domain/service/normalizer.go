// Package service holds pure domain services: no store access, consumed by
// usecases and reactors.
package service

import (
	"math"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/entity"
)

// Normalize reduces one purchase-item document, in whichever of the three
// legacy quantity representations it carries, to a slice of canonical line
// items each bearing count=1 (spec.md §4.2). It is pure and idempotent: a
// document already marked Calculated collapses to itself.
func Normalize(doc entity.PurchaseItem) []entity.CanonicalLineItem {
	if doc.Calculated {
		return []entity.CanonicalLineItem{{
			ItemID:              doc.ItemID,
			SelectedExtras:      orDefault(doc.SelectedExtras),
			ExcludedIngredients: orDefault(doc.ExcludedIngredients),
		}}
	}

	var out []entity.CanonicalLineItem
	var entriesQty float64

	for _, entry := range doc.Entries {
		qty := coerceQuantity(entry.Quantity)
		if qty <= 0 {
			continue
		}
		entriesQty += qty
		extras := entry.SelectedExtras
		if extras == nil {
			extras = doc.SelectedExtras
		}
		excluded := entry.ExcludedIngredients
		if excluded == nil {
			excluded = doc.ExcludedIngredients
		}
		for i := 0; i < int(qty); i++ {
			out = append(out, entity.CanonicalLineItem{
				ItemID:              doc.ItemID,
				SelectedExtras:      orDefault(extras),
				ExcludedIngredients: orDefault(excluded),
			})
		}
	}

	docQty := coerceQuantity(firstNonNil(doc.Quantity, doc.Count))
	if docQty == 0 && len(doc.Entries) == 0 {
		docQty = 1
	}

	remaining := docQty - entriesQty
	if remaining < 0 {
		remaining = 0
	}
	for i := 0; i < int(remaining); i++ {
		out = append(out, entity.CanonicalLineItem{
			ItemID:              doc.ItemID,
			SelectedExtras:      orDefault(doc.SelectedExtras),
			ExcludedIngredients: orDefault(doc.ExcludedIngredients),
		})
	}

	return out
}

// coerceQuantity applies the engine-wide quantity coercion rule of spec.md
// §9: non-finite or negative values become 0, otherwise floor to an
// integer-valued float64.
func coerceQuantity(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < 0 {
		return 0
	}
	return math.Floor(v)
}

func firstNonNil(values ...*float64) float64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

func orDefault(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
