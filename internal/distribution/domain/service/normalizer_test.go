package service_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/entity"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/service"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
)

func ptr(v float64) *float64 { return &v }

func TestNormalize_CalculatedPassesThrough(t *testing.T) {
	doc := entity.PurchaseItem{
		ItemID:         "burger",
		Calculated:     true,
		SelectedExtras: []string{"cheese"},
	}
	lines := service.Normalize(doc)
	assert.Len(t, lines, 1)
	assert.Equal(t, valueobject.ID("burger"), lines[0].ItemID)
	assert.Equal(t, []string{"cheese"}, lines[0].SelectedExtras)
}

func TestNormalize_QuantityRepresentation(t *testing.T) {
	doc := entity.PurchaseItem{ItemID: "fries", Quantity: ptr(3)}
	lines := service.Normalize(doc)
	assert.Len(t, lines, 3)
	for _, l := range lines {
		assert.Equal(t, valueobject.ID("fries"), l.ItemID)
	}
}

func TestNormalize_CountRepresentationFallsBackWhenQuantityAbsent(t *testing.T) {
	doc := entity.PurchaseItem{ItemID: "fries", Count: ptr(2)}
	lines := service.Normalize(doc)
	assert.Len(t, lines, 2)
}

func TestNormalize_QuantityTakesPrecedenceOverCount(t *testing.T) {
	doc := entity.PurchaseItem{ItemID: "fries", Quantity: ptr(1), Count: ptr(5)}
	lines := service.Normalize(doc)
	assert.Len(t, lines, 1)
}

func TestNormalize_EntriesRepresentation(t *testing.T) {
	doc := entity.PurchaseItem{
		ItemID: "burger",
		Entries: []entity.PurchaseItemEntry{
			{Quantity: 2, SelectedExtras: []string{"cheese"}},
			{Quantity: 1, SelectedExtras: []string{"bacon"}},
		},
	}
	lines := service.Normalize(doc)
	assert.Len(t, lines, 3)
	assert.Equal(t, []string{"cheese"}, lines[0].SelectedExtras)
	assert.Equal(t, []string{"cheese"}, lines[1].SelectedExtras)
	assert.Equal(t, []string{"bacon"}, lines[2].SelectedExtras)
}

func TestNormalize_EntriesPlusRemainingDocQuantity(t *testing.T) {
	doc := entity.PurchaseItem{
		ItemID:   "burger",
		Quantity: ptr(5),
		Entries: []entity.PurchaseItemEntry{
			{Quantity: 2, SelectedExtras: []string{"cheese"}},
		},
	}
	lines := service.Normalize(doc)
	// 2 from entries + 3 remaining at doc-level defaults
	assert.Len(t, lines, 5)
	assert.Equal(t, []string{"cheese"}, lines[0].SelectedExtras)
	assert.Equal(t, []string{}, lines[2].SelectedExtras)
}

func TestNormalize_NegativeAndNonFiniteQuantityCoerceToZero(t *testing.T) {
	// The bad quantity coerces to 0, and a zero doc-level quantity with no
	// entries then defaults to a single line.
	doc := entity.PurchaseItem{ItemID: "fries", Quantity: ptr(-4)}
	lines := service.Normalize(doc)
	assert.Len(t, lines, 1)

	doc = entity.PurchaseItem{ItemID: "fries", Quantity: ptr(math.Inf(1))}
	lines = service.Normalize(doc)
	assert.Len(t, lines, 1)
}

func TestNormalize_NoQuantityNoEntriesDefaultsToOne(t *testing.T) {
	doc := entity.PurchaseItem{ItemID: "fries"}
	lines := service.Normalize(doc)
	assert.Len(t, lines, 1)
}

func TestNormalize_IsIdempotentOnAlreadyNormalizedCount(t *testing.T) {
	doc := entity.PurchaseItem{ItemID: "fries", Calculated: true}
	first := service.Normalize(doc)
	assert.Len(t, first, 1)
}
