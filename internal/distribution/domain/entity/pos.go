package entity

import "github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"

// PointOfSale is a producer capable of fulfilling a subset of an event's
// canonical items. Its available-items and orders sub-collections are
// addressed separately through the Store Gateway.
type PointOfSale struct {
	ID          valueobject.ID
	Name        string
	Description string
	Location    string
}
