package entity

import "github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"

// ServingPoint is the customer-facing destination (a table, a seat block)
// produced items are brought to.
type ServingPoint struct {
	ID       valueobject.ID
	Name     string
	Location string
	AreaName string
	Capacity int
}
