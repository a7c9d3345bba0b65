package entity

import "github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"

// Event is the tenant namespace: one per venue or occasion. The engine only
// reads it — creation and mutation happen externally.
type Event struct {
	ID               valueobject.ID
	DistributionMode valueobject.DistributionMode
}

// Mode returns the event's distribution mode, defaulting to balanced when
// unset (spec.md §3, Event.distributionMode default).
func (e Event) Mode() valueobject.DistributionMode {
	if e.DistributionMode == "" {
		return valueobject.DistributionBalanced
	}
	return e.DistributionMode
}
