package time

import (
	"time"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
)

// SystemTimeProvider provides the current system time
type SystemTimeProvider struct{}

// NewSystemTimeProvider creates a new system time provider
func NewSystemTimeProvider() *SystemTimeProvider {
	return &SystemTimeProvider{}
}

// Now returns the current time as a domain timestamp
func (p *SystemTimeProvider) Now() valueobject.Timestamp {
	return valueobject.NewTimestamp(time.Now())
}
