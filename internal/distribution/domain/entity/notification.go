package entity

import (
	"github.com/shopspring/decimal"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
)

// Notification is a per-event notification document, deduplicated by
// (orderId, action, status∈{created,in_progress}) (spec.md §3, I5).
type Notification struct {
	ID             valueobject.ID
	Title          string
	Message        string
	PointOfService string
	Price          decimal.Decimal
	ItemIDs        []valueobject.ID
	OrderID        valueobject.ID
	PaymentMethod  string
	Severity       valueobject.NotificationSeverity
	Action         valueobject.NotificationAction
	Status         valueobject.NotificationStatus
	CreatedAt      valueobject.Timestamp
	UpdatedAt      valueobject.Timestamp
}
