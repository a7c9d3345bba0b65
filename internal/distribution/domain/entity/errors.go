package entity

import "errors"

var (
	// Event / POS / item errors
	ErrEventNotFound         = errors.New("event not found")
	ErrServingPointNotFound  = errors.New("serving point not found")
	ErrPOSNotFound           = errors.New("point of sale not found")
	ErrCanonicalItemNotFound = errors.New("canonical item not found")
	ErrNoPOSFound            = errors.New("no points of sale found")

	// Purchase errors
	ErrPurchaseNotFound    = errors.New("purchase not found")
	ErrMissingServingPoint = errors.New("missing serving point")
	ErrMissingRequiredFields = errors.New("missing required fields")
	ErrAlreadyDistributed  = errors.New("purchase already distributed")

	// Scheduler errors
	ErrGroupedModeUnsupported = errors.New("grouped distribution mode not yet implemented")

	// Notification errors
	ErrNotificationNotFound = errors.New("notification not found")

	// Generic
	ErrInternal = errors.New("internal error")
)
