package valueobject

import (
	"errors"
	"strings"
)

// DistributedOrderStatus is the lifecycle of a POS-local sub-order.
type DistributedOrderStatus string

const (
	DistributedOrderOpen        DistributedOrderStatus = "open"
	DistributedOrderTransferred DistributedOrderStatus = "transferred"
)

func (s DistributedOrderStatus) String() string {
	return string(s)
}

func (s DistributedOrderStatus) IsValid() bool {
	switch s {
	case DistributedOrderOpen, DistributedOrderTransferred:
		return true
	}
	return false
}

func ParseDistributedOrderStatus(status string) (DistributedOrderStatus, error) {
	status = strings.ToLower(status)
	if !DistributedOrderStatus(status).IsValid() {
		return "", errors.New("invalid distributed order status")
	}
	return DistributedOrderStatus(status), nil
}

// LineItemStatus is the lifecycle of one item within a distributed order.
type LineItemStatus string

const (
	LineItemActive             LineItemStatus = "active"
	LineItemMarkedForCanceling LineItemStatus = "marked_for_canceling"
	LineItemCanceled           LineItemStatus = "canceled"
)

func (s LineItemStatus) String() string {
	return string(s)
}

func (s LineItemStatus) IsValid() bool {
	switch s {
	case LineItemActive, LineItemMarkedForCanceling, LineItemCanceled:
		return true
	}
	return false
}

// DistributionMode selects the scheduler's assignment policy (spec.md §4.3).
type DistributionMode string

const (
	DistributionBalanced DistributionMode = "balanced"
	DistributionGrouped  DistributionMode = "grouped"
)

func (m DistributionMode) String() string {
	return string(m)
}

func ParseDistributionMode(mode string) (DistributionMode, error) {
	if mode == "" {
		return DistributionBalanced, nil
	}
	switch DistributionMode(strings.ToLower(mode)) {
	case DistributionBalanced:
		return DistributionBalanced, nil
	case DistributionGrouped:
		return DistributionGrouped, nil
	}
	return "", errors.New("invalid distribution mode")
}

// NotificationStatus is the lifecycle of a notification document.
type NotificationStatus string

const (
	NotificationCreated    NotificationStatus = "created"
	NotificationInProgress NotificationStatus = "in_progress"
	NotificationResolved   NotificationStatus = "resolved"
	NotificationRefund     NotificationStatus = "refund"
)

func (s NotificationStatus) String() string {
	return string(s)
}

// NotificationSeverity classifies a notification for display purposes.
type NotificationSeverity string

const (
	SeverityInfo  NotificationSeverity = "info"
	SeverityWarn  NotificationSeverity = "warn"
	SeverityError NotificationSeverity = "error"
)

// NotificationAction names the downstream handler a notification targets.
type NotificationAction string

const (
	ActionRefund NotificationAction = "refund"
)
