package service

import (
	"context"

	"github.com/festivalpos/distribution-engine/pkg/apperr"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/entity"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/repository"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
)

var errBuilder = apperr.NewBuilder("notification")

// NotificationService implements the deduplicated notification write of
// spec.md §4.7.
type NotificationService struct {
	gateway repository.Gateway
	clock   valueobject.TimeProvider
}

// NewNotificationService constructs a NotificationService backed by gateway.
func NewNotificationService(gateway repository.Gateway, clock valueobject.TimeProvider) *NotificationService {
	return &NotificationService{gateway: gateway, clock: clock}
}

// nonTerminalStatuses are the statuses a notification is deduplicated
// against, per spec.md §3 I5 and §4.7.
var nonTerminalStatuses = []valueobject.NotificationStatus{
	valueobject.NotificationCreated,
	valueobject.NotificationInProgress,
}

// CreateNotification validates payload, looks for an existing non-terminal
// notification keyed by (orderId, action), and either updates it or appends
// a new one, returning its id.
func (s *NotificationService) CreateNotification(ctx context.Context, eventID valueobject.ID, payload entity.Notification) (valueobject.ID, error) {
	if payload.Title == "" || payload.Message == "" {
		return "", errBuilder.InvalidRequest("CreateNotification", entity.ErrMissingRequiredFields)
	}
	if eventID == "" {
		return "", errBuilder.InvalidRequest("CreateNotification", entity.ErrMissingRequiredFields)
	}

	now := s.clock.Now()

	if payload.OrderID != "" {
		existing, err := s.gateway.FindNotification(ctx, eventID, payload.OrderID, payload.Action, nonTerminalStatuses)
		if err != nil && apperr.KindOf(err) != apperr.NotFound {
			return "", err
		}
		if existing != nil {
			merged := payload
			merged.ID = existing.ID
			merged.CreatedAt = existing.CreatedAt
			merged.UpdatedAt = now
			if _, err := s.gateway.UpsertNotification(ctx, eventID, merged); err != nil {
				return "", err
			}
			return existing.ID, nil
		}
	}

	payload.CreatedAt = now
	payload.UpdatedAt = now
	return s.gateway.UpsertNotification(ctx, eventID, payload)
}
