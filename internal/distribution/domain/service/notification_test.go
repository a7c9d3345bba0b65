package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/entity"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/service"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
	infratime "github.com/festivalpos/distribution-engine/internal/distribution/infrastructure/time"
	"github.com/festivalpos/distribution-engine/internal/distribution/testsupport"
)

func TestNotificationService_CreateNotification_RejectsMissingFields(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	clock := infratime.NewTestTimeProvider(time.Now())
	svc := service.NewNotificationService(gw, clock)

	_, err := svc.CreateNotification(context.Background(), "event-1", entity.Notification{})
	require.Error(t, err)
}

func TestNotificationService_CreateNotification_NewWhenNoneExists(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	clock := infratime.NewTestTimeProvider(time.Now())
	svc := service.NewNotificationService(gw, clock)

	id, err := svc.CreateNotification(context.Background(), "event-1", entity.Notification{
		Title:   "Artikel ausverkauft",
		Message: "Bitte erstatten",
		OrderID: "order-1",
		Action:  valueobject.ActionRefund,
		Status:  valueobject.NotificationCreated,
		Price:   decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestNotificationService_CreateNotification_MergesIntoExistingNonTerminal(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	clock := infratime.NewTestTimeProvider(time.Now())
	svc := service.NewNotificationService(gw, clock)
	ctx := context.Background()

	first, err := svc.CreateNotification(ctx, "event-1", entity.Notification{
		Title:   "Artikel ausverkauft",
		Message: "Bitte erstatten",
		OrderID: "order-1",
		Action:  valueobject.ActionRefund,
		Status:  valueobject.NotificationCreated,
		Price:   decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	second, err := svc.CreateNotification(ctx, "event-1", entity.Notification{
		Title:   "Artikel ausverkauft",
		Message: "Bitte erstatten",
		OrderID: "order-1",
		Action:  valueobject.ActionRefund,
		Status:  valueobject.NotificationCreated,
		Price:   decimal.NewFromInt(9),
	})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	stored := gw.Notifications()
	assert.Len(t, stored, 1)
	for _, n := range stored {
		assert.True(t, n.Price.Equal(decimal.NewFromInt(9)))
	}
}

func TestNotificationService_CreateNotification_DoesNotMergeIntoResolved(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	clock := infratime.NewTestTimeProvider(time.Now())
	svc := service.NewNotificationService(gw, clock)
	ctx := context.Background()

	gw.SeedNotification("event-1", entity.Notification{
		ID:      "existing",
		Title:   "old",
		Message: "old",
		OrderID: "order-1",
		Action:  valueobject.ActionRefund,
		Status:  valueobject.NotificationResolved,
	})

	id, err := svc.CreateNotification(ctx, "event-1", entity.Notification{
		Title:   "new",
		Message: "new",
		OrderID: "order-1",
		Action:  valueobject.ActionRefund,
		Status:  valueobject.NotificationCreated,
	})
	require.NoError(t, err)
	assert.NotEqual(t, valueobject.ID("existing"), id)
	assert.Len(t, gw.Notifications(), 2)
}
