package command_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/entity"
	infratime "github.com/festivalpos/distribution-engine/internal/distribution/infrastructure/time"
	"github.com/festivalpos/distribution-engine/internal/distribution/testsupport"
	"github.com/festivalpos/distribution-engine/internal/distribution/usecase/command"
	"github.com/festivalpos/distribution-engine/pkg/apperr"
	"github.com/festivalpos/distribution-engine/pkg/logger"
)

func TestRetryDistribution_RejectsPurchaseThatDidNotFail(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	gw.SeedPurchase("event-1", entity.Purchase{ID: "purchase-1", DistributionFailed: false})

	clock := infratime.NewTestTimeProvider(time.Now())
	scheduler := command.NewDistributionScheduler(gw, clock, logger.NewNopLogger())
	retry := command.NewRetryDistribution(gw, scheduler, clock, logger.NewNopLogger())

	_, err := retry.Run(context.Background(), "event-1", "purchase-1")
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidRequest, apperr.KindOf(err))
}

func TestRetryDistribution_SucceedsAndClearsFailureMarkers(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	gw.SeedEvent("event-1", entity.Event{ID: "event-1"})
	gw.SeedPOS("event-1", entity.PointOfSale{ID: "pos-a", Name: "A"})
	gw.SeedPOSItem("event-1", "pos-a", entity.POSItem{ID: "burger"})
	gw.SeedServingPoint("event-1", entity.ServingPoint{ID: "sp-1", Name: "Table 1"})
	gw.SeedPurchaseItems("event-1", "purchase-1", []entity.PurchaseItem{
		{ItemID: "burger", Count: func() *float64 { v := 1.0; return &v }()},
	})
	gw.SeedPurchase("event-1", entity.Purchase{
		ID:             "purchase-1",
		ServingPointID: "sp-1",
		DistributionFailed: true,
		DistributionError:  "previous failure",
	})

	clock := infratime.NewTestTimeProvider(time.Now())
	scheduler := command.NewDistributionScheduler(gw, clock, logger.NewNopLogger())
	retry := command.NewRetryDistribution(gw, scheduler, clock, logger.NewNopLogger())

	result, err := retry.Run(context.Background(), "event-1", "purchase-1")
	require.NoError(t, err)
	assert.True(t, result.Success)

	purchase, ok := gw.Purchase("event-1", "purchase-1")
	require.True(t, ok)
	assert.False(t, purchase.DistributionFailed)
	assert.Empty(t, purchase.DistributionError)
	assert.True(t, purchase.Distributed)
}

func TestRetryDistribution_ReFailsAndReRecordsTheError(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	gw.SeedEvent("event-1", entity.Event{ID: "event-1"})
	gw.SeedServingPoint("event-1", entity.ServingPoint{ID: "sp-1"})
	gw.SeedPurchase("event-1", entity.Purchase{
		ID:             "purchase-1",
		ServingPointID: "sp-1",
		DistributionFailed: true,
	})
	// No POS seeded: ListPOS returns empty -> scheduler reports a
	// success=false result with ErrNoPOSFound, which RetryDistribution
	// returns without a Go error and records on the purchase as a failure.

	clock := infratime.NewTestTimeProvider(time.Now())
	scheduler := command.NewDistributionScheduler(gw, clock, logger.NewNopLogger())
	retry := command.NewRetryDistribution(gw, scheduler, clock, logger.NewNopLogger())

	result, err := retry.Run(context.Background(), "event-1", "purchase-1")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, entity.ErrNoPOSFound.Error(), result.Error)

	purchase, ok := gw.Purchase("event-1", "purchase-1")
	require.True(t, ok)
	assert.False(t, purchase.Distributed)
	assert.True(t, purchase.DistributionFailed)
	assert.Equal(t, entity.ErrNoPOSFound.Error(), purchase.DistributionError)
}
