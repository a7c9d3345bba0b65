package trigger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/entity"
	infratime "github.com/festivalpos/distribution-engine/internal/distribution/infrastructure/time"
	"github.com/festivalpos/distribution-engine/internal/distribution/event/trigger"
	"github.com/festivalpos/distribution-engine/internal/distribution/testsupport"
	"github.com/festivalpos/distribution-engine/internal/distribution/usecase/command"
	"github.com/festivalpos/distribution-engine/pkg/logger"
)

func setupOrchestrator(gw *testsupport.FakeGateway) *trigger.PurchaseOrchestrator {
	clock := infratime.NewTestTimeProvider(time.Now())
	scheduler := command.NewDistributionScheduler(gw, clock, logger.NewNopLogger())
	return trigger.NewPurchaseOrchestrator(gw, scheduler, clock, logger.NewNopLogger())
}

func TestPurchaseOrchestrator_IgnoresWriteWithoutAfter(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	o := setupOrchestrator(gw)

	err := o.Handle(context.Background(), trigger.PurchaseWrite{EventID: "event-1", PurchaseID: "purchase-1"})
	require.NoError(t, err)
}

func TestPurchaseOrchestrator_IgnoresUnpaidPurchase(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	o := setupOrchestrator(gw)

	err := o.Handle(context.Background(), trigger.PurchaseWrite{
		EventID:    "event-1",
		PurchaseID: "purchase-1",
		After:      &trigger.PurchaseSnapshot{IsPaid: false},
	})
	require.NoError(t, err)
	_, ok := gw.Purchase("event-1", "purchase-1")
	assert.False(t, ok)
}

func TestPurchaseOrchestrator_IgnoresAlreadyPaidTransition(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	o := setupOrchestrator(gw)

	err := o.Handle(context.Background(), trigger.PurchaseWrite{
		EventID:    "event-1",
		PurchaseID: "purchase-1",
		Before:     &trigger.PurchaseSnapshot{IsPaid: true},
		After:      &trigger.PurchaseSnapshot{IsPaid: true},
	})
	require.NoError(t, err)
	_, ok := gw.Purchase("event-1", "purchase-1")
	assert.False(t, ok)
}

func TestPurchaseOrchestrator_IgnoresAlreadyDistributed(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	o := setupOrchestrator(gw)

	err := o.Handle(context.Background(), trigger.PurchaseWrite{
		EventID:    "event-1",
		PurchaseID: "purchase-1",
		After:      &trigger.PurchaseSnapshot{IsPaid: true, Distributed: true, ServingPointID: "sp-1"},
	})
	require.NoError(t, err)
	_, ok := gw.Purchase("event-1", "purchase-1")
	assert.False(t, ok)
}

func TestPurchaseOrchestrator_DistributesOnFalseToTrueTransition(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	gw.SeedEvent("event-1", entity.Event{ID: "event-1"})
	gw.SeedServingPoint("event-1", entity.ServingPoint{ID: "sp-1", Name: "Table 1"})
	gw.SeedPOS("event-1", entity.PointOfSale{ID: "pos-a", Name: "A"})
	gw.SeedPOSItem("event-1", "pos-a", entity.POSItem{ID: "burger"})
	gw.SeedPurchaseItems("event-1", "purchase-1", []entity.PurchaseItem{{ItemID: "burger"}})
	gw.SeedPurchase("event-1", entity.Purchase{ID: "purchase-1", ServingPointID: "sp-1"})

	o := setupOrchestrator(gw)
	err := o.Handle(context.Background(), trigger.PurchaseWrite{
		EventID:    "event-1",
		PurchaseID: "purchase-1",
		Before:     &trigger.PurchaseSnapshot{IsPaid: false},
		After:      &trigger.PurchaseSnapshot{IsPaid: true, ServingPointID: "sp-1"},
	})
	require.NoError(t, err)

	purchase, ok := gw.Purchase("event-1", "purchase-1")
	require.True(t, ok)
	assert.True(t, purchase.Distributed)
	assert.False(t, purchase.DistributionFailed)

	_, ok = gw.DistributedOrder("event-1", "pos-a", "purchase-1")
	assert.True(t, ok)
}

func TestPurchaseOrchestrator_MarksFailureWhenNoPOSCanFulfill(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	gw.SeedEvent("event-1", entity.Event{ID: "event-1"})
	gw.SeedServingPoint("event-1", entity.ServingPoint{ID: "sp-1"})
	gw.SeedPurchaseItems("event-1", "purchase-1", []entity.PurchaseItem{{ItemID: "burger"}})
	gw.SeedPurchase("event-1", entity.Purchase{ID: "purchase-1", ServingPointID: "sp-1"})

	o := setupOrchestrator(gw)
	err := o.Handle(context.Background(), trigger.PurchaseWrite{
		EventID:    "event-1",
		PurchaseID: "purchase-1",
		After:      &trigger.PurchaseSnapshot{IsPaid: true, ServingPointID: "sp-1"},
	})
	require.NoError(t, err)

	purchase, ok := gw.Purchase("event-1", "purchase-1")
	require.True(t, ok)
	assert.True(t, purchase.DistributionFailed)
	assert.Equal(t, entity.ErrNoPOSFound.Error(), purchase.DistributionError)
}

func TestPurchaseOrchestrator_SkipsWhenServingPointMissing(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	gw.SeedEvent("event-1", entity.Event{ID: "event-1"})
	gw.SeedPurchase("event-1", entity.Purchase{ID: "purchase-1", ServingPointID: "sp-missing"})

	o := setupOrchestrator(gw)
	err := o.Handle(context.Background(), trigger.PurchaseWrite{
		EventID:    "event-1",
		PurchaseID: "purchase-1",
		After:      &trigger.PurchaseSnapshot{IsPaid: true, ServingPointID: "sp-missing"},
	})
	require.NoError(t, err)
	_, ok := gw.Purchase("event-1", "purchase-1")
	require.True(t, ok)
}
