package command_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/entity"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
	infratime "github.com/festivalpos/distribution-engine/internal/distribution/infrastructure/time"
	"github.com/festivalpos/distribution-engine/internal/distribution/testsupport"
	"github.com/festivalpos/distribution-engine/internal/distribution/usecase/command"
	"github.com/festivalpos/distribution-engine/pkg/apperr"
	"github.com/festivalpos/distribution-engine/pkg/logger"
)

func newScheduler(gw *testsupport.FakeGateway) *command.DistributionScheduler {
	return command.NewDistributionScheduler(gw, infratime.NewTestTimeProvider(time.Now()), logger.NewNopLogger())
}

func TestDistribute_RejectsMissingIdentifiers(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	s := newScheduler(gw)

	_, err := s.Distribute(context.Background(), command.DistributeInput{})
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidRequest, apperr.KindOf(err))
}

func TestDistribute_RejectsGroupedMode(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	s := newScheduler(gw)

	_, err := s.Distribute(context.Background(), command.DistributeInput{
		EventID:    "event-1",
		PurchaseID: "purchase-1",
		Mode:       valueobject.DistributionGrouped,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Unsupported, apperr.KindOf(err))
}

func TestDistribute_NoPOSFoundReportsFailureWithoutError(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	s := newScheduler(gw)

	result, err := s.Distribute(context.Background(), command.DistributeInput{
		EventID:    "event-1",
		PurchaseID: "purchase-1",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, entity.ErrNoPOSFound.Error(), result.Error)
}

func TestDistribute_AssignsToTheOnlyCapablePOS(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	gw.SeedPOS("event-1", entity.PointOfSale{ID: "pos-a", Name: "A"})
	gw.SeedPOS("event-1", entity.PointOfSale{ID: "pos-b", Name: "B"})
	gw.SeedPOSItem("event-1", "pos-a", entity.POSItem{ID: "burger"})

	s := newScheduler(gw)
	result, err := s.Distribute(context.Background(), command.DistributeInput{
		EventID:    "event-1",
		PurchaseID: "purchase-1",
		Items: []entity.CanonicalLineItem{
			{ItemID: "burger", Price: decimal.NewFromInt(5)},
		},
		ServingPoint: entity.ServingPoint{Name: "Table 1"},
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.DistributedPurchases, 1)
	assert.Equal(t, valueobject.ID("pos-a"), result.DistributedPurchases[0].POSID)

	order, ok := gw.DistributedOrder("event-1", "pos-a", "purchase-1")
	require.True(t, ok)
	assert.Equal(t, valueobject.DistributedOrderOpen, order.OrderStatus)

	items := gw.DistributedOrderItems("event-1", "pos-a", "purchase-1")
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Count)
}

func TestDistribute_PrefersTheLeastLoadedCapablePOS(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	gw.SeedPOS("event-1", entity.PointOfSale{ID: "pos-a", Name: "A"})
	gw.SeedPOS("event-1", entity.PointOfSale{ID: "pos-b", Name: "B"})
	gw.SeedPOSItem("event-1", "pos-a", entity.POSItem{ID: "burger"})
	gw.SeedPOSItem("event-1", "pos-b", entity.POSItem{ID: "burger"})

	// pos-a already has two open orders, pos-b has none.
	gw.SeedDistributedOrder("event-1", "pos-a", entity.DistributedOrder{ID: "prior-1", OrderStatus: valueobject.DistributedOrderOpen}, nil)
	gw.SeedDistributedOrder("event-1", "pos-a", entity.DistributedOrder{ID: "prior-2", OrderStatus: valueobject.DistributedOrderOpen}, nil)

	s := newScheduler(gw)
	result, err := s.Distribute(context.Background(), command.DistributeInput{
		EventID:    "event-1",
		PurchaseID: "purchase-1",
		Items:      []entity.CanonicalLineItem{{ItemID: "burger"}},
	})
	require.NoError(t, err)
	require.Len(t, result.DistributedPurchases, 1)
	assert.Equal(t, valueobject.ID("pos-b"), result.DistributedPurchases[0].POSID)
}

func TestDistribute_UnroutableItemIsSkippedNotFailed(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	gw.SeedPOS("event-1", entity.PointOfSale{ID: "pos-a", Name: "A"})
	gw.SeedPOSItem("event-1", "pos-a", entity.POSItem{ID: "burger"})

	s := newScheduler(gw)
	result, err := s.Distribute(context.Background(), command.DistributeInput{
		EventID:    "event-1",
		PurchaseID: "purchase-1",
		Items: []entity.CanonicalLineItem{
			{ItemID: "burger"},
			{ItemID: "unknown-item"},
		},
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.DistributedPurchases, 1)
	assert.Equal(t, 1, result.DistributedPurchases[0].ItemsCount)
}

func TestDistribute_GroupsDuplicateLineItemsByKey(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	gw.SeedPOS("event-1", entity.PointOfSale{ID: "pos-a", Name: "A"})
	gw.SeedPOSItem("event-1", "pos-a", entity.POSItem{ID: "burger"})

	s := newScheduler(gw)
	result, err := s.Distribute(context.Background(), command.DistributeInput{
		EventID:    "event-1",
		PurchaseID: "purchase-1",
		Items: []entity.CanonicalLineItem{
			{ItemID: "burger", SelectedExtras: []string{"cheese"}},
			{ItemID: "burger", SelectedExtras: []string{"cheese"}},
			{ItemID: "burger", SelectedExtras: []string{"bacon"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.DistributedPurchases, 1)
	assert.Equal(t, 2, result.DistributedPurchases[0].ItemsCount)

	items := gw.DistributedOrderItems("event-1", "pos-a", "purchase-1")
	require.Len(t, items, 2)
	var cheeseCount, baconCount int
	for _, it := range items {
		switch it.SelectedExtras[0] {
		case "cheese":
			cheeseCount = it.Count
		case "bacon":
			baconCount = it.Count
		}
	}
	assert.Equal(t, 2, cheeseCount)
	assert.Equal(t, 1, baconCount)
}
