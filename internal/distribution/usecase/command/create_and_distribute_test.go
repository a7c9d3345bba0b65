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

func newCreateAndDistribute(gw *testsupport.FakeGateway, ids *testsupport.FixedIDGenerator) *command.CreateAndDistributeOrder {
	scheduler := command.NewDistributionScheduler(gw, infratime.NewTestTimeProvider(time.Now()), logger.NewNopLogger())
	return command.NewCreateAndDistributeOrder(gw, ids, scheduler, infratime.NewTestTimeProvider(time.Now()), logger.NewNopLogger())
}

func TestCreateAndDistribute_RejectsMissingFields(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	c := newCreateAndDistribute(gw, testsupport.NewFixedIDGenerator("purchase-1"))

	_, err := c.Run(context.Background(), command.CreateAndDistributeInput{})
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidRequest, apperr.KindOf(err))
}

func TestCreateAndDistribute_GeneratesIDAndPersistsPurchaseBeforeScheduling(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	gw.SeedPOS("event-1", entity.PointOfSale{ID: "pos-a", Name: "Grill"})
	gw.SeedPOSItem("event-1", "pos-a", entity.POSItem{ID: "burger"})
	gw.SeedCanonicalItem("event-1", entity.CanonicalItem{ID: "burger", Name: "Burger", Price: decimal.NewFromInt(5)})

	ids := testsupport.NewFixedIDGenerator("purchase-1")
	c := newCreateAndDistribute(gw, ids)

	quantity := 1.0
	result, err := c.Run(context.Background(), command.CreateAndDistributeInput{
		EventID: "event-1",
		UserID:  "user-1",
		Items: []entity.PurchaseItem{
			{ItemID: "burger", Quantity: &quantity},
		},
		ServingPoint: entity.ServingPoint{ID: "sp-1", Name: "Table 1"},
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, valueobject.ID("purchase-1"), result.PurchaseID)

	purchase, ok := gw.Purchase("event-1", "purchase-1")
	require.True(t, ok)
	assert.True(t, purchase.IsPaid)
	assert.True(t, purchase.Distributed)
	assert.Equal(t, "user-1", purchase.UserID)

	items, err := gw.ListPurchaseItems(context.Background(), "event-1", "purchase-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, valueobject.ID("burger"), items[0].ItemID)

	destItems := gw.DistributedOrderItems("event-1", "pos-a", "purchase-1")
	require.Len(t, destItems, 1)
	assert.Equal(t, "Burger", destItems[0].Name)
}

func TestCreateAndDistribute_MarksFailureWhenNoPOSCanFulfill(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	ids := testsupport.NewFixedIDGenerator("purchase-1")
	c := newCreateAndDistribute(gw, ids)

	quantity := 1.0
	result, err := c.Run(context.Background(), command.CreateAndDistributeInput{
		EventID: "event-1",
		Items: []entity.PurchaseItem{
			{ItemID: "burger", Quantity: &quantity},
		},
		ServingPoint: entity.ServingPoint{ID: "sp-1"},
	})
	require.NoError(t, err)
	assert.False(t, result.Success)

	purchase, ok := gw.Purchase("event-1", "purchase-1")
	require.True(t, ok)
	assert.True(t, purchase.DistributionFailed)
	assert.False(t, purchase.Distributed)
}
