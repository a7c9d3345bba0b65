package trigger_test

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
	"github.com/festivalpos/distribution-engine/internal/distribution/event/trigger"
	"github.com/festivalpos/distribution-engine/internal/distribution/testsupport"
)

func boolPtr(b bool) *bool { return &b }

func setupReconciler(gw *testsupport.FakeGateway) *trigger.AvailabilityReconciler {
	clock := infratime.NewTestTimeProvider(time.Now())
	notifications := service.NewNotificationService(gw, clock)
	return trigger.NewAvailabilityReconciler(gw, notifications, clock, nopLogger())
}

func TestAvailabilityReconciler_IgnoresUnchangedFlag(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	r := setupReconciler(gw)

	err := r.Handle(context.Background(), trigger.PosItemUpdate{
		EventID: "event-1", POSID: "pos-a", ItemID: "burger",
		Before: boolPtr(true), After: boolPtr(true),
	})
	require.NoError(t, err)
	_, ok := gw.CanonicalItem("event-1", "burger")
	assert.False(t, ok)
}

func TestAvailabilityReconciler_Reactivation_SyncsGlobalAvailable(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	gw.SeedPOS("event-1", entity.PointOfSale{ID: "pos-a"})
	gw.SeedPOSItem("event-1", "pos-a", entity.POSItem{ID: "burger", AvailabilityFlag: boolPtr(true)})

	r := setupReconciler(gw)
	err := r.Handle(context.Background(), trigger.PosItemUpdate{
		EventID: "event-1", POSID: "pos-a", ItemID: "burger",
		Before: boolPtr(false), After: boolPtr(true),
	})
	require.NoError(t, err)

	item, ok := gw.CanonicalItem("event-1", "burger")
	require.True(t, ok)
	assert.True(t, item.IsAvailable)
}

func TestAvailabilityReconciler_Deactivation_MigratesToLeastLoadedSubstitute(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	gw.SeedPOS("event-1", entity.PointOfSale{ID: "pos-a"})
	gw.SeedPOS("event-1", entity.PointOfSale{ID: "pos-b"})
	gw.SeedPOSItem("event-1", "pos-a", entity.POSItem{ID: "burger", AvailabilityFlag: boolPtr(false)})
	gw.SeedPOSItem("event-1", "pos-b", entity.POSItem{ID: "burger", AvailabilityFlag: boolPtr(true)})

	gw.SeedDistributedOrder("event-1", "pos-a",
		entity.DistributedOrder{ID: "order-1", OrderStatus: valueobject.DistributedOrderOpen, ServingPointName: "Table 1"},
		[]entity.DistributedOrderItem{
			{ItemID: "burger", Count: 2, Price: decimal.NewFromInt(5), Status: valueobject.LineItemActive},
		},
	)

	r := setupReconciler(gw)
	err := r.Handle(context.Background(), trigger.PosItemUpdate{
		EventID: "event-1", POSID: "pos-a", ItemID: "burger",
		Before: boolPtr(true), After: boolPtr(false),
	})
	require.NoError(t, err)

	// Source order's burger line fully migrated away -> order transferred.
	sourceOrder, ok := gw.DistributedOrder("event-1", "pos-a", "order-1")
	require.True(t, ok)
	assert.Equal(t, valueobject.DistributedOrderTransferred, sourceOrder.OrderStatus)

	destItems := gw.DistributedOrderItems("event-1", "pos-b", "order-1")
	require.Len(t, destItems, 1)
	assert.Equal(t, 2, destItems[0].Count)

	item, ok := gw.CanonicalItem("event-1", "burger")
	require.True(t, ok)
	assert.True(t, item.IsAvailable)
}

func TestAvailabilityReconciler_Deactivation_LeavesStillServableItemsAtSource(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	gw.SeedPOS("event-1", entity.PointOfSale{ID: "pos-a"})
	gw.SeedPOS("event-1", entity.PointOfSale{ID: "pos-b"})
	gw.SeedPOSItem("event-1", "pos-a", entity.POSItem{ID: "burger", AvailabilityFlag: boolPtr(false)})
	gw.SeedPOSItem("event-1", "pos-a", entity.POSItem{ID: "fries", AvailabilityFlag: boolPtr(true)})
	gw.SeedPOSItem("event-1", "pos-b", entity.POSItem{ID: "burger", AvailabilityFlag: boolPtr(true)})
	gw.SeedPOSItem("event-1", "pos-b", entity.POSItem{ID: "fries", AvailabilityFlag: boolPtr(true)})

	gw.SeedDistributedOrder("event-1", "pos-a",
		entity.DistributedOrder{ID: "order-1", OrderStatus: valueobject.DistributedOrderOpen, ServingPointName: "Table 1"},
		[]entity.DistributedOrderItem{
			{ItemID: "burger", Count: 2, Price: decimal.NewFromInt(5), Status: valueobject.LineItemActive},
			{ItemID: "fries", Count: 1, Price: decimal.NewFromInt(3), Status: valueobject.LineItemActive},
		},
	)

	r := setupReconciler(gw)
	err := r.Handle(context.Background(), trigger.PosItemUpdate{
		EventID: "event-1", POSID: "pos-a", ItemID: "burger",
		Before: boolPtr(true), After: boolPtr(false),
	})
	require.NoError(t, err)

	// burger is no longer servable at pos-a and migrates to pos-b, but fries
	// is still servable at pos-a and must stay put (spec.md §4.5 S4).
	sourceItems := gw.DistributedOrderItems("event-1", "pos-a", "order-1")
	require.Len(t, sourceItems, 1)
	var friesRemained bool
	for _, it := range sourceItems {
		if it.ItemID == "fries" {
			friesRemained = it.Count == 1
		}
	}
	assert.True(t, friesRemained, "fries should remain at pos-a since it is still servable there")

	sourceOrder, ok := gw.DistributedOrder("event-1", "pos-a", "order-1")
	require.True(t, ok)
	assert.Equal(t, valueobject.DistributedOrderOpen, sourceOrder.OrderStatus, "order stays open since fries remains at the source")

	destItems := gw.DistributedOrderItems("event-1", "pos-b", "order-1")
	require.Len(t, destItems, 1)
	assert.Equal(t, valueobject.ID("burger"), destItems[0].ItemID)
	assert.Equal(t, 2, destItems[0].Count)
}

func TestAvailabilityReconciler_Deactivation_NoSubstitute_EmitsRefundAndMarksCanceling(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	gw.SeedPOS("event-1", entity.PointOfSale{ID: "pos-a"})
	gw.SeedPOSItem("event-1", "pos-a", entity.POSItem{ID: "burger", AvailabilityFlag: boolPtr(false)})

	gw.SeedDistributedOrder("event-1", "pos-a",
		entity.DistributedOrder{ID: "order-1", OrderStatus: valueobject.DistributedOrderOpen, ServingPointName: "Table 1"},
		[]entity.DistributedOrderItem{
			{ItemID: "burger", Count: 2, Price: decimal.NewFromInt(5), Status: valueobject.LineItemActive},
		},
	)

	r := setupReconciler(gw)
	err := r.Handle(context.Background(), trigger.PosItemUpdate{
		EventID: "event-1", POSID: "pos-a", ItemID: "burger",
		Before: boolPtr(true), After: boolPtr(false),
	})
	require.NoError(t, err)

	item, ok := gw.CanonicalItem("event-1", "burger")
	require.True(t, ok)
	assert.False(t, item.IsAvailable)

	items := gw.DistributedOrderItems("event-1", "pos-a", "order-1")
	require.Len(t, items, 1)
	assert.Equal(t, valueobject.LineItemMarkedForCanceling, items[0].Status)

	require.Len(t, gw.Notifications(), 1)
	for _, n := range gw.Notifications() {
		assert.Equal(t, valueobject.ActionRefund, n.Action)
		assert.True(t, n.Price.Equal(decimal.NewFromInt(10)))
	}
}

func TestAvailabilityReconciler_Deactivation_AbsentFlagTreatedAsTrue(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	gw.SeedPOS("event-1", entity.PointOfSale{ID: "pos-a"})
	gw.SeedPOSItem("event-1", "pos-a", entity.POSItem{ID: "burger"})

	r := setupReconciler(gw)
	err := r.Handle(context.Background(), trigger.PosItemUpdate{
		EventID: "event-1", POSID: "pos-a", ItemID: "burger",
		Before: nil, After: nil,
	})
	require.NoError(t, err)
	// absent == absent -> no transition, no-op.
	_, ok := gw.CanonicalItem("event-1", "burger")
	assert.False(t, ok)
}
