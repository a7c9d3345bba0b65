package trigger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/entity"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
	"github.com/festivalpos/distribution-engine/internal/distribution/event/trigger"
	"github.com/festivalpos/distribution-engine/internal/distribution/testsupport"
)

func TestRefundPropagator_IgnoresNonRefundTransitions(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	p := trigger.NewRefundPropagator(gw, nopLogger())

	err := p.Handle(context.Background(), trigger.NotificationUpdate{
		EventID: "event-1", OrderID: "order-1", ItemIDs: []valueobject.ID{"burger"},
		BeforeStatus: valueobject.NotificationCreated, AfterStatus: valueobject.NotificationInProgress,
	})
	require.NoError(t, err)
	_, ok := gw.Purchase("event-1", "order-1")
	assert.False(t, ok)
}

func TestRefundPropagator_IgnoresAlreadyRefunded(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	p := trigger.NewRefundPropagator(gw, nopLogger())

	err := p.Handle(context.Background(), trigger.NotificationUpdate{
		EventID: "event-1", OrderID: "order-1", ItemIDs: []valueobject.ID{"burger"},
		BeforeStatus: valueobject.NotificationRefund, AfterStatus: valueobject.NotificationRefund,
	})
	require.NoError(t, err)
}

func TestRefundPropagator_CancelsAcrossMainAndDistributedCopies(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	gw.SeedCanonicalItem("event-1", entity.CanonicalItem{ID: "burger", Price: decimal.NewFromInt(5)})
	gw.SeedPurchaseItems("event-1", "order-1", []entity.PurchaseItem{
		{ItemID: "burger", Count: func() *float64 { v := 2.0; return &v }()},
	})
	gw.SeedPurchase("event-1", entity.Purchase{ID: "order-1", TotalPrice: decimal.NewFromInt(10)})
	gw.SeedDistributedOrder("event-1", "pos-a",
		entity.DistributedOrder{ID: "order-1", OrderStatus: valueobject.DistributedOrderOpen},
		[]entity.DistributedOrderItem{
			{ItemID: "burger", Count: 2, Price: decimal.NewFromInt(5), Status: valueobject.LineItemActive},
		},
	)

	p := trigger.NewRefundPropagator(gw, nopLogger())
	err := p.Handle(context.Background(), trigger.NotificationUpdate{
		EventID: "event-1", OrderID: "order-1", ItemIDs: []valueobject.ID{"burger"},
		BeforeStatus: valueobject.NotificationInProgress, AfterStatus: valueobject.NotificationRefund,
	})
	require.NoError(t, err)

	purchaseItems, err := gw.ListPurchaseItems(context.Background(), "event-1", "order-1")
	require.NoError(t, err)
	require.Len(t, purchaseItems, 1)
	assert.Equal(t, valueobject.LineItemCanceled, purchaseItems[0].Status)

	purchase, ok := gw.Purchase("event-1", "order-1")
	require.True(t, ok)
	assert.True(t, purchase.TotalPrice.Equal(decimal.Zero))

	distItems := gw.DistributedOrderItems("event-1", "pos-a", "order-1")
	require.Len(t, distItems, 1)
	assert.Equal(t, valueobject.LineItemCanceled, distItems[0].Status)
	assert.Equal(t, 0, distItems[0].Count)
}

func TestRefundPropagator_SkipsWhenOrderOrItemsMissing(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	p := trigger.NewRefundPropagator(gw, nopLogger())

	err := p.Handle(context.Background(), trigger.NotificationUpdate{
		EventID:      "event-1",
		BeforeStatus: valueobject.NotificationCreated,
		AfterStatus:  valueobject.NotificationRefund,
	})
	require.NoError(t, err)
}

func TestRefundPropagator_SkipsItemsAlreadyCanceled(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	gw.SeedCanonicalItem("event-1", entity.CanonicalItem{ID: "burger", Price: decimal.NewFromInt(5)})
	gw.SeedPurchase("event-1", entity.Purchase{ID: "order-1"})
	gw.SeedDistributedOrder("event-1", "pos-a",
		entity.DistributedOrder{ID: "order-1", OrderStatus: valueobject.DistributedOrderOpen},
		[]entity.DistributedOrderItem{
			{ItemID: "burger", Count: 2, Price: decimal.NewFromInt(5), Status: valueobject.LineItemCanceled},
		},
	)

	p := trigger.NewRefundPropagator(gw, nopLogger())
	err := p.Handle(context.Background(), trigger.NotificationUpdate{
		EventID: "event-1", OrderID: "order-1", ItemIDs: []valueobject.ID{"burger"},
		BeforeStatus: valueobject.NotificationInProgress, AfterStatus: valueobject.NotificationRefund,
	})
	require.NoError(t, err)

	// Already-canceled items are not a legal CANCEL transition, so the
	// state machine blocks a redundant rewrite.
	distItems := gw.DistributedOrderItems("event-1", "pos-a", "order-1")
	require.Len(t, distItems, 1)
	assert.Equal(t, 2, distItems[0].Count)
}
