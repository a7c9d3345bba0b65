package trigger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/service"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
	infratime "github.com/festivalpos/distribution-engine/internal/distribution/infrastructure/time"
	"github.com/festivalpos/distribution-engine/internal/distribution/event/trigger"
	"github.com/festivalpos/distribution-engine/internal/distribution/testsupport"
)

func TestCashOrderNotifier_IgnoresNonCashPayments(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	notifications := service.NewNotificationService(gw, infratime.NewTestTimeProvider(time.Now()))
	n := trigger.NewCashOrderNotifier(notifications, nopLogger())

	err := n.Handle(context.Background(), trigger.OrderCreate{
		EventID: "event-1", OrderID: "order-1", PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.Empty(t, gw.Notifications())
}

func TestCashOrderNotifier_EmitsInfoNotificationForCash(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	notifications := service.NewNotificationService(gw, infratime.NewTestTimeProvider(time.Now()))
	n := trigger.NewCashOrderNotifier(notifications, nopLogger())

	err := n.Handle(context.Background(), trigger.OrderCreate{
		EventID: "event-1", OrderID: "order-1", PaymentMethod: "cash", PointOfService: "Table 1",
	})
	require.NoError(t, err)

	require.Len(t, gw.Notifications(), 1)
	for _, note := range gw.Notifications() {
		assert.Equal(t, valueobject.SeverityInfo, note.Severity)
		assert.Equal(t, "cash", note.PaymentMethod)
	}
}
