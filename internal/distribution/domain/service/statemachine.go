package service

import (
	fsm "github.com/lingcoder/fsm-go"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
)

// DistributedOrderEvent names a transition trigger on a distributed order's
// lifecycle.
type DistributedOrderEvent string

const (
	OrderEventTransfer DistributedOrderEvent = "TRANSFER"
	OrderEventReopen   DistributedOrderEvent = "REOPEN"
)

// LineItemEvent names a transition trigger on a distributed-order item's
// lifecycle.
type LineItemEvent string

const (
	ItemEventMarkForCanceling LineItemEvent = "MARK_FOR_CANCELING"
	ItemEventCancel           LineItemEvent = "CANCEL"
	ItemEventReactivate       LineItemEvent = "REACTIVATE"
)

func noop[S comparable, E comparable]() fsm.ActionFunc[S, E, any] {
	return func(_, _ S, _ E, _ any) error { return nil }
}

// DistributedOrderStateMachine models the open→transferred (and back)
// transition graph shared by the Availability Reconciler (spec.md §4.5.3)
// and exercised by property test P6.
var DistributedOrderStateMachine = buildOrderStateMachine()

func buildOrderStateMachine() fsm.StateMachine[valueobject.DistributedOrderStatus, DistributedOrderEvent, any] {
	builder := fsm.NewStateMachineBuilder[valueobject.DistributedOrderStatus, DistributedOrderEvent, any]()

	builder.ExternalTransition().
		From(valueobject.DistributedOrderOpen).
		To(valueobject.DistributedOrderTransferred).
		On(OrderEventTransfer).
		Perform(noop[valueobject.DistributedOrderStatus, DistributedOrderEvent]()).
		Register()

	builder.ExternalTransition().
		From(valueobject.DistributedOrderTransferred).
		To(valueobject.DistributedOrderOpen).
		On(OrderEventReopen).
		Perform(noop[valueobject.DistributedOrderStatus, DistributedOrderEvent]()).
		Register()

	machine, _ := builder.Build("DistributedOrderStateMachine")
	return machine
}

// LineItemStateMachine models active→marked_for_canceling→canceled, plus
// reactivation when a migrated-back item returns to service (spec.md §4.5
// Case A, §4.6, exercised by property test P8).
var LineItemStateMachine = buildLineItemStateMachine()

func buildLineItemStateMachine() fsm.StateMachine[valueobject.LineItemStatus, LineItemEvent, any] {
	builder := fsm.NewStateMachineBuilder[valueobject.LineItemStatus, LineItemEvent, any]()

	builder.ExternalTransition().
		From(valueobject.LineItemActive).
		To(valueobject.LineItemMarkedForCanceling).
		On(ItemEventMarkForCanceling).
		Perform(noop[valueobject.LineItemStatus, LineItemEvent]()).
		Register()

	builder.ExternalTransitions().
		FromAmong(valueobject.LineItemActive, valueobject.LineItemMarkedForCanceling).
		To(valueobject.LineItemCanceled).
		On(ItemEventCancel).
		Perform(noop[valueobject.LineItemStatus, LineItemEvent]()).
		Register()

	builder.ExternalTransition().
		From(valueobject.LineItemMarkedForCanceling).
		To(valueobject.LineItemActive).
		On(ItemEventReactivate).
		Perform(noop[valueobject.LineItemStatus, LineItemEvent]()).
		Register()

	machine, _ := builder.Build("LineItemStateMachine")
	return machine
}
