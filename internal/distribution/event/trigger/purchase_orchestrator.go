// Package trigger holds the engine's reactors: components invoked by a
// store-change feed rather than by an RPC (spec.md §6.3).
package trigger

import (
	"context"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/repository"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
	"github.com/festivalpos/distribution-engine/internal/distribution/usecase/command"
	"github.com/festivalpos/distribution-engine/pkg/apperr"
	"github.com/festivalpos/distribution-engine/pkg/logger"
)

// PurchaseWrite is the before/after envelope onPurchaseWrite is delivered
// with (spec.md §6.3). Before is nil on create; After is nil on delete.
type PurchaseWrite struct {
	EventID    valueobject.ID
	PurchaseID valueobject.ID
	Before     *PurchaseSnapshot
	After      *PurchaseSnapshot
}

// PurchaseSnapshot carries the handful of purchase fields the orchestrator's
// guard predicates need, avoiding a full document fetch on every delivery.
type PurchaseSnapshot struct {
	IsPaid         bool
	Distributed    bool
	ServingPointID valueobject.ID
}

// PurchaseOrchestrator implements spec.md §4.4: on the isPaid false→true
// transition, it loads the purchase context, invokes the scheduler, and
// marks the purchase distributed.
type PurchaseOrchestrator struct {
	gateway   repository.Gateway
	scheduler *command.DistributionScheduler
	clock     valueobject.TimeProvider
	log       logger.Logger
}

// NewPurchaseOrchestrator constructs a PurchaseOrchestrator.
func NewPurchaseOrchestrator(gateway repository.Gateway, scheduler *command.DistributionScheduler, clock valueobject.TimeProvider, log logger.Logger) *PurchaseOrchestrator {
	return &PurchaseOrchestrator{gateway: gateway, scheduler: scheduler, clock: clock, log: log}
}

// Handle runs the guard predicates and, if they pass, distributes the
// purchase.
func (o *PurchaseOrchestrator) Handle(ctx context.Context, w PurchaseWrite) error {
	if w.After == nil {
		return nil
	}
	if !w.After.IsPaid {
		return nil
	}
	if w.Before != nil && w.Before.IsPaid {
		return nil
	}
	if w.After.Distributed {
		return nil
	}
	if w.After.ServingPointID == "" {
		o.log.Error("purchase missing servingPointId", "eventId", w.EventID, "purchaseId", w.PurchaseID)
		return nil
	}

	servingPoint, err := o.gateway.GetServingPoint(ctx, w.EventID, w.After.ServingPointID)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			o.log.Error("serving point not found", "eventId", w.EventID, "purchaseId", w.PurchaseID, "servingPointId", w.After.ServingPointID)
			return nil
		}
		return err
	}

	purchase, err := o.gateway.GetPurchase(ctx, w.EventID, w.PurchaseID)
	if err != nil {
		return err
	}

	event, err := o.gateway.GetEvent(ctx, w.EventID)
	if err != nil {
		return err
	}

	rawItems, err := o.gateway.ListPurchaseItems(ctx, w.EventID, w.PurchaseID)
	if err != nil {
		return err
	}
	items := command.EnrichCanonicalItems(ctx, o.gateway, w.EventID, rawItems, o.log)

	result, distErr := o.scheduler.Distribute(ctx, command.DistributeInput{
		EventID:      w.EventID,
		PurchaseID:   w.PurchaseID,
		Items:        items,
		ServingPoint: *servingPoint,
		Mode:         event.Mode(),
		Note:         purchase.Note,
	})
	if distErr != nil {
		purchase.DistributionError = distErr.Error()
		purchase.DistributionFailed = true
		if err := o.gateway.UpsertPurchase(ctx, w.EventID, *purchase); err != nil {
			return err
		}
		return distErr
	}
	if !result.Success {
		purchase.DistributionError = result.Error
		purchase.DistributionFailed = true
		return o.gateway.UpsertPurchase(ctx, w.EventID, *purchase)
	}

	purchase.Distributed = true
	purchase.DistributedAt = o.clock.Now()
	return o.gateway.UpsertPurchase(ctx, w.EventID, *purchase)
}
