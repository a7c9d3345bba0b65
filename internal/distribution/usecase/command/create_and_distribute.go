package command

import (
	"context"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/entity"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/repository"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
	"github.com/festivalpos/distribution-engine/pkg/apperr"
	"github.com/festivalpos/distribution-engine/pkg/logger"
)

// CreateAndDistributeInput is the distributeOrder RPC's contract input
// (spec.md §6.1). Items are the raw purchase-item shape the store persists
// (spec.md §4.2) before normalization and catalog enrichment.
type CreateAndDistributeInput struct {
	EventID      valueobject.ID
	UserID       string
	Items        []entity.PurchaseItem
	ServingPoint entity.ServingPoint
	Mode         valueobject.DistributionMode
	Note         string
}

// CreateAndDistributeOrder implements the distributeOrder RPC (spec.md
// §6.1): it generates a purchase id, persists the main purchase and its
// items, then invokes the Distribution Scheduler synchronously.
type CreateAndDistributeOrder struct {
	gateway   repository.Gateway
	ids       valueobject.IDGenerator
	scheduler *DistributionScheduler
	clock     valueobject.TimeProvider
	log       logger.Logger
	errs      *apperr.Builder
}

// NewCreateAndDistributeOrder constructs a CreateAndDistributeOrder usecase.
func NewCreateAndDistributeOrder(gateway repository.Gateway, ids valueobject.IDGenerator, scheduler *DistributionScheduler, clock valueobject.TimeProvider, log logger.Logger) *CreateAndDistributeOrder {
	return &CreateAndDistributeOrder{
		gateway:   gateway,
		ids:       ids,
		scheduler: scheduler,
		clock:     clock,
		log:       log,
		errs:      apperr.NewBuilder("CreateAndDistributeOrder"),
	}
}

// Run creates the main purchase under a newly generated id, writes it and
// its items, and distributes it.
func (c *CreateAndDistributeOrder) Run(ctx context.Context, in CreateAndDistributeInput) (*DistributeResult, error) {
	if in.EventID == "" || len(in.Items) == 0 || in.ServingPoint.ID == "" {
		return nil, c.errs.InvalidRequest("Run", entity.ErrMissingRequiredFields)
	}

	purchaseID := c.ids.NewID()
	purchase := entity.Purchase{
		ID:             purchaseID,
		ServingPointID: in.ServingPoint.ID,
		UserID:         in.UserID,
		Note:           in.Note,
		OrderPlaced:    c.clock.Now(),
		IsPaid:         true,
	}

	if err := c.gateway.CreatePurchase(ctx, in.EventID, purchase, in.Items); err != nil {
		return nil, err
	}

	items := EnrichCanonicalItems(ctx, c.gateway, in.EventID, in.Items, c.log)

	result, err := c.scheduler.Distribute(ctx, DistributeInput{
		EventID:      in.EventID,
		PurchaseID:   purchaseID,
		Items:        items,
		ServingPoint: in.ServingPoint,
		Mode:         in.Mode,
		Note:         in.Note,
	})
	if err != nil {
		purchase.DistributionFailed = true
		purchase.DistributionError = err.Error()
		_ = c.gateway.UpsertPurchase(ctx, in.EventID, purchase)
		return nil, err
	}

	if result.Success {
		purchase.Distributed = true
		purchase.DistributedAt = c.clock.Now()
	} else {
		purchase.DistributionFailed = true
		purchase.DistributionError = result.Error
	}
	if err := c.gateway.UpsertPurchase(ctx, in.EventID, purchase); err != nil {
		return nil, err
	}

	return result, nil
}
