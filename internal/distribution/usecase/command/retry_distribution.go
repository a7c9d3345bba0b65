package command

import (
	"context"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/entity"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/repository"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/service"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
	"github.com/festivalpos/distribution-engine/pkg/apperr"
	"github.com/festivalpos/distribution-engine/pkg/logger"
)

// RetryDistribution is an operator-invoked usecase for a purchase that
// previously failed distribution (distributionFailed=true). It is never
// called automatically — spec.md §1 forbids a durable retry queue, not a
// manual one (SPEC_FULL.md §5).
type RetryDistribution struct {
	gateway   repository.Gateway
	scheduler *DistributionScheduler
	clock     valueobject.TimeProvider
	log       logger.Logger
	errs      *apperr.Builder
}

// NewRetryDistribution constructs a RetryDistribution usecase.
func NewRetryDistribution(gateway repository.Gateway, scheduler *DistributionScheduler, clock valueobject.TimeProvider, log logger.Logger) *RetryDistribution {
	return &RetryDistribution{
		gateway:   gateway,
		scheduler: scheduler,
		clock:     clock,
		log:       log,
		errs:      apperr.NewBuilder("RetryDistribution"),
	}
}

// Run clears the failure markers on the purchase and re-invokes the
// scheduler with freshly loaded, normalized items.
func (r *RetryDistribution) Run(ctx context.Context, eventID, purchaseID valueobject.ID) (*DistributeResult, error) {
	purchase, err := r.gateway.GetPurchase(ctx, eventID, purchaseID)
	if err != nil {
		return nil, err
	}
	if !purchase.DistributionFailed {
		return nil, r.errs.InvalidRequest("Run", entity.ErrInternal)
	}

	servingPoint, err := r.gateway.GetServingPoint(ctx, eventID, purchase.ServingPointID)
	if err != nil {
		return nil, err
	}

	event, err := r.gateway.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	rawItems, err := r.gateway.ListPurchaseItems(ctx, eventID, purchaseID)
	if err != nil {
		return nil, err
	}

	items := EnrichCanonicalItems(ctx, r.gateway, eventID, rawItems, r.log)

	purchase.DistributionFailed = false
	purchase.DistributionError = ""
	purchase.Distributed = false
	if err := r.gateway.UpsertPurchase(ctx, eventID, *purchase); err != nil {
		return nil, err
	}

	result, err := r.scheduler.Distribute(ctx, DistributeInput{
		EventID:      eventID,
		PurchaseID:   purchaseID,
		Items:        items,
		ServingPoint: *servingPoint,
		Mode:         event.Mode(),
		Note:         purchase.Note,
	})
	if err != nil {
		purchase.DistributionFailed = true
		purchase.DistributionError = err.Error()
		_ = r.gateway.UpsertPurchase(ctx, eventID, *purchase)
		return nil, err
	}

	if result.Success {
		purchase.Distributed = true
		purchase.DistributedAt = r.clock.Now()
	} else {
		purchase.DistributionFailed = true
		purchase.DistributionError = result.Error
	}
	if err := r.gateway.UpsertPurchase(ctx, eventID, *purchase); err != nil {
		return nil, err
	}

	return result, nil
}

// EnrichCanonicalItems normalizes each raw purchase-item document and fills
// in catalog fields from the canonical item document, falling back to
// whatever the purchase-item document carried when the canonical doc is
// missing (spec.md §4.4). Shared by RetryDistribution and the Purchase
// Orchestrator trigger.
func EnrichCanonicalItems(ctx context.Context, gateway repository.Gateway, eventID valueobject.ID, rawItems []entity.PurchaseItem, log logger.Logger) []entity.CanonicalLineItem {
	var out []entity.CanonicalLineItem
	for _, raw := range rawItems {
		for _, line := range service.Normalize(raw) {
			catalog, err := gateway.GetCanonicalItem(ctx, eventID, line.ItemID)
			if err != nil {
				log.Warn("canonical item missing, using purchase-item fallback", "itemId", line.ItemID)
				out = append(out, line)
				continue
			}
			line.Name = catalog.Name
			line.Price = catalog.Price
			line.Category = catalog.Category
			line.CategoryName = catalog.CategoryName
			out = append(out, line)
		}
	}
	return out
}
