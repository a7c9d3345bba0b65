// Package command holds write-side usecases: the Distribution Scheduler and
// its manual retry companion.
package command

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/entity"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/repository"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
	"github.com/festivalpos/distribution-engine/pkg/apperr"
	"github.com/festivalpos/distribution-engine/pkg/logger"
)

// DistributeInput is the Distribution Scheduler's contract input (spec.md §4.3).
type DistributeInput struct {
	EventID      valueobject.ID
	PurchaseID   valueobject.ID
	Items        []entity.CanonicalLineItem
	ServingPoint entity.ServingPoint
	Mode         valueobject.DistributionMode
	Note         string
}

// DistributedPurchase describes one POS-local sub-order the scheduler
// materialized.
type DistributedPurchase struct {
	POSID      valueobject.ID
	POSName    string
	OrderID    valueobject.ID
	ItemsCount int
}

// DistributeResult is the scheduler's contract output.
type DistributeResult struct {
	Success              bool
	PurchaseID           valueobject.ID
	DistributedPurchases []DistributedPurchase
	Error                string
}

// DistributionScheduler implements spec.md §4.3: least-loaded assignment of
// items to POS, grouped per POS, materialized atomically.
type DistributionScheduler struct {
	gateway repository.Gateway
	clock   valueobject.TimeProvider
	log     logger.Logger
	errs    *apperr.Builder
}

// NewDistributionScheduler constructs a DistributionScheduler.
func NewDistributionScheduler(gateway repository.Gateway, clock valueobject.TimeProvider, log logger.Logger) *DistributionScheduler {
	return &DistributionScheduler{
		gateway: gateway,
		clock:   clock,
		log:     log,
		errs:    apperr.NewBuilder("DistributionScheduler"),
	}
}

type posCandidate struct {
	pos   entity.PointOfSale
	items map[valueobject.ID]struct{}
}

// Distribute runs the scheduler's contract for one purchase.
func (s *DistributionScheduler) Distribute(ctx context.Context, in DistributeInput) (*DistributeResult, error) {
	if in.Mode == "" {
		in.Mode = valueobject.DistributionBalanced
	}
	if in.Mode == valueobject.DistributionGrouped {
		return nil, s.errs.Unsupported("Distribute", entity.ErrGroupedModeUnsupported)
	}
	if in.EventID == "" || in.PurchaseID == "" {
		return nil, s.errs.InvalidRequest("Distribute", entity.ErrMissingRequiredFields)
	}

	posList, err := s.gateway.ListPOS(ctx, in.EventID)
	if err != nil {
		return nil, err
	}
	if len(posList) == 0 {
		return &DistributeResult{Success: false, PurchaseID: in.PurchaseID, Error: entity.ErrNoPOSFound.Error()}, nil
	}

	candidates := make([]posCandidate, len(posList))
	for i, p := range posList {
		posItems, err := s.gateway.ListPOSItems(ctx, in.EventID, p.ID)
		if err != nil {
			return nil, err
		}
		set := make(map[valueobject.ID]struct{}, len(posItems))
		for _, it := range posItems {
			set[it.ID] = struct{}{}
		}
		candidates[i] = posCandidate{pos: p, items: set}
	}

	openCounts := make(map[valueobject.ID]int)
	var countsMu sync.Mutex

	buckets := make(map[valueobject.ID][]entity.CanonicalLineItem)

	for _, x := range in.Items {
		available := make([]posCandidate, 0, len(candidates))
		for _, c := range candidates {
			if _, ok := c.items[x.ItemID]; ok {
				available = append(available, c)
			}
		}
		if len(available) == 0 {
			s.log.Warn("item not routable to any point of sale", "eventId", in.EventID, "purchaseId", in.PurchaseID, "itemId", x.ItemID)
			continue
		}

		var toRead []valueobject.ID
		countsMu.Lock()
		for _, c := range available {
			if _, ok := openCounts[c.pos.ID]; !ok {
				toRead = append(toRead, c.pos.ID)
			}
		}
		countsMu.Unlock()

		if len(toRead) > 0 {
			g, gctx := errgroup.WithContext(ctx)
			results := make([]int, len(toRead))
			for i, posID := range toRead {
				i, posID := i, posID
				g.Go(func() error {
					n, err := s.gateway.CountOpenOrders(gctx, in.EventID, posID)
					if err != nil {
						return err
					}
					results[i] = n
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return nil, err
			}
			countsMu.Lock()
			for i, posID := range toRead {
				openCounts[posID] = results[i]
			}
			countsMu.Unlock()
		}

		best := available[0]
		countsMu.Lock()
		bestCount := openCounts[best.pos.ID]
		for _, c := range available[1:] {
			if openCounts[c.pos.ID] < bestCount {
				best = c
				bestCount = openCounts[c.pos.ID]
			}
		}
		countsMu.Unlock()

		buckets[best.pos.ID] = append(buckets[best.pos.ID], x)
	}

	posByID := make(map[valueobject.ID]entity.PointOfSale, len(posList))
	for _, p := range posList {
		posByID[p.ID] = p
	}

	var distributed []DistributedPurchase
	for _, p := range posList {
		items := buckets[p.ID]
		if len(items) == 0 {
			continue
		}

		grouped := groupLineItems(items)
		order := entity.DistributedOrder{
			ID:                   in.PurchaseID,
			OrderStatus:          valueobject.DistributedOrderOpen,
			OrderDate:            s.clock.Now(),
			ServingPointName:     in.ServingPoint.Name,
			ServingPointLocation: in.ServingPoint.Location,
			Note:                 in.Note,
		}

		if err := s.gateway.WriteDistributedOrderBatch(ctx, in.EventID, p.ID, order, grouped); err != nil {
			return nil, err
		}

		distributed = append(distributed, DistributedPurchase{
			POSID:      p.ID,
			POSName:    posByID[p.ID].Name,
			OrderID:    in.PurchaseID,
			ItemsCount: len(grouped),
		})
	}

	return &DistributeResult{
		Success:              true,
		PurchaseID:           in.PurchaseID,
		DistributedPurchases: distributed,
	}, nil
}

// groupLineItems groups canonical line items sharing (itemId, extras,
// excluded), summing their count (spec.md §4.3).
func groupLineItems(items []entity.CanonicalLineItem) []entity.DistributedOrderItem {
	order := make([]string, 0, len(items))
	byKey := make(map[string]*entity.DistributedOrderItem, len(items))

	for _, it := range items {
		key := it.GroupKey()
		if existing, ok := byKey[key]; ok {
			existing.Count++
			continue
		}
		order = append(order, key)
		byKey[key] = &entity.DistributedOrderItem{
			ItemID:              it.ItemID,
			Name:                it.Name,
			Price:               it.Price,
			Count:               1,
			Category:            it.Category,
			CategoryName:        it.CategoryName,
			SelectedExtras:      it.SelectedExtras,
			ExcludedIngredients: it.ExcludedIngredients,
			Status:              valueobject.LineItemActive,
		}
	}

	sort.Strings(order)
	out := make([]entity.DistributedOrderItem, 0, len(order))
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	return out
}
