// Package dto holds the wire-level request/response shapes for the
// distribution-engine HTTP surface, kept separate from the domain types the
// way the teacher's adapter/controller/http/dto package does for orders.
package dto

import (
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/entity"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
	"github.com/festivalpos/distribution-engine/internal/distribution/usecase/command"
)

// LineItemRequest is one raw purchase-item entry submitted for
// distribution. Quantity defaults to 1 when omitted (spec.md §4.2).
type LineItemRequest struct {
	ItemID              string   `json:"itemId" validate:"required"`
	Quantity            *float64 `json:"quantity"`
	SelectedExtras      []string `json:"selectedExtras"`
	ExcludedIngredients []string `json:"excludedIngredients"`
}

// ServingPointRequest identifies where distributed orders should be
// delivered to.
type ServingPointRequest struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// DistributeOrderRequest is the distributeOrder RPC's request body
// (spec.md §6.1: "distributeOrder(eventId, items[], servingPoint, userId?,
// distributionMode?, note?)").
type DistributeOrderRequest struct {
	UserID       string              `json:"userId"`
	Items        []LineItemRequest   `json:"items" validate:"required,min=1,dive"`
	ServingPoint ServingPointRequest `json:"servingPoint" validate:"required"`
	Mode         string              `json:"distributionMode" validate:"omitempty,oneof=balanced grouped"`
	Note         string              `json:"note"`
}

// ToInput converts the wire request into the purchase-creation usecase's
// contract input. Raw purchase-item documents are persisted as-is; the
// usecase normalizes and catalog-enriches them before scheduling.
func (r DistributeOrderRequest) ToInput(eventID valueobject.ID) command.CreateAndDistributeInput {
	items := make([]entity.PurchaseItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, entity.PurchaseItem{
			ItemID:              valueobject.ID(it.ItemID),
			Quantity:            it.Quantity,
			SelectedExtras:      it.SelectedExtras,
			ExcludedIngredients: it.ExcludedIngredients,
		})
	}

	mode, _ := valueobject.ParseDistributionMode(r.Mode)

	return command.CreateAndDistributeInput{
		EventID: eventID,
		UserID:  r.UserID,
		Items:   items,
		ServingPoint: entity.ServingPoint{
			ID:       valueobject.ID(r.ServingPoint.ID),
			Name:     r.ServingPoint.Name,
			Location: r.ServingPoint.Location,
		},
		Mode: mode,
		Note: r.Note,
	}
}

// DistributedPurchaseResponse mirrors command.DistributedPurchase.
type DistributedPurchaseResponse struct {
	POSID      string `json:"posId"`
	POSName    string `json:"posName"`
	OrderID    string `json:"orderId"`
	ItemsCount int    `json:"itemsCount"`
}

// DistributeOrderResponse mirrors command.DistributeResult.
type DistributeOrderResponse struct {
	Success              bool                           `json:"success"`
	PurchaseID           string                         `json:"purchaseId"`
	DistributedPurchases []DistributedPurchaseResponse `json:"distributedPurchases,omitempty"`
	Error                string                         `json:"error,omitempty"`
}

// DistributeResultToResponse converts the scheduler's result into its wire
// representation.
func DistributeResultToResponse(r *command.DistributeResult) DistributeOrderResponse {
	out := DistributeOrderResponse{
		Success:    r.Success,
		PurchaseID: string(r.PurchaseID),
		Error:      r.Error,
	}
	for _, p := range r.DistributedPurchases {
		out.DistributedPurchases = append(out.DistributedPurchases, DistributedPurchaseResponse{
			POSID:      string(p.POSID),
			POSName:    p.POSName,
			OrderID:    string(p.OrderID),
			ItemsCount: p.ItemsCount,
		})
	}
	return out
}
