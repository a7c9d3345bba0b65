// Package model holds the MongoDB document shapes for every collection of
// spec.md §6.2, plus ToEntity/FromEntity conversions in the manner of the
// teacher's order_model.go.
package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/festivalpos/distribution-engine/internal/distribution/domain/entity"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
)

// EventDoc backs the Events/{eventId} document.
type EventDoc struct {
	ID               string `bson:"_id"`
	DistributionMode string `bson:"distributionMode"`
}

func (d EventDoc) ToEntity() entity.Event {
	return entity.Event{
		ID:               valueobject.ID(d.ID),
		DistributionMode: valueobject.DistributionMode(d.DistributionMode),
	}
}

// ServingPointDoc backs Events/{e}/Serving-Points/{id}.
type ServingPointDoc struct {
	ID       string `bson:"_id"`
	EventID  string `bson:"eventId"`
	PointID  string `bson:"pointId"`
	Name     string `bson:"name"`
	Location string `bson:"location"`
	AreaName string `bson:"areaName,omitempty"`
	Capacity int    `bson:"capacity,omitempty"`
}

func ServingPointKey(eventID, id valueobject.ID) string {
	return string(eventID) + "/" + string(id)
}

func (d ServingPointDoc) ToEntity() entity.ServingPoint {
	return entity.ServingPoint{
		ID:       valueobject.ID(d.PointID),
		Name:     d.Name,
		Location: d.Location,
		AreaName: d.AreaName,
		Capacity: d.Capacity,
	}
}

// CanonicalItemDoc backs Events/{e}/Items/{itemId} (or PosEvents/{e}/Items/{itemId}
// when the CanonicalItemsCollection knob selects the alternate root, spec.md §9).
type CanonicalItemDoc struct {
	ID           string  `bson:"_id"`
	EventID      string  `bson:"eventId"`
	ItemID       string  `bson:"itemId"`
	Name         string  `bson:"name"`
	Price        float64 `bson:"price"`
	Category     string  `bson:"category"`
	CategoryName string  `bson:"categoryName"`
	IsAvailable  bool    `bson:"isAvailable"`
	SoldOut      bool    `bson:"soldOut"`
}

func CanonicalItemKey(eventID, itemID valueobject.ID) string {
	return string(eventID) + "/" + string(itemID)
}

func (d CanonicalItemDoc) ToEntity() entity.CanonicalItem {
	return entity.CanonicalItem{
		ID:           valueobject.ID(d.ItemID),
		Name:         d.Name,
		Price:        decimal.NewFromFloat(d.Price),
		Category:     d.Category,
		CategoryName: d.CategoryName,
		IsAvailable:  d.IsAvailable,
		SoldOut:      d.SoldOut,
	}
}

// POSDoc backs Events/{e}/Points-of-Sale/{posId}.
type POSDoc struct {
	ID          string `bson:"_id"`
	EventID     string `bson:"eventId"`
	POSID       string `bson:"posId"`
	Name        string `bson:"name"`
	Description string `bson:"description"`
	Location    string `bson:"location"`
}

func POSKey(eventID, posID valueobject.ID) string {
	return string(eventID) + "/" + string(posID)
}

func (d POSDoc) ToEntity() entity.PointOfSale {
	return entity.PointOfSale{
		ID:          valueobject.ID(d.POSID),
		Name:        d.Name,
		Description: d.Description,
		Location:    d.Location,
	}
}

// POSItemDoc backs Events/{e}/Points-of-Sale/{p}/Items/{itemId}.
type POSItemDoc struct {
	ID                  string   `bson:"_id"`
	EventID             string   `bson:"eventId"`
	POSID               string   `bson:"posId"`
	ItemID              string   `bson:"itemId"`
	Name                string   `bson:"name"`
	Price               float64  `bson:"price"`
	Category            string   `bson:"category"`
	CategoryName        string   `bson:"categoryName"`
	IsAvailable         *bool    `bson:"isAvailable,omitempty"`
	SoldOut             bool     `bson:"soldOut"`
	SelectedExtras      []string `bson:"selectedExtras,omitempty"`
	ExcludedIngredients []string `bson:"excludedIngredients,omitempty"`
}

func POSItemKey(eventID, posID, itemID valueobject.ID) string {
	return string(eventID) + "/" + string(posID) + "/" + string(itemID)
}

func (d POSItemDoc) ToEntity() entity.POSItem {
	return entity.POSItem{
		ID:                  valueobject.ID(d.ItemID),
		Name:                d.Name,
		Price:               decimal.NewFromFloat(d.Price),
		Category:            d.Category,
		CategoryName:        d.CategoryName,
		AvailabilityFlag:    d.IsAvailable,
		SoldOut:             d.SoldOut,
		SelectedExtras:      d.SelectedExtras,
		ExcludedIngredients: d.ExcludedIngredients,
	}
}

// PurchaseDoc backs Events/{e}/Orders/{purchaseId}.
type PurchaseDoc struct {
	ID                 string    `bson:"_id"`
	EventID            string    `bson:"eventId"`
	PurchaseID         string    `bson:"purchaseId"`
	ServingPointID     string    `bson:"servingPointId"`
	UserID             string    `bson:"userId,omitempty"`
	Note               string    `bson:"note,omitempty"`
	OrderPlaced        time.Time `bson:"orderPlaced"`
	IsPaid             bool      `bson:"isPaid"`
	Distributed        bool      `bson:"distributed"`
	DistributedAt      time.Time `bson:"distributedAt,omitempty"`
	DistributionError  string    `bson:"distributionError,omitempty"`
	DistributionFailed bool      `bson:"distributionFailed,omitempty"`
	TotalPrice         float64   `bson:"totalPrice,omitempty"`
}

func PurchaseKey(eventID, purchaseID valueobject.ID) string {
	return string(eventID) + "/" + string(purchaseID)
}

func FromPurchaseEntity(eventID valueobject.ID, p entity.Purchase) PurchaseDoc {
	total, _ := p.TotalPrice.Float64()
	return PurchaseDoc{
		ID:                 PurchaseKey(eventID, p.ID),
		EventID:            string(eventID),
		PurchaseID:         string(p.ID),
		ServingPointID:     string(p.ServingPointID),
		UserID:             p.UserID,
		Note:               p.Note,
		OrderPlaced:        p.OrderPlaced.Time(),
		IsPaid:             p.IsPaid,
		Distributed:        p.Distributed,
		DistributedAt:      p.DistributedAt.Time(),
		DistributionError:  p.DistributionError,
		DistributionFailed: p.DistributionFailed,
		TotalPrice:         total,
	}
}

func (d PurchaseDoc) ToEntity() entity.Purchase {
	return entity.Purchase{
		ID:                 valueobject.ID(d.PurchaseID),
		ServingPointID:     valueobject.ID(d.ServingPointID),
		UserID:             d.UserID,
		Note:               d.Note,
		OrderPlaced:        valueobject.NewTimestamp(d.OrderPlaced),
		IsPaid:             d.IsPaid,
		Distributed:        d.Distributed,
		DistributedAt:      valueobject.NewTimestamp(d.DistributedAt),
		DistributionError:  d.DistributionError,
		DistributionFailed: d.DistributionFailed,
		TotalPrice:         decimal.NewFromFloat(d.TotalPrice),
	}
}

// PurchaseItemEntryDoc mirrors one entries[] element of a purchase-item
// document (spec.md §4.2).
type PurchaseItemEntryDoc struct {
	Quantity            float64  `bson:"quantity"`
	SelectedExtras      []string `bson:"selectedExtras,omitempty"`
	ExcludedIngredients []string `bson:"excludedIngredients,omitempty"`
}

// PurchaseItemDoc backs Events/{e}/Orders/{purchaseId}/Items/{itemId}.
type PurchaseItemDoc struct {
	ID                  string                 `bson:"_id"`
	EventID             string                 `bson:"eventId"`
	PurchaseID          string                 `bson:"purchaseId"`
	ItemID              string                 `bson:"itemId"`
	Quantity            *float64               `bson:"quantity,omitempty"`
	Count               *float64               `bson:"count,omitempty"`
	SelectedExtras      []string               `bson:"selectedExtras,omitempty"`
	ExcludedIngredients []string               `bson:"excludedIngredients,omitempty"`
	Entries             []PurchaseItemEntryDoc `bson:"entries,omitempty"`
	Status              string                 `bson:"status,omitempty"`
	Calculated          bool                   `bson:"__calculated,omitempty"`
}

func PurchaseItemKey(eventID, purchaseID, itemID valueobject.ID) string {
	return string(eventID) + "/" + string(purchaseID) + "/" + string(itemID)
}

func FromPurchaseItemEntity(eventID, purchaseID valueobject.ID, it entity.PurchaseItem) PurchaseItemDoc {
	entries := make([]PurchaseItemEntryDoc, len(it.Entries))
	for i, e := range it.Entries {
		entries[i] = PurchaseItemEntryDoc{
			Quantity:            e.Quantity,
			SelectedExtras:      e.SelectedExtras,
			ExcludedIngredients: e.ExcludedIngredients,
		}
	}
	return PurchaseItemDoc{
		ID:                  PurchaseItemKey(eventID, purchaseID, it.ItemID),
		EventID:             string(eventID),
		PurchaseID:          string(purchaseID),
		ItemID:              string(it.ItemID),
		Quantity:            it.Quantity,
		Count:               it.Count,
		SelectedExtras:      it.SelectedExtras,
		ExcludedIngredients: it.ExcludedIngredients,
		Entries:             entries,
		Status:              it.Status.String(),
		Calculated:          it.Calculated,
	}
}

func (d PurchaseItemDoc) ToEntity() entity.PurchaseItem {
	entries := make([]entity.PurchaseItemEntry, len(d.Entries))
	for i, e := range d.Entries {
		entries[i] = entity.PurchaseItemEntry{
			Quantity:            e.Quantity,
			SelectedExtras:      e.SelectedExtras,
			ExcludedIngredients: e.ExcludedIngredients,
		}
	}
	return entity.PurchaseItem{
		ItemID:              valueobject.ID(d.ItemID),
		Quantity:            d.Quantity,
		Count:                d.Count,
		SelectedExtras:      d.SelectedExtras,
		ExcludedIngredients: d.ExcludedIngredients,
		Entries:             entries,
		Status:              valueobject.LineItemStatus(d.Status),
		Calculated:          d.Calculated,
	}
}

// DistributedOrderDoc backs Events/{e}/Points-of-Sale/{p}/Orders/{orderId}.
type DistributedOrderDoc struct {
	ID                   string                  `bson:"_id"`
	EventID              string                  `bson:"eventId"`
	POSID                string                  `bson:"posId"`
	OrderID              string                  `bson:"orderId"`
	OrderStatus          string                  `bson:"orderStatus"`
	OrderDate            time.Time               `bson:"orderDate"`
	ServingPointName     string                  `bson:"servingPointName,omitempty"`
	ServingPointLocation string                  `bson:"servingPointLocation,omitempty"`
	Note                 string                  `bson:"note,omitempty"`
	TabletNumber         string                  `bson:"tabletNumber,omitempty"`
	TransferredAt        *time.Time              `bson:"transferredAt,omitempty"`
	StatusHistory        []StatusHistoryItemDoc  `bson:"statusHistory,omitempty"`
}

type StatusHistoryItemDoc struct {
	Status string    `bson:"status"`
	At     time.Time `bson:"at"`
	Reason string    `bson:"reason,omitempty"`
}

func DistributedOrderKey(eventID, posID, orderID valueobject.ID) string {
	return string(eventID) + "/" + string(posID) + "/" + string(orderID)
}

func FromDistributedOrderEntity(eventID, posID valueobject.ID, o entity.DistributedOrder) DistributedOrderDoc {
	history := make([]StatusHistoryItemDoc, len(o.StatusHistory))
	for i, h := range o.StatusHistory {
		history[i] = StatusHistoryItemDoc{Status: h.Status.String(), At: h.At.Time(), Reason: h.Reason}
	}
	var transferredAt *time.Time
	if o.TransferredAt != nil {
		t := o.TransferredAt.Time()
		transferredAt = &t
	}
	return DistributedOrderDoc{
		ID:                   DistributedOrderKey(eventID, posID, o.ID),
		EventID:              string(eventID),
		POSID:                string(posID),
		OrderID:              string(o.ID),
		OrderStatus:          o.OrderStatus.String(),
		OrderDate:            o.OrderDate.Time(),
		ServingPointName:     o.ServingPointName,
		ServingPointLocation: o.ServingPointLocation,
		Note:                 o.Note,
		TabletNumber:         o.TabletNumber,
		TransferredAt:        transferredAt,
		StatusHistory:        history,
	}
}

func (d DistributedOrderDoc) ToEntity() entity.DistributedOrder {
	history := make([]entity.StatusHistoryItem, len(d.StatusHistory))
	for i, h := range d.StatusHistory {
		history[i] = entity.StatusHistoryItem{
			Status: valueobject.DistributedOrderStatus(h.Status),
			At:     valueobject.NewTimestamp(h.At),
			Reason: h.Reason,
		}
	}
	var transferredAt *valueobject.Timestamp
	if d.TransferredAt != nil {
		ts := valueobject.NewTimestamp(*d.TransferredAt)
		transferredAt = &ts
	}
	return entity.DistributedOrder{
		ID:                   valueobject.ID(d.OrderID),
		OrderStatus:          valueobject.DistributedOrderStatus(d.OrderStatus),
		OrderDate:            valueobject.NewTimestamp(d.OrderDate),
		ServingPointName:     d.ServingPointName,
		ServingPointLocation: d.ServingPointLocation,
		Note:                 d.Note,
		TabletNumber:         d.TabletNumber,
		TransferredAt:        transferredAt,
		StatusHistory:        history,
	}
}

// DistributedOrderItemDoc backs
// Events/{e}/Points-of-Sale/{p}/Orders/{orderId}/Items/{key}.
type DistributedOrderItemDoc struct {
	ID                  string   `bson:"_id"`
	EventID             string   `bson:"eventId"`
	POSID               string   `bson:"posId"`
	OrderID             string   `bson:"orderId"`
	Key                 string   `bson:"key"`
	ItemID              string   `bson:"itemId"`
	Name                string   `bson:"name"`
	Price               float64  `bson:"price"`
	Count               int      `bson:"count"`
	Category            string   `bson:"category,omitempty"`
	CategoryName        string   `bson:"categoryName,omitempty"`
	SelectedExtras      []string `bson:"selectedExtras,omitempty"`
	ExcludedIngredients []string `bson:"excludedIngredients,omitempty"`
	Status              string   `bson:"status,omitempty"`
}

func DistributedOrderItemKey(eventID, posID, orderID valueobject.ID, key string) string {
	return string(eventID) + "/" + string(posID) + "/" + string(orderID) + "/" + key
}

func FromDistributedOrderItemEntity(eventID, posID, orderID valueobject.ID, it entity.DistributedOrderItem) DistributedOrderItemDoc {
	price, _ := it.Price.Float64()
	key := it.Key()
	return DistributedOrderItemDoc{
		ID:                  DistributedOrderItemKey(eventID, posID, orderID, key),
		EventID:             string(eventID),
		POSID:               string(posID),
		OrderID:             string(orderID),
		Key:                 key,
		ItemID:              string(it.ItemID),
		Name:                it.Name,
		Price:               price,
		Count:               it.Count,
		Category:            it.Category,
		CategoryName:        it.CategoryName,
		SelectedExtras:      it.SelectedExtras,
		ExcludedIngredients: it.ExcludedIngredients,
		Status:              string(it.Status),
	}
}

func (d DistributedOrderItemDoc) ToEntity() entity.DistributedOrderItem {
	status := d.Status
	if status == "" {
		status = string(valueobject.LineItemActive)
	}
	return entity.DistributedOrderItem{
		ItemID:              valueobject.ID(d.ItemID),
		Name:                d.Name,
		Price:               decimal.NewFromFloat(d.Price),
		Count:               d.Count,
		Category:            d.Category,
		CategoryName:        d.CategoryName,
		SelectedExtras:      d.SelectedExtras,
		ExcludedIngredients: d.ExcludedIngredients,
		Status:              valueobject.LineItemStatus(status),
	}
}

// NotificationDoc backs Events/{e}/Notifications/{id}.
type NotificationDoc struct {
	ID             string    `bson:"_id"`
	EventID        string    `bson:"eventId"`
	Title          string    `bson:"title"`
	Message        string    `bson:"message"`
	PointOfService string    `bson:"pointOfService,omitempty"`
	Price          float64   `bson:"price,omitempty"`
	ItemIDs        []string  `bson:"itemIds,omitempty"`
	OrderID        string    `bson:"orderId,omitempty"`
	PaymentMethod  string    `bson:"paymentMethod,omitempty"`
	Severity       string    `bson:"severity,omitempty"`
	Action         string    `bson:"action,omitempty"`
	Status         string    `bson:"status"`
	CreatedAt      time.Time `bson:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt"`
}

func FromNotificationEntity(eventID valueobject.ID, n entity.Notification, id valueobject.ID) NotificationDoc {
	itemIDs := make([]string, len(n.ItemIDs))
	for i, v := range n.ItemIDs {
		itemIDs[i] = string(v)
	}
	price, _ := n.Price.Float64()
	return NotificationDoc{
		ID:             string(id),
		EventID:        string(eventID),
		Title:          n.Title,
		Message:        n.Message,
		PointOfService: n.PointOfService,
		Price:          price,
		ItemIDs:        itemIDs,
		OrderID:        string(n.OrderID),
		PaymentMethod:  n.PaymentMethod,
		Severity:       string(n.Severity),
		Action:         string(n.Action),
		Status:         string(n.Status),
		CreatedAt:      n.CreatedAt.Time(),
		UpdatedAt:      n.UpdatedAt.Time(),
	}
}

func (d NotificationDoc) ToEntity() entity.Notification {
	itemIDs := make([]valueobject.ID, len(d.ItemIDs))
	for i, v := range d.ItemIDs {
		itemIDs[i] = valueobject.ID(v)
	}
	return entity.Notification{
		ID:             valueobject.ID(d.ID),
		Title:          d.Title,
		Message:        d.Message,
		PointOfService: d.PointOfService,
		Price:          decimal.NewFromFloat(d.Price),
		ItemIDs:        itemIDs,
		OrderID:        valueobject.ID(d.OrderID),
		PaymentMethod:  d.PaymentMethod,
		Severity:       valueobject.NotificationSeverity(d.Severity),
		Action:         valueobject.NotificationAction(d.Action),
		Status:         valueobject.NotificationStatus(d.Status),
		CreatedAt:      valueobject.NewTimestamp(d.CreatedAt),
		UpdatedAt:      valueobject.NewTimestamp(d.UpdatedAt),
	}
}
