// Package mongo implements the Store Gateway contract (domain/repository.Gateway)
// against MongoDB, the way the teacher's order_repo_imp.go implements
// OrderRepository: one *mongo.Collection per document family, bson.M
// filters, errors.Is(mongo.ErrNoDocuments) mapped to apperr.NotFound.
//
// Firestore's hierarchical sub-collections (Events/{e}/Points-of-Sale/{p}/Items/{i})
// are simulated with flat collections keyed by a compound "_id" built from
// the path segments, so a whole sub-collection can still be listed with a
// prefix-free equality filter on the parent id fields.
package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shopspring/decimal"

	"github.com/festivalpos/distribution-engine/internal/distribution/adapter/repository/mongo/model"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/entity"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/repository"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/service"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
	"github.com/festivalpos/distribution-engine/pkg/apperr"
)

const (
	collEvents                = "events"
	collServingPoints         = "serving_points"
	collPOS                   = "pos"
	collPOSItems              = "pos_items"
	collPurchases             = "purchases"
	collPurchaseItems         = "purchase_items"
	collDistributedOrders     = "distributed_orders"
	collDistributedOrderItems = "distributed_order_items"
	collNotifications         = "notifications"
)

var errs = apperr.NewBuilder("Gateway")

// Gateway is the MongoDB-backed implementation of repository.Gateway.
// canonicalItemsCollection resolves the open question of spec.md §9: which
// collection backs the canonical item catalog ("canonical_items" by
// default, or an alternate root selected by Config.Engine.CanonicalItemsCollection).
type Gateway struct {
	db                       *mongo.Database
	ids                      valueobject.IDGenerator
	canonicalItemsCollection string
}

// NewGateway constructs a MongoDB Gateway. canonicalItemsCollection is the
// engine-configured name of the canonical-items collection (spec.md §9).
func NewGateway(db *mongo.Database, ids valueobject.IDGenerator, canonicalItemsCollection string) *Gateway {
	if canonicalItemsCollection == "" {
		canonicalItemsCollection = "canonical_items"
	}
	return &Gateway{db: db, ids: ids, canonicalItemsCollection: canonicalItemsCollection}
}

func (g *Gateway) col(name string) *mongo.Collection { return g.db.Collection(name) }

func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errs.NotFound(op, err)
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return errs.Transient(op, err)
	}
	return errs.Permanent(op, err)
}

// GetEvent reads the tenant document.
func (g *Gateway) GetEvent(ctx context.Context, eventID valueobject.ID) (*entity.Event, error) {
	var doc model.EventDoc
	err := g.col(collEvents).FindOne(ctx, bson.M{"_id": string(eventID)}).Decode(&doc)
	if err != nil {
		return nil, mapErr("GetEvent", err)
	}
	e := doc.ToEntity()
	return &e, nil
}

// ListPOS lists every point of sale owned by the event.
func (g *Gateway) ListPOS(ctx context.Context, eventID valueobject.ID) ([]entity.PointOfSale, error) {
	cur, err := g.col(collPOS).Find(ctx, bson.M{"eventId": string(eventID)}, options.Find().SetSort(bson.M{"posId": 1}))
	if err != nil {
		return nil, mapErr("ListPOS", err)
	}
	defer cur.Close(ctx)

	var out []entity.PointOfSale
	for cur.Next(ctx) {
		var doc model.POSDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, mapErr("ListPOS", err)
		}
		out = append(out, doc.ToEntity())
	}
	return out, mapErr("ListPOS", cur.Err())
}

// ListPOSItems lists the available-items snapshot owned by one POS.
func (g *Gateway) ListPOSItems(ctx context.Context, eventID, posID valueobject.ID) ([]entity.POSItem, error) {
	cur, err := g.col(collPOSItems).Find(ctx, bson.M{"eventId": string(eventID), "posId": string(posID)})
	if err != nil {
		return nil, mapErr("ListPOSItems", err)
	}
	defer cur.Close(ctx)

	var out []entity.POSItem
	for cur.Next(ctx) {
		var doc model.POSItemDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, mapErr("ListPOSItems", err)
		}
		out = append(out, doc.ToEntity())
	}
	return out, mapErr("ListPOSItems", cur.Err())
}

// GetPOSItem reads one POS-local available-item document.
func (g *Gateway) GetPOSItem(ctx context.Context, eventID, posID, itemID valueobject.ID) (*entity.POSItem, error) {
	var doc model.POSItemDoc
	err := g.col(collPOSItems).FindOne(ctx, bson.M{"_id": model.POSItemKey(eventID, posID, itemID)}).Decode(&doc)
	if err != nil {
		return nil, mapErr("GetPOSItem", err)
	}
	it := doc.ToEntity()
	return &it, nil
}

// GetServingPoint reads one serving point document.
func (g *Gateway) GetServingPoint(ctx context.Context, eventID, id valueobject.ID) (*entity.ServingPoint, error) {
	var doc model.ServingPointDoc
	err := g.col(collServingPoints).FindOne(ctx, bson.M{"_id": model.ServingPointKey(eventID, id)}).Decode(&doc)
	if err != nil {
		return nil, mapErr("GetServingPoint", err)
	}
	sp := doc.ToEntity()
	return &sp, nil
}

// GetCanonicalItem reads one event-level item document.
func (g *Gateway) GetCanonicalItem(ctx context.Context, eventID, itemID valueobject.ID) (*entity.CanonicalItem, error) {
	var doc model.CanonicalItemDoc
	err := g.col(g.canonicalItemsCollection).FindOne(ctx, bson.M{"_id": model.CanonicalItemKey(eventID, itemID)}).Decode(&doc)
	if err != nil {
		return nil, mapErr("GetCanonicalItem", err)
	}
	it := doc.ToEntity()
	return &it, nil
}

// SetCanonicalItemAvailability persists the reconciler-owned derived
// availability flag (spec.md §3, I4).
func (g *Gateway) SetCanonicalItemAvailability(ctx context.Context, eventID, itemID valueobject.ID, available bool) error {
	_, err := g.col(g.canonicalItemsCollection).UpdateOne(ctx,
		bson.M{"_id": model.CanonicalItemKey(eventID, itemID)},
		bson.M{"$set": bson.M{"isAvailable": available}},
	)
	return mapErr("SetCanonicalItemAvailability", err)
}

// ListPurchaseItems lists the raw purchase-item documents for a purchase.
func (g *Gateway) ListPurchaseItems(ctx context.Context, eventID, purchaseID valueobject.ID) ([]entity.PurchaseItem, error) {
	cur, err := g.col(collPurchaseItems).Find(ctx, bson.M{"eventId": string(eventID), "purchaseId": string(purchaseID)})
	if err != nil {
		return nil, mapErr("ListPurchaseItems", err)
	}
	defer cur.Close(ctx)

	var out []entity.PurchaseItem
	for cur.Next(ctx) {
		var doc model.PurchaseItemDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, mapErr("ListPurchaseItems", err)
		}
		out = append(out, doc.ToEntity())
	}
	return out, mapErr("ListPurchaseItems", cur.Err())
}

// GetPurchase reads the main purchase document.
func (g *Gateway) GetPurchase(ctx context.Context, eventID, purchaseID valueobject.ID) (*entity.Purchase, error) {
	var doc model.PurchaseDoc
	err := g.col(collPurchases).FindOne(ctx, bson.M{"_id": model.PurchaseKey(eventID, purchaseID)}).Decode(&doc)
	if err != nil {
		return nil, mapErr("GetPurchase", err)
	}
	p := doc.ToEntity()
	return &p, nil
}

// UpsertPurchase writes the purchase document (create or full replace).
func (g *Gateway) UpsertPurchase(ctx context.Context, eventID valueobject.ID, purchase entity.Purchase) error {
	doc := model.FromPurchaseEntity(eventID, purchase)
	_, err := g.col(collPurchases).ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return mapErr("UpsertPurchase", err)
}

// CreatePurchase writes a brand-new purchase header and its items
// sub-collection via an ordered BulkWrite per collection, the same
// single-round-trip shape WriteDistributedOrderBatch uses for distributed
// orders.
func (g *Gateway) CreatePurchase(ctx context.Context, eventID valueobject.ID, purchase entity.Purchase, items []entity.PurchaseItem) error {
	purchaseDoc := model.FromPurchaseEntity(eventID, purchase)

	itemModels := make([]mongo.WriteModel, 0, len(items))
	for _, it := range items {
		itemDoc := model.FromPurchaseItemEntity(eventID, purchase.ID, it)
		itemModels = append(itemModels, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": itemDoc.ID}).
			SetReplacement(itemDoc).
			SetUpsert(true))
	}

	err := g.db.Client().UseSession(ctx, func(sctx mongo.SessionContext) error {
		if _, err := g.col(collPurchases).ReplaceOne(sctx, bson.M{"_id": purchaseDoc.ID}, purchaseDoc, options.Replace().SetUpsert(true)); err != nil {
			return err
		}
		if len(itemModels) > 0 {
			if _, err := g.col(collPurchaseItems).BulkWrite(sctx, itemModels); err != nil {
				return err
			}
		}
		return nil
	})
	return mapErr("CreatePurchase", err)
}

// CountOpenOrders counts distributed orders at posID with orderStatus=="open".
func (g *Gateway) CountOpenOrders(ctx context.Context, eventID, posID valueobject.ID) (int, error) {
	n, err := g.col(collDistributedOrders).CountDocuments(ctx, bson.M{
		"eventId":     string(eventID),
		"posId":       string(posID),
		"orderStatus": valueobject.DistributedOrderOpen.String(),
	})
	if err != nil {
		return 0, mapErr("CountOpenOrders", err)
	}
	return int(n), nil
}

// WriteDistributedOrderBatch atomically upserts one distributed-order
// document and its grouped item documents (spec.md §4.3, "single batched
// write"): the header and item BulkWrites run inside one RunTxn
// transaction, so either both land or neither does.
func (g *Gateway) WriteDistributedOrderBatch(ctx context.Context, eventID, posID valueobject.ID, order entity.DistributedOrder, items []entity.DistributedOrderItem) error {
	orderDoc := model.FromDistributedOrderEntity(eventID, posID, order)
	models := []mongo.WriteModel{
		mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": orderDoc.ID}).
			SetReplacement(orderDoc).
			SetUpsert(true),
	}
	for _, it := range items {
		itemDoc := model.FromDistributedOrderItemEntity(eventID, posID, order.ID, it)
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": itemDoc.ID}).
			SetReplacement(itemDoc).
			SetUpsert(true))
	}

	return g.RunTxn(ctx, func(tctx context.Context) error {
		if _, err := g.col(collDistributedOrders).BulkWrite(tctx, models[:1]); err != nil {
			return err
		}
		if len(models) > 1 {
			if _, err := g.col(collDistributedOrderItems).BulkWrite(tctx, models[1:]); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetDistributedOrder reads one POS-local sub-order.
func (g *Gateway) GetDistributedOrder(ctx context.Context, eventID, posID, orderID valueobject.ID) (*entity.DistributedOrder, error) {
	var doc model.DistributedOrderDoc
	err := g.col(collDistributedOrders).FindOne(ctx, bson.M{"_id": model.DistributedOrderKey(eventID, posID, orderID)}).Decode(&doc)
	if err != nil {
		return nil, mapErr("GetDistributedOrder", err)
	}
	o := doc.ToEntity()
	return &o, nil
}

// ListOpenDistributedOrders lists posID's sub-orders with orderStatus=="open".
func (g *Gateway) ListOpenDistributedOrders(ctx context.Context, eventID, posID valueobject.ID) ([]entity.DistributedOrder, error) {
	cur, err := g.col(collDistributedOrders).Find(ctx, bson.M{
		"eventId":     string(eventID),
		"posId":       string(posID),
		"orderStatus": valueobject.DistributedOrderOpen.String(),
	})
	if err != nil {
		return nil, mapErr("ListOpenDistributedOrders", err)
	}
	defer cur.Close(ctx)

	var out []entity.DistributedOrder
	for cur.Next(ctx) {
		var doc model.DistributedOrderDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, mapErr("ListOpenDistributedOrders", err)
		}
		out = append(out, doc.ToEntity())
	}
	return out, mapErr("ListOpenDistributedOrders", cur.Err())
}

// ListDistributedOrderItems lists the item documents of one distributed order.
func (g *Gateway) ListDistributedOrderItems(ctx context.Context, eventID, posID, orderID valueobject.ID) ([]entity.DistributedOrderItem, error) {
	cur, err := g.col(collDistributedOrderItems).Find(ctx, bson.M{
		"eventId": string(eventID),
		"posId":   string(posID),
		"orderId": string(orderID),
	})
	if err != nil {
		return nil, mapErr("ListDistributedOrderItems", err)
	}
	defer cur.Close(ctx)

	var out []entity.DistributedOrderItem
	for cur.Next(ctx) {
		var doc model.DistributedOrderItemDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, mapErr("ListDistributedOrderItems", err)
		}
		out = append(out, doc.ToEntity())
	}
	return out, mapErr("ListDistributedOrderItems", cur.Err())
}

// UpsertDistributedOrderHeader writes (create or merge) the header fields of
// a distributed order, used to open/re-open a destination order during
// migration (spec.md §4.5.3).
func (g *Gateway) UpsertDistributedOrderHeader(ctx context.Context, eventID, posID valueobject.ID, order entity.DistributedOrder) error {
	doc := model.FromDistributedOrderEntity(eventID, posID, order)
	_, err := g.col(collDistributedOrders).ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return mapErr("UpsertDistributedOrderHeader", err)
}

// MergeDistributedOrderItemStatus merge-writes a status change on matching
// item documents; count is left as is unless clearQuantity is set, in which
// case it is written as 0 (spec.md §4.5 Case B step 3, §4.6 step 1).
func (g *Gateway) MergeDistributedOrderItemStatus(ctx context.Context, eventID, posID, orderID valueobject.ID, keys []string, status valueobject.LineItemStatus, clearQuantity bool) error {
	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = model.DistributedOrderItemKey(eventID, posID, orderID, k)
	}
	set := bson.M{"status": status.String()}
	if clearQuantity {
		set["count"] = 0
	}
	_, err := g.col(collDistributedOrderItems).UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, bson.M{"$set": set})
	return mapErr("MergeDistributedOrderItemStatus", err)
}

// ListDistributedOrdersByID scans every POS of the event for a distributed
// order sharing orderID (spec.md §4.6 step 3).
func (g *Gateway) ListDistributedOrdersByID(ctx context.Context, eventID, orderID valueobject.ID) ([]repository.DistributedOrderRef, error) {
	cur, err := g.col(collDistributedOrders).Find(ctx, bson.M{"eventId": string(eventID), "orderId": string(orderID)})
	if err != nil {
		return nil, mapErr("ListDistributedOrdersByID", err)
	}
	defer cur.Close(ctx)

	var out []repository.DistributedOrderRef
	for cur.Next(ctx) {
		var doc model.DistributedOrderDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, mapErr("ListDistributedOrdersByID", err)
		}
		out = append(out, repository.DistributedOrderRef{POSID: valueobject.ID(doc.POSID), Order: doc.ToEntity()})
	}
	return out, mapErr("ListDistributedOrdersByID", cur.Err())
}

// MigrateOrderItem runs the per-item migration merge of spec.md §4.5.3 inside
// a transaction: reads the destination item doc, sums counts, writes the
// merged payload, and deletes the source item doc.
func (g *Gateway) MigrateOrderItem(ctx context.Context, eventID, sourcePOS, destPOS, orderID valueobject.ID, item entity.DistributedOrderItem) error {
	return g.RunTxn(ctx, func(sctx context.Context) error {
		sourceID := model.DistributedOrderItemKey(eventID, sourcePOS, orderID, item.Key())
		destID := model.DistributedOrderItemKey(eventID, destPOS, orderID, item.Key())

		var dest model.DistributedOrderItemDoc
		err := g.col(collDistributedOrderItems).FindOne(sctx, bson.M{"_id": destID}).Decode(&dest)
		switch {
		case err == nil:
			merged := model.FromDistributedOrderItemEntity(eventID, destPOS, orderID, item)
			merged.Count = dest.Count + item.Count
			if _, err := g.col(collDistributedOrderItems).ReplaceOne(sctx, bson.M{"_id": destID}, merged); err != nil {
				return err
			}
		case errors.Is(err, mongo.ErrNoDocuments):
			merged := model.FromDistributedOrderItemEntity(eventID, destPOS, orderID, item)
			if _, err := g.col(collDistributedOrderItems).InsertOne(sctx, merged); err != nil {
				return err
			}
		default:
			return err
		}

		_, err = g.col(collDistributedOrderItems).DeleteOne(sctx, bson.M{"_id": sourceID})
		return err
	})
}

// SetDistributedOrderStatus merge-writes the order header's status (and
// TransferredAt marker) after migration empties or refills it.
func (g *Gateway) SetDistributedOrderStatus(ctx context.Context, eventID, posID, orderID valueobject.ID, status valueobject.DistributedOrderStatus, history entity.StatusHistoryItem) error {
	set := bson.M{"orderStatus": status.String()}
	if status == valueobject.DistributedOrderTransferred {
		t := history.At.Time()
		set["transferredAt"] = t
	}
	push := bson.M{"statusHistory": model.StatusHistoryItemDoc{
		Status: history.Status.String(),
		At:     history.At.Time(),
		Reason: history.Reason,
	}}
	_, err := g.col(collDistributedOrders).UpdateOne(ctx,
		bson.M{"_id": model.DistributedOrderKey(eventID, posID, orderID)},
		bson.M{"$set": set, "$push": push},
	)
	return mapErr("SetDistributedOrderStatus", err)
}

// FindNotification looks up an existing notification for
// (orderId, action, status ∈ statuses), per spec.md §4.7.
func (g *Gateway) FindNotification(ctx context.Context, eventID, orderID valueobject.ID, action valueobject.NotificationAction, statuses []valueobject.NotificationStatus) (*entity.Notification, error) {
	statusVals := make([]string, len(statuses))
	for i, s := range statuses {
		statusVals[i] = s.String()
	}
	var doc model.NotificationDoc
	err := g.col(collNotifications).FindOne(ctx, bson.M{
		"eventId": string(eventID),
		"orderId": string(orderID),
		"action":  string(action),
		"status":  bson.M{"$in": statusVals},
	}).Decode(&doc)
	if err != nil {
		return nil, mapErr("FindNotification", err)
	}
	n := doc.ToEntity()
	return &n, nil
}

// UpsertNotification writes a new or updated notification document and
// returns its id.
func (g *Gateway) UpsertNotification(ctx context.Context, eventID valueobject.ID, n entity.Notification) (valueobject.ID, error) {
	id := n.ID
	if id == "" {
		id = g.ids.NewID()
	}
	doc := model.FromNotificationEntity(eventID, n, id)
	_, err := g.col(collNotifications).ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return "", mapErr("UpsertNotification", err)
	}
	return id, nil
}

// CancelPurchaseItems merge-writes {status:"canceled", quantity:0} on the
// purchase's item docs whose itemId is in itemIDs (spec.md §4.6 step 1).
func (g *Gateway) CancelPurchaseItems(ctx context.Context, eventID, purchaseID valueobject.ID, itemIDs []valueobject.ID) error {
	ids := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		ids[i] = string(id)
	}
	_, err := g.col(collPurchaseItems).UpdateMany(ctx, bson.M{
		"eventId":    string(eventID),
		"purchaseId": string(purchaseID),
		"itemId":     bson.M{"$in": ids},
	}, bson.M{"$set": bson.M{
		"status":   valueobject.LineItemCanceled.String(),
		"quantity": 0,
		"count":    0,
	}})
	return mapErr("CancelPurchaseItems", err)
}

// RecomputePurchaseTotal reads the purchase's item docs, sums price×quantity
// over non-canceled items, and merges the result back as totalPrice
// (spec.md §4.6 step 2).
func (g *Gateway) RecomputePurchaseTotal(ctx context.Context, eventID, purchaseID valueobject.ID) error {
	items, err := g.ListPurchaseItems(ctx, eventID, purchaseID)
	if err != nil {
		return err
	}

	catalog, err := g.itemPriceCatalog(ctx, eventID)
	if err != nil {
		return err
	}

	total := decimal.Zero
	for _, it := range items {
		if it.Status == valueobject.LineItemCanceled {
			continue
		}
		price := catalog[it.ItemID]
		lines := service.Normalize(it)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(len(lines)))))
	}

	floatTotal, _ := total.Float64()
	_, err = g.col(collPurchases).UpdateOne(ctx,
		bson.M{"_id": model.PurchaseKey(eventID, purchaseID)},
		bson.M{"$set": bson.M{"totalPrice": floatTotal}},
	)
	return mapErr("RecomputePurchaseTotal", err)
}

// RecomputeDistributedOrderTotal performs the same recomputation at POS
// scope for the matching distributed order (spec.md §4.6 step 3). The
// recomputed total is telemetry only: no invariant in spec.md §3 reads a
// distributed order's total back, so storing it alongside the order header
// is sufficient.
func (g *Gateway) RecomputeDistributedOrderTotal(ctx context.Context, eventID, posID, orderID valueobject.ID, itemIDs []valueobject.ID) error {
	items, err := g.ListDistributedOrderItems(ctx, eventID, posID, orderID)
	if err != nil {
		return err
	}

	total := decimal.Zero
	for _, it := range items {
		if it.Status == valueobject.LineItemCanceled {
			continue
		}
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Count))))
	}
	floatTotal, _ := total.Float64()

	_, err = g.col(collDistributedOrders).UpdateOne(ctx,
		bson.M{"_id": model.DistributedOrderKey(eventID, posID, orderID)},
		bson.M{"$set": bson.M{"totalPrice": floatTotal}},
	)
	return mapErr("RecomputeDistributedOrderTotal", err)
}

// itemPriceCatalog reads every canonical item's price once, for
// RecomputePurchaseTotal.
func (g *Gateway) itemPriceCatalog(ctx context.Context, eventID valueobject.ID) (map[valueobject.ID]decimal.Decimal, error) {
	cur, err := g.col(g.canonicalItemsCollection).Find(ctx, bson.M{"eventId": string(eventID)})
	if err != nil {
		return nil, mapErr("itemPriceCatalog", err)
	}
	defer cur.Close(ctx)

	out := make(map[valueobject.ID]decimal.Decimal)
	for cur.Next(ctx) {
		var doc model.CanonicalItemDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, mapErr("itemPriceCatalog", err)
		}
		out[valueobject.ID(doc.ItemID)] = decimal.NewFromFloat(doc.Price)
	}
	return out, mapErr("itemPriceCatalog", cur.Err())
}

// RunTxn runs fn under a read-modify-write transaction with optimistic
// concurrency (spec.md §4.1).
func (g *Gateway) RunTxn(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := g.db.Client().StartSession()
	if err != nil {
		return mapErr("RunTxn", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sctx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sctx)
	})
	return mapErr("RunTxn", err)
}
