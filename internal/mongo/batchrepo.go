package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/comandahub/comanda/internal/comanda"
	"github.com/comandahub/comanda/internal/kitchen"
	"github.com/comandahub/comanda/pkg/enums/tablestatus"
)

type BatchRepo struct {
	db      *mongo.Database
	batches *mongo.Collection
	items   *mongo.Collection
	orders  *mongo.Collection
	tabs    *mongo.Collection
	tables  *mongo.Collection
}

func NewBatchRepo(db *mongo.Database) *BatchRepo {
	return &BatchRepo{
		db:      db,
		batches: db.Collection("order_batches"),
		items:   db.Collection("line_items"),
		orders:  db.Collection("production_orders"),
		tabs:    db.Collection("tabs"),
		tables:  db.Collection("tables"),
	}
}

func (r *BatchRepo) Get(ctx context.Context, id uuid.UUID) (*comanda.OrderBatch, error) {
	var batch comanda.OrderBatch
	err := r.batches.FindOne(ctx, bson.M{"_id": id}).Decode(&batch)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, comanda.ErrNotFound
		}
		return nil, fmt.Errorf("cannot get batch: %w", err)
	}
	return &batch, nil
}

func (r *BatchRepo) ListByTab(ctx context.Context, tabID uuid.UUID) ([]*comanda.OrderBatch, error) {
	cursor, err := r.batches.Find(ctx, bson.M{"tab_id": tabID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("cannot list batches: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*comanda.OrderBatch
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode batches: %w", err)
	}

	return result, nil
}

// Submit commits the batch, its line items and its production orders in one
// transaction. The table's status is re-checked inside the transaction so a
// submission racing a bill request or settlement fails with a fresh
// precondition error instead of writing into a closing table. The tab total
// is re-derived from the persisted items after the insert and returned.
func (r *BatchRepo) Submit(ctx context.Context, batch *comanda.OrderBatch, items []*comanda.LineItem, orders []*kitchen.ProductionOrder) (float64, error) {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return 0, fmt.Errorf("cannot start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		count, err := r.tables.CountDocuments(sc, bson.M{
			"_id":    batch.TableID,
			"status": tablestatus.Statuses.Occupied.Code(),
		})
		if err != nil {
			return nil, fmt.Errorf("cannot check table status: %w", err)
		}
		if count == 0 {
			return nil, comanda.ErrTableClosingForOrders
		}

		if _, err := r.batches.InsertOne(sc, batch); err != nil {
			return nil, fmt.Errorf("cannot insert batch: %w", err)
		}

		itemDocs := make([]interface{}, 0, len(items))
		for _, item := range items {
			itemDocs = append(itemDocs, item)
		}
		if _, err := r.items.InsertMany(sc, itemDocs); err != nil {
			return nil, fmt.Errorf("cannot insert line items: %w", err)
		}

		for _, order := range orders {
			if _, err := r.orders.InsertOne(sc, order); err != nil {
				return nil, fmt.Errorf("cannot insert production order: %w", err)
			}
		}

		cursor, err := r.items.Find(sc, bson.M{"tab_id": batch.TabID})
		if err != nil {
			return nil, fmt.Errorf("cannot list tab items: %w", err)
		}
		defer cursor.Close(sc)

		var tabItems []*comanda.LineItem
		if err := cursor.All(sc, &tabItems); err != nil {
			return nil, fmt.Errorf("cannot decode tab items: %w", err)
		}
		total := comanda.RawTotal(tabItems)

		updated, err := r.tabs.UpdateOne(sc,
			bson.M{"_id": batch.TabID, "status": comanda.TabStatusOpen},
			bson.M{"$set": bson.M{"total": total, "updated_at": time.Now()}})
		if err != nil {
			return nil, fmt.Errorf("cannot update tab total: %w", err)
		}
		if updated.MatchedCount == 0 {
			return nil, comanda.ErrNoActiveTab
		}

		return total, nil
	})
	if err != nil {
		return 0, err
	}
	return result.(float64), nil
}
