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

	"github.com/comandahub/comanda/internal/kitchen"
	"github.com/comandahub/comanda/pkg/enums/productionstatus"
)

type ProductionOrderRepo struct {
	db         *mongo.Database
	collection *mongo.Collection
	items      *mongo.Collection
}

func NewProductionOrderRepo(db *mongo.Database) *ProductionOrderRepo {
	return &ProductionOrderRepo{
		db:         db,
		collection: db.Collection("production_orders"),
		items:      db.Collection("line_items"),
	}
}

func (r *ProductionOrderRepo) Create(ctx context.Context, po *kitchen.ProductionOrder) error {
	if po == nil {
		return fmt.Errorf("production order is nil")
	}

	if _, err := r.collection.InsertOne(ctx, po); err != nil {
		return fmt.Errorf("cannot create production order: %w", err)
	}

	return nil
}

func (r *ProductionOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*kitchen.ProductionOrder, error) {
	var po kitchen.ProductionOrder
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&po)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, kitchen.ErrNotFound
		}
		return nil, fmt.Errorf("cannot get production order: %w", err)
	}
	return &po, nil
}

func (r *ProductionOrderRepo) FindByBatchAndSector(ctx context.Context, batchID uuid.UUID, sector string) (*kitchen.ProductionOrder, error) {
	var po kitchen.ProductionOrder
	err := r.collection.FindOne(ctx, bson.M{"batch_id": batchID, "sector": sector}).Decode(&po)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, kitchen.ErrNotFound
		}
		return nil, fmt.Errorf("cannot get production order: %w", err)
	}
	return &po, nil
}

func (r *ProductionOrderRepo) List(ctx context.Context, filter kitchen.Filter) ([]kitchen.ProductionOrder, error) {
	query := bson.M{}
	if filter.Sector != nil {
		query["sector"] = *filter.Sector
	}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list production orders: %w", err)
	}
	defer cursor.Close(ctx)

	var result []kitchen.ProductionOrder
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode production orders: %w", err)
	}

	return result, nil
}

// ListLive returns orders still on the board: not ready and with at least one
// live member.
func (r *ProductionOrderRepo) ListLive(ctx context.Context) ([]*kitchen.ProductionOrder, error) {
	query := bson.M{
		"status":        bson.M{"$ne": productionstatus.Statuses.Ready.Code()},
		"live_item_ids": bson.M{"$exists": true, "$ne": bson.A{}},
	}

	cursor, err := r.collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("cannot list live production orders: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*kitchen.ProductionOrder
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode production orders: %w", err)
	}

	return result, nil
}

// Advance moves the order from `from` to `to` and propagates the mapped item
// status to every live member, in one transaction. The conditional filter on
// the current status makes concurrent advances resolve deterministically.
func (r *ProductionOrderRepo) Advance(ctx context.Context, id uuid.UUID, from, to string) (*kitchen.ProductionOrder, error) {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return nil, fmt.Errorf("cannot start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		now := time.Now()

		set := bson.M{"status": to, "updated_at": now}
		switch to {
		case productionstatus.Statuses.InProgress.Code():
			set["started_at"] = now
		case productionstatus.Statuses.Ready.Code():
			set["ready_at"] = now
		}

		var po kitchen.ProductionOrder
		err := r.collection.FindOneAndUpdate(sc,
			bson.M{"_id": id, "status": from},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&po)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				count, countErr := r.collection.CountDocuments(sc, bson.M{"_id": id})
				if countErr == nil && count == 0 {
					return nil, kitchen.ErrNotFound
				}
				return nil, kitchen.ErrInvalidTransition
			}
			return nil, fmt.Errorf("cannot advance production order: %w", err)
		}

		itemStatus := kitchen.ItemStatusFor(to)
		if itemStatus != "" && len(po.LiveItemIDs) > 0 {
			if _, err := r.items.UpdateMany(sc,
				bson.M{"_id": bson.M{"$in": po.LiveItemIDs}},
				bson.M{"$set": bson.M{"status": itemStatus, "updated_at": now}}); err != nil {
				return nil, fmt.Errorf("cannot propagate item status: %w", err)
			}
		}

		return &po, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*kitchen.ProductionOrder), nil
}
