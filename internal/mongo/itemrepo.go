package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/comandahub/comanda/internal/comanda"
)

type LineItemRepo struct {
	collection *mongo.Collection
}

func NewLineItemRepo(db *mongo.Database) *LineItemRepo {
	return &LineItemRepo{
		collection: db.Collection("line_items"),
	}
}

func (r *LineItemRepo) Get(ctx context.Context, id uuid.UUID) (*comanda.LineItem, error) {
	var item comanda.LineItem
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, comanda.ErrNotFound
		}
		return nil, fmt.Errorf("cannot get line item: %w", err)
	}
	return &item, nil
}

func (r *LineItemRepo) ListByTab(ctx context.Context, tabID uuid.UUID) ([]*comanda.LineItem, error) {
	return r.list(ctx, bson.M{"tab_id": tabID})
}

func (r *LineItemRepo) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]*comanda.LineItem, error) {
	return r.list(ctx, bson.M{"batch_id": batchID})
}

func (r *LineItemRepo) list(ctx context.Context, filter bson.M) ([]*comanda.LineItem, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("cannot list line items: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*comanda.LineItem
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode line items: %w", err)
	}

	return result, nil
}
