package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/comandahub/comanda/internal/comanda"
)

type TabRepo struct {
	collection *mongo.Collection
}

func NewTabRepo(db *mongo.Database) *TabRepo {
	return &TabRepo{
		collection: db.Collection("tabs"),
	}
}

func (r *TabRepo) Create(ctx context.Context, tab *comanda.Tab) error {
	if tab == nil {
		return fmt.Errorf("tab is nil")
	}

	if _, err := r.collection.InsertOne(ctx, tab); err != nil {
		return fmt.Errorf("cannot create tab: %w", err)
	}

	return nil
}

func (r *TabRepo) Get(ctx context.Context, id uuid.UUID) (*comanda.Tab, error) {
	var tab comanda.Tab
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tab)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, comanda.ErrNotFound
		}
		return nil, fmt.Errorf("cannot get tab: %w", err)
	}
	return &tab, nil
}

func (r *TabRepo) GetOpenByTable(ctx context.Context, tableID uuid.UUID) (*comanda.Tab, error) {
	var tab comanda.Tab
	err := r.collection.FindOne(ctx, bson.M{
		"table_id": tableID,
		"status":   comanda.TabStatusOpen,
	}).Decode(&tab)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, comanda.ErrNoActiveTab
		}
		return nil, fmt.Errorf("cannot get open tab: %w", err)
	}
	return &tab, nil
}

func (r *TabRepo) Save(ctx context.Context, tab *comanda.Tab) error {
	if tab == nil {
		return fmt.Errorf("tab is nil")
	}

	filter := bson.M{"_id": tab.ID}
	update := bson.M{"$set": tab}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot update tab: %w", err)
	}

	if result.MatchedCount == 0 {
		return comanda.ErrNotFound
	}

	return nil
}
