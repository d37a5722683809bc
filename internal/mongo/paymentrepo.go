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

type PaymentRepo struct {
	collection *mongo.Collection
}

func NewPaymentRepo(db *mongo.Database) *PaymentRepo {
	return &PaymentRepo{
		collection: db.Collection("payments"),
	}
}

func (r *PaymentRepo) Get(ctx context.Context, id uuid.UUID) (*comanda.Payment, error) {
	var payment comanda.Payment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, comanda.ErrNotFound
		}
		return nil, fmt.Errorf("cannot get payment: %w", err)
	}
	return &payment, nil
}

func (r *PaymentRepo) GetByTab(ctx context.Context, tabID uuid.UUID) (*comanda.Payment, error) {
	var payment comanda.Payment
	err := r.collection.FindOne(ctx, bson.M{"tab_id": tabID}).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, comanda.ErrNotFound
		}
		return nil, fmt.Errorf("cannot get payment by tab: %w", err)
	}
	return &payment, nil
}
