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
	"github.com/comandahub/comanda/pkg/enums/itemstatus"
	"github.com/comandahub/comanda/pkg/enums/tablestatus"
)

// SettlementRepo runs the multi-document transitions: settle, transfer and
// item cancellation. Each uses a session transaction with a conditional first
// write, so the precondition is always checked against current truth.
type SettlementRepo struct {
	db       *mongo.Database
	tables   *mongo.Collection
	tabs     *mongo.Collection
	items    *mongo.Collection
	orders   *mongo.Collection
	payments *mongo.Collection
}

func NewSettlementRepo(db *mongo.Database) *SettlementRepo {
	return &SettlementRepo{
		db:       db,
		tables:   db.Collection("tables"),
		tabs:     db.Collection("tabs"),
		items:    db.Collection("line_items"),
		orders:   db.Collection("production_orders"),
		payments: db.Collection("payments"),
	}
}

func (r *SettlementRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return nil, fmt.Errorf("cannot start session: %w", err)
	}
	defer session.EndSession(ctx)

	return session.WithTransaction(ctx, fn)
}

// Open moves the table from free to occupied and inserts the fresh tab in the
// same transaction, so the pair can never be split by a crash.
func (r *SettlementRepo) Open(ctx context.Context, tableID uuid.UUID, openedBy string) (*comanda.Table, *comanda.Tab, error) {
	type openResult struct {
		table *comanda.Table
		tab   *comanda.Tab
	}

	result, err := r.withTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		now := time.Now()

		var table comanda.Table
		err := r.tables.FindOneAndUpdate(sc,
			bson.M{"_id": tableID, "status": tablestatus.Statuses.Free.Code()},
			bson.M{"$set": bson.M{
				"status":     tablestatus.Statuses.Occupied.Code(),
				"updated_at": now,
			}},
			options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&table)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				count, countErr := r.tables.CountDocuments(sc, bson.M{"_id": tableID})
				if countErr != nil {
					return nil, fmt.Errorf("cannot check table: %w", countErr)
				}
				if count == 0 {
					return nil, comanda.ErrNotFound
				}
				return nil, comanda.ErrInvalidState
			}
			return nil, fmt.Errorf("cannot occupy table: %w", err)
		}

		tab := comanda.NewTab(tableID, openedBy)
		tab.BeforeCreate()
		if _, err := r.tabs.InsertOne(sc, tab); err != nil {
			return nil, fmt.Errorf("cannot insert tab: %w", err)
		}

		return &openResult{table: &table, tab: tab}, nil
	})
	if err != nil {
		return nil, nil, err
	}

	res := result.(*openResult)
	return res.table, res.tab, nil
}

// Settle closes the tab, frees the table and inserts the payment record.
func (r *SettlementRepo) Settle(ctx context.Context, payment *comanda.Payment) error {
	_, err := r.withTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		now := time.Now()

		result, err := r.tabs.UpdateOne(sc,
			bson.M{"_id": payment.TabID, "status": comanda.TabStatusOpen},
			bson.M{"$set": bson.M{
				"status":     comanda.TabStatusSettled,
				"closed_at":  now,
				"updated_at": now,
			}})
		if err != nil {
			return nil, fmt.Errorf("cannot close tab: %w", err)
		}
		if result.MatchedCount == 0 {
			return nil, comanda.ErrAlreadySettled
		}

		if _, err := r.tables.UpdateOne(sc,
			bson.M{"_id": payment.TableID},
			bson.M{"$set": bson.M{
				"status":     tablestatus.Statuses.Free.Code(),
				"updated_at": now,
			}}); err != nil {
			return nil, fmt.Errorf("cannot free table: %w", err)
		}

		if _, err := r.payments.InsertOne(sc, payment); err != nil {
			return nil, fmt.Errorf("cannot insert payment: %w", err)
		}

		return nil, nil
	})
	return err
}

// Transfer moves the open tab onto a free destination table. The destination
// takes over the source's prior status, read inside the transaction, so a
// closing table stays closing on its new number.
func (r *SettlementRepo) Transfer(ctx context.Context, tabID, fromTableID, toTableID uuid.UUID) (string, error) {
	moved, err := r.withTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		now := time.Now()

		var source comanda.Table
		if err := r.tables.FindOne(sc, bson.M{"_id": fromTableID}).Decode(&source); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, comanda.ErrNotFound
			}
			return nil, fmt.Errorf("cannot get source table: %w", err)
		}

		result, err := r.tables.UpdateOne(sc,
			bson.M{"_id": toTableID, "status": tablestatus.Statuses.Free.Code()},
			bson.M{"$set": bson.M{
				"status":     source.Status,
				"updated_at": now,
			}})
		if err != nil {
			return nil, fmt.Errorf("cannot occupy destination table: %w", err)
		}
		if result.MatchedCount == 0 {
			return nil, comanda.ErrDestinationNotFree
		}

		result, err = r.tabs.UpdateOne(sc,
			bson.M{"_id": tabID, "status": comanda.TabStatusOpen},
			bson.M{"$set": bson.M{"table_id": toTableID, "updated_at": now}})
		if err != nil {
			return nil, fmt.Errorf("cannot move tab: %w", err)
		}
		if result.MatchedCount == 0 {
			return nil, comanda.ErrNoActiveTab
		}

		if _, err := r.tables.UpdateOne(sc,
			bson.M{"_id": fromTableID},
			bson.M{"$set": bson.M{
				"status":     tablestatus.Statuses.Free.Code(),
				"updated_at": now,
			}}); err != nil {
			return nil, fmt.Errorf("cannot free source table: %w", err)
		}

		return source.Status, nil
	})
	if err != nil {
		return "", err
	}
	return moved.(string), nil
}

// CancelItem voids the item, recomputes the tab total and pulls the item out
// of its production order's live membership.
func (r *SettlementRepo) CancelItem(ctx context.Context, itemID uuid.UUID, cancelledBy string) (*comanda.LineItem, *kitchen.ProductionOrder, *comanda.Tab, error) {
	type cancelResult struct {
		item  *comanda.LineItem
		order *kitchen.ProductionOrder
		tab   *comanda.Tab
	}

	result, err := r.withTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		now := time.Now()

		var item comanda.LineItem
		err := r.items.FindOne(sc, bson.M{"_id": itemID}).Decode(&item)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, comanda.ErrNotFound
			}
			return nil, fmt.Errorf("cannot get line item: %w", err)
		}

		// Items on a settled tab are immutable.
		settled, err := r.tabs.CountDocuments(sc, bson.M{
			"_id":    item.TabID,
			"status": comanda.TabStatusSettled,
		})
		if err != nil {
			return nil, fmt.Errorf("cannot check tab status: %w", err)
		}
		if settled > 0 {
			return nil, comanda.ErrAlreadySettled
		}

		cancelled := itemstatus.Statuses.Cancelled.Code()
		updated := r.items.FindOneAndUpdate(sc,
			bson.M{"_id": itemID, "status": bson.M{"$ne": cancelled}},
			bson.M{"$set": bson.M{
				"status":       cancelled,
				"cancelled_at": now,
				"cancelled_by": cancelledBy,
				"updated_at":   now,
			}},
			options.FindOneAndUpdate().SetReturnDocument(options.After))
		if err := updated.Decode(&item); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, comanda.ErrAlreadyCancelled
			}
			return nil, fmt.Errorf("cannot cancel line item: %w", err)
		}

		var order kitchen.ProductionOrder
		err = r.orders.FindOneAndUpdate(sc,
			bson.M{"batch_id": item.BatchID, "sector": item.Sector},
			bson.M{"$pull": bson.M{"live_item_ids": itemID}, "$set": bson.M{"updated_at": now}},
			options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&order)
		var orderPtr *kitchen.ProductionOrder
		if err == nil {
			orderPtr = &order
		} else if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("cannot update production order: %w", err)
		}

		tab, err := r.recomputeTabTotal(sc, item.TabID, now)
		if err != nil {
			return nil, err
		}

		return &cancelResult{item: &item, order: orderPtr, tab: tab}, nil
	})
	if err != nil {
		return nil, nil, nil, err
	}

	res := result.(*cancelResult)
	return res.item, res.order, res.tab, nil
}

// recomputeTabTotal re-derives the running total from the non-cancelled items
// and writes it back, keeping the total a derived value that cannot drift. It
// returns the updated tab.
func (r *SettlementRepo) recomputeTabTotal(sc mongo.SessionContext, tabID uuid.UUID, now time.Time) (*comanda.Tab, error) {
	cursor, err := r.items.Find(sc, bson.M{"tab_id": tabID})
	if err != nil {
		return nil, fmt.Errorf("cannot list tab items: %w", err)
	}
	defer cursor.Close(sc)

	var items []*comanda.LineItem
	if err := cursor.All(sc, &items); err != nil {
		return nil, fmt.Errorf("cannot decode tab items: %w", err)
	}

	total := comanda.RawTotal(items)

	var tab comanda.Tab
	if err := r.tabs.FindOneAndUpdate(sc,
		bson.M{"_id": tabID},
		bson.M{"$set": bson.M{"total": total, "updated_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&tab); err != nil {
		return nil, fmt.Errorf("cannot update tab total: %w", err)
	}

	return &tab, nil
}
