package comanda

import (
	"context"

	"github.com/google/uuid"

	"github.com/comandahub/comanda/internal/kitchen"
)

type TableRepo interface {
	Create(ctx context.Context, table *Table) error
	Get(ctx context.Context, id uuid.UUID) (*Table, error)
	GetByNumber(ctx context.Context, number int) (*Table, error)
	List(ctx context.Context) ([]*Table, error)
	ListByStatus(ctx context.Context, status string) ([]*Table, error)
	Save(ctx context.Context, table *Table) error
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateStatus moves the table from status `from` to status `to` as one
	// compare-and-set against persisted state, so racing staff actions always
	// check their precondition against current truth. It returns the updated
	// table, or ErrInvalidState when the table is no longer in `from`.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) (*Table, error)
}

type TabRepo interface {
	Create(ctx context.Context, tab *Tab) error
	Get(ctx context.Context, id uuid.UUID) (*Tab, error)
	// GetOpenByTable returns the table's open tab, or ErrNoActiveTab.
	GetOpenByTable(ctx context.Context, tableID uuid.UUID) (*Tab, error)
	Save(ctx context.Context, tab *Tab) error
}

type BatchRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*OrderBatch, error)
	ListByTab(ctx context.Context, tabID uuid.UUID) ([]*OrderBatch, error)

	// Submit persists the batch, its line items and its production orders
	// all-or-nothing. The tab total is recomputed from the persisted items
	// inside the same transaction and returned, so a racing cancellation or
	// submission can never be overwritten by a stale client-side sum.
	Submit(ctx context.Context, batch *OrderBatch, items []*LineItem, orders []*kitchen.ProductionOrder) (float64, error)
}

type LineItemRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*LineItem, error)
	ListByTab(ctx context.Context, tabID uuid.UUID) ([]*LineItem, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]*LineItem, error)
}

type PaymentRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*Payment, error)
	GetByTab(ctx context.Context, tabID uuid.UUID) (*Payment, error)
}

// SettlementRepo bundles the multi-document transitions that must commit
// atomically across tables, tabs, items and production orders.
type SettlementRepo interface {
	// Open seats guests: it moves the table from free to occupied and creates
	// the fresh tab in one transaction, so a crash can never leave an occupied
	// table without a tab. Fails ErrInvalidState when the table is not free.
	Open(ctx context.Context, tableID uuid.UUID, openedBy string) (*Table, *Tab, error)

	// Settle closes the tab, frees the table and records the payment in one
	// transaction. Fails ErrAlreadySettled when the tab is no longer open.
	Settle(ctx context.Context, payment *Payment) error

	// Transfer moves the open tab onto a free destination table. The
	// destination takes over the source's prior status, read inside the
	// transaction, and the source is freed. It returns the status applied to
	// the destination. Fails ErrDestinationNotFree when the destination was
	// taken concurrently.
	Transfer(ctx context.Context, tabID, fromTableID, toTableID uuid.UUID) (string, error)

	// CancelItem cancels the line item, recomputes the tab total and removes
	// the item from its production order's live membership, all in one
	// transaction. It returns the updated item, the updated production order
	// and the updated tab.
	CancelItem(ctx context.Context, itemID uuid.UUID, cancelledBy string) (*LineItem, *kitchen.ProductionOrder, *Tab, error)
}
