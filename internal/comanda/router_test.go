package comanda

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/comandahub/comanda/pkg/enums/productionstatus"
	"github.com/comandahub/comanda/pkg/enums/sector"
)

func TestBuildBatchRoutesBySector(t *testing.T) {
	ctx := context.Background()

	burger := &Product{ID: uuid.New(), Name: "Burger", Price: 10.00, Active: true, Sector: sector.Sectors.Kitchen.Code()}
	fries := &Product{ID: uuid.New(), Name: "Fries", Price: 6.50, Active: true, Sector: sector.Sectors.Kitchen.Code()}
	cocktail := &Product{ID: uuid.New(), Name: "Cocktail", Price: 18.00, Active: true, Sector: sector.Sectors.Bar.Code()}
	catalog := NewMockCatalog(burger, fries, cocktail)

	table := NewTable(5)
	table.Status = "occupied"
	tab := NewTab(table.ID, "waiter-1")

	lines := []LineRequest{
		{ProductID: burger.ID, Quantity: 2},
		{ProductID: cocktail.ID, Quantity: 1, Note: "no ice"},
		{ProductID: fries.ID, Quantity: 1},
	}

	batch, items, orders, err := BuildBatch(ctx, catalog, table, tab, lines, "waiter-1")
	if err != nil {
		t.Fatalf("BuildBatch() error = %v", err)
	}

	if batch.TabID != tab.ID || batch.TableID != table.ID {
		t.Error("batch not linked to tab and table")
	}

	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	if items[0].Price != 10.00 || items[0].Name != "Burger" {
		t.Errorf("price/name snapshot missing: %+v", items[0])
	}
	if items[1].Note != "no ice" {
		t.Errorf("note not carried: %q", items[1].Note)
	}

	if len(orders) != 2 {
		t.Fatalf("production orders = %d, want 2", len(orders))
	}
	if orders[0].Sector != sector.Sectors.Kitchen.Code() {
		t.Errorf("first order sector = %s, want kitchen", orders[0].Sector)
	}
	if orders[1].Sector != sector.Sectors.Bar.Code() {
		t.Errorf("second order sector = %s, want bar", orders[1].Sector)
	}
	if len(orders[0].Lines) != 2 {
		t.Errorf("kitchen order lines = %d, want 2", len(orders[0].Lines))
	}
	if len(orders[1].Lines) != 1 {
		t.Errorf("bar order lines = %d, want 1", len(orders[1].Lines))
	}

	for _, order := range orders {
		if order.Status != productionstatus.Statuses.Received.Code() {
			t.Errorf("order status = %s, want received", order.Status)
		}
		if order.BatchID != batch.ID {
			t.Error("order not linked to batch")
		}
		if len(order.LiveItemIDs) != len(order.Lines) {
			t.Errorf("live items = %d, want %d", len(order.LiveItemIDs), len(order.Lines))
		}
	}
}

func TestBuildBatchRejectsUnknownProduct(t *testing.T) {
	ctx := context.Background()
	catalog := NewMockCatalog()

	table := NewTable(6)
	tab := NewTab(table.ID, "waiter-1")

	_, _, _, err := BuildBatch(ctx, catalog, table, tab, []LineRequest{
		{ProductID: uuid.New(), Quantity: 1},
	}, "waiter-1")

	if !errors.Is(err, ErrUnknownProduct) {
		t.Errorf("BuildBatch() error = %v, want %v", err, ErrUnknownProduct)
	}
}

func TestBuildBatchRejectsInactiveProduct(t *testing.T) {
	ctx := context.Background()

	retired := &Product{ID: uuid.New(), Name: "Old Special", Price: 12.00, Active: false, Sector: sector.Sectors.Kitchen.Code()}
	catalog := NewMockCatalog(retired)

	table := NewTable(7)
	tab := NewTab(table.ID, "waiter-1")

	_, _, _, err := BuildBatch(ctx, catalog, table, tab, []LineRequest{
		{ProductID: retired.ID, Quantity: 1},
	}, "waiter-1")

	if !errors.Is(err, ErrInactiveProduct) {
		t.Errorf("BuildBatch() error = %v, want %v", err, ErrInactiveProduct)
	}
}
