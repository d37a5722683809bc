package comanda

import (
	"context"

	"github.com/google/uuid"

	"github.com/comandahub/comanda/internal/kitchen"
)

// LineRequest is one requested line of a batch submission.
type LineRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Note      string    `json:"note,omitempty"`
}

// BuildBatch validates the requested lines against the catalog, snapshots
// price and sector onto the line items, and splits the batch into one
// production order per sector. Nothing is persisted here; the caller commits
// the three collections atomically or not at all.
func BuildBatch(ctx context.Context, catalog Catalog, table *Table, tab *Tab, lines []LineRequest, createdBy string) (*OrderBatch, []*LineItem, []*kitchen.ProductionOrder, error) {
	batch := NewOrderBatch(tab.ID, table.ID, createdBy)
	batch.BeforeCreate()

	items := make([]*LineItem, 0, len(lines))
	for _, line := range lines {
		product, err := catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, nil, nil, err
		}
		if !product.Active {
			return nil, nil, nil, ErrInactiveProduct
		}

		item := NewLineItem(batch.ID, tab.ID, product, line.Quantity, line.Note)
		item.BeforeCreate()
		items = append(items, item)
	}

	orders := routeBySector(batch, table, items)
	return batch, items, orders, nil
}

// routeBySector groups the batch's items into production orders, one per
// sector, preserving first-seen sector order so tickets print in submission
// order.
func routeBySector(batch *OrderBatch, table *Table, items []*LineItem) []*kitchen.ProductionOrder {
	bySector := make(map[string][]kitchen.Line)
	var sectorOrder []string

	for _, item := range items {
		if _, seen := bySector[item.Sector]; !seen {
			sectorOrder = append(sectorOrder, item.Sector)
		}
		bySector[item.Sector] = append(bySector[item.Sector], kitchen.Line{
			LineItemID: item.ID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			Note:       item.Note,
		})
	}

	orders := make([]*kitchen.ProductionOrder, 0, len(sectorOrder))
	for _, sectorCode := range sectorOrder {
		orders = append(orders, kitchen.NewProductionOrder(
			batch.ID, batch.TabID, table.ID, table.Number, sectorCode, bySector[sectorCode],
		))
	}
	return orders
}
