package comanda

import (
	"context"
	"encoding/json"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/comandahub/comanda/pkg"
)

// Printer is notified after a successful batch submission and after
// bill-closing so physical tickets come out. Failures are logged and never
// roll back the transaction that triggered them.
type Printer interface {
	PrintBatch(ctx context.Context, table *Table, batch *OrderBatch)
	PrintBill(ctx context.Context, table *Table, tab *Tab, total float64)
}

// EventPrinter hands print jobs to the printing integration over the broker.
type EventPrinter struct {
	publisher events.Publisher
	logger    apt.Logger
}

func NewEventPrinter(publisher events.Publisher, logger apt.Logger) *EventPrinter {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &EventPrinter{publisher: publisher, logger: logger}
}

func (p *EventPrinter) PrintBatch(ctx context.Context, table *Table, batch *OrderBatch) {
	p.publish(ctx, pkg.PrintJobEvent{
		EventType:   "print.job.created",
		Kind:        "batch",
		TableID:     table.ID.String(),
		TableNumber: table.Number,
		BatchID:     batch.ID.String(),
		TabID:       batch.TabID.String(),
		OccurredAt:  time.Now(),
	})
}

func (p *EventPrinter) PrintBill(ctx context.Context, table *Table, tab *Tab, total float64) {
	p.publish(ctx, pkg.PrintJobEvent{
		EventType:   "print.job.created",
		Kind:        "bill",
		TableID:     table.ID.String(),
		TableNumber: table.Number,
		TabID:       tab.ID.String(),
		Total:       total,
		OccurredAt:  time.Now(),
	})
}

func (p *EventPrinter) publish(ctx context.Context, evt pkg.PrintJobEvent) {
	eventBytes, _ := json.Marshal(evt)
	if err := p.publisher.Publish(ctx, pkg.PrintingTopic, eventBytes); err != nil {
		p.logger.Errorf("Failed to publish print job: %v", err)
	}
}

// NoopPrinter is used in tests and when no printer integration is configured.
type NoopPrinter struct{}

func (NoopPrinter) PrintBatch(ctx context.Context, table *Table, batch *OrderBatch) {}

func (NoopPrinter) PrintBill(ctx context.Context, table *Table, tab *Tab, total float64) {}
