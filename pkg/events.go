package pkg

import "time"

const (
	// TableStatusTopic delivers authoritative status changes for tables.
	TableStatusTopic = "tables.status"
	// TabUpdatedTopic delivers running-total changes for open tabs.
	TabUpdatedTopic = "tabs.updated"
	// ProductionOrdersTopic is the base subject for production order events;
	// concrete events are published on "<base>.<sector>" so displays can
	// subscribe per sector or with a wildcard.
	ProductionOrdersTopic = "production.orders"
	// PrintingTopic carries fire-and-forget print jobs for physical tickets.
	PrintingTopic = "printing.jobs"

	EventTableStatusChanged            = "table.status.changed"
	EventTabUpdated                    = "tab.updated"
	EventProductionOrderCreated        = "production.order.created"
	EventProductionOrderStatusChanged  = "production.order.status_changed"
	EventProductionOrderItemsCancelled = "production.order.items_cancelled"
)

// ProductionOrderSubject builds the per-sector subject for production order
// events. Subscribers may use ProductionOrdersTopic+".*" to receive all sectors.
func ProductionOrderSubject(sectorCode string) string {
	return ProductionOrdersTopic + "." + sectorCode
}

// TableStatusEvent captures a table transition. PreviousStatus is empty on
// creation.
type TableStatusEvent struct {
	EventType      string    `json:"event_type"`
	TableID        string    `json:"table_id"`
	TableNumber    int       `json:"table_number"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	Source         string    `json:"source,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// TabUpdatedEvent tells table-detail screens that a tab's contents changed.
type TabUpdatedEvent struct {
	EventType  string    `json:"event_type"`
	TabID      string    `json:"tab_id"`
	TableID    string    `json:"table_id"`
	Total      float64   `json:"total"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ProductionOrderEventMetadata is shared by all production order events.
type ProductionOrderEventMetadata struct {
	EventType   string    `json:"event_type"`
	OccurredAt  time.Time `json:"occurred_at"`
	OrderID     string    `json:"production_order_id"`
	BatchID     string    `json:"batch_id"`
	TabID       string    `json:"tab_id"`
	TableID     string    `json:"table_id"`
	Sector      string    `json:"sector"`
	TableNumber int       `json:"table_number,omitempty"`
}

// ProductionOrderLine is the denormalized line shown on kitchen/bar displays.
type ProductionOrderLine struct {
	LineItemID string `json:"line_item_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	Note       string `json:"note,omitempty"`
}

type ProductionOrderCreatedEvent struct {
	ProductionOrderEventMetadata
	Status string                `json:"status"`
	Lines  []ProductionOrderLine `json:"lines"`
}

type ProductionOrderStatusChangedEvent struct {
	ProductionOrderEventMetadata
	NewStatus      string     `json:"new_status"`
	PreviousStatus string     `json:"previous_status"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	ReadyAt        *time.Time `json:"ready_at,omitempty"`
}

// ProductionOrderItemsCancelledEvent signals that cancellation removed lines
// from a production order. LiveItems == 0 means the order left the live board.
type ProductionOrderItemsCancelledEvent struct {
	ProductionOrderEventMetadata
	CancelledItemID string `json:"cancelled_item_id"`
	LiveItems       int    `json:"live_items"`
}

// PrintJobEvent is consumed by the printer integration. Failures downstream
// never affect the transaction that emitted the job.
type PrintJobEvent struct {
	EventType   string    `json:"event_type"`
	Kind        string    `json:"kind"` // "batch" or "bill"
	TableID     string    `json:"table_id"`
	TableNumber int       `json:"table_number"`
	BatchID     string    `json:"batch_id,omitempty"`
	TabID       string    `json:"tab_id,omitempty"`
	Total       float64   `json:"total,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
