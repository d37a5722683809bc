package kitchen

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"

	"github.com/comandahub/comanda/pkg"
)

// SectorBoard maintains an in-memory view of live production orders, indexed
// by sector and status for fast kitchen/bar board queries. Orders leave the
// board when they reach ready or when cancellation empties them.
type SectorBoard struct {
	mu sync.RWMutex
	// orders indexed by production order id
	orders map[uuid.UUID]*ProductionOrder
	// index by sector code -> order ids
	bySector map[string][]uuid.UUID
	// index by status code -> order ids
	byStatus map[string][]uuid.UUID

	stream events.StreamConsumer // event replay on startup
	repo   Repository            // fallback when the stream is unavailable
	logger apt.Logger
}

// NewSectorBoard creates an empty board.
func NewSectorBoard(stream events.StreamConsumer, repo Repository, logger apt.Logger) *SectorBoard {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &SectorBoard{
		orders:   make(map[uuid.UUID]*ProductionOrder),
		bySector: make(map[string][]uuid.UUID),
		byStatus: make(map[string][]uuid.UUID),
		stream:   stream,
		repo:     repo,
		logger:   logger,
	}
}

// Warm rebuilds the board by replaying the retained production event stream,
// falling back to the repository when the stream is unavailable.
func (b *SectorBoard) Warm(ctx context.Context) error {
	if b.stream != nil {
		if err := b.warmFromStream(ctx); err != nil {
			b.logger.Info("stream replay failed, falling back to repository", "error", err)
		} else {
			b.dropSettled()
			return nil
		}
	}

	if b.repo == nil {
		b.logger.Info("neither stream nor repo configured, board remains empty")
		return nil
	}

	return b.warmFromRepo(ctx)
}

// WarmFromRepo loads live orders directly from the repository, bypassing the
// event stream. Useful after seeding data without publishing events.
func (b *SectorBoard) WarmFromRepo(ctx context.Context) error {
	return b.warmFromRepo(ctx)
}

func (b *SectorBoard) warmFromStream(ctx context.Context) error {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Info("stream panic recovered, falling back to repository", "panic", r)
		}
	}()

	b.logger.Info("warming board from event stream")

	messages, err := b.stream.Fetch(ctx, 10000)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, msg := range messages {
		b.applyEventLocked(msg.Data)
	}

	b.logger.Info("board warmed from stream", "orders", len(b.orders))
	return nil
}

func (b *SectorBoard) warmFromRepo(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Info("repository panic recovered, board will remain empty", "panic", r)
			err = nil
		}
	}()

	b.logger.Info("warming board from repository")

	orders, dbErr := b.repo.ListLive(ctx)
	if dbErr != nil {
		b.logger.Info("failed to warm board from repository, board will remain empty", "error", dbErr)
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, order := range orders {
		b.setLocked(order)
	}

	b.logger.Info("board warmed from repository", "count", len(orders))
	return nil
}

// ApplyEvent processes a single broadcast event and updates the board.
func (b *SectorBoard) ApplyEvent(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.applyEventLocked(data)
}

// applyEventLocked must be called with b.mu held.
func (b *SectorBoard) applyEventLocked(data []byte) {
	var baseEvent struct {
		EventType string `json:"event_type"`
	}

	if err := json.Unmarshal(data, &baseEvent); err != nil {
		b.logger.Error("failed to unmarshal event type", "error", err)
		return
	}

	switch baseEvent.EventType {
	case pkg.EventProductionOrderCreated:
		b.handleCreatedLocked(data)
	case pkg.EventProductionOrderStatusChanged:
		b.handleStatusChangedLocked(data)
	case pkg.EventProductionOrderItemsCancelled:
		b.handleItemsCancelledLocked(data)
	default:
		// Unknown event types are ignored for forward compatibility.
		return
	}
}

func (b *SectorBoard) handleCreatedLocked(data []byte) {
	var evt pkg.ProductionOrderCreatedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		b.logger.Error("failed to unmarshal production.order.created event", "error", err)
		return
	}

	orderID, _ := uuid.Parse(evt.OrderID)
	batchID, _ := uuid.Parse(evt.BatchID)
	tabID, _ := uuid.Parse(evt.TabID)
	tableID, _ := uuid.Parse(evt.TableID)

	order := &ProductionOrder{
		ID:          orderID,
		BatchID:     batchID,
		TabID:       tabID,
		TableID:     tableID,
		TableNumber: evt.TableNumber,
		Sector:      evt.Sector,
		Status:      evt.Status,
		CreatedAt:   evt.OccurredAt,
		UpdatedAt:   evt.OccurredAt,
	}
	for _, line := range evt.Lines {
		itemID, _ := uuid.Parse(line.LineItemID)
		order.Lines = append(order.Lines, Line{
			LineItemID: itemID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			Note:       line.Note,
		})
		order.LiveItemIDs = append(order.LiveItemIDs, itemID)
	}

	b.setLocked(order)
}

func (b *SectorBoard) handleStatusChangedLocked(data []byte) {
	var evt pkg.ProductionOrderStatusChangedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		b.logger.Error("failed to unmarshal production.order.status_changed event", "error", err)
		return
	}

	orderID, _ := uuid.Parse(evt.OrderID)
	order := b.orders[orderID]
	if order == nil {
		// Minimal entry when the created event was missed.
		batchID, _ := uuid.Parse(evt.BatchID)
		tabID, _ := uuid.Parse(evt.TabID)
		tableID, _ := uuid.Parse(evt.TableID)
		order = &ProductionOrder{
			ID:          orderID,
			BatchID:     batchID,
			TabID:       tabID,
			TableID:     tableID,
			TableNumber: evt.TableNumber,
			Sector:      evt.Sector,
			CreatedAt:   evt.OccurredAt,
		}
	}

	order.Status = evt.NewStatus
	order.UpdatedAt = evt.OccurredAt
	order.StartedAt = evt.StartedAt
	order.ReadyAt = evt.ReadyAt

	if !order.IsLive() {
		b.removeLocked(orderID)
		return
	}
	b.setLocked(order)
}

func (b *SectorBoard) handleItemsCancelledLocked(data []byte) {
	var evt pkg.ProductionOrderItemsCancelledEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		b.logger.Error("failed to unmarshal production.order.items_cancelled event", "error", err)
		return
	}

	orderID, _ := uuid.Parse(evt.OrderID)
	order := b.orders[orderID]
	if order == nil {
		return
	}

	itemID, _ := uuid.Parse(evt.CancelledItemID)
	remaining := order.RemoveLiveItem(itemID)
	order.UpdatedAt = evt.OccurredAt
	if remaining == 0 {
		b.removeLocked(orderID)
		return
	}
	b.setLocked(order)
}

// dropSettled filters out orders that reached ready or lost all live items.
// Called after warming from stream so the board only shows live work.
func (b *SectorBoard) dropSettled() {
	b.mu.Lock()
	defer b.mu.Unlock()

	var removed int
	for id, order := range b.orders {
		if !order.IsLive() {
			b.removeFromIndex(b.bySector, order.Sector, id)
			b.removeFromIndex(b.byStatus, order.Status, id)
			delete(b.orders, id)
			removed++
		}
	}

	b.logger.Info("removed finished orders from board", "count", removed)
}

// Set updates or adds an order on the board. Orders that are no longer live
// are removed instead.
func (b *SectorBoard) Set(order *ProductionOrder) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if order != nil && !order.IsLive() {
		b.removeLocked(order.ID)
		return
	}
	b.setLocked(order)
}

func (b *SectorBoard) setLocked(order *ProductionOrder) {
	if order == nil {
		return
	}

	orderID := order.ID

	if old, exists := b.orders[orderID]; exists {
		b.removeFromIndex(b.bySector, old.Sector, orderID)
		b.removeFromIndex(b.byStatus, old.Status, orderID)
	}

	b.orders[orderID] = order

	b.addToIndex(b.bySector, order.Sector, orderID)
	b.addToIndex(b.byStatus, order.Status, orderID)
}

// Get retrieves a production order by ID.
func (b *SectorBoard) Get(orderID uuid.UUID) *ProductionOrder {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.orders[orderID]
}

// GetBySectorCode returns all live orders for a given sector code.
func (b *SectorBoard) GetBySectorCode(sector string) []*ProductionOrder {
	b.mu.RLock()
	defer b.mu.RUnlock()

	orderIDs := b.bySector[sector]
	result := make([]*ProductionOrder, 0, len(orderIDs))
	for _, id := range orderIDs {
		if order := b.orders[id]; order != nil {
			result = append(result, order)
		}
	}
	return result
}

// GetByStatusCode returns all live orders for a given status code.
func (b *SectorBoard) GetByStatusCode(status string) []*ProductionOrder {
	b.mu.RLock()
	defer b.mu.RUnlock()

	orderIDs := b.byStatus[status]
	result := make([]*ProductionOrder, 0, len(orderIDs))
	for _, id := range orderIDs {
		if order := b.orders[id]; order != nil {
			result = append(result, order)
		}
	}
	return result
}

// GetBySectorAndStatusCode returns orders filtered by both sector and status.
func (b *SectorBoard) GetBySectorAndStatusCode(sector, status string) []*ProductionOrder {
	b.mu.RLock()
	defer b.mu.RUnlock()

	orderIDs := b.bySector[sector]
	result := make([]*ProductionOrder, 0)
	for _, id := range orderIDs {
		if order := b.orders[id]; order != nil && order.Status == status {
			result = append(result, order)
		}
	}
	return result
}

// GetAll returns all live orders on the board.
func (b *SectorBoard) GetAll() []*ProductionOrder {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]*ProductionOrder, 0, len(b.orders))
	for _, order := range b.orders {
		result = append(result, order)
	}
	return result
}

// Remove deletes an order from the board.
func (b *SectorBoard) Remove(orderID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(orderID)
}

func (b *SectorBoard) removeLocked(orderID uuid.UUID) {
	order := b.orders[orderID]
	if order == nil {
		return
	}

	b.removeFromIndex(b.bySector, order.Sector, orderID)
	b.removeFromIndex(b.byStatus, order.Status, orderID)
	delete(b.orders, orderID)
}

func (b *SectorBoard) addToIndex(index map[string][]uuid.UUID, key string, orderID uuid.UUID) {
	index[key] = append(index[key], orderID)
}

func (b *SectorBoard) removeFromIndex(index map[string][]uuid.UUID, key string, orderID uuid.UUID) {
	ids := index[key]
	for i, id := range ids {
		if id == orderID {
			index[key] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
}

// Count returns the number of live orders on the board.
func (b *SectorBoard) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.orders)
}
