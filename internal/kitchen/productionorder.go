package kitchen

import (
	"errors"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/comandahub/comanda/pkg/enums/itemstatus"
	"github.com/comandahub/comanda/pkg/enums/productionstatus"
)

var (
	// ErrInvalidTransition is returned when a production order is asked to
	// move backwards, skip a step, or change after reaching its terminal
	// status.
	ErrInvalidTransition = errors.New("invalid production order transition")

	// ErrNotFound is returned when the production order does not exist.
	ErrNotFound = errors.New("production order not found")
)

// Line is the denormalized display line for one line item of the batch, so
// kitchen and bar screens never need to join back to the order tables.
type Line struct {
	LineItemID uuid.UUID `json:"line_item_id" bson:"line_item_id"`
	Name       string    `json:"name" bson:"name"`
	Quantity   int       `json:"quantity" bson:"quantity"`
	Note       string    `json:"note,omitempty" bson:"note,omitempty"`
}

// ProductionOrder groups the line items of one order batch that belong to one
// preparation sector. Its status is the only bulk handle over the member line
// items: advancing it propagates the matching item status to every live member.
type ProductionOrder struct {
	ID          uuid.UUID `json:"id" bson:"_id"`
	BatchID     uuid.UUID `json:"batch_id" bson:"batch_id"`
	TabID       uuid.UUID `json:"tab_id" bson:"tab_id"`
	TableID     uuid.UUID `json:"table_id" bson:"table_id"`
	TableNumber int       `json:"table_number" bson:"table_number"`
	Sector      string    `json:"sector" bson:"sector"`
	Status      string    `json:"status" bson:"status"`
	Lines       []Line    `json:"lines" bson:"lines"`

	// LiveItemIDs holds the non-cancelled members. An order with no live
	// members stays persisted for audit but leaves the live board.
	LiveItemIDs []uuid.UUID `json:"live_item_ids" bson:"live_item_ids"`

	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
	StartedAt *time.Time `json:"started_at,omitempty" bson:"started_at,omitempty"`
	ReadyAt   *time.Time `json:"ready_at,omitempty" bson:"ready_at,omitempty"`
}

func (po *ProductionOrder) GetID() uuid.UUID {
	return po.ID
}

func (po *ProductionOrder) ResourceType() string {
	return "production-order"
}

func (po *ProductionOrder) SetID(id uuid.UUID) {
	po.ID = id
}

func NewProductionOrder(batchID, tabID, tableID uuid.UUID, tableNumber int, sectorCode string, lines []Line) *ProductionOrder {
	po := &ProductionOrder{
		ID:          apt.GenerateNewID(),
		BatchID:     batchID,
		TabID:       tabID,
		TableID:     tableID,
		TableNumber: tableNumber,
		Sector:      sectorCode,
		Status:      productionstatus.Statuses.Received.Code(),
		Lines:       lines,
	}
	for _, line := range lines {
		po.LiveItemIDs = append(po.LiveItemIDs, line.LineItemID)
	}
	now := time.Now()
	po.CreatedAt = now
	po.UpdatedAt = now
	return po
}

func (po *ProductionOrder) EnsureID() {
	if po.ID == uuid.Nil {
		po.ID = apt.GenerateNewID()
	}
}

func (po *ProductionOrder) BeforeCreate() {
	po.EnsureID()
	po.CreatedAt = time.Now()
	po.UpdatedAt = time.Now()
}

func (po *ProductionOrder) BeforeUpdate() {
	po.UpdatedAt = time.Now()
}

// NextStatus validates a requested transition. The only legal moves are
// received -> in_progress -> ready; everything else, including repeating the
// current status, fails.
func (po *ProductionOrder) NextStatus(target string) error {
	switch {
	case po.Status == productionstatus.Statuses.Received.Code() &&
		target == productionstatus.Statuses.InProgress.Code():
		return nil
	case po.Status == productionstatus.Statuses.InProgress.Code() &&
		target == productionstatus.Statuses.Ready.Code():
		return nil
	default:
		return ErrInvalidTransition
	}
}

// Advance applies a validated transition and stamps the matching timestamp.
func (po *ProductionOrder) Advance(target string) error {
	if err := po.NextStatus(target); err != nil {
		return err
	}
	now := time.Now()
	po.Status = target
	po.UpdatedAt = now
	switch target {
	case productionstatus.Statuses.InProgress.Code():
		po.StartedAt = &now
	case productionstatus.Statuses.Ready.Code():
		po.ReadyAt = &now
	}
	return nil
}

// RemoveLiveItem drops a cancelled line item from the live membership and
// reports how many live members remain.
func (po *ProductionOrder) RemoveLiveItem(itemID uuid.UUID) int {
	for i, id := range po.LiveItemIDs {
		if id == itemID {
			po.LiveItemIDs = append(po.LiveItemIDs[:i], po.LiveItemIDs[i+1:]...)
			break
		}
	}
	po.UpdatedAt = time.Now()
	return len(po.LiveItemIDs)
}

// IsLive reports whether the order should appear on the kitchen/bar board.
func (po *ProductionOrder) IsLive() bool {
	return po.Status != productionstatus.Statuses.Ready.Code() && len(po.LiveItemIDs) > 0
}

// ItemStatusFor maps a production order status to the line item status that
// must be propagated to the order's live members.
func ItemStatusFor(productionStatus string) string {
	switch productionStatus {
	case productionstatus.Statuses.Received.Code():
		return itemstatus.Statuses.Pending.Code()
	case productionstatus.Statuses.InProgress.Code():
		return itemstatus.Statuses.InProgress.Code()
	case productionstatus.Statuses.Ready.Code():
		return itemstatus.Statuses.Ready.Code()
	default:
		return ""
	}
}
