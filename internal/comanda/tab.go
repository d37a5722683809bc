package comanda

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

const (
	TabStatusOpen    = "open"
	TabStatusSettled = "settled"
)

// Tab is the running account of one seating. A table has at most one open tab;
// it accumulates line items across order batches and survives reopening until
// settlement closes it.
type Tab struct {
	ID       uuid.UUID  `json:"id" bson:"_id"`
	TableID  uuid.UUID  `json:"table_id" bson:"table_id"`
	Status   string     `json:"status" bson:"status"`
	Total    float64    `json:"total" bson:"total"`
	OpenedAt time.Time  `json:"opened_at" bson:"opened_at"`
	OpenedBy string     `json:"opened_by" bson:"opened_by"`
	ClosedAt *time.Time `json:"closed_at,omitempty" bson:"closed_at,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (t *Tab) GetID() uuid.UUID {
	return t.ID
}

func (t *Tab) ResourceType() string {
	return "tab"
}

func (t *Tab) SetID(id uuid.UUID) {
	t.ID = id
}

func NewTab(tableID uuid.UUID, openedBy string) *Tab {
	now := time.Now()
	return &Tab{
		ID:       apt.GenerateNewID(),
		TableID:  tableID,
		Status:   TabStatusOpen,
		OpenedAt: now,
		OpenedBy: openedBy,
	}
}

func (t *Tab) EnsureID() {
	if t.ID == uuid.Nil {
		t.ID = apt.GenerateNewID()
	}
}

func (t *Tab) BeforeCreate() {
	t.EnsureID()
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
}

func (t *Tab) BeforeUpdate() {
	t.UpdatedAt = time.Now()
}

func (t *Tab) IsOpen() bool {
	return t.Status == TabStatusOpen
}

// Settle closes the tab. Settling twice fails.
func (t *Tab) Settle() error {
	if !t.IsOpen() {
		return ErrAlreadySettled
	}
	now := time.Now()
	t.Status = TabStatusSettled
	t.ClosedAt = &now
	t.UpdatedAt = now
	return nil
}

// RecomputeTotal recalculates the raw running total from the live items.
// Cancelled items contribute nothing.
func (t *Tab) RecomputeTotal(items []*LineItem) {
	t.Total = RawTotal(items)
	t.UpdatedAt = time.Now()
}
