package comanda

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/comandahub/comanda/pkg/enums/tablestatus"
)

// Table is a physical table in the dining room. Its status is the anchor of
// the service lifecycle: free tables accept opens, occupied tables accept
// orders, closing tables only accept settlement or reopening.
type Table struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	Number    int       `json:"number" bson:"number"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	CreatedBy string    `json:"created_by" bson:"created_by"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	UpdatedBy string    `json:"updated_by" bson:"updated_by"`
}

func (t *Table) GetID() uuid.UUID {
	return t.ID
}

func (t *Table) ResourceType() string {
	return "table"
}

func (t *Table) SetID(id uuid.UUID) {
	t.ID = id
}

func NewTable(number int) *Table {
	return &Table{
		ID:     apt.GenerateNewID(),
		Number: number,
		Status: tablestatus.Statuses.Free.Code(),
	}
}

func (t *Table) EnsureID() {
	if t.ID == uuid.Nil {
		t.ID = apt.GenerateNewID()
	}
}

func (t *Table) BeforeCreate() {
	t.EnsureID()
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
}

func (t *Table) BeforeUpdate() {
	t.UpdatedAt = time.Now()
}

func (t *Table) IsFree() bool {
	return t.Status == tablestatus.Statuses.Free.Code()
}

func (t *Table) IsOccupied() bool {
	return t.Status == tablestatus.Statuses.Occupied.Code()
}

func (t *Table) IsClosing() bool {
	return t.Status == tablestatus.Statuses.Closing.Code()
}

// Open seats guests at a free table. Any other status fails.
func (t *Table) Open() error {
	if !t.IsFree() {
		return ErrAlreadyOccupied
	}
	t.Status = tablestatus.Statuses.Occupied.Code()
	t.UpdatedAt = time.Now()
	return nil
}

// RequestBill freezes ordering while guests settle up. Only occupied tables
// can move to closing.
func (t *Table) RequestBill() error {
	if !t.IsOccupied() {
		return ErrInvalidState
	}
	t.Status = tablestatus.Statuses.Closing.Code()
	t.UpdatedAt = time.Now()
	return nil
}

// Reopen aborts an in-flight closing and resumes ordering. The open tab and
// its items are untouched.
func (t *Table) Reopen() error {
	if !t.IsClosing() {
		return ErrInvalidState
	}
	t.Status = tablestatus.Statuses.Occupied.Code()
	t.UpdatedAt = time.Now()
	return nil
}

// Release frees the table after settlement.
func (t *Table) Release() error {
	if t.IsFree() {
		return ErrNoActiveTab
	}
	t.Status = tablestatus.Statuses.Free.Code()
	t.UpdatedAt = time.Now()
	return nil
}
