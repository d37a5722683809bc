package comanda

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

// OrderBatch is one waiter submission: the set of line items sent together
// from a table. Batches exist only as a grouping and audit record; all
// mutable state lives on the line items and production orders.
type OrderBatch struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	TabID     uuid.UUID `json:"tab_id" bson:"tab_id"`
	TableID   uuid.UUID `json:"table_id" bson:"table_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	CreatedBy string    `json:"created_by" bson:"created_by"`
}

func (b *OrderBatch) GetID() uuid.UUID {
	return b.ID
}

func (b *OrderBatch) ResourceType() string {
	return "order-batch"
}

func (b *OrderBatch) SetID(id uuid.UUID) {
	b.ID = id
}

func NewOrderBatch(tabID, tableID uuid.UUID, createdBy string) *OrderBatch {
	return &OrderBatch{
		ID:        apt.GenerateNewID(),
		TabID:     tabID,
		TableID:   tableID,
		CreatedBy: createdBy,
	}
}

func (b *OrderBatch) EnsureID() {
	if b.ID == uuid.Nil {
		b.ID = apt.GenerateNewID()
	}
}

func (b *OrderBatch) BeforeCreate() {
	b.EnsureID()
	b.CreatedAt = time.Now()
}
