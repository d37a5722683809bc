package comanda

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

// Payment is the single settlement record for a tab. Created once at tab
// closure, immutable thereafter.
type Payment struct {
	ID         uuid.UUID `json:"id" bson:"_id"`
	TabID      uuid.UUID `json:"tab_id" bson:"tab_id"`
	TableID    uuid.UUID `json:"table_id" bson:"table_id"`
	Method     string    `json:"method" bson:"method"`
	RawTotal   float64   `json:"raw_total" bson:"raw_total"`
	ServiceFee float64   `json:"service_fee" bson:"service_fee"`
	Value      float64   `json:"value" bson:"value"`
	Tendered   float64   `json:"tendered,omitempty" bson:"tendered,omitempty"`
	Change     float64   `json:"change" bson:"change"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	CreatedBy  string    `json:"created_by" bson:"created_by"`
}

func (p *Payment) GetID() uuid.UUID {
	return p.ID
}

func (p *Payment) ResourceType() string {
	return "payment"
}

func (p *Payment) SetID(id uuid.UUID) {
	p.ID = id
}

func NewPayment(tabID, tableID uuid.UUID, method string, bill Bill, createdBy string) *Payment {
	return &Payment{
		ID:         apt.GenerateNewID(),
		TabID:      tabID,
		TableID:    tableID,
		Method:     method,
		RawTotal:   bill.RawTotal,
		ServiceFee: bill.ServiceFee,
		Value:      bill.FinalTotal,
		CreatedBy:  createdBy,
	}
}

func (p *Payment) EnsureID() {
	if p.ID == uuid.Nil {
		p.ID = apt.GenerateNewID()
	}
}

func (p *Payment) BeforeCreate() {
	p.EnsureID()
	p.CreatedAt = time.Now()
}
