package comanda

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/comandahub/comanda/pkg/enums/itemstatus"
)

// LineItem is a quantity of one product ordered on a tab. Name, price and
// sector are snapshotted from the catalog at submission time so later menu
// edits never change what a guest owes or where an item was routed.
type LineItem struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	BatchID   uuid.UUID `json:"batch_id" bson:"batch_id"`
	TabID     uuid.UUID `json:"tab_id" bson:"tab_id"`
	ProductID uuid.UUID `json:"product_id" bson:"product_id"`
	Name      string    `json:"name" bson:"name"`
	Price     float64   `json:"price" bson:"price"`
	Quantity  int       `json:"quantity" bson:"quantity"`
	Note      string    `json:"note,omitempty" bson:"note,omitempty"`
	Sector    string    `json:"sector" bson:"sector"`
	Status    string    `json:"status" bson:"status"`

	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CancelledBy string     `json:"cancelled_by,omitempty" bson:"cancelled_by,omitempty"`
}

func (li *LineItem) GetID() uuid.UUID {
	return li.ID
}

func (li *LineItem) ResourceType() string {
	return "order-item"
}

func (li *LineItem) SetID(id uuid.UUID) {
	li.ID = id
}

func NewLineItem(batchID, tabID uuid.UUID, product *Product, quantity int, note string) *LineItem {
	return &LineItem{
		ID:        apt.GenerateNewID(),
		BatchID:   batchID,
		TabID:     tabID,
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  quantity,
		Note:      note,
		Sector:    product.Sector,
		Status:    itemstatus.Statuses.Pending.Code(),
	}
}

func (li *LineItem) EnsureID() {
	if li.ID == uuid.Nil {
		li.ID = apt.GenerateNewID()
	}
}

func (li *LineItem) BeforeCreate() {
	li.EnsureID()
	li.CreatedAt = time.Now()
	li.UpdatedAt = time.Now()
}

func (li *LineItem) BeforeUpdate() {
	li.UpdatedAt = time.Now()
}

func (li *LineItem) IsCancelled() bool {
	return li.Status == itemstatus.Statuses.Cancelled.Code()
}

func (li *LineItem) IsReady() bool {
	return li.Status == itemstatus.Statuses.Ready.Code()
}

// Subtotal is the item's contribution to the tab, zero once cancelled.
func (li *LineItem) Subtotal() float64 {
	if li.IsCancelled() {
		return 0
	}
	return round2(li.Price * float64(li.Quantity))
}

// Cancel voids the item. Items on a settled tab are rejected upstream with
// ErrAlreadySettled before this is called.
func (li *LineItem) Cancel(cancelledBy string) error {
	if li.IsCancelled() {
		return ErrAlreadyCancelled
	}
	now := time.Now()
	li.Status = itemstatus.Statuses.Cancelled.Code()
	li.CancelledAt = &now
	li.CancelledBy = cancelledBy
	li.UpdatedAt = now
	return nil
}
