package kitchen

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows production order listings.
type Filter struct {
	Sector *string
	Status *string
	Limit  int
	Offset int
}

// Repository persists production orders. Advance must apply the status change
// and the matching line item propagation atomically, using the current status
// as a guard so concurrent updates cannot interleave.
type Repository interface {
	Create(ctx context.Context, po *ProductionOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*ProductionOrder, error)
	FindByBatchAndSector(ctx context.Context, batchID uuid.UUID, sector string) (*ProductionOrder, error)
	List(ctx context.Context, filter Filter) ([]ProductionOrder, error)
	ListLive(ctx context.Context) ([]*ProductionOrder, error)

	// Advance moves the order from status `from` to status `to` and sets the
	// status of every live member line item to the mapped item status. It
	// returns ErrInvalidTransition when the order is no longer in `from`.
	Advance(ctx context.Context, id uuid.UUID, from, to string) (*ProductionOrder, error)
}
