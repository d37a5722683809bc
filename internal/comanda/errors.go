package comanda

import "errors"

var (
	// ErrNotFound is returned when a table, tab, item or payment does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyOccupied is returned when opening a table that is not free.
	ErrAlreadyOccupied = errors.New("table is already occupied")

	// ErrInvalidState is returned when a table operation requires a status the
	// table is not in, e.g. requesting the bill on a free table.
	ErrInvalidState = errors.New("table is not in a valid state for this operation")

	// ErrNoActiveTab is returned when an operation needs an open tab and the
	// table has none.
	ErrNoActiveTab = errors.New("table has no active tab")

	// ErrDestinationNotFree is returned when transferring a tab onto a table
	// that is not free.
	ErrDestinationNotFree = errors.New("destination table is not free")

	// ErrTableClosingForOrders is returned when submitting orders to a table
	// whose bill was already requested.
	ErrTableClosingForOrders = errors.New("table is closing, reopen it to order")

	// ErrUnknownProduct is returned when a submitted line references a product
	// the catalog does not know.
	ErrUnknownProduct = errors.New("unknown product")

	// ErrInactiveProduct is returned when a submitted line references a
	// product that is disabled for sale.
	ErrInactiveProduct = errors.New("product is not available")

	// ErrCatalogUnavailable is returned when the catalog service cannot be
	// reached, as opposed to a product it genuinely does not know.
	ErrCatalogUnavailable = errors.New("catalog is unavailable")

	// ErrAlreadySettled is returned when paying a tab that is already closed.
	ErrAlreadySettled = errors.New("tab is already settled")

	// ErrInsufficientPayment is returned when a cash payment does not cover
	// the bill and no shortfall override was given.
	ErrInsufficientPayment = errors.New("payment does not cover the bill")

	// ErrAlreadyCancelled is returned when cancelling a line item twice.
	ErrAlreadyCancelled = errors.New("item is already cancelled")
)
