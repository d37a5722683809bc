package comanda

import (
	"context"

	"github.com/google/uuid"

	"github.com/comandahub/comanda/pkg/enums/paymentmethod"
)

func ValidateTableCreate(ctx context.Context, req TableCreateRequest) []string {
	var errors []string

	if req.Number <= 0 {
		errors = append(errors, "number must be greater than 0")
	}

	return errors
}

func ValidateBatchSubmit(ctx context.Context, req BatchSubmitRequest) []string {
	var errors []string

	if len(req.Lines) == 0 {
		errors = append(errors, "at least one line is required")
	}

	for _, line := range req.Lines {
		if line.ProductID == uuid.Nil {
			errors = append(errors, "product_id is required")
		}
		if line.Quantity <= 0 {
			errors = append(errors, "quantity must be greater than 0")
		}
	}

	return errors
}

func ValidateBillPreview(ctx context.Context, req BillPreviewRequest) []string {
	var errors []string

	if req.People < 0 {
		errors = append(errors, "people cannot be negative")
	}

	if req.People > 0 && len(req.ItemIDs) > 0 {
		errors = append(errors, "choose either people or item_ids, not both")
	}

	return errors
}

func ValidateSettle(ctx context.Context, req SettleRequest) []string {
	var errors []string

	if paymentmethod.ByName(req.Method) == nil {
		errors = append(errors, "invalid payment method")
	}

	if req.Tendered < 0 {
		errors = append(errors, "tendered cannot be negative")
	}

	return errors
}

func ValidateTransfer(ctx context.Context, req TransferRequest) []string {
	var errors []string

	if req.DestinationID == uuid.Nil {
		errors = append(errors, "destination_id is required")
	}

	return errors
}
