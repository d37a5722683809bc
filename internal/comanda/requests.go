package comanda

import "github.com/google/uuid"

type TableCreateRequest struct {
	Number int `json:"number"`
}

type TableOpenRequest struct {
	OpenedBy string `json:"opened_by,omitempty"`
}

type BatchSubmitRequest struct {
	Lines     []LineRequest `json:"lines"`
	CreatedBy string        `json:"created_by,omitempty"`
}

type TransferRequest struct {
	DestinationID uuid.UUID `json:"destination_id"`
}

type BillPreviewRequest struct {
	People  int         `json:"people,omitempty"`
	ItemIDs []uuid.UUID `json:"item_ids,omitempty"`
}

type SettleRequest struct {
	Method     string  `json:"method"`
	Tendered   float64 `json:"tendered,omitempty"`
	AllowShort bool    `json:"allow_short,omitempty"`
	SettledBy  string  `json:"settled_by,omitempty"`
}

type CancelItemRequest struct {
	CancelledBy string `json:"cancelled_by,omitempty"`
}
