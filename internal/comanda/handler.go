package comanda

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/comandahub/comanda/internal/kitchen"
	"github.com/comandahub/comanda/pkg"
	"github.com/comandahub/comanda/pkg/enums/paymentmethod"
	"github.com/comandahub/comanda/pkg/enums/tablestatus"
)

const MaxBodyBytes = 1 << 20

type Handler struct {
	repos     Repos
	catalog   Catalog
	roles     RoleChecker
	printer   Printer
	publisher events.Publisher
	logger    apt.Logger
	config    *apt.Config
	tlm       *telemetry.HTTP

	feeRate float64
}

type Repos struct {
	TableRepo      TableRepo
	TabRepo        TabRepo
	BatchRepo      BatchRepo
	LineItemRepo   LineItemRepo
	PaymentRepo    PaymentRepo
	SettlementRepo SettlementRepo
}

type HandlerDeps struct {
	Repos     Repos
	Catalog   Catalog
	Roles     RoleChecker
	Printer   Printer
	Publisher events.Publisher
}

func NewHandler(hd HandlerDeps, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	h := &Handler{
		repos:     hd.Repos,
		catalog:   hd.Catalog,
		roles:     hd.Roles,
		printer:   hd.Printer,
		publisher: hd.Publisher,
		logger:    logger,
		config:    config,
		tlm:       telemetry.NewHTTP(),
		feeRate:   DefaultServiceFeeRate,
	}
	if h.printer == nil {
		h.printer = NoopPrinter{}
	}
	if h.roles == nil {
		h.roles = AllowAllChecker{}
	}
	if config != nil {
		if raw := config.GetStringOrDef("billing.service_fee", ""); raw != "" {
			if rate, err := strconv.ParseFloat(raw, 64); err == nil && rate >= 0 {
				h.feeRate = rate
			}
		}
	}
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tables", func(r chi.Router) {
		r.Get("/", h.ListTables)
		r.Post("/", h.CreateTable)
		r.Get("/{id}", h.GetTable)
		r.Delete("/{id}", h.DeleteTable)

		r.Post("/{id}/open", h.OpenTable)
		r.Post("/{id}/request-bill", h.RequestBill)
		r.Post("/{id}/reopen", h.ReopenTable)
		r.Post("/{id}/settle", h.SettleTable)
		r.Post("/{id}/transfer", h.TransferTable)

		r.Get("/{id}/tab", h.GetTab)
		r.Post("/{id}/orders", h.SubmitBatch)
		r.Post("/{id}/bill", h.PreviewBill)
	})

	r.Route("/order-items", func(r chi.Router) {
		r.Patch("/{id}/cancel", h.CancelItem)
	})
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", apt.RequestIDFrom(r.Context()))
}

func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// requirePrivileged consults the authorization collaborator. A missing or
// failing authz service denies, never grants.
func (h *Handler) requirePrivileged(w http.ResponseWriter, r *http.Request) bool {
	allowed, err := h.roles.HasRole(r.Context(), userID(r), PrivilegedRoles)
	if err != nil {
		h.log(r).Errorf("cannot check roles: %v", err)
		apt.RespondError(w, http.StatusForbidden, "Authorization check failed")
		return false
	}
	if !allowed {
		apt.RespondError(w, http.StatusForbidden, "Insufficient role")
		return false
	}
	return true
}

func (h *Handler) tableFromURL(w http.ResponseWriter, r *http.Request) (*Table, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid table ID")
		return nil, false
	}

	table, err := h.repos.TableRepo.Get(r.Context(), id)
	if err != nil {
		apt.RespondError(w, http.StatusNotFound, "Table not found")
		return nil, false
	}
	return table, true
}

func decodePayload(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return false
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			apt.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
			return false
		}
	}
	return true
}

// --- Tables ---

func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListTables")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	status := r.URL.Query().Get("status")

	var tables []*Table
	var err error
	if status != "" {
		if tablestatus.ByName(status) == nil {
			apt.RespondError(w, http.StatusBadRequest, "Invalid status")
			return
		}
		tables, err = h.repos.TableRepo.ListByStatus(ctx, status)
	} else {
		tables, err = h.repos.TableRepo.List(ctx)
	}

	if err != nil {
		log.Errorf("cannot list tables: %v", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not list tables")
		return
	}

	apt.Respond(w, http.StatusOK, map[string]interface{}{
		"tables": tables,
	}, nil)
}

func (h *Handler) CreateTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateTable")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	if !h.requirePrivileged(w, r) {
		return
	}

	var req TableCreateRequest
	if !decodePayload(w, r, &req) {
		return
	}

	if validationErrors := ValidateTableCreate(ctx, req); len(validationErrors) > 0 {
		apt.RespondError(w, http.StatusBadRequest, validationErrors[0])
		return
	}

	if existing, err := h.repos.TableRepo.GetByNumber(ctx, req.Number); err == nil && existing != nil {
		apt.RespondError(w, http.StatusConflict, "Table number already in use")
		return
	}

	table := NewTable(req.Number)
	table.CreatedBy = userID(r)
	table.BeforeCreate()

	if err := h.repos.TableRepo.Create(ctx, table); err != nil {
		log.Errorf("cannot create table: %v", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not create table")
		return
	}

	h.publishTableStatus(ctx, table, "", "created")
	apt.Respond(w, http.StatusCreated, table, apt.RESTfulLinksFor(table))
}

func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetTable")
	defer finish()

	table, ok := h.tableFromURL(w, r)
	if !ok {
		return
	}

	apt.Respond(w, http.StatusOK, table, apt.RESTfulLinksFor(table))
}

func (h *Handler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteTable")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	if !h.requirePrivileged(w, r) {
		return
	}

	table, ok := h.tableFromURL(w, r)
	if !ok {
		return
	}

	if !table.IsFree() {
		apt.RespondError(w, http.StatusConflict, "Cannot delete a table in service")
		return
	}

	if err := h.repos.TableRepo.Delete(ctx, table.ID); err != nil {
		log.Errorf("cannot delete table: %v", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not delete table")
		return
	}

	apt.Respond(w, http.StatusNoContent, nil, nil)
}

// --- Table lifecycle ---

// OpenTable seats guests: FREE -> OCCUPIED plus a fresh tab.
func (h *Handler) OpenTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.OpenTable")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	table, ok := h.tableFromURL(w, r)
	if !ok {
		return
	}

	var req TableOpenRequest
	if !decodePayload(w, r, &req) {
		return
	}
	openedBy := req.OpenedBy
	if openedBy == "" {
		openedBy = userID(r)
	}

	updated, tab, err := h.repos.SettlementRepo.Open(ctx, table.ID, openedBy)
	if err != nil {
		if errors.Is(err, ErrInvalidState) {
			apt.RespondError(w, http.StatusConflict, "Table is already occupied")
			return
		}
		log.Errorf("cannot open table: %v", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not open table")
		return
	}

	h.publishTableStatus(ctx, updated, tablestatus.Statuses.Free.Code(), "opened")

	apt.Respond(w, http.StatusOK, map[string]interface{}{
		"table": updated,
		"tab":   tab,
	}, nil)
}

// RequestBill freezes ordering: OCCUPIED -> CLOSING. Cancellation and payment
// stay available.
func (h *Handler) RequestBill(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.RequestBill")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	table, ok := h.tableFromURL(w, r)
	if !ok {
		return
	}

	updated, err := h.repos.TableRepo.UpdateStatus(ctx, table.ID,
		tablestatus.Statuses.Occupied.Code(), tablestatus.Statuses.Closing.Code())
	if err != nil {
		if errors.Is(err, ErrInvalidState) {
			apt.RespondError(w, http.StatusConflict, "Table is not occupied")
			return
		}
		log.Errorf("cannot request bill: %v", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not request bill")
		return
	}

	h.publishTableStatus(ctx, updated, tablestatus.Statuses.Occupied.Code(), "bill_requested")

	if tab, tabErr := h.repos.TabRepo.GetOpenByTable(ctx, updated.ID); tabErr == nil {
		bill := h.billForTab(ctx, tab)
		h.printer.PrintBill(ctx, updated, tab, bill.FinalTotal)
	}

	apt.Respond(w, http.StatusOK, updated, nil)
}

// ReopenTable aborts a closing: CLOSING -> OCCUPIED, tab untouched.
func (h *Handler) ReopenTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ReopenTable")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	table, ok := h.tableFromURL(w, r)
	if !ok {
		return
	}

	updated, err := h.repos.TableRepo.UpdateStatus(ctx, table.ID,
		tablestatus.Statuses.Closing.Code(), tablestatus.Statuses.Occupied.Code())
	if err != nil {
		if errors.Is(err, ErrInvalidState) {
			apt.RespondError(w, http.StatusConflict, "Table is not closing")
			return
		}
		log.Errorf("cannot reopen table: %v", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not reopen table")
		return
	}

	h.publishTableStatus(ctx, updated, tablestatus.Statuses.Closing.Code(), "reopened")
	apt.Respond(w, http.StatusOK, updated, nil)
}

// SettleTable records the single payment, closes the tab and frees the table.
func (h *Handler) SettleTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SettleTable")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	if !h.requirePrivileged(w, r) {
		return
	}

	table, ok := h.tableFromURL(w, r)
	if !ok {
		return
	}

	var req SettleRequest
	if !decodePayload(w, r, &req) {
		return
	}
	if validationErrors := ValidateSettle(ctx, req); len(validationErrors) > 0 {
		apt.RespondError(w, http.StatusBadRequest, validationErrors[0])
		return
	}

	tab, err := h.repos.TabRepo.GetOpenByTable(ctx, table.ID)
	if err != nil {
		apt.RespondError(w, http.StatusConflict, "Table has no active tab")
		return
	}

	bill := h.billForTab(ctx, tab)

	payment := NewPayment(tab.ID, table.ID, req.Method, bill, userID(r))
	if req.Method == paymentmethod.Methods.Cash.Code() {
		change, chErr := CashChange(bill.FinalTotal, req.Tendered, req.AllowShort)
		if chErr != nil {
			apt.RespondError(w, http.StatusUnprocessableEntity, "Payment does not cover the bill")
			return
		}
		payment.Tendered = req.Tendered
		payment.Change = change
	}
	payment.BeforeCreate()

	prior := table.Status
	if err := h.repos.SettlementRepo.Settle(ctx, payment); err != nil {
		if errors.Is(err, ErrAlreadySettled) {
			apt.RespondError(w, http.StatusConflict, "Tab is already settled")
			return
		}
		log.Errorf("cannot settle table: %v", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not settle table")
		return
	}

	table.Status = tablestatus.Statuses.Free.Code()
	h.publishTableStatus(ctx, table, prior, "settled")
	h.printer.PrintBill(ctx, table, tab, bill.FinalTotal)

	apt.Respond(w, http.StatusOK, map[string]interface{}{
		"payment": payment,
		"bill":    bill,
	}, nil)
}

// TransferTable moves the open tab onto a free table.
func (h *Handler) TransferTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.TransferTable")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	table, ok := h.tableFromURL(w, r)
	if !ok {
		return
	}

	var req TransferRequest
	if !decodePayload(w, r, &req) {
		return
	}
	if validationErrors := ValidateTransfer(ctx, req); len(validationErrors) > 0 {
		apt.RespondError(w, http.StatusBadRequest, validationErrors[0])
		return
	}

	tab, err := h.repos.TabRepo.GetOpenByTable(ctx, table.ID)
	if err != nil {
		apt.RespondError(w, http.StatusConflict, "Table has no active tab")
		return
	}

	destination, err := h.repos.TableRepo.Get(ctx, req.DestinationID)
	if err != nil {
		apt.RespondError(w, http.StatusNotFound, "Destination table not found")
		return
	}

	movedStatus, err := h.repos.SettlementRepo.Transfer(ctx, tab.ID, table.ID, destination.ID)
	if err != nil {
		if errors.Is(err, ErrDestinationNotFree) {
			apt.RespondError(w, http.StatusConflict, "Destination table is not free")
			return
		}
		log.Errorf("cannot transfer table: %v", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not transfer table")
		return
	}

	table.Status = tablestatus.Statuses.Free.Code()
	destination.Status = movedStatus
	h.publishTableStatus(ctx, table, movedStatus, "transferred_out")
	h.publishTableStatus(ctx, destination, tablestatus.Statuses.Free.Code(), "transferred_in")

	apt.Respond(w, http.StatusOK, map[string]interface{}{
		"source":      table,
		"destination": destination,
		"tab":         tab,
	}, nil)
}

// --- Tab and orders ---

func (h *Handler) GetTab(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetTab")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	table, ok := h.tableFromURL(w, r)
	if !ok {
		return
	}

	tab, err := h.repos.TabRepo.GetOpenByTable(ctx, table.ID)
	if err != nil {
		apt.RespondError(w, http.StatusNotFound, "Table has no active tab")
		return
	}

	items, err := h.repos.LineItemRepo.ListByTab(ctx, tab.ID)
	if err != nil {
		log.Errorf("cannot list tab items: %v", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not load tab")
		return
	}

	batches, err := h.repos.BatchRepo.ListByTab(ctx, tab.ID)
	if err != nil {
		log.Errorf("cannot list tab batches: %v", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not load tab")
		return
	}

	apt.Respond(w, http.StatusOK, map[string]interface{}{
		"tab":     tab,
		"batches": batches,
		"items":   items,
	}, nil)
}

// SubmitBatch validates and persists one cart submission all-or-nothing,
// routing items into per-sector production orders.
func (h *Handler) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SubmitBatch")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	table, ok := h.tableFromURL(w, r)
	if !ok {
		return
	}

	var req BatchSubmitRequest
	if !decodePayload(w, r, &req) {
		return
	}
	if validationErrors := ValidateBatchSubmit(ctx, req); len(validationErrors) > 0 {
		apt.RespondError(w, http.StatusBadRequest, validationErrors[0])
		return
	}

	if !table.IsOccupied() {
		apt.RespondError(w, http.StatusConflict, "Table is closing, reopen it to order")
		return
	}

	tab, err := h.repos.TabRepo.GetOpenByTable(ctx, table.ID)
	if err != nil {
		apt.RespondError(w, http.StatusConflict, "Table has no active tab")
		return
	}

	createdBy := req.CreatedBy
	if createdBy == "" {
		createdBy = userID(r)
	}

	batch, items, orders, err := BuildBatch(ctx, h.catalog, table, tab, req.Lines, createdBy)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownProduct):
			apt.RespondError(w, http.StatusUnprocessableEntity, "Unknown product")
		case errors.Is(err, ErrInactiveProduct):
			apt.RespondError(w, http.StatusUnprocessableEntity, "Product is not available")
		case errors.Is(err, ErrCatalogUnavailable):
			log.Errorf("catalog unavailable: %v", err)
			apt.RespondError(w, http.StatusBadGateway, "Catalog is unavailable")
		default:
			log.Errorf("cannot build batch: %v", err)
			apt.RespondError(w, http.StatusInternalServerError, "Could not submit order")
		}
		return
	}

	newTotal, err := h.repos.BatchRepo.Submit(ctx, batch, items, orders)
	if err != nil {
		if errors.Is(err, ErrTableClosingForOrders) {
			apt.RespondError(w, http.StatusConflict, "Table is closing, reopen it to order")
			return
		}
		log.Errorf("cannot persist batch: %v", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not submit order")
		return
	}
	tab.Total = newTotal

	h.publishTabUpdated(ctx, tab, "batch_submitted")
	for _, order := range orders {
		h.publishProductionOrderCreated(ctx, order)
	}
	h.printer.PrintBatch(ctx, table, batch)

	orderIDs := make(map[string]uuid.UUID, len(orders))
	for _, order := range orders {
		orderIDs[order.Sector] = order.ID
	}

	apt.Respond(w, http.StatusCreated, map[string]interface{}{
		"batch":             batch,
		"items":             items,
		"production_orders": orderIDs,
		"tab_total":         newTotal,
	}, nil)
}

// PreviewBill computes totals without committing anything.
func (h *Handler) PreviewBill(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.PreviewBill")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	table, ok := h.tableFromURL(w, r)
	if !ok {
		return
	}

	var req BillPreviewRequest
	if !decodePayload(w, r, &req) {
		return
	}
	if validationErrors := ValidateBillPreview(ctx, req); len(validationErrors) > 0 {
		apt.RespondError(w, http.StatusBadRequest, validationErrors[0])
		return
	}

	tab, err := h.repos.TabRepo.GetOpenByTable(ctx, table.ID)
	if err != nil {
		apt.RespondError(w, http.StatusNotFound, "Table has no active tab")
		return
	}

	items, err := h.repos.LineItemRepo.ListByTab(ctx, tab.ID)
	if err != nil {
		log.Errorf("cannot list tab items: %v", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not compute bill")
		return
	}

	if len(req.ItemIDs) > 0 {
		selected := make(map[uuid.UUID]bool, len(req.ItemIDs))
		for _, id := range req.ItemIDs {
			selected[id] = true
		}
		subset := make([]*LineItem, 0, len(items))
		for _, item := range items {
			if selected[item.ID] {
				subset = append(subset, item)
			}
		}
		items = subset
	}

	bill := ComputeBill(items, h.feeRate)

	response := map[string]interface{}{
		"bill": bill,
	}
	if req.People > 0 {
		perPerson, ppErr := bill.PerPerson(req.People)
		if ppErr != nil {
			apt.RespondError(w, http.StatusBadRequest, "Invalid people count")
			return
		}
		response["people"] = req.People
		response["per_person"] = perPerson
	}

	apt.Respond(w, http.StatusOK, response, nil)
}

// --- Cancellation ---

func (h *Handler) CancelItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CancelItem")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	if !h.requirePrivileged(w, r) {
		return
	}

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var req CancelItemRequest
	if !decodePayload(w, r, &req) {
		return
	}
	cancelledBy := req.CancelledBy
	if cancelledBy == "" {
		cancelledBy = userID(r)
	}

	item, order, tab, err := h.repos.SettlementRepo.CancelItem(ctx, id, cancelledBy)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			apt.RespondError(w, http.StatusNotFound, "Item not found")
		case errors.Is(err, ErrAlreadyCancelled):
			apt.RespondError(w, http.StatusConflict, "Item is already cancelled")
		case errors.Is(err, ErrAlreadySettled):
			apt.RespondError(w, http.StatusConflict, "Tab is already settled")
		default:
			log.Errorf("cannot cancel item: %v", err)
			apt.RespondError(w, http.StatusInternalServerError, "Could not cancel item")
		}
		return
	}

	h.publishTabUpdated(ctx, tab, "item_cancelled")
	if order != nil {
		h.publishItemsCancelled(ctx, order, item.ID)
	}

	apt.Respond(w, http.StatusOK, map[string]interface{}{
		"item":      item,
		"tab_total": tab.Total,
	}, nil)
}

// --- Broadcasting ---

func (h *Handler) publishTableStatus(ctx context.Context, table *Table, previous, reason string) {
	evt := pkg.TableStatusEvent{
		EventType:      pkg.EventTableStatusChanged,
		TableID:        table.ID.String(),
		TableNumber:    table.Number,
		Status:         table.Status,
		PreviousStatus: previous,
		Reason:         reason,
		OccurredAt:     time.Now(),
	}
	eventBytes, _ := json.Marshal(evt)
	if err := h.publisher.Publish(ctx, pkg.TableStatusTopic, eventBytes); err != nil {
		h.logger.Errorf("Failed to publish table status event: %v", err)
	}
}

func (h *Handler) publishTabUpdated(ctx context.Context, tab *Tab, reason string) {
	evt := pkg.TabUpdatedEvent{
		EventType:  pkg.EventTabUpdated,
		TabID:      tab.ID.String(),
		TableID:    tab.TableID.String(),
		Total:      tab.Total,
		Reason:     reason,
		OccurredAt: time.Now(),
	}
	eventBytes, _ := json.Marshal(evt)
	if err := h.publisher.Publish(ctx, pkg.TabUpdatedTopic, eventBytes); err != nil {
		h.logger.Errorf("Failed to publish tab updated event: %v", err)
	}
}

func (h *Handler) publishProductionOrderCreated(ctx context.Context, order *kitchen.ProductionOrder) {
	evt := pkg.ProductionOrderCreatedEvent{
		ProductionOrderEventMetadata: pkg.ProductionOrderEventMetadata{
			EventType:   pkg.EventProductionOrderCreated,
			OccurredAt:  order.CreatedAt,
			OrderID:     order.ID.String(),
			BatchID:     order.BatchID.String(),
			TabID:       order.TabID.String(),
			TableID:     order.TableID.String(),
			Sector:      order.Sector,
			TableNumber: order.TableNumber,
		},
		Status: order.Status,
	}
	for _, line := range order.Lines {
		evt.Lines = append(evt.Lines, pkg.ProductionOrderLine{
			LineItemID: line.LineItemID.String(),
			Name:       line.Name,
			Quantity:   line.Quantity,
			Note:       line.Note,
		})
	}
	eventBytes, _ := json.Marshal(evt)
	if err := h.publisher.Publish(ctx, pkg.ProductionOrderSubject(order.Sector), eventBytes); err != nil {
		h.logger.Errorf("Failed to publish production order created event: %v", err)
	}
}

func (h *Handler) publishItemsCancelled(ctx context.Context, order *kitchen.ProductionOrder, itemID uuid.UUID) {
	evt := pkg.ProductionOrderItemsCancelledEvent{
		ProductionOrderEventMetadata: pkg.ProductionOrderEventMetadata{
			EventType:   pkg.EventProductionOrderItemsCancelled,
			OccurredAt:  time.Now(),
			OrderID:     order.ID.String(),
			BatchID:     order.BatchID.String(),
			TabID:       order.TabID.String(),
			TableID:     order.TableID.String(),
			Sector:      order.Sector,
			TableNumber: order.TableNumber,
		},
		CancelledItemID: itemID.String(),
		LiveItems:       len(order.LiveItemIDs),
	}
	eventBytes, _ := json.Marshal(evt)
	if err := h.publisher.Publish(ctx, pkg.ProductionOrderSubject(order.Sector), eventBytes); err != nil {
		h.logger.Errorf("Failed to publish items cancelled event: %v", err)
	}
}

// billForTab computes the closing bill from the tab's current items.
func (h *Handler) billForTab(ctx context.Context, tab *Tab) Bill {
	items, err := h.repos.LineItemRepo.ListByTab(ctx, tab.ID)
	if err != nil {
		h.logger.Errorf("cannot list tab items for bill: %v", err)
		return Bill{}
	}
	return ComputeBill(items, h.feeRate)
}
