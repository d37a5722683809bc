package kitchen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/comandahub/comanda/pkg"
	"github.com/comandahub/comanda/pkg/enums/productionstatus"
	"github.com/comandahub/comanda/pkg/enums/sector"
)

type Handler struct {
	repo      Repository
	board     *SectorBoard
	publisher events.Publisher
	logger    apt.Logger
	config    *apt.Config
	tlm       *telemetry.HTTP

	warnAfter time.Duration
	lateAfter time.Duration
}

func NewHandler(repo Repository, board *SectorBoard, publisher events.Publisher, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	h := &Handler{
		repo:      repo,
		board:     board,
		publisher: publisher,
		logger:    logger,
		config:    config,
		tlm:       telemetry.NewHTTP(),
		warnAfter: DefaultWarnAfter,
		lateAfter: DefaultLateAfter,
	}
	if config != nil {
		h.warnAfter = durationOrDef(config, "kitchen.alert.warn", DefaultWarnAfter)
		h.lateAfter = durationOrDef(config, "kitchen.alert.late", DefaultLateAfter)
	}
	return h
}

func durationOrDef(config *apt.Config, key string, def time.Duration) time.Duration {
	raw := config.GetStringOrDef(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/production-orders", func(r chi.Router) {
		r.Get("/", h.ListProductionOrders)
		r.Get("/board", h.Board)
		r.Get("/{id}", h.GetProductionOrder)
		r.Patch("/{id}/start", h.StartProductionOrder)
		r.Patch("/{id}/ready", h.ReadyProductionOrder)
	})
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", apt.RequestIDFrom(r.Context()))
}

// ListProductionOrders serves the authoritative listing from the repository,
// annotated with read-time alerts. Displays that missed broadcast events poll
// this endpoint to reconcile.
func (h *Handler) ListProductionOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListProductionOrders")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	filter := Filter{}

	if sectorCode := r.URL.Query().Get("sector"); sectorCode != "" {
		if sector.ByName(sectorCode) == nil {
			apt.RespondError(w, http.StatusBadRequest, "Invalid sector")
			return
		}
		filter.Sector = &sectorCode
	}

	if statusCode := r.URL.Query().Get("status"); statusCode != "" {
		if productionstatus.ByName(statusCode) == nil {
			apt.RespondError(w, http.StatusBadRequest, "Invalid status")
			return
		}
		filter.Status = &statusCode
	}

	orders, err := h.repo.List(ctx, filter)
	if err != nil {
		log.Errorf("cannot list production orders: %v", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not list production orders")
		return
	}

	now := time.Now()
	entries := make([]BoardEntry, 0, len(orders))
	for i := range orders {
		entries = append(entries, NewBoardEntry(&orders[i], now, h.warnAfter, h.lateAfter))
	}

	apt.Respond(w, http.StatusOK, map[string]interface{}{
		"production_orders": entries,
	}, nil)
}

// Board serves the in-memory live view, which only contains orders that still
// have work pending.
func (h *Handler) Board(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Board")
	defer finish()

	sectorCode := r.URL.Query().Get("sector")
	statusCode := r.URL.Query().Get("status")

	var orders []*ProductionOrder
	switch {
	case sectorCode != "" && statusCode != "":
		orders = h.board.GetBySectorAndStatusCode(sectorCode, statusCode)
	case sectorCode != "":
		orders = h.board.GetBySectorCode(sectorCode)
	case statusCode != "":
		orders = h.board.GetByStatusCode(statusCode)
	default:
		orders = h.board.GetAll()
	}

	now := time.Now()
	entries := make([]BoardEntry, 0, len(orders))
	for _, order := range orders {
		entries = append(entries, NewBoardEntry(order, now, h.warnAfter, h.lateAfter))
	}

	apt.Respond(w, http.StatusOK, map[string]interface{}{
		"production_orders": entries,
	}, nil)
}

func (h *Handler) GetProductionOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetProductionOrder")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid production order ID")
		return
	}

	order, err := h.repo.FindByID(ctx, id)
	if err != nil {
		log.Errorf("cannot find production order: %v", err)
		apt.RespondError(w, http.StatusNotFound, "Production order not found")
		return
	}

	entry := NewBoardEntry(order, time.Now(), h.warnAfter, h.lateAfter)
	apt.Respond(w, http.StatusOK, entry, nil)
}

func (h *Handler) StartProductionOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.StartProductionOrder")
	defer finish()
	h.advance(w, r,
		productionstatus.Statuses.Received.Code(),
		productionstatus.Statuses.InProgress.Code())
}

func (h *Handler) ReadyProductionOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ReadyProductionOrder")
	defer finish()
	h.advance(w, r,
		productionstatus.Statuses.InProgress.Code(),
		productionstatus.Statuses.Ready.Code())
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request, from, to string) {
	log := h.log(r)
	ctx := r.Context()

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid production order ID")
		return
	}

	order, err := h.repo.Advance(ctx, id, from, to)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTransition):
			apt.RespondError(w, http.StatusConflict, "Production order cannot move to "+to)
		case errors.Is(err, ErrNotFound):
			apt.RespondError(w, http.StatusNotFound, "Production order not found")
		default:
			log.Errorf("cannot advance production order: %v", err)
			apt.RespondError(w, http.StatusInternalServerError, "Could not update production order")
		}
		return
	}

	h.board.Set(order)
	h.publishStatusChange(ctx, order, from)

	apt.Respond(w, http.StatusOK, order, nil)
}

func (h *Handler) publishStatusChange(ctx context.Context, order *ProductionOrder, previousStatus string) {
	evt := pkg.ProductionOrderStatusChangedEvent{
		ProductionOrderEventMetadata: pkg.ProductionOrderEventMetadata{
			EventType:   pkg.EventProductionOrderStatusChanged,
			OccurredAt:  time.Now(),
			OrderID:     order.ID.String(),
			BatchID:     order.BatchID.String(),
			TabID:       order.TabID.String(),
			TableID:     order.TableID.String(),
			Sector:      order.Sector,
			TableNumber: order.TableNumber,
		},
		NewStatus:      order.Status,
		PreviousStatus: previousStatus,
		StartedAt:      order.StartedAt,
		ReadyAt:        order.ReadyAt,
	}

	eventBytes, _ := json.Marshal(evt)
	if err := h.publisher.Publish(ctx, pkg.ProductionOrderSubject(order.Sector), eventBytes); err != nil {
		h.logger.Errorf("Failed to publish status_changed event: %v", err)
	}
}
