package kitchen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/appetiteclub/apt"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/comandahub/comanda/pkg"
	"github.com/comandahub/comanda/pkg/enums/productionstatus"
	"github.com/comandahub/comanda/pkg/enums/sector"
)

func newTestHandler(t *testing.T) (*Handler, *MockRepository, *SectorBoard, *MockPublisher, chi.Router) {
	t.Helper()

	repo := NewMockRepository()
	board := NewSectorBoard(nil, repo, nil)
	publisher := NewMockPublisher()

	handler := NewHandler(repo, board, publisher, apt.NewConfig(), apt.NewNoopLogger())
	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	return handler, repo, board, publisher, router
}

func TestListProductionOrders(t *testing.T) {
	_, repo, _, _, router := newTestHandler(t)

	kitchenOrder := NewProductionOrder(uuid.New(), uuid.New(), uuid.New(), 1, sector.Sectors.Kitchen.Code(), sampleLines(1))
	barOrder := NewProductionOrder(uuid.New(), uuid.New(), uuid.New(), 2, sector.Sectors.Bar.Code(), sampleLines(1))
	repo.AddOrder(kitchenOrder)
	repo.AddOrder(barOrder)

	req := httptest.NewRequest(http.MethodGet, "/production-orders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want %d", rec.Code, http.StatusOK)
	}

	req = httptest.NewRequest(http.MethodGet, "/production-orders?sector=bar", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("filtered list status = %d, want %d", rec.Code, http.StatusOK)
	}

	req = httptest.NewRequest(http.MethodGet, "/production-orders?sector=garage", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid sector status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	req = httptest.NewRequest(http.MethodGet, "/production-orders?status=burnt", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid status status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetProductionOrder(t *testing.T) {
	_, repo, _, _, router := newTestHandler(t)

	po := NewProductionOrder(uuid.New(), uuid.New(), uuid.New(), 3, sector.Sectors.Kitchen.Code(), sampleLines(1))
	repo.AddOrder(po)

	req := httptest.NewRequest(http.MethodGet, "/production-orders/"+po.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d, want %d", rec.Code, http.StatusOK)
	}

	req = httptest.NewRequest(http.MethodGet, "/production-orders/"+uuid.New().String(), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing order status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestStartProductionOrder(t *testing.T) {
	_, repo, board, publisher, router := newTestHandler(t)

	po := NewProductionOrder(uuid.New(), uuid.New(), uuid.New(), 4, sector.Sectors.Kitchen.Code(), sampleLines(1))
	repo.AddOrder(po)
	board.Set(po)

	req := httptest.NewRequest(http.MethodPatch, "/production-orders/"+po.ID.String()+"/start", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("start status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	if po.Status != productionstatus.Statuses.InProgress.Code() {
		t.Errorf("order status = %s, want in_progress", po.Status)
	}

	onBoard := board.Get(po.ID)
	if onBoard == nil || onBoard.Status != productionstatus.Statuses.InProgress.Code() {
		t.Error("board not updated after start")
	}

	subject := pkg.ProductionOrderSubject(sector.Sectors.Kitchen.Code())
	if len(publisher.PublishedEvents) != 1 || publisher.PublishedEvents[0].Topic != subject {
		t.Errorf("status_changed not published on %s", subject)
	}

	// Starting twice violates the received -> in_progress guard.
	req = httptest.NewRequest(http.MethodPatch, "/production-orders/"+po.ID.String()+"/start", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("second start status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestReadyProductionOrder(t *testing.T) {
	_, repo, board, _, router := newTestHandler(t)

	po := NewProductionOrder(uuid.New(), uuid.New(), uuid.New(), 5, sector.Sectors.Bar.Code(), sampleLines(1))
	repo.AddOrder(po)
	board.Set(po)

	// Ready straight from received must be rejected.
	req := httptest.NewRequest(http.MethodPatch, "/production-orders/"+po.ID.String()+"/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("ready from received status = %d, want %d", rec.Code, http.StatusConflict)
	}

	if _, err := repo.Advance(context.Background(), po.ID,
		productionstatus.Statuses.Received.Code(), productionstatus.Statuses.InProgress.Code()); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}

	req = httptest.NewRequest(http.MethodPatch, "/production-orders/"+po.ID.String()+"/ready", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("ready status = %d, want %d", rec.Code, http.StatusOK)
	}

	if board.Get(po.ID) != nil {
		t.Error("ready order still on the live board")
	}
}

func TestAdvanceUnknownOrder(t *testing.T) {
	_, _, _, _, router := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPatch, "/production-orders/"+uuid.New().String()+"/start", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("start status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestBoardEndpoint(t *testing.T) {
	_, _, board, _, router := newTestHandler(t)

	kitchenOrder := NewProductionOrder(uuid.New(), uuid.New(), uuid.New(), 6, sector.Sectors.Kitchen.Code(), sampleLines(1))
	barOrder := NewProductionOrder(uuid.New(), uuid.New(), uuid.New(), 7, sector.Sectors.Bar.Code(), sampleLines(1))
	board.Set(kitchenOrder)
	board.Set(barOrder)

	req := httptest.NewRequest(http.MethodGet, "/production-orders/board", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("board status = %d, want %d", rec.Code, http.StatusOK)
	}

	req = httptest.NewRequest(http.MethodGet, "/production-orders/board?sector=kitchen&status=received", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("filtered board status = %d, want %d", rec.Code, http.StatusOK)
	}
}
