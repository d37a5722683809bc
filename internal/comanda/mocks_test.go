package comanda

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/comandahub/comanda/internal/kitchen"
	"github.com/comandahub/comanda/pkg/enums/itemstatus"
	"github.com/comandahub/comanda/pkg/enums/tablestatus"
)

// MockTableRepo is an in-memory TableRepo for handler tests.
type MockTableRepo struct {
	mu     sync.Mutex
	tables map[uuid.UUID]*Table
}

func NewMockTableRepo() *MockTableRepo {
	return &MockTableRepo{tables: make(map[uuid.UUID]*Table)}
}

func (m *MockTableRepo) Create(ctx context.Context, table *Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table.ID] = table
	return nil
}

func (m *MockTableRepo) Get(ctx context.Context, id uuid.UUID) (*Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table, ok := m.tables[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *table
	return &copy, nil
}

func (m *MockTableRepo) GetByNumber(ctx context.Context, number int) (*Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, table := range m.tables {
		if table.Number == number {
			copy := *table
			return &copy, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockTableRepo) List(ctx context.Context) ([]*Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*Table, 0, len(m.tables))
	for _, table := range m.tables {
		result = append(result, table)
	}
	return result, nil
}

func (m *MockTableRepo) ListByStatus(ctx context.Context, status string) ([]*Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*Table
	for _, table := range m.tables {
		if table.Status == status {
			result = append(result, table)
		}
	}
	return result, nil
}

func (m *MockTableRepo) Save(ctx context.Context, table *Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[table.ID]; !ok {
		return ErrNotFound
	}
	m.tables[table.ID] = table
	return nil
}

func (m *MockTableRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[id]; !ok {
		return ErrNotFound
	}
	delete(m.tables, id)
	return nil
}

func (m *MockTableRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) (*Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table, ok := m.tables[id]
	if !ok {
		return nil, ErrNotFound
	}
	if table.Status != from {
		return nil, ErrInvalidState
	}
	table.Status = to
	copy := *table
	return &copy, nil
}

// MockTabRepo is an in-memory TabRepo.
type MockTabRepo struct {
	mu   sync.Mutex
	tabs map[uuid.UUID]*Tab
}

func NewMockTabRepo() *MockTabRepo {
	return &MockTabRepo{tabs: make(map[uuid.UUID]*Tab)}
}

func (m *MockTabRepo) Create(ctx context.Context, tab *Tab) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tabs[tab.ID] = tab
	return nil
}

func (m *MockTabRepo) Get(ctx context.Context, id uuid.UUID) (*Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tab, ok := m.tabs[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *tab
	return &copy, nil
}

func (m *MockTabRepo) GetOpenByTable(ctx context.Context, tableID uuid.UUID) (*Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tab := range m.tabs {
		if tab.TableID == tableID && tab.Status == TabStatusOpen {
			copy := *tab
			return &copy, nil
		}
	}
	return nil, ErrNoActiveTab
}

func (m *MockTabRepo) Save(ctx context.Context, tab *Tab) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tabs[tab.ID]; !ok {
		return ErrNotFound
	}
	m.tabs[tab.ID] = tab
	return nil
}

// MockLineItemRepo is an in-memory LineItemRepo.
type MockLineItemRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*LineItem
}

func NewMockLineItemRepo() *MockLineItemRepo {
	return &MockLineItemRepo{items: make(map[uuid.UUID]*LineItem)}
}

func (m *MockLineItemRepo) Get(ctx context.Context, id uuid.UUID) (*LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *item
	return &copy, nil
}

func (m *MockLineItemRepo) ListByTab(ctx context.Context, tabID uuid.UUID) ([]*LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*LineItem
	for _, item := range m.items {
		if item.TabID == tabID {
			result = append(result, item)
		}
	}
	return result, nil
}

func (m *MockLineItemRepo) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]*LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*LineItem
	for _, item := range m.items {
		if item.BatchID == batchID {
			result = append(result, item)
		}
	}
	return result, nil
}

func (m *MockLineItemRepo) put(items ...*LineItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		m.items[item.ID] = item
	}
}

// MockBatchRepo is an in-memory BatchRepo that mimics the transactional
// submit: the table must still be occupied, the tab still open, and the tab
// total is re-derived from the stored items at commit time.
type MockBatchRepo struct {
	mu      sync.Mutex
	batches map[uuid.UUID]*OrderBatch
	orders  map[uuid.UUID]*kitchen.ProductionOrder

	tables *MockTableRepo
	tabs   *MockTabRepo
	items  *MockLineItemRepo

	SubmitFunc func(ctx context.Context, batch *OrderBatch, items []*LineItem, orders []*kitchen.ProductionOrder) (float64, error)
}

func NewMockBatchRepo(tables *MockTableRepo, tabs *MockTabRepo, items *MockLineItemRepo) *MockBatchRepo {
	return &MockBatchRepo{
		batches: make(map[uuid.UUID]*OrderBatch),
		orders:  make(map[uuid.UUID]*kitchen.ProductionOrder),
		tables:  tables,
		tabs:    tabs,
		items:   items,
	}
}

func (m *MockBatchRepo) Get(ctx context.Context, id uuid.UUID) (*OrderBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	batch, ok := m.batches[id]
	if !ok {
		return nil, ErrNotFound
	}
	return batch, nil
}

func (m *MockBatchRepo) ListByTab(ctx context.Context, tabID uuid.UUID) ([]*OrderBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*OrderBatch
	for _, batch := range m.batches {
		if batch.TabID == tabID {
			result = append(result, batch)
		}
	}
	return result, nil
}

func (m *MockBatchRepo) Submit(ctx context.Context, batch *OrderBatch, items []*LineItem, orders []*kitchen.ProductionOrder) (float64, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, batch, items, orders)
	}
	return m.submit(ctx, batch, items, orders)
}

func (m *MockBatchRepo) submit(ctx context.Context, batch *OrderBatch, items []*LineItem, orders []*kitchen.ProductionOrder) (float64, error) {
	table, err := m.tables.Get(ctx, batch.TableID)
	if err != nil {
		return 0, err
	}
	if table.Status != tablestatus.Statuses.Occupied.Code() {
		return 0, ErrTableClosingForOrders
	}

	tab, err := m.tabs.GetOpenByTable(ctx, batch.TableID)
	if err != nil {
		return 0, err
	}

	m.items.put(items...)

	tabItems, err := m.items.ListByTab(ctx, tab.ID)
	if err != nil {
		return 0, err
	}
	total := RawTotal(tabItems)
	tab.Total = total
	if err := m.tabs.Save(ctx, tab); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches[batch.ID] = batch
	for _, order := range orders {
		m.orders[order.ID] = order
	}
	return total, nil
}

// MockPaymentRepo is an in-memory PaymentRepo.
type MockPaymentRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*Payment
}

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{payments: make(map[uuid.UUID]*Payment)}
}

func (m *MockPaymentRepo) Get(ctx context.Context, id uuid.UUID) (*Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return payment, nil
}

func (m *MockPaymentRepo) GetByTab(ctx context.Context, tabID uuid.UUID) (*Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, payment := range m.payments {
		if payment.TabID == tabID {
			return payment, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockPaymentRepo) put(payment *Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
}

// MockSettlementRepo replays the transactional transitions against the other
// mocks.
type MockSettlementRepo struct {
	tables   *MockTableRepo
	tabs     *MockTabRepo
	items    *MockLineItemRepo
	batches  *MockBatchRepo
	payments *MockPaymentRepo
}

func NewMockSettlementRepo(tables *MockTableRepo, tabs *MockTabRepo, items *MockLineItemRepo, batches *MockBatchRepo, payments *MockPaymentRepo) *MockSettlementRepo {
	return &MockSettlementRepo{
		tables:   tables,
		tabs:     tabs,
		items:    items,
		batches:  batches,
		payments: payments,
	}
}

func (m *MockSettlementRepo) Open(ctx context.Context, tableID uuid.UUID, openedBy string) (*Table, *Tab, error) {
	table, err := m.tables.UpdateStatus(ctx, tableID,
		tablestatus.Statuses.Free.Code(), tablestatus.Statuses.Occupied.Code())
	if err != nil {
		return nil, nil, err
	}

	tab := NewTab(tableID, openedBy)
	tab.BeforeCreate()
	if err := m.tabs.Create(ctx, tab); err != nil {
		return nil, nil, err
	}
	return table, tab, nil
}

func (m *MockSettlementRepo) Settle(ctx context.Context, payment *Payment) error {
	tab, err := m.tabs.Get(ctx, payment.TabID)
	if err != nil {
		return err
	}
	if err := tab.Settle(); err != nil {
		return err
	}
	if err := m.tabs.Save(ctx, tab); err != nil {
		return err
	}

	table, err := m.tables.Get(ctx, payment.TableID)
	if err != nil {
		return err
	}
	table.Status = tablestatus.Statuses.Free.Code()
	if err := m.tables.Save(ctx, table); err != nil {
		return err
	}

	m.payments.put(payment)
	return nil
}

func (m *MockSettlementRepo) Transfer(ctx context.Context, tabID, fromTableID, toTableID uuid.UUID) (string, error) {
	source, err := m.tables.Get(ctx, fromTableID)
	if err != nil {
		return "", err
	}
	movedStatus := source.Status

	if _, err := m.tables.UpdateStatus(ctx, toTableID,
		tablestatus.Statuses.Free.Code(), movedStatus); err != nil {
		if err == ErrInvalidState {
			return "", ErrDestinationNotFree
		}
		return "", err
	}

	tab, err := m.tabs.Get(ctx, tabID)
	if err != nil {
		return "", err
	}
	tab.TableID = toTableID
	if err := m.tabs.Save(ctx, tab); err != nil {
		return "", err
	}

	source.Status = tablestatus.Statuses.Free.Code()
	if err := m.tables.Save(ctx, source); err != nil {
		return "", err
	}
	return movedStatus, nil
}

func (m *MockSettlementRepo) CancelItem(ctx context.Context, itemID uuid.UUID, cancelledBy string) (*LineItem, *kitchen.ProductionOrder, *Tab, error) {
	item, err := m.items.Get(ctx, itemID)
	if err != nil {
		return nil, nil, nil, err
	}

	tab, err := m.tabs.Get(ctx, item.TabID)
	if err != nil {
		return nil, nil, nil, err
	}
	if tab.Status == TabStatusSettled {
		return nil, nil, nil, ErrAlreadySettled
	}

	if err := item.Cancel(cancelledBy); err != nil {
		return nil, nil, nil, err
	}
	m.items.put(item)

	var order *kitchen.ProductionOrder
	m.batches.mu.Lock()
	for _, candidate := range m.batches.orders {
		if candidate.BatchID == item.BatchID && candidate.Sector == item.Sector {
			candidate.RemoveLiveItem(item.ID)
			order = candidate
			break
		}
	}
	m.batches.mu.Unlock()

	items, err := m.items.ListByTab(ctx, item.TabID)
	if err != nil {
		return nil, nil, nil, err
	}
	tab.Total = RawTotal(items)
	if err := m.tabs.Save(ctx, tab); err != nil {
		return nil, nil, nil, err
	}

	return item, order, tab, nil
}

// MockCatalog resolves products from a fixed map.
type MockCatalog struct {
	products map[uuid.UUID]*Product

	GetProductFunc func(ctx context.Context, id uuid.UUID) (*Product, error)
}

func NewMockCatalog(products ...*Product) *MockCatalog {
	m := &MockCatalog{products: make(map[uuid.UUID]*Product)}
	for _, product := range products {
		m.products[product.ID] = product
	}
	return m
}

func (m *MockCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	if m.GetProductFunc != nil {
		return m.GetProductFunc(ctx, id)
	}
	product, ok := m.products[id]
	if !ok {
		return nil, ErrUnknownProduct
	}
	return product, nil
}

// MockPublisher records published events.
type MockPublisher struct {
	mu       sync.Mutex
	Messages map[string][][]byte
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Messages: make(map[string][][]byte)}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages[topic] = append(m.Messages[topic], msg)
	return nil
}

func (m *MockPublisher) Count(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages[topic])
}

// Last returns the most recent message published on the topic, or nil.
func (m *MockPublisher) Last(topic string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.Messages[topic]
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

// DenyAllChecker rejects every role check.
type DenyAllChecker struct{}

func (DenyAllChecker) HasRole(ctx context.Context, userID string, roles []string) (bool, error) {
	return false, nil
}

func pendingItem(tabID uuid.UUID, name string, price float64, quantity int, sectorCode string) *LineItem {
	return &LineItem{
		ID:       uuid.New(),
		BatchID:  uuid.New(),
		TabID:    tabID,
		Name:     name,
		Price:    price,
		Quantity: quantity,
		Sector:   sectorCode,
		Status:   itemstatus.Statuses.Pending.Code(),
	}
}
