package kitchen

import (
	"context"

	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"
)

// MockRepository is a test mock for Repository
type MockRepository struct {
	orders map[uuid.UUID]*ProductionOrder

	CreateFunc               func(ctx context.Context, po *ProductionOrder) error
	FindByIDFunc             func(ctx context.Context, id uuid.UUID) (*ProductionOrder, error)
	FindByBatchAndSectorFunc func(ctx context.Context, batchID uuid.UUID, sector string) (*ProductionOrder, error)
	ListFunc                 func(ctx context.Context, filter Filter) ([]ProductionOrder, error)
	ListLiveFunc             func(ctx context.Context) ([]*ProductionOrder, error)
	AdvanceFunc              func(ctx context.Context, id uuid.UUID, from, to string) (*ProductionOrder, error)
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		orders: make(map[uuid.UUID]*ProductionOrder),
	}
}

func (m *MockRepository) Create(ctx context.Context, po *ProductionOrder) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, po)
	}
	m.orders[po.ID] = po
	return nil
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*ProductionOrder, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	po, exists := m.orders[id]
	if !exists {
		return nil, ErrNotFound
	}
	return po, nil
}

func (m *MockRepository) FindByBatchAndSector(ctx context.Context, batchID uuid.UUID, sector string) (*ProductionOrder, error) {
	if m.FindByBatchAndSectorFunc != nil {
		return m.FindByBatchAndSectorFunc(ctx, batchID, sector)
	}
	for _, po := range m.orders {
		if po.BatchID == batchID && po.Sector == sector {
			return po, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockRepository) List(ctx context.Context, filter Filter) ([]ProductionOrder, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	result := make([]ProductionOrder, 0, len(m.orders))
	for _, po := range m.orders {
		if filter.Sector != nil && po.Sector != *filter.Sector {
			continue
		}
		if filter.Status != nil && po.Status != *filter.Status {
			continue
		}
		result = append(result, *po)
	}
	return result, nil
}

func (m *MockRepository) ListLive(ctx context.Context) ([]*ProductionOrder, error) {
	if m.ListLiveFunc != nil {
		return m.ListLiveFunc(ctx)
	}
	result := make([]*ProductionOrder, 0, len(m.orders))
	for _, po := range m.orders {
		if po.IsLive() {
			result = append(result, po)
		}
	}
	return result, nil
}

func (m *MockRepository) Advance(ctx context.Context, id uuid.UUID, from, to string) (*ProductionOrder, error) {
	if m.AdvanceFunc != nil {
		return m.AdvanceFunc(ctx, id, from, to)
	}
	po, exists := m.orders[id]
	if !exists {
		return nil, ErrNotFound
	}
	if po.Status != from {
		return nil, ErrInvalidTransition
	}
	if err := po.Advance(to); err != nil {
		return nil, err
	}
	return po, nil
}

// AddOrder is a helper to seed the mock repository
func (m *MockRepository) AddOrder(po *ProductionOrder) {
	m.orders[po.ID] = po
}

// MockPublisher is a test mock for events.Publisher
type MockPublisher struct {
	PublishedEvents []PublishedEvent
	PublishFunc     func(ctx context.Context, topic string, data []byte) error
}

type PublishedEvent struct {
	Topic string
	Data  []byte
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		PublishedEvents: make([]PublishedEvent, 0),
	}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, data []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, data)
	}
	m.PublishedEvents = append(m.PublishedEvents, PublishedEvent{Topic: topic, Data: data})
	return nil
}

// MockStreamConsumer is a test mock for events.StreamConsumer
type MockStreamConsumer struct {
	messages            []events.StreamMessage
	FetchFunc           func(ctx context.Context, maxMessages int) ([]events.StreamMessage, error)
	SubscribeStreamFunc func(ctx context.Context, handler events.HandlerFunc) error
}

func NewMockStreamConsumer() *MockStreamConsumer {
	return &MockStreamConsumer{
		messages: make([]events.StreamMessage, 0),
	}
}

func (m *MockStreamConsumer) Fetch(ctx context.Context, maxMessages int) ([]events.StreamMessage, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, maxMessages)
	}
	return m.messages, nil
}

func (m *MockStreamConsumer) SubscribeStream(ctx context.Context, handler events.HandlerFunc) error {
	if m.SubscribeStreamFunc != nil {
		return m.SubscribeStreamFunc(ctx, handler)
	}
	return nil
}

func (m *MockStreamConsumer) AddMessage(data []byte) {
	m.messages = append(m.messages, events.StreamMessage{Data: data})
}
