package kitchen

import (
	"context"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/comandahub/comanda/pkg"
)

// ProductionOrderSubscriber feeds the sector board from the broadcast stream
// so every running instance converges on the same live view.
type ProductionOrderSubscriber struct {
	subscriber events.Subscriber
	board      *SectorBoard
	logger     apt.Logger
}

func NewProductionOrderSubscriber(sub events.Subscriber, board *SectorBoard, logger apt.Logger) *ProductionOrderSubscriber {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &ProductionOrderSubscriber{
		subscriber: sub,
		board:      board,
		logger:     logger,
	}
}

// Start warms the board and subscribes to production order events for every
// sector.
func (s *ProductionOrderSubscriber) Start(ctx context.Context) error {
	s.logger.Info("starting production order subscriber", "topic", pkg.ProductionOrdersTopic)
	if s.board != nil {
		if err := s.board.Warm(ctx); err != nil {
			s.logger.Info("board warmup failed", "error", err)
		}
	}
	if s.subscriber == nil {
		return fmt.Errorf("production order subscriber not configured")
	}
	return s.subscriber.Subscribe(ctx, pkg.ProductionOrdersTopic+".*", s.handleEvent)
}

func (s *ProductionOrderSubscriber) handleEvent(ctx context.Context, msg []byte) error {
	s.board.ApplyEvent(msg)
	return nil
}
