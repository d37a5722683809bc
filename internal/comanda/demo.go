package comanda

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/seed"
	"github.com/google/uuid"

	"github.com/comandahub/comanda/pkg/enums/sector"
)

const demoSeedApplication = "comanda_demo"

// demoCatalog resolves the fixed demo menu without calling the catalog service.
type demoCatalog struct {
	products map[uuid.UUID]*Product
}

func newDemoCatalog() *demoCatalog {
	products := []*Product{
		{ID: uuid.New(), Name: "Smash Burger", Price: 32.00, Active: true, Sector: sector.Sectors.Kitchen.Code()},
		{ID: uuid.New(), Name: "Fries", Price: 14.00, Active: true, Sector: sector.Sectors.Kitchen.Code()},
		{ID: uuid.New(), Name: "Caipirinha", Price: 22.00, Active: true, Sector: sector.Sectors.Bar.Code()},
	}

	c := &demoCatalog{products: make(map[uuid.UUID]*Product, len(products))}
	for _, product := range products {
		c.products[product.ID] = product
	}
	return c
}

func (c *demoCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	product, ok := c.products[id]
	if !ok {
		return nil, ErrUnknownProduct
	}
	return product, nil
}

func (c *demoCatalog) lines() []LineRequest {
	lines := make([]LineRequest, 0, len(c.products))
	for id, product := range c.products {
		line := LineRequest{ProductID: id, Quantity: 1}
		if product.Sector == sector.Sectors.Bar.Code() {
			line.Note = "no sugar"
		}
		lines = append(lines, line)
	}
	return lines
}

// ApplyDemoSeeds applies the base table seeds and then stages a realistic
// in-service scenario: table 1 occupied with an open tab and one submitted
// batch routed into kitchen and bar production orders.
func ApplyDemoSeeds(ctx context.Context, repos Repos, seedFS embed.FS, logger apt.Logger) error {
	if err := ApplyTableSeeds(ctx, repos.TableRepo, seedFS, logger); err != nil {
		return err
	}

	tracker, err := trackerFromRepo(repos.TableRepo)
	if err != nil {
		return err
	}

	demoSeeds := []seed.Seed{
		{
			ID:          "2026-08-01_demo_service_v1",
			Description: "Occupy table 1 with an open tab and a submitted batch",
			Run: func(ctx context.Context) error {
				return seedDemoService(ctx, repos, logger)
			},
		},
	}

	logger.Info("Applying demo service seeds")
	if err := seed.Apply(ctx, tracker, demoSeeds, demoSeedApplication); err != nil {
		return err
	}
	logger.Info("Demo service seeds applied successfully")
	return nil
}

func seedDemoService(ctx context.Context, repos Repos, logger apt.Logger) error {
	table, err := repos.TableRepo.GetByNumber(ctx, 1)
	if err != nil {
		return fmt.Errorf("demo table lookup: %w", err)
	}

	occupied, tab, err := repos.SettlementRepo.Open(ctx, table.ID, "seed:demo")
	if err != nil {
		if errors.Is(err, ErrInvalidState) {
			logger.Info("Demo table already in service, skipping", "number", table.Number)
			return nil
		}
		return fmt.Errorf("occupy demo table: %w", err)
	}

	catalog := newDemoCatalog()
	batch, items, orders, err := BuildBatch(ctx, catalog, occupied, tab, catalog.lines(), "seed:demo")
	if err != nil {
		return fmt.Errorf("build demo batch: %w", err)
	}

	if _, err := repos.BatchRepo.Submit(ctx, batch, items, orders); err != nil {
		return fmt.Errorf("submit demo batch: %w", err)
	}

	logger.Info("Demo service seeded",
		"table", occupied.Number,
		"items", len(items),
		"production_orders", len(orders))
	return nil
}

// DemoSeedingFunc returns a lifecycle OnStart-compatible function which stages
// the demo scenario in the background.
func DemoSeedingFunc(seedCtx context.Context, repos Repos, seedFS embed.FS, logger apt.Logger) func(ctx context.Context) error {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	return func(ctx context.Context) error {
		logger.Info("Starting demo seeding in background")
		go func() {
			if err := ApplyDemoSeeds(seedCtx, repos, seedFS, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("❌ Demo seeds failed: %v", err)
			} else if err == nil {
				logger.Info("✓ Demo seeding completed successfully")
			}
		}()
		return nil
	}
}
