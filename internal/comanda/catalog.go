package comanda

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/comandahub/comanda/pkg/enums/sector"
)

// Product is the catalog snapshot used when validating and pricing a line.
type Product struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Price  float64   `json:"price"`
	Active bool      `json:"active"`
	Sector string    `json:"sector"`
}

// Catalog resolves product ids at submission time. Resolution happens
// server-side on every submit because catalog state can change between cart
// build and submission.
type Catalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
}

const catalogCacheTTL = 30 * time.Second

type cachedProduct struct {
	product   *Product
	fetchedAt time.Time
}

// CatalogClient resolves products against the catalog service, keeping a
// short-lived cache so a burst of submissions does not hammer the service.
// A cached product can be up to the TTL stale, so a deactivation may take
// that long to start rejecting submissions.
type CatalogClient struct {
	mu     sync.RWMutex
	cache  map[uuid.UUID]cachedProduct
	client *apt.ServiceClient
	logger apt.Logger
}

func NewCatalogClient(client *apt.ServiceClient, logger apt.Logger) *CatalogClient {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &CatalogClient{
		cache:  make(map[uuid.UUID]cachedProduct),
		client: client,
		logger: logger,
	}
}

type productDTO struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Active bool    `json:"active"`
	Sector string  `json:"sector"`
}

func (c *CatalogClient) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	c.mu.RLock()
	entry, ok := c.cache[id]
	c.mu.RUnlock()
	if ok && time.Since(entry.fetchedAt) < catalogCacheTTL {
		return entry.product, nil
	}

	if c.client == nil {
		return nil, fmt.Errorf("catalog client uninitialized")
	}

	resp, err := c.client.Get(ctx, "products", id.String())
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUnknownProduct
		}
		c.logger.Errorf("catalog lookup failed for product %s: %v", id, err)
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	if resp == nil || resp.Data == nil {
		return nil, ErrUnknownProduct
	}

	var dto productDTO
	if err := rehydrate(resp.Data, &dto); err != nil {
		return nil, fmt.Errorf("failed to decode product %s: %w", id, err)
	}

	productID, parseErr := uuid.Parse(dto.ID)
	if parseErr != nil {
		return nil, fmt.Errorf("invalid product id %s", dto.ID)
	}

	if sector.ByName(dto.Sector) == nil {
		return nil, fmt.Errorf("product %s has unknown sector %q", id, dto.Sector)
	}

	product := &Product{
		ID:     productID,
		Name:   dto.Name,
		Price:  dto.Price,
		Active: dto.Active,
		Sector: dto.Sector,
	}

	c.mu.Lock()
	c.cache[id] = cachedProduct{product: product, fetchedAt: time.Now()}
	c.mu.Unlock()

	return product, nil
}

// isNotFound sniffs the client error for a missing resource. The service
// client surfaces HTTP failures as plain errors, so the status code is only
// available in the message.
func isNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "404") || strings.Contains(msg, "not found")
}

func rehydrate(data interface{}, out interface{}) error {
	bytes, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}
