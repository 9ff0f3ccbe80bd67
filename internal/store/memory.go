package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"routeopt/internal/model"
	"routeopt/internal/opt"
)

// Memory is the in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu      sync.Mutex
	regions opt.RegionMap
	orders  map[string]model.OrderOut // id -> order
	ids     []string                  // insertion order
	byRef   map[string]string         // orderId -> id
}

func NewMemory(regions opt.RegionMap) *Memory {
	if len(regions) == 0 {
		regions = opt.DefaultRegionMap()
	}
	return &Memory{
		regions: regions,
		orders:  map[string]model.OrderOut{},
		byRef:   map[string]string{},
	}
}

func (m *Memory) CreateOrders(ctx context.Context, orders []model.OrderIn) (string, int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	created, skipped := 0, 0
	for _, o := range orders {
		if o.OrderID != "" {
			if _, dup := m.byRef[o.OrderID]; dup {
				skipped++
				continue
			}
		}
		id := uuid.New().String()
		m.orders[id] = model.OrderOut{
			ID:              id,
			OrderID:         o.OrderID,
			Region:          m.regions.RegionFor(o.PostalCode),
			DeliveryAddress: o.DeliveryAddress,
			PostalCode:      o.PostalCode,
			Weight:          OrderWeight(o),
			Items:           o.Items,
			CreatedAt:       time.Now().UTC(),
		}
		m.ids = append(m.ids, id)
		if o.OrderID != "" {
			m.byRef[o.OrderID] = id
		}
		created++
	}
	return fmt.Sprintf("imp_%d", time.Now().UnixNano()), created, skipped, nil
}

func (m *Memory) ListOrders(ctx context.Context, region, cursor string, limit int) ([]model.OrderOut, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	start := 0
	if cursor != "" {
		for i, id := range m.ids {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	if limit <= 0 {
		limit = 100
	}
	out := []model.OrderOut{}
	var next string
	for i := start; i < len(m.ids) && len(out) < limit; i++ {
		o := m.orders[m.ids[i]]
		if region == "" || o.Region == region {
			out = append(out, o)
		}
		next = m.ids[i]
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, nil
}

func (m *Memory) GetOrder(ctx context.Context, id string) (model.OrderOut, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[id]; ok {
		return o, nil
	}
	if mapped, ok := m.byRef[id]; ok {
		return m.orders[mapped], nil
	}
	return model.OrderOut{}, ErrNotFound
}
