package store

import (
	"context"
	"errors"

	"routeopt/internal/model"
)

// ErrNotFound is returned when a lookup misses.
var ErrNotFound = errors.New("not found")

// Store is the order intake backend. Implementations derive each order's
// region and total weight at creation time so readers never recompute them.
type Store interface {
	// CreateOrders ingests a batch, skipping orders whose orderId was seen
	// before. Returns an import id and the created/skipped counts.
	CreateOrders(ctx context.Context, orders []model.OrderIn) (string, int, int, error)
	// ListOrders pages through stored orders, optionally filtered by
	// region. The returned cursor resumes after the last scanned order.
	ListOrders(ctx context.Context, region, cursor string, limit int) ([]model.OrderOut, string, error)
	// GetOrder looks an order up by internal id or client orderId.
	GetOrder(ctx context.Context, id string) (model.OrderOut, error)
}

// OrderWeight sums item weights times quantity. Quantity zero counts as
// one, so bare items still weigh in.
func OrderWeight(o model.OrderIn) float64 {
	total := 0.0
	for _, it := range o.Items {
		q := it.Quantity
		if q < 1 {
			q = 1
		}
		total += it.Weight * float64(q)
	}
	return total
}
