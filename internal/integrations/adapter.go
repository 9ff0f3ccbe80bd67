package integrations

import (
	"context"
	"time"

	"go.uber.org/zap"

	"routeopt/internal/model"
	"routeopt/internal/store"
)

// OrderSource is the minimal interface for external order feeds.
type OrderSource interface {
	Name() string
	// FetchOrders returns the next batch and an opaque cursor. An empty
	// batch means the source is drained for now.
	FetchOrders(ctx context.Context, cursor string) (OrderBatch, error)
	// AckBatch marks a fetched batch consumed so it is not served again.
	AckBatch(ctx context.Context, batchRef string) error
}

type OrderBatch struct {
	Ref    string
	Orders []model.OrderIn
	Cursor string
}

// Runner polls an order source and feeds fetched batches into the store.
type Runner struct {
	Source   OrderSource
	Store    store.Store
	Log      *zap.Logger
	Interval time.Duration
	stop     chan struct{}
}

func NewRunner(src OrderSource, st store.Store, log *zap.Logger, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Runner{Source: src, Store: st, Log: log, Interval: interval, stop: make(chan struct{})}
}

func (r *Runner) Start() {
	go func() {
		ticker := time.NewTicker(r.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				r.pollOnce()
			}
		}
	}()
}

func (r *Runner) Stop() { close(r.stop) }

func (r *Runner) pollOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	cursor := ""
	for {
		batch, err := r.Source.FetchOrders(ctx, cursor)
		if err != nil {
			r.Log.Warn("order fetch failed", zap.String("source", r.Source.Name()), zap.Error(err))
			return
		}
		if len(batch.Orders) == 0 {
			return
		}
		_, created, skipped, err := r.Store.CreateOrders(ctx, batch.Orders)
		if err != nil {
			r.Log.Warn("order import failed", zap.String("source", r.Source.Name()), zap.Error(err))
			return
		}
		if err := r.Source.AckBatch(ctx, batch.Ref); err != nil {
			r.Log.Warn("order ack failed", zap.String("batch", batch.Ref), zap.Error(err))
		}
		r.Log.Info("orders imported",
			zap.String("source", r.Source.Name()),
			zap.String("batch", batch.Ref),
			zap.Int("created", created),
			zap.Int("skipped", skipped))
		if batch.Cursor == "" {
			return
		}
		cursor = batch.Cursor
	}
}
