package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"routeopt/internal/model"
	"routeopt/internal/opt"
)

// Postgres persists orders in PostgreSQL. Schema is applied on startup so a
// fresh database works without a migration step.
type Postgres struct {
	db      *sql.DB
	regions opt.RegionMap
}

func NewPostgres(dsn string, regions opt.RegionMap) (*Postgres, error) {
	if len(regions) == 0 {
		regions = opt.DefaultRegionMap()
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	p := &Postgres{db: db, regions: regions}
	if err := p.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			order_ref TEXT UNIQUE,
			region TEXT NOT NULL,
			postal_code TEXT NOT NULL DEFAULT '',
			lat DOUBLE PRECISION NOT NULL,
			lng DOUBLE PRECISION NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			weight_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
			items JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_region ON orders(region)`,
	}
	for _, s := range stmts {
		if _, err := p.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// CreateOrders inserts a batch in one transaction. Dedup by order_ref.
func (p *Postgres) CreateOrders(ctx context.Context, orders []model.OrderIn) (string, int, int, error) {
	importID := fmt.Sprintf("imp_%d", time.Now().UnixNano())
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	created, skipped := 0, 0
	for _, o := range orders {
		if o.OrderID != "" {
			var existsID string
			err = tx.QueryRowContext(ctx, `SELECT id::text FROM orders WHERE order_ref=$1`, o.OrderID).Scan(&existsID)
			if err == nil {
				skipped++
				continue
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return "", 0, 0, err
			}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO orders (id, order_ref, region, postal_code, lat, lng, label, weight_kg, items)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			uuid.New(), nullIfEmpty(o.OrderID), p.regions.RegionFor(o.PostalCode), o.PostalCode,
			o.DeliveryAddress.Latitude, o.DeliveryAddress.Longitude, o.DeliveryAddress.Label,
			OrderWeight(o), toJSON(o.Items))
		if err != nil {
			return "", 0, 0, err
		}
		created++
	}
	if err := tx.Commit(); err != nil {
		return "", 0, 0, err
	}
	return importID, created, skipped, nil
}

const orderColumns = `id::text, order_ref, region, postal_code, lat, lng, label, weight_kg, items, created_at`

func (p *Postgres) ListOrders(ctx context.Context, region, cursor string, limit int) ([]model.OrderOut, string, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows *sql.Rows
	var err error
	switch {
	case region != "" && cursor != "":
		rows, err = p.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE region=$1 AND id::text > $2 ORDER BY id LIMIT $3`, region, cursor, limit)
	case region != "":
		rows, err = p.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE region=$1 ORDER BY id LIMIT $2`, region, limit)
	case cursor != "":
		rows, err = p.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id::text > $1 ORDER BY id LIMIT $2`, cursor, limit)
	default:
		rows, err = p.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY id LIMIT $1`, limit)
	}
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	out := []model.OrderOut{}
	var last string
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, "", err
		}
		out = append(out, o)
		last = o.ID
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	var next string
	if len(out) == limit {
		next = last
	}
	return out, next, nil
}

func (p *Postgres) GetOrder(ctx context.Context, id string) (model.OrderOut, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id::text=$1 OR order_ref=$1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.OrderOut{}, ErrNotFound
	}
	if err != nil {
		return model.OrderOut{}, err
	}
	return o, nil
}

// Ping lets the readiness probe check the backend.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(r rowScanner) (model.OrderOut, error) {
	var o model.OrderOut
	var ref sql.NullString
	var items []byte
	err := r.Scan(&o.ID, &ref, &o.Region, &o.PostalCode,
		&o.DeliveryAddress.Latitude, &o.DeliveryAddress.Longitude, &o.DeliveryAddress.Label,
		&o.Weight, &items, &o.CreatedAt)
	if err != nil {
		return model.OrderOut{}, err
	}
	o.OrderID = ref.String
	if len(items) > 0 {
		_ = json.Unmarshal(items, &o.Items)
	}
	return o, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func toJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
