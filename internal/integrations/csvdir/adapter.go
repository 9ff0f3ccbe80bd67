package csvdir

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"routeopt/internal/integrations"
	"routeopt/internal/model"
)

// Adapter reads order CSV files dropped into a directory. A consumed file is
// marked with a ".done" companion so restarts do not re-import it.
type Adapter struct {
	Dir string
}

func New(dir string) *Adapter { return &Adapter{Dir: dir} }

func (a *Adapter) Name() string { return "csv-dir" }

func (a *Adapter) FetchOrders(ctx context.Context, cursor string) (integrations.OrderBatch, error) {
	names, err := a.pending()
	if err != nil {
		return integrations.OrderBatch{}, err
	}
	for _, name := range names {
		if cursor != "" && name <= cursor {
			continue
		}
		orders, err := parseFile(filepath.Join(a.Dir, name))
		if err != nil {
			return integrations.OrderBatch{}, fmt.Errorf("parse %s: %w", name, err)
		}
		return integrations.OrderBatch{Ref: name, Orders: orders, Cursor: name}, nil
	}
	return integrations.OrderBatch{}, nil
}

func (a *Adapter) AckBatch(ctx context.Context, batchRef string) error {
	if batchRef == "" {
		return nil
	}
	f, err := os.Create(filepath.Join(a.Dir, batchRef+".done"))
	if err != nil {
		return err
	}
	return f.Close()
}

// pending lists csv files without a ".done" marker, oldest name first.
func (a *Adapter) pending() ([]string, error) {
	entries, err := os.ReadDir(a.Dir)
	if err != nil {
		return nil, err
	}
	var names []string
	done := map[string]bool{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".done") {
			done[strings.TrimSuffix(name, ".done")] = true
			continue
		}
		if strings.HasSuffix(name, ".csv") {
			names = append(names, name)
		}
	}
	out := names[:0]
	for _, n := range names {
		if !done[n] {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out, nil
}

// parseFile reads rows of orderId,latitude,longitude,postalCode,label,weight,quantity.
func parseFile(path string) ([]model.OrderIn, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rd := csv.NewReader(f)
	rd.FieldsPerRecord = 7
	records, err := rd.ReadAll()
	if err != nil {
		return nil, err
	}
	var out []model.OrderIn
	for i, rec := range records {
		if i == 0 && strings.EqualFold(rec[0], "orderId") {
			continue
		}
		lat, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: latitude: %w", i+1, err)
		}
		lng, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: longitude: %w", i+1, err)
		}
		weight, err := strconv.ParseFloat(rec[5], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: weight: %w", i+1, err)
		}
		qty := 1
		if rec[6] != "" {
			if qty, err = strconv.Atoi(rec[6]); err != nil {
				return nil, fmt.Errorf("row %d: quantity: %w", i+1, err)
			}
		}
		out = append(out, model.OrderIn{
			OrderID:         rec[0],
			DeliveryAddress: model.GeoPoint{Latitude: lat, Longitude: lng, Label: rec[4]},
			PostalCode:      rec[3],
			Items:           []model.OrderItem{{Weight: weight, Quantity: qty}},
		})
	}
	return out, nil
}
