package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"routeopt/internal/model"
)

func TestOrderWeight(t *testing.T) {
	o := model.OrderIn{Items: []model.OrderItem{
		{Weight: 2.5, Quantity: 4},
		{Weight: 1},
	}}
	// 2.5*4 + 1*1
	if got := OrderWeight(o); got != 11 {
		t.Fatalf("OrderWeight = %v, want 11", got)
	}
	if got := OrderWeight(model.OrderIn{}); got != 0 {
		t.Fatalf("OrderWeight of empty order = %v, want 0", got)
	}
}

func TestMemoryCreateDerivesRegionAndWeight(t *testing.T) {
	m := NewMemory(nil)
	ctx := context.Background()
	_, created, skipped, err := m.CreateOrders(ctx, []model.OrderIn{{
		OrderID:         "ord-1",
		DeliveryAddress: model.GeoPoint{Latitude: 52.52, Longitude: 13.405},
		PostalCode:      "11001",
		Items:           []model.OrderItem{{Weight: 2.5, Quantity: 4}, {Weight: 1}},
	}})
	if err != nil || created != 1 || skipped != 0 {
		t.Fatalf("CreateOrders = %d created, %d skipped, err %v", created, skipped, err)
	}
	o, err := m.GetOrder(ctx, "ord-1")
	if err != nil {
		t.Fatalf("GetOrder by orderId: %v", err)
	}
	if o.Region != "north" {
		t.Fatalf("region = %q, want north for postal 11001", o.Region)
	}
	if o.Weight != 11 {
		t.Fatalf("weight = %v, want 11", o.Weight)
	}
	if o.ID == "" || o.CreatedAt.IsZero() {
		t.Fatalf("order missing id or timestamp: %+v", o)
	}
	if _, err := m.GetOrder(ctx, o.ID); err != nil {
		t.Fatalf("GetOrder by internal id: %v", err)
	}
}

func TestMemoryCreateSkipsDuplicates(t *testing.T) {
	m := NewMemory(nil)
	ctx := context.Background()
	in := []model.OrderIn{{OrderID: "dup", PostalCode: "11001"}}
	if _, created, _, _ := m.CreateOrders(ctx, in); created != 1 {
		t.Fatalf("first create = %d, want 1", created)
	}
	_, created, skipped, err := m.CreateOrders(ctx, in)
	if err != nil {
		t.Fatalf("CreateOrders: %v", err)
	}
	if created != 0 || skipped != 1 {
		t.Fatalf("duplicate create = %d created, %d skipped, want 0/1", created, skipped)
	}
}

func TestMemoryListOrdersPagination(t *testing.T) {
	m := NewMemory(nil)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		in := []model.OrderIn{{OrderID: fmt.Sprintf("o%d", i), PostalCode: "11001"}}
		if _, created, _, err := m.CreateOrders(ctx, in); err != nil || created != 1 {
			t.Fatalf("create %d: created=%d err=%v", i, created, err)
		}
	}

	var got []model.OrderOut
	cursor := ""
	pages := 0
	for {
		page, next, err := m.ListOrders(ctx, "", cursor, 2)
		if err != nil {
			t.Fatalf("ListOrders: %v", err)
		}
		got = append(got, page...)
		pages++
		if next == "" {
			break
		}
		cursor = next
	}
	if len(got) != 5 {
		t.Fatalf("paged through %d orders, want 5", len(got))
	}
	if pages != 3 {
		t.Fatalf("used %d pages, want 3", pages)
	}
	seen := map[string]bool{}
	for _, o := range got {
		if seen[o.ID] {
			t.Fatalf("order %s appeared twice across pages", o.ID)
		}
		seen[o.ID] = true
	}
}

func TestMemoryListOrdersRegionFilter(t *testing.T) {
	m := NewMemory(nil)
	ctx := context.Background()
	m.CreateOrders(ctx, []model.OrderIn{
		{OrderID: "n1", PostalCode: "11001"},
		{OrderID: "w1", PostalCode: "40002"},
		{OrderID: "n2", PostalCode: "11003"},
	})
	out, _, err := m.ListOrders(ctx, "north", "", 0)
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d north orders, want 2", len(out))
	}
	for _, o := range out {
		if o.Region != "north" {
			t.Fatalf("filter leaked region %q", o.Region)
		}
	}
}

func TestMemoryGetOrderNotFound(t *testing.T) {
	m := NewMemory(nil)
	if _, err := m.GetOrder(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
