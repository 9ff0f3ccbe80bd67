package store

import (
	"testing"

	"routeopt/internal/model"
)

func TestNullIfEmpty(t *testing.T) {
	if v := nullIfEmpty(""); v != nil {
		t.Fatalf("nullIfEmpty(\"\") = %v, want nil", v)
	}
	if v := nullIfEmpty("x"); v != "x" {
		t.Fatalf("nullIfEmpty(x) = %v, want x", v)
	}
}

func TestToJSON(t *testing.T) {
	b := toJSON([]model.OrderItem{{Weight: 1.5, Quantity: 2}})
	if string(b) != `[{"weight":1.5,"quantity":2}]` {
		t.Fatalf("toJSON = %s", b)
	}
	if string(toJSON(nil)) != "null" {
		t.Fatalf("toJSON(nil) = %s", toJSON(nil))
	}
}
