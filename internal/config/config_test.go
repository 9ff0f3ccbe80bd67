package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.AverageSpeedKmh != 40 || cfg.BaseCost != 50 || cfg.PerKmCost != 8 || cfg.PerStopCost != 10 {
		t.Fatalf("cost defaults wrong: %+v", cfg)
	}
	if cfg.VehicleCapacity != 100 || cfg.DefaultWarehouses != 3 || cfg.DefaultZones != 5 {
		t.Fatalf("engine defaults wrong: %+v", cfg)
	}
	if cfg.DatabaseURL != "" || cfg.RedisURL != "" {
		t.Fatalf("backends should default to empty: %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("VEHICLE_CAPACITY", "250")
	t.Setenv("LOG_LEVEL", "debug")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9100" {
		t.Fatalf("Port = %q, want 9100", cfg.Port)
	}
	if cfg.VehicleCapacity != 250 {
		t.Fatalf("VehicleCapacity = %v, want 250", cfg.VehicleCapacity)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := "PORT=9200\nBASE_COST=75\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9200" {
		t.Fatalf("Port = %q, want 9200 from .env", cfg.Port)
	}
	if cfg.BaseCost != 75 {
		t.Fatalf("BaseCost = %v, want 75 from .env", cfg.BaseCost)
	}
}

func TestLoadMissingDotEnvIsFine(t *testing.T) {
	if _, err := Load(t.TempDir()); err != nil {
		t.Fatalf("missing .env should not fail Load: %v", err)
	}
}

func TestRegionsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.yaml")
	doc := "prefixes:\n  \"11\": north\n  \"40\": west\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write regions: %v", err)
	}
	m, err := RegionsFromFile(path)
	if err != nil {
		t.Fatalf("RegionsFromFile: %v", err)
	}
	if m["11"] != "north" || m["40"] != "west" {
		t.Fatalf("region map = %v", m)
	}

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(empty, []byte("prefixes: {}\n"), 0o644); err != nil {
		t.Fatalf("write empty: %v", err)
	}
	if _, err := RegionsFromFile(empty); err == nil {
		t.Fatal("empty region map should be rejected")
	}
	if _, err := RegionsFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file should be rejected")
	}
}
