package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds everything the service reads from the environment. Defaults
// match the engine's built-in parameters, so an empty environment gives a
// working in-memory server.
type Config struct {
	Port        string `mapstructure:"PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RedisURL    string `mapstructure:"REDIS_URL"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	RateLimitQPS   float64 `mapstructure:"RATE_LIMIT_QPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	RegionMapFile       string `mapstructure:"REGION_MAP_FILE"`
	CallbackSecret      string `mapstructure:"CALLBACK_SECRET"`
	CallbackMaxAttempts int    `mapstructure:"CALLBACK_MAX_ATTEMPTS"`
	ImportDir           string `mapstructure:"IMPORT_DIR"`

	AverageSpeedKmh   float64 `mapstructure:"AVERAGE_SPEED_KMH"`
	BaseCost          float64 `mapstructure:"BASE_COST"`
	PerKmCost         float64 `mapstructure:"PER_KM_COST"`
	PerStopCost       float64 `mapstructure:"PER_STOP_COST"`
	VehicleCapacity   float64 `mapstructure:"VEHICLE_CAPACITY"`
	DefaultWarehouses int     `mapstructure:"DEFAULT_WAREHOUSES"`
	DefaultZones      int     `mapstructure:"DEFAULT_ZONES"`
}

// Every key needs a default so viper sees it during Unmarshal; environment
// variables override via AutomaticEnv.
var defaults = map[string]any{
	"PORT":                  "8080",
	"DATABASE_URL":          "",
	"REDIS_URL":             "",
	"LOG_LEVEL":             "info",
	"RATE_LIMIT_QPS":        50.0,
	"RATE_LIMIT_BURST":      100,
	"REGION_MAP_FILE":       "",
	"CALLBACK_SECRET":       "",
	"CALLBACK_MAX_ATTEMPTS": 8,
	"IMPORT_DIR":            "",
	"AVERAGE_SPEED_KMH":     40.0,
	"BASE_COST":             50.0,
	"PER_KM_COST":           8.0,
	"PER_STOP_COST":         10.0,
	"VEHICLE_CAPACITY":      100.0,
	"DEFAULT_WAREHOUSES":    3,
	"DEFAULT_ZONES":         5,
}

// Load reads configuration from dir/.env when present and from the process
// environment. Environment variables always win; a missing .env is fine.
func Load(dir string) (Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if dir != "" {
		v.AddConfigPath(dir)
		v.SetConfigName(".env")
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// RegionsFromFile loads a postal prefix to region mapping from a YAML file
// of the form:
//
//	prefixes:
//	  "11": north
//	  "40": west
func RegionsFromFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read region map: %w", err)
	}
	var doc struct {
		Prefixes map[string]string `yaml:"prefixes"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse region map: %w", err)
	}
	if len(doc.Prefixes) == 0 {
		return nil, fmt.Errorf("region map %s has no prefixes", path)
	}
	return doc.Prefixes, nil
}
