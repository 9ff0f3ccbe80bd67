package api

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"routeopt/internal/buildinfo"
)

func (s *Server) DebugInfoHandler(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{
		"build": buildinfo.Info(),
		"time":  time.Now().UTC().Format(time.RFC3339),
		"config": map[string]any{
			"PORT":                os.Getenv("PORT"),
			"LOG_LEVEL":           os.Getenv("LOG_LEVEL"),
			"RATE_LIMIT_QPS":      os.Getenv("RATE_LIMIT_QPS"),
			"RATE_LIMIT_BURST":    os.Getenv("RATE_LIMIT_BURST"),
			"IMPORT_DIR":          os.Getenv("IMPORT_DIR"),
			"HAS_DATABASE_URL":    os.Getenv("DATABASE_URL") != "",
			"HAS_REDIS_URL":       os.Getenv("REDIS_URL") != "",
			"HAS_CALLBACK_SECRET": os.Getenv("CALLBACK_SECRET") != "",
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(info)
}
