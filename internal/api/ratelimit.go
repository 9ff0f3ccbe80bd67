package api

import "net/http"

// RateLimit answers 429 once the shared limiter runs dry.
func (s *Server) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.Limiter.Allow() {
			writeProblem(w, http.StatusTooManyRequests, "Rate limit exceeded", "too many optimization requests, retry later", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}
