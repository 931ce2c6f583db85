package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const skipAccessLogKey contextKey = "skip_access_log"

var healthEndpoints = map[string]struct{}{
	"/v1/liveness":  {},
	"/v1/readiness": {},
	"/v1/health":    {},
	"/metrics":      {},
}

// HealthCheckFilter marks probe requests so the access log skips them.
type HealthCheckFilter struct {
	logHealthChecks bool
}

func NewHealthCheckFilter(logHealthChecks bool) *HealthCheckFilter {
	return &HealthCheckFilter{logHealthChecks: logHealthChecks}
}

func (h *HealthCheckFilter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.logHealthChecks && isHealthEndpoint(r.URL.Path) {
			ctx := context.WithValue(r.Context(), skipAccessLogKey, true)
			next.ServeHTTP(w, r.WithContext(ctx))

			return
		}

		next.ServeHTTP(w, r)
	})
}

func isHealthEndpoint(path string) bool {
	_, ok := healthEndpoints[strings.TrimSuffix(path, "/")]

	return ok
}

func shouldSkipAccessLog(ctx context.Context) bool {
	skip, ok := ctx.Value(skipAccessLogKey).(bool)

	return ok && skip
}
