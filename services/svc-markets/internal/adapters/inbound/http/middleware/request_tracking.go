package middleware

import (
	"context"
	"net/http"

	"github.com/architeacher/markets/pkg/logger"
	"github.com/google/uuid"
)

const (
	RequestIDHeader     = "X-Request-Id"
	CorrelationIDHeader = "X-Correlation-Id"
)

// RequestTracking stores request and correlation IDs in the context under the
// keys the logger reads, generating them when the caller sent none.
func RequestTracking() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			correlationID := r.Header.Get(CorrelationIDHeader)
			if correlationID == "" {
				correlationID = requestID
			}

			ctx := context.WithValue(r.Context(), logger.ContextKeyRequestID, requestID)
			ctx = context.WithValue(ctx, logger.ContextKeyCorrelationID, correlationID)

			w.Header().Set(RequestIDHeader, requestID)
			w.Header().Set(CorrelationIDHeader, correlationID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(logger.ContextKeyRequestID).(string); ok {
		return id
	}

	return ""
}
