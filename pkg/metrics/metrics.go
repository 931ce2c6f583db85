package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

type (
	// Client records named counters. Keys are dot separated, e.g. "commands.createmarketcommand.success".
	Client interface {
		Inc(ctx context.Context, key string, value any, attributes ...attribute.KeyValue)
		Handler() http.Handler
		Shutdown(ctx context.Context) error
	}
)

// MetricName converts a dot separated key into a metric name under the given namespace.
func MetricName(namespace, key string) string {
	replacer := strings.NewReplacer(".", "_", "-", "_", "/", "_", " ", "_")
	name := replacer.Replace(strings.ToLower(key))

	if namespace == "" {
		return name
	}

	return replacer.Replace(strings.ToLower(namespace)) + "_" + name
}

// ToFloat64 normalises the loosely typed values accepted by Client.Inc.
// Durations are reported in seconds; unsupported values yield ok=false.
func ToFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case time.Duration:
		return v.Seconds(), true
	default:
		return 0, false
	}
}
