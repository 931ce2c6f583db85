// Package prometheus implements metrics.Client on top of a dedicated Prometheus registry.
package prometheus

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/architeacher/markets/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
)

type (
	Client struct {
		namespace string
		registry  *prometheus.Registry

		mu       sync.Mutex
		counters map[string]*prometheus.CounterVec
	}
)

var _ metrics.Client = (*Client)(nil)

// NewClient creates a client whose metrics are prefixed with namespace.
// Go runtime and process collectors are registered alongside.
func NewClient(namespace string) *Client {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Client{
		namespace: namespace,
		registry:  registry,
		counters:  make(map[string]*prometheus.CounterVec),
	}
}

func (c *Client) Inc(_ context.Context, key string, value any, attributes ...attribute.KeyValue) {
	amount, ok := metrics.ToFloat64(value)
	if !ok || amount < 0 {
		return
	}

	labelNames, labelValues := splitAttributes(attributes)

	counter, err := c.counter(metrics.MetricName(c.namespace, key)+"_total", labelNames)
	if err != nil {
		return
	}

	counter.WithLabelValues(labelValues...).Add(amount)
}

func (c *Client) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Client) Shutdown(context.Context) error {
	return nil
}

func (c *Client) counter(name string, labelNames []string) (*prometheus.CounterVec, error) {
	mapKey := name + "{" + strings.Join(labelNames, ",") + "}"

	c.mu.Lock()
	defer c.mu.Unlock()

	if counter, ok := c.counters[mapKey]; ok {
		return counter, nil
	}

	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: "Counter recorded for " + name,
	}, labelNames)

	if err := c.registry.Register(counter); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}

		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}

		counter = existing
	}

	c.counters[mapKey] = counter

	return counter, nil
}

func splitAttributes(attributes []attribute.KeyValue) ([]string, []string) {
	sorted := make([]attribute.KeyValue, len(attributes))
	copy(sorted, attributes)

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Key < sorted[j].Key
	})

	names := make([]string, 0, len(sorted))
	values := make([]string, 0, len(sorted))

	for _, attr := range sorted {
		names = append(names, metrics.MetricName("", string(attr.Key)))
		values = append(values, attr.Value.Emit())
	}

	return names, values
}
