package decorator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/architeacher/markets/pkg/metrics"
)

type (
	commandMetricsDecorator[C Command, R any] struct {
		base   CommandHandler[C, R]
		client metrics.Client
	}

	queryMetricsDecorator[Q Query, R Result] struct {
		base   QueryHandler[Q, R]
		client metrics.Client
	}
)

func (d commandMetricsDecorator[C, R]) Handle(ctx context.Context, cmd C) (result R, err error) {
	start := time.Now()

	actionName := strings.ToLower(generateActionName(cmd))

	defer func() {
		record(ctx, d.client, "commands", actionName, time.Since(start), err)
	}()

	return d.base.Handle(ctx, cmd)
}

func (d queryMetricsDecorator[Q, R]) Execute(ctx context.Context, query Q) (result R, err error) {
	start := time.Now()

	actionName := strings.ToLower(generateActionName(query))

	defer func() {
		record(ctx, d.client, "queries", actionName, time.Since(start), err)
	}()

	return d.base.Execute(ctx, query)
}

func record(ctx context.Context, client metrics.Client, kind, actionName string, elapsed time.Duration, err error) {
	if client == nil {
		return
	}

	client.Inc(ctx, fmt.Sprintf("%s.%s.duration", kind, actionName), elapsed)

	if err == nil {
		client.Inc(ctx, fmt.Sprintf("%s.%s.success", kind, actionName), 1)

		return
	}

	client.Inc(ctx, fmt.Sprintf("%s.%s.failure", kind, actionName), 1)
}
