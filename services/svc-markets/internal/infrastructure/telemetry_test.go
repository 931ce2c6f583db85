package infrastructure_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/architeacher/markets/services/svc-markets/internal/config"
	"github.com/architeacher/markets/services/svc-markets/internal/infrastructure"
	"github.com/stretchr/testify/require"
)

func TestNewTracerProvider(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		cfg         config.Telemetry
		expectedErr string
	}{
		{
			name: "stdout exporter",
			cfg: config.Telemetry{
				ExporterType:   infrastructure.ExporterStdout,
				ServiceName:    "svc-markets",
				ServiceVersion: "test",
				Traces:         config.Traces{SamplerRatio: 1},
			},
		},
		{
			name:        "grpc exporter requires an endpoint",
			cfg:         config.Telemetry{ExporterType: infrastructure.ExporterGRPC},
			expectedErr: "endpoint is not configured",
		},
		{
			name:        "unknown exporter",
			cfg:         config.Telemetry{ExporterType: "zipkin"},
			expectedErr: "unsupported trace exporter",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer

			provider, shutdown, err := infrastructure.NewTracerProvider(context.Background(), tc.cfg, &out)
			if tc.expectedErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.expectedErr)

				return
			}

			require.NoError(t, err)

			_, span := provider.Tracer("markets-test").Start(context.Background(), "query.GetMarketQuery")
			span.End()

			require.NoError(t, shutdown(context.Background()))
			require.Contains(t, out.String(), "query.GetMarketQuery")
		})
	}
}
