package runtime

import (
	"context"
	"fmt"

	"github.com/architeacher/markets/services/svc-markets/internal/adapters/ingest"
)

// Ingest loads the markets feed at path, or the configured feed when path
// is empty, and releases every resource it opened.
func Ingest(ctx context.Context, path string, opts ...DependencyOption) (ingest.Report, error) {
	if len(opts) == 0 {
		opts = storeOptions(ctx)
	}

	deps, err := applyOptions(opts...)
	if err != nil {
		return ingest.Report{}, fmt.Errorf("initializing dependencies: %w", err)
	}

	defer func() {
		for resource, cleanupFn := range deps.cleanupFuncs {
			if err := cleanupFn(context.WithoutCancel(ctx)); err != nil {
				deps.infra.logger.Error().Err(err).Str("resource", resource).Msg("failed to release resource")
			}
		}
	}()

	if path == "" {
		path = deps.config.Ingest.File
	}

	loader, err := ingest.NewFeedLoader(deps.app.Commands.CreateMarket, deps.config.Ingest.Separator, deps.infra.logger)
	if err != nil {
		return ingest.Report{}, err
	}

	return loader.LoadFile(ctx, path)
}
