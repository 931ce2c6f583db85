package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/architeacher/markets/services/svc-markets/internal/runtime"
	"github.com/spf13/pflag"
)

func main() {
	file := pflag.StringP("file", "f", "", "markets feed to load (defaults to INGEST_FILE)")
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := runtime.Ingest(ctx, *file)
	if err != nil {
		log.Fatalf("failed to ingest markets feed: %v", err)
	}

	if err := json.NewEncoder(os.Stdout).Encode(report); err != nil {
		log.Fatalf("failed to write report: %v", err)
	}

	if report.Failed > 0 {
		os.Exit(2)
	}
}
