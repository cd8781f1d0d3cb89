// Command alerts enriches a geocoded organization CSV with active NWS
// alerts, recent FEMA disaster declarations, and a combined risk level.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/org-hazard-etl/internal/adapter/fema"
	"github.com/couchcryptid/org-hazard-etl/internal/adapter/nws"
	"github.com/couchcryptid/org-hazard-etl/internal/config"
	"github.com/couchcryptid/org-hazard-etl/internal/csvio"
	"github.com/couchcryptid/org-hazard-etl/internal/observability"
	"github.com/couchcryptid/org-hazard-etl/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	output := flag.String("o", "", "output CSV path (default: <input>_with_alerts.csv)")
	encoding := flag.String("e", "", "input encoding (utf-8, cp1252, iso-8859-1; default: auto-detect)")
	flag.Parse()

	if flag.NArg() != 1 {
		return fmt.Errorf("usage: alerts [flags] <geocoded.csv>")
	}
	input := flag.Arg(0)

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	table, err := csvio.ReadOrganizations(input, *encoding, logger)
	if err != nil {
		return err
	}
	logger.Info("loaded organizations", "rows", len(table.Records))

	enricher := pipeline.NewAlertEnricher(
		nws.NewClient(cfg.UserAgent, cfg.AlertsTimeout, logger),
		fema.NewClient(cfg.FEMATimeout, logger),
		cfg.FEMADelay,
		logger,
		metrics,
	)

	report, runErr := enricher.Run(ctx, table.Records)

	outPath := *output
	if outPath == "" {
		outPath = defaultOutput(input, "_with_alerts")
	}
	if err := csvio.WriteAlertEnriched(outPath, table); err != nil {
		return err
	}
	logger.Info("wrote output", "path", outPath)

	logger.Info("run summary",
		"total", report.Total,
		"with_alerts", report.WithAlerts,
		"with_disasters", report.WithDisasters,
		"zones_targeted", report.ZonesTargeted,
		"states_queried", report.StatesQueried,
	)
	return runErr
}

func defaultOutput(input, suffix string) string {
	if ext := ".csv"; strings.HasSuffix(strings.ToLower(input), ext) {
		return input[:len(input)-len(ext)] + suffix + ".csv"
	}
	return input + suffix + ".csv"
}
