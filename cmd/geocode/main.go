// Command geocode enriches an organization CSV export with coordinates and
// NWS forecast zones. Rows already resolved in a previous run are skipped
// via the incremental index.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/org-hazard-etl/internal/adapter/arcgis"
	"github.com/couchcryptid/org-hazard-etl/internal/adapter/googlemaps"
	httpadapter "github.com/couchcryptid/org-hazard-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/org-hazard-etl/internal/adapter/kafka"
	"github.com/couchcryptid/org-hazard-etl/internal/adapter/nominatim"
	"github.com/couchcryptid/org-hazard-etl/internal/adapter/nws"
	"github.com/couchcryptid/org-hazard-etl/internal/config"
	"github.com/couchcryptid/org-hazard-etl/internal/csvio"
	"github.com/couchcryptid/org-hazard-etl/internal/domain"
	"github.com/couchcryptid/org-hazard-etl/internal/geocache"
	"github.com/couchcryptid/org-hazard-etl/internal/observability"
	"github.com/couchcryptid/org-hazard-etl/internal/pipeline"
	"github.com/couchcryptid/org-hazard-etl/internal/state"
)

func main() {
	if err := run(); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	output := flag.String("o", "", "output CSV path (default: <input>_geocoded.csv)")
	encoding := flag.String("e", "", "input encoding (utf-8, cp1252, iso-8859-1; default: auto-detect)")
	delay := flag.Duration("d", 0, "delay between geocoding requests (overrides REQUEST_DELAY)")
	priorPath := flag.String("prior", "", "previously geocoded CSV to adopt results from")
	flag.Parse()

	if flag.NArg() != 1 {
		return fmt.Errorf("usage: geocode [flags] <input.csv>")
	}
	input := flag.Arg(0)

	// A missing .env is fine; explicit environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *delay > 0 {
		cfg.RequestDelay = *delay
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

	if *priorPath != "" {
		prior, err := csvio.ReadOrganizations(*priorPath, "", logger)
		if err != nil {
			return fmt.Errorf("load prior results: %w", err)
		}
		adopted := domain.AdoptPrior(table.Records, prior.Records)
		logger.Info("adopted prior results", "rows", adopted, "from", *priorPath)
	}

	store, err := state.OpenSQLite(cfg.IndexPath)
	if err != nil {
		return err
	}
	defer store.Close()

	index, err := store.Load(ctx)
	if err != nil {
		return err
	}
	logger.Info("loaded geocode index", "entries", len(index), "path", cfg.IndexPath)

	free, backend, err := selectFreeGeocoder(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("selected geocoding backend", "backend", backend)

	resolver := &domain.Resolver{
		Free:   geocache.New(free, 1024),
		Paid:   paidGeocoder(ctx, cfg, logger),
		Logger: logger,
	}

	zones := nws.NewClient(cfg.UserAgent, cfg.ZoneTimeout, logger)
	geocoder := pipeline.NewGeocoder(resolver, zones, index, cfg.RequestDelay, logger, metrics)

	srv := startObservability(cfg, geocoder, logger)
	if srv != nil {
		defer stopObservability(srv, logger)
	}

	sum, runErr := geocoder.Run(ctx, table.Records)

	// Persist whatever progress was made, even on interrupt.
	if err := store.Save(context.Background(), index); err != nil {
		logger.Error("save geocode index failed", "error", err)
	}

	outPath := *output
	if outPath == "" {
		outPath = defaultOutput(input, "_geocoded")
	}
	if err := csvio.WriteGeocoded(outPath, table); err != nil {
		return err
	}
	logger.Info("wrote output", "path", outPath)

	if cfg.KafkaEnabled {
		if err := publishEnriched(ctx, cfg, table.Records, logger); err != nil {
			logger.Error("kafka publish failed", "error", err)
		}
	}

	logger.Info("run summary",
		"total", sum.Total,
		"succeeded", sum.Succeeded,
		"failed", sum.Failed,
		"empty_address", sum.EmptyAddress,
		"previously_geocoded", sum.PreviouslyGeocoded,
		"reused_existing", sum.ReusedExisting,
		"zones_resolved", sum.ZonesResolved,
		"methods", sum.Methods,
	)
	return runErr
}

// selectFreeGeocoder probes the free backends in preference order: Nominatim
// with TLS verification, Nominatim without (some corporate proxies break the
// chain), then ArcGIS.
func selectFreeGeocoder(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.Geocoder, string, error) {
	candidates := []domain.ProviderCandidate{
		{Name: "nominatim", Init: func(_ context.Context) (domain.Geocoder, error) {
			return nominatim.NewClient(cfg.UserAgent, cfg.GeocodeTimeout, logger), nil
		}},
		{Name: "nominatim-insecure", Init: func(_ context.Context) (domain.Geocoder, error) {
			return nominatim.NewInsecureClient(cfg.UserAgent, cfg.GeocodeTimeout, logger), nil
		}},
		{Name: "arcgis", Init: func(_ context.Context) (domain.Geocoder, error) {
			return arcgis.NewClient(cfg.GeocodeTimeout, logger), nil
		}},
	}
	return domain.SelectGeocoder(ctx, candidates, logger)
}

// paidGeocoder returns the Google Maps fallback tier, or nil when disabled
// or not answering its probe.
func paidGeocoder(ctx context.Context, cfg *config.Config, logger *slog.Logger) domain.Geocoder {
	if !cfg.GoogleMapsEnabled {
		logger.Info("google maps fallback disabled")
		return nil
	}
	client := googlemaps.NewClient(cfg.GoogleMapsAPIKey, cfg.GeocodeTimeout, logger)
	return domain.ProbePaidGeocoder(ctx, client, logger)
}

func startObservability(cfg *config.Config, ready httpadapter.ReadinessChecker, logger *slog.Logger) *httpadapter.Server {
	if cfg.HTTPAddr == "" {
		return nil
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	return srv
}

func stopObservability(srv *httpadapter.Server, logger *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
}

func publishEnriched(ctx context.Context, cfg *config.Config, records []domain.OrgRecord, logger *slog.Logger) error {
	writer := kafkaadapter.NewWriter(cfg, logger)
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}()
	return writer.PublishBatch(ctx, records)
}

func defaultOutput(input, suffix string) string {
	if ext := ".csv"; strings.HasSuffix(strings.ToLower(input), ext) {
		return input[:len(input)-len(ext)] + suffix + ".csv"
	}
	return input + suffix + ".csv"
}
