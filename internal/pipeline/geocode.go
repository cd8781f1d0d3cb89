// Package pipeline orchestrates the batch enrichment runs: geocoding with
// zone lookups, and alert/disaster matching.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/org-hazard-etl/internal/domain"
	"github.com/couchcryptid/org-hazard-etl/internal/observability"
	"github.com/couchcryptid/org-hazard-etl/internal/state"
)

// ZoneLookup maps coordinates to forecast zone identifiers.
type ZoneLookup interface {
	Lookup(ctx context.Context, lat, lon float64) (domain.ZoneSet, error)
}

// GeocodeSummary is the run report logged when a batch finishes.
type GeocodeSummary struct {
	Total              int
	Succeeded          int
	Failed             int
	EmptyAddress       int
	PreviouslyGeocoded int
	ReusedExisting     int
	ZonesResolved      int

	// Methods counts successful rows by the strategy that resolved them.
	Methods map[domain.Method]int
}

// Geocoder runs the geocoding half of the batch: resolve coordinates for
// each organization row, then map them to forecast zones.
type Geocoder struct {
	resolver *domain.Resolver
	zones    ZoneLookup
	index    state.Index
	limiter  *rate.Limiter
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
}

// NewGeocoder creates the geocoding batch stage. The limiter paces outbound
// geocoding calls; rows served from the index or existing data never wait
// on it. Pass a nil zones lookup to skip zone resolution.
func NewGeocoder(resolver *domain.Resolver, zones ZoneLookup, index state.Index, requestDelay time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Geocoder {
	var limiter *rate.Limiter
	if requestDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(requestDelay), 1)
	}
	return &Geocoder{
		resolver: resolver,
		zones:    zones,
		index:    index,
		limiter:  limiter,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once the batch has processed at least one row.
func (g *Geocoder) CheckReadiness(_ context.Context) error {
	if !g.ready.Load() {
		return errors.New("batch has not processed any rows yet")
	}
	return nil
}

// Run enriches every record in place and returns the run summary. Rows are
// processed in order; a context cancellation stops the batch between rows
// and returns the error with whatever progress was made.
func (g *Geocoder) Run(ctx context.Context, records []domain.OrgRecord) (GeocodeSummary, error) {
	g.logger.Info("geocoding batch started", "rows", len(records))
	g.metrics.BatchRunning.Set(1)
	defer g.metrics.BatchRunning.Set(0)

	var sum GeocodeSummary
	sum.Total = len(records)
	sum.Methods = make(map[domain.Method]int)

	for i := range records {
		if err := ctx.Err(); err != nil {
			g.logger.Info("geocoding batch stopping", "reason", err, "processed", i)
			return sum, err
		}

		g.processRow(ctx, &records[i], &sum)
		g.metrics.RowsProcessed.Inc()
		g.ready.Store(true)
	}

	g.logger.Info("geocoding batch finished",
		"rows", sum.Total,
		"succeeded", sum.Succeeded,
		"failed", sum.Failed,
		"empty_address", sum.EmptyAddress,
		"previously_geocoded", sum.PreviouslyGeocoded,
		"reused_existing", sum.ReusedExisting,
		"zones_resolved", sum.ZonesResolved,
		"methods", sum.Methods,
	)
	return sum, nil
}

func (g *Geocoder) processRow(ctx context.Context, rec *domain.OrgRecord, sum *GeocodeSummary) {
	identity := rec.Identity()

	// Rows the index already resolved are skipped without touching their
	// existing columns or the index entry.
	if g.index.IsResolved(identity) {
		rec.Geocode.Status = domain.StatusPrevious
		g.metrics.RowsSkipped.WithLabelValues("previously_geocoded").Inc()
		sum.PreviouslyGeocoded++
		return
	}

	address := domain.BuildFullAddress(rec)
	if address == "" {
		rec.Geocode = domain.GeocodeResult{Method: domain.MethodFailed, Status: domain.StatusEmptyAddress}
		g.index.Record(identity, false, domain.Now())
		g.metrics.RowsSkipped.WithLabelValues("empty_address").Inc()
		sum.EmptyAddress++
		return
	}

	// Rows carrying a complete successful result from a prior export are
	// trusted without re-resolving the address.
	if rec.Geocode.Complete() && rec.Geocode.Status == domain.StatusSuccess {
		g.index.Record(identity, true, domain.Now())
		g.metrics.RowsSkipped.WithLabelValues("existing_data").Inc()
		sum.ReusedExisting++
		g.lookupZones(ctx, rec, sum)
		return
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return
		}
	}

	resolveStart := time.Now()
	rec.Geocode = g.resolver.Resolve(ctx, address, domain.SimplifyAddress(address))
	g.metrics.GeocodeAPIDuration.WithLabelValues(string(rec.Geocode.Method)).Observe(time.Since(resolveStart).Seconds())

	if rec.Geocode.Status == domain.StatusSuccess {
		g.metrics.GeocodeRows.WithLabelValues("success").Inc()
		g.metrics.GeocodeStrategies.WithLabelValues(string(rec.Geocode.Method), "success").Inc()
		g.index.Record(identity, true, domain.Now())
		sum.Succeeded++
		sum.Methods[rec.Geocode.Method]++
		g.lookupZones(ctx, rec, sum)
		return
	}

	g.metrics.GeocodeRows.WithLabelValues("failed").Inc()
	g.metrics.GeocodeStrategies.WithLabelValues(string(domain.MethodFailed), "failed").Inc()
	g.index.Record(identity, false, domain.Now())
	sum.Failed++
}

// lookupZones resolves forecast zones for a geocoded row. Failures are not
// fatal: the row keeps its coordinates and the zone columns fall back to
// their sentinels.
func (g *Geocoder) lookupZones(ctx context.Context, rec *domain.OrgRecord, sum *GeocodeSummary) {
	if g.zones == nil || rec.ZoneLookupDone {
		return
	}

	zones, err := g.zones.Lookup(ctx, rec.Geocode.Point.Lat, rec.Geocode.Point.Lon)
	if err != nil {
		g.logger.Warn("zone lookup failed",
			"error", err,
			"lat", rec.Geocode.Point.Lat,
			"lon", rec.Geocode.Point.Lon,
		)
		g.metrics.ZoneLookups.WithLabelValues("error").Inc()
		rec.Zones = domain.ZoneSet{}
		rec.ZoneLookupDone = true
		return
	}

	rec.Zones = zones
	rec.ZoneLookupDone = true
	if zones.IsEmpty() {
		g.metrics.ZoneLookups.WithLabelValues("not_found").Inc()
		return
	}
	g.metrics.ZoneLookups.WithLabelValues("found").Inc()
	sum.ZonesResolved++
}
