package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/org-hazard-etl/internal/domain"
	"github.com/couchcryptid/org-hazard-etl/internal/observability"
)

// AlertFeed fetches the current nationwide active alert list.
type AlertFeed interface {
	ActiveAlerts(ctx context.Context) ([]domain.Alert, error)
}

// DisasterFeed fetches recent disaster declarations for one state.
type DisasterFeed interface {
	DeclarationsByState(ctx context.Context, stateCode string) ([]domain.Declaration, error)
}

// AlertSummaryReport is the run report for an alert enrichment batch.
type AlertSummaryReport struct {
	Total         int
	WithAlerts    int
	WithDisasters int
	StatesQueried int
	AlertsFetched int
	ZonesTargeted int
}

// AlertEnricher runs the alert half of the batch: one nationwide alert
// fetch matched against every row's zones, plus one disaster query per
// distinct state.
type AlertEnricher struct {
	alerts    AlertFeed
	disasters DisasterFeed
	femaDelay time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewAlertEnricher creates the alert enrichment stage. femaDelay is the
// pause between per-state disaster queries.
func NewAlertEnricher(alerts AlertFeed, disasters DisasterFeed, femaDelay time.Duration, logger *slog.Logger, metrics *observability.Metrics) *AlertEnricher {
	return &AlertEnricher{
		alerts:    alerts,
		disasters: disasters,
		femaDelay: femaDelay,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run enriches every record in place with alert, disaster and risk columns.
// Feed failures degrade rather than abort: a failed alert fetch means no
// alert matches, a failed state query means no disasters for that state.
func (e *AlertEnricher) Run(ctx context.Context, records []domain.OrgRecord) (AlertSummaryReport, error) {
	var report AlertSummaryReport
	report.Total = len(records)

	targetZones := make(map[string]bool)
	states := make(map[string]bool)
	for i := range records {
		for _, code := range records[i].Zones.Codes() {
			targetZones[code] = true
		}
		if records[i].State != "" {
			states[records[i].State] = true
		}
	}
	report.ZonesTargeted = len(targetZones)

	matched := e.fetchAlerts(ctx, targetZones, &report)
	disastersByState := e.fetchDisasters(ctx, states, &report)

	checkedAt := domain.Now()
	for i := range records {
		rec := &records[i]

		var rowAlerts []domain.Alert
		seen := make(map[string]bool)
		for _, code := range rec.Zones.Codes() {
			for _, a := range matched[code] {
				if seen[a.ID] {
					continue
				}
				seen[a.ID] = true
				rowAlerts = append(rowAlerts, a)
			}
		}
		rec.Alerts = domain.AggregateAlerts(rowAlerts)
		if rec.Alerts.HasActiveAlerts {
			report.WithAlerts++
			e.metrics.AlertsMatched.Add(float64(rec.Alerts.AlertCount))
		}

		if rec.State == "" {
			rec.Disasters = domain.DisasterSummary{StatusNote: "No State Info"}
		} else {
			rec.Disasters = domain.AggregateDisasters(disastersByState[rec.State])
		}
		if rec.Disasters.DisasterCount > 0 {
			report.WithDisasters++
		}

		rec.Risk = domain.AssessRisk(rec.Alerts, rec.Disasters)
		rec.ProcessedAt = checkedAt
	}

	e.logger.Info("alert enrichment finished",
		"rows", report.Total,
		"with_alerts", report.WithAlerts,
		"with_disasters", report.WithDisasters,
		"zones_targeted", report.ZonesTargeted,
		"states_queried", report.StatesQueried,
		"alerts_fetched", report.AlertsFetched,
	)
	return report, ctx.Err()
}

func (e *AlertEnricher) fetchAlerts(ctx context.Context, targetZones map[string]bool, report *AlertSummaryReport) map[string][]domain.Alert {
	if e.alerts == nil || len(targetZones) == 0 {
		return nil
	}

	active, err := e.alerts.ActiveAlerts(ctx)
	if err != nil {
		e.logger.Error("active alert fetch failed, continuing without alerts", "error", err)
		return nil
	}
	report.AlertsFetched = len(active)
	e.logger.Info("fetched active alerts", "count", len(active))

	return domain.MatchAlertsToZones(active, targetZones)
}

func (e *AlertEnricher) fetchDisasters(ctx context.Context, states map[string]bool, report *AlertSummaryReport) map[string][]domain.ClassifiedDisaster {
	if e.disasters == nil {
		return nil
	}

	byState := make(map[string][]domain.ClassifiedDisaster, len(states))
	first := true
	for stateCode := range states {
		if !first && !sleepWithContext(ctx, e.femaDelay) {
			break
		}
		first = false

		decls, err := e.disasters.DeclarationsByState(ctx, stateCode)
		if err != nil {
			e.logger.Warn("disaster query failed, state gets no disaster data",
				"state", stateCode, "error", err)
			e.metrics.FEMARequests.WithLabelValues("error").Inc()
			continue
		}
		e.metrics.FEMARequests.WithLabelValues("success").Inc()
		report.StatesQueried++

		var relevant []domain.ClassifiedDisaster
		for _, d := range decls {
			if cd, ok := domain.ClassifyDeclaration(d); ok {
				relevant = append(relevant, cd)
			}
		}
		byState[stateCode] = relevant
	}
	return byState
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
