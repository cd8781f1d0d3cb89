package domain

import (
	"context"
	"errors"
	"log/slog"
)

// Geocoder converts a free-text address to coordinates. The boolean is false
// when the service answered but had no match; err is reserved for transport
// and service failures.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Point, bool, error)
}

// Resolver tries an ordered list of backend/address-variant strategies until
// one yields coordinates. The paid backend is optional; a nil Paid disables
// the last two tiers.
type Resolver struct {
	Free   Geocoder
	Paid   Geocoder
	Logger *slog.Logger
}

// strategy pairs a backend with the address variant it should receive.
type strategy struct {
	geocoder Geocoder
	address  string
	method   Method
}

// Resolve attempts each strategy in strict order, stopping at the first
// success: free+full, free+simplified, paid+full, paid+simplified. The
// simplified tiers are skipped when the simplified address is empty or
// identical to the full one. Transport errors and empty results are logged
// and treated as "no match", never propagated. On exhaustion the result is
// StatusFailed with MethodFailed and no coordinates.
func (r *Resolver) Resolve(ctx context.Context, address, simplified string) GeocodeResult {
	useSimplified := simplified != "" && simplified != address

	strategies := make([]strategy, 0, 4)
	strategies = append(strategies, strategy{r.Free, address, MethodFreeFull})
	if useSimplified {
		strategies = append(strategies, strategy{r.Free, simplified, MethodFreeSimplified})
	}
	if r.Paid != nil {
		strategies = append(strategies, strategy{r.Paid, address, MethodPaidFull})
		if useSimplified {
			strategies = append(strategies, strategy{r.Paid, simplified, MethodPaidSimplified})
		}
	}

	for _, s := range strategies {
		point, found, err := s.geocoder.Geocode(ctx, s.address)
		if err != nil {
			r.Logger.Warn("geocode strategy failed",
				"method", string(s.method),
				"address", s.address,
				"error", err,
			)
			continue
		}
		if !found {
			r.Logger.Debug("geocode strategy returned no match",
				"method", string(s.method),
				"address", s.address,
			)
			continue
		}
		return GeocodeResult{Point: point, Method: s.method, Status: StatusSuccess}
	}

	return GeocodeResult{Method: MethodFailed, Status: StatusFailed}
}

// canaryAddress is a query every working geocoder resolves; used to probe
// candidate backends at startup.
const canaryAddress = "New York, NY"

// ProviderCandidate is one entry in the startup backend-selection chain.
type ProviderCandidate struct {
	Name string
	Init func(ctx context.Context) (Geocoder, error)
}

// ErrNoGeocoder is returned when every candidate backend fails its probe.
// Without a primary backend no geocoding is possible, so callers treat this
// as fatal for the run.
var ErrNoGeocoder = errors.New("no geocoding backend could be initialized")

// SelectGeocoder probes candidates in order with the canary query and
// returns the first one that answers with coordinates, along with its name.
// Candidates that fail to initialize or fail the probe are logged and
// skipped.
func SelectGeocoder(ctx context.Context, candidates []ProviderCandidate, logger *slog.Logger) (Geocoder, string, error) {
	for _, c := range candidates {
		logger.Info("trying geocoding backend", "backend", c.Name)

		g, err := c.Init(ctx)
		if err != nil {
			logger.Warn("backend initialization failed", "backend", c.Name, "error", err)
			continue
		}

		_, found, err := g.Geocode(ctx, canaryAddress)
		if err != nil {
			logger.Warn("backend probe failed", "backend", c.Name, "error", err)
			continue
		}
		if !found {
			logger.Warn("backend initialized but probe returned no match", "backend", c.Name)
			continue
		}

		logger.Info("geocoding backend selected", "backend", c.Name)
		return g, c.Name, nil
	}
	return nil, "", ErrNoGeocoder
}

// ProbePaidGeocoder verifies an optional paid backend with the canary query.
// Returns nil when the backend is nil or the probe fails: the paid tier is
// disabled rather than failing the run.
func ProbePaidGeocoder(ctx context.Context, g Geocoder, logger *slog.Logger) Geocoder {
	if g == nil {
		return nil
	}
	_, found, err := g.Geocode(ctx, canaryAddress)
	if err != nil || !found {
		logger.Warn("paid geocoding backend probe failed, disabling fallback tier", "error", err)
		return nil
	}
	logger.Info("paid geocoding backend available as fallback")
	return g
}
