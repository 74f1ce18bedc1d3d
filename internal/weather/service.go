package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-bulletin/internal/logging"
)

// DefaultFetchTimeout bounds each upstream call.
const DefaultFetchTimeout = 15 * time.Second

// ServiceConfig controls fetch timeouts and the forecast window.
type ServiceConfig struct {
	FetchTimeout  time.Duration
	ForecastCount int
	ForecastStep  time.Duration
}

// Service orchestrates the three independent fetches, joins them and builds a Bulletin.
type Service struct {
	current    CurrentProvider
	forecast   ForecastProvider
	airQuality []AirQualityProvider
	normalizer *Normalizer
	clock      Clock
	cfg        ServiceConfig
}

// NewService creates a new Service. airQuality is tried in order until one succeeds.
func NewService(
	current CurrentProvider,
	forecast ForecastProvider,
	airQuality []AirQualityProvider,
	normalizer *Normalizer,
	clock Clock,
	cfg ServiceConfig,
) *Service {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.ForecastCount <= 0 {
		cfg.ForecastCount = 4
	}
	if cfg.ForecastStep <= 0 {
		cfg.ForecastStep = 3 * time.Hour
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Service{
		current:    current,
		forecast:   forecast,
		airQuality: airQuality,
		normalizer: normalizer,
		clock:      clock,
		cfg:        cfg,
	}
}

// Fetched holds the joined outcome of one round of upstream calls.
type Fetched struct {
	Current    Result[CurrentRaw]
	Forecast   Result[ForecastRaw]
	AirQuality Result[AirRaw]

	// AirFailures lists every air-quality provider that failed before one succeeded.
	AirFailures []*UpstreamError
}

// Fetch issues the current, forecast and air-quality calls concurrently and waits for all of them.
// A failed current or forecast call cancels the calls still in flight.
func (s *Service) Fetch(ctx context.Context, region Region) Fetched {
	var out Fetched

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if s.current == nil {
			out.Current = Fail[CurrentRaw](&UpstreamError{Capability: CapabilityCurrent, Reason: ReasonUnconfigured, Err: ErrUnconfigured})
			return out.Current.Err
		}
		callCtx, cancel := context.WithTimeout(gctx, s.cfg.FetchTimeout)
		defer cancel()

		raw, err := s.current.FetchCurrent(callCtx, region)
		if err != nil {
			out.Current = Fail[CurrentRaw](Classify(s.current.Name(), CapabilityCurrent, err))
			return out.Current.Err
		}
		out.Current = Ok(raw)
		return nil
	})

	g.Go(func() error {
		if s.forecast == nil {
			out.Forecast = Fail[ForecastRaw](&UpstreamError{Capability: CapabilityForecast, Reason: ReasonUnconfigured, Err: ErrUnconfigured})
			return out.Forecast.Err
		}
		callCtx, cancel := context.WithTimeout(gctx, s.cfg.FetchTimeout)
		defer cancel()

		raw, err := s.forecast.FetchForecast(callCtx, region)
		if err != nil {
			out.Forecast = Fail[ForecastRaw](Classify(s.forecast.Name(), CapabilityForecast, err))
			return out.Forecast.Err
		}
		if len(raw.Points) == 0 {
			out.Forecast = Fail[ForecastRaw](Classify(s.forecast.Name(), CapabilityForecast, ErrEmpty))
			return out.Forecast.Err
		}
		out.Forecast = Ok(raw)
		return nil
	})

	// Air quality is recoverable and never fails the group.
	g.Go(func() error {
		out.AirQuality, out.AirFailures = s.fetchAirQuality(gctx, region)
		return nil
	})

	_ = g.Wait()
	return out
}

func (s *Service) fetchAirQuality(ctx context.Context, region Region) (Result[AirRaw], []*UpstreamError) {
	var failures []*UpstreamError
	for _, p := range s.airQuality {
		if ctx.Err() != nil {
			break
		}
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
		raw, err := p.FetchAirQuality(callCtx, region)
		cancel()
		if err == nil {
			err = interpretable(raw)
		}
		if err == nil {
			return Ok(raw), failures
		}
		failures = append(failures, Classify(p.Name(), CapabilityAirQuality, err))
	}

	last := &UpstreamError{Capability: CapabilityAirQuality, Reason: ReasonUnconfigured, Err: ErrUnconfigured}
	if len(failures) > 0 {
		last = failures[len(failures)-1]
	}
	return Fail[AirRaw](last), failures
}

// interpretable rejects payloads whose value has no severity on its scale, so the next
// provider gets a chance.
func interpretable(raw AirRaw) error {
	if raw.Value == nil {
		return fmt.Errorf("%s: %w", raw.Provider, ErrEmpty)
	}
	if SeverityFor(*raw.Value, raw.Scale) == SeverityUnavailable {
		return fmt.Errorf("%w: %v outside scale %s", ErrMalformed, *raw.Value, raw.Scale)
	}
	return nil
}

// Compose fetches, normalizes and windows everything needed for one report.
// It fails only when current conditions or the forecast are unavailable.
func (s *Service) Compose(ctx context.Context, region Region) (Bulletin, error) {
	fetched := s.Fetch(ctx, region)
	return s.Build(region, fetched)
}

// Build turns a joined fetch into a Bulletin.
func (s *Service) Build(region Region, fetched Fetched) (Bulletin, error) {
	if !fetched.Current.OK() {
		return Bulletin{}, fmt.Errorf("%w: %w", ErrPrimaryData, fetched.Current.Err)
	}
	if !fetched.Forecast.OK() {
		return Bulletin{}, fmt.Errorf("%w: %w", ErrPrimaryData, fetched.Forecast.Err)
	}

	now := s.clock.Now().UTC()

	current, notes := s.normalizer.Current(fetched.Current.Value)
	forecast, forecastNotes := s.normalizer.Forecast(fetched.Forecast.Value)
	notes = append(notes, forecastNotes...)
	for _, n := range notes {
		var ne *NormalizationError
		if errors.As(n, &ne) {
			logging.Warnw("substituting placeholder", "provider", ne.Provider, "field", ne.Field, "region", region.Name)
		}
	}

	if !current.PrecipProbability.Known {
		current.PrecipProbability = NextPrecipitation(forecast, now)
	}

	for _, f := range fetched.AirFailures {
		logging.Warnw("air quality provider failed", "provider", f.Provider, "reason", string(f.Reason), "region", region.Name)
	}

	air := Unavailable
	if fetched.AirQuality.OK() {
		raw := fetched.AirQuality.Value
		air = s.normalizer.AirQuality(&raw)
	}

	return Bulletin{
		Region:      region,
		GeneratedAt: now,
		Units:       s.normalizer.Units(),
		Current:     current,
		Window:      Window(forecast, now, s.cfg.ForecastCount, s.cfg.ForecastStep),
		Step:        s.cfg.ForecastStep,
		Summary:     Summarize(forecast, now, SummaryHorizon),
		AirQuality:  air,
	}, nil
}
