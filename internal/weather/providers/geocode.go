package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-bulletin/internal/weather"
)

// GoogleGeocoder resolves place names with the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey string
	lookup func(geocoder.Address) (geocoder.Location, error)
}

// NewGoogleGeocoder configures the geocoder library. The library reads its key from a
// package variable, so only one GoogleGeocoder may exist per process; the region is
// resolved once at startup.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{apiKey: apiKey, lookup: geocoder.Geocoding}
}

func (g *GoogleGeocoder) Name() string {
	return "google"
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, place string) (float64, float64, error) {
	if g.apiKey == "" {
		return 0, 0, fmt.Errorf("google geocoder key: %w", weather.ErrUnconfigured)
	}
	// No context support in the library.

	type result struct {
		loc geocoder.Location
		err error
	}
	done := make(chan result, 1)
	go func() {
		loc, err := g.lookup(geocoder.Address{City: place})
		done <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return 0, 0, fmt.Errorf("%w: %v", weather.ErrEmpty, r.err)
		}
		return r.loc.Latitude, r.loc.Longitude, nil
	}
}

// ChainGeocoder tries each geocoder in order and returns the first match.
// Failures are reported as geocoding UpstreamErrors.
type ChainGeocoder []weather.Geocoder

func (c ChainGeocoder) Geocode(ctx context.Context, place string) (float64, float64, error) {
	var errs []error
	for _, g := range c {
		lat, lon, err := g.Geocode(ctx, place)
		if err == nil {
			return lat, lon, nil
		}
		name := "geocoder"
		if p, ok := g.(weather.Provider); ok {
			name = p.Name()
		}
		errs = append(errs, weather.Classify(name, weather.CapabilityGeocoding, err))
	}
	if len(errs) == 0 {
		return 0, 0, fmt.Errorf("no geocoder configured: %w", weather.ErrUnconfigured)
	}
	return 0, 0, errors.Join(errs...)
}
