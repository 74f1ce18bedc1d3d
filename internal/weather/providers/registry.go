package providers

import (
	"fmt"
	"net/http"

	"github.com/i474232898/weather-bulletin/internal/weather"
)

// Configuration names of the adapters.
const (
	OpenWeather = "openweather"
	WeatherAPI  = "weatherapi"
	OpenMeteo   = "openmeteo"
	WAQI        = "waqi"
)

// Keys holds provider secrets.
type Keys struct {
	OpenWeather string
	WeatherAPI  string
	WAQI        string
}

// Set builds every adapter once so capabilities served by the same provider share its circuit breaker.
type Set struct {
	byName map[string]weather.Provider
}

// NewSet creates all adapters sharing one HTTP client.
func NewSet(client *http.Client, keys Keys, forecastPoints int) *Set {
	return &Set{byName: map[string]weather.Provider{
		OpenWeather: NewOpenWeatherProvider(client, keys.OpenWeather, forecastPoints),
		WeatherAPI:  NewWeatherAPIProvider(client, keys.WeatherAPI),
		OpenMeteo:   NewOpenMeteoProvider(client),
		WAQI:        NewWAQIProvider(client, keys.WAQI),
	}}
}

func (s *Set) lookup(name string) (weather.Provider, error) {
	p, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", name)
	}
	return p, nil
}

// Current returns the named provider's current-conditions capability.
func (s *Set) Current(name string) (weather.CurrentProvider, error) {
	p, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	cp, ok := p.(weather.CurrentProvider)
	if !ok {
		return nil, fmt.Errorf("provider %q does not supply current conditions", name)
	}
	return cp, nil
}

// Forecast returns the named provider's forecast capability.
func (s *Set) Forecast(name string) (weather.ForecastProvider, error) {
	p, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	fp, ok := p.(weather.ForecastProvider)
	if !ok {
		return nil, fmt.Errorf("provider %q does not supply forecasts", name)
	}
	return fp, nil
}

// AirQuality returns the air-quality capabilities in fallback order.
func (s *Set) AirQuality(names []string) ([]weather.AirQualityProvider, error) {
	out := make([]weather.AirQualityProvider, 0, len(names))
	for _, name := range names {
		p, err := s.lookup(name)
		if err != nil {
			return nil, err
		}
		ap, ok := p.(weather.AirQualityProvider)
		if !ok {
			return nil, fmt.Errorf("provider %q does not supply air quality", name)
		}
		out = append(out, ap)
	}
	return out, nil
}

// Geocoder returns the OpenWeatherMap geocoder followed by Google when a key is given.
func (s *Set) Geocoder(googleKey string) weather.Geocoder {
	var chain ChainGeocoder
	if g, ok := s.byName[OpenWeather].(weather.Geocoder); ok {
		chain = append(chain, g)
	}
	if googleKey != "" {
		chain = append(chain, NewGoogleGeocoder(googleKey))
	}
	return chain
}
