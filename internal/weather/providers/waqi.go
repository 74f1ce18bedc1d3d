package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-bulletin/internal/weather"
)

// WAQIProvider reads the nearest station's US EPA AQI from the World Air Quality Index project (aqicn.org).
// It only supplies air quality.
type WAQIProvider struct {
	name    string
	token   string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWAQIProvider(client *http.Client, token string, opts ...Option) *WAQIProvider {
	o := applyOptions("https://api.waqi.info", opts)

	return &WAQIProvider{
		name:    weather.ProviderWAQI,
		token:   token,
		baseURL: o.baseURL,
		httpCfg: HTTPClientConfig{Client: client, Backoff: o.backoff},
		circuit: newBreaker("waqi"),
	}
}

func (p *WAQIProvider) Name() string {
	return p.name
}

func (p *WAQIProvider) FetchAirQuality(ctx context.Context, region weather.Region) (weather.AirRaw, error) {
	if p.token == "" {
		return weather.AirRaw{}, fmt.Errorf("waqi token: %w", weather.ErrUnconfigured)
	}

	var payload struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}

	values := url.Values{}
	values.Set("token", p.token)
	u := fmt.Sprintf("%s/feed/geo:%s;%s/?%s", p.baseURL,
		formatCoord(region.Latitude), formatCoord(region.Longitude), values.Encode())

	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return weather.AirRaw{}, err
	}
	// Errors come back as 200 with status "error" and data holding a message string.
	if payload.Status != "ok" {
		return weather.AirRaw{}, fmt.Errorf("waqi status %q: %w", payload.Status, weather.ErrStatus)
	}

	var data struct {
		AQI  json.RawMessage `json:"aqi"`
		Time struct {
			V int64 `json:"v"`
		} `json:"time"`
	}
	if err := json.Unmarshal(payload.Data, &data); err != nil {
		return weather.AirRaw{}, fmt.Errorf("%w: %v", weather.ErrMalformed, err)
	}

	// Stations without a current reading report "-".
	text := strings.Trim(strings.TrimSpace(string(data.AQI)), `"`)
	if text == "" || text == "-" || text == "null" {
		return weather.AirRaw{}, fmt.Errorf("waqi aqi: %w", weather.ErrEmpty)
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return weather.AirRaw{}, fmt.Errorf("%w: aqi %q", weather.ErrMalformed, text)
	}

	return weather.AirRaw{
		Provider:   p.name,
		ObservedAt: time.Unix(data.Time.V, 0).UTC(),
		Value:      &value,
		Scale:      weather.ScaleUSEPA,
	}, nil
}
