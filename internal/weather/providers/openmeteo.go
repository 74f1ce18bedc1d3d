package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-bulletin/internal/weather"
)

// OpenMeteoProvider talks to Open-Meteo. No API key is needed. It supplies current
// conditions, an hourly forecast and the US EPA AQI from the air-quality API.
type OpenMeteoProvider struct {
	name          string
	baseURL       string
	airQualityURL string
	httpCfg       HTTPClientConfig
	circuit       *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider creates the adapter. WithBaseURL replaces both the forecast and the
// air-quality hosts.
func NewOpenMeteoProvider(client *http.Client, opts ...Option) *OpenMeteoProvider {
	o := applyOptions("", opts)

	p := &OpenMeteoProvider{
		name:          weather.ProviderOpenMeteo,
		baseURL:       "https://api.open-meteo.com",
		airQualityURL: "https://air-quality-api.open-meteo.com",
		httpCfg:       HTTPClientConfig{Client: client, Backoff: o.backoff},
		circuit:       newBreaker("openmeteo"),
	}
	if o.baseURL != "" {
		p.baseURL = o.baseURL
		p.airQualityURL = o.baseURL
	}
	return p
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func wmoCode(code *int) string {
	if code == nil {
		return ""
	}
	return strconv.Itoa(*code)
}

func (p *OpenMeteoProvider) query(region weather.Region) url.Values {
	values := url.Values{}
	values.Set("latitude", formatCoord(region.Latitude))
	values.Set("longitude", formatCoord(region.Longitude))
	// Unix seconds keep timestamps absolute; no timezone parameter is sent.
	values.Set("timeformat", "unixtime")
	return values
}

func (p *OpenMeteoProvider) FetchCurrent(ctx context.Context, region weather.Region) (weather.CurrentRaw, error) {
	values := p.query(region)
	values.Set("current", "temperature_2m,relative_humidity_2m,precipitation_probability,weather_code")

	var payload struct {
		Current *struct {
			Time                     int64    `json:"time"`
			Temperature2m            *float64 `json:"temperature_2m"`
			RelativeHumidity2m       *float64 `json:"relative_humidity_2m"`
			PrecipitationProbability *float64 `json:"precipitation_probability"`
			WeatherCode              *int     `json:"weather_code"`
		} `json:"current"`
	}

	u := fmt.Sprintf("%s/v1/forecast?%s", p.baseURL, values.Encode())
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return weather.CurrentRaw{}, err
	}
	if payload.Current == nil {
		return weather.CurrentRaw{}, fmt.Errorf("openmeteo current: %w", weather.ErrEmpty)
	}

	c := payload.Current
	return weather.CurrentRaw{
		Provider:          p.name,
		ObservedAt:        time.Unix(c.Time, 0).UTC(),
		Temperature:       c.Temperature2m,
		Unit:              weather.Celsius,
		Humidity:          c.RelativeHumidity2m,
		PrecipProbability: c.PrecipitationProbability,
		ChanceScale:       weather.ChancePercent,
		ConditionCode:     wmoCode(c.WeatherCode),
	}, nil
}

func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, region weather.Region) (weather.ForecastRaw, error) {
	values := p.query(region)
	values.Set("hourly", "temperature_2m,precipitation_probability,weather_code")
	values.Set("forecast_days", "2")

	var payload struct {
		Hourly struct {
			Time                     []int64    `json:"time"`
			Temperature2m            []*float64 `json:"temperature_2m"`
			PrecipitationProbability []*float64 `json:"precipitation_probability"`
			WeatherCode              []*int     `json:"weather_code"`
		} `json:"hourly"`
	}

	u := fmt.Sprintf("%s/v1/forecast?%s", p.baseURL, values.Encode())
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return weather.ForecastRaw{}, err
	}

	h := payload.Hourly
	raw := weather.ForecastRaw{
		Provider:      p.name,
		BucketMinutes: 60,
		Unit:          weather.Celsius,
		ChanceScale:   weather.ChancePercent,
		Points:        make([]weather.ForecastRawPoint, 0, len(h.Time)),
	}
	// The hourly arrays are parallel; a short array leaves the field absent.
	for i, ts := range h.Time {
		pt := weather.ForecastRawPoint{At: time.Unix(ts, 0).UTC()}
		if i < len(h.Temperature2m) {
			pt.Temperature = h.Temperature2m[i]
		}
		if i < len(h.PrecipitationProbability) {
			pt.PrecipProbability = h.PrecipitationProbability[i]
		}
		if i < len(h.WeatherCode) {
			pt.ConditionCode = wmoCode(h.WeatherCode[i])
		}
		raw.Points = append(raw.Points, pt)
	}
	return raw, nil
}

func (p *OpenMeteoProvider) FetchAirQuality(ctx context.Context, region weather.Region) (weather.AirRaw, error) {
	values := p.query(region)
	values.Set("current", "us_aqi")

	var payload struct {
		Current *struct {
			Time  int64    `json:"time"`
			USAQI *float64 `json:"us_aqi"`
		} `json:"current"`
	}

	u := fmt.Sprintf("%s/v1/air-quality?%s", p.airQualityURL, values.Encode())
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return weather.AirRaw{}, err
	}
	if payload.Current == nil || payload.Current.USAQI == nil {
		return weather.AirRaw{}, fmt.Errorf("openmeteo air quality: %w", weather.ErrEmpty)
	}

	return weather.AirRaw{
		Provider:   p.name,
		ObservedAt: time.Unix(payload.Current.Time, 0).UTC(),
		Value:      payload.Current.USAQI,
		Scale:      weather.ScaleUSEPA,
	}, nil
}
