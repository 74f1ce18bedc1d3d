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

// WeatherAPIProvider talks to WeatherAPI.com for current conditions and an hourly forecast.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	days    int
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string, opts ...Option) *WeatherAPIProvider {
	o := applyOptions("https://api.weatherapi.com/v1", opts)

	return &WeatherAPIProvider{
		name:    weather.ProviderWeatherAPI,
		apiKey:  apiKey,
		baseURL: o.baseURL,
		days:    2,
		httpCfg: HTTPClientConfig{Client: client, Backoff: o.backoff},
		circuit: newBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

type weatherAPICondition struct {
	Code int `json:"code"`
}

func (c *weatherAPICondition) token() string {
	if c == nil || c.Code == 0 {
		return ""
	}
	return strconv.Itoa(c.Code)
}

func (p *WeatherAPIProvider) endpoint(path string, region weather.Region, extra url.Values) string {
	values := url.Values{}
	values.Set("key", p.apiKey)
	// WeatherAPI accepts "lat,lon" in q.
	values.Set("q", formatCoord(region.Latitude)+","+formatCoord(region.Longitude))
	for k, v := range extra {
		values[k] = v
	}
	return fmt.Sprintf("%s%s?%s", p.baseURL, path, values.Encode())
}

func (p *WeatherAPIProvider) FetchCurrent(ctx context.Context, region weather.Region) (weather.CurrentRaw, error) {
	if p.apiKey == "" {
		return weather.CurrentRaw{}, fmt.Errorf("weatherapi api key: %w", weather.ErrUnconfigured)
	}

	var payload struct {
		Current *struct {
			LastUpdatedEpoch int64                `json:"last_updated_epoch"`
			TempC            *float64             `json:"temp_c"`
			Humidity         *float64             `json:"humidity"`
			Condition        *weatherAPICondition `json:"condition"`
		} `json:"current"`
	}

	if err := getJSON(ctx, p.httpCfg, p.circuit, p.endpoint("/current.json", region, nil), &payload); err != nil {
		return weather.CurrentRaw{}, err
	}
	if payload.Current == nil {
		return weather.CurrentRaw{}, fmt.Errorf("weatherapi current: %w", weather.ErrEmpty)
	}

	return weather.CurrentRaw{
		Provider:      p.name,
		ObservedAt:    time.Unix(payload.Current.LastUpdatedEpoch, 0).UTC(),
		Temperature:   payload.Current.TempC,
		Unit:          weather.Celsius,
		Humidity:      payload.Current.Humidity,
		ConditionCode: payload.Current.Condition.token(),
	}, nil
}

func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, region weather.Region) (weather.ForecastRaw, error) {
	if p.apiKey == "" {
		return weather.ForecastRaw{}, fmt.Errorf("weatherapi api key: %w", weather.ErrUnconfigured)
	}

	var payload struct {
		Forecast struct {
			Forecastday []struct {
				Hour []struct {
					TimeEpoch    int64                `json:"time_epoch"`
					TempC        *float64             `json:"temp_c"`
					ChanceOfRain *float64             `json:"chance_of_rain"`
					Condition    *weatherAPICondition `json:"condition"`
				} `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	u := p.endpoint("/forecast.json", region, url.Values{
		"days":   {strconv.Itoa(p.days)},
		"aqi":    {"no"},
		"alerts": {"no"},
	})
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return weather.ForecastRaw{}, err
	}

	raw := weather.ForecastRaw{
		Provider:      p.name,
		BucketMinutes: 60,
		Unit:          weather.Celsius,
		ChanceScale:   weather.ChancePercent,
	}
	// Hours span every returned day so windows near midnight continue into tomorrow.
	for _, day := range payload.Forecast.Forecastday {
		for _, h := range day.Hour {
			raw.Points = append(raw.Points, weather.ForecastRawPoint{
				At:                time.Unix(h.TimeEpoch, 0).UTC(),
				Temperature:       h.TempC,
				PrecipProbability: h.ChanceOfRain,
				ConditionCode:     h.Condition.token(),
			})
		}
	}
	return raw, nil
}
