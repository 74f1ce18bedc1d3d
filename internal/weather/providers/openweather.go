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

// OpenWeatherProvider talks to OpenWeatherMap. It supplies current conditions, a 3-hour
// forecast, the 1-5 air pollution index and place geocoding.
type OpenWeatherProvider struct {
	name           string
	apiKey         string
	baseURL        string
	forecastPoints int
	httpCfg        HTTPClientConfig
	circuit        *gobreaker.CircuitBreaker
}

// NewOpenWeatherProvider creates an adapter requesting forecastPoints 3-hour buckets per forecast.
func NewOpenWeatherProvider(client *http.Client, apiKey string, forecastPoints int, opts ...Option) *OpenWeatherProvider {
	o := applyOptions("https://api.openweathermap.org", opts)
	if forecastPoints <= 0 || forecastPoints > 40 {
		forecastPoints = 40
	}

	return &OpenWeatherProvider{
		name:           weather.ProviderOpenWeather,
		apiKey:         apiKey,
		baseURL:        o.baseURL,
		forecastPoints: forecastPoints,
		httpCfg:        HTTPClientConfig{Client: client, Backoff: o.backoff},
		circuit:        newBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owmCondition struct {
	ID int `json:"id"`
}

func owmCode(items []owmCondition) string {
	if len(items) == 0 {
		return ""
	}
	return strconv.Itoa(items[0].ID)
}

func (p *OpenWeatherProvider) endpoint(path string, region weather.Region, extra url.Values) string {
	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("lat", formatCoord(region.Latitude))
	values.Set("lon", formatCoord(region.Longitude))
	for k, v := range extra {
		values[k] = v
	}
	return fmt.Sprintf("%s%s?%s", p.baseURL, path, values.Encode())
}

func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, region weather.Region) (weather.CurrentRaw, error) {
	if p.apiKey == "" {
		return weather.CurrentRaw{}, fmt.Errorf("openweather api key: %w", weather.ErrUnconfigured)
	}

	var payload struct {
		Dt   int64 `json:"dt"`
		Main *struct {
			Temp     *float64 `json:"temp"`
			Humidity *float64 `json:"humidity"`
		} `json:"main"`
		Weather []owmCondition `json:"weather"`
	}

	u := p.endpoint("/data/2.5/weather", region, url.Values{"units": {"metric"}})
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return weather.CurrentRaw{}, err
	}
	if payload.Main == nil && len(payload.Weather) == 0 {
		return weather.CurrentRaw{}, fmt.Errorf("openweather current: %w", weather.ErrEmpty)
	}

	raw := weather.CurrentRaw{
		Provider:      p.name,
		ObservedAt:    time.Unix(payload.Dt, 0).UTC(),
		Unit:          weather.Celsius,
		ConditionCode: owmCode(payload.Weather),
	}
	if payload.Main != nil {
		raw.Temperature = payload.Main.Temp
		raw.Humidity = payload.Main.Humidity
	}
	return raw, nil
}

func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, region weather.Region) (weather.ForecastRaw, error) {
	if p.apiKey == "" {
		return weather.ForecastRaw{}, fmt.Errorf("openweather api key: %w", weather.ErrUnconfigured)
	}

	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main *struct {
				Temp *float64 `json:"temp"`
			} `json:"main"`
			Pop     *float64       `json:"pop"`
			Weather []owmCondition `json:"weather"`
		} `json:"list"`
	}

	u := p.endpoint("/data/2.5/forecast", region, url.Values{
		"units": {"metric"},
		"cnt":   {strconv.Itoa(p.forecastPoints)},
	})
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return weather.ForecastRaw{}, err
	}

	raw := weather.ForecastRaw{
		Provider:      p.name,
		BucketMinutes: 180,
		Unit:          weather.Celsius,
		ChanceScale:   weather.ChanceFraction,
		Points:        make([]weather.ForecastRawPoint, 0, len(payload.List)),
	}
	for _, item := range payload.List {
		pt := weather.ForecastRawPoint{
			At:                time.Unix(item.Dt, 0).UTC(),
			PrecipProbability: item.Pop,
			ConditionCode:     owmCode(item.Weather),
		}
		if item.Main != nil {
			pt.Temperature = item.Main.Temp
		}
		raw.Points = append(raw.Points, pt)
	}
	return raw, nil
}

func (p *OpenWeatherProvider) FetchAirQuality(ctx context.Context, region weather.Region) (weather.AirRaw, error) {
	if p.apiKey == "" {
		return weather.AirRaw{}, fmt.Errorf("openweather api key: %w", weather.ErrUnconfigured)
	}

	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				AQI *float64 `json:"aqi"`
			} `json:"main"`
		} `json:"list"`
	}

	u := p.endpoint("/data/2.5/air_pollution", region, nil)
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return weather.AirRaw{}, err
	}
	if len(payload.List) == 0 || payload.List[0].Main.AQI == nil {
		return weather.AirRaw{}, fmt.Errorf("openweather air pollution: %w", weather.ErrEmpty)
	}

	return weather.AirRaw{
		Provider:   p.name,
		ObservedAt: time.Unix(payload.List[0].Dt, 0).UTC(),
		Value:      payload.List[0].Main.AQI,
		Scale:      weather.ScaleOpenWeather,
	}, nil
}

// Geocode resolves a place name through the OpenWeatherMap direct geocoding API.
func (p *OpenWeatherProvider) Geocode(ctx context.Context, place string) (float64, float64, error) {
	if p.apiKey == "" {
		return 0, 0, fmt.Errorf("openweather api key: %w", weather.ErrUnconfigured)
	}

	var payload []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}

	values := url.Values{}
	values.Set("q", place)
	values.Set("limit", "1")
	values.Set("appid", p.apiKey)
	u := fmt.Sprintf("%s/geo/1.0/direct?%s", p.baseURL, values.Encode())

	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return 0, 0, err
	}
	if len(payload) == 0 {
		return 0, 0, fmt.Errorf("no match for %q: %w", place, weather.ErrEmpty)
	}
	return payload[0].Lat, payload[0].Lon, nil
}
