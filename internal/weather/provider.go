package weather

import (
	"context"
	"time"
)

// TemperatureUnit is the unit an adapter received temperatures in.
type TemperatureUnit string

const (
	Celsius    TemperatureUnit = "C"
	Fahrenheit TemperatureUnit = "F"
	Kelvin     TemperatureUnit = "K"
)

// ChanceScale tells the normalizer how a provider expresses precipitation probability.
type ChanceScale int

const (
	ChancePercent  ChanceScale = iota // 0-100
	ChanceFraction                    // 0-1
)

// CurrentRaw is a provider's current-conditions payload, parsed but not interpreted.
// Nil pointers mark fields absent from the payload.
type CurrentRaw struct {
	Provider          string
	ObservedAt        time.Time
	Temperature       *float64
	Unit              TemperatureUnit
	Humidity          *float64
	PrecipProbability *float64
	ChanceScale       ChanceScale
	ConditionCode     string
}

// ForecastRawPoint is one provider forecast entry.
type ForecastRawPoint struct {
	At                time.Time
	Temperature       *float64
	PrecipProbability *float64
	ConditionCode     string
}

// ForecastRaw is a provider's forecast payload. BucketMinutes is the provider's native
// spacing; zero means the normalizer infers it from the points.
type ForecastRaw struct {
	Provider      string
	BucketMinutes int
	Unit          TemperatureUnit
	ChanceScale   ChanceScale
	Points        []ForecastRawPoint
}

// AirRaw is a provider's air-quality payload.
type AirRaw struct {
	Provider   string
	ObservedAt time.Time
	Value      *float64
	Scale      AQIScale
}

// Provider abstracts a data source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo, WAQI).
// A concrete provider implements any subset of the capability interfaces below.
type Provider interface {
	Name() string
}

// CurrentProvider supplies current conditions.
type CurrentProvider interface {
	Provider
	FetchCurrent(ctx context.Context, region Region) (CurrentRaw, error)
}

// ForecastProvider supplies a multi-point forecast.
type ForecastProvider interface {
	Provider
	FetchForecast(ctx context.Context, region Region) (ForecastRaw, error)
}

// AirQualityProvider supplies an air-quality index.
type AirQualityProvider interface {
	Provider
	FetchAirQuality(ctx context.Context, region Region) (AirRaw, error)
}

// Geocoder resolves a place name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (lat, lon float64, err error)
}

// Clock abstracts time for testing.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
