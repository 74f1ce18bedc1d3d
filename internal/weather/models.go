package weather

import (
	"time"
)

// Condition represents a normalized weather condition, independent of any provider's vocabulary.
type Condition string

const (
	ConditionUnknown         Condition = "unknown"
	ConditionClear           Condition = "clear"
	ConditionFewClouds       Condition = "few-clouds"
	ConditionScatteredClouds Condition = "scattered-clouds"
	ConditionBrokenClouds    Condition = "broken-clouds"
	ConditionOvercast        Condition = "overcast"
	ConditionDrizzle         Condition = "drizzle"
	ConditionRain            Condition = "rain"
	ConditionShowerRain      Condition = "shower-rain"
	ConditionThunderstorm    Condition = "thunderstorm"
	ConditionSnow            Condition = "snow"
	ConditionSleet           Condition = "sleet"
	ConditionMist            Condition = "mist"
	ConditionFog             Condition = "fog"
	ConditionDust            Condition = "dust"
)

// UnitSystem selects the temperature unit used throughout a report.
type UnitSystem string

const (
	Metric   UnitSystem = "metric"
	Imperial UnitSystem = "imperial"
)

// Symbol returns the unit symbol rendered next to temperatures.
func (u UnitSystem) Symbol() string {
	if u == Imperial {
		return "°F"
	}
	return "°C"
}

// Region is the fixed place a report is generated for.
type Region struct {
	Name      string        `json:"name"`
	Latitude  float64       `json:"lat"`
	Longitude float64       `json:"lon"`
	UTCOffset time.Duration `json:"utcOffset"`
}

// Quantity is a measured value that may be unknown.
type Quantity struct {
	Value float64 `json:"value"`
	Known bool    `json:"known"`
}

// Known wraps a measured value.
func Known(v float64) Quantity {
	return Quantity{Value: v, Known: true}
}

// Unknown is the zero Quantity; renderers substitute a placeholder for it.
var Unknown = Quantity{}

// CurrentConditions is the normalized view of the weather right now.
type CurrentConditions struct {
	Provider          string     `json:"provider"`
	ObservedAt        time.Time  `json:"observedAt"`
	Temperature       Quantity   `json:"temperature"`
	Humidity          Quantity   `json:"humidityPercent"`
	PrecipProbability Quantity   `json:"precipProbabilityPercent"`
	ConditionCode     string     `json:"conditionCode"`
	Condition         Condition  `json:"condition"`
	Units             UnitSystem `json:"units"`
}

// ForecastPoint is a single forecast entry at an absolute instant.
type ForecastPoint struct {
	At                time.Time `json:"at"` // always UTC
	Temperature       Quantity  `json:"temperature"`
	PrecipProbability Quantity  `json:"precipProbabilityPercent"`
	ConditionCode     string    `json:"conditionCode"`
	Condition         Condition `json:"condition"`
}

// Forecast is a normalized forecast sequence ordered by At ascending.
// Bucket is the provider's native spacing between points.
type Forecast struct {
	Provider string          `json:"provider"`
	Bucket   time.Duration   `json:"bucket"`
	Points   []ForecastPoint `json:"points"`
	Units    UnitSystem      `json:"units"`
}

// AQIScale identifies the native numeric scale of an air-quality value.
type AQIScale string

const (
	ScaleUSEPA       AQIScale = "AQI_US_EPA_0_500"
	ScaleOpenWeather AQIScale = "OWM_INDEX_1_5"
	ScaleUnknown     AQIScale = "UNKNOWN"
)

// Severity is one of the ordered canonical air-quality buckets.
type Severity int

const (
	SeverityUnavailable Severity = iota
	SeverityGood
	SeverityModerate
	SeverityUnhealthyForSensitive
	SeverityUnhealthy
	SeverityVeryUnhealthy
	SeverityHazardous
)

var severityNames = map[Severity]string{
	SeverityUnavailable:           "Unavailable",
	SeverityGood:                  "Good",
	SeverityModerate:              "Moderate",
	SeverityUnhealthyForSensitive: "UnhealthyForSensitive",
	SeverityUnhealthy:             "Unhealthy",
	SeverityVeryUnhealthy:         "VeryUnhealthy",
	SeverityHazardous:             "Hazardous",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return severityNames[SeverityUnavailable]
}

// MarshalText renders the severity by name in JSON payloads.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AirQualityReading is a normalized air-quality value.
type AirQualityReading struct {
	Provider string   `json:"provider,omitempty"`
	Raw      float64  `json:"raw"`
	Scale    AQIScale `json:"scale"`
	Severity Severity `json:"severity"`
}

// Available reports whether the reading carries a value.
func (r AirQualityReading) Available() bool {
	return r.Severity != SeverityUnavailable
}

// Unavailable is the reading used when no provider supplied a usable value.
var Unavailable = AirQualityReading{Scale: ScaleUnknown, Severity: SeverityUnavailable}

// Bulletin is everything a report is rendered from. It is built once per invocation.
type Bulletin struct {
	Region      Region            `json:"region"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Units       UnitSystem        `json:"units"`
	Current     CurrentConditions `json:"current"`
	Window      []ForecastPoint   `json:"window"`
	Step        time.Duration     `json:"step"`
	Summary     ForecastSummary   `json:"summary"`
	AirQuality  AirQualityReading `json:"airQuality"`
}
