package weather

import (
	"math"
	"sort"
	"time"
)

// Normalizer maps adapter payloads into the canonical model. It is pure: the same
// payload always yields the same values.
type Normalizer struct {
	units UnitSystem
}

// NewNormalizer creates a Normalizer converting temperatures to the given unit system.
func NewNormalizer(units UnitSystem) *Normalizer {
	if units != Imperial {
		units = Metric
	}
	return &Normalizer{units: units}
}

// Units returns the unit system values are normalized to.
func (n *Normalizer) Units() UnitSystem {
	return n.units
}

// Current normalizes a current-conditions payload. Missing fields become Unknown and are
// reported as NormalizationErrors.
func (n *Normalizer) Current(raw CurrentRaw) (CurrentConditions, []error) {
	var notes []error

	cur := CurrentConditions{
		Provider:      raw.Provider,
		ObservedAt:    raw.ObservedAt.UTC(),
		ConditionCode: raw.ConditionCode,
		Condition:     ConditionFor(raw.Provider, raw.ConditionCode),
		Units:         n.units,
	}

	if raw.Temperature != nil {
		cur.Temperature = Known(n.temperature(*raw.Temperature, raw.Unit))
	} else {
		notes = append(notes, &NormalizationError{Provider: raw.Provider, Field: "temperature"})
	}

	if raw.Humidity != nil && *raw.Humidity >= 0 && *raw.Humidity <= 100 {
		cur.Humidity = Known(*raw.Humidity)
	} else {
		notes = append(notes, &NormalizationError{Provider: raw.Provider, Field: "humidity"})
	}

	// Many providers omit precipitation chance from current conditions; not worth a note.
	if raw.PrecipProbability != nil {
		cur.PrecipProbability = percent(*raw.PrecipProbability, raw.ChanceScale)
	}

	if raw.ConditionCode == "" {
		notes = append(notes, &NormalizationError{Provider: raw.Provider, Field: "condition"})
	}

	return cur, notes
}

// Forecast normalizes a forecast payload into a time-ordered sequence.
func (n *Normalizer) Forecast(raw ForecastRaw) (Forecast, []error) {
	var notes []error

	points := make([]ForecastPoint, 0, len(raw.Points))
	for _, p := range raw.Points {
		if p.At.IsZero() {
			notes = append(notes, &NormalizationError{Provider: raw.Provider, Field: "forecast timestamp"})
			continue
		}

		fp := ForecastPoint{
			At:            p.At.UTC(),
			ConditionCode: p.ConditionCode,
			Condition:     ConditionFor(raw.Provider, p.ConditionCode),
		}
		if p.Temperature != nil {
			fp.Temperature = Known(n.temperature(*p.Temperature, raw.Unit))
		} else {
			notes = append(notes, &NormalizationError{Provider: raw.Provider, Field: "forecast temperature"})
		}
		if p.PrecipProbability != nil {
			fp.PrecipProbability = percent(*p.PrecipProbability, raw.ChanceScale)
		}
		points = append(points, fp)
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].At.Before(points[j].At)
	})

	bucket := time.Duration(raw.BucketMinutes) * time.Minute
	if bucket <= 0 {
		bucket = inferBucket(points)
	}

	return Forecast{
		Provider: raw.Provider,
		Bucket:   bucket,
		Points:   points,
		Units:    n.units,
	}, notes
}

// AirQuality normalizes the first successful air-quality payload. A nil payload yields Unavailable.
func (n *Normalizer) AirQuality(raw *AirRaw) AirQualityReading {
	if raw == nil || raw.Value == nil {
		return Unavailable
	}
	severity := SeverityFor(*raw.Value, raw.Scale)
	if severity == SeverityUnavailable {
		return Unavailable
	}
	return AirQualityReading{
		Provider: raw.Provider,
		Raw:      *raw.Value,
		Scale:    raw.Scale,
		Severity: severity,
	}
}

func (n *Normalizer) temperature(v float64, from TemperatureUnit) float64 {
	celsius := v
	switch from {
	case Fahrenheit:
		celsius = (v - 32) * 5 / 9
	case Kelvin:
		celsius = v - 273.15
	}
	if n.units == Imperial {
		if from == Fahrenheit {
			return v
		}
		return celsius*9/5 + 32
	}
	return celsius
}

func percent(v float64, scale ChanceScale) Quantity {
	if scale == ChanceFraction {
		v *= 100
	}
	if math.IsNaN(v) {
		return Unknown
	}
	return Known(math.Max(0, math.Min(100, v)))
}

// inferBucket returns the smallest positive gap between consecutive points.
func inferBucket(points []ForecastPoint) time.Duration {
	var bucket time.Duration
	for i := 1; i < len(points); i++ {
		gap := points[i].At.Sub(points[i-1].At)
		if gap > 0 && (bucket == 0 || gap < bucket) {
			bucket = gap
		}
	}
	return bucket
}
