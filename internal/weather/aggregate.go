package weather

import "time"

// SummaryHorizon is how far ahead the min/max temperature summary looks.
const SummaryHorizon = 24 * time.Hour

// ForecastSummary condenses the upcoming forecast into a temperature range.
type ForecastSummary struct {
	MinTemperature Quantity `json:"minTemperature"`
	MaxTemperature Quantity `json:"maxTemperature"`
	Points         int      `json:"points"`
}

// Summarize combines forecast points in (now, now+horizon] into a temperature range.
// Points with unknown temperatures are skipped.
func Summarize(f Forecast, now time.Time, horizon time.Duration) ForecastSummary {
	var (
		summary  ForecastSummary
		min, max float64
	)

	end := now.Add(horizon)
	for _, p := range f.Points {
		if !p.At.After(now) || p.At.After(end) || !p.Temperature.Known {
			continue
		}
		t := p.Temperature.Value
		if summary.Points == 0 || t < min {
			min = t
		}
		if summary.Points == 0 || t > max {
			max = t
		}
		summary.Points++
	}

	if summary.Points > 0 {
		summary.MinTemperature = Known(min)
		summary.MaxTemperature = Known(max)
	}
	return summary
}

// NextPrecipitation returns the precipitation chance of the first point after now.
func NextPrecipitation(f Forecast, now time.Time) Quantity {
	for _, p := range f.Points {
		if p.At.After(now) {
			return p.PrecipProbability
		}
	}
	return Unknown
}
