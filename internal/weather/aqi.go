package weather

import "math"

// epaBreakpoints are the inclusive upper bounds of each US EPA AQI bucket.
var epaBreakpoints = []struct {
	upper    float64
	severity Severity
}{
	{50, SeverityGood},
	{100, SeverityModerate},
	{150, SeverityUnhealthyForSensitive},
	{200, SeverityUnhealthy},
	{300, SeverityVeryUnhealthy},
}

// openWeatherIndex maps the OpenWeatherMap 1-5 index (Good, Fair, Moderate, Poor, Very Poor).
// The two scales are not proportional, so each step is assigned explicitly.
var openWeatherIndex = map[int]Severity{
	1: SeverityGood,
	2: SeverityModerate,
	3: SeverityUnhealthyForSensitive,
	4: SeverityUnhealthy,
	5: SeverityVeryUnhealthy,
}

// SeverityFor maps a raw value on the given scale to a canonical severity.
func SeverityFor(value float64, scale AQIScale) Severity {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return SeverityUnavailable
	}
	switch scale {
	case ScaleUSEPA:
		// EPA AQI is reported as an integer.
		v := math.Round(value)
		for _, bp := range epaBreakpoints {
			if v <= bp.upper {
				return bp.severity
			}
		}
		return SeverityHazardous
	case ScaleOpenWeather:
		if value != math.Trunc(value) {
			return SeverityUnavailable
		}
		if s, ok := openWeatherIndex[int(value)]; ok {
			return s
		}
		return SeverityUnavailable
	default:
		return SeverityUnavailable
	}
}
