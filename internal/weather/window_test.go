package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeHourly(start time.Time, n int) Forecast {
	f := Forecast{Bucket: 3 * time.Hour}
	for i := 0; i < n; i++ {
		f.Points = append(f.Points, ForecastPoint{
			At:          start.Add(time.Duration(i) * 3 * time.Hour),
			Temperature: Known(float64(i)),
		})
	}
	return f
}

func TestStride(t *testing.T) {
	assert.Equal(t, 1, Stride(3*time.Hour, 3*time.Hour))
	assert.Equal(t, 3, Stride(3*time.Hour, time.Hour))
	assert.Equal(t, 2, Stride(2*time.Hour+30*time.Minute, time.Hour))
	assert.Equal(t, 1, Stride(3*time.Hour, 24*time.Hour))
	assert.Equal(t, 1, Stride(3*time.Hour, 0))
}

func TestWindowSkipsPastPoints(t *testing.T) {
	start := time.Date(2024, 10, 18, 0, 0, 0, 0, time.UTC)
	f := threeHourly(start, 48)
	now := start.Add(90 * time.Minute)

	w := Window(f, now, 4, 3*time.Hour)
	require.Len(t, w, 4)
	for i, p := range w {
		assert.Equal(t, f.Points[i+1].At, p.At)
		assert.True(t, p.At.After(now))
	}
}

func TestWindowStridesHourlyBuckets(t *testing.T) {
	start := time.Date(2024, 10, 18, 0, 0, 0, 0, time.UTC)
	f := Forecast{Bucket: time.Hour}
	for i := 0; i < 48; i++ {
		f.Points = append(f.Points, ForecastPoint{At: start.Add(time.Duration(i) * time.Hour)})
	}

	w := Window(f, start.Add(30*time.Minute), 4, 3*time.Hour)
	require.Len(t, w, 4)
	for i, p := range w {
		assert.Equal(t, start.Add(time.Duration(1+3*i)*time.Hour), p.At)
	}
}

func TestWindowCrossesMidnight(t *testing.T) {
	start := time.Date(2024, 10, 18, 0, 0, 0, 0, time.UTC)
	f := threeHourly(start, 16)
	now := time.Date(2024, 10, 18, 23, 30, 0, 0, time.UTC)

	w := Window(f, now, 4, 3*time.Hour)
	require.Len(t, w, 4)
	assert.Equal(t, time.Date(2024, 10, 19, 0, 0, 0, 0, time.UTC), w[0].At)
}

func TestWindowShortForecast(t *testing.T) {
	start := time.Date(2024, 10, 18, 0, 0, 0, 0, time.UTC)
	f := threeHourly(start, 3)

	assert.Len(t, Window(f, start, 4, 3*time.Hour), 2)
	assert.Empty(t, Window(f, start.Add(24*time.Hour), 4, 3*time.Hour))
	assert.Empty(t, Window(Forecast{}, start, 4, 3*time.Hour))
}

func TestSummarizeAndNextPrecipitation(t *testing.T) {
	start := time.Date(2024, 10, 18, 0, 0, 0, 0, time.UTC)
	f := threeHourly(start, 16)
	f.Points[1].PrecipProbability = Known(30)
	f.Points[2].Temperature = Unknown

	s := Summarize(f, start, SummaryHorizon)
	assert.Equal(t, 7, s.Points)
	assert.Equal(t, Known(1), s.MinTemperature)
	assert.Equal(t, Known(8), s.MaxTemperature)

	assert.Equal(t, Known(30), NextPrecipitation(f, start))
	assert.Equal(t, Unknown, NextPrecipitation(f, start.Add(72*time.Hour)))

	empty := Summarize(Forecast{}, start, SummaryHorizon)
	assert.False(t, empty.MinTemperature.Known)
}
