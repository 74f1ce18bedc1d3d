package bulletin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-bulletin/internal/calendar"
	"github.com/i474232898/weather-bulletin/internal/dispatch"
	"github.com/i474232898/weather-bulletin/internal/render"
	"github.com/i474232898/weather-bulletin/internal/store"
	"github.com/i474232898/weather-bulletin/internal/weather"
)

type stubComposer struct {
	bulletin weather.Bulletin
	err      error
}

func (s stubComposer) Compose(context.Context, weather.Region) (weather.Bulletin, error) {
	return s.bulletin, s.err
}

type recordingTransport struct {
	sent   []string
	bodies []string
	fail   string
}

func (r *recordingTransport) SendText(_ context.Context, recipient, body string) error {
	r.sent = append(r.sent, recipient)
	r.bodies = append(r.bodies, body)
	if recipient == r.fail {
		return errors.New("blocked by user")
	}
	return nil
}

func (r *recordingTransport) SendPhoto(ctx context.Context, recipient, _, caption string) error {
	return r.SendText(ctx, recipient, caption)
}

func sampleBulletin() weather.Bulletin {
	return weather.Bulletin{
		Region:      weather.Region{Name: "Tehran"},
		GeneratedAt: time.Date(2024, 10, 18, 4, 30, 0, 0, time.UTC),
		Units:       weather.Metric,
		Current:     weather.CurrentConditions{Temperature: weather.Known(21.3), Humidity: weather.Known(40)},
		Step:        3 * time.Hour,
		AirQuality:  weather.AirQualityReading{Raw: 87, Scale: weather.ScaleUSEPA, Severity: weather.SeverityModerate},
	}
}

func newTestRunner(c Composer, tr dispatch.Transport, rec Recorder) *Runner {
	renderer := render.New(calendar.New(210*time.Minute, calendar.Jalali), render.Options{Locale: render.Persian})
	return NewRunner(c, renderer, dispatch.New(tr, 0), Options{
		Region:     weather.Region{Name: "Tehran"},
		Recipients: []string{"1", "2", "3"},
		Recorder:   rec,
	})
}

func TestRunDeliversAndRecords(t *testing.T) {
	tr := &recordingTransport{fail: "2"}
	history := store.NewMemoryStore(10, 0)

	run, err := newTestRunner(stubComposer{bulletin: sampleBulletin()}, tr, history).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3"}, tr.sent)
	assert.Equal(t, 1, run.Failed)
	assert.Equal(t, "Moderate", run.AirQuality)
	assert.NotEmpty(t, run.ID)

	latest, err := history.Latest()
	require.NoError(t, err)
	assert.Equal(t, run.ID, latest.ID)
	assert.Equal(t, run.Duration, latest.Duration)
}

func TestRunPrimaryFailureSendsNothing(t *testing.T) {
	tr := &recordingTransport{}
	history := store.NewMemoryStore(10, 0)
	cause := fmt.Errorf("%w: forecast timeout", weather.ErrPrimaryData)

	run, err := newTestRunner(stubComposer{err: cause}, tr, history).Run(context.Background())
	require.ErrorIs(t, err, weather.ErrPrimaryData)
	assert.Empty(t, tr.sent)
	assert.NotEmpty(t, run.Error)

	latest, err := history.Latest()
	require.NoError(t, err)
	assert.Equal(t, run.Error, latest.Error)
}

func TestPreviewDoesNotDeliver(t *testing.T) {
	tr := &recordingTransport{}
	report, b, err := newTestRunner(stubComposer{bulletin: sampleBulletin()}, tr, nil).
		Preview(context.Background(), render.ChannelCode)
	require.NoError(t, err)

	assert.Empty(t, tr.sent)
	assert.Equal(t, render.ChannelCode, report.Channel)
	assert.Equal(t, "Tehran", b.Region.Name)
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

// staticProvider serves canned raw payloads for every capability.
type staticProvider struct {
	name     string
	current  weather.CurrentRaw
	forecast weather.ForecastRaw
	air      weather.AirRaw
}

func (p staticProvider) Name() string { return p.name }

func (p staticProvider) FetchCurrent(context.Context, weather.Region) (weather.CurrentRaw, error) {
	return p.current, nil
}

func (p staticProvider) FetchForecast(context.Context, weather.Region) (weather.ForecastRaw, error) {
	return p.forecast, nil
}

func (p staticProvider) FetchAirQuality(context.Context, weather.Region) (weather.AirRaw, error) {
	return p.air, nil
}

func float(v float64) *float64 { return &v }

func TestRunComposesAndRendersEndToEnd(t *testing.T) {
	now := time.Date(2024, 10, 18, 4, 30, 0, 0, time.UTC)
	forecast := weather.ForecastRaw{
		Provider:      weather.ProviderOpenWeather,
		BucketMinutes: 180,
		Unit:          weather.Celsius,
		ChanceScale:   weather.ChanceFraction,
	}
	for i := 0; i < 8; i++ {
		forecast.Points = append(forecast.Points, weather.ForecastRawPoint{
			At:                now.Truncate(3 * time.Hour).Add(time.Duration(i) * 3 * time.Hour),
			Temperature:       float(18 + float64(i)),
			PrecipProbability: float(0.2),
			ConditionCode:     "800",
		})
	}
	owm := staticProvider{
		name: "openweathermap",
		current: weather.CurrentRaw{
			Provider:      weather.ProviderOpenWeather,
			Temperature:   float(21.3),
			Unit:          weather.Celsius,
			Humidity:      float(40),
			ConditionCode: "800",
		},
		forecast: forecast,
	}
	waqi := staticProvider{
		name: "waqi",
		air:  weather.AirRaw{Provider: weather.ProviderWAQI, Value: float(87), Scale: weather.ScaleUSEPA},
	}
	service := weather.NewService(owm, owm, []weather.AirQualityProvider{waqi}, weather.NewNormalizer(weather.Metric),
		fixedClock(now), weather.ServiceConfig{FetchTimeout: time.Second, ForecastCount: 4, ForecastStep: 3 * time.Hour})

	tr := &recordingTransport{}
	renderer := render.New(calendar.New(210*time.Minute, calendar.Jalali), render.Options{Locale: render.Persian})
	runner := NewRunner(service, renderer, dispatch.New(tr, 0), Options{
		Region:     weather.Region{Name: "Tehran", Latitude: 35.69, Longitude: 51.39, UTCOffset: 210 * time.Minute},
		Recipients: []string{"1"},
		Recorder:   store.NewMemoryStore(10, 0),
	})

	run, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Moderate", run.AirQuality)
	require.Len(t, tr.bodies, 1)

	markup := tr.bodies[0]
	plain := render.StripIsolation(markup)
	assert.Contains(t, plain, "🟡 قابل قبول")
	assert.Contains(t, plain, "21.3°C")
	assert.Contains(t, plain, "(87)")
	assert.Equal(t, 4, strings.Count(plain, "🕒"))

	outside := markup
	for {
		open := strings.Index(outside, render.LRI)
		if open < 0 {
			break
		}
		end := strings.Index(outside[open:], render.PDI)
		require.GreaterOrEqual(t, end, 0, "unterminated isolate")
		outside = outside[:open] + outside[open+end+len(render.PDI):]
	}
	for _, r := range outside {
		assert.False(t, unicode.IsDigit(r), "digit %q outside an isolate", r)
	}
}
