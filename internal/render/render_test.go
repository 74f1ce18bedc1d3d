package render

import (
	"strings"
	"testing"
	"time"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-bulletin/internal/calendar"
	"github.com/i474232898/weather-bulletin/internal/weather"
)

var generatedAt = time.Date(2024, 10, 18, 4, 30, 0, 0, time.UTC)

func tehranBulletin() weather.Bulletin {
	var window []weather.ForecastPoint
	for i := 0; i < 4; i++ {
		window = append(window, weather.ForecastPoint{
			At:                generatedAt.Add(time.Duration(90+180*i) * time.Minute),
			Temperature:       weather.Known(20 + float64(i)),
			PrecipProbability: weather.Known(10),
			Condition:         weather.ConditionClear,
		})
	}
	return weather.Bulletin{
		Region:      weather.Region{Name: "Tehran", UTCOffset: 210 * time.Minute},
		GeneratedAt: generatedAt,
		Units:       weather.Metric,
		Current: weather.CurrentConditions{
			Temperature:       weather.Known(21.3),
			Humidity:          weather.Known(40),
			PrecipProbability: weather.Known(10),
			Condition:         weather.ConditionClear,
		},
		Window: window,
		Step:   3 * time.Hour,
		Summary: weather.ForecastSummary{
			MinTemperature: weather.Known(18),
			MaxTemperature: weather.Known(27),
			Points:         8,
		},
		AirQuality: weather.AirQualityReading{Raw: 87, Scale: weather.ScaleUSEPA, Severity: weather.SeverityModerate},
	}
}

func newRenderer(opts Options) *Renderer {
	return New(calendar.New(210*time.Minute, calendar.Jalali), opts)
}

// outsideIsolates returns s with every isolated segment removed.
func outsideIsolates(t *testing.T, s string) string {
	t.Helper()
	var b strings.Builder
	for {
		open := strings.Index(s, LRI)
		if open < 0 {
			require.NotContains(t, s, PDI, "unbalanced isolate")
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:open])
		rest := s[open+len(LRI):]
		end := strings.Index(rest, PDI)
		require.GreaterOrEqual(t, end, 0, "unterminated isolate")
		require.NotContains(t, rest[:end], LRI, "nested isolate")
		s = rest[end+len(PDI):]
	}
}

func assertDigitsIsolated(t *testing.T, markup string) {
	t.Helper()
	for _, r := range outsideIsolates(t, markup) {
		assert.False(t, unicode.IsDigit(r), "digit %q outside an isolate", r)
	}
}

func TestIsolationRoundTrip(t *testing.T) {
	for _, token := range []string{"21.3°C", "40%", "1403/07/27", "", Placeholder} {
		assert.Equal(t, token, StripIsolation(Isolate(token)))
	}
}

func TestRenderTehranPersian(t *testing.T) {
	report := newRenderer(Options{Locale: Persian, Channel: ChannelText}).Render(tehranBulletin())
	markup := report.Markup()

	assertDigitsIsolated(t, markup)

	plain := StripIsolation(markup)
	assert.Contains(t, plain, "1403/07/27")
	assert.Contains(t, plain, "08:00")
	assert.Contains(t, plain, "21.3°C")
	assert.Contains(t, plain, "40%")
	assert.Contains(t, plain, "(87)")
	assert.Contains(t, plain, "🟡 قابل قبول")
	assert.Contains(t, plain, "پیش‌بینی 12 ساعت آینده")
	assert.Contains(t, markup, "<b>وضعیت آب‌وهوای امروز</b>")

	require.Len(t, report.Forecast, 4)
	assert.Contains(t, StripIsolation(report.Forecast[0]), "🕒 09:30")
	assert.Contains(t, report.Forecast[0], Isolate("20.0°C"))
}

func TestRenderPersianDigits(t *testing.T) {
	report := newRenderer(Options{Locale: Persian, PersianDigits: true}).Render(tehranBulletin())
	markup := report.Markup()

	assertDigitsIsolated(t, markup)
	plain := StripIsolation(markup)
	assert.Contains(t, plain, "۱۴۰۳/۰۷/۲۷")
	assert.Contains(t, plain, "۲۱٫۳°C")
	assert.NotContains(t, plain, "1403")
}

func TestRenderPlaceholders(t *testing.T) {
	b := tehranBulletin()
	b.Current.Humidity = weather.Unknown
	b.Current.Condition = weather.ConditionUnknown
	b.AirQuality = weather.Unavailable
	b.Region.Name = "<Tehran & co>"

	report := newRenderer(Options{Locale: English}).Render(b)
	plain := StripIsolation(report.Markup())

	assert.Contains(t, plain, "Humidity: "+Placeholder)
	assert.Contains(t, plain, "Conditions: Unknown")
	assert.Contains(t, plain, "Air quality index ("+Placeholder+"): ⚪️ Unknown")
	assert.Contains(t, plain, "&lt;Tehran &amp; co&gt;")
}

func TestRenderCodeChannelAlignsColumns(t *testing.T) {
	b := tehranBulletin()
	b.Window[1].Temperature = weather.Known(-4)
	b.Window[2].PrecipProbability = weather.Known(100)

	report := newRenderer(Options{Locale: English, Channel: ChannelCode}).Render(b)
	require.Len(t, report.Forecast, 4)
	assert.Contains(t, report.Markup(), "<pre>")

	// Condition text starts in the same column on every row.
	var column int
	for i, line := range report.Forecast {
		idx := strings.Index(StripIsolation(line), "Clear sky")
		require.GreaterOrEqual(t, idx, 0)
		if i == 0 {
			column = idx
		}
		assert.Equal(t, column, idx, "row %d", i)
	}
	assertDigitsIsolated(t, strings.Join(report.Forecast, "\n"))
}

func TestWithChannel(t *testing.T) {
	r := newRenderer(Options{Locale: English})
	assert.Equal(t, ChannelText, r.Render(tehranBulletin()).Channel)
	assert.Equal(t, ChannelCode, r.WithChannel(ChannelCode).Render(tehranBulletin()).Channel)
}

func TestParseLocale(t *testing.T) {
	assert.Equal(t, Persian, ParseLocale("fa-IR"))
	assert.Equal(t, English, ParseLocale("en_US"))
	assert.Equal(t, English, ParseLocale("en"))
	assert.Equal(t, Persian, ParseLocale("not a tag"))
	assert.Equal(t, Persian, ParseLocale("ja"))
}
