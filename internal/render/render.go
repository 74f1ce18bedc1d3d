package render

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/i474232898/weather-bulletin/internal/calendar"
	"github.com/i474232898/weather-bulletin/internal/weather"
)

// Channel selects how the forecast block is laid out.
type Channel string

const (
	// ChannelText renders the forecast as free-flowing lines.
	ChannelText Channel = "text"
	// ChannelCode renders the forecast as a fixed-width table inside a code block.
	ChannelCode Channel = "code"
)

// Options configures a Renderer.
type Options struct {
	Locale        Locale
	Channel       Channel
	PersianDigits bool
}

// Report is a rendered bulletin. Every line is already escaped for inline HTML markup;
// Markup adds the bold spans and the code block.
type Report struct {
	Title         string   `json:"title"`
	Header        []string `json:"header"`
	Body          []string `json:"body"`
	ForecastTitle string   `json:"forecastTitle"`
	Forecast      []string `json:"forecast"`
	Channel       Channel  `json:"channel"`
}

// Markup joins the report into the message handed to the transport.
func (r Report) Markup() string {
	var b strings.Builder

	b.WriteString("🌦 <b>" + r.Title + "</b>\n")
	for _, line := range r.Header {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	for _, line := range r.Body {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n<b>" + r.ForecastTitle + "</b>\n")

	if r.Channel == ChannelCode {
		b.WriteString("<pre>" + strings.Join(r.Forecast, "\n") + "</pre>")
	} else {
		b.WriteString(strings.Join(r.Forecast, "\n"))
	}
	return b.String()
}

// Renderer turns a Bulletin into a Report.
type Renderer struct {
	conv    *calendar.Converter
	opts    Options
	phrases phrases
}

// New creates a Renderer. Unknown locales render in Persian and unknown channels as text.
func New(conv *calendar.Converter, opts Options) *Renderer {
	p, ok := catalog[opts.Locale]
	if !ok {
		opts.Locale = Persian
		p = catalog[Persian]
	}
	if opts.Channel != ChannelCode {
		opts.Channel = ChannelText
	}
	return &Renderer{conv: conv, opts: opts, phrases: p}
}

// WithChannel returns a copy of the renderer using another channel.
func (r *Renderer) WithChannel(ch Channel) *Renderer {
	opts := r.opts
	opts.Channel = ch
	return New(r.conv, opts)
}

// Render builds the report. Every numeric token goes through num, which isolates it.
func (r *Renderer) Render(b weather.Bulletin) Report {
	p := r.phrases
	now := r.conv.Display(b.GeneratedAt)
	symbol := b.Units.Symbol()

	report := Report{
		Title: p.title,
		Header: []string{
			p.region + " " + html.EscapeString(b.Region.Name),
			p.date + " " + r.num(now.DateString()),
			p.time + " " + r.num(now.TimeString()),
		},
		Body: []string{
			p.condition + " " + p.describe(b.Current.Condition),
			p.temperature + " " + r.temperature(b.Current.Temperature, symbol),
			p.humidity + " " + r.percent(b.Current.Humidity),
			p.precipitation + " " + r.percent(b.Current.PrecipProbability),
			p.minTemp + " " + r.temperature(b.Summary.MinTemperature, symbol),
			p.maxTemp + " " + r.temperature(b.Summary.MaxTemperature, symbol),
			fmt.Sprintf("%s (%s): %s", p.airQuality, r.aqi(b.AirQuality), p.severity(b.AirQuality.Severity)),
		},
		ForecastTitle: fmt.Sprintf(p.forecastTitle, r.num(hours(b.Step*time.Duration(len(b.Window))))),
		Channel:       r.opts.Channel,
	}

	if r.opts.Channel == ChannelCode {
		report.Forecast = r.table(b.Window, symbol)
	} else {
		report.Forecast = r.lines(b.Window, symbol)
	}
	return report
}

func (r *Renderer) lines(points []weather.ForecastPoint, symbol string) []string {
	out := make([]string, 0, len(points))
	for _, pt := range points {
		at := r.conv.Display(pt.At)
		out = append(out, fmt.Sprintf("🕒 %s | %s | 🌡️ %s | ☔ %s %s",
			r.num(at.TimeString()),
			r.phrases.describe(pt.Condition),
			r.temperature(pt.Temperature, symbol),
			r.percent(pt.PrecipProbability),
			r.phrases.precipSuffix,
		))
	}
	return out
}

// table lays the forecast out in fixed-width columns. Widths are measured on the bare
// tokens and padding is placed outside the isolates.
func (r *Renderer) table(points []weather.ForecastPoint, symbol string) []string {
	rows := make([][3]string, 0, len(points))
	var widths [3]int
	for _, pt := range points {
		row := [3]string{
			r.shape(r.conv.Display(pt.At).TimeString()),
			r.shape(formatTemperature(pt.Temperature, symbol)),
			r.shape(formatPercent(pt.PrecipProbability)),
		}
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
		rows = append(rows, row)
	}

	out := make([]string, 0, len(rows))
	for i, row := range rows {
		var b strings.Builder
		for col, cell := range row {
			b.WriteString(Isolate(cell))
			b.WriteString(strings.Repeat(" ", widths[col]-runewidth.StringWidth(cell)+2))
		}
		b.WriteString(r.phrases.describe(points[i].Condition))
		out = append(out, b.String())
	}
	return out
}

func (r *Renderer) shape(token string) string {
	return shapeDigits(token, r.opts.PersianDigits)
}

func (r *Renderer) num(token string) string {
	return Isolate(r.shape(token))
}

func (r *Renderer) temperature(q weather.Quantity, symbol string) string {
	return r.num(formatTemperature(q, symbol))
}

func (r *Renderer) percent(q weather.Quantity) string {
	return r.num(formatPercent(q))
}

func (r *Renderer) aqi(reading weather.AirQualityReading) string {
	if !reading.Available() {
		return r.num(Placeholder)
	}
	return r.num(strconv.FormatFloat(math.Round(reading.Raw), 'f', -1, 64))
}

func formatTemperature(q weather.Quantity, symbol string) string {
	if !q.Known {
		return Placeholder
	}
	v := math.Round(q.Value*10) / 10
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', 1, 64) + symbol
}

func formatPercent(q weather.Quantity) string {
	if !q.Known {
		return Placeholder
	}
	return strconv.FormatFloat(math.Round(q.Value), 'f', 0, 64) + "%"
}

func hours(d time.Duration) string {
	return strconv.FormatFloat(d.Hours(), 'f', -1, 64)
}
