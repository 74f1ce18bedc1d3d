package render

import (
	"golang.org/x/text/language"

	"github.com/i474232898/weather-bulletin/internal/weather"
)

// Locale selects the report language.
type Locale string

const (
	Persian Locale = "fa"
	English Locale = "en"
)

var (
	supported = []language.Tag{language.Persian, language.English}
	matcher   = language.NewMatcher(supported)
)

// ParseLocale matches a BCP-47 tag (e.g. "fa-IR", "en_US") to a supported locale.
// Unparseable or unsupported tags fall back to Persian.
func ParseLocale(tag string) Locale {
	t, err := language.Parse(tag)
	if err != nil {
		return Persian
	}
	_, idx, conf := matcher.Match(t)
	if conf == language.No {
		return Persian
	}
	if supported[idx] == language.English {
		return English
	}
	return Persian
}

type phrases struct {
	title         string
	region        string
	date          string
	time          string
	condition     string
	temperature   string
	humidity      string
	precipitation string
	minTemp       string
	maxTemp       string
	airQuality    string
	forecastTitle string // %s receives the isolated hour count
	precipSuffix  string

	conditions map[weather.Condition]string
	severities map[weather.Severity]string
}

// Placeholder replaces any value that is unknown.
const Placeholder = "—"

var catalog = map[Locale]phrases{
	Persian: {
		title:         "وضعیت آب‌وهوای امروز",
		region:        "📍 منطقه:",
		date:          "📅 تاریخ:",
		time:          "⏰ ساعت:",
		condition:     "وضعیت جوی:",
		temperature:   "دمای فعلی:",
		humidity:      "رطوبت:",
		precipitation: "احتمال بارش:",
		minTemp:       "حداقل دما:",
		maxTemp:       "حداکثر دما:",
		airQuality:    "شاخص کیفیت هوا",
		forecastTitle: "🔮 پیش‌بینی %s ساعت آینده:",
		precipSuffix:  "احتمال بارش",
		conditions: map[weather.Condition]string{
			weather.ConditionUnknown:         "نامشخص ❔",
			weather.ConditionClear:           "آسمان صاف ☀️",
			weather.ConditionFewClouds:       "کمی ابری 🌤️",
			weather.ConditionScatteredClouds: "تکه‌ابرهای پراکنده 🌥️",
			weather.ConditionBrokenClouds:    "ابرهای متراکم ☁️",
			weather.ConditionOvercast:        "آسمان ابری ☁️",
			weather.ConditionDrizzle:         "نم‌نم باران 🌦️",
			weather.ConditionRain:            "باران 🌧️",
			weather.ConditionShowerRain:      "بارندگی رگباری 🌧️",
			weather.ConditionThunderstorm:    "رعد و برق ⛈️",
			weather.ConditionSnow:            "برف ❄️",
			weather.ConditionSleet:           "برف و باران 🌨️",
			weather.ConditionMist:            "مه یا غبار 🌫️",
			weather.ConditionFog:             "مه غلیظ 🌫️",
			weather.ConditionDust:            "گرد و خاک 🌪️",
		},
		severities: map[weather.Severity]string{
			weather.SeverityUnavailable:           "⚪️ نامشخص",
			weather.SeverityGood:                  "🟢 پاک — کیفیت هوا رضایت‌بخش است.",
			weather.SeverityModerate:              "🟡 قابل قبول — احتیاط برای افراد حساس.",
			weather.SeverityUnhealthyForSensitive: "🟠 ناسالم برای گروه‌های حساس — فعالیت‌های طولانی‌مدت را محدود کنید.",
			weather.SeverityUnhealthy:             "🔴 ناسالم — همه ممکن است اثرات بهداشتی را تجربه کنند.",
			weather.SeverityVeryUnhealthy:         "🟣 بسیار ناسالم — هشدار سلامت: خطرناک برای عموم.",
			weather.SeverityHazardous:             "🟤 خطرناک — وضعیت اضطراری سلامت.",
		},
	},
	English: {
		title:         "Today's weather",
		region:        "📍 Region:",
		date:          "📅 Date:",
		time:          "⏰ Time:",
		condition:     "Conditions:",
		temperature:   "Temperature:",
		humidity:      "Humidity:",
		precipitation: "Chance of precipitation:",
		minTemp:       "Low:",
		maxTemp:       "High:",
		airQuality:    "Air quality index",
		forecastTitle: "🔮 Next %s hours:",
		precipSuffix:  "chance of precipitation",
		conditions: map[weather.Condition]string{
			weather.ConditionUnknown:         "Unknown ❔",
			weather.ConditionClear:           "Clear sky ☀️",
			weather.ConditionFewClouds:       "Few clouds 🌤️",
			weather.ConditionScatteredClouds: "Scattered clouds 🌥️",
			weather.ConditionBrokenClouds:    "Broken clouds ☁️",
			weather.ConditionOvercast:        "Overcast ☁️",
			weather.ConditionDrizzle:         "Drizzle 🌦️",
			weather.ConditionRain:            "Rain 🌧️",
			weather.ConditionShowerRain:      "Showers 🌧️",
			weather.ConditionThunderstorm:    "Thunderstorm ⛈️",
			weather.ConditionSnow:            "Snow ❄️",
			weather.ConditionSleet:           "Sleet 🌨️",
			weather.ConditionMist:            "Mist 🌫️",
			weather.ConditionFog:             "Fog 🌫️",
			weather.ConditionDust:            "Dust 🌪️",
		},
		severities: map[weather.Severity]string{
			weather.SeverityUnavailable:           "⚪️ Unknown",
			weather.SeverityGood:                  "🟢 Good: air quality is satisfactory.",
			weather.SeverityModerate:              "🟡 Moderate: sensitive people should take care.",
			weather.SeverityUnhealthyForSensitive: "🟠 Unhealthy for sensitive groups: limit prolonged exertion.",
			weather.SeverityUnhealthy:             "🔴 Unhealthy: everyone may feel health effects.",
			weather.SeverityVeryUnhealthy:         "🟣 Very unhealthy: health alert for everyone.",
			weather.SeverityHazardous:             "🟤 Hazardous: health emergency.",
		},
	},
}

func (p phrases) describe(c weather.Condition) string {
	if s, ok := p.conditions[c]; ok {
		return s
	}
	return p.conditions[weather.ConditionUnknown]
}

func (p phrases) severity(s weather.Severity) string {
	if text, ok := p.severities[s]; ok {
		return text
	}
	return p.severities[weather.SeverityUnavailable]
}
