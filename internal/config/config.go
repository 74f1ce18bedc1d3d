package config

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/i474232898/weather-bulletin/internal/common"
	"github.com/i474232898/weather-bulletin/internal/logging"
	"github.com/i474232898/weather-bulletin/internal/weather"
)

// ConfigurationError is fatal: the run aborts before any fetch.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s %s", e.Field, e.Reason)
}

type AppConfig struct {
	TelegramToken     string `env:"TELEGRAM_TOKEN" validate:"required"`
	OpenWeatherAPIKey string `env:"OPENWEATHER_KEY"`
	WeatherAPIKey     string `env:"WEATHERAPI_KEY"`
	AQICNToken        string `env:"AQICN_TOKEN"`
	GoogleGeocoderKey string `env:"GOOGLE_GEOCODER_KEY"`

	Recipients []string `env:"CHAT_IDS" validate:"min=1,dive,required"`
	ImageURL   string   `env:"IMAGE_URL" validate:"omitempty,url"`

	RegionName string   `env:"REGION_NAME" validate:"required"`
	Latitude   *float64 `env:"LAT" validate:"omitempty,latitude"`
	Longitude  *float64 `env:"LON" validate:"omitempty,longitude"`
	UTCOffset  time.Duration
	// Timezone names the IANA zone the daemon's cron expression is evaluated in.
	Timezone string `env:"TIMEZONE"`

	Units    string `env:"UNITS" validate:"oneof=metric imperial"`
	Calendar string `env:"CALENDAR" validate:"oneof=jalali gregorian"`
	Locale   string `env:"LOCALE" validate:"required"`
	Digits   string `env:"DIGITS" validate:"oneof=latin persian"`
	Channel  string `env:"OUTPUT_CHANNEL" validate:"oneof=text code"`

	CurrentProvider     string   `env:"CURRENT_PROVIDER" validate:"oneof=openweather weatherapi openmeteo"`
	ForecastProvider    string   `env:"FORECAST_PROVIDER" validate:"oneof=openweather weatherapi openmeteo"`
	AirQualityProviders []string `env:"AIR_QUALITY_PROVIDERS" validate:"dive,oneof=waqi openweather openmeteo"`

	ForecastCount  int `env:"FORECAST_COUNT" validate:"min=1,max=24"`
	ForecastPoints int `env:"FORECAST_POINTS" validate:"min=1,max=40"`
	ForecastStep   time.Duration

	// HTTPTimeout bounds each upstream fetch.
	HTTPTimeout   time.Duration
	DispatchPause time.Duration

	// Daemon mode.
	ScheduleCron string `env:"SCHEDULE_CRON" validate:"required"`
	Port         string `env:"PORT" validate:"required,numeric"`

	LogLevel string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report environment keys rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("REGION_NAME", "پانزده خرداد")
	v.SetDefault("UTC_OFFSET", "3h30m")
	v.SetDefault("TIMEZONE", "Asia/Tehran")
	v.SetDefault("UNITS", "metric")
	v.SetDefault("CALENDAR", "jalali")
	v.SetDefault("LOCALE", "fa")
	v.SetDefault("DIGITS", "latin")
	v.SetDefault("OUTPUT_CHANNEL", "text")
	v.SetDefault("CURRENT_PROVIDER", "openweather")
	v.SetDefault("FORECAST_PROVIDER", "openweather")
	v.SetDefault("AIR_QUALITY_PROVIDERS", "waqi,openweather")
	v.SetDefault("FORECAST_COUNT", 4)
	v.SetDefault("FORECAST_POINTS", 16)
	v.SetDefault("FORECAST_STEP", "3h")
	v.SetDefault("HTTP_TIMEOUT", "15s")
	v.SetDefault("DISPATCH_PAUSE", "1s")
	v.SetDefault("SCHEDULE_CRON", "0 7 * * *")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads configuration from an optional .env file and the process environment.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logging.Debugf("no .env file loaded: %v", err)
	}
	v := viper.New()
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds and validates the configuration from a viper instance.
func FromViper(v *viper.Viper) (*AppConfig, error) {
	setDefaults(v)

	cfg := &AppConfig{
		TelegramToken:       v.GetString("TELEGRAM_TOKEN"),
		OpenWeatherAPIKey:   v.GetString("OPENWEATHER_KEY"),
		WeatherAPIKey:       v.GetString("WEATHERAPI_KEY"),
		AQICNToken:          v.GetString("AQICN_TOKEN"),
		GoogleGeocoderKey:   v.GetString("GOOGLE_GEOCODER_KEY"),
		Recipients:          common.SplitList(v.GetString("CHAT_IDS")),
		ImageURL:            strings.TrimSpace(v.GetString("IMAGE_URL")),
		RegionName:          strings.TrimSpace(v.GetString("REGION_NAME")),
		Timezone:            strings.TrimSpace(v.GetString("TIMEZONE")),
		Units:               strings.ToLower(v.GetString("UNITS")),
		Calendar:            strings.ToLower(v.GetString("CALENDAR")),
		Locale:              v.GetString("LOCALE"),
		Digits:              strings.ToLower(v.GetString("DIGITS")),
		Channel:             strings.ToLower(v.GetString("OUTPUT_CHANNEL")),
		CurrentProvider:     strings.ToLower(v.GetString("CURRENT_PROVIDER")),
		ForecastProvider:    strings.ToLower(v.GetString("FORECAST_PROVIDER")),
		AirQualityProviders: common.SplitList(strings.ToLower(v.GetString("AIR_QUALITY_PROVIDERS"))),
		ScheduleCron:        v.GetString("SCHEDULE_CRON"),
		Port:                v.GetString("PORT"),
		LogLevel:            strings.ToLower(v.GetString("LOG_LEVEL")),
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error
	cfg.ForecastCount, err = intValue(v, "FORECAST_COUNT")
	collect(err)
	cfg.ForecastPoints, err = intValue(v, "FORECAST_POINTS")
	collect(err)
	cfg.Latitude, err = optionalFloat(v, "LAT")
	collect(err)
	cfg.Longitude, err = optionalFloat(v, "LON")
	collect(err)
	cfg.UTCOffset, err = offsetValue(v, "UTC_OFFSET")
	collect(err)
	cfg.ForecastStep, err = positiveDuration(v, "FORECAST_STEP")
	collect(err)
	cfg.HTTPTimeout, err = positiveDuration(v, "HTTP_TIMEOUT")
	collect(err)
	cfg.DispatchPause, err = durationValue(v, "DISPATCH_PAUSE")
	collect(err)

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		for _, fe := range verrs {
			errs = append(errs, &ConfigurationError{Field: fe.Field(), Reason: describe(fe)})
		}
	}

	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			errs = append(errs, &ConfigurationError{Field: "TIMEZONE", Reason: fmt.Sprintf("is not an IANA zone: %q", cfg.Timezone)})
		}
	}

	if (cfg.Latitude == nil) != (cfg.Longitude == nil) {
		errs = append(errs, &ConfigurationError{Field: "LAT/LON", Reason: "must be set together"})
	}

	errs = append(errs, cfg.checkSecrets()...)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// checkSecrets requires a key for every provider that is actually selected.
func (c *AppConfig) checkSecrets() []error {
	selected := append([]string{c.CurrentProvider, c.ForecastProvider}, c.AirQualityProviders...)

	var errs []error
	if slices.Contains(selected, "openweather") && c.OpenWeatherAPIKey == "" {
		errs = append(errs, &ConfigurationError{Field: "OPENWEATHER_KEY", Reason: "is required by the selected providers"})
	}
	if slices.Contains(selected, "weatherapi") && c.WeatherAPIKey == "" {
		errs = append(errs, &ConfigurationError{Field: "WEATHERAPI_KEY", Reason: "is required by the selected providers"})
	}
	if slices.Contains(selected, "waqi") && c.AQICNToken == "" {
		errs = append(errs, &ConfigurationError{Field: "AQICN_TOKEN", Reason: "is required by the selected providers"})
	}
	return errs
}

// HasCoordinates reports whether LAT/LON were supplied.
func (c *AppConfig) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// Region resolves the configured region, geocoding its name when coordinates are missing.
func (c *AppConfig) Region(ctx context.Context, geocoder weather.Geocoder) (weather.Region, error) {
	region := weather.Region{Name: c.RegionName, UTCOffset: c.UTCOffset}
	if c.HasCoordinates() {
		region.Latitude, region.Longitude = *c.Latitude, *c.Longitude
		return region, nil
	}
	if geocoder == nil {
		return weather.Region{}, &ConfigurationError{Field: "LAT/LON", Reason: "are missing and no geocoder is available"}
	}
	lat, lon, err := geocoder.Geocode(ctx, c.RegionName)
	if err != nil {
		return weather.Region{}, errors.Join(
			&ConfigurationError{Field: "REGION_NAME", Reason: "could not be geocoded"}, err)
	}
	region.Latitude, region.Longitude = lat, lon
	return region, nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "needs at least " + fe.Param()
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

func intValue(v *viper.Viper, key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ConfigurationError{Field: key, Reason: fmt.Sprintf("is not an integer: %q", raw)}
	}
	return n, nil
}

func optionalFloat(v *viper.Viper, key string) (*float64, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &ConfigurationError{Field: key, Reason: fmt.Sprintf("is not a number: %q", raw)}
	}
	return &f, nil
}

func durationValue(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, &ConfigurationError{Field: key, Reason: fmt.Sprintf("is not a valid duration: %q", raw)}
	}
	return d, nil
}

func positiveDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := durationValue(v, key)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, &ConfigurationError{Field: key, Reason: "must be positive"}
	}
	return d, nil
}

// offsetValue accepts Go durations ("3h30m", "-5h") and clock offsets ("+03:30", "-05:00").
func offsetValue(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}

	sign := time.Duration(1)
	s := raw
	switch {
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	case strings.HasPrefix(s, "-"):
		sign, s = -1, s[1:]
	}
	hh, mm, ok := strings.Cut(s, ":")
	h, herr := strconv.Atoi(hh)
	m, merr := strconv.Atoi(mm)
	if !ok || herr != nil || merr != nil || h < 0 || h > 14 || m < 0 || m >= 60 {
		return 0, &ConfigurationError{Field: key, Reason: fmt.Sprintf("is not a valid UTC offset: %q", raw)}
	}
	return sign * (time.Duration(h)*time.Hour + time.Duration(m)*time.Minute), nil
}
