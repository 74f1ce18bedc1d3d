package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-bulletin/internal/api/http"
	"github.com/i474232898/weather-bulletin/internal/bulletin"
	"github.com/i474232898/weather-bulletin/internal/calendar"
	"github.com/i474232898/weather-bulletin/internal/config"
	"github.com/i474232898/weather-bulletin/internal/dispatch"
	"github.com/i474232898/weather-bulletin/internal/logging"
	"github.com/i474232898/weather-bulletin/internal/render"
	"github.com/i474232898/weather-bulletin/internal/scheduler"
	"github.com/i474232898/weather-bulletin/internal/store"
	"github.com/i474232898/weather-bulletin/internal/transport/telegram"
	"github.com/i474232898/weather-bulletin/internal/weather"
	"github.com/i474232898/weather-bulletin/internal/weather/providers"
)

const (
	appName = "weather-bulletin"

	historySize = 100
	historyAge  = 7 * 24 * time.Hour
	runTimeout  = 2 * time.Minute
)

func main() {
	daemon := flag.Bool("daemon", false, "run on a schedule and serve the HTTP API")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("failed to load config: %v", err)
	}
	if err := logging.Configure(cfg.LogLevel, appName); err != nil {
		logging.Fatalf("invalid log level: %v", err)
	}
	defer logging.Sync()

	var recorder *store.MemoryStore
	if *daemon {
		recorder = store.NewMemoryStore(historySize, historyAge)
	}

	runner, err := build(cfg, recorder)
	if err != nil {
		logging.Fatalf("failed to start: %v", err)
	}

	if !*daemon {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		run, err := runner.Run(ctx)
		cancel()
		if err != nil {
			logging.Errorf("run failed: %v", err)
			logging.Sync()
			os.Exit(1)
		}
		if run.Failed > 0 {
			logging.Warnf("%d of %d deliveries failed", run.Failed, len(run.Deliveries))
		}
		return
	}

	serve(cfg, runner, recorder)
}

// build wires providers, the calendar, the renderer and the dispatcher into a runner.
func build(cfg *config.AppConfig, recorder *store.MemoryStore) (*bulletin.Runner, error) {
	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	set := providers.NewSet(httpClient, providers.Keys{
		OpenWeather: cfg.OpenWeatherAPIKey,
		WeatherAPI:  cfg.WeatherAPIKey,
		WAQI:        cfg.AQICNToken,
	}, cfg.ForecastPoints)

	current, err := set.Current(cfg.CurrentProvider)
	if err != nil {
		return nil, err
	}
	forecast, err := set.Forecast(cfg.ForecastProvider)
	if err != nil {
		return nil, err
	}
	airQuality, err := set.AirQuality(cfg.AirQualityProviders)
	if err != nil {
		return nil, err
	}

	geoCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
	region, err := cfg.Region(geoCtx, set.Geocoder(cfg.GoogleGeocoderKey))
	cancel()
	if err != nil {
		return nil, err
	}
	logging.Infow("region resolved", "region", region.Name, "lat", region.Latitude, "lon", region.Longitude)

	units := weather.Metric
	if cfg.Units == "imperial" {
		units = weather.Imperial
	}

	service := weather.NewService(current, forecast, airQuality,
		weather.NewNormalizer(units), weather.SystemClock{},
		weather.ServiceConfig{
			FetchTimeout:  cfg.HTTPTimeout,
			ForecastCount: cfg.ForecastCount,
			ForecastStep:  cfg.ForecastStep,
		})

	conv := calendar.New(cfg.UTCOffset, calendar.System(cfg.Calendar))
	renderer := render.New(conv, render.Options{
		Locale:        render.ParseLocale(cfg.Locale),
		Channel:       render.Channel(cfg.Channel),
		PersianDigits: cfg.Digits == "persian",
	})

	dispatcher := dispatch.New(telegram.New(cfg.TelegramToken, telegram.WithTimeout(cfg.HTTPTimeout)), cfg.DispatchPause)

	opts := bulletin.Options{
		Region:     region,
		Recipients: cfg.Recipients,
		ImageRef:   cfg.ImageURL,
	}
	if recorder != nil {
		opts.Recorder = recorder
	}
	return bulletin.NewRunner(service, renderer, dispatcher, opts), nil
}

func serve(cfg *config.AppConfig, runner *bulletin.Runner, history *store.MemoryStore) {
	loc, err := scheduler.Location(cfg.Timezone, cfg.UTCOffset)
	if err != nil {
		logging.Fatalf("failed to resolve schedule timezone: %v", err)
	}
	if _, off := time.Now().In(loc).Zone(); time.Duration(off)*time.Second != cfg.UTCOffset {
		logging.Warnw("schedule timezone differs from region offset",
			"timezone", loc.String(), "zone_offset", time.Duration(off)*time.Second, "utc_offset", cfg.UTCOffset)
	}

	sched := scheduler.New(cfg.ScheduleCron, loc, runTimeout, func(ctx context.Context) error {
		_, err := runner.Run(ctx)
		return err
	})
	if err := sched.Start(); err != nil {
		logging.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()
	logging.Infow("next run scheduled", "at", sched.NextRun())

	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          runTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": appName,
			"nextRun": sched.NextRun(),
		})
	})

	httpapi.RegisterRoutes(app, runner, history)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logging.Errorf("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logging.Errorf("error during shutdown: %v", err)
	}
}
