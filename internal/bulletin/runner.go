package bulletin

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-bulletin/internal/dispatch"
	"github.com/i474232898/weather-bulletin/internal/logging"
	"github.com/i474232898/weather-bulletin/internal/render"
	"github.com/i474232898/weather-bulletin/internal/store"
	"github.com/i474232898/weather-bulletin/internal/weather"
)

// Composer builds the canonical bulletin for a region.
type Composer interface {
	Compose(ctx context.Context, region weather.Region) (weather.Bulletin, error)
}

// Recorder keeps run summaries.
type Recorder interface {
	SaveRun(run store.Run)
}

// Runner executes one invocation: compose, render, dispatch.
type Runner struct {
	composer   Composer
	renderer   *render.Renderer
	dispatcher *dispatch.Dispatcher
	region     weather.Region
	recipients []string
	imageRef   string
	recorder   Recorder
}

// Options carries the delivery targets.
type Options struct {
	Region     weather.Region
	Recipients []string
	ImageRef   string
	// Recorder is optional; one-shot runs do not keep history.
	Recorder Recorder
}

func NewRunner(composer Composer, renderer *render.Renderer, dispatcher *dispatch.Dispatcher, opts Options) *Runner {
	return &Runner{
		composer:   composer,
		renderer:   renderer,
		dispatcher: dispatcher,
		region:     opts.Region,
		recipients: opts.Recipients,
		imageRef:   opts.ImageRef,
		recorder:   opts.Recorder,
	}
}

// Preview composes and renders a report without delivering it.
func (r *Runner) Preview(ctx context.Context, channel render.Channel) (render.Report, weather.Bulletin, error) {
	b, err := r.composer.Compose(ctx, r.region)
	if err != nil {
		return render.Report{}, weather.Bulletin{}, err
	}
	renderer := r.renderer
	if channel != "" {
		renderer = renderer.WithChannel(channel)
	}
	return renderer.Render(b), b, nil
}

// Run performs one full invocation. It fails only when primary weather data is unavailable;
// delivery failures are reported in the returned summary.
func (r *Runner) Run(ctx context.Context) (run store.Run, err error) {
	run = store.Run{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Region:    r.region.Name,
	}
	log := logging.With("run_id", run.ID, "region", r.region.Name)
	log.Infow("run started", "recipients", len(r.recipients))

	defer func() {
		run.Duration = time.Since(run.StartedAt)
		if r.recorder != nil {
			r.recorder.SaveRun(run)
		}
	}()

	b, err := r.composer.Compose(ctx, r.region)
	if err != nil {
		run.Error = err.Error()
		log.Errorw("run aborted", "error", err)
		return run, err
	}
	run.AirQuality = b.AirQuality.Severity.String()

	report := r.renderer.Render(b)
	run.Deliveries = r.dispatcher.Dispatch(ctx, report.Markup(), r.recipients, r.imageRef)
	run.Failed = dispatch.Failed(run.Deliveries)

	log.Infow("run completed",
		"delivered", len(run.Deliveries)-run.Failed,
		"failed", run.Failed,
		"air_quality", run.AirQuality)
	return run, nil
}
