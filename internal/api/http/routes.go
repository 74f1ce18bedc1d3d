package httpapi

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-bulletin/internal/render"
	"github.com/i474232898/weather-bulletin/internal/store"
	"github.com/i474232898/weather-bulletin/internal/weather"
)

var validate = validator.New()

// Previewer renders a report without delivering it.
type Previewer interface {
	Preview(ctx context.Context, channel render.Channel) (render.Report, weather.Bulletin, error)
}

// RunHistory exposes recorded runs.
type RunHistory interface {
	Latest() (store.Run, error)
	Recent(limit int) []store.Run
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, previewer Previewer, runs RunHistory) {
	v1 := app.Group("/api/v1")

	v1.Get("/report/preview", func(c *fiber.Ctx) error {
		q := previewQuery{Channel: c.Query("channel")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		report, bulletin, err := previewer.Preview(c.UserContext(), render.Channel(q.Channel))
		if err != nil {
			if errors.Is(err, weather.ErrPrimaryData) {
				return fiber.NewError(fiber.StatusBadGateway, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to compose report")
		}

		return c.JSON(fiber.Map{
			"report":   report,
			"markup":   report.Markup(),
			"bulletin": bulletin,
		})
	})

	v1.Get("/runs", func(c *fiber.Ctx) error {
		q := runsQuery{Limit: c.QueryInt("limit", 10)}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(fiber.Map{"runs": runs.Recent(q.Limit)})
	})

	v1.Get("/runs/latest", func(c *fiber.Ctx) error {
		run, err := runs.Latest()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no runs recorded yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read runs")
		}
		return c.JSON(run)
	})
}

type previewQuery struct {
	Channel string `validate:"omitempty,oneof=text code"`
}

type runsQuery struct {
	Limit int `validate:"min=1,max=100"`
}
