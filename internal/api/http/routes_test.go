package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-bulletin/internal/render"
	"github.com/i474232898/weather-bulletin/internal/store"
	"github.com/i474232898/weather-bulletin/internal/weather"
)

type stubPreviewer struct {
	err     error
	channel render.Channel
}

func (s *stubPreviewer) Preview(_ context.Context, channel render.Channel) (render.Report, weather.Bulletin, error) {
	s.channel = channel
	if s.err != nil {
		return render.Report{}, weather.Bulletin{}, s.err
	}
	return render.Report{Title: "Tehran", Channel: channel}, weather.Bulletin{Region: weather.Region{Name: "Tehran"}}, nil
}

func newApp(p Previewer, runs RunHistory) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app, p, runs)
	return app
}

func TestPreviewChannelValidation(t *testing.T) {
	app := newApp(&stubPreviewer{}, store.NewMemoryStore(10, time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/report/preview?channel=fax", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPreviewReturnsReport(t *testing.T) {
	p := &stubPreviewer{}
	app := newApp(p, store.NewMemoryStore(10, time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/report/preview?channel=code", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, render.ChannelCode, p.channel)

	var body struct {
		Report render.Report `json:"report"`
		Markup string        `json:"markup"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Tehran", body.Report.Title)
	assert.Contains(t, body.Markup, "<pre>")
}

func TestPreviewPrimaryFailureIsBadGateway(t *testing.T) {
	p := &stubPreviewer{err: fmt.Errorf("%w: forecast unavailable", weather.ErrPrimaryData)}
	app := newApp(p, store.NewMemoryStore(10, time.Hour))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/report/preview", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestRunsEndpoints(t *testing.T) {
	runs := store.NewMemoryStore(10, time.Hour)
	app := newApp(&stubPreviewer{}, runs)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/runs/latest", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	now := time.Now().UTC()
	runs.SaveRun(store.Run{ID: "a", StartedAt: now.Add(-time.Minute)})
	runs.SaveRun(store.Run{ID: "b", StartedAt: now})

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/runs/latest", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var latest store.Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&latest))
	assert.Equal(t, "b", latest.ID)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=0", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=1", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Runs []store.Run `json:"runs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list.Runs, 1)
	assert.Equal(t, "b", list.Runs[0].ID)
}
