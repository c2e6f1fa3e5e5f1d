package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AHSANooo/Clashes-Detector/internal/models"
	appErrors "github.com/AHSANooo/Clashes-Detector/pkg/errors"
)

type fakeMetricsProvider struct {
	snapshot models.SystemMetrics
}

func (f *fakeMetricsProvider) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("clashes_detector_up 1\n"))
	})
}

func (f *fakeMetricsProvider) Snapshot() models.SystemMetrics {
	return f.snapshot
}

type fakeReadiness struct {
	err error
}

func (f fakeReadiness) Ready(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return appErrors.ErrInternal
	}
	return f.err
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	handler := NewMetricsHandler(&fakeMetricsProvider{}, nil)
	c, rec := newJSONContext(http.MethodGet, "/metrics", "")

	handler.Prometheus(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "clashes_detector_up")
}

func TestMetricsHandlerSummary(t *testing.T) {
	provider := &fakeMetricsProvider{snapshot: models.SystemMetrics{
		CacheHits:   3,
		CacheMisses: 1,
		Searches:    2,
		GeneratedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}}
	handler := NewMetricsHandler(provider, nil)
	c, rec := newJSONContext(http.MethodGet, "/metrics/summary", "")

	handler.Summary(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var snapshot models.SystemMetrics
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &snapshot))
	assert.EqualValues(t, 3, snapshot.CacheHits)
	assert.EqualValues(t, 2, snapshot.Searches)
}

func TestMetricsHandlerWithoutProvider(t *testing.T) {
	handler := NewMetricsHandler(nil, nil)
	c, rec := newJSONContext(http.MethodGet, "/metrics", "")

	handler.Prometheus(c)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsHandlerHealth(t *testing.T) {
	handler := NewMetricsHandler(nil, nil)
	c, rec := newJSONContext(http.MethodGet, "/health", "")

	handler.Health(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsHandlerReady(t *testing.T) {
	handler := NewMetricsHandler(nil, fakeReadiness{})
	c, rec := newJSONContext(http.MethodGet, "/ready", "")

	handler.Ready(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}

func TestMetricsHandlerNotReady(t *testing.T) {
	handler := NewMetricsHandler(nil, fakeReadiness{err: appErrors.ErrUnavailable})
	c, rec := newJSONContext(http.MethodGet, "/ready", "")

	handler.Ready(c)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
