package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dayscore-api/internal/models"
	appErrors "github.com/noah-isme/dayscore-api/pkg/errors"
)

type mockAnalysisService struct {
	run       *models.AnalysisRun
	err       error
	triggered []time.Time
}

func (m *mockAnalysisService) TriggerNow(_ context.Context, _ string, date time.Time) (*models.AnalysisRun, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.triggered = append(m.triggered, date)
	return m.run, nil
}

func (m *mockAnalysisService) GetRun(_ context.Context, _ string, _ time.Time) (*models.AnalysisRun, error) {
	return m.run, m.err
}

func TestTriggerNowWithExplicitDate(t *testing.T) {
	mock := &mockAnalysisService{run: &models.AnalysisRun{ID: "run-1", Status: models.AnalysisStatusPending}}
	h := NewAnalysisHandler(mock)

	c, w := newGinContext(http.MethodPost, "/analysis/run", []byte(`{"date":"2026-08-28"}`))
	authenticate(c, "u1")

	h.TriggerNow(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, mock.triggered, 1)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), mock.triggered[0])
}

func TestTriggerNowDefaultsToToday(t *testing.T) {
	mock := &mockAnalysisService{run: &models.AnalysisRun{ID: "run-1"}}
	h := NewAnalysisHandler(mock)

	c, w := newGinContext(http.MethodPost, "/analysis/run", nil)
	authenticate(c, "u1")

	h.TriggerNow(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, mock.triggered, 1)
	assert.Equal(t, 0, mock.triggered[0].Hour())
}

func TestTriggerNowConflict(t *testing.T) {
	mock := &mockAnalysisService{err: appErrors.Clone(appErrors.ErrConflict, "analysis already ran or is in progress for this date")}
	h := NewAnalysisHandler(mock)

	c, w := newGinContext(http.MethodPost, "/analysis/run", []byte(`{"date":"2026-08-28"}`))
	authenticate(c, "u1")

	h.TriggerNow(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetRunByDate(t *testing.T) {
	mock := &mockAnalysisService{run: &models.AnalysisRun{ID: "run-1", Status: models.AnalysisStatusCompleted}}
	h := NewAnalysisHandler(mock)

	c, w := newGinContext(http.MethodGet, "/analysis/2026-08-28", nil)
	authenticate(c, "u1")
	c.Params = gin.Params{{Key: "date", Value: "2026-08-28"}}

	h.GetRun(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"completed"`)
}
