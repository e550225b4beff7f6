package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/dayscore-api/internal/models"
)

type mockTrendService struct {
	points   []models.TrendPoint
	all      map[string][]models.TrendPoint
	weekly   *models.WeekOverWeek
	csv      []byte
	pdf      []byte
	err      error
	lastDays int
}

func (m *mockTrendService) GoalTrend(_ context.Context, _, _ string, days int) ([]models.TrendPoint, error) {
	m.lastDays = days
	return m.points, m.err
}

func (m *mockTrendService) AllGoalsTrends(_ context.Context, _ string, days int) (map[string][]models.TrendPoint, error) {
	m.lastDays = days
	return m.all, m.err
}

func (m *mockTrendService) WeekOverWeek(_ context.Context, _, _ string) (*models.WeekOverWeek, error) {
	return m.weekly, m.err
}

func (m *mockTrendService) ExportCSV(_ context.Context, _ string, days int) ([]byte, error) {
	m.lastDays = days
	return m.csv, m.err
}

func (m *mockTrendService) ExportPDF(_ context.Context, _ string, days int) ([]byte, error) {
	m.lastDays = days
	return m.pdf, m.err
}

func TestGoalTrendParsesDaysQuery(t *testing.T) {
	mock := &mockTrendService{points: []models.TrendPoint{{Score: 70}}}
	h := NewTrendHandler(mock)

	c, w := newGinContext(http.MethodGet, "/trends/fitness?days=30", nil)
	authenticate(c, "u1")
	c.Params = gin.Params{{Key: "category", Value: "fitness"}}

	h.GoalTrend(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 30, mock.lastDays)
}

func TestGoalTrendIgnoresInvalidDays(t *testing.T) {
	mock := &mockTrendService{}
	h := NewTrendHandler(mock)

	c, w := newGinContext(http.MethodGet, "/trends/fitness?days=abc", nil)
	authenticate(c, "u1")
	c.Params = gin.Params{{Key: "category", Value: "fitness"}}

	h.GoalTrend(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, mock.lastDays)
}

func TestWeekOverWeekSuccess(t *testing.T) {
	mock := &mockTrendService{weekly: &models.WeekOverWeek{Category: "fitness", Trend: models.TrendImproving}}
	h := NewTrendHandler(mock)

	c, w := newGinContext(http.MethodGet, "/trends/fitness/weekly", nil)
	authenticate(c, "u1")
	c.Params = gin.Params{{Key: "category", Value: "fitness"}}

	h.WeekOverWeek(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"improving"`)
}

func TestExportCSVSetsHeaders(t *testing.T) {
	mock := &mockTrendService{csv: []byte("date,category,score\n")}
	h := NewTrendHandler(mock)

	c, w := newGinContext(http.MethodGet, "/trends/export/csv", nil)
	authenticate(c, "u1")

	h.ExportCSV(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=scores-")
	assert.Equal(t, "date,category,score\n", w.Body.String())
}

func TestExportPDFSetsContentType(t *testing.T) {
	mock := &mockTrendService{pdf: []byte("%PDF-1.4")}
	h := NewTrendHandler(mock)

	c, w := newGinContext(http.MethodGet, "/trends/export/pdf", nil)
	authenticate(c, "u1")

	h.ExportPDF(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
}
