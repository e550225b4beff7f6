package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dayscore-api/internal/models"
	appErrors "github.com/noah-isme/dayscore-api/pkg/errors"
	"github.com/noah-isme/dayscore-api/pkg/response"
)

type trendService interface {
	GoalTrend(ctx context.Context, userID, category string, days int) ([]models.TrendPoint, error)
	AllGoalsTrends(ctx context.Context, userID string, days int) (map[string][]models.TrendPoint, error)
	WeekOverWeek(ctx context.Context, userID, category string) (*models.WeekOverWeek, error)
	ExportCSV(ctx context.Context, userID string, days int) ([]byte, error)
	ExportPDF(ctx context.Context, userID string, days int) ([]byte, error)
}

// TrendHandler wires HTTP endpoints to the trend service.
type TrendHandler struct {
	service trendService
}

// NewTrendHandler creates a new handler.
func NewTrendHandler(svc trendService) *TrendHandler {
	return &TrendHandler{service: svc}
}

// AllGoalsTrends godoc
// @Summary Get trends for all goals
// @Description Per-day scores for every scored category over the trailing window
// @Tags Trends
// @Produce json
// @Param days query int false "Window size in days (default 7)"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /trends [get]
func (h *TrendHandler) AllGoalsTrends(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	trends, err := h.service.AllGoalsTrends(c.Request.Context(), claims.UserID, daysQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, trends, nil)
}

// GoalTrend godoc
// @Summary Get the trend for one goal category
// @Tags Trends
// @Produce json
// @Param category path string true "Goal category"
// @Param days query int false "Window size in days (default 7)"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /trends/{category} [get]
func (h *TrendHandler) GoalTrend(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	points, err := h.service.GoalTrend(c.Request.Context(), claims.UserID, c.Param("category"), daysQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, points, nil)
}

// WeekOverWeek godoc
// @Summary Compare this week's average against last week's
// @Tags Trends
// @Produce json
// @Param category path string true "Goal category"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /trends/{category}/weekly [get]
func (h *TrendHandler) WeekOverWeek(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.service.WeekOverWeek(c.Request.Context(), claims.UserID, c.Param("category"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// ExportCSV godoc
// @Summary Export score history as CSV
// @Tags Trends
// @Produce text/csv
// @Param days query int false "Window size in days (default 7)"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /trends/export/csv [get]
func (h *TrendHandler) ExportCSV(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	payload, err := h.service.ExportCSV(c.Request.Context(), claims.UserID, daysQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=scores-%s.csv", time.Now().UTC().Format("2006-01-02")))
	c.Data(http.StatusOK, "text/csv", payload)
}

// ExportPDF godoc
// @Summary Export score history as PDF
// @Tags Trends
// @Produce application/pdf
// @Param days query int false "Window size in days (default 7)"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /trends/export/pdf [get]
func (h *TrendHandler) ExportPDF(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	payload, err := h.service.ExportPDF(c.Request.Context(), claims.UserID, daysQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=scores-%s.pdf", time.Now().UTC().Format("2006-01-02")))
	c.Data(http.StatusOK, "application/pdf", payload)
}

func daysQuery(c *gin.Context) int {
	days, err := strconv.Atoi(c.DefaultQuery("days", "0"))
	if err != nil || days < 0 {
		return 0
	}
	return days
}
