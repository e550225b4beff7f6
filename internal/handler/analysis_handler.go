package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dayscore-api/internal/models"
	appErrors "github.com/noah-isme/dayscore-api/pkg/errors"
	"github.com/noah-isme/dayscore-api/pkg/response"
)

type analysisService interface {
	TriggerNow(ctx context.Context, userID string, date time.Time) (*models.AnalysisRun, error)
	GetRun(ctx context.Context, userID string, date time.Time) (*models.AnalysisRun, error)
}

// TriggerAnalysisRequest selects the date for a manual analysis run.
type TriggerAnalysisRequest struct {
	Date string `json:"date"`
}

// AnalysisHandler wires HTTP endpoints to the analysis service.
type AnalysisHandler struct {
	service analysisService
}

// NewAnalysisHandler creates a new handler.
func NewAnalysisHandler(svc analysisService) *AnalysisHandler {
	return &AnalysisHandler{service: svc}
}

// TriggerNow godoc
// @Summary Trigger an analysis run
// @Description Claim and enqueue an analysis run for the given date, bypassing the schedule. Defaults to today.
// @Tags Analysis
// @Accept json
// @Produce json
// @Param payload body TriggerAnalysisRequest false "Trigger payload"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /analysis/run [post]
func (h *AnalysisHandler) TriggerNow(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req TriggerAnalysisRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid trigger payload"))
			return
		}
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD"))
			return
		}
		date = parsed.UTC()
	}

	run, err := h.service.TriggerNow(c.Request.Context(), claims.UserID, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusAccepted, run, nil)
}

// GetRun godoc
// @Summary Get the analysis run for a date
// @Tags Analysis
// @Produce json
// @Param date path string true "Analysis date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /analysis/{date} [get]
func (h *AnalysisHandler) GetRun(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	date, err := parseDateParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	run, err := h.service.GetRun(c.Request.Context(), claims.UserID, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, run, nil)
}
