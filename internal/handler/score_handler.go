package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dayscore-api/internal/models"
	"github.com/noah-isme/dayscore-api/internal/scoring"
	"github.com/noah-isme/dayscore-api/internal/service"
	appErrors "github.com/noah-isme/dayscore-api/pkg/errors"
	"github.com/noah-isme/dayscore-api/pkg/response"
)

type scoringService interface {
	ScoreDay(ctx context.Context, userID string, scoreDate time.Time) (*service.ScoringResponse, error)
	GetScore(ctx context.Context, userID string, date time.Time) (*models.DailyScore, error)
	GetStreaks(ctx context.Context, userID string) ([]scoring.StreakInfo, error)
}

// ScoreHandler wires HTTP endpoints to the scoring service.
type ScoreHandler struct {
	service scoringService
}

// NewScoreHandler creates a new handler.
func NewScoreHandler(svc scoringService) *ScoreHandler {
	return &ScoreHandler{service: svc}
}

// ScoreDay godoc
// @Summary Score a day
// @Description Run the full scoring workflow for the given date and persist the result
// @Tags Scores
// @Produce json
// @Param date path string true "Score date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /scores/{date} [post]
func (h *ScoreHandler) ScoreDay(c *gin.Context) {
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

	result, err := h.service.ScoreDay(c.Request.Context(), claims.UserID, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// GetScore godoc
// @Summary Get the daily score for a date
// @Tags Scores
// @Produce json
// @Param date path string true "Score date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /scores/{date} [get]
func (h *ScoreHandler) GetScore(c *gin.Context) {
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

	score, err := h.service.GetScore(c.Request.Context(), claims.UserID, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, score, nil)
}

// GetStreaks godoc
// @Summary Get streaks for all active goals
// @Tags Scores
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /scores/streaks [get]
func (h *ScoreHandler) GetStreaks(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	streaks, err := h.service.GetStreaks(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, streaks, nil)
}

func parseDateParam(c *gin.Context) (time.Time, error) {
	raw := c.Param("date")
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}
	return date.UTC(), nil
}
