package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dayscore-api/internal/models"
	"github.com/noah-isme/dayscore-api/internal/service"
	appErrors "github.com/noah-isme/dayscore-api/pkg/errors"
	"github.com/noah-isme/dayscore-api/pkg/response"
)

type journalService interface {
	Submit(ctx context.Context, userID string, req service.SubmitJournalRequest) (*models.JournalEntry, error)
	Append(ctx context.Context, userID string, req service.AppendJournalRequest) (*models.JournalEntry, error)
	GetByDate(ctx context.Context, userID, date string) (*models.JournalEntry, error)
	List(ctx context.Context, filter models.JournalFilter) ([]models.JournalEntry, *models.Pagination, error)
}

// JournalHandler wires HTTP endpoints to the journal service.
type JournalHandler struct {
	service journalService
}

// NewJournalHandler creates a new handler.
func NewJournalHandler(svc journalService) *JournalHandler {
	return &JournalHandler{service: svc}
}

// Submit godoc
// @Summary Submit a journal entry
// @Description Create or replace the entry for a date
// @Tags Journals
// @Accept json
// @Produce json
// @Param payload body service.SubmitJournalRequest true "Journal payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /journals [put]
func (h *JournalHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SubmitJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid journal payload"))
		return
	}

	entry, err := h.service.Submit(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entry, nil)
}

// Append godoc
// @Summary Append to a journal entry
// @Description Add content to the day's entry, creating it when none exists
// @Tags Journals
// @Accept json
// @Produce json
// @Param payload body service.AppendJournalRequest true "Append payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /journals/append [post]
func (h *JournalHandler) Append(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.AppendJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid journal payload"))
		return
	}

	entry, err := h.service.Append(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entry, nil)
}

// GetByDate godoc
// @Summary Get the journal entry for a date
// @Tags Journals
// @Produce json
// @Param date path string true "Entry date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /journals/{date} [get]
func (h *JournalHandler) GetByDate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	entry, err := h.service.GetByDate(c.Request.Context(), claims.UserID, c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entry, nil)
}

// List godoc
// @Summary List journal entries
// @Description List entries within an optional date range, newest first
// @Tags Journals
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /journals [get]
func (h *JournalHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.JournalFilter{UserID: claims.UserID}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD"))
			return
		}
		filter.FromDate = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD"))
			return
		}
		filter.ToDate = &to
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	entries, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, pagination)
}
