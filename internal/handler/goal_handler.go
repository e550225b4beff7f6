package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dayscore-api/internal/models"
	"github.com/noah-isme/dayscore-api/internal/service"
	appErrors "github.com/noah-isme/dayscore-api/pkg/errors"
	"github.com/noah-isme/dayscore-api/pkg/response"
)

type goalService interface {
	List(ctx context.Context, userID string, activeOnly bool) ([]models.UserGoal, error)
	Create(ctx context.Context, userID string, req service.CreateGoalRequest) (*models.UserGoal, error)
	Update(ctx context.Context, userID, goalID string, req service.UpdateGoalRequest) (*models.UserGoal, error)
	Deactivate(ctx context.Context, userID, goalID string) error
}

// GoalHandler wires HTTP endpoints to the goal service.
type GoalHandler struct {
	service goalService
}

// NewGoalHandler creates a new handler.
func NewGoalHandler(svc goalService) *GoalHandler {
	return &GoalHandler{service: svc}
}

// List godoc
// @Summary List goals
// @Description List the authenticated user's goals, newest first
// @Tags Goals
// @Produce json
// @Param active_only query bool false "Only return active goals"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /goals [get]
func (h *GoalHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	activeOnly := c.Query("active_only") == "true"
	goals, err := h.service.List(c.Request.Context(), claims.UserID, activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, goals, nil)
}

// Create godoc
// @Summary Create a goal
// @Tags Goals
// @Accept json
// @Produce json
// @Param payload body service.CreateGoalRequest true "Goal payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /goals [post]
func (h *GoalHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid goal payload"))
		return
	}

	goal, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, goal)
}

// Update godoc
// @Summary Update a goal
// @Description Apply partial changes to a goal owned by the authenticated user
// @Tags Goals
// @Accept json
// @Produce json
// @Param id path string true "Goal ID"
// @Param payload body service.UpdateGoalRequest true "Fields to update"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /goals/{id} [patch]
func (h *GoalHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid goal payload"))
		return
	}

	goal, err := h.service.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, goal, nil)
}

// Deactivate godoc
// @Summary Deactivate a goal
// @Description Soft delete a goal; historic scores for its category are kept
// @Tags Goals
// @Produce json
// @Param id path string true "Goal ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /goals/{id} [delete]
func (h *GoalHandler) Deactivate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
