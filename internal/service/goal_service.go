package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dayscore-api/internal/models"
	appErrors "github.com/noah-isme/dayscore-api/pkg/errors"
)

type goalRepository interface {
	List(ctx context.Context, filter models.GoalFilter) ([]models.UserGoal, error)
	FindByID(ctx context.Context, id string) (*models.UserGoal, error)
	Create(ctx context.Context, goal *models.UserGoal) error
	Update(ctx context.Context, goal *models.UserGoal) error
	Deactivate(ctx context.Context, id string) error
}

// CreateGoalRequest creates a new tracked goal.
type CreateGoalRequest struct {
	Category    string  `json:"category" validate:"required"`
	Description string  `json:"description" validate:"required"`
	TargetValue float64 `json:"target_value" validate:"gte=0"`
	Weight      float64 `json:"weight" validate:"gt=0"`
}

// UpdateGoalRequest updates mutable goal fields.
type UpdateGoalRequest struct {
	Category    *string  `json:"category,omitempty"`
	Description *string  `json:"description,omitempty"`
	TargetValue *float64 `json:"target_value,omitempty" validate:"omitempty,gte=0"`
	Weight      *float64 `json:"weight,omitempty" validate:"omitempty,gt=0"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

// GoalService manages user goals.
type GoalService struct {
	repo      goalRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGoalService constructs a GoalService instance.
func NewGoalService(repo goalRepository, validate *validator.Validate, logger *zap.Logger) *GoalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GoalService{repo: repo, validator: validate, logger: logger}
}

// List returns the user's goals, optionally active only.
func (s *GoalService) List(ctx context.Context, userID string, activeOnly bool) ([]models.UserGoal, error) {
	goals, err := s.repo.List(ctx, models.GoalFilter{UserID: userID, ActiveOnly: activeOnly})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list goals")
	}
	return goals, nil
}

// Create validates and stores a new goal.
func (s *GoalService) Create(ctx context.Context, userID string, req CreateGoalRequest) (*models.UserGoal, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid goal payload")
	}

	goal := &models.UserGoal{
		UserID:      userID,
		Category:    req.Category,
		Description: req.Description,
		TargetValue: req.TargetValue,
		Weight:      req.Weight,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, goal); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create goal")
	}
	return goal, nil
}

// Update applies partial changes to a goal owned by the user.
func (s *GoalService) Update(ctx context.Context, userID, goalID string, req UpdateGoalRequest) (*models.UserGoal, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid goal payload")
	}

	goal, err := s.findOwned(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	if req.Category != nil {
		goal.Category = *req.Category
	}
	if req.Description != nil {
		goal.Description = *req.Description
	}
	if req.TargetValue != nil {
		goal.TargetValue = *req.TargetValue
	}
	if req.Weight != nil {
		goal.Weight = *req.Weight
	}
	if req.IsActive != nil {
		goal.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, goal); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update goal")
	}
	return goal, nil
}

// Deactivate soft deletes a goal owned by the user. Historic scores for the
// goal's category remain untouched.
func (s *GoalService) Deactivate(ctx context.Context, userID, goalID string) error {
	if _, err := s.findOwned(ctx, userID, goalID); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, goalID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate goal")
	}
	return nil
}

func (s *GoalService) findOwned(ctx context.Context, userID, goalID string) (*models.UserGoal, error) {
	goal, err := s.repo.FindByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "goal not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load goal")
	}
	if goal.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "goal does not belong to user")
	}
	return goal, nil
}
