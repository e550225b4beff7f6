package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/dayscore-api/internal/models"
	appErrors "github.com/noah-isme/dayscore-api/pkg/errors"
	"github.com/noah-isme/dayscore-api/pkg/jobs"
)

type analysisUserRepository interface {
	ListActive(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type analysisRunRepository interface {
	FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*models.AnalysisRun, error)
	Claim(ctx context.Context, userID string, date time.Time) (*models.AnalysisRun, bool, error)
	MarkRunning(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, runErr error) error
}

type dayScorer interface {
	ScoreDay(ctx context.Context, userID string, scoreDate time.Time) (*ScoringResponse, error)
}

// AnalysisJobPayload is carried on queued analysis jobs.
type AnalysisJobPayload struct {
	RunID        string
	UserID       string
	AnalysisDate time.Time
}

// AnalysisService schedules and runs the evening analysis pipeline. Each tick
// it finds users whose local clock matches their configured analysis time,
// claims a run for the day, and dispatches scoring onto the worker queue.
type AnalysisService struct {
	users   analysisUserRepository
	runs    analysisRunRepository
	scorer  dayScorer
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// AttachMetrics wires analysis job observations into the metrics registry.
func (s *AnalysisService) AttachMetrics(metrics *MetricsService) {
	s.metrics = metrics
}

// NewAnalysisService constructs an AnalysisService; Queue wiring happens via
// AttachQueue so the service's handler can reference itself.
func NewAnalysisService(users analysisUserRepository, runs analysisRunRepository, scorer dayScorer, logger *zap.Logger) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{
		users:  users,
		runs:   runs,
		scorer: scorer,
		logger: logger,
		now:    time.Now,
	}
}

// AttachQueue wires the worker queue used for dispatching analysis jobs.
func (s *AnalysisService) AttachQueue(queue *jobs.Queue) {
	s.queue = queue
}

// HandleJob processes one queued analysis job. Registered as the queue
// handler.
func (s *AnalysisService) HandleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(AnalysisJobPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	if err := s.runs.MarkRunning(ctx, payload.RunID); err != nil {
		return err
	}

	if _, err := s.scorer.ScoreDay(ctx, payload.UserID, payload.AnalysisDate); err != nil {
		if markErr := s.runs.MarkFailed(ctx, payload.RunID, err); markErr != nil {
			s.logger.Error("failed to mark analysis run failed", zap.String("run_id", payload.RunID), zap.Error(markErr))
		}
		s.observeJob(string(models.AnalysisStatusFailed))
		return err
	}

	s.observeJob(string(models.AnalysisStatusCompleted))
	return s.runs.MarkCompleted(ctx, payload.RunID)
}

func (s *AnalysisService) observeJob(status string) {
	if s.metrics != nil {
		s.metrics.ObserveAnalysisJob(status)
	}
}

// Tick scans for due users and enqueues an analysis job for each. Returns the
// number of jobs dispatched.
func (s *AnalysisService) Tick(ctx context.Context) (int, error) {
	users, err := s.users.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users for analysis: %w", err)
	}

	nowUTC := s.now().UTC()
	dispatched := 0
	for _, user := range users {
		due, localDate := s.isDue(user, nowUTC)
		if !due {
			continue
		}

		run, claimed, err := s.runs.Claim(ctx, user.ID, localDate)
		if err != nil {
			s.logger.Warn("failed to claim analysis run", zap.String("user_id", user.ID), zap.Error(err))
			continue
		}
		if !claimed {
			continue
		}

		job := jobs.Job{
			ID:   uuid.NewString(),
			Type: "daily_analysis",
			Payload: AnalysisJobPayload{
				RunID:        run.ID,
				UserID:       user.ID,
				AnalysisDate: localDate,
			},
		}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Error("failed to enqueue analysis job", zap.String("user_id", user.ID), zap.Error(err))
			if markErr := s.runs.MarkFailed(ctx, run.ID, err); markErr != nil {
				s.logger.Error("failed to mark analysis run failed", zap.String("run_id", run.ID), zap.Error(markErr))
			}
			continue
		}
		dispatched++
	}
	return dispatched, nil
}

// Run starts the scheduling loop, ticking at the given interval until the
// context is cancelled.
func (s *AnalysisService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("analysis runner started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("analysis runner stopped")
			return
		case <-ticker.C:
			if n, err := s.Tick(ctx); err != nil {
				s.logger.Error("analysis tick failed", zap.Error(err))
			} else if n > 0 {
				s.logger.Info("analysis jobs dispatched", zap.Int("count", n))
			}
		}
	}
}

// TriggerNow claims and enqueues an analysis run for one user and date,
// bypassing the schedule. Used by the manual trigger endpoint.
func (s *AnalysisService) TriggerNow(ctx context.Context, userID string, date time.Time) (*models.AnalysisRun, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	run, claimed, err := s.runs.Claim(ctx, userID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to claim analysis run")
	}
	if !claimed {
		return nil, appErrors.Clone(appErrors.ErrConflict, "analysis already ran or is in progress for this date")
	}

	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    "daily_analysis",
		Payload: AnalysisJobPayload{RunID: run.ID, UserID: userID, AnalysisDate: date},
	}
	if err := s.queue.Enqueue(job); err != nil {
		if markErr := s.runs.MarkFailed(ctx, run.ID, err); markErr != nil {
			s.logger.Error("failed to mark analysis run failed", zap.String("run_id", run.ID), zap.Error(markErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue analysis job")
	}
	return run, nil
}

// GetRun returns the analysis run for a user and date.
func (s *AnalysisService) GetRun(ctx context.Context, userID string, date time.Time) (*models.AnalysisRun, error) {
	run, err := s.runs.FindByUserAndDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no analysis run for date")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load analysis run")
	}
	return run, nil
}

// isDue reports whether the user's local clock matches their analysis time to
// the minute, and returns the user's local calendar date.
func (s *AnalysisService) isDue(user models.User, nowUTC time.Time) (bool, time.Time) {
	if user.AnalysisTime == nil {
		return false, time.Time{}
	}
	hour, minute, err := parseClock(*user.AnalysisTime)
	if err != nil {
		s.logger.Warn("invalid analysis time", zap.String("user_id", user.ID), zap.String("analysis_time", *user.AnalysisTime))
		return false, time.Time{}
	}

	loc, err := time.LoadLocation(user.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := nowUTC.In(loc)
	if local.Hour() != hour || local.Minute() != minute {
		return false, time.Time{}
	}
	localDate := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return true, localDate
}

func parseClock(raw string) (int, int, error) {
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", raw)
	}
	return hour, minute, nil
}
