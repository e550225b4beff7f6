package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dayscore-api/internal/models"
	appErrors "github.com/noah-isme/dayscore-api/pkg/errors"
)

type journalRepository interface {
	FindByDate(ctx context.Context, userID string, date time.Time) (*models.JournalEntry, error)
	Upsert(ctx context.Context, entry *models.JournalEntry) error
	List(ctx context.Context, filter models.JournalFilter) ([]models.JournalEntry, int, error)
}

// SubmitJournalRequest creates or replaces the day's journal entry.
type SubmitJournalRequest struct {
	EntryDate       string `json:"entry_date" validate:"required,datetime=2006-01-02"`
	ContentMarkdown string `json:"content_markdown" validate:"required"`
	InputSource     string `json:"input_source" validate:"omitempty,oneof=text voice"`
}

// AppendJournalRequest appends content to the day's entry, creating it when
// none exists yet.
type AppendJournalRequest struct {
	EntryDate   string `json:"entry_date" validate:"required,datetime=2006-01-02"`
	Content     string `json:"content" validate:"required"`
	InputSource string `json:"input_source" validate:"omitempty,oneof=text voice"`
}

// JournalService manages daily journal entries.
type JournalService struct {
	repo      journalRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewJournalService constructs a JournalService instance.
func NewJournalService(repo journalRepository, validate *validator.Validate, logger *zap.Logger) *JournalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &JournalService{repo: repo, validator: validate, logger: logger}
}

// Submit replaces the content for the given date, creating the entry when it
// does not exist.
func (s *JournalService) Submit(ctx context.Context, userID string, req SubmitJournalRequest) (*models.JournalEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid journal payload")
	}
	entryDate, err := parseEntryDate(req.EntryDate)
	if err != nil {
		return nil, err
	}

	source := models.JournalInputSource(req.InputSource)
	if source == "" {
		source = models.JournalSourceText
	}

	entry := &models.JournalEntry{
		UserID:          userID,
		EntryDate:       entryDate,
		ContentMarkdown: req.ContentMarkdown,
		InputSource:     source,
	}
	if existing, err := s.repo.FindByDate(ctx, userID, entryDate); err == nil {
		entry.ID = existing.ID
		entry.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load journal entry")
	}

	if err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save journal entry")
	}
	return entry, nil
}

// Append adds content to the day's entry. Multiple submissions accumulate,
// separated by a blank line; the first submission creates the entry.
func (s *JournalService) Append(ctx context.Context, userID string, req AppendJournalRequest) (*models.JournalEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid journal payload")
	}
	entryDate, err := parseEntryDate(req.EntryDate)
	if err != nil {
		return nil, err
	}

	source := models.JournalInputSource(req.InputSource)
	if source == "" {
		source = models.JournalSourceVoice
	}

	entry := &models.JournalEntry{
		UserID:          userID,
		EntryDate:       entryDate,
		ContentMarkdown: req.Content,
		InputSource:     source,
	}
	if existing, err := s.repo.FindByDate(ctx, userID, entryDate); err == nil {
		entry.ID = existing.ID
		entry.CreatedAt = existing.CreatedAt
		entry.ContentMarkdown = existing.ContentMarkdown + "\n\n" + req.Content
		entry.InputSource = existing.InputSource
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load journal entry")
	}

	if err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save journal entry")
	}
	return entry, nil
}

// GetByDate returns the entry for a specific date.
func (s *JournalService) GetByDate(ctx context.Context, userID, date string) (*models.JournalEntry, error) {
	entryDate, err := parseEntryDate(date)
	if err != nil {
		return nil, err
	}

	entry, err := s.repo.FindByDate(ctx, userID, entryDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no journal entry for date")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load journal entry")
	}
	return entry, nil
}

// List returns entries within the filter range with pagination metadata.
func (s *JournalService) List(ctx context.Context, filter models.JournalFilter) ([]models.JournalEntry, *models.Pagination, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list journal entries")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return entries, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

func parseEntryDate(raw string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date, expected YYYY-MM-DD")
	}
	return d.UTC(), nil
}
