package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dayscore-api/internal/models"
)

// JournalRepository handles journal entry persistence. One row per user and
// calendar date; same-day submissions are merged by the service layer.
type JournalRepository struct {
	db *sqlx.DB
}

// NewJournalRepository creates a new journal repository.
func NewJournalRepository(db *sqlx.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// FindByDate returns the entry for a user and date.
func (r *JournalRepository) FindByDate(ctx context.Context, userID string, date time.Time) (*models.JournalEntry, error) {
	const query = `SELECT id, user_id, entry_date, content_markdown, input_source, created_at, updated_at FROM journal_entries WHERE user_id = $1 AND entry_date = $2 LIMIT 1`
	var entry models.JournalEntry
	if err := r.db.GetContext(ctx, &entry, query, userID, date); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find journal by date: %w", err)
	}
	return &entry, nil
}

// Upsert inserts the day's entry or replaces its content when one exists.
func (r *JournalRepository) Upsert(ctx context.Context, entry *models.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	const query = `INSERT INTO journal_entries (id, user_id, entry_date, content_markdown, input_source, created_at, updated_at)
        VALUES (:id, :user_id, :entry_date, :content_markdown, :input_source, :created_at, :updated_at)
        ON CONFLICT (user_id, entry_date)
        DO UPDATE SET content_markdown = EXCLUDED.content_markdown, input_source = EXCLUDED.input_source, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("upsert journal entry: %w", err)
	}
	return nil
}

// List returns entries matching the filter with total count, newest first.
func (r *JournalRepository) List(ctx context.Context, filter models.JournalFilter) ([]models.JournalEntry, int, error) {
	baseQuery := `FROM journal_entries WHERE user_id = $1`
	args := []interface{}{filter.UserID}
	if filter.FromDate != nil {
		baseQuery += fmt.Sprintf(" AND entry_date >= $%d", len(args)+1)
		args = append(args, *filter.FromDate)
	}
	if filter.ToDate != nil {
		baseQuery += fmt.Sprintf(" AND entry_date <= $%d", len(args)+1)
		args = append(args, *filter.ToDate)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT id, user_id, entry_date, content_markdown, input_source, created_at, updated_at %s ORDER BY entry_date DESC LIMIT %d OFFSET %d", baseQuery, pageSize, offset)

	var entries []models.JournalEntry
	if err := r.db.SelectContext(ctx, &entries, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list journal entries: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count journal entries: %w", err)
	}

	return entries, total, nil
}
