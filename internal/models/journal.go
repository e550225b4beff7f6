package models

import "time"

// JournalInputSource marks how the entry content was captured.
type JournalInputSource string

const (
	JournalSourceText  JournalInputSource = "text"
	JournalSourceVoice JournalInputSource = "voice"
)

// JournalEntry is the single aggregated journal for one user and calendar date.
type JournalEntry struct {
	ID              string             `db:"id" json:"id"`
	UserID          string             `db:"user_id" json:"user_id"`
	EntryDate       time.Time          `db:"entry_date" json:"entry_date"`
	ContentMarkdown string             `db:"content_markdown" json:"content_markdown"`
	InputSource     JournalInputSource `db:"input_source" json:"input_source"`
	CreatedAt       time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `db:"updated_at" json:"updated_at"`
}

// JournalFilter scopes journal listing queries.
type JournalFilter struct {
	UserID   string
	FromDate *time.Time
	ToDate   *time.Time
	Page     int
	PageSize int
}
