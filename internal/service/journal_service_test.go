package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dayscore-api/internal/models"
	appErrors "github.com/noah-isme/dayscore-api/pkg/errors"
)

type fakeJournalStore struct {
	entries map[string]*models.JournalEntry
}

func journalKey(userID string, date time.Time) string {
	return userID + date.Format("2006-01-02")
}

func (f *fakeJournalStore) FindByDate(_ context.Context, userID string, date time.Time) (*models.JournalEntry, error) {
	if entry, ok := f.entries[journalKey(userID, date)]; ok {
		copied := *entry
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeJournalStore) Upsert(_ context.Context, entry *models.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = "j-" + journalKey(entry.UserID, entry.EntryDate)
	}
	copied := *entry
	f.entries[journalKey(entry.UserID, entry.EntryDate)] = &copied
	return nil
}

func (f *fakeJournalStore) List(_ context.Context, _ models.JournalFilter) ([]models.JournalEntry, int, error) {
	var all []models.JournalEntry
	for _, e := range f.entries {
		all = append(all, *e)
	}
	return all, len(all), nil
}

func TestSubmitCreatesEntry(t *testing.T) {
	store := &fakeJournalStore{entries: map[string]*models.JournalEntry{}}
	svc := NewJournalService(store, nil, nil)

	entry, err := svc.Submit(context.Background(), "u1", SubmitJournalRequest{
		EntryDate:       "2026-08-28",
		ContentMarkdown: "Went for a run.",
	})
	require.NoError(t, err)
	assert.Equal(t, models.JournalSourceText, entry.InputSource)
	assert.Equal(t, "Went for a run.", entry.ContentMarkdown)
}

func TestSubmitReplacesSameDayContent(t *testing.T) {
	store := &fakeJournalStore{entries: map[string]*models.JournalEntry{}}
	svc := NewJournalService(store, nil, nil)

	first, err := svc.Submit(context.Background(), "u1", SubmitJournalRequest{
		EntryDate:       "2026-08-28",
		ContentMarkdown: "Morning draft.",
	})
	require.NoError(t, err)

	second, err := svc.Submit(context.Background(), "u1", SubmitJournalRequest{
		EntryDate:       "2026-08-28",
		ContentMarkdown: "Evening rewrite.",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Evening rewrite.", second.ContentMarkdown)
}

func TestAppendAccumulatesContent(t *testing.T) {
	store := &fakeJournalStore{entries: map[string]*models.JournalEntry{}}
	svc := NewJournalService(store, nil, nil)

	_, err := svc.Append(context.Background(), "u1", AppendJournalRequest{
		EntryDate: "2026-08-28",
		Content:   "Morning workout done.",
	})
	require.NoError(t, err)

	entry, err := svc.Append(context.Background(), "u1", AppendJournalRequest{
		EntryDate: "2026-08-28",
		Content:   "Read a chapter before bed.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Morning workout done.\n\nRead a chapter before bed.", entry.ContentMarkdown)
}

func TestGetByDateNotFound(t *testing.T) {
	store := &fakeJournalStore{entries: map[string]*models.JournalEntry{}}
	svc := NewJournalService(store, nil, nil)

	_, err := svc.GetByDate(context.Background(), "u1", "2026-08-28")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSubmitRejectsBadDate(t *testing.T) {
	store := &fakeJournalStore{entries: map[string]*models.JournalEntry{}}
	svc := NewJournalService(store, nil, nil)

	_, err := svc.Submit(context.Background(), "u1", SubmitJournalRequest{
		EntryDate:       "28-08-2026",
		ContentMarkdown: "content",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
