package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dayscore-api/internal/models"
	"github.com/noah-isme/dayscore-api/internal/service"
)

type mockJournalService struct {
	entry      *models.JournalEntry
	entries    []models.JournalEntry
	pagination *models.Pagination
	err        error
	submitted  *service.SubmitJournalRequest
	appended   *service.AppendJournalRequest
	lastFilter models.JournalFilter
}

func (m *mockJournalService) Submit(_ context.Context, _ string, req service.SubmitJournalRequest) (*models.JournalEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.submitted = &req
	return m.entry, nil
}

func (m *mockJournalService) Append(_ context.Context, _ string, req service.AppendJournalRequest) (*models.JournalEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.appended = &req
	return m.entry, nil
}

func (m *mockJournalService) GetByDate(_ context.Context, _, _ string) (*models.JournalEntry, error) {
	return m.entry, m.err
}

func (m *mockJournalService) List(_ context.Context, filter models.JournalFilter) ([]models.JournalEntry, *models.Pagination, error) {
	m.lastFilter = filter
	return m.entries, m.pagination, m.err
}

func TestSubmitJournalSuccess(t *testing.T) {
	mock := &mockJournalService{entry: &models.JournalEntry{ID: "j1", ContentMarkdown: "Went for a run."}}
	h := NewJournalHandler(mock)

	c, w := newGinContext(http.MethodPut, "/journals", []byte(`{"entry_date":"2026-08-28","content_markdown":"Went for a run."}`))
	authenticate(c, "u1")

	h.Submit(c)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mock.submitted)
	assert.Equal(t, "2026-08-28", mock.submitted.EntryDate)
}

func TestSubmitJournalRejectsMalformedBody(t *testing.T) {
	mock := &mockJournalService{}
	h := NewJournalHandler(mock)

	c, w := newGinContext(http.MethodPut, "/journals", []byte(`{broken`))
	authenticate(c, "u1")

	h.Submit(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, mock.submitted)
}

func TestAppendJournalSuccess(t *testing.T) {
	mock := &mockJournalService{entry: &models.JournalEntry{ID: "j1"}}
	h := NewJournalHandler(mock)

	c, w := newGinContext(http.MethodPost, "/journals/append", []byte(`{"entry_date":"2026-08-28","content":"Read a chapter."}`))
	authenticate(c, "u1")

	h.Append(c)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mock.appended)
	assert.Equal(t, "Read a chapter.", mock.appended.Content)
}

func TestGetJournalByDate(t *testing.T) {
	mock := &mockJournalService{entry: &models.JournalEntry{ID: "j1", ContentMarkdown: "content"}}
	h := NewJournalHandler(mock)

	c, w := newGinContext(http.MethodGet, "/journals/2026-08-28", nil)
	authenticate(c, "u1")
	c.Params = gin.Params{{Key: "date", Value: "2026-08-28"}}

	h.GetByDate(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListJournalsParsesRange(t *testing.T) {
	mock := &mockJournalService{pagination: &models.Pagination{Page: 1, PageSize: 20}}
	h := NewJournalHandler(mock)

	c, w := newGinContext(http.MethodGet, "/journals?from=2026-08-01&to=2026-08-28&page=2&page_size=10", nil)
	authenticate(c, "u1")

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mock.lastFilter.FromDate)
	require.NotNil(t, mock.lastFilter.ToDate)
	assert.Equal(t, 2, mock.lastFilter.Page)
	assert.Equal(t, 10, mock.lastFilter.PageSize)
}

func TestListJournalsRejectsBadRange(t *testing.T) {
	mock := &mockJournalService{}
	h := NewJournalHandler(mock)

	c, w := newGinContext(http.MethodGet, "/journals?from=notadate", nil)
	authenticate(c, "u1")

	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
