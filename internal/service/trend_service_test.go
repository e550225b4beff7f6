package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dayscore-api/internal/models"
	appErrors "github.com/noah-isme/dayscore-api/pkg/errors"
)

type fakeTrendRepo struct {
	thisWeek []models.TrendPoint
	lastWeek []models.TrendPoint
	all      []models.CategoryTrendPoint
	calls    int
	today    time.Time
}

func (f *fakeTrendRepo) CategoryTrend(_ context.Context, _, _ string, _, to time.Time) ([]models.TrendPoint, error) {
	f.calls++
	if to.Equal(f.today) {
		return f.thisWeek, nil
	}
	return f.lastWeek, nil
}

func (f *fakeTrendRepo) AllCategoryTrends(_ context.Context, _ string, _, _ time.Time) ([]models.CategoryTrendPoint, error) {
	f.calls++
	return f.all, nil
}

type fakeTrendCache struct {
	store map[string][]byte
}

func (f *fakeTrendCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := f.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeTrendCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.store[key] = raw
	return nil
}

func fixedToday() time.Time {
	return time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
}

func newTrendService(repo *fakeTrendRepo, cache *fakeTrendCache, cacheEnabled bool) *TrendService {
	svc := NewTrendService(repo, cache, nil, TrendOptions{CacheEnabled: cacheEnabled, CacheTTL: time.Minute, DefaultDays: 7})
	svc.now = func() time.Time { return time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC) }
	return svc
}

func TestWeekOverWeekImproving(t *testing.T) {
	repo := &fakeTrendRepo{
		today:    fixedToday(),
		thisWeek: []models.TrendPoint{{Score: 80}, {Score: 90}},
		lastWeek: []models.TrendPoint{{Score: 70}, {Score: 80}},
	}
	svc := newTrendService(repo, nil, false)

	result, err := svc.WeekOverWeek(context.Background(), "u1", "fitness")
	require.NoError(t, err)
	assert.Equal(t, models.TrendImproving, result.Trend)
	assert.Equal(t, 85.0, *result.ThisWeekAvg)
	assert.Equal(t, 75.0, *result.LastWeekAvg)
	assert.Equal(t, 13.3, *result.PercentageChange)
}

func TestWeekOverWeekDeclining(t *testing.T) {
	repo := &fakeTrendRepo{
		today:    fixedToday(),
		thisWeek: []models.TrendPoint{{Score: 60}},
		lastWeek: []models.TrendPoint{{Score: 75}},
	}
	svc := newTrendService(repo, nil, false)

	result, err := svc.WeekOverWeek(context.Background(), "u1", "fitness")
	require.NoError(t, err)
	assert.Equal(t, models.TrendDeclining, result.Trend)
	assert.Equal(t, -20.0, *result.PercentageChange)
}

func TestWeekOverWeekStable(t *testing.T) {
	repo := &fakeTrendRepo{
		today:    fixedToday(),
		thisWeek: []models.TrendPoint{{Score: 76}},
		lastWeek: []models.TrendPoint{{Score: 75}},
	}
	svc := newTrendService(repo, nil, false)

	result, err := svc.WeekOverWeek(context.Background(), "u1", "fitness")
	require.NoError(t, err)
	assert.Equal(t, models.TrendStable, result.Trend)
	assert.Equal(t, 1.3, *result.PercentageChange)
}

func TestWeekOverWeekInsufficientData(t *testing.T) {
	repo := &fakeTrendRepo{
		today:    fixedToday(),
		thisWeek: []models.TrendPoint{{Score: 60}},
		lastWeek: nil,
	}
	svc := newTrendService(repo, nil, false)

	result, err := svc.WeekOverWeek(context.Background(), "u1", "fitness")
	require.NoError(t, err)
	assert.Equal(t, models.TrendInsufficientData, result.Trend)
	assert.NotNil(t, result.ThisWeekAvg)
	assert.Nil(t, result.LastWeekAvg)
	assert.Nil(t, result.PercentageChange)
}

func TestWeekOverWeekZeroLastWeek(t *testing.T) {
	repo := &fakeTrendRepo{
		today:    fixedToday(),
		thisWeek: []models.TrendPoint{{Score: 40}},
		lastWeek: []models.TrendPoint{{Score: 0}},
	}
	svc := newTrendService(repo, nil, false)

	result, err := svc.WeekOverWeek(context.Background(), "u1", "fitness")
	require.NoError(t, err)
	assert.Equal(t, models.TrendImproving, result.Trend)
	assert.Equal(t, 100.0, *result.PercentageChange)
}

func TestGoalTrendServedFromCache(t *testing.T) {
	repo := &fakeTrendRepo{
		today:    fixedToday(),
		thisWeek: []models.TrendPoint{{Date: fixedToday(), Score: 70}},
	}
	cache := &fakeTrendCache{store: map[string][]byte{}}
	svc := newTrendService(repo, cache, true)

	first, err := svc.GoalTrend(context.Background(), "u1", "fitness", 7)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, repo.calls)

	second, err := svc.GoalTrend(context.Background(), "u1", "fitness", 7)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, repo.calls)
}

func TestAllGoalsTrendsGroupsByCategory(t *testing.T) {
	repo := &fakeTrendRepo{
		today: fixedToday(),
		all: []models.CategoryTrendPoint{
			{Category: "fitness", Date: fixedToday().AddDate(0, 0, -1), Score: 70},
			{Category: "fitness", Date: fixedToday(), Score: 75},
			{Category: "learning", Date: fixedToday(), Score: 55},
		},
	}
	svc := newTrendService(repo, nil, false)

	trends, err := svc.AllGoalsTrends(context.Background(), "u1", 7)
	require.NoError(t, err)
	require.Len(t, trends, 2)
	assert.Len(t, trends["fitness"], 2)
	assert.Len(t, trends["learning"], 1)
}

func TestExportCSVRendersRows(t *testing.T) {
	repo := &fakeTrendRepo{
		today: fixedToday(),
		all: []models.CategoryTrendPoint{
			{Category: "fitness", Date: fixedToday(), Score: 72.5},
		},
	}
	svc := newTrendService(repo, nil, false)

	payload, err := svc.ExportCSV(context.Background(), "u1", 7)
	require.NoError(t, err)
	assert.Contains(t, string(payload), "date,category,score")
	assert.Contains(t, string(payload), "2026-08-28,fitness,72.5")
}
