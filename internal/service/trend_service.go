package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/dayscore-api/internal/models"
	appErrors "github.com/noah-isme/dayscore-api/pkg/errors"
	"github.com/noah-isme/dayscore-api/pkg/export"
)

type trendScoreRepository interface {
	CategoryTrend(ctx context.Context, userID, category string, from, to time.Time) ([]models.TrendPoint, error)
	AllCategoryTrends(ctx context.Context, userID string, from, to time.Time) ([]models.CategoryTrendPoint, error)
}

type trendCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// TrendOptions tunes trend caching behaviour.
type TrendOptions struct {
	CacheEnabled bool
	CacheTTL     time.Duration
	DefaultDays  int
}

// TrendService reads score history into trend views and exports.
type TrendService struct {
	scores  trendScoreRepository
	cache   trendCache
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
	options TrendOptions
	now     func() time.Time
}

// NewTrendService constructs a TrendService instance.
func NewTrendService(scores trendScoreRepository, cache trendCache, logger *zap.Logger, options TrendOptions) *TrendService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.DefaultDays <= 0 {
		options.DefaultDays = 7
	}
	if options.CacheTTL <= 0 {
		options.CacheTTL = 10 * time.Minute
	}
	return &TrendService{
		scores:  scores,
		cache:   cache,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
		options: options,
		now:     time.Now,
	}
}

// GoalTrend returns per-day scores for one category over the trailing window.
// Days without a score are absent from the result.
func (s *TrendService) GoalTrend(ctx context.Context, userID, category string, days int) ([]models.TrendPoint, error) {
	if days <= 0 {
		days = s.options.DefaultDays
	}
	to := s.today()
	from := to.AddDate(0, 0, -(days - 1))

	cacheKey := fmt.Sprintf("scores:%s:trend:%s:%d", userID, category, days)
	var cached []models.TrendPoint
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	points, err := s.scores.CategoryTrend(ctx, userID, category, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load goal trend")
	}

	s.cacheSet(ctx, cacheKey, points)
	return points, nil
}

// AllGoalsTrends returns per-day scores for every scored category, keyed by
// category.
func (s *TrendService) AllGoalsTrends(ctx context.Context, userID string, days int) (map[string][]models.TrendPoint, error) {
	if days <= 0 {
		days = s.options.DefaultDays
	}
	to := s.today()
	from := to.AddDate(0, 0, -(days - 1))

	cacheKey := fmt.Sprintf("scores:%s:trend:all:%d", userID, days)
	var cached map[string][]models.TrendPoint
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	rows, err := s.scores.AllCategoryTrends(ctx, userID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trends")
	}

	trends := make(map[string][]models.TrendPoint)
	for _, row := range rows {
		trends[row.Category] = append(trends[row.Category], models.TrendPoint{Date: row.Date, Score: row.Score})
	}

	s.cacheSet(ctx, cacheKey, trends)
	return trends, nil
}

// WeekOverWeek compares this week's average against last week's for one
// category. This week covers the trailing 7 days, last week the 7 before.
func (s *TrendService) WeekOverWeek(ctx context.Context, userID, category string) (*models.WeekOverWeek, error) {
	today := s.today()

	thisWeek, err := s.scores.CategoryTrend(ctx, userID, category, today.AddDate(0, 0, -6), today)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load this week's scores")
	}
	lastWeek, err := s.scores.CategoryTrend(ctx, userID, category, today.AddDate(0, 0, -13), today.AddDate(0, 0, -7))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load last week's scores")
	}

	result := &models.WeekOverWeek{Category: category, Trend: models.TrendInsufficientData}
	thisAvg := average(thisWeek)
	lastAvg := average(lastWeek)
	if thisAvg == nil || lastAvg == nil {
		result.ThisWeekAvg = thisAvg
		result.LastWeekAvg = lastAvg
		return result, nil
	}

	var change float64
	if *lastAvg == 0 {
		if *thisAvg > 0 {
			change = 100.0
		}
	} else {
		change = (*thisAvg - *lastAvg) / *lastAvg * 100
	}

	switch {
	case change > 5:
		result.Trend = models.TrendImproving
	case change < -5:
		result.Trend = models.TrendDeclining
	default:
		result.Trend = models.TrendStable
	}

	result.ThisWeekAvg = roundTo(*thisAvg, 2)
	result.LastWeekAvg = roundTo(*lastAvg, 2)
	result.PercentageChange = roundTo(change, 1)
	return result, nil
}

// ExportCSV renders the trailing trend window for every category as CSV.
func (s *TrendService) ExportCSV(ctx context.Context, userID string, days int) ([]byte, error) {
	dataset, err := s.exportDataset(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	payload, err := s.csv.Render(*dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
	}
	return payload, nil
}

// ExportPDF renders the trailing trend window for every category as PDF.
func (s *TrendService) ExportPDF(ctx context.Context, userID string, days int) ([]byte, error) {
	dataset, err := s.exportDataset(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	payload, err := s.pdf.Render(*dataset, "Score History")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
	}
	return payload, nil
}

func (s *TrendService) exportDataset(ctx context.Context, userID string, days int) (*export.Dataset, error) {
	if days <= 0 {
		days = s.options.DefaultDays
	}
	to := s.today()
	from := to.AddDate(0, 0, -(days - 1))

	rows, err := s.scores.AllCategoryTrends(ctx, userID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load score history")
	}

	dataset := &export.Dataset{Headers: []string{"date", "category", "score"}}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"date":     row.Date.Format("2006-01-02"),
			"category": row.Category,
			"score":    strconv.FormatFloat(row.Score, 'f', 1, 64),
		})
	}
	return dataset, nil
}

func (s *TrendService) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *TrendService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if !s.options.CacheEnabled || s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("trend cache read failed", zap.String("key", key), zap.Error(err))
	}
	return false
}

func (s *TrendService) cacheSet(ctx context.Context, key string, value interface{}) {
	if !s.options.CacheEnabled || s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.options.CacheTTL); err != nil {
		s.logger.Warn("trend cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func average(points []models.TrendPoint) *float64 {
	if len(points) == 0 {
		return nil
	}
	sum := 0.0
	for _, p := range points {
		sum += p.Score
	}
	avg := sum / float64(len(points))
	return &avg
}

func roundTo(v float64, places int) *float64 {
	factor := math.Pow(10, float64(places))
	rounded := math.Round(v*factor) / factor
	return &rounded
}
