package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/finance-insights/internal/alerts"
	"github.com/Dan9191/finance-insights/internal/cache"
	"github.com/Dan9191/finance-insights/internal/config"
	"github.com/Dan9191/finance-insights/internal/insights"
	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/Dan9191/finance-insights/internal/repository"
	"github.com/sirupsen/logrus"
)

// ErrInvalidArgument marks requests rejected before any query runs
var ErrInvalidArgument = errors.New("invalid argument")

const maxWeekdayMonths = 24

// Mailer delivers the monthly digest email
type Mailer interface {
	SendMonthlyReport(to, username string, r models.MonthlyReport) error
}

// Service handles business logic
type Service struct {
	repo     repository.Store
	log      *logrus.Logger
	config   *config.Config
	analyzer *insights.Analyzer
	alerts   *alerts.Evaluator
	cache    *cache.InsightsCache
	mailer   Mailer
	now      func() time.Time
}

// NewService initializes a new service. cache and mailer may be nil.
func NewService(repo repository.Store, log *logrus.Logger, cfg *config.Config, c *cache.InsightsCache, mailer Mailer) *Service {
	return &Service{
		repo:     repo,
		log:      log,
		config:   cfg,
		analyzer: insights.NewAnalyzer(repo, log),
		alerts:   alerts.NewEvaluator(repo, log),
		cache:    c,
		mailer:   mailer,
		now:      time.Now,
	}
}

// GetInsights returns every insight section for a user. Complete results are
// served from cache unless refresh is set.
func (s *Service) GetInsights(ctx context.Context, userID int64, refresh bool) *models.Insights {
	if !refresh {
		if res, ok := s.cache.Get(userID); ok {
			s.log.WithField("user_id", userID).Debug("Insights served from cache")
			return res
		}
	}
	res := s.analyzer.Evaluate(ctx, userID, s.now())
	s.cache.Set(res)
	return res
}

// GetTrends returns the trend report of a user
func (s *Service) GetTrends(ctx context.Context, userID int64) (*models.TrendReport, error) {
	return s.analyzer.Trends(ctx, userID, s.now())
}

// GetPredictions returns the predictions of a user
func (s *Service) GetPredictions(ctx context.Context, userID int64) ([]models.Prediction, error) {
	return s.analyzer.Predictions(ctx, userID, s.now())
}

// GetSuggestions returns the ranked suggestions of a user
func (s *Service) GetSuggestions(ctx context.Context, userID int64) ([]models.Suggestion, error) {
	return s.analyzer.Suggestions(ctx, userID, s.now())
}

// GetHealthScore returns the health score of a user
func (s *Service) GetHealthScore(ctx context.Context, userID int64) (*models.HealthScore, error) {
	return s.analyzer.HealthScore(ctx, userID, s.now())
}

// PeriodTotal sums one record kind inside an inclusive window
func (s *Service) PeriodTotal(ctx context.Context, userID int64, kind models.RecordKind, w models.Window) (models.PeriodTotal, error) {
	if !w.Valid() {
		return models.PeriodTotal{}, fmt.Errorf("%w: window end before start", ErrInvalidArgument)
	}
	return s.repo.PeriodTotal(ctx, userID, kind, w)
}

// GroupedTotal groups one record kind inside an inclusive window
func (s *Service) GroupedTotal(ctx context.Context, userID int64, kind models.RecordKind, w models.Window) ([]models.GroupTotal, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("%w: window end before start", ErrInvalidArgument)
	}
	return s.repo.GroupedTotal(ctx, userID, kind, w)
}

// WeekdayPattern returns expense totals per weekday over the trailing months
func (s *Service) WeekdayPattern(ctx context.Context, userID int64, months int) ([]models.WeekdayTotal, error) {
	if months < 1 || months > maxWeekdayMonths {
		return nil, fmt.Errorf("%w: months must be between 1 and %d", ErrInvalidArgument, maxWeekdayMonths)
	}
	return s.repo.WeekdayPattern(ctx, userID, months, s.now())
}

// DailyTotals returns per-day totals of one calendar month
func (s *Service) DailyTotals(ctx context.Context, userID int64, kind models.RecordKind, year int, month time.Month) ([]models.DailyTotal, error) {
	if month < time.January || month > time.December || year < 1 {
		return nil, fmt.Errorf("%w: bad year or month", ErrInvalidArgument)
	}
	return s.repo.DailyTotals(ctx, userID, kind, year, month, time.UTC)
}
