// Package insights turns aggregated financial records into trends,
// predictions, savings suggestions and a composite health score.
package insights

import (
	"context"
	"time"

	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/sirupsen/logrus"
)

// Querier is the read side of the query collaborator the analyzer depends on
type Querier interface {
	PeriodTotal(ctx context.Context, userID int64, kind models.RecordKind, w models.Window) (models.PeriodTotal, error)
	GroupedTotal(ctx context.Context, userID int64, kind models.RecordKind, w models.Window) ([]models.GroupTotal, error)
	MonthlyTrend(ctx context.Context, userID int64, kind models.RecordKind, monthsBack int, asOf time.Time) ([]models.MonthlyTotal, error)
	WeekdayPattern(ctx context.Context, userID int64, monthsBack int, asOf time.Time) ([]models.WeekdayTotal, error)
	FlaggedExpenseTotal(ctx context.Context, userID int64, w models.Window, flag models.ExpenseFlag) (models.PeriodTotal, error)
	ActiveBudgets(ctx context.Context, userID int64, at time.Time) ([]models.Budget, error)
	ActiveGoals(ctx context.Context, userID int64) ([]models.SavingsGoal, error)
	ActiveInvestments(ctx context.Context, userID int64) ([]models.Investment, error)
	UserProfile(ctx context.Context, userID int64) (*models.UserProfile, error)
}

// Analyzer computes per-user insights. It holds no per-user state, so one
// Analyzer serves any number of concurrent evaluations.
type Analyzer struct {
	q   Querier
	log logrus.FieldLogger
}

// NewAnalyzer initializes a new analyzer
func NewAnalyzer(q Querier, log logrus.FieldLogger) *Analyzer {
	return &Analyzer{q: q, log: log}
}
