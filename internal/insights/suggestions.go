package insights

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/Dan9191/finance-insights/internal/repository"
	"github.com/shopspring/decimal"
)

const (
	topCategoryCut        = 0.15
	weekendOverspendRatio = 1.3
	weekendDaysPerMonth   = 8
	emergencyFundMonths   = 6
)

// SuggestionInput is everything the ranking rules look at
type SuggestionInput struct {
	CategoryTotals   []models.GroupTotal
	Weekdays         []models.WeekdayTotal
	RecurringTotal   decimal.Decimal
	UnnecessaryTotal decimal.Decimal
	Budgets          []models.Budget
	Goals            []models.SavingsGoal
	MonthlyIncome    decimal.Decimal
}

// RankSuggestions evaluates every rule independently and returns the
// suggestions ordered by priority, keeping rule order within a priority
func RankSuggestions(in SuggestionInput) []models.Suggestion {
	var out []models.Suggestion

	if len(in.CategoryTotals) > 0 && in.CategoryTotals[0].Total.IsPositive() {
		top := in.CategoryTotals[0]
		cat := models.ParseCategory(top.GroupKey)
		total := top.Total.InexactFloat64()
		out = append(out, models.Suggestion{
			Type:            "reduce_top_category",
			Title:           fmt.Sprintf("Cut back on %s", cat.Label()),
			Description:     fmt.Sprintf("%s is your largest expense at %.2f this month. A 15%% reduction frees up %.2f.", cat.Label(), total, total*topCategoryCut),
			PotentialSaving: floatPtr(round2(total * topCategoryCut)),
			Priority:        models.PriorityHigh,
		})
	}

	if weekend, weekday := WeekendWeekdayAverages(in.Weekdays); weekend > 0 && weekend > weekendOverspendRatio*weekday {
		out = append(out, models.Suggestion{
			Type:            "weekend_spending",
			Title:           "Watch weekend spending",
			Description:     fmt.Sprintf("You spend %.2f per weekend day against %.2f on weekdays. Planning weekends ahead narrows the gap.", weekend, weekday),
			PotentialSaving: floatPtr(round2((weekend - weekday) * weekendDaysPerMonth)),
			Priority:        models.PriorityMedium,
		})
	}

	if in.RecurringTotal.IsPositive() {
		out = append(out, models.Suggestion{
			Type:        "review_subscriptions",
			Title:       "Review recurring payments",
			Description: fmt.Sprintf("Recurring expenses total %s this month. Cancel subscriptions you no longer use.", in.RecurringTotal.StringFixed(2)),
			Priority:    models.PriorityMedium,
		})
	}

	if in.UnnecessaryTotal.IsPositive() {
		out = append(out, models.Suggestion{
			Type:            "reduce_unnecessary",
			Title:           "Trim non-essential purchases",
			Description:     fmt.Sprintf("You marked %s of this month's spending as unnecessary.", in.UnnecessaryTotal.StringFixed(2)),
			PotentialSaving: floatPtr(round2(in.UnnecessaryTotal.InexactFloat64())),
			Priority:        models.PriorityHigh,
		})
	}

	var over []string
	for _, b := range in.Budgets {
		if b.RawUsage() >= 100 {
			over = append(over, b.Category.Label())
		}
	}
	if len(over) > 0 {
		out = append(out, models.Suggestion{
			Type:        "budget_exceeded",
			Title:       "Budgets exceeded",
			Description: fmt.Sprintf("You have reached or passed the limit for: %s.", strings.Join(over, ", ")),
			Priority:    models.PriorityHigh,
		})
	}

	if in.MonthlyIncome.IsPositive() && !hasEmergencyFund(in.Goals) {
		target := in.MonthlyIncome.Mul(decimal.NewFromInt(emergencyFundMonths))
		out = append(out, models.Suggestion{
			Type:        "emergency_fund",
			Title:       "Start an emergency fund",
			Description: fmt.Sprintf("Aim for %s, six months of income, set aside for emergencies.", target.StringFixed(2)),
			Priority:    models.PriorityHigh,
		})
	}

	SortByPriority(out)
	return out
}

// SortByPriority orders suggestions high to low, stable within a priority
func SortByPriority(s []models.Suggestion) {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Priority.Rank() < s[j].Priority.Rank()
	})
}

func hasEmergencyFund(goals []models.SavingsGoal) bool {
	for _, g := range goals {
		if g.Category == models.GoalEmergencyFund && g.Status == models.GoalActive {
			return true
		}
	}
	return false
}

// Suggestions loads this month's data and ranks the suggestions for one user
func (a *Analyzer) Suggestions(ctx context.Context, userID int64, asOf time.Time) ([]models.Suggestion, error) {
	month := models.MonthWindow(asOf)
	in := SuggestionInput{}
	var err error

	if in.CategoryTotals, err = a.q.GroupedTotal(ctx, userID, models.KindExpense, month); err != nil {
		return nil, fmt.Errorf("failed to load category totals: %w", err)
	}
	if in.Weekdays, err = a.q.WeekdayPattern(ctx, userID, weekdayMonths, asOf); err != nil {
		return nil, fmt.Errorf("failed to load weekday pattern: %w", err)
	}
	recurring, err := a.q.FlaggedExpenseTotal(ctx, userID, month, models.FlagRecurring)
	if err != nil {
		return nil, fmt.Errorf("failed to load recurring expenses: %w", err)
	}
	in.RecurringTotal = recurring.Total
	unnecessary, err := a.q.FlaggedExpenseTotal(ctx, userID, month, models.FlagUnnecessary)
	if err != nil {
		return nil, fmt.Errorf("failed to load unnecessary expenses: %w", err)
	}
	in.UnnecessaryTotal = unnecessary.Total
	if in.Budgets, err = a.q.ActiveBudgets(ctx, userID, asOf); err != nil {
		return nil, fmt.Errorf("failed to load budgets: %w", err)
	}
	if in.Goals, err = a.q.ActiveGoals(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}
	if in.MonthlyIncome, err = a.monthlyIncome(ctx, userID, month); err != nil {
		return nil, err
	}
	return RankSuggestions(in), nil
}

// monthlyIncome prefers the income declared on the profile and falls back to
// the income recorded this month
func (a *Analyzer) monthlyIncome(ctx context.Context, userID int64, month models.Window) (decimal.Decimal, error) {
	profile, err := a.q.UserProfile(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile != nil && profile.MonthlyIncome.IsPositive() {
		return profile.MonthlyIncome, nil
	}
	income, err := a.q.PeriodTotal(ctx, userID, models.KindIncome, month)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load income total: %w", err)
	}
	return income.Total, nil
}
