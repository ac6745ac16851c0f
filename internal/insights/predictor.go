package insights

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Dan9191/finance-insights/internal/models"
)

const (
	PredictionMonthEndBalance = "month_end_balance"
	PredictionGoalCompletion  = "goal_completion"
	PredictionNextMonthSpend  = "next_month_expenses"

	// expenseTrendBand is the growth rate, in percent, beyond which spending counts as moving
	expenseTrendBand = 5.0
)

func noData(kind, title string) models.Prediction {
	return models.Prediction{
		Type:        kind,
		Title:       title,
		Confidence:  models.ConfidenceLow,
		Description: "Not enough data to make this prediction yet",
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

// ProjectBalance extrapolates this period's average daily spend to its end and
// subtracts the projected expenses from the income received so far.
func ProjectBalance(income, expenses models.PeriodTotal, asOf time.Time) models.Prediction {
	const title = "Projected Month-End Balance"
	if income.Count == 0 && expenses.Count == 0 {
		return noData(PredictionMonthEndBalance, title)
	}
	day := asOf.Day()
	remaining := models.DaysInMonth(asOf) - day
	spent := expenses.Total.InexactFloat64()
	avgDaily := spent / float64(day)
	projectedExpenses := spent + avgDaily*float64(remaining)
	balance := income.Total.InexactFloat64() - projectedExpenses

	trend := "positive"
	if balance < 0 {
		trend = "negative"
	}
	conf := models.ConfidenceLow
	switch {
	case day >= 20:
		conf = models.ConfidenceHigh
	case day >= 10:
		conf = models.ConfidenceMedium
	}
	return models.Prediction{
		Type:       PredictionMonthEndBalance,
		Title:      title,
		Value:      floatPtr(round2(balance)),
		Confidence: conf,
		Trend:      trend,
		Description: fmt.Sprintf("At %.2f per day, expenses will reach %.2f by month end",
			round2(avgDaily), round2(projectedExpenses)),
	}
}

// GoalHorizonMonths is the number of months needed to save remaining at
// avgMonthlySavings per month. It is nil when nothing is being saved, which
// callers must keep apart from 0 (already reached).
func GoalHorizonMonths(remaining, avgMonthlySavings float64) *int {
	if remaining <= 0 {
		months := 0
		return &months
	}
	if avgMonthlySavings <= 0 {
		return nil
	}
	months := int(math.Ceil(remaining / avgMonthlySavings))
	return &months
}

// ProjectGoalHorizon estimates when all active goals together are reached
func ProjectGoalHorizon(incomeHist, expenseHist []float64, goals []models.SavingsGoal) models.Prediction {
	const title = "Savings Goal Completion"
	if len(goals) == 0 || len(incomeHist) == 0 {
		return noData(PredictionGoalCompletion, title)
	}
	avgIncome, _ := MeanStdDev(incomeHist)
	avgExpense, _ := MeanStdDev(expenseHist)
	avgSavings := math.Max(0, avgIncome-avgExpense)

	var target, current float64
	for _, g := range goals {
		target += g.TargetAmount.InexactFloat64()
		current += g.CurrentAmount.InexactFloat64()
	}
	conf := ConfidenceFor(len(incomeHist))
	months := GoalHorizonMonths(target-current, avgSavings)
	if months == nil {
		return models.Prediction{
			Type:        PredictionGoalCompletion,
			Title:       title,
			Confidence:  conf,
			Trend:       "negative",
			Description: "Expenses match or exceed income, so goals will not be reached at the current pace",
		}
	}
	return models.Prediction{
		Type:       PredictionGoalCompletion,
		Title:      title,
		Value:      floatPtr(float64(*months)),
		Confidence: conf,
		Trend:      "positive",
		Description: fmt.Sprintf("Saving %.2f per month, %.2f remaining across %d goals takes %d months",
			round2(avgSavings), round2(math.Max(0, target-current)), len(goals), *months),
	}
}

// ForecastExpenses applies the expense growth rate to this period's expenses
func ForecastExpenses(current models.PeriodTotal, growthRate float64, conf models.Confidence) models.Prediction {
	const title = "Next Month Expenses"
	if current.Count == 0 {
		return noData(PredictionNextMonthSpend, title)
	}
	trend := "stable"
	switch {
	case growthRate > expenseTrendBand:
		trend = "increasing"
	case growthRate < -expenseTrendBand:
		trend = "decreasing"
	}
	value := current.Total.InexactFloat64() * (1 + growthRate/100)
	return models.Prediction{
		Type:        PredictionNextMonthSpend,
		Title:       title,
		Value:       floatPtr(round2(value)),
		Confidence:  conf,
		Trend:       trend,
		Description: fmt.Sprintf("Spending is %s at %.1f%% over recent months", trend, growthRate),
	}
}

// Predictions computes the three projections for one user
func (a *Analyzer) Predictions(ctx context.Context, userID int64, asOf time.Time) ([]models.Prediction, error) {
	month := models.MonthWindow(asOf)
	income, err := a.q.PeriodTotal(ctx, userID, models.KindIncome, month)
	if err != nil {
		return nil, fmt.Errorf("failed to load income total: %w", err)
	}
	expenses, err := a.q.PeriodTotal(ctx, userID, models.KindExpense, month)
	if err != nil {
		return nil, fmt.Errorf("failed to load expense total: %w", err)
	}
	incomeMonths, err := a.q.MonthlyTrend(ctx, userID, models.KindIncome, trendMonths, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load income trend: %w", err)
	}
	expenseMonths, err := a.q.MonthlyTrend(ctx, userID, models.KindExpense, trendMonths, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load expense trend: %w", err)
	}
	goals, err := a.q.ActiveGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}

	growth, conf := GrowthRate(history(expenseMonths))
	incomeHist, expenseHist := alignedHistories(incomeMonths, expenseMonths)
	return []models.Prediction{
		ProjectBalance(income, expenses, asOf),
		ProjectGoalHorizon(incomeHist, expenseHist, goals),
		ForecastExpenses(expenses, growth, conf),
	}, nil
}
