package insights

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Dan9191/finance-insights/internal/models"
)

// HealthInput is everything the health score is computed from
type HealthInput struct {
	MonthlyIncome  float64
	MonthlyExpense float64
	Budgets        []models.Budget
	Goals          []models.SavingsGoal
	Investments    []models.Investment
}

type grade struct {
	min         int
	letter      string
	description string
}

var grades = []grade{
	{85, "A+", "Excellent financial health. Keep up the great habits."},
	{70, "A", "Good financial health with room to optimise."},
	{55, "B", "Fair financial health. A few areas need attention."},
	{40, "C", "Financial health needs improvement."},
	{0, "D", "Poor financial health. Take action on the factors below."},
}

// ScoreHealth combines five capped factors into a score out of 100. Every
// factor is rounded before summing, so the score always equals the sum of the
// reported factors.
func ScoreHealth(in HealthInput) models.HealthScore {
	factors := []models.HealthFactor{
		savingsRateFactor(in.MonthlyIncome, in.MonthlyExpense),
		budgetAdherenceFactor(in.Budgets),
		emergencyFundFactor(in.Goals, in.MonthlyExpense),
		diversificationFactor(in.Investments),
		goalProgressFactor(in.Goals),
	}
	total := 0
	for _, f := range factors {
		total += f.Score
	}
	g := gradeFor(total)
	return models.HealthScore{
		Score:            total,
		MaxScore:         100,
		Grade:            g.letter,
		GradeDescription: g.description,
		Factors:          factors,
	}
}

// gradeFor picks the first grade whose minimum the score reaches
func gradeFor(score int) grade {
	for _, g := range grades {
		if score >= g.min {
			return g
		}
	}
	return grades[len(grades)-1]
}

func clampScore(v float64, limit int) int {
	s := int(math.Round(v))
	if s < 0 {
		return 0
	}
	if s > limit {
		return limit
	}
	return s
}

func band(value, good, average float64) models.FactorStatus {
	switch {
	case value >= good:
		return models.StatusGood
	case value >= average:
		return models.StatusAverage
	}
	return models.StatusPoor
}

// SavingsRate is (income-expense)/income in percent, 0 without income
func SavingsRate(income, expense float64) float64 {
	if income <= 0 {
		return 0
	}
	return (income - expense) / income * 100
}

func savingsRateFactor(income, expense float64) models.HealthFactor {
	rate := SavingsRate(income, expense)
	return models.HealthFactor{
		Name:     "Savings Rate",
		Score:    clampScore(math.Min(25, rate/30*25), 25),
		MaxScore: 25,
		Status:   band(rate, 20, 10),
	}
}

func budgetAdherenceFactor(budgets []models.Budget) models.HealthFactor {
	score := 10
	if len(budgets) > 0 {
		var sum float64
		for _, b := range budgets {
			sum += b.RawUsage()
		}
		avg := sum / float64(len(budgets))
		switch {
		case avg >= 70 && avg <= 90:
			score = 20
		case avg >= 50 && avg < 70:
			score = 17
		case avg > 90 && avg <= 100:
			score = 15
		case avg > 100:
			score = 10
		default:
			score = 12
		}
	}
	return models.HealthFactor{
		Name:     "Budget Adherence",
		Score:    score,
		MaxScore: 20,
		Status:   band(float64(score), 15, 10),
	}
}

// MonthsCovered is how many months of expenses the emergency fund covers.
// Without expenses or an emergency fund it is 0.
func MonthsCovered(goals []models.SavingsGoal, monthlyExpense float64) float64 {
	if monthlyExpense <= 0 {
		return 0
	}
	var saved float64
	for _, g := range goals {
		if g.Category == models.GoalEmergencyFund {
			saved += g.CurrentAmount.InexactFloat64()
		}
	}
	return saved / monthlyExpense
}

func emergencyFundFactor(goals []models.SavingsGoal, monthlyExpense float64) models.HealthFactor {
	months := MonthsCovered(goals, monthlyExpense)
	return models.HealthFactor{
		Name:     "Emergency Fund",
		Score:    clampScore(math.Min(20, months/6*20), 20),
		MaxScore: 20,
		Status:   band(months, 6, 3),
	}
}

func diversificationFactor(investments []models.Investment) models.HealthFactor {
	types := make(map[models.InvestmentType]struct{})
	for _, i := range investments {
		if i.Status == models.InvestmentActive {
			types[i.Type] = struct{}{}
		}
	}
	var score int
	switch n := len(types); {
	case n >= 5:
		score = 20
	case n == 4:
		score = 17
	case n == 3:
		score = 14
	case n == 2:
		score = 10
	case n == 1:
		score = 5
	}
	return models.HealthFactor{
		Name:     "Investment Diversification",
		Score:    score,
		MaxScore: 20,
		Status:   band(float64(score), 15, 10),
	}
}

func goalProgressFactor(goals []models.SavingsGoal) models.HealthFactor {
	var sum float64
	var n int
	for _, g := range goals {
		if g.Status != models.GoalActive {
			continue
		}
		sum += g.Progress()
		n++
	}
	var avg float64
	if n > 0 {
		avg = sum / float64(n)
	}
	return models.HealthFactor{
		Name:     "Goal Progress",
		Score:    clampScore(avg/100*15, 15),
		MaxScore: 15,
		Status:   band(avg, 70, 40),
	}
}

// HealthScore loads this month's figures and scores one user
func (a *Analyzer) HealthScore(ctx context.Context, userID int64, asOf time.Time) (*models.HealthScore, error) {
	month := models.MonthWindow(asOf)
	income, err := a.q.PeriodTotal(ctx, userID, models.KindIncome, month)
	if err != nil {
		return nil, fmt.Errorf("failed to load income total: %w", err)
	}
	expense, err := a.q.PeriodTotal(ctx, userID, models.KindExpense, month)
	if err != nil {
		return nil, fmt.Errorf("failed to load expense total: %w", err)
	}
	budgets, err := a.q.ActiveBudgets(ctx, userID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load budgets: %w", err)
	}
	goals, err := a.q.ActiveGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}
	investments, err := a.q.ActiveInvestments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load investments: %w", err)
	}

	score := ScoreHealth(HealthInput{
		MonthlyIncome:  income.Total.InexactFloat64(),
		MonthlyExpense: expense.Total.InexactFloat64(),
		Budgets:        budgets,
		Goals:          goals,
		Investments:    investments,
	})
	return &score, nil
}
