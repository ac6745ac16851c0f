package insights

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/Dan9191/finance-insights/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
)

func total(amount int64, count int) models.PeriodTotal {
	return models.PeriodTotal{Total: decimal.NewFromInt(amount), Count: count}
}

func TestProjectBalanceMidMonth(t *testing.T) {
	// June has 30 days; on the 15th, 15 days remain.
	asOf := time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)
	p := ProjectBalance(total(200000, 2), total(70000, 20), asOf)

	if p.Value == nil {
		t.Fatal("expected a projected value")
	}
	if math.Abs(*p.Value-60000) > 0.01 {
		t.Errorf("expected balance 60000, got %v", *p.Value)
	}
	if p.Trend != "positive" {
		t.Errorf("expected positive trend, got %s", p.Trend)
	}
	if p.Confidence != models.ConfidenceMedium {
		t.Errorf("expected medium confidence, got %s", p.Confidence)
	}
}

func TestProjectBalanceNegative(t *testing.T) {
	asOf := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	p := ProjectBalance(total(1000, 1), total(900, 5), asOf)
	if p.Value == nil || *p.Value >= 0 || p.Trend != "negative" {
		t.Errorf("expected negative projection, got %+v", p)
	}
}

func TestProjectBalanceWithoutRecords(t *testing.T) {
	p := ProjectBalance(total(0, 0), total(0, 0), time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	if p.Value != nil || p.Confidence != models.ConfidenceLow {
		t.Errorf("expected no-data prediction, got %+v", p)
	}
}

func TestGoalHorizonMonths(t *testing.T) {
	if got := GoalHorizonMonths(1000, 0); got != nil {
		t.Errorf("expected nil without savings, got %d", *got)
	}
	if got := GoalHorizonMonths(1000, -50); got != nil {
		t.Errorf("expected nil with negative savings, got %d", *got)
	}
	if got := GoalHorizonMonths(0, 0); got == nil || *got != 0 {
		t.Errorf("expected 0 when already reached, got %v", got)
	}
	if got := GoalHorizonMonths(1001, 250); got == nil || *got != 5 {
		t.Errorf("expected 5 months, got %v", got)
	}
}

func TestProjectGoalHorizonKeepsNullDistinct(t *testing.T) {
	goals := []models.SavingsGoal{{
		TargetAmount:  decimal.NewFromInt(10000),
		CurrentAmount: decimal.NewFromInt(4000),
		Status:        models.GoalActive,
	}}

	stalled := ProjectGoalHorizon([]float64{3000, 3000, 3000}, []float64{3500, 3000, 3200}, goals)
	if stalled.Value != nil {
		t.Errorf("expected nil value when spending exceeds income, got %v", *stalled.Value)
	}

	saving := ProjectGoalHorizon([]float64{5000, 5000, 5000}, []float64{4000, 4000, 4000}, goals)
	if saving.Value == nil || *saving.Value != 6 {
		t.Errorf("expected 6 months, got %+v", saving)
	}
	if saving.Confidence != models.ConfidenceMedium {
		t.Errorf("expected medium confidence, got %s", saving.Confidence)
	}

	none := ProjectGoalHorizon([]float64{5000}, []float64{4000}, nil)
	if none.Value != nil || none.Confidence != models.ConfidenceLow {
		t.Errorf("expected no-data prediction without goals, got %+v", none)
	}
}

func TestForecastExpensesTrendLabels(t *testing.T) {
	tests := []struct {
		growth float64
		trend  string
		value  float64
	}{
		{10, "increasing", 1100},
		{-10, "decreasing", 900},
		{5, "stable", 1050},
		{-5, "stable", 950},
	}
	for _, tt := range tests {
		p := ForecastExpenses(total(1000, 4), tt.growth, models.ConfidenceMedium)
		if p.Trend != tt.trend {
			t.Errorf("growth %v: expected %s, got %s", tt.growth, tt.trend, p.Trend)
		}
		if p.Value == nil || math.Abs(*p.Value-tt.value) > 1e-9 {
			t.Errorf("growth %v: expected value %v, got %v", tt.growth, tt.value, p.Value)
		}
	}
	if p := ForecastExpenses(total(0, 0), 20, models.ConfidenceHigh); p.Value != nil || p.Confidence != models.ConfidenceLow {
		t.Errorf("expected no-data forecast, got %+v", p)
	}
}

func TestGoalHorizonAveragesIncomeAndExpensesOverSameMonths(t *testing.T) {
	store := repository.NewMemoryStore()
	for m := time.January; m <= time.June; m++ {
		store.AddExpense(models.ExpenseRecord{
			UserID: 1, Amount: decimal.NewFromInt(30000), Category: models.CategoryHousing,
			Date: time.Date(2025, m, 3, 9, 0, 0, 0, time.UTC),
		})
	}
	store.AddIncome(models.IncomeRecord{
		UserID: 1, Amount: decimal.NewFromInt(50000), Source: models.IncomeSalary,
		Date: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	})
	store.PutGoal(models.SavingsGoal{
		ID: 1, UserID: 1, Category: models.GoalVacation, Status: models.GoalActive,
		TargetAmount: decimal.NewFromInt(100000),
	})

	logger, _ := test.NewNullLogger()
	preds, err := NewAnalyzer(store, logger).Predictions(context.Background(), 1, time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var horizon *models.Prediction
	for i := range preds {
		if preds[i].Type == PredictionGoalCompletion {
			horizon = &preds[i]
		}
	}
	if horizon == nil {
		t.Fatal("missing goal completion prediction")
	}
	if horizon.Value != nil {
		t.Errorf("expected nil horizon when six months of spending outweigh one month of income, got %v", *horizon.Value)
	}
	if horizon.Confidence != models.ConfidenceHigh {
		t.Errorf("expected confidence from the shared six month span, got %s", horizon.Confidence)
	}
}

func TestAlignedHistoriesShareStart(t *testing.T) {
	month := func(m, count int, total int64) models.MonthlyTotal {
		return models.MonthlyTotal{Year: 2025, Month: m, Count: count, Total: decimal.NewFromInt(total)}
	}
	income := []models.MonthlyTotal{month(1, 0, 0), month(2, 0, 0), month(3, 1, 900)}
	expense := []models.MonthlyTotal{month(1, 0, 0), month(2, 2, 400), month(3, 1, 300)}

	in, ex := alignedHistories(income, expense)
	if len(in) != 2 || len(ex) != 2 || in[0] != 0 || ex[0] != 400 {
		t.Errorf("expected both histories to start in February, got %v and %v", in, ex)
	}
	if in, ex := alignedHistories(income[:2], income[:2]); in != nil || ex != nil {
		t.Errorf("expected empty histories without records, got %v and %v", in, ex)
	}
}
