package insights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/Dan9191/finance-insights/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
)

var asOf = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func seededStore() *repository.MemoryStore {
	store := repository.NewMemoryStore()
	store.PutUser(models.UserProfile{ID: 1, Email: "ann@example.com", MonthlyIncome: decimal.NewFromInt(200000)})
	for m := 0; m < 4; m++ {
		month := asOf.AddDate(0, -m, 0)
		store.AddIncome(models.IncomeRecord{
			UserID: 1, Amount: decimal.NewFromInt(200000), Source: models.IncomeSalary,
			Date: time.Date(month.Year(), month.Month(), 1, 9, 0, 0, 0, time.UTC),
		})
		store.AddExpense(models.ExpenseRecord{
			UserID: 1, Amount: decimal.NewFromInt(70000), Category: models.CategoryHousing, Necessary: true, Recurring: true,
			Date: time.Date(month.Year(), month.Month(), 2, 9, 0, 0, 0, time.UTC),
		})
	}
	store.AddExpense(models.ExpenseRecord{
		UserID: 1, Amount: decimal.NewFromInt(5000), Category: models.CategoryEntertainment,
		Date: time.Date(2025, 6, 14, 20, 0, 0, 0, time.UTC),
	})
	store.PutGoal(models.SavingsGoal{
		ID: 1, UserID: 1, Category: models.GoalEmergencyFund, Status: models.GoalActive,
		TargetAmount: decimal.NewFromInt(600000), CurrentAmount: decimal.NewFromInt(150000),
	})
	store.PutInvestment(models.Investment{ID: 1, UserID: 1, Type: models.InvestmentETF, Status: models.InvestmentActive})
	return store
}

// failingTrends breaks only the monthly trend query
type failingTrends struct {
	*repository.MemoryStore
}

func (f failingTrends) MonthlyTrend(context.Context, int64, models.RecordKind, int, time.Time) ([]models.MonthlyTotal, error) {
	return nil, errors.New("connection reset")
}

// panickingInvestments panics inside the health branch
type panickingInvestments struct {
	*repository.MemoryStore
}

func (p panickingInvestments) ActiveInvestments(context.Context, int64) ([]models.Investment, error) {
	panic("unexpected nil row")
}

func TestEvaluateReturnsEverySection(t *testing.T) {
	logger, _ := test.NewNullLogger()
	a := NewAnalyzer(seededStore(), logger)

	res := a.Evaluate(context.Background(), 1, asOf)
	if !res.Complete() {
		t.Fatalf("expected every section to succeed, got %+v", res.Sections)
	}
	if res.Trends == nil || res.HealthScore == nil || len(res.Predictions) != 3 {
		t.Fatalf("missing sections in %+v", res)
	}
	if res.Trends.Confidence != models.ConfidenceMedium {
		t.Errorf("expected medium confidence from 4 months, got %s", res.Trends.Confidence)
	}
	if len(res.Suggestions) == 0 || res.Suggestions[0].Priority != models.PriorityHigh {
		t.Errorf("expected high priority suggestions first, got %+v", res.Suggestions)
	}
	for _, s := range res.Suggestions {
		if s.Type == "emergency_fund" {
			t.Error("did not expect an emergency fund suggestion with an active fund")
		}
	}
}

func TestEvaluateIsolatesFailingSections(t *testing.T) {
	logger, hook := test.NewNullLogger()
	a := NewAnalyzer(failingTrends{seededStore()}, logger)

	res := a.Evaluate(context.Background(), 1, asOf)
	for _, failed := range []string{models.SectionTrends, models.SectionPredictions} {
		if res.Sections[failed].OK {
			t.Errorf("expected %s to fail", failed)
		}
	}
	if res.Trends != nil || res.Predictions != nil {
		t.Error("expected failed sections to be absent")
	}
	for _, ok := range []string{models.SectionSuggestions, models.SectionHealthScore} {
		if !res.Sections[ok].OK {
			t.Errorf("expected %s to succeed, got %+v", ok, res.Sections[ok])
		}
	}
	if res.HealthScore == nil || res.Suggestions == nil {
		t.Error("expected independent sections to be present")
	}
	if len(hook.AllEntries()) != 2 {
		t.Errorf("expected one log entry per failed section, got %d", len(hook.AllEntries()))
	}
}

func TestEvaluateRecoversPanickingSection(t *testing.T) {
	logger, _ := test.NewNullLogger()
	a := NewAnalyzer(panickingInvestments{seededStore()}, logger)

	res := a.Evaluate(context.Background(), 1, asOf)
	if res.Sections[models.SectionHealthScore].OK || res.HealthScore != nil {
		t.Fatal("expected health score section to fail")
	}
	if !res.Sections[models.SectionTrends].OK || !res.Sections[models.SectionPredictions].OK {
		t.Error("expected other sections to succeed")
	}
}
