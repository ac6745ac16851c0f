package insights

import (
	"testing"
	"time"

	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/shopspring/decimal"
)

func TestSortByPriorityIsStable(t *testing.T) {
	in := []models.Suggestion{
		{Title: "m1", Priority: models.PriorityMedium},
		{Title: "h1", Priority: models.PriorityHigh},
		{Title: "h2", Priority: models.PriorityHigh},
		{Title: "l1", Priority: models.PriorityLow},
	}
	SortByPriority(in)
	want := []string{"h1", "h2", "m1", "l1"}
	for i, title := range want {
		if in[i].Title != title {
			t.Fatalf("position %d: expected %s, got %s", i, title, in[i].Title)
		}
	}
}

func weekdays(weekend, weekday int64) []models.WeekdayTotal {
	out := make([]models.WeekdayTotal, 7)
	for i := range out {
		avg := weekday
		if models.IsWeekend(i + 1) {
			avg = weekend
		}
		out[i] = models.WeekdayTotal{Weekday: i + 1, Average: decimal.NewFromInt(avg)}
	}
	return out
}

func TestRankSuggestionsAllRules(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	in := SuggestionInput{
		CategoryTotals: []models.GroupTotal{
			{GroupKey: "food", Total: decimal.NewFromInt(2000)},
			{GroupKey: "travel", Total: decimal.NewFromInt(500)},
		},
		Weekdays:         weekdays(200, 100),
		RecurringTotal:   decimal.NewFromInt(60),
		UnnecessaryTotal: decimal.NewFromInt(150),
		Budgets: []models.Budget{
			{Category: models.CategoryFood, Limit: decimal.NewFromInt(1500), Spent: decimal.NewFromInt(2000), StartDate: start},
			{Category: models.CategoryTravel, Limit: decimal.NewFromInt(1000), Spent: decimal.NewFromInt(500), StartDate: start},
		},
		MonthlyIncome: decimal.NewFromInt(5000),
	}

	got := RankSuggestions(in)
	wantTypes := []string{
		"reduce_top_category", "reduce_unnecessary", "budget_exceeded", "emergency_fund",
		"weekend_spending", "review_subscriptions",
	}
	if len(got) != len(wantTypes) {
		t.Fatalf("expected %d suggestions, got %d: %+v", len(wantTypes), len(got), got)
	}
	for i, typ := range wantTypes {
		if got[i].Type != typ {
			t.Errorf("position %d: expected %s, got %s", i, typ, got[i].Type)
		}
	}
	if s := got[0].PotentialSaving; s == nil || *s != 300 {
		t.Errorf("expected 15%% of 2000 as saving, got %v", s)
	}
	if s := got[4].PotentialSaving; s == nil || *s != 800 {
		t.Errorf("expected (200-100)*8 weekend saving, got %v", s)
	}
	if got[2].Description != "You have reached or passed the limit for: Food & Dining." {
		t.Errorf("unexpected budget description %q", got[2].Description)
	}
}

func TestRankSuggestionsRulesAreIndependent(t *testing.T) {
	in := SuggestionInput{
		Weekdays:      weekdays(100, 100),
		MonthlyIncome: decimal.NewFromInt(4000),
		Goals: []models.SavingsGoal{
			{Category: models.GoalEmergencyFund, Status: models.GoalActive, TargetAmount: decimal.NewFromInt(24000)},
		},
		RecurringTotal: decimal.NewFromInt(30),
	}
	got := RankSuggestions(in)
	if len(got) != 1 || got[0].Type != "review_subscriptions" {
		t.Fatalf("expected only the subscription review, got %+v", got)
	}
	if got[0].PotentialSaving != nil {
		t.Error("expected no potential saving on subscription review")
	}

	if got := RankSuggestions(SuggestionInput{}); len(got) != 0 {
		t.Errorf("expected no suggestions without data, got %+v", got)
	}
}
