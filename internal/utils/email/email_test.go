package email

import (
	"strings"
	"testing"

	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/shopspring/decimal"
)

func TestMonthlyReportMessage(t *testing.T) {
	r := models.MonthlyReport{
		Year: 2025, Month: 5,
		Income:      decimal.NewFromInt(200000),
		Expense:     decimal.NewFromInt(140000),
		Net:         decimal.NewFromInt(60000),
		TopCategory: models.CategoryHousing,
		TopSpend:    decimal.NewFromInt(70000),
		HealthGrade: "A",
		HealthScore: 74,
	}
	e := MonthlyReportMessage("noreply@example.com", "ann@example.com", "ann", r)

	if e.Subject != "Your financial summary for May 2025" {
		t.Errorf("unexpected subject %q", e.Subject)
	}
	if len(e.To) != 1 || e.To[0] != "ann@example.com" {
		t.Errorf("unexpected recipients %v", e.To)
	}
	body := string(e.Text)
	for _, want := range []string{"Dear ann", "Net: 60000.00", "Housing (70000.00)", "A (74/100)"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q, got:\n%s", want, body)
		}
	}
}

func TestMonthlyReportMessageWithoutSpending(t *testing.T) {
	e := MonthlyReportMessage("noreply@example.com", "bob@example.com", "bob", models.MonthlyReport{Year: 2025, Month: 1, HealthGrade: "D"})
	if strings.Contains(string(e.Text), "Largest spending category") {
		t.Error("did not expect a top category line without spending")
	}
}
