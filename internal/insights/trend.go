package insights

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Dan9191/finance-insights/internal/models"
)

const (
	// trendMonths is how much monthly history trends and averages look at
	trendMonths = 6
	// growthPeriods is how many of the most recent periods the growth rate spans
	growthPeriods = 3
	// weekdayMonths is the trailing window of the weekday spending pattern
	weekdayMonths = 3
	// inconsistencyRatio flags spending whose std-dev exceeds this share of the mean
	inconsistencyRatio = 0.3
)

// ConfidenceFor tiers the number of historical periods backing a value
func ConfidenceFor(periods int) models.Confidence {
	switch {
	case periods >= 6:
		return models.ConfidenceHigh
	case periods >= 3:
		return models.ConfidenceMedium
	}
	return models.ConfidenceLow
}

// GrowthRate is the endpoint-to-endpoint change, in percent, across the most
// recent three periods of totals (oldest first). It is deliberately not a
// regression. Fewer than two periods, or a zero starting period, yield 0.
func GrowthRate(totals []float64) (float64, models.Confidence) {
	if len(totals) < 2 {
		return 0, models.ConfidenceLow
	}
	conf := ConfidenceFor(len(totals))
	recent := totals
	if len(recent) > growthPeriods {
		recent = recent[len(recent)-growthPeriods:]
	}
	first, last := recent[0], recent[len(recent)-1]
	if first == 0 {
		return 0, conf
	}
	return (last - first) / first * 100, conf
}

// MeanStdDev returns the mean and population standard deviation of values
func MeanStdDev(values []float64) (mean, stdDev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}

// Inconsistent reports spending whose deviation exceeds 30% of its mean
func Inconsistent(mean, stdDev float64) bool {
	return mean > 0 && stdDev > inconsistencyRatio*mean
}

// CategoryDeltas compares this month's category totals with last month's.
// Categories without spend last month are left out. Results are ordered by
// the size of the change, largest first.
func CategoryDeltas(current, previous []models.GroupTotal) []models.CategoryDelta {
	prev := make(map[string]float64, len(previous))
	for _, g := range previous {
		prev[g.GroupKey] = g.Total.InexactFloat64()
	}
	var out []models.CategoryDelta
	for _, g := range current {
		p := prev[g.GroupKey]
		if p <= 0 {
			continue
		}
		c := g.Total.InexactFloat64()
		out = append(out, models.CategoryDelta{
			Category:      models.ParseCategory(g.GroupKey),
			Previous:      round2(p),
			Current:       round2(c),
			PercentChange: round2((c - p) / p * 100),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].PercentChange) > math.Abs(out[j].PercentChange)
	})
	return out
}

// WeekendWeekdayAverages returns the mean daily spend on weekend days and on weekdays
func WeekendWeekdayAverages(days []models.WeekdayTotal) (weekend, weekday float64) {
	var nWeekend, nWeekday int
	for _, d := range days {
		avg := d.Average.InexactFloat64()
		if models.IsWeekend(d.Weekday) {
			weekend += avg
			nWeekend++
		} else {
			weekday += avg
			nWeekday++
		}
	}
	if nWeekend > 0 {
		weekend /= float64(nWeekend)
	}
	if nWeekday > 0 {
		weekday /= float64(nWeekday)
	}
	return weekend, weekday
}

// history drops the leading months without any records, so that zero-filled
// months before the user started tracking do not count as history
func history(months []models.MonthlyTotal) []float64 {
	start := len(months)
	for i, m := range months {
		if m.Count > 0 {
			start = i
			break
		}
	}
	out := make([]float64, 0, len(months)-start)
	for _, m := range months[start:] {
		out = append(out, m.Total.InexactFloat64())
	}
	return out
}

// alignedHistories returns income and expense histories over one shared span,
// starting at the first month holding a record of either kind
func alignedHistories(income, expense []models.MonthlyTotal) (incomeHist, expenseHist []float64) {
	n := len(income)
	if len(expense) < n {
		n = len(expense)
	}
	start := n
	for i := 0; i < n; i++ {
		if income[i].Count > 0 || expense[i].Count > 0 {
			start = i
			break
		}
	}
	for i := start; i < n; i++ {
		incomeHist = append(incomeHist, income[i].Total.InexactFloat64())
		expenseHist = append(expenseHist, expense[i].Total.InexactFloat64())
	}
	return incomeHist, expenseHist
}

// Trends builds the trend report of one user as of the given time
func (a *Analyzer) Trends(ctx context.Context, userID int64, asOf time.Time) (*models.TrendReport, error) {
	incomeMonths, err := a.q.MonthlyTrend(ctx, userID, models.KindIncome, trendMonths, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load income trend: %w", err)
	}
	expenseMonths, err := a.q.MonthlyTrend(ctx, userID, models.KindExpense, trendMonths, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load expense trend: %w", err)
	}
	current := models.MonthWindow(asOf)
	previous := models.MonthWindow(current.Start.AddDate(0, -1, 0))
	currentCats, err := a.q.GroupedTotal(ctx, userID, models.KindExpense, current)
	if err != nil {
		return nil, fmt.Errorf("failed to load category totals: %w", err)
	}
	previousCats, err := a.q.GroupedTotal(ctx, userID, models.KindExpense, previous)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous category totals: %w", err)
	}
	weekdays, err := a.q.WeekdayPattern(ctx, userID, weekdayMonths, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekday pattern: %w", err)
	}

	incomeHist := history(incomeMonths)
	expenseHist := history(expenseMonths)
	incomeGrowth, _ := GrowthRate(incomeHist)
	expenseGrowth, conf := GrowthRate(expenseHist)
	mean, std := MeanStdDev(expenseHist)
	weekend, weekday := WeekendWeekdayAverages(weekdays)

	return &models.TrendReport{
		IncomeGrowthRate:  round2(incomeGrowth),
		ExpenseGrowthRate: round2(expenseGrowth),
		Confidence:        conf,
		ExpenseMean:       round2(mean),
		ExpenseStdDev:     round2(std),
		Inconsistent:      Inconsistent(mean, std),
		CategoryDeltas:    CategoryDeltas(currentCats, previousCats),
		Weekdays:          weekdays,
		WeekendDailyAvg:   round2(weekend),
		WeekdayDailyAvg:   round2(weekday),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
