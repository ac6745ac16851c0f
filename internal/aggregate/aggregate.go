// Package aggregate computes sums, counts and group-bys of financial records
// over closed time windows. The Postgres repository pushes the grouping into
// SQL and uses the Fill* helpers here to complete its results; the in-memory
// store runs everything in this package directly.
package aggregate

import (
	"sort"
	"time"

	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/shopspring/decimal"
)

// Entry is the minimal view of a record needed for aggregation
type Entry struct {
	Key    string
	Amount decimal.Decimal
	Date   time.Time
}

// FromIncome converts income records, keyed by source
func FromIncome(records []models.IncomeRecord) []Entry {
	out := make([]Entry, 0, len(records))
	for _, r := range records {
		out = append(out, Entry{Key: string(r.Source), Amount: r.Amount, Date: r.Date})
	}
	return out
}

// FromExpenses converts expense records, keyed by category
func FromExpenses(records []models.ExpenseRecord) []Entry {
	out := make([]Entry, 0, len(records))
	for _, r := range records {
		out = append(out, Entry{Key: string(r.Category), Amount: r.Amount, Date: r.Date})
	}
	return out
}

// Sum totals the entries inside w. No entries yields a zero total.
func Sum(entries []Entry, w models.Window) models.PeriodTotal {
	res := models.PeriodTotal{Total: decimal.Zero}
	for _, e := range entries {
		if !w.Contains(e.Date) {
			continue
		}
		res.Total = res.Total.Add(e.Amount)
		res.Count++
	}
	return res
}

// Group totals the entries inside w per key, sorted descending by total
func Group(entries []Entry, w models.Window) []models.GroupTotal {
	idx := make(map[string]int)
	var groups []models.GroupTotal
	for _, e := range entries {
		if !w.Contains(e.Date) {
			continue
		}
		i, ok := idx[e.Key]
		if !ok {
			i = len(groups)
			idx[e.Key] = i
			groups = append(groups, models.GroupTotal{GroupKey: e.Key, Total: decimal.Zero})
		}
		groups[i].Total = groups[i].Total.Add(e.Amount)
		groups[i].Count++
	}
	for i := range groups {
		groups[i].Average = groups[i].Total.Div(decimal.NewFromInt(int64(groups[i].Count)))
	}
	SortGroups(groups)
	return groups
}

// SortGroups orders groups by descending total, ties broken by key
func SortGroups(groups []models.GroupTotal) {
	sort.SliceStable(groups, func(i, j int) bool {
		if c := groups[i].Total.Cmp(groups[j].Total); c != 0 {
			return c > 0
		}
		return groups[i].GroupKey < groups[j].GroupKey
	})
}

// ByMonth totals the entries inside w per calendar month, zero-filled and ascending
func ByMonth(entries []Entry, w models.Window) []models.MonthlyTotal {
	var raw []models.MonthlyTotal
	idx := make(map[[2]int]int)
	for _, e := range entries {
		if !w.Contains(e.Date) {
			continue
		}
		d := e.Date.In(w.Start.Location())
		k := [2]int{d.Year(), int(d.Month())}
		i, ok := idx[k]
		if !ok {
			i = len(raw)
			idx[k] = i
			raw = append(raw, models.MonthlyTotal{Year: k[0], Month: k[1], Total: decimal.Zero})
		}
		raw[i].Total = raw[i].Total.Add(e.Amount)
		raw[i].Count++
	}
	return FillMonths(raw, w)
}

// FillMonths returns one entry per calendar month of w in ascending order,
// taking totals from raw and zero elsewhere
func FillMonths(raw []models.MonthlyTotal, w models.Window) []models.MonthlyTotal {
	have := make(map[[2]int]models.MonthlyTotal, len(raw))
	for _, m := range raw {
		have[[2]int{m.Year, m.Month}] = m
	}
	var out []models.MonthlyTotal
	cur := time.Date(w.Start.Year(), w.Start.Month(), 1, 0, 0, 0, 0, w.Start.Location())
	for !cur.After(w.End) {
		k := [2]int{cur.Year(), int(cur.Month())}
		m, ok := have[k]
		if !ok {
			m = models.MonthlyTotal{Year: k[0], Month: k[1], Total: decimal.Zero}
		}
		out = append(out, m)
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}

// WeekdayNumber maps t to 1 (Sunday) through 7 (Saturday)
func WeekdayNumber(t time.Time) int {
	return int(t.Weekday()) + 1
}

// WeekdayOccurrences counts how many times each weekday occurs in w, indexed by weekday number
func WeekdayOccurrences(w models.Window) [8]int {
	var n [8]int
	day := time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, w.Start.Location())
	for !day.After(w.End) {
		n[WeekdayNumber(day)]++
		day = day.AddDate(0, 0, 1)
	}
	return n
}

// ByWeekday totals the entries inside w per weekday
func ByWeekday(entries []Entry, w models.Window) []models.WeekdayTotal {
	raw := make([]models.WeekdayTotal, 0, 7)
	idx := make(map[int]int)
	for _, e := range entries {
		if !w.Contains(e.Date) {
			continue
		}
		wd := WeekdayNumber(e.Date.In(w.Start.Location()))
		i, ok := idx[wd]
		if !ok {
			i = len(raw)
			idx[wd] = i
			raw = append(raw, models.WeekdayTotal{Weekday: wd, Total: decimal.Zero})
		}
		raw[i].Total = raw[i].Total.Add(e.Amount)
		raw[i].Count++
	}
	return FillWeekdays(raw, w)
}

// FillWeekdays returns all seven weekdays in order with Average set to the
// total per occurrence of that weekday in w
func FillWeekdays(raw []models.WeekdayTotal, w models.Window) []models.WeekdayTotal {
	occ := WeekdayOccurrences(w)
	out := make([]models.WeekdayTotal, 7)
	for i := range out {
		out[i] = models.WeekdayTotal{Weekday: i + 1, Total: decimal.Zero, Average: decimal.Zero}
	}
	for _, r := range raw {
		if r.Weekday < 1 || r.Weekday > 7 {
			continue
		}
		out[r.Weekday-1].Total = r.Total
		out[r.Weekday-1].Count = r.Count
	}
	for i := range out {
		if n := occ[i+1]; n > 0 {
			out[i].Average = out[i].Total.Div(decimal.NewFromInt(int64(n)))
		}
	}
	return out
}

// ByDay totals the entries of one calendar month per day, zero-filled
func ByDay(entries []Entry, year int, month time.Month, loc *time.Location) []models.DailyTotal {
	w := models.MonthWindow(time.Date(year, month, 1, 0, 0, 0, 0, loc))
	var raw []models.DailyTotal
	idx := make(map[int]int)
	for _, e := range entries {
		if !w.Contains(e.Date) {
			continue
		}
		d := e.Date.In(loc).Day()
		i, ok := idx[d]
		if !ok {
			i = len(raw)
			idx[d] = i
			raw = append(raw, models.DailyTotal{Day: d, Total: decimal.Zero})
		}
		raw[i].Total = raw[i].Total.Add(e.Amount)
		raw[i].Count++
	}
	return FillDays(raw, w.Start)
}

// FillDays returns one entry per day of the month of monthStart
func FillDays(raw []models.DailyTotal, monthStart time.Time) []models.DailyTotal {
	n := models.DaysInMonth(monthStart)
	out := make([]models.DailyTotal, n)
	for i := range out {
		out[i] = models.DailyTotal{Day: i + 1, Total: decimal.Zero}
	}
	for _, r := range raw {
		if r.Day >= 1 && r.Day <= n {
			out[r.Day-1] = r
		}
	}
	return out
}
