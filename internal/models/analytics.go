package models

import "github.com/shopspring/decimal"

// PeriodTotal is the sum and count of records in a window
type PeriodTotal struct {
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// GroupTotal is an aggregate for one grouping key (category or income source)
type GroupTotal struct {
	GroupKey string          `json:"group_key"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
	Average  decimal.Decimal `json:"average"`
}

// MonthlyTotal is the aggregate of one calendar month
type MonthlyTotal struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// WeekdayTotal aggregates expenses by day of week. Weekday runs 1 (Sunday) to 7 (Saturday).
// Average is the total per calendar occurrence of that weekday in the window.
type WeekdayTotal struct {
	Weekday int             `json:"weekday"`
	Total   decimal.Decimal `json:"total"`
	Average decimal.Decimal `json:"average"`
	Count   int             `json:"count"`
}

// DailyTotal aggregates one calendar day of a month
type DailyTotal struct {
	Day   int             `json:"day"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// IsWeekend reports whether the weekday number is Sunday or Saturday
func IsWeekend(weekday int) bool {
	return weekday == 1 || weekday == 7
}
