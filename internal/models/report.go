package models

import (
	"github.com/shopspring/decimal"
)

// MonthlyReport summarises one user's finished month
type MonthlyReport struct {
	UserID      int64           `json:"user_id"`
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	Income      decimal.Decimal `json:"income"`
	Expense     decimal.Decimal `json:"expense"`
	Net         decimal.Decimal `json:"net"`
	TopCategory Category        `json:"top_category,omitempty"`
	TopSpend    decimal.Decimal `json:"top_spend"`
	HealthGrade string          `json:"health_grade"`
	HealthScore int             `json:"health_score"`
}
