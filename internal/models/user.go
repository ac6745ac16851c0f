package models

import "github.com/shopspring/decimal"

// UserProfile carries the per-user settings the insights engine reads
type UserProfile struct {
	ID            int64           `json:"id"`
	Email         string          `json:"email"`
	Username      string          `json:"username"`
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
	RiskTolerance string          `json:"risk_tolerance"`
}
