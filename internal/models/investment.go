package models

import "github.com/shopspring/decimal"

// InvestmentStatus is the lifecycle status of an investment
type InvestmentStatus string

const (
	InvestmentActive  InvestmentStatus = "active"
	InvestmentSold    InvestmentStatus = "sold"
	InvestmentMatured InvestmentStatus = "matured"
)

// Investment represents a holding in one asset class
type Investment struct {
	ID             int64            `json:"id"`
	UserID         int64            `json:"user_id"`
	Name           string           `json:"name"`
	Type           InvestmentType   `json:"type"`
	InvestedAmount decimal.Decimal  `json:"invested_amount"`
	CurrentValue   decimal.Decimal  `json:"current_value"`
	Status         InvestmentStatus `json:"status"`
}

// ProfitLoss is current value minus invested amount
func (i Investment) ProfitLoss() decimal.Decimal {
	return i.CurrentValue.Sub(i.InvestedAmount)
}

// ProfitLossPercentage is the return on the invested amount; zero invested yields 0
func (i Investment) ProfitLossPercentage() float64 {
	if i.InvestedAmount.IsZero() {
		return 0
	}
	return i.ProfitLoss().Div(i.InvestedAmount).Mul(decimal.NewFromInt(100)).InexactFloat64()
}
