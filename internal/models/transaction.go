package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// IncomeRecord represents a single income entry
type IncomeRecord struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Source    IncomeSource    `json:"source"`
	Date      time.Time       `json:"date"`
	Recurring bool            `json:"is_recurring"`
}

// ExpenseRecord represents a single expense entry
type ExpenseRecord struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Category  Category        `json:"category"`
	Date      time.Time       `json:"date"`
	Recurring bool            `json:"is_recurring"`
	Necessary bool            `json:"is_necessary"`
}
