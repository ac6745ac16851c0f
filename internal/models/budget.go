package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultWarningThreshold  = 75.0
	DefaultCriticalThreshold = 90.0
)

// AlertState is the per-period alert level of a budget
type AlertState string

const (
	AlertNone     AlertState = "none"
	AlertWarning  AlertState = "warning"
	AlertCritical AlertState = "critical"
)

// Rank orders states so that transitions can only move forward
func (s AlertState) Rank() int {
	switch s {
	case AlertWarning:
		return 1
	case AlertCritical:
		return 2
	}
	return 0
}

// AlertMark is the persisted alert state of a budget. PeriodStart records which
// budget period the state belongs to; a zero PeriodStart means no period yet.
type AlertMark struct {
	State       AlertState `json:"state"`
	PeriodStart time.Time  `json:"period_start"`
	LastAlertAt *time.Time `json:"last_alert_at,omitempty"`
}

// BudgetStatus classifies usage for display and scoring
type BudgetStatus string

const (
	BudgetOnTrack  BudgetStatus = "on_track"
	BudgetWarning  BudgetStatus = "warning"
	BudgetCritical BudgetStatus = "critical"
	BudgetExceeded BudgetStatus = "exceeded"
)

// Budget is a spending limit for one category over one period window
type Budget struct {
	ID                int64           `json:"id"`
	UserID            int64           `json:"user_id"`
	Category          Category        `json:"category"`
	Limit             decimal.Decimal `json:"limit"`
	Spent             decimal.Decimal `json:"spent"`
	StartDate         time.Time       `json:"start_date"`
	EndDate           time.Time       `json:"end_date"`
	WarningThreshold  float64         `json:"warning_threshold"`
	CriticalThreshold float64         `json:"critical_threshold"`
	Alert             AlertMark       `json:"alert"`
}

// WithDefaults fills unset thresholds with the 75/90 defaults
func (b Budget) WithDefaults() Budget {
	if b.WarningThreshold <= 0 {
		b.WarningThreshold = DefaultWarningThreshold
	}
	if b.CriticalThreshold <= 0 {
		b.CriticalThreshold = DefaultCriticalThreshold
	}
	return b
}

// Period returns the budget's window
func (b Budget) Period() Window {
	return Window{Start: b.StartDate, End: b.EndDate}
}

// RawUsage is spent/limit as a percentage, unclamped above 100. A zero limit yields 0.
func (b Budget) RawUsage() float64 {
	if !b.Limit.IsPositive() || !b.Spent.IsPositive() {
		return 0
	}
	return b.Spent.Div(b.Limit).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// UsagePercentage is RawUsage clamped to [0, 100]
func (b Budget) UsagePercentage() float64 {
	u := b.RawUsage()
	if u > 100 {
		return 100
	}
	return u
}

// Status classifies the budget against its thresholds; spending above the limit is exceeded
func (b Budget) Status() BudgetStatus {
	b = b.WithDefaults()
	u := b.RawUsage()
	switch {
	case u > 100:
		return BudgetExceeded
	case u >= b.CriticalThreshold:
		return BudgetCritical
	case u >= b.WarningThreshold:
		return BudgetWarning
	}
	return BudgetOnTrack
}

// CurrentAlertState is the alert state for the budget's current period.
// A state recorded for an earlier period counts as none.
func (b Budget) CurrentAlertState() AlertState {
	if b.Alert.State == "" || !b.Alert.PeriodStart.Equal(b.StartDate) {
		return AlertNone
	}
	return b.Alert.State
}
