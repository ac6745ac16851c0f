package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoalStatus is the lifecycle status of a savings goal
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalPaused    GoalStatus = "paused"
	GoalCancelled GoalStatus = "cancelled"
)

// GoalCategory distinguishes what a goal saves for
type GoalCategory string

const (
	GoalEmergencyFund GoalCategory = "emergency_fund"
	GoalVacation      GoalCategory = "vacation"
	GoalHome          GoalCategory = "home"
	GoalEducation     GoalCategory = "education"
	GoalRetirement    GoalCategory = "retirement"
	GoalOther         GoalCategory = "other"
)

// SavingsGoal represents a savings target
type SavingsGoal struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	Name          string          `json:"name"`
	Category      GoalCategory    `json:"category"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	TargetDate    time.Time       `json:"target_date"`
	Status        GoalStatus      `json:"status"`
}

// Progress is current/target as a percentage capped at 100; a zero target yields 0
func (g SavingsGoal) Progress() float64 {
	if !g.TargetAmount.IsPositive() {
		return 0
	}
	p := g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).InexactFloat64()
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// Remaining is the amount still to save, never negative
func (g SavingsGoal) Remaining() decimal.Decimal {
	r := g.TargetAmount.Sub(g.CurrentAmount)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}
