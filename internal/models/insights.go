package models

import "time"

// Confidence tells callers how much history backed a trend-derived value
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Priority orders suggestions and notifications
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns 0 for high, 1 for medium and 2 for low
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	}
	return 2
}

// Prediction is one projection. Value is nil when it cannot be computed.
type Prediction struct {
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Value       *float64   `json:"value"`
	Confidence  Confidence `json:"confidence"`
	Trend       string     `json:"trend,omitempty"`
	Description string     `json:"description"`
}

// Suggestion is an actionable cost-saving hint
type Suggestion struct {
	Type            string   `json:"type"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	PotentialSaving *float64 `json:"potentialSaving,omitempty"`
	Priority        Priority `json:"priority"`
}

// FactorStatus is the qualitative band of a health factor
type FactorStatus string

const (
	StatusGood    FactorStatus = "good"
	StatusAverage FactorStatus = "average"
	StatusPoor    FactorStatus = "poor"
)

// HealthFactor is one weighted component of the health score
type HealthFactor struct {
	Name     string       `json:"name"`
	Score    int          `json:"score"`
	MaxScore int          `json:"maxScore"`
	Status   FactorStatus `json:"status"`
}

// HealthScore is the composite financial health score
type HealthScore struct {
	Score            int            `json:"score"`
	MaxScore         int            `json:"maxScore"`
	Grade            string         `json:"grade"`
	GradeDescription string         `json:"gradeDescription"`
	Factors          []HealthFactor `json:"factors"`
}

// CategoryDelta is the month-over-month change of one category
type CategoryDelta struct {
	Category      Category `json:"category"`
	Previous      float64  `json:"previous"`
	Current       float64  `json:"current"`
	PercentChange float64  `json:"percentChange"`
}

// TrendReport summarises spending and income trends
type TrendReport struct {
	IncomeGrowthRate  float64         `json:"incomeGrowthRate"`
	ExpenseGrowthRate float64         `json:"expenseGrowthRate"`
	Confidence        Confidence      `json:"confidence"`
	ExpenseMean       float64         `json:"expenseMean"`
	ExpenseStdDev     float64         `json:"expenseStdDev"`
	Inconsistent      bool            `json:"inconsistentSpending"`
	CategoryDeltas    []CategoryDelta `json:"categoryDeltas"`
	Weekdays          []WeekdayTotal  `json:"weekdayPattern"`
	WeekendDailyAvg   float64         `json:"weekendDailyAverage"`
	WeekdayDailyAvg   float64         `json:"weekdayDailyAverage"`
}

// Section names of the combined insights response
const (
	SectionTrends      = "trends"
	SectionPredictions = "predictions"
	SectionSuggestions = "suggestions"
	SectionHealthScore = "healthScore"
)

// SectionResult records whether one insights branch succeeded
type SectionResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Insights is the combined result for one user. Failed sections are nil and
// flagged in Sections.
type Insights struct {
	UserID      int64                    `json:"userId"`
	GeneratedAt time.Time                `json:"generatedAt"`
	Trends      *TrendReport             `json:"trends"`
	Predictions []Prediction             `json:"predictions"`
	Suggestions []Suggestion             `json:"suggestions"`
	HealthScore *HealthScore             `json:"healthScore"`
	Sections    map[string]SectionResult `json:"sections"`
}

// Complete reports whether every section succeeded
func (i *Insights) Complete() bool {
	for _, s := range i.Sections {
		if !s.OK {
			return false
		}
	}
	return true
}
