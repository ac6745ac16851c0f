package models

import "strings"

// Category is an expense category. It is the single grouping key shared by
// aggregation, suggestions and scoring.
type Category string

const (
	CategoryFood           Category = "food"
	CategoryTransportation Category = "transportation"
	CategoryHousing        Category = "housing"
	CategoryUtilities      Category = "utilities"
	CategoryHealthcare     Category = "healthcare"
	CategoryEntertainment  Category = "entertainment"
	CategoryShopping       Category = "shopping"
	CategoryEducation      Category = "education"
	CategoryPersonalCare   Category = "personal_care"
	CategoryTravel         Category = "travel"
	CategoryInsurance      Category = "insurance"
	CategoryDebtPayments   Category = "debt_payments"
	CategorySavings        Category = "savings"
	CategoryGifts          Category = "gifts_donations"
	CategoryBusiness       Category = "business"
	CategoryOther          Category = "other"
)

// Categories lists every expense category in display order
var Categories = []Category{
	CategoryFood, CategoryTransportation, CategoryHousing, CategoryUtilities,
	CategoryHealthcare, CategoryEntertainment, CategoryShopping, CategoryEducation,
	CategoryPersonalCare, CategoryTravel, CategoryInsurance, CategoryDebtPayments,
	CategorySavings, CategoryGifts, CategoryBusiness, CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryFood:           "Food & Dining",
	CategoryTransportation: "Transportation",
	CategoryHousing:        "Housing",
	CategoryUtilities:      "Utilities",
	CategoryHealthcare:     "Healthcare",
	CategoryEntertainment:  "Entertainment",
	CategoryShopping:       "Shopping",
	CategoryEducation:      "Education",
	CategoryPersonalCare:   "Personal Care",
	CategoryTravel:         "Travel",
	CategoryInsurance:      "Insurance",
	CategoryDebtPayments:   "Debt Payments",
	CategorySavings:        "Savings",
	CategoryGifts:          "Gifts & Donations",
	CategoryBusiness:       "Business",
	CategoryOther:          "Other",
}

// ParseCategory normalises a stored category value. Unknown values map to CategoryOther.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := categoryLabels[c]; ok {
		return c
	}
	return CategoryOther
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the human-readable name used in titles and messages
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// IncomeSource is the origin of an income record
type IncomeSource string

const (
	IncomeSalary     IncomeSource = "salary"
	IncomeFreelance  IncomeSource = "freelance"
	IncomeBusiness   IncomeSource = "business"
	IncomeInvestment IncomeSource = "investment"
	IncomeRental     IncomeSource = "rental"
	IncomeGift       IncomeSource = "gift"
	IncomeBonus      IncomeSource = "bonus"
	IncomeOther      IncomeSource = "other"
)

// InvestmentType is the asset class of an investment
type InvestmentType string

const (
	InvestmentStocks       InvestmentType = "stocks"
	InvestmentBonds        InvestmentType = "bonds"
	InvestmentMutualFunds  InvestmentType = "mutual_funds"
	InvestmentETF          InvestmentType = "etf"
	InvestmentCrypto       InvestmentType = "crypto"
	InvestmentRealEstate   InvestmentType = "real_estate"
	InvestmentCommodities  InvestmentType = "commodities"
	InvestmentFixedDeposit InvestmentType = "fixed_deposit"
	InvestmentOther        InvestmentType = "other"
)

// RecordKind selects income or expense records in aggregate queries
type RecordKind string

const (
	KindIncome  RecordKind = "income"
	KindExpense RecordKind = "expense"
)

// ParseRecordKind validates a kind coming from a request
func ParseRecordKind(s string) (RecordKind, bool) {
	switch RecordKind(strings.ToLower(s)) {
	case KindIncome:
		return KindIncome, true
	case KindExpense:
		return KindExpense, true
	}
	return "", false
}

// ExpenseFlag selects a user-asserted subset of expenses
type ExpenseFlag string

const (
	FlagRecurring   ExpenseFlag = "recurring"
	FlagUnnecessary ExpenseFlag = "unnecessary"
)
