package model

import "github.com/shopspring/decimal"

// CategoryType is the P&L bucket a category belongs to.
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeCOGS    CategoryType = "cogs"
	CategoryTypeExpense CategoryType = "expense"
)

// ReportType is the statement a category is reported on.
type ReportType string

const (
	ReportPL ReportType = "pl"
	ReportBS ReportType = "bs"
)

// Category is a business-scoped head code in the chart.
type Category struct {
	ID         int64
	BusinessID int64
	Code       string // unique per business, e.g. "head_12"
	Name       string
	Type       CategoryType
	Report     ReportType
	Archived   bool
}

// TaxRate is a sales tax / VAT rate in [0, 1).
type TaxRate struct {
	ID         int64
	BusinessID int64
	Name       string
	Rate       decimal.Decimal
	Default    bool
}
