package model

import "github.com/shopspring/decimal"

// AccountType classifies money-holding accounts.
type AccountType string

const (
	AccountTypeBank       AccountType = "bank"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeCash       AccountType = "cash"
	AccountTypeAsset      AccountType = "asset"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeBank, AccountTypeCreditCard, AccountTypeCash, AccountTypeAsset:
		return true
	}
	return false
}

// Account is a money-holding account of a business. Only bank and credit card
// accounts contribute to the balance sheet.
type Account struct {
	ID             int64
	BusinessID     int64
	Name           string
	Type           AccountType
	OpeningBalance decimal.Decimal
	Archived       bool
}

// Business owns every other entity.
type Business struct {
	ID       int64
	Name     string
	Currency string
}

// DefaultCurrency is used when a business has none configured.
const DefaultCurrency = "CHF"

// CurrencyOrDefault returns the business currency, falling back to DefaultCurrency.
func (b Business) CurrencyOrDefault() string {
	if b.Currency == "" {
		return DefaultCurrency
	}
	return b.Currency
}
