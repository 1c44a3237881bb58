// Package ledgertest builds in-memory ledgers for tests. Transactions go
// through model.NewTransaction so fixture tax and net amounts are derived
// exactly as in production.
package ledgertest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cashbook/internal/chart"
	"github.com/cleared-dev/cashbook/internal/model"
	"github.com/cleared-dev/cashbook/internal/money"
)

// BusinessID is the ID of the business every Builder creates.
const BusinessID int64 = 1

// Builder accumulates accounts and transactions for one business.
type Builder struct {
	t        testing.TB
	ledger   model.Ledger
	nextAcct int64
	nextTxn  int64
	nextLine int64
}

// Line describes an allocation. An empty Amount allocates the transaction's
// full net amount.
type Line struct {
	Code    string
	Special model.SpecialType
	Amount  string
}

// Cat allocates to a category code.
func Cat(code, amount string) Line { return Line{Code: code, Amount: amount} }

// Special allocates to a special type.
func Special(s model.SpecialType, amount string) Line { return Line{Special: s, Amount: amount} }

// Txn describes a transaction to add.
type Txn struct {
	Account    int64
	Date       time.Time
	Dir        model.Direction
	Gross      string
	Rate       string // "" = no tax rate
	Reconciled bool
	Lines      []Line
}

// New returns a Builder for business 1 with the default 26-head chart.
func New(t testing.TB) *Builder {
	t.Helper()
	return &Builder{
		t: t,
		ledger: model.Ledger{
			Business:   model.Business{ID: BusinessID, Name: "Test GmbH", Currency: "CHF"},
			Categories: chart.DefaultChart(BusinessID),
		},
	}
}

// WithCategories replaces the chart.
func (b *Builder) WithCategories(cats []model.Category) *Builder {
	b.ledger.Categories = cats
	return b
}

// Bank adds a bank account and returns its ID.
func (b *Builder) Bank(name, opening string) int64 {
	return b.account(name, model.AccountTypeBank, opening)
}

// Card adds a credit card account and returns its ID.
func (b *Builder) Card(name, opening string) int64 {
	return b.account(name, model.AccountTypeCreditCard, opening)
}

func (b *Builder) account(name string, typ model.AccountType, opening string) int64 {
	b.nextAcct++
	b.ledger.Accounts = append(b.ledger.Accounts, model.Account{
		ID:             b.nextAcct,
		BusinessID:     BusinessID,
		Name:           name,
		Type:           typ,
		OpeningBalance: Dec(opening),
	})
	return b.nextAcct
}

// In adds a reconciled IN transaction without tax.
func (b *Builder) In(acct int64, d time.Time, gross string, lines ...Line) int64 {
	return b.Add(Txn{Account: acct, Date: d, Dir: model.DirectionIn, Gross: gross, Reconciled: true, Lines: lines})
}

// Out adds a reconciled OUT transaction without tax.
func (b *Builder) Out(acct int64, d time.Time, gross string, lines ...Line) int64 {
	return b.Add(Txn{Account: acct, Date: d, Dir: model.DirectionOut, Gross: gross, Reconciled: true, Lines: lines})
}

// Add adds a transaction and returns its ID.
func (b *Builder) Add(tx Txn) int64 {
	b.t.Helper()
	b.nextTxn++

	var rate *model.TaxRate
	rateValue := money.NoRate
	if tx.Rate != "" {
		r := b.taxRate(tx.Rate)
		rate = &r
		rateValue = money.Rate(r.Rate)
	}
	_, net := money.Split(Dec(tx.Gross), rateValue)

	lines := make([]model.TransactionLine, 0, len(tx.Lines))
	for _, l := range tx.Lines {
		b.nextLine++
		line := model.TransactionLine{ID: b.nextLine, SpecialType: l.Special, Amount: net}
		if l.Amount != "" {
			line.Amount = Dec(l.Amount)
		}
		if l.Code != "" {
			cat, ok := chart.New(b.ledger.Categories).ByCode(l.Code)
			require.True(b.t, ok, "unknown category %s", l.Code)
			line.CategoryID = cat.ID
		}
		lines = append(lines, line)
	}

	txn, err := model.NewTransaction(model.NewTransactionParams{
		ID:         b.nextTxn,
		AccountID:  tx.Account,
		Date:       tx.Date,
		Direction:  tx.Dir,
		Gross:      Dec(tx.Gross),
		TaxRate:    rate,
		Reconciled: tx.Reconciled,
		Lines:      lines,
	})
	require.NoError(b.t, err)
	b.ledger.Transactions = append(b.ledger.Transactions, txn)
	return txn.ID
}

// AddRaw appends a transaction as-is, bypassing construction checks. Used to
// model inconsistent data arriving from a store.
func (b *Builder) AddRaw(txn model.Transaction) int64 {
	b.nextTxn++
	txn.ID = b.nextTxn
	for i := range txn.Lines {
		b.nextLine++
		txn.Lines[i].ID = b.nextLine
		txn.Lines[i].TransactionID = txn.ID
	}
	b.ledger.Transactions = append(b.ledger.Transactions, txn)
	return txn.ID
}

func (b *Builder) taxRate(rate string) model.TaxRate {
	d := Dec(rate)
	for _, r := range b.ledger.TaxRates {
		if r.Rate.Equal(d) {
			return r
		}
	}
	r := model.TaxRate{
		ID:         int64(len(b.ledger.TaxRates) + 1),
		BusinessID: BusinessID,
		Name:       "VAT " + d.Shift(2).String() + "%",
		Rate:       d,
	}
	b.ledger.TaxRates = append(b.ledger.TaxRates, r)
	return r
}

// Ledger returns the built snapshot.
func (b *Builder) Ledger() *model.Ledger {
	l := b.ledger
	return &l
}

// Dec parses a decimal literal, panicking on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Date returns midnight UTC on the given day.
func Date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}
