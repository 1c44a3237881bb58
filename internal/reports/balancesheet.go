package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbook/internal/model"
	"github.com/cleared-dev/cashbook/internal/money"
)

// AccountLine is one account's closing balance inside a snapshot. Liability
// is only set for credit cards.
type AccountLine struct {
	AccountID int64           `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	Liability decimal.Decimal `json:"liability"`
}

// AccountGroup totals a set of account lines.
type AccountGroup struct {
	Total    decimal.Decimal `json:"total"`
	Accounts []AccountLine   `json:"accounts"`
}

type Assets struct {
	Total          decimal.Decimal `json:"total"`
	BankAccounts   AccountGroup    `json:"bank_accounts"`
	Inventory      decimal.Decimal `json:"inventory"`
	AssetPurchases decimal.Decimal `json:"asset_purchases"`
}

type Loans struct {
	Received   decimal.Decimal `json:"received"`
	Repayments decimal.Decimal `json:"repayments"`
	Net        decimal.Decimal `json:"net"`
}

// TaxPayable holds the balance-sheet view of tax owed. VAT is collected tax
// minus all tax on OUT transactions minus TAX_PAYMENT lines, floored at zero.
type TaxPayable struct {
	VAT        decimal.Decimal `json:"vat"`
	IncomeTax  decimal.Decimal `json:"income_tax"`
	PayrollTax decimal.Decimal `json:"payroll_tax"`
	Total      decimal.Decimal `json:"total"`
}

type Liabilities struct {
	Total       decimal.Decimal `json:"total"`
	CreditCards AccountGroup    `json:"credit_cards"`
	Loans       Loans           `json:"loans"`
	TaxPayable  TaxPayable      `json:"tax_payable"`
}

// Equity breaks down owner's equity. RetainedEarnings already includes
// CurrentYearProfit.
type Equity struct {
	Total             decimal.Decimal `json:"total"`
	Capital           decimal.Decimal `json:"capital"`
	RetainedEarnings  decimal.Decimal `json:"retained_earnings"`
	CurrentYearProfit decimal.Decimal `json:"current_year_profit"`
	Drawings          decimal.Decimal `json:"drawings"`
}

// BSSnapshot is the balance sheet as of one date.
type BSSnapshot struct {
	AsOf        time.Time   `json:"as_of_date"`
	Assets      Assets      `json:"assets"`
	Liabilities Liabilities `json:"liabilities"`
	Equity      Equity      `json:"equity"`
}

// BSCheck is the per-month balance equation result. An imbalance is reported,
// never raised.
type BSCheck struct {
	NetAssets decimal.Decimal `json:"net_assets"`
	Equity    decimal.Decimal `json:"equity"`
	Balanced  bool            `json:"balanced"`
}

// Check evaluates assets - liabilities == equity.
func (s BSSnapshot) Check() BSCheck {
	net := s.Assets.Total.Sub(s.Liabilities.Total)
	return BSCheck{NetAssets: net, Equity: s.Equity.Total, Balanced: net.Equal(s.Equity.Total)}
}

// BSReport holds twelve month-end snapshots and their checks.
type BSReport struct {
	BusinessID int64          `json:"business_id"`
	Year       int            `json:"year"`
	Currency   string         `json:"currency"`
	Months     [12]BSSnapshot `json:"months"`
	Validation [12]BSCheck    `json:"validation"`
}

// Month returns the snapshot of month m (1..12).
func (r *BSReport) Month(m int) BSSnapshot {
	return r.Months[m-1]
}

// Unbalanced returns the months whose equation does not hold.
func (r *BSReport) Unbalanced() []int {
	var months []int
	for i, c := range r.Validation {
		if !c.Balanced {
			months = append(months, i+1)
		}
	}
	return months
}

// BalanceSheet computes a snapshot at the last day of every month of year.
func BalanceSheet(l *model.Ledger, year int) *BSReport {
	ix := newIndex(l)
	r := &BSReport{
		BusinessID: l.Business.ID,
		Year:       year,
		Currency:   l.Business.CurrencyOrDefault(),
	}
	opening := ix.openingRetainedEarnings()
	for m := 1; m <= 12; m++ {
		s := ix.snapshot(year, model.MonthEnd(year, m), opening)
		r.Months[m-1] = s
		r.Validation[m-1] = s.Check()
	}
	return r
}

// SnapshotAsOf computes a single balance sheet as of asOf, with current year
// profit counted from January 1 of asOf's year.
func SnapshotAsOf(l *model.Ledger, asOf time.Time) BSSnapshot {
	ix := newIndex(l)
	asOf = model.Day(asOf)
	return ix.snapshot(asOf.Year(), asOf, ix.openingRetainedEarnings())
}

// openingRetainedEarnings approximates prior-year earnings by bank opening
// balances less credit card opening balances.
func (ix *index) openingRetainedEarnings() decimal.Decimal {
	total := money.Zero()
	for _, a := range ix.ledger.Accounts {
		switch a.Type {
		case model.AccountTypeBank:
			total = total.Add(a.OpeningBalance)
		case model.AccountTypeCreditCard:
			total = total.Sub(a.OpeningBalance)
		}
	}
	return total
}

func (ix *index) snapshot(year int, asOf time.Time, openingRetained decimal.Decimal) BSSnapshot {
	upTo := model.Through(asOf)
	s := BSSnapshot{AsOf: asOf}

	s.Assets.BankAccounts = AccountGroup{Total: money.Zero(), Accounts: []AccountLine{}}
	s.Liabilities.CreditCards = AccountGroup{Total: money.Zero(), Accounts: []AccountLine{}}
	for _, a := range ix.ledger.Accounts {
		switch a.Type {
		case model.AccountTypeBank:
			bal := ix.balance(a, upTo)
			s.Assets.BankAccounts.Total = s.Assets.BankAccounts.Total.Add(bal)
			s.Assets.BankAccounts.Accounts = append(s.Assets.BankAccounts.Accounts,
				AccountLine{AccountID: a.ID, Name: a.Name, Balance: bal})
		case model.AccountTypeCreditCard:
			bal := ix.balance(a, upTo)
			owed := money.Zero()
			if bal.IsNegative() {
				owed = bal.Neg()
			}
			s.Liabilities.CreditCards.Total = s.Liabilities.CreditCards.Total.Add(owed)
			s.Liabilities.CreditCards.Accounts = append(s.Liabilities.CreditCards.Accounts,
				AccountLine{AccountID: a.ID, Name: a.Name, Balance: bal, Liability: owed})
		}
	}
	s.Assets.Inventory = money.Zero()
	s.Assets.AssetPurchases = ix.specialTotal(model.SpecialAssetPurchase, upTo)
	s.Assets.Total = money.Sum(s.Assets.BankAccounts.Total, s.Assets.Inventory, s.Assets.AssetPurchases)

	s.Liabilities.Loans.Received = ix.specialTotal(model.SpecialLoanIn, upTo)
	s.Liabilities.Loans.Repayments = ix.specialTotal(model.SpecialLoanRepayment, upTo)
	s.Liabilities.Loans.Net = s.Liabilities.Loans.Received.Sub(s.Liabilities.Loans.Repayments)

	collected, paid := money.Zero(), money.Zero()
	ix.transactions(upTo, func(txn *model.Transaction) {
		if txn.Direction == model.DirectionIn {
			collected = collected.Add(txn.Tax)
		} else {
			paid = paid.Add(txn.Tax)
		}
	})
	paid = paid.Add(ix.specialTotal(model.SpecialTaxPayment, upTo))
	vat := collected.Sub(paid)
	if vat.IsNegative() {
		vat = money.Zero()
	}
	tp := &s.Liabilities.TaxPayable
	tp.VAT = vat
	tp.IncomeTax = ix.specialTotal(model.SpecialIncomeTax, upTo)
	tp.PayrollTax = ix.specialTotal(model.SpecialPayrollTax, upTo)
	tp.Total = money.Sum(tp.VAT, tp.IncomeTax, tp.PayrollTax)

	s.Liabilities.Total = money.Sum(s.Liabilities.CreditCards.Total, s.Liabilities.Loans.Net, tp.Total)

	e := &s.Equity
	e.Capital = ix.specialTotal(model.SpecialCapital, upTo)
	e.Drawings = ix.specialTotal(model.SpecialDrawings, upTo)
	e.CurrentYearProfit = ix.profitAndLoss(model.YearThrough(year, asOf)).NetProfit
	e.RetainedEarnings = openingRetained.Add(e.CurrentYearProfit)
	e.Total = e.Capital.Add(e.RetainedEarnings).Sub(e.Drawings)
	return s
}
