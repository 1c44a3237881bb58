package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cashbook/internal/ledgertest"
	"github.com/cleared-dev/cashbook/internal/model"
)

// fullYear exercises every balance-sheet line that keeps the equation intact.
func fullYear(t *testing.T) *model.Ledger {
	b := ledgertest.New(t)
	bank := b.Bank("Checking", "1000.00")
	savings := b.Bank("Savings", "0.00")
	card := b.Card("Visa", "0.00")

	b.In(bank, date(2026, 1, 5), "5000.00", special(model.SpecialCapital, ""))
	b.Add(ledgertest.Txn{
		Account: bank, Date: date(2026, 1, 10), Dir: model.DirectionIn, Gross: "1081.00", Rate: "0.081",
		Reconciled: true, Lines: []ledgertest.Line{cat("head_1", "")},
	})
	b.Add(ledgertest.Txn{
		Account: bank, Date: date(2026, 2, 3), Dir: model.DirectionOut, Gross: "540.50", Rate: "0.081",
		Reconciled: true, Lines: []ledgertest.Line{cat("head_12", "")},
	})
	b.In(bank, date(2026, 2, 10), "2000.00", special(model.SpecialLoanIn, ""))
	b.Out(bank, date(2026, 3, 1), "300.00", special(model.SpecialLoanRepayment, ""))
	b.Out(bank, date(2026, 3, 15), "1200.00", special(model.SpecialAssetPurchase, ""))
	b.Out(bank, date(2026, 4, 2), "400.00", special(model.SpecialDrawings, ""))
	b.Out(bank, date(2026, 5, 5), "250.00", special(model.SpecialTransferOut, ""))
	b.In(savings, date(2026, 5, 5), "250.00", special(model.SpecialTransferIn, ""))
	b.Out(card, date(2026, 6, 20), "120.00", cat("head_13", ""))
	b.Out(bank, date(2026, 7, 31), "20.00", special(model.SpecialTaxPayment, ""))
	return b.Ledger()
}

func TestBalanceSheet_EquationHoldsEveryMonth(t *testing.T) {
	r := BalanceSheet(fullYear(t), 2026)

	for m := 1; m <= 12; m++ {
		c := r.Validation[m-1]
		assert.True(t, c.Balanced, "month %d: net assets %s equity %s", m, c.NetAssets, c.Equity)
		assert.True(t, r.Month(m).Assets.Total.Sub(r.Month(m).Liabilities.Total).Equal(r.Month(m).Equity.Total))
	}
	assert.Empty(t, r.Unbalanced())
}

func TestBalanceSheet_YearEnd(t *testing.T) {
	s := BalanceSheet(fullYear(t), 2026).Month(12)

	assert.Equal(t, date(2026, 12, 31), s.AsOf)
	assert.Equal(t, "6620.50", s.Assets.BankAccounts.Total.StringFixed(2))
	require.Len(t, s.Assets.BankAccounts.Accounts, 2)
	assert.Equal(t, "6370.50", s.Assets.BankAccounts.Accounts[0].Balance.StringFixed(2))
	assert.Equal(t, "250.00", s.Assets.BankAccounts.Accounts[1].Balance.StringFixed(2))
	assert.Equal(t, "0.00", s.Assets.Inventory.StringFixed(2))
	assert.Equal(t, "1200.00", s.Assets.AssetPurchases.StringFixed(2))
	assert.Equal(t, "7820.50", s.Assets.Total.StringFixed(2))

	assert.Equal(t, "120.00", s.Liabilities.CreditCards.Total.StringFixed(2))
	assert.Equal(t, "2000.00", s.Liabilities.Loans.Received.StringFixed(2))
	assert.Equal(t, "300.00", s.Liabilities.Loans.Repayments.StringFixed(2))
	assert.Equal(t, "1700.00", s.Liabilities.Loans.Net.StringFixed(2))
	assert.Equal(t, "20.50", s.Liabilities.TaxPayable.VAT.StringFixed(2))
	assert.Equal(t, "20.50", s.Liabilities.TaxPayable.Total.StringFixed(2))
	assert.Equal(t, "1840.50", s.Liabilities.Total.StringFixed(2))

	assert.Equal(t, "5000.00", s.Equity.Capital.StringFixed(2))
	assert.Equal(t, "380.00", s.Equity.CurrentYearProfit.StringFixed(2))
	assert.Equal(t, "1380.00", s.Equity.RetainedEarnings.StringFixed(2))
	assert.Equal(t, "400.00", s.Equity.Drawings.StringFixed(2))
	assert.Equal(t, "5980.00", s.Equity.Total.StringFixed(2))
}

func TestBalanceSheet_CumulativeAsOfMonthEnd(t *testing.T) {
	r := BalanceSheet(fullYear(t), 2026)

	jan := r.Month(1)
	assert.Equal(t, date(2026, 1, 31), jan.AsOf)
	assert.Equal(t, "7081.00", jan.Assets.Total.StringFixed(2))
	assert.Equal(t, "81.00", jan.Liabilities.TaxPayable.VAT.StringFixed(2))
	assert.Equal(t, "1000.00", jan.Equity.CurrentYearProfit.StringFixed(2))

	feb := r.Month(2)
	assert.Equal(t, "40.50", feb.Liabilities.TaxPayable.VAT.StringFixed(2))
	assert.Equal(t, "2000.00", feb.Liabilities.Loans.Net.StringFixed(2))
}

func TestBalanceSheet_FebruaryMonthEnd(t *testing.T) {
	b := ledgertest.New(t)
	bank := b.Bank("Checking", "0.00")
	b.In(bank, date(2024, 2, 29), "10.00", special(model.SpecialCapital, ""))

	leap := BalanceSheet(b.Ledger(), 2024)
	assert.Equal(t, date(2024, 2, 29), leap.Month(2).AsOf)
	assert.Equal(t, "10.00", leap.Month(2).Assets.Total.StringFixed(2))
	assert.Equal(t, "0.00", leap.Month(1).Assets.Total.StringFixed(2))

	plain := BalanceSheet(ledgertest.New(t).Ledger(), 2026)
	assert.Equal(t, date(2026, 2, 28), plain.Month(2).AsOf)
	assert.Equal(t, date(2026, 4, 30), plain.Month(4).AsOf)
}

func TestBalanceSheet_CreditCardsPerAccount(t *testing.T) {
	b := ledgertest.New(t)
	owing := b.Card("Visa", "0.00")
	inCredit := b.Card("Amex", "0.00")
	b.Out(owing, date(2026, 3, 1), "300.00", cat("head_12", ""))
	b.In(inCredit, date(2026, 3, 2), "100.00", cat("head_1", ""))

	s := BalanceSheet(b.Ledger(), 2026).Month(3)

	assert.Equal(t, "300.00", s.Liabilities.CreditCards.Total.StringFixed(2))
	require.Len(t, s.Liabilities.CreditCards.Accounts, 2)
	assert.Equal(t, "-300.00", s.Liabilities.CreditCards.Accounts[0].Balance.StringFixed(2))
	assert.Equal(t, "300.00", s.Liabilities.CreditCards.Accounts[0].Liability.StringFixed(2))
	assert.Equal(t, "100.00", s.Liabilities.CreditCards.Accounts[1].Balance.StringFixed(2))
	assert.Equal(t, "0.00", s.Liabilities.CreditCards.Accounts[1].Liability.StringFixed(2))
}

func TestBalanceSheet_ImbalanceIsReported(t *testing.T) {
	b := ledgertest.New(t)
	bank := b.Bank("Checking", "500.00")
	b.Out(bank, date(2026, 3, 10), "100.00", special(model.SpecialIncomeTax, ""))

	r := BalanceSheet(b.Ledger(), 2026)

	assert.True(t, r.Validation[1].Balanced)
	assert.False(t, r.Validation[2].Balanced)
	assert.Equal(t, "300.00", r.Validation[2].NetAssets.StringFixed(2))
	assert.Equal(t, "500.00", r.Validation[2].Equity.StringFixed(2))
	assert.Equal(t, []int{3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, r.Unbalanced())
	assert.Equal(t, "100.00", r.Month(3).Liabilities.TaxPayable.IncomeTax.StringFixed(2))
}

func TestBalanceSheet_VATOverpaymentFloorsAtZero(t *testing.T) {
	b := ledgertest.New(t)
	bank := b.Bank("Checking", "0.00")
	b.Out(bank, date(2026, 1, 15), "50.00", special(model.SpecialTaxPayment, ""))

	s := BalanceSheet(b.Ledger(), 2026).Month(1)
	assert.Equal(t, "0.00", s.Liabilities.TaxPayable.VAT.StringFixed(2))
}

func TestBalanceSheet_OpeningRetainedEarnings(t *testing.T) {
	b := ledgertest.New(t)
	b.Bank("Checking", "1500.00")
	b.Card("Visa", "200.00")

	s := BalanceSheet(b.Ledger(), 2026).Month(1)
	assert.Equal(t, "1300.00", s.Equity.RetainedEarnings.StringFixed(2))
	assert.Equal(t, "0.00", s.Equity.CurrentYearProfit.StringFixed(2))
}

func TestSnapshotAsOf(t *testing.T) {
	s := SnapshotAsOf(fullYear(t), date(2026, 3, 14))

	assert.Equal(t, date(2026, 3, 14), s.AsOf)
	assert.Equal(t, "0.00", s.Assets.AssetPurchases.StringFixed(2))
	assert.Equal(t, "1700.00", s.Liabilities.Loans.Net.StringFixed(2))
	assert.True(t, s.Check().Balanced)
}
