package ledgerfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cashbook/internal/chart"
	"github.com/cleared-dev/cashbook/internal/model"
	"github.com/cleared-dev/cashbook/internal/store"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

var business = model.Business{ID: 1, Name: "Test GmbH", Currency: "CHF"}

func newStore(t *testing.T) *Store {
	t.Helper()
	s := New(t.TempDir(), business)
	require.NoError(t, s.Init(chart.DefaultChart(1), []model.TaxRate{
		{ID: 1, Name: "VAT 8.1%", Rate: dec("0.081"), Default: true},
	}))
	require.NoError(t, s.SaveAccounts([]model.Account{
		{ID: 1, Name: "Checking", Type: model.AccountTypeBank, OpeningBalance: dec("1000.00")},
		{ID: 2, Name: "Visa", Type: model.AccountTypeCreditCard, OpeningBalance: dec("0.00")},
	}))
	return s
}

func TestInitAndLoad(t *testing.T) {
	s := newStore(t)

	l, err := s.Load()
	require.NoError(t, err)

	assert.Equal(t, business, l.Business)
	require.Len(t, l.Accounts, 2)
	assert.Equal(t, "1000.00", l.Accounts[0].OpeningBalance.StringFixed(2))
	assert.Equal(t, int64(1), l.Accounts[0].BusinessID)
	assert.Len(t, l.Categories, 26)
	require.Len(t, l.TaxRates, 1)
	assert.True(t, l.TaxRates[0].Rate.Equal(dec("0.081")))
	assert.True(t, l.TaxRates[0].Default)
	assert.Empty(t, l.Transactions)
}

func TestAdd(t *testing.T) {
	s := newStore(t)
	rate := model.TaxRate{ID: 1, Rate: dec("0.081")}

	first, err := s.Add(model.NewTransactionParams{
		AccountID: 1, Date: date(2026, 1, 10), Direction: model.DirectionIn,
		Gross: dec("108.10"), TaxRate: &rate, Payee: "ACME, Inc.",
		Lines: []model.TransactionLine{{CategoryID: 1, Amount: dec("100.00")}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(1), first.Lines[0].ID)

	second, err := s.Add(model.NewTransactionParams{
		AccountID: 1, Date: date(2026, 1, 12), Direction: model.DirectionOut, Gross: dec("300.00"),
		Lines: []model.TransactionLine{
			{CategoryID: 12, Amount: dec("200.00")},
			{SpecialType: model.SpecialDrawings, Amount: dec("100.00")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, int64(3), second.Lines[1].ID)

	_, err = s.Add(model.NewTransactionParams{AccountID: 1, Date: date(2026, 2, 1), Direction: model.DirectionIn, Gross: dec("5.00")})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(s.Root(), "2026", "01", JournalFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, JournalHeader, lines[0])
	assert.Equal(t, `1,2026-01-10,1,in,108.10,1,false,"ACME, Inc.",,1,head_1,,100.00`, lines[1])
	assert.Equal(t, "2,2026-01-12,1,out,300.00,,false,,,3,,drawings,100.00", lines[3])

	l, err := s.Load()
	require.NoError(t, err)
	require.Len(t, l.Transactions, 3)
	assert.Equal(t, "8.10", l.Transactions[0].Tax.StringFixed(2))
	assert.Equal(t, "100.00", l.Transactions[0].Net.StringFixed(2))
	assert.Equal(t, "ACME, Inc.", l.Transactions[0].Payee)
	assert.Len(t, l.Transactions[1].Lines, 2)
	assert.Empty(t, l.Transactions[2].Lines)
	assert.Equal(t, date(2026, 2, 1), l.Transactions[2].Date)
}

func TestAdd_Rejects(t *testing.T) {
	s := newStore(t)

	_, err := s.Add(model.NewTransactionParams{AccountID: 9, Date: date(2026, 1, 1), Direction: model.DirectionIn, Gross: dec("1.00")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown account 9")

	_, err = s.Add(model.NewTransactionParams{AccountID: 1, Date: date(2026, 1, 1), Direction: model.DirectionIn, Gross: dec("-1.00")})
	require.ErrorIs(t, err, model.ErrNegativeGross)

	_, err = os.Stat(filepath.Join(s.Root(), "2026"))
	assert.True(t, os.IsNotExist(err))
}

func TestSnapshot(t *testing.T) {
	s := newStore(t)

	n, err := s.CountTransactions(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.Snapshot(context.Background(), 2)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestLoad_MissingDirectoryIsEmpty(t *testing.T) {
	l, err := New(filepath.Join(t.TempDir(), "none"), business).Load()
	require.NoError(t, err)
	assert.Empty(t, l.Accounts)
	assert.Empty(t, l.Transactions)
}

func TestLoad_TransactionInWrongMonth(t *testing.T) {
	s := newStore(t)
	path := filepath.Join(s.Root(), "2026", "03", JournalFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(JournalHeader+"\n1,2026-04-01,1,in,5.00,,true,,,1,head_1,,5.00\n"), 0o644))

	_, err := s.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dated 2026-04-01")
}

func TestAddAll(t *testing.T) {
	s := newStore(t)

	txns, err := s.AddAll([]model.NewTransactionParams{
		{AccountID: 1, Date: date(2026, 3, 2), Direction: model.DirectionIn, Gross: dec("50.00"),
			Lines: []model.TransactionLine{{CategoryID: 1, Amount: dec("50.00")}}},
		{AccountID: 2, Date: date(2026, 1, 5), Direction: model.DirectionOut, Gross: dec("20.00")},
		{AccountID: 1, Date: date(2026, 3, 9), Direction: model.DirectionOut, Gross: dec("10.00"),
			Lines: []model.TransactionLine{{CategoryID: 12, Amount: dec("10.00")}}},
	})
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, int64(3), txns[2].ID)
	assert.Equal(t, int64(2), txns[2].Lines[0].ID)

	l, err := s.Load()
	require.NoError(t, err)
	require.Len(t, l.Transactions, 3)
	assert.Equal(t, date(2026, 1, 5), l.Transactions[0].Date)
	assert.Equal(t, int64(1), l.Transactions[1].ID)
}

func TestAddAll_WritesNothingOnError(t *testing.T) {
	s := newStore(t)

	_, err := s.AddAll([]model.NewTransactionParams{
		{AccountID: 1, Date: date(2026, 1, 1), Direction: model.DirectionIn, Gross: dec("1.00")},
		{AccountID: 1, Date: date(2026, 1, 2), Direction: "sideways", Gross: dec("1.00")},
	})
	require.ErrorIs(t, err, model.ErrBadDirection)

	_, err = os.Stat(filepath.Join(s.Root(), "2026"))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveCategoriesAndTaxRates(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.SaveCategories([]model.Category{
		{ID: 1, Code: "sales", Name: "Sales", Type: model.CategoryTypeIncome},
	}))
	require.NoError(t, s.SaveTaxRates(nil))

	l, err := s.Load()
	require.NoError(t, err)
	require.Len(t, l.Categories, 1)
	assert.Equal(t, "sales", l.Categories[0].Code)
	assert.Empty(t, l.TaxRates)
}
