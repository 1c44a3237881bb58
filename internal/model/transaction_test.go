package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

var vat = &TaxRate{ID: 7, Name: "VAT 8.1%", Rate: dec("0.081")}

func TestNewTransaction_DerivesTax(t *testing.T) {
	txn, err := NewTransaction(NewTransactionParams{
		ID:        1,
		AccountID: 10,
		Date:      time.Date(2026, 1, 15, 13, 45, 0, 0, time.UTC),
		Direction: DirectionIn,
		Gross:     dec("108.10"),
		TaxRate:   vat,
		Lines:     []TransactionLine{{ID: 1, CategoryID: 3, Amount: dec("100.00")}},
	})
	require.NoError(t, err)

	assert.Equal(t, "8.10", txn.Tax.StringFixed(2))
	assert.Equal(t, "100.00", txn.Net.StringFixed(2))
	assert.True(t, txn.Gross.Equal(txn.Net.Add(txn.Tax)))
	assert.Equal(t, int64(7), txn.TaxRateID)
	assert.Equal(t, int64(1), txn.Lines[0].TransactionID)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), txn.Date)
}

func TestNewTransaction_NoRate(t *testing.T) {
	txn, err := NewTransaction(NewTransactionParams{
		ID:        2,
		Direction: DirectionOut,
		Gross:     dec("200.00"),
	})
	require.NoError(t, err)
	assert.True(t, txn.Tax.IsZero())
	assert.True(t, txn.Net.Equal(dec("200")))
	assert.True(t, txn.Signed().Equal(dec("-200")))
}

func TestNewTransaction_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		params  NewTransactionParams
		wantErr error
	}{
		{
			name:    "negative gross",
			params:  NewTransactionParams{Direction: DirectionIn, Gross: dec("-1.00")},
			wantErr: ErrNegativeGross,
		},
		{
			name:    "bad direction",
			params:  NewTransactionParams{Direction: "sideways", Gross: dec("1.00")},
			wantErr: ErrBadDirection,
		},
		{
			name:    "rate of one",
			params:  NewTransactionParams{Direction: DirectionIn, Gross: dec("1.00"), TaxRate: &TaxRate{Rate: dec("1")}},
			wantErr: ErrRateOutOfRange,
		},
		{
			name:    "negative rate",
			params:  NewTransactionParams{Direction: DirectionIn, Gross: dec("1.00"), TaxRate: &TaxRate{Rate: dec("-0.1")}},
			wantErr: ErrRateOutOfRange,
		},
		{
			name: "line with both discriminators",
			params: NewTransactionParams{Direction: DirectionIn, Gross: dec("1.00"), Lines: []TransactionLine{
				{CategoryID: 1, SpecialType: SpecialCapital, Amount: dec("1.00")},
			}},
			wantErr: ErrLineDiscriminator,
		},
		{
			name: "line with neither discriminator",
			params: NewTransactionParams{Direction: DirectionIn, Gross: dec("1.00"), Lines: []TransactionLine{
				{Amount: dec("1.00")},
			}},
			wantErr: ErrLineDiscriminator,
		},
		{
			name: "zero line amount",
			params: NewTransactionParams{Direction: DirectionIn, Gross: dec("1.00"), Lines: []TransactionLine{
				{SpecialType: SpecialCapital, Amount: decimal.Zero},
			}},
			wantErr: ErrLineAmount,
		},
		{
			name: "unknown special type",
			params: NewTransactionParams{Direction: DirectionIn, Gross: dec("1.00"), Lines: []TransactionLine{
				{SpecialType: "gift", Amount: dec("1.00")},
			}},
			wantErr: ErrUnknownSpecial,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTransaction(tt.params)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRestoreTransaction_KeepsUncheckedLines(t *testing.T) {
	p := NewTransactionParams{
		ID:        7,
		Direction: DirectionOut,
		Gross:     dec("54.05"),
		TaxRate:   vat,
		Lines:     []TransactionLine{{ID: 3, Amount: dec("50.00")}},
	}

	_, err := NewTransaction(p)
	require.ErrorIs(t, err, ErrLineDiscriminator)

	txn, err := RestoreTransaction(p)
	require.NoError(t, err)
	assert.Equal(t, "4.05", txn.Tax.StringFixed(2))
	assert.Equal(t, "50.00", txn.Net.StringFixed(2))
	require.Len(t, txn.Lines, 1)
	assert.Equal(t, int64(7), txn.Lines[0].TransactionID)
	assert.ErrorIs(t, txn.Lines[0].Check(), ErrLineDiscriminator)

	_, err = RestoreTransaction(NewTransactionParams{Direction: DirectionIn, Gross: dec("-1.00")})
	require.ErrorIs(t, err, ErrNegativeGross)
}

func TestSpecialType(t *testing.T) {
	assert.Len(t, SpecialTypes, 10)
	for _, s := range SpecialTypes {
		assert.True(t, s.Valid(), "%s", s)
	}
	assert.False(t, SpecialType("gift").Valid())
	assert.True(t, SpecialTransferIn.IsTransfer())
	assert.True(t, SpecialTransferOut.IsTransfer())
	assert.False(t, SpecialCapital.IsTransfer())
}

func TestAllocated(t *testing.T) {
	txn := Transaction{Lines: []TransactionLine{
		{Amount: dec("60.00")},
		{Amount: dec("40.50")},
	}}
	assert.Equal(t, "100.50", txn.Allocated().StringFixed(2))
	assert.Equal(t, "0.00", Transaction{}.Allocated().StringFixed(2))
}

func TestLedgerLookups(t *testing.T) {
	l := &Ledger{
		Business: Business{ID: 1},
		Accounts: []Account{{ID: 10, Name: "Checking", Type: AccountTypeBank}},
		TaxRates: []TaxRate{*vat},
		Transactions: []Transaction{
			{Lines: []TransactionLine{{}, {}}},
			{Lines: []TransactionLine{{}}},
		},
	}
	a, ok := l.Account(10)
	assert.True(t, ok)
	assert.Equal(t, "Checking", a.Name)
	_, ok = l.Account(99)
	assert.False(t, ok)

	r, ok := l.TaxRate(7)
	assert.True(t, ok)
	assert.Equal(t, "VAT 8.1%", r.Name)

	assert.Equal(t, 3, l.LineCount())
	assert.Equal(t, DefaultCurrency, l.Business.CurrencyOrDefault())
	assert.True(t, AccountTypeCreditCard.Valid())
	assert.True(t, AccountTypeCash.Valid())
	assert.False(t, AccountType("loan").Valid())
}
