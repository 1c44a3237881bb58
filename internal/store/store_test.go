package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cashbook/internal/ledgertest"
	"github.com/cleared-dev/cashbook/internal/model"
)

func TestMemory(t *testing.T) {
	b := ledgertest.New(t)
	bank := b.Bank("Checking", "10.00")
	b.In(bank, ledgertest.Date(2026, 1, 1), "5.00", ledgertest.Cat("head_1", ""))
	m := NewMemory(b.Ledger())
	ctx := context.Background()

	n, err := m.CountTransactions(ctx, ledgertest.BusinessID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	l, err := m.Snapshot(ctx, ledgertest.BusinessID)
	require.NoError(t, err)
	assert.Equal(t, "Test GmbH", l.Business.Name)
	require.Len(t, l.Transactions, 1)

	_, err = m.Snapshot(ctx, 99)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = m.CountTransactions(ctx, 99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_SnapshotIsolation(t *testing.T) {
	b := ledgertest.New(t)
	bank := b.Bank("Checking", "0.00")
	b.In(bank, ledgertest.Date(2026, 1, 1), "5.00", ledgertest.Cat("head_1", ""))
	m := NewMemory(b.Ledger())

	first, err := m.Snapshot(context.Background(), ledgertest.BusinessID)
	require.NoError(t, err)
	first.Transactions[0].Lines[0].Amount = ledgertest.Dec("999.00")
	first.Accounts = append(first.Accounts, model.Account{ID: 50})

	second, err := m.Snapshot(context.Background(), ledgertest.BusinessID)
	require.NoError(t, err)
	assert.Equal(t, "5.00", second.Transactions[0].Lines[0].Amount.StringFixed(2))
	assert.Len(t, second.Accounts, 1)
}
