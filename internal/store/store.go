// Package store defines how the engines obtain ledger snapshots.
package store

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/cleared-dev/cashbook/internal/model"
)

// ErrNotFound is returned when a business does not exist.
var ErrNotFound = errors.New("not found")

// Reader hands out immutable per-business snapshots. Implementations must
// give each Snapshot call a consistent view of the ledger.
type Reader interface {
	// CountTransactions returns the number of transactions of a business
	// without materializing them.
	CountTransactions(ctx context.Context, businessID int64) (int, error)
	// Snapshot returns every entity of a business.
	Snapshot(ctx context.Context, businessID int64) (*model.Ledger, error)
}

// Memory is a Reader over ledgers held in memory. Snapshot copies the
// ledger under a read lock so callers never observe a concurrent Put.
type Memory struct {
	mu      sync.RWMutex
	ledgers map[int64]*model.Ledger
}

// NewMemory creates a Memory store holding the given ledgers.
func NewMemory(ledgers ...*model.Ledger) *Memory {
	m := &Memory{ledgers: make(map[int64]*model.Ledger)}
	for _, l := range ledgers {
		m.Put(l)
	}
	return m
}

// Put replaces the ledger of l.Business.ID.
func (m *Memory) Put(l *model.Ledger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledgers[l.Business.ID] = Clone(l)
}

func (m *Memory) CountTransactions(_ context.Context, businessID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.ledgers[businessID]
	if !ok {
		return 0, ErrNotFound
	}
	return len(l.Transactions), nil
}

func (m *Memory) Snapshot(_ context.Context, businessID int64) (*model.Ledger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.ledgers[businessID]
	if !ok {
		return nil, ErrNotFound
	}
	return Clone(l), nil
}

// Clone deep-copies a ledger's slices.
func Clone(l *model.Ledger) *model.Ledger {
	c := &model.Ledger{
		Business:     l.Business,
		Accounts:     slices.Clone(l.Accounts),
		Categories:   slices.Clone(l.Categories),
		TaxRates:     slices.Clone(l.TaxRates),
		Transactions: slices.Clone(l.Transactions),
	}
	for i := range c.Transactions {
		c.Transactions[i].Lines = slices.Clone(c.Transactions[i].Lines)
	}
	return c
}
