// Package reports derives period financial statements from a ledger
// snapshot. Every function here is a pure fold over one business's data.
package reports

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbook/internal/chart"
	"github.com/cleared-dev/cashbook/internal/model"
	"github.com/cleared-dev/cashbook/internal/money"
)

// posting pairs an allocation line with its parent transaction.
type posting struct {
	txn  *model.Transaction
	line *model.TransactionLine
}

// index is built once per computation so the per-month folds do not re-walk
// unrelated lines.
type index struct {
	ledger    *model.Ledger
	chart     *chart.Chart
	postings  []posting
	special   map[model.SpecialType][]posting
	byAccount map[int64][]*model.Transaction
}

func newIndex(l *model.Ledger) *index {
	ix := &index{
		ledger:    l,
		chart:     chart.New(l.Categories),
		special:   make(map[model.SpecialType][]posting),
		byAccount: make(map[int64][]*model.Transaction),
	}
	for i := range l.Transactions {
		txn := &l.Transactions[i]
		ix.byAccount[txn.AccountID] = append(ix.byAccount[txn.AccountID], txn)
		for j := range txn.Lines {
			p := posting{txn: txn, line: &txn.Lines[j]}
			ix.postings = append(ix.postings, p)
			if p.line.SpecialType != "" {
				ix.special[p.line.SpecialType] = append(ix.special[p.line.SpecialType], p)
			}
		}
	}
	return ix
}

// specialTotal sums line amounts of one special type inside p.
func (ix *index) specialTotal(s model.SpecialType, p model.Period) decimal.Decimal {
	total := money.Zero()
	for _, ps := range ix.special[s] {
		if p.Contains(ps.txn.Date) {
			total = total.Add(ps.line.Amount)
		}
	}
	return total
}

// balance returns opening balance plus signed gross amounts inside p.
func (ix *index) balance(a model.Account, p model.Period) decimal.Decimal {
	balance := a.OpeningBalance
	for _, txn := range ix.byAccount[a.ID] {
		if p.Contains(txn.Date) {
			balance = balance.Add(txn.Signed())
		}
	}
	return balance
}

// transactions calls fn for every transaction inside p.
func (ix *index) transactions(p model.Period, fn func(*model.Transaction)) {
	for i := range ix.ledger.Transactions {
		txn := &ix.ledger.Transactions[i]
		if p.Contains(txn.Date) {
			fn(txn)
		}
	}
}
