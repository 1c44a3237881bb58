// Package validation checks a ledger snapshot for structural
// inconsistencies. Every check returns findings as values; nothing here
// fails or mutates the ledger.
package validation

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbook/internal/model"
	"github.com/cleared-dev/cashbook/internal/money"
)

// TransferRef identifies one transfer line.
type TransferRef struct {
	TransactionID int64           `json:"transaction_id"`
	LineID        int64           `json:"line_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// TransferMonth is the transfer balance of one month. Difference is
// out - in and must be exactly zero.
type TransferMonth struct {
	Month      int             `json:"month"`
	Balanced   bool            `json:"is_balanced"`
	TotalOut   decimal.Decimal `json:"total_transfers_out"`
	TotalIn    decimal.Decimal `json:"total_transfers_in"`
	Difference decimal.Decimal `json:"difference"`
	OutCount   int             `json:"transfers_out_count"`
	InCount    int             `json:"transfers_in_count"`
	Out        []TransferRef   `json:"transfers_out"`
	In         []TransferRef   `json:"transfers_in"`
}

type TransferReport struct {
	BusinessID       int64           `json:"business_id"`
	Year             int             `json:"year"`
	Months           []TransferMonth `json:"months"`
	AllBalanced      bool            `json:"all_balanced"`
	UnbalancedMonths []int           `json:"unbalanced_months"`
}

// Month returns the result for month m, if it was checked.
func (r *TransferReport) Month(m int) (TransferMonth, bool) {
	for _, tm := range r.Months {
		if tm.Month == m {
			return tm, true
		}
	}
	return TransferMonth{}, false
}

// Transfers checks that TRANSFER_OUT and TRANSFER_IN lines cancel out in
// every month of year. A non-zero month restricts the check to that month.
func Transfers(l *model.Ledger, year, month int) *TransferReport {
	months := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	if month != 0 {
		months = []int{month}
	}

	r := &TransferReport{
		BusinessID:       l.Business.ID,
		Year:             year,
		AllBalanced:      true,
		UnbalancedMonths: []int{},
	}
	for _, m := range months {
		tm := transferMonth(l, year, m)
		r.Months = append(r.Months, tm)
		if !tm.Balanced {
			r.AllBalanced = false
			r.UnbalancedMonths = append(r.UnbalancedMonths, m)
		}
	}
	return r
}

func transferMonth(l *model.Ledger, year, month int) TransferMonth {
	p := model.MonthPeriod(year, month)
	tm := TransferMonth{
		Month:    month,
		TotalOut: money.Zero(),
		TotalIn:  money.Zero(),
		Out:      []TransferRef{},
		In:       []TransferRef{},
	}
	for _, txn := range l.Transactions {
		if !p.Contains(txn.Date) {
			continue
		}
		for _, line := range txn.Lines {
			ref := TransferRef{TransactionID: txn.ID, LineID: line.ID, Amount: line.Amount}
			switch line.SpecialType {
			case model.SpecialTransferOut:
				tm.TotalOut = tm.TotalOut.Add(line.Amount)
				tm.Out = append(tm.Out, ref)
			case model.SpecialTransferIn:
				tm.TotalIn = tm.TotalIn.Add(line.Amount)
				tm.In = append(tm.In, ref)
			}
		}
	}
	tm.OutCount = len(tm.Out)
	tm.InCount = len(tm.In)
	tm.Difference = tm.TotalOut.Sub(tm.TotalIn)
	tm.Balanced = tm.Difference.IsZero()
	return tm
}
