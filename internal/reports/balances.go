package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbook/internal/model"
	"github.com/cleared-dev/cashbook/internal/money"
)

// AccountBalance is the running balance of one account.
type AccountBalance struct {
	AccountID int64             `json:"account_id"`
	Name      string            `json:"account_name"`
	Type      model.AccountType `json:"type"`
	Opening   decimal.Decimal   `json:"opening_balance"`
	TotalIn   decimal.Decimal   `json:"total_in"`
	TotalOut  decimal.Decimal   `json:"total_out"`
	Current   decimal.Decimal   `json:"current_balance"`
}

// AccountBalances returns opening + in - out for every account, in ledger
// order. A zero asOf includes every transaction.
func AccountBalances(l *model.Ledger, asOf time.Time) []AccountBalance {
	ix := newIndex(l)
	var p model.Period
	if asOf.IsZero() {
		p = model.Period{To: time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)}
	} else {
		p = model.Through(asOf)
	}

	out := make([]AccountBalance, 0, len(l.Accounts))
	for _, a := range l.Accounts {
		b := AccountBalance{
			AccountID: a.ID,
			Name:      a.Name,
			Type:      a.Type,
			Opening:   a.OpeningBalance,
			TotalIn:   money.Zero(),
			TotalOut:  money.Zero(),
		}
		for _, txn := range ix.byAccount[a.ID] {
			if !p.Contains(txn.Date) {
				continue
			}
			if txn.Direction == model.DirectionIn {
				b.TotalIn = b.TotalIn.Add(txn.Gross)
			} else {
				b.TotalOut = b.TotalOut.Add(txn.Gross)
			}
		}
		b.Current = b.Opening.Add(b.TotalIn).Sub(b.TotalOut)
		out = append(out, b)
	}
	return out
}
