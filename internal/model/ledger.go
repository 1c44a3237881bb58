package model

// Ledger is an immutable snapshot of one business's entities, as handed to
// the report and validation engines by a store.
type Ledger struct {
	Business     Business
	Accounts     []Account
	Categories   []Category
	TaxRates     []TaxRate
	Transactions []Transaction
}

// Account returns the account with the given ID.
func (l *Ledger) Account(id int64) (Account, bool) {
	for _, a := range l.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

// TaxRate returns the tax rate with the given ID.
func (l *Ledger) TaxRate(id int64) (TaxRate, bool) {
	for _, r := range l.TaxRates {
		if r.ID == id {
			return r, true
		}
	}
	return TaxRate{}, false
}

// LineCount returns the number of allocation lines across all transactions.
func (l *Ledger) LineCount() int {
	n := 0
	for _, t := range l.Transactions {
		n += len(t.Lines)
	}
	return n
}
