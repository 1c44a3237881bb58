package ledgerfile

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/cashbook/internal/chart"
	"github.com/cleared-dev/cashbook/internal/model"
	"github.com/cleared-dev/cashbook/internal/money"
)

// JournalHeader is the header of every YYYY/MM/journal.csv. Each row is one
// allocation line; transaction fields repeat on every line of the same
// transaction. A transaction without lines has a single row with the line
// columns empty.
const JournalHeader = "transaction_id,date,account_id,direction,gross,tax_rate_id,reconciled,payee,description,line_id,category,special_type,amount"

const (
	journalFields  = 13
	dateFormat     = "2006-01-02"
	colTxnID       = 0
	colDate        = 1
	colAccount     = 2
	colDirection   = 3
	colGross       = 4
	colTaxRate     = 5
	colReconciled  = 6
	colPayee       = 7
	colDescription = 8
	colLineID      = 9
	colCategory    = 10
	colSpecial     = 11
	colAmount      = 12
)

// ReadJournal reads journal rows and rebuilds transactions through
// model.NewTransaction, so tax and net are always derived on load. Tax rate
// IDs and category codes are resolved against l.
func ReadJournal(r io.Reader, l *model.Ledger) ([]model.Transaction, error) {
	records, err := readRecords(r, journalFields)
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}

	cats := chart.New(l.Categories)
	seen := make(map[int64]bool)
	var (
		txns    []model.Transaction
		params  *model.NewTransactionParams
		firstAt int
	)
	flush := func() error {
		if params == nil {
			return nil
		}
		if seen[params.ID] {
			return fmt.Errorf("row %d: duplicate transaction %d", firstAt, params.ID)
		}
		seen[params.ID] = true
		txn, err := model.NewTransaction(*params)
		if err != nil {
			return fmt.Errorf("row %d: %w", firstAt, err)
		}
		txns = append(txns, txn)
		params = nil
		return nil
	}

	for i, rec := range records {
		row := i + 2
		id, err := parseID("transaction_id", rec[colTxnID])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if params == nil || params.ID != id {
			if err := flush(); err != nil {
				return nil, err
			}
			p, err := unmarshalTransaction(rec, l)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", row, err)
			}
			p.ID = id
			params = &p
			firstAt = row
		}
		line, ok, err := unmarshalLine(rec, cats)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if ok {
			params.Lines = append(params.Lines, line)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return txns, nil
}

func unmarshalTransaction(rec []string, l *model.Ledger) (model.NewTransactionParams, error) {
	date, err := time.Parse(dateFormat, rec[colDate])
	if err != nil {
		return model.NewTransactionParams{}, fmt.Errorf("parsing date %q: %w", rec[colDate], err)
	}
	acct, err := parseID("account_id", rec[colAccount])
	if err != nil {
		return model.NewTransactionParams{}, err
	}
	if _, ok := l.Account(acct); !ok {
		return model.NewTransactionParams{}, fmt.Errorf("unknown account %d", acct)
	}
	gross, err := money.Parse(rec[colGross])
	if err != nil {
		return model.NewTransactionParams{}, fmt.Errorf("gross: %w", err)
	}
	var rate *model.TaxRate
	if rec[colTaxRate] != "" {
		rid, err := parseID("tax_rate_id", rec[colTaxRate])
		if err != nil {
			return model.NewTransactionParams{}, err
		}
		r, ok := l.TaxRate(rid)
		if !ok {
			return model.NewTransactionParams{}, fmt.Errorf("unknown tax rate %d", rid)
		}
		rate = &r
	}
	reconciled, err := parseBool("reconciled", rec[colReconciled])
	if err != nil {
		return model.NewTransactionParams{}, err
	}
	return model.NewTransactionParams{
		AccountID:   acct,
		Date:        date,
		Direction:   model.Direction(rec[colDirection]),
		Gross:       gross,
		TaxRate:     rate,
		Reconciled:  reconciled,
		Payee:       rec[colPayee],
		Description: rec[colDescription],
	}, nil
}

func unmarshalLine(rec []string, cats *chart.Chart) (model.TransactionLine, bool, error) {
	if rec[colLineID] == "" && rec[colAmount] == "" {
		return model.TransactionLine{}, false, nil
	}
	id, err := parseID("line_id", rec[colLineID])
	if err != nil {
		return model.TransactionLine{}, false, err
	}
	amount, err := money.Parse(rec[colAmount])
	if err != nil {
		return model.TransactionLine{}, false, fmt.Errorf("line amount: %w", err)
	}
	line := model.TransactionLine{ID: id, SpecialType: model.SpecialType(rec[colSpecial]), Amount: amount}
	if code := rec[colCategory]; code != "" {
		cat, ok := cats.ByCode(code)
		if !ok {
			return model.TransactionLine{}, false, fmt.Errorf("unknown category %q", code)
		}
		line.CategoryID = cat.ID
	}
	return line, true, nil
}

// WriteJournal writes transactions, one row per line, with the header.
func WriteJournal(w io.Writer, txns []model.Transaction, l *model.Ledger) error {
	rows, err := marshalJournal(txns, l)
	if err != nil {
		return err
	}
	return writeRecords(w, strings.Split(JournalHeader, ","), rows)
}

func marshalJournal(txns []model.Transaction, l *model.Ledger) ([][]string, error) {
	cats := chart.New(l.Categories)
	var rows [][]string
	for _, txn := range txns {
		base := make([]string, journalFields)
		base[colTxnID] = strconv.FormatInt(txn.ID, 10)
		base[colDate] = txn.Date.Format(dateFormat)
		base[colAccount] = strconv.FormatInt(txn.AccountID, 10)
		base[colDirection] = string(txn.Direction)
		base[colGross] = money.Format(txn.Gross)
		if txn.TaxRateID != 0 {
			base[colTaxRate] = strconv.FormatInt(txn.TaxRateID, 10)
		}
		base[colReconciled] = strconv.FormatBool(txn.Reconciled)
		base[colPayee] = txn.Payee
		base[colDescription] = txn.Description

		if len(txn.Lines) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, line := range txn.Lines {
			row := make([]string, journalFields)
			copy(row, base)
			row[colLineID] = strconv.FormatInt(line.ID, 10)
			if line.CategoryID != 0 {
				cat, ok := cats.Get(line.CategoryID)
				if !ok {
					return nil, fmt.Errorf("transaction %d: unknown category %d", txn.ID, line.CategoryID)
				}
				row[colCategory] = cat.Code
			}
			row[colSpecial] = string(line.SpecialType)
			row[colAmount] = money.Format(line.Amount)
			rows = append(rows, row)
		}
	}
	return rows, nil
}
