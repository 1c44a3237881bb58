// Package ledgerfile stores a business ledger as a directory of CSV files:
//
//	accounts.csv
//	categories.csv
//	tax-rates.csv
//	YYYY/MM/journal.csv
//
// The directory is meant to live in git, one commit per change.
package ledgerfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/cashbook/internal/model"
	"github.com/cleared-dev/cashbook/internal/store"
)

const (
	AccountsFile   = "accounts.csv"
	CategoriesFile = "categories.csv"
	TaxRatesFile   = "tax-rates.csv"
	JournalFile    = "journal.csv"
)

// Store is a store.Reader over one ledger directory holding one business.
type Store struct {
	root     string
	business model.Business
}

var _ store.Reader = (*Store)(nil)

// New creates a Store rooted at root.
func New(root string, business model.Business) *Store {
	return &Store{root: root, business: business}
}

// Root returns the ledger directory.
func (s *Store) Root() string {
	return s.root
}

// Init writes empty accounts and the given chart and tax rates. Existing
// files are overwritten.
func (s *Store) Init(cats []model.Category, rates []model.TaxRate) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}
	if err := s.writeFile(AccountsFile, func(w io.Writer) error { return WriteAccounts(w, nil) }); err != nil {
		return err
	}
	if err := s.writeFile(CategoriesFile, func(w io.Writer) error { return WriteCategories(w, cats) }); err != nil {
		return err
	}
	return s.writeFile(TaxRatesFile, func(w io.Writer) error { return WriteTaxRates(w, rates) })
}

// SaveAccounts replaces accounts.csv.
func (s *Store) SaveAccounts(accounts []model.Account) error {
	return s.writeFile(AccountsFile, func(w io.Writer) error { return WriteAccounts(w, accounts) })
}

func (s *Store) SaveCategories(cats []model.Category) error {
	return s.writeFile(CategoriesFile, func(w io.Writer) error { return WriteCategories(w, cats) })
}

func (s *Store) SaveTaxRates(rates []model.TaxRate) error {
	return s.writeFile(TaxRatesFile, func(w io.Writer) error { return WriteTaxRates(w, rates) })
}

func (s *Store) CountTransactions(ctx context.Context, businessID int64) (int, error) {
	l, err := s.Snapshot(ctx, businessID)
	if err != nil {
		return 0, err
	}
	return len(l.Transactions), nil
}

// Snapshot loads the whole directory. Every journal row goes through the
// entity construction checks.
func (s *Store) Snapshot(_ context.Context, businessID int64) (*model.Ledger, error) {
	if businessID != s.business.ID {
		return nil, fmt.Errorf("business %d: %w", businessID, store.ErrNotFound)
	}
	return s.Load()
}

// Load reads the ledger of the configured business.
func (s *Store) Load() (*model.Ledger, error) {
	l := &model.Ledger{Business: s.business}
	var err error

	if err = s.readFile(AccountsFile, func(r io.Reader) error {
		l.Accounts, err = ReadAccounts(r, s.business.ID)
		return err
	}); err != nil {
		return nil, err
	}
	if err = s.readFile(CategoriesFile, func(r io.Reader) error {
		l.Categories, err = ReadCategories(r, s.business.ID)
		return err
	}); err != nil {
		return nil, err
	}
	if err = s.readFile(TaxRatesFile, func(r io.Reader) error {
		l.TaxRates, err = ReadTaxRates(r, s.business.ID)
		return err
	}); err != nil {
		return nil, err
	}

	paths, err := s.journalPaths()
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		txns, err := s.readMonth(p, l)
		if err != nil {
			return nil, err
		}
		l.Transactions = append(l.Transactions, txns...)
	}
	return l, nil
}

// journalPaths returns every YYYY/MM/journal.csv in chronological order.
func (s *Store) journalPaths() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(s.root, "[0-9][0-9][0-9][0-9]", "[0-1][0-9]", JournalFile))
	if err != nil {
		return nil, fmt.Errorf("listing journals: %w", err)
	}
	return paths, nil
}

func (s *Store) readMonth(path string, l *model.Ledger) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	defer f.Close()

	txns, err := ReadJournal(f, l)
	if err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", path, err)
	}
	want := filepath.Base(filepath.Dir(filepath.Dir(path))) + "/" + filepath.Base(filepath.Dir(path))
	for _, txn := range txns {
		if got := txn.Date.Format("2006/01"); got != want {
			return nil, fmt.Errorf("journal %s: transaction %d dated %s", path, txn.ID, txn.Date.Format(dateFormat))
		}
	}
	return txns, nil
}

// Add validates and appends a transaction to its month's journal. IDs for the
// transaction and its lines are assigned from the current maxima.
func (s *Store) Add(p model.NewTransactionParams) (model.Transaction, error) {
	txns, err := s.AddAll([]model.NewTransactionParams{p})
	if err != nil {
		return model.Transaction{}, err
	}
	return txns[0], nil
}

// AddAll validates every transaction before writing any of them, then appends
// each to its month's journal in input order.
func (s *Store) AddAll(params []model.NewTransactionParams) ([]model.Transaction, error) {
	l, err := s.Load()
	if err != nil {
		return nil, err
	}

	var maxTxn, maxLine int64
	for _, t := range l.Transactions {
		maxTxn = max(maxTxn, t.ID)
		for _, line := range t.Lines {
			maxLine = max(maxLine, line.ID)
		}
	}

	txns := make([]model.Transaction, 0, len(params))
	var months []string
	byMonth := make(map[string][]model.Transaction)
	for _, p := range params {
		if _, ok := l.Account(p.AccountID); !ok {
			return nil, fmt.Errorf("unknown account %d", p.AccountID)
		}
		maxTxn++
		p.ID = maxTxn
		p.Lines = append([]model.TransactionLine(nil), p.Lines...)
		for i := range p.Lines {
			maxLine++
			p.Lines[i].ID = maxLine
		}
		txn, err := model.NewTransaction(p)
		if err != nil {
			return nil, err
		}
		path := s.monthPath(txn.Date.Year(), int(txn.Date.Month()))
		if _, ok := byMonth[path]; !ok {
			months = append(months, path)
		}
		byMonth[path] = append(byMonth[path], txn)
		txns = append(txns, txn)
	}

	for _, path := range months {
		rows, err := marshalJournal(byMonth[path], l)
		if err != nil {
			return nil, err
		}
		if err := appendJournal(path, rows); err != nil {
			return nil, err
		}
	}
	return txns, nil
}

func appendJournal(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating journal dir: %w", err)
	}
	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	if isNew {
		err = writeRecords(f, strings.Split(JournalHeader, ","), rows)
	} else {
		err = appendRecords(f, rows)
	}
	if err != nil {
		return fmt.Errorf("appending transactions: %w", err)
	}
	return nil
}

// RelPath returns the journal path of a month relative to the ledger root.
func RelPath(year, month int) string {
	return filepath.Join(fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), JournalFile)
}

func (s *Store) monthPath(year, month int) string {
	return filepath.Join(s.root, RelPath(year, month))
}

func (s *Store) readFile(name string, fn func(io.Reader) error) error {
	path := filepath.Join(s.root, name)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()
	if err := fn(f); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (s *Store) writeFile(name string, fn func(io.Writer) error) error {
	f, err := os.Create(filepath.Join(s.root, name))
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return f.Close()
}
