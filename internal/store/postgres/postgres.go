// Package postgres reads ledger snapshots from the relational schema
// (businesses, accounts, categories, tax_rates, transactions,
// transaction_lines).
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbook/internal/model"
	"github.com/cleared-dev/cashbook/internal/store"
)

// Store is a store.Reader backed by a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Reader = (*Store)(nil)

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN not set")
	}
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewFromPool wraps an existing pool.
func NewFromPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) CountTransactions(ctx context.Context, businessID int64) (int, error) {
	if _, err := loadBusiness(ctx, s.pool, businessID); err != nil {
		return 0, err
	}
	var n int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.business_id = $1
	`, businessID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}

// Snapshot reads every entity of a business inside one read-only
// repeatable-read transaction, so concurrent writers never produce a torn
// ledger. Tax and net are re-derived from gross and rate.
func (s *Store) Snapshot(ctx context.Context, businessID int64) (*model.Ledger, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	b, err := loadBusiness(ctx, tx, businessID)
	if err != nil {
		return nil, err
	}
	l := &model.Ledger{Business: b}
	if l.Accounts, err = loadAccounts(ctx, tx, businessID); err != nil {
		return nil, err
	}
	if l.Categories, err = loadCategories(ctx, tx, businessID); err != nil {
		return nil, err
	}
	if l.TaxRates, err = loadTaxRates(ctx, tx, businessID); err != nil {
		return nil, err
	}
	if l.Transactions, err = loadTransactions(ctx, tx, l); err != nil {
		return nil, err
	}
	return l, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func loadBusiness(ctx context.Context, q querier, id int64) (model.Business, error) {
	b := model.Business{ID: id}
	err := q.QueryRow(ctx, "SELECT name, currency FROM businesses WHERE id = $1", id).Scan(&b.Name, &b.Currency)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Business{}, fmt.Errorf("business %d: %w", id, store.ErrNotFound)
		}
		return model.Business{}, fmt.Errorf("failed to fetch business: %w", err)
	}
	return b, nil
}

// enum normalizes enum labels, which may be stored as upper-case names.
func enum(s string) string {
	return strings.ToLower(s)
}

func loadAccounts(ctx context.Context, q querier, businessID int64) ([]model.Account, error) {
	rows, err := q.Query(ctx, `
		SELECT id, name, type::text, opening_balance, is_archived
		FROM accounts
		WHERE business_id = $1
		ORDER BY display_order, id
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		a := model.Account{BusinessID: businessID}
		var typ string
		if err := rows.Scan(&a.ID, &a.Name, &typ, &a.OpeningBalance, &a.Archived); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.Type = model.AccountType(enum(typ))
		if !a.Type.Valid() {
			return nil, fmt.Errorf("account %d: unknown type %q", a.ID, typ)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func loadCategories(ctx context.Context, q querier, businessID int64) ([]model.Category, error) {
	rows, err := q.Query(ctx, `
		SELECT id, code, name, type::text, report::text, is_archived
		FROM categories
		WHERE business_id = $1
		ORDER BY display_order, id
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var cats []model.Category
	for rows.Next() {
		c := model.Category{BusinessID: businessID}
		var typ, report string
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &typ, &report, &c.Archived); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.Type = model.CategoryType(enum(typ))
		c.Report = model.ReportType(enum(report))
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func loadTaxRates(ctx context.Context, q querier, businessID int64) ([]model.TaxRate, error) {
	rows, err := q.Query(ctx, `
		SELECT id, name, rate, is_default
		FROM tax_rates
		WHERE business_id = $1
		ORDER BY id
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tax rates: %w", err)
	}
	defer rows.Close()

	var rates []model.TaxRate
	for rows.Next() {
		r := model.TaxRate{BusinessID: businessID}
		if err := rows.Scan(&r.ID, &r.Name, &r.Rate, &r.Default); err != nil {
			return nil, fmt.Errorf("failed to scan tax rate: %w", err)
		}
		rates = append(rates, r)
	}
	return rates, rows.Err()
}

func loadTransactions(ctx context.Context, q querier, l *model.Ledger) ([]model.Transaction, error) {
	lines, err := loadLines(ctx, q, l.Business.ID)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `
		SELECT t.id, t.account_id, t.date, t.direction::text, t.gross_amount, t.tax_rate_id,
		       t.is_reconciled, coalesce(t.payee, ''), coalesce(t.description, '')
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.business_id = $1
		ORDER BY t.date, t.id
	`, l.Business.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var params []model.NewTransactionParams
	for rows.Next() {
		var (
			p      model.NewTransactionParams
			dir    string
			date   time.Time
			gross  decimal.Decimal
			rateID *int64
		)
		if err := rows.Scan(&p.ID, &p.AccountID, &date, &dir, &gross, &rateID, &p.Reconciled, &p.Payee, &p.Description); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		p.Date = date
		p.Direction = model.Direction(enum(dir))
		p.Gross = gross
		if rateID != nil {
			r, ok := l.TaxRate(*rateID)
			if !ok {
				return nil, fmt.Errorf("transaction %d: unknown tax rate %d", p.ID, *rateID)
			}
			p.TaxRate = &r
		}
		p.Lines = lines[p.ID]
		params = append(params, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	return buildTransactions(params)
}

// buildTransactions re-derives tax and net for stored rows. Lines are kept
// even when they fail the line contract, so one bad row surfaces as a
// validation finding instead of failing every report of the business.
func buildTransactions(params []model.NewTransactionParams) ([]model.Transaction, error) {
	txns := make([]model.Transaction, 0, len(params))
	for _, p := range params {
		txn, err := model.RestoreTransaction(p)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func loadLines(ctx context.Context, q querier, businessID int64) (map[int64][]model.TransactionLine, error) {
	rows, err := q.Query(ctx, `
		SELECT tl.id, tl.transaction_id, tl.category_id, tl.special_type::text, tl.amount
		FROM transaction_lines tl
		JOIN transactions t ON t.id = tl.transaction_id
		JOIN accounts a ON a.id = t.account_id
		WHERE a.business_id = $1
		ORDER BY tl.transaction_id, tl.id
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction lines: %w", err)
	}
	defer rows.Close()

	lines := make(map[int64][]model.TransactionLine)
	for rows.Next() {
		var (
			line    model.TransactionLine
			catID   *int64
			special *string
		)
		if err := rows.Scan(&line.ID, &line.TransactionID, &catID, &special, &line.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan transaction line: %w", err)
		}
		if catID != nil {
			line.CategoryID = *catID
		}
		if special != nil {
			line.SpecialType = model.SpecialType(enum(*special))
		}
		lines[line.TransactionID] = append(lines[line.TransactionID], line)
	}
	return lines, rows.Err()
}
