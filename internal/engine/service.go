// Package engine is the boundary the CLI and HTTP API call into. It pulls a
// ledger snapshot from a store.Reader and runs the pure report and
// validation computations over it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/cashbook/internal/model"
	"github.com/cleared-dev/cashbook/internal/reports"
	"github.com/cleared-dev/cashbook/internal/store"
	"github.com/cleared-dev/cashbook/internal/validation"
)

var (
	// ErrRowCapExceeded is returned when a business holds more transactions
	// than Options.MaxRows allows a single computation to scan.
	ErrRowCapExceeded = errors.New("transaction count exceeds row cap")
	// ErrInvalidPeriod is returned for a year or month outside the calendar.
	ErrInvalidPeriod = errors.New("invalid period")
)

// Options configures a Service. MaxRows of zero disables the cap.
type Options struct {
	MaxRows    int
	Validation validation.Options
}

func DefaultOptions() Options {
	return Options{MaxRows: 100000, Validation: validation.DefaultOptions()}
}

// Service runs reports for any business held by its store. It keeps no
// state between calls; every call recomputes from a fresh snapshot.
type Service struct {
	store store.Reader
	log   zerolog.Logger
	opts  Options
}

func NewService(r store.Reader, log zerolog.Logger, opts Options) *Service {
	return &Service{store: r, log: log, opts: opts}
}

// GeneratePL returns the monthly and year-to-date Profit & Loss.
func (s *Service) GeneratePL(ctx context.Context, businessID int64, year int) (*reports.PLReport, error) {
	if err := checkYear(year); err != nil {
		return nil, err
	}
	l, err := s.snapshot(ctx, businessID)
	if err != nil {
		return nil, err
	}
	defer s.timed("pl", l, year)()
	return reports.ProfitAndLoss(l, year), nil
}

// GenerateBalanceSheet returns twelve month-end balance sheets. Months whose
// equation does not hold are logged as warnings and flagged in the report.
func (s *Service) GenerateBalanceSheet(ctx context.Context, businessID int64, year int) (*reports.BSReport, error) {
	if err := checkYear(year); err != nil {
		return nil, err
	}
	l, err := s.snapshot(ctx, businessID)
	if err != nil {
		return nil, err
	}
	done := s.timed("balance_sheet", l, year)
	r := reports.BalanceSheet(l, year)
	done()

	for _, m := range r.Unbalanced() {
		c := r.Validation[m-1]
		s.log.Warn().
			Int64("business", businessID).
			Int("year", year).
			Int("month", m).
			Str("net_assets", c.NetAssets.StringFixed(2)).
			Str("equity", c.Equity.StringFixed(2)).
			Msg("balance sheet does not balance")
	}
	return r, nil
}

// GenerateTaxReport returns monthly sales tax collected, paid, and payable.
func (s *Service) GenerateTaxReport(ctx context.Context, businessID int64, year int) (*reports.TaxReport, error) {
	if err := checkYear(year); err != nil {
		return nil, err
	}
	l, err := s.snapshot(ctx, businessID)
	if err != nil {
		return nil, err
	}
	defer s.timed("tax", l, year)()
	return reports.SalesTax(l, year), nil
}

// ValidateTransfers compares outgoing and incoming transfer lines per month.
// A month of zero checks the whole year.
func (s *Service) ValidateTransfers(ctx context.Context, businessID int64, year, month int) (*validation.TransferReport, error) {
	if err := checkYear(year); err != nil {
		return nil, err
	}
	if err := checkMonth(month); err != nil {
		return nil, err
	}
	l, err := s.snapshot(ctx, businessID)
	if err != nil {
		return nil, err
	}
	defer s.timed("validate_transfers", l, year)()
	return validation.Transfers(l, year, month), nil
}

// ValidateTransactions runs the per-transaction integrity checks. asOf is
// the reference date for reconciliation age.
func (s *Service) ValidateTransactions(ctx context.Context, businessID int64, scope validation.Scope, asOf time.Time) (*validation.TransactionReport, error) {
	if scope.Year != 0 {
		if err := checkYear(scope.Year); err != nil {
			return nil, err
		}
	}
	if err := checkMonth(scope.Month); err != nil {
		return nil, err
	}
	l, err := s.snapshot(ctx, businessID)
	if err != nil {
		return nil, err
	}
	defer s.timed("validate_transactions", l, scope.Year)()
	return validation.Transactions(l, scope, asOf, s.opts.Validation), nil
}

// FullValidation runs the transfer and integrity checks for one year over a
// single snapshot and combines them.
func (s *Service) FullValidation(ctx context.Context, businessID int64, year int, asOf time.Time) (*validation.Summary, error) {
	if err := checkYear(year); err != nil {
		return nil, err
	}
	l, err := s.snapshot(ctx, businessID)
	if err != nil {
		return nil, err
	}
	defer s.timed("full_validation", l, year)()
	transfers := validation.Transfers(l, year, 0)
	txns := validation.Transactions(l, validation.Scope{Year: year}, asOf, s.opts.Validation)
	return validation.Summarize(transfers, txns), nil
}

// AccountBalances returns every account's running balance. A zero asOf
// includes all transactions.
func (s *Service) AccountBalances(ctx context.Context, businessID int64, asOf time.Time) ([]reports.AccountBalance, error) {
	l, err := s.snapshot(ctx, businessID)
	if err != nil {
		return nil, err
	}
	defer s.timed("account_balances", l, asOf.Year())()
	return reports.AccountBalances(l, asOf), nil
}

func (s *Service) snapshot(ctx context.Context, businessID int64) (*model.Ledger, error) {
	if s.opts.MaxRows > 0 {
		n, err := s.store.CountTransactions(ctx, businessID)
		if err != nil {
			return nil, fmt.Errorf("counting transactions: %w", err)
		}
		if n > s.opts.MaxRows {
			return nil, fmt.Errorf("business %d has %d transactions, cap is %d: %w", businessID, n, s.opts.MaxRows, ErrRowCapExceeded)
		}
	}
	l, err := s.store.Snapshot(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}
	return l, nil
}

// timed logs one debug line when the returned func is called.
func (s *Service) timed(op string, l *model.Ledger, year int) func() {
	start := time.Now()
	return func() {
		s.log.Debug().
			Str("op", op).
			Int64("business", l.Business.ID).
			Int("year", year).
			Int("transactions", len(l.Transactions)).
			Dur("duration", time.Since(start)).
			Msg("computed")
	}
}

func checkYear(year int) error {
	if year < 1 || year > 9999 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	return nil
}

func checkMonth(month int) error {
	if month < 0 || month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	return nil
}
