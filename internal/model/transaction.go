package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbook/internal/money"
)

// Direction is the flow of money relative to the owning account.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// SpecialType tags an allocation line that hits the balance sheet directly
// instead of a P&L category.
type SpecialType string

const (
	SpecialCapital       SpecialType = "capital"
	SpecialLoanIn        SpecialType = "loan_in"
	SpecialTransferIn    SpecialType = "transfer_in"
	SpecialTransferOut   SpecialType = "transfer_out"
	SpecialAssetPurchase SpecialType = "asset_purchase"
	SpecialTaxPayment    SpecialType = "tax_payment"
	SpecialLoanRepayment SpecialType = "loan_repayment"
	SpecialDrawings      SpecialType = "drawings"
	SpecialIncomeTax     SpecialType = "income_tax"
	SpecialPayrollTax    SpecialType = "payroll_tax"
)

// SpecialTypes lists the closed set of special types.
var SpecialTypes = []SpecialType{
	SpecialCapital,
	SpecialLoanIn,
	SpecialTransferIn,
	SpecialTransferOut,
	SpecialAssetPurchase,
	SpecialTaxPayment,
	SpecialLoanRepayment,
	SpecialDrawings,
	SpecialIncomeTax,
	SpecialPayrollTax,
}

// Valid reports whether s belongs to the closed set.
func (s SpecialType) Valid() bool {
	for _, t := range SpecialTypes {
		if s == t {
			return true
		}
	}
	return false
}

// IsTransfer reports whether s is TRANSFER_IN or TRANSFER_OUT.
func (s SpecialType) IsTransfer() bool {
	return s == SpecialTransferIn || s == SpecialTransferOut
}

// Transaction is one dated money movement on an account. Gross is
// tax-inclusive; Gross == Net + Tax always holds for values built through
// NewTransaction.
type Transaction struct {
	ID          int64
	AccountID   int64
	Date        time.Time
	Direction   Direction
	Gross       decimal.Decimal
	TaxRateID   int64 // 0 = no tax rate
	Tax         decimal.Decimal
	Net         decimal.Decimal
	Reconciled  bool
	Payee       string
	Description string
	Lines       []TransactionLine
}

// TransactionLine allocates part of a transaction to exactly one of a
// category or a special type.
type TransactionLine struct {
	ID            int64
	TransactionID int64
	CategoryID    int64       // 0 = none
	SpecialType   SpecialType // "" = none
	Amount        decimal.Decimal
}

// Signed returns Gross with the sign of the direction (IN positive).
func (t Transaction) Signed() decimal.Decimal {
	if t.Direction == DirectionOut {
		return t.Gross.Neg()
	}
	return t.Gross
}

// Allocated sums the line amounts.
func (t Transaction) Allocated() decimal.Decimal {
	total := money.Zero()
	for _, l := range t.Lines {
		total = total.Add(l.Amount)
	}
	return total
}

// Construction errors.
var (
	ErrNegativeGross     = errors.New("gross amount must not be negative")
	ErrRateOutOfRange    = errors.New("tax rate must be in [0, 1)")
	ErrBadDirection      = errors.New("direction must be in or out")
	ErrLineAmount        = errors.New("line amount must be positive")
	ErrLineDiscriminator = errors.New("line must have exactly one of category or special type")
	ErrUnknownSpecial    = errors.New("unknown special type")
)

// NewTransactionParams holds the caller-supplied fields of a transaction.
// Tax and net are always derived.
type NewTransactionParams struct {
	ID          int64
	AccountID   int64
	Date        time.Time
	Direction   Direction
	Gross       decimal.Decimal
	TaxRate     *TaxRate
	Reconciled  bool
	Payee       string
	Description string
	Lines       []TransactionLine
}

// NewTransaction checks the construction-boundary contract and derives tax
// and net with money.Split.
func NewTransaction(p NewTransactionParams) (Transaction, error) {
	txn, err := RestoreTransaction(p)
	if err != nil {
		return Transaction{}, err
	}
	for i, l := range txn.Lines {
		if err := l.Check(); err != nil {
			return Transaction{}, fmt.Errorf("transaction %d line %d: %w", p.ID, i, err)
		}
	}
	return txn, nil
}

// RestoreTransaction rebuilds a stored transaction. Direction, gross, and
// rate are checked and tax and net derived as in NewTransaction, but lines
// are kept as stored; the integrity checks report lines failing Check.
func RestoreTransaction(p NewTransactionParams) (Transaction, error) {
	if p.Direction != DirectionIn && p.Direction != DirectionOut {
		return Transaction{}, fmt.Errorf("transaction %d: %w", p.ID, ErrBadDirection)
	}
	if p.Gross.IsNegative() {
		return Transaction{}, fmt.Errorf("transaction %d: %w", p.ID, ErrNegativeGross)
	}
	if !money.HasCents(p.Gross) {
		return Transaction{}, fmt.Errorf("transaction %d gross %s: %w", p.ID, p.Gross, money.ErrTooPrecise)
	}

	rate := money.NoRate
	var rateID int64
	if p.TaxRate != nil {
		if p.TaxRate.Rate.IsNegative() || p.TaxRate.Rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return Transaction{}, fmt.Errorf("transaction %d rate %s: %w", p.ID, p.TaxRate.Rate, ErrRateOutOfRange)
		}
		rate = money.Rate(p.TaxRate.Rate)
		rateID = p.TaxRate.ID
	}

	for i := range p.Lines {
		p.Lines[i].TransactionID = p.ID
	}

	tax, net := money.Split(p.Gross, rate)
	return Transaction{
		ID:          p.ID,
		AccountID:   p.AccountID,
		Date:        Day(p.Date),
		Direction:   p.Direction,
		Gross:       p.Gross,
		TaxRateID:   rateID,
		Tax:         tax,
		Net:         net,
		Reconciled:  p.Reconciled,
		Payee:       p.Payee,
		Description: p.Description,
		Lines:       p.Lines,
	}, nil
}

// Check enforces the line contract: a positive cent amount and exactly one
// discriminator.
func (l TransactionLine) Check() error {
	if !l.Amount.IsPositive() {
		return ErrLineAmount
	}
	if !money.HasCents(l.Amount) {
		return fmt.Errorf("line amount %s: %w", l.Amount, money.ErrTooPrecise)
	}
	hasCategory := l.CategoryID != 0
	hasSpecial := l.SpecialType != ""
	if hasCategory == hasSpecial {
		return ErrLineDiscriminator
	}
	if hasSpecial && !l.SpecialType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownSpecial, l.SpecialType)
	}
	return nil
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
