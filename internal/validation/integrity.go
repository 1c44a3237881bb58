package validation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbook/internal/model"
	"github.com/cleared-dev/cashbook/internal/money"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Kind names the check that produced a finding.
type Kind string

const (
	KindMissingAllocation  Kind = "missing_allocation"
	KindInvalidAllocation  Kind = "invalid_allocation"
	KindAllocationMismatch Kind = "allocation_mismatch"
	KindUnbalancedTransfer Kind = "unbalanced_transfer"
	KindUnreconciled       Kind = "unreconciled_transaction"
)

// Finding describes one inconsistency on one transaction. Detail fields are
// only set by the check they belong to.
type Finding struct {
	TransactionID int64     `json:"transaction_id"`
	AccountID     int64     `json:"account_id"`
	Date          time.Time `json:"date"`
	Kind          Kind      `json:"error_type"`
	Severity      Severity  `json:"severity"`
	Message       string    `json:"message"`

	Gross            decimal.Decimal   `json:"gross_amount"`
	ExpectedNet      *decimal.Decimal  `json:"expected_net,omitempty"`
	Allocated        *decimal.Decimal  `json:"allocated_total,omitempty"`
	Difference       *decimal.Decimal  `json:"difference,omitempty"`
	DaysUnreconciled int               `json:"days_unreconciled,omitempty"`
	TransferType     model.SpecialType `json:"transfer_type,omitempty"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s %s [txn %d]: %s", f.Severity, f.Kind, f.TransactionID, f.Message)
}

// Options tunes the integrity checks.
type Options struct {
	StaleAfterDays    int
	MismatchTolerance decimal.Decimal
}

// DefaultOptions flags unreconciled transactions older than 30 days and
// allocation differences above one cent.
func DefaultOptions() Options {
	return Options{StaleAfterDays: 30, MismatchTolerance: money.Cent}
}

// Scope restricts which transactions are checked. Zero fields match
// everything; Month is ignored without Year.
type Scope struct {
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"`
}

func (s Scope) contains(d time.Time) bool {
	return model.InYearMonth(d, s.Year, s.Month)
}

type TransactionReport struct {
	BusinessID   int64     `json:"business_id"`
	Scope        Scope     `json:"scope"`
	AsOf         time.Time `json:"as_of"`
	Checked      int       `json:"total_transactions_checked"`
	ErrorCount   int       `json:"error_count"`
	WarningCount int       `json:"warning_count"`
	Errors       []Finding `json:"errors"`
	Warnings     []Finding `json:"warnings"`
}

// Findings returns errors followed by warnings.
func (r *TransactionReport) Findings() []Finding {
	out := make([]Finding, 0, len(r.Errors)+len(r.Warnings))
	out = append(out, r.Errors...)
	return append(out, r.Warnings...)
}

// Transactions runs every integrity check on the transactions in scope. asOf
// is the reference date for reconciliation age.
func Transactions(l *model.Ledger, scope Scope, asOf time.Time, opts Options) *TransactionReport {
	asOf = model.Day(asOf)
	r := &TransactionReport{
		BusinessID: l.Business.ID,
		Scope:      scope,
		AsOf:       asOf,
		Errors:     []Finding{},
		Warnings:   []Finding{},
	}
	for i := range l.Transactions {
		txn := &l.Transactions[i]
		if !scope.contains(txn.Date) {
			continue
		}
		r.Checked++
		for _, check := range []func(*model.Transaction) (Finding, bool){
			missingAllocation,
			invalidAllocation,
			opts.allocationMismatch,
			unbalancedTransfer,
		} {
			if f, ok := check(txn); ok {
				r.add(f)
			}
		}
		if f, ok := opts.unreconciled(txn, asOf); ok {
			r.add(f)
		}
	}
	r.ErrorCount = len(r.Errors)
	r.WarningCount = len(r.Warnings)
	return r
}

func (r *TransactionReport) add(f Finding) {
	if f.Severity == SeverityError {
		r.Errors = append(r.Errors, f)
	} else {
		r.Warnings = append(r.Warnings, f)
	}
}

func finding(txn *model.Transaction, kind Kind, sev Severity, msg string) Finding {
	return Finding{
		TransactionID: txn.ID,
		AccountID:     txn.AccountID,
		Date:          txn.Date,
		Kind:          kind,
		Severity:      sev,
		Message:       msg,
		Gross:         txn.Gross,
	}
}

func missingAllocation(txn *model.Transaction) (Finding, bool) {
	if len(txn.Lines) > 0 {
		return Finding{}, false
	}
	return finding(txn, KindMissingAllocation, SeverityError, "Transaction has no allocation lines"), true
}

// invalidAllocation reports the first line breaking the line contract.
// Stored rows reach validation without the construction checks.
func invalidAllocation(txn *model.Transaction) (Finding, bool) {
	for i, l := range txn.Lines {
		if err := l.Check(); err != nil {
			return finding(txn, KindInvalidAllocation, SeverityError,
				fmt.Sprintf("Allocation line %d: %v", i+1, err)), true
		}
	}
	return Finding{}, false
}

// allocationMismatch compares the allocated total against net, falling back
// to gross - tax when net is zero.
func (o Options) allocationMismatch(txn *model.Transaction) (Finding, bool) {
	if len(txn.Lines) == 0 {
		return Finding{}, false
	}
	allocated := txn.Allocated()
	expected := txn.Net
	if expected.IsZero() {
		expected = txn.Gross.Sub(txn.Tax)
	}
	diff := allocated.Sub(expected).Abs()
	if !diff.GreaterThan(o.MismatchTolerance) {
		return Finding{}, false
	}
	f := finding(txn, KindAllocationMismatch, SeverityError,
		fmt.Sprintf("Allocations sum (%s) doesn't match expected net amount (%s)", money.Format(allocated), money.Format(expected)))
	f.ExpectedNet = &expected
	f.Allocated = &allocated
	f.Difference = &diff
	return f, true
}

// unbalancedTransfer flags transactions made up entirely of transfer lines so
// the counterpart can be checked by hand.
func unbalancedTransfer(txn *model.Transaction) (Finding, bool) {
	if len(txn.Lines) == 0 {
		return Finding{}, false
	}
	for _, l := range txn.Lines {
		if !l.SpecialType.IsTransfer() {
			return Finding{}, false
		}
	}
	first := txn.Lines[0].SpecialType
	counterpart := "outgoing"
	if first == model.SpecialTransferOut {
		counterpart = "incoming"
	}
	f := finding(txn, KindUnbalancedTransfer, SeverityWarning,
		fmt.Sprintf("Transfer transaction - verify matching %s transfer exists", counterpart))
	f.TransferType = first
	return f, true
}

func (o Options) unreconciled(txn *model.Transaction, asOf time.Time) (Finding, bool) {
	if txn.Reconciled {
		return Finding{}, false
	}
	days := int(asOf.Sub(model.Day(txn.Date)).Hours() / 24)
	if days <= o.StaleAfterDays {
		return Finding{}, false
	}
	f := finding(txn, KindUnreconciled, SeverityWarning, fmt.Sprintf("Transaction unreconciled for %d days", days))
	f.DaysUnreconciled = days
	return f, true
}
