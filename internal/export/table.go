// Package export renders reports as fixed-column tables and writes them as
// CSV or XLSX. Amounts are always rendered with two decimals.
package export

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbook/internal/money"
	"github.com/cleared-dev/cashbook/internal/reports"
	"github.com/cleared-dev/cashbook/internal/validation"
)

// Table is an ordered list of string rows. The first row is the title row.
// Blank rows separate sections.
type Table struct {
	Name string
	Rows [][]string
}

// ErrUnsupported is returned by Render for values with no table layout.
var ErrUnsupported = errors.New("no table layout for report")

// Render dispatches on the report type.
func Render(report any) (Table, error) {
	switch r := report.(type) {
	case *reports.PLReport:
		return PLTable(r), nil
	case *reports.BSReport:
		return BalanceSheetTable(r), nil
	case *reports.TaxReport:
		return TaxTable(r), nil
	case *validation.TransferReport:
		return TransfersTable(r), nil
	case *validation.TransactionReport:
		return FindingsTable(r), nil
	case *validation.Summary:
		return SummaryTable(r), nil
	case []reports.AccountBalance:
		return BalancesTable(r), nil
	}
	return Table{}, fmt.Errorf("%w: %T", ErrUnsupported, report)
}

func (t *Table) row(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

func (t *Table) blank() {
	t.Rows = append(t.Rows, []string{})
}

// amounts renders a label followed by twelve monthly values and optional
// trailing totals.
func (t *Table) amounts(label string, month func(m int) decimal.Decimal, totals ...decimal.Decimal) {
	cells := make([]string, 0, 1+12+len(totals))
	cells = append(cells, label)
	for m := 1; m <= 12; m++ {
		cells = append(cells, money.Format(month(m)))
	}
	for _, tot := range totals {
		cells = append(cells, money.Format(tot))
	}
	t.row(cells...)
}

func monthHeader(first string, trailing ...string) []string {
	cells := []string{first}
	for m := 1; m <= 12; m++ {
		cells = append(cells, "Month "+strconv.Itoa(m))
	}
	return append(cells, trailing...)
}

func titleRow(title string, year int, currency string) []string {
	return []string{title, fmt.Sprintf("Year: %d", year), "Currency: " + currency}
}

func yesNo(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
