package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbook/internal/money"
	"github.com/cleared-dev/cashbook/internal/validation"
)

func fmtAmount(d decimal.Decimal) string {
	return money.Format(d)
}

// TransfersTable lists the transfer balance of every checked month.
func TransfersTable(r *validation.TransferReport) Table {
	t := Table{Name: "Transfers"}
	t.row("Transfer Validation", fmt.Sprintf("Year: %d", r.Year), "All Balanced: "+yesNo(r.AllBalanced))
	t.blank()
	t.row("Month", "Transfers Out", "Transfers In", "Difference", "Out Count", "In Count", "Balanced?")
	for _, m := range r.Months {
		t.row(
			strconv.Itoa(m.Month),
			fmtAmount(m.TotalOut),
			fmtAmount(m.TotalIn),
			fmtAmount(m.Difference),
			strconv.Itoa(m.OutCount),
			strconv.Itoa(m.InCount),
			yesNo(m.Balanced),
		)
	}
	return t
}

// FindingsTable lists errors then warnings, one row per finding.
func FindingsTable(r *validation.TransactionReport) Table {
	t := Table{Name: "Findings"}
	t.row("Transaction Validation",
		"Checked: "+strconv.Itoa(r.Checked),
		"Errors: "+strconv.Itoa(r.ErrorCount),
		"Warnings: "+strconv.Itoa(r.WarningCount))
	t.blank()
	t.row("Transaction", "Account", "Date", "Severity", "Type", "Gross", "Message")
	for _, f := range r.Findings() {
		t.row(
			strconv.FormatInt(f.TransactionID, 10),
			strconv.FormatInt(f.AccountID, 10),
			f.Date.Format("2006-01-02"),
			string(f.Severity),
			string(f.Kind),
			fmtAmount(f.Gross),
			f.Message,
		)
	}
	return t
}

// SummaryTable renders a full validation run: status and counts, then the
// transfer months, then every finding.
func SummaryTable(s *validation.Summary) Table {
	t := Table{Name: "Validation"}
	t.row("Validation Summary", fmt.Sprintf("Year: %d", s.Year), "Status: "+string(s.Status))
	t.blank()
	t.row("Transactions Checked", strconv.Itoa(s.Counts.Checked))
	t.row("Errors", strconv.Itoa(s.Counts.Errors))
	t.row("Warnings", strconv.Itoa(s.Counts.Warnings))
	t.row("Unbalanced Transfer Months", monthList(s.Counts.UnbalancedTransferMonths))
	t.blank()
	t.Rows = append(t.Rows, TransfersTable(s.Transfers).Rows...)
	t.blank()
	t.Rows = append(t.Rows, FindingsTable(s.Transactions).Rows...)
	return t
}

func monthList(months []int) string {
	if len(months) == 0 {
		return "None"
	}
	parts := make([]string, len(months))
	for i, m := range months {
		parts[i] = strconv.Itoa(m)
	}
	return strings.Join(parts, ", ")
}
