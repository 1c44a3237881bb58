package validation

// Status is the overall verdict of a full validation run.
type Status string

const (
	StatusValid    Status = "valid"
	StatusWarnings Status = "warnings"
	StatusInvalid  Status = "invalid"
)

type Counts struct {
	Checked                  int   `json:"total_transactions_checked"`
	Errors                   int   `json:"total_errors"`
	Warnings                 int   `json:"total_warnings"`
	UnbalancedTransferMonths []int `json:"unbalanced_transfer_months"`
}

// Summary combines the transfer and integrity checks of one year.
type Summary struct {
	BusinessID   int64              `json:"business_id"`
	Year         int                `json:"year"`
	Status       Status             `json:"status"`
	HasErrors    bool               `json:"has_errors"`
	HasWarnings  bool               `json:"has_warnings"`
	Counts       Counts             `json:"summary"`
	Transfers    *TransferReport    `json:"transfer_validation"`
	Transactions *TransactionReport `json:"transaction_validation"`
}

// Summarize classifies the run as invalid when there is any error finding or
// unbalanced transfer month, warnings when only warnings exist, and valid
// otherwise.
func Summarize(transfers *TransferReport, txns *TransactionReport) *Summary {
	s := &Summary{
		BusinessID:   transfers.BusinessID,
		Year:         transfers.Year,
		HasErrors:    txns.ErrorCount > 0 || !transfers.AllBalanced,
		HasWarnings:  txns.WarningCount > 0,
		Transfers:    transfers,
		Transactions: txns,
		Counts: Counts{
			Checked:                  txns.Checked,
			Errors:                   txns.ErrorCount,
			Warnings:                 txns.WarningCount,
			UnbalancedTransferMonths: transfers.UnbalancedMonths,
		},
	}
	switch {
	case s.HasErrors:
		s.Status = StatusInvalid
	case s.HasWarnings:
		s.Status = StatusWarnings
	default:
		s.Status = StatusValid
	}
	return s
}
