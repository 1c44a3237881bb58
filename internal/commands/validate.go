package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cashbook/internal/validation"
)

func newValidateCommand(g *globals) *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the ledger for transfer and allocation problems",
	}
	validateCmd.AddCommand(
		newValidateTransfersCommand(g),
		newValidateTransactionsCommand(g),
		newValidateSummaryCommand(g),
	)
	return validateCmd
}

func newValidateTransfersCommand(g *globals) *cobra.Command {
	var year, month int
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "transfers",
		Short: "Compare outgoing and incoming transfers per month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.svc.ValidateTransfers(cmd.Context(), a.businessID(), year, month)
			if err != nil {
				a.record("validate transfers", year, "failed", err.Error())
				return err
			}
			if err := out.write(cmd, r); err != nil {
				return err
			}
			status := "ok"
			if !r.AllBalanced {
				status = "unbalanced"
			}
			a.record("validate transfers", year, status, fmt.Sprintf("unbalanced months %v", r.UnbalancedMonths))
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "calendar year")
	cmd.Flags().IntVar(&month, "month", 0, "single month 1-12, 0 for the whole year")
	out.register(cmd)
	return cmd
}

func newValidateTransactionsCommand(g *globals) *cobra.Command {
	var year, month int
	var asOf string
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Check allocations, transfers, and reconciliation age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseDate("as-of", asOf, time.Now())
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.svc.ValidateTransactions(cmd.Context(), a.businessID(), validation.Scope{Year: year, Month: month}, ref)
			if err != nil {
				a.record("validate transactions", year, "failed", err.Error())
				return err
			}
			if err := out.write(cmd, r); err != nil {
				return err
			}
			a.record("validate transactions", year, "ok", fmt.Sprintf("%d errors, %d warnings", r.ErrorCount, r.WarningCount))
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "calendar year, 0 for all years")
	cmd.Flags().IntVar(&month, "month", 0, "month 1-12 within --year")
	cmd.Flags().StringVar(&asOf, "as-of", "", "reference date for reconciliation age (default today)")
	out.register(cmd)
	return cmd
}

func newValidateSummaryCommand(g *globals) *cobra.Command {
	var year int
	var asOf string
	var strict bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Run every check for a year and print the overall status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseDate("as-of", asOf, time.Now())
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.svc.FullValidation(cmd.Context(), a.businessID(), year, ref)
			if err != nil {
				a.record("validate summary", year, "failed", err.Error())
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Status: %s\n", s.Status)
			fmt.Fprintf(w, "Transactions checked: %d\n", s.Counts.Checked)
			fmt.Fprintf(w, "Errors: %d\n", s.Counts.Errors)
			fmt.Fprintf(w, "Warnings: %d\n", s.Counts.Warnings)
			if len(s.Counts.UnbalancedTransferMonths) > 0 {
				fmt.Fprintf(w, "Unbalanced transfer months: %v\n", s.Counts.UnbalancedTransferMonths)
			}
			for _, f := range s.Transactions.Findings() {
				fmt.Fprintln(w, f)
			}
			a.record("validate summary", year, string(s.Status), "")

			if strict && s.Status == validation.StatusInvalid {
				return fmt.Errorf("ledger is invalid")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "calendar year")
	cmd.Flags().StringVar(&asOf, "as-of", "", "reference date for reconciliation age (default today)")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when the ledger is invalid")
	return cmd
}
