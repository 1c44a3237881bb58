package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cashbook/internal/reports"
)

func newReportCommand(g *globals) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Generate financial statements",
	}
	reportCmd.AddCommand(
		newStatementCommand(g, "pl", "Profit & Loss by month and year to date",
			func(a *app, cmd *cobra.Command, year int) (any, error) {
				return a.svc.GeneratePL(cmd.Context(), a.businessID(), year)
			}),
		newStatementCommand(g, "balance-sheet", "Month-end balance sheets with balance checks",
			func(a *app, cmd *cobra.Command, year int) (any, error) {
				return a.svc.GenerateBalanceSheet(cmd.Context(), a.businessID(), year)
			}),
		newStatementCommand(g, "tax", "Sales tax collected, paid, and payable by month",
			func(a *app, cmd *cobra.Command, year int) (any, error) {
				return a.svc.GenerateTaxReport(cmd.Context(), a.businessID(), year)
			}),
	)
	return reportCmd
}

type statementFunc func(a *app, cmd *cobra.Command, year int) (any, error)

func newStatementCommand(g *globals, name, short string, generate statementFunc) *cobra.Command {
	var year int
	var out outputFlags

	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := generate(a, cmd, year)
			if err != nil {
				a.record("report "+name, year, "failed", err.Error())
				return err
			}
			if err := out.write(cmd, report); err != nil {
				return err
			}
			status, details := "ok", ""
			if bs, ok := report.(*reports.BSReport); ok && len(bs.Unbalanced()) > 0 {
				status, details = "unbalanced", fmt.Sprintf("months %v", bs.Unbalanced())
			}
			a.record("report "+name, year, status, details)
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "calendar year")
	out.register(cmd)
	return cmd
}
