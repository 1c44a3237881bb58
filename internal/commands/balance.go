package commands

import (
	"time"

	"github.com/spf13/cobra"
)

func newBalanceCommand(g *globals) *cobra.Command {
	var asOf string
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show opening, in, out, and current balance per account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseDate("as-of", asOf, time.Time{})
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			balances, err := a.svc.AccountBalances(cmd.Context(), a.businessID(), ref)
			if err != nil {
				return err
			}
			if err := out.write(cmd, balances); err != nil {
				return err
			}
			a.record("balance", 0, "ok", "")
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "include transactions up to this date (default all)")
	out.register(cmd)
	return cmd
}
