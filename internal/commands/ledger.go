package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/cashbook/internal/chart"
	"github.com/cleared-dev/cashbook/internal/ledgerfile"
	"github.com/cleared-dev/cashbook/internal/model"
	"github.com/cleared-dev/cashbook/internal/money"
)

func newAccountCommand(g *globals) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Manage bank and credit card accounts",
	}
	accountCmd.AddCommand(newAccountAddCommand(g))
	return accountCmd
}

func newAccountAddCommand(g *globals) *cobra.Command {
	var name, typ, opening string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account to the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()
			files, err := a.ledger()
			if err != nil {
				return err
			}

			acct := model.Account{BusinessID: a.businessID(), Name: name, Type: model.AccountType(typ)}
			if !acct.Type.Valid() {
				return fmt.Errorf("unknown account type %q", typ)
			}
			if acct.OpeningBalance, err = money.Parse(opening); err != nil {
				return fmt.Errorf("--opening: %w", err)
			}

			l, err := files.Load()
			if err != nil {
				return err
			}
			for _, existing := range l.Accounts {
				acct.ID = max(acct.ID, existing.ID)
			}
			acct.ID++
			if err := files.SaveAccounts(append(l.Accounts, acct)); err != nil {
				return err
			}

			hash, err := a.commit(fmt.Sprintf("account: add %s", name), ledgerfile.AccountsFile)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added account %d %s%s\n", acct.ID, name, commitSuffix(hash))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "account name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&typ, "type", string(model.AccountTypeBank), "bank, credit_card, cash, or asset")
	cmd.Flags().StringVar(&opening, "opening", "0.00", "opening balance")
	return cmd
}

func newTxnCommand(g *globals) *cobra.Command {
	txnCmd := &cobra.Command{
		Use:   "txn",
		Short: "Record transactions",
	}
	txnCmd.AddCommand(newTxnAddCommand(g))
	return txnCmd
}

type txnFlags struct {
	account     int64
	date        string
	direction   string
	gross       string
	taxRateID   int64
	reconciled  bool
	payee       string
	description string
	lines       []string
}

func newTxnAddCommand(g *globals) *cobra.Command {
	var f txnFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a transaction to its month's journal",
		Long: `Append a transaction to its month's journal.

Each --line allocates part of the net amount, either to a category code
(head_12=40.00) or to a special type (special:capital=500.00). Omitting the
amount allocates the whole net amount.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()
			files, err := a.ledger()
			if err != nil {
				return err
			}
			l, err := files.Load()
			if err != nil {
				return err
			}

			p, err := f.params(l)
			if err != nil {
				return err
			}
			txn, err := files.Add(p)
			if err != nil {
				return err
			}

			path := ledgerfile.RelPath(txn.Date.Year(), int(txn.Date.Month()))
			hash, err := a.commit(fmt.Sprintf("txn: add %d %s %s", txn.ID, txn.Direction, money.Format(txn.Gross)), path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added transaction %d: gross %s, tax %s, net %s%s\n",
				txn.ID, money.Format(txn.Gross), money.Format(txn.Tax), money.Format(txn.Net), commitSuffix(hash))
			return nil
		},
	}

	cmd.Flags().Int64Var(&f.account, "account", 0, "account ID (required)")
	cmd.Flags().StringVar(&f.date, "date", "", "transaction date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&f.direction, "direction", "", "in or out (required)")
	cmd.Flags().StringVar(&f.gross, "gross", "", "tax-inclusive amount (required)")
	cmd.Flags().Int64Var(&f.taxRateID, "tax-rate-id", 0, "tax rate ID, 0 for none")
	cmd.Flags().BoolVar(&f.reconciled, "reconciled", false, "mark as matched to a bank statement")
	cmd.Flags().StringVar(&f.payee, "payee", "", "payee")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	cmd.Flags().StringArrayVar(&f.lines, "line", nil, "allocation CODE[=AMOUNT] or special:TYPE[=AMOUNT], repeatable")
	for _, name := range []string{"account", "date", "direction", "gross"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

// params resolves the flags against the ledger's chart and tax rates.
func (f *txnFlags) params(l *model.Ledger) (model.NewTransactionParams, error) {
	p := model.NewTransactionParams{
		AccountID:   f.account,
		Direction:   model.Direction(strings.ToLower(f.direction)),
		Reconciled:  f.reconciled,
		Payee:       f.payee,
		Description: f.description,
	}
	var err error
	if p.Date, err = parseDate("date", f.date, time.Time{}); err != nil {
		return p, err
	}
	if p.Gross, err = money.Parse(f.gross); err != nil {
		return p, fmt.Errorf("--gross: %w", err)
	}

	rate := money.NoRate
	if f.taxRateID != 0 {
		r, ok := l.TaxRate(f.taxRateID)
		if !ok {
			return p, fmt.Errorf("unknown tax rate %d", f.taxRateID)
		}
		p.TaxRate = &r
		rate = money.Rate(r.Rate)
	}
	_, net := money.Split(p.Gross, rate)

	c := chart.New(l.Categories)
	for _, arg := range f.lines {
		line, err := parseLine(arg, c, net)
		if err != nil {
			return p, err
		}
		p.Lines = append(p.Lines, line)
	}
	return p, nil
}

// parseLine reads CODE[=AMOUNT] or special:TYPE[=AMOUNT].
func parseLine(arg string, c *chart.Chart, net decimal.Decimal) (model.TransactionLine, error) {
	key, amount, hasAmount := strings.Cut(arg, "=")
	line := model.TransactionLine{Amount: net}
	if hasAmount {
		d, err := money.Parse(amount)
		if err != nil {
			return line, fmt.Errorf("--line %q: %w", arg, err)
		}
		line.Amount = d
	}

	if special, ok := strings.CutPrefix(key, "special:"); ok {
		line.SpecialType = model.SpecialType(strings.ToLower(special))
		if !line.SpecialType.Valid() {
			return line, fmt.Errorf("--line %q: %w", arg, model.ErrUnknownSpecial)
		}
		return line, nil
	}
	cat, ok := c.ByCode(key)
	if !ok {
		return line, fmt.Errorf("--line %q: unknown category code %q", arg, key)
	}
	line.CategoryID = cat.ID
	return line, nil
}

func commitSuffix(hash string) string {
	if hash == "" {
		return ""
	}
	return " (" + hash + ")"
}
