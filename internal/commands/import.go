package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cashbook/internal/config"
	"github.com/cleared-dev/cashbook/internal/importer"
	"github.com/cleared-dev/cashbook/internal/ledgerfile"
	"github.com/cleared-dev/cashbook/internal/model"
)

func newImportCommand(g *globals) *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import Excel templates and bank statements",
	}
	importCmd.AddCommand(
		newImportWorkbookCommand(g),
		newImportStatementsCommand(g),
	)
	return importCmd
}

func newImportWorkbookCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "workbook <file.xlsx>",
		Short: "Load accounts, chart, tax rates, and transactions from an Excel template",
		Long: `Load a business from an Excel template into an empty ledger.

The template holds a "Business Config" sheet, optional "Accounts",
"Categories", and "Tax Rates" sheets, and one sheet per month named
Month1 to Month12. Data starts on row 4 of every sheet. Rows that cannot
be imported are skipped and reported as warnings.`,
		Args: cobra.ExactArgs(1),
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
			if n := len(l.Transactions); n > 0 {
				return fmt.Errorf("ledger already holds %d transactions, workbook import needs an empty journal", n)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening workbook: %w", err)
			}
			defer f.Close()
			w, err := importer.ReadWorkbook(f, l)
			if err != nil {
				return err
			}

			paths, err := saveWorkbook(a, files, w)
			if err != nil {
				return err
			}
			txns, err := files.AddAll(w.Transactions)
			if err != nil {
				return err
			}
			paths = append(paths, journalPaths(txns)...)

			stderr := cmd.ErrOrStderr()
			for _, msg := range w.Warnings {
				fmt.Fprintf(stderr, "warning: %s\n", msg)
			}
			a.log.Info().
				Str("file", filepath.Base(args[0])).
				Int("transactions", len(txns)).
				Int("warnings", len(w.Warnings)).
				Msg("workbook imported")

			status := "ok"
			if len(w.Warnings) > 0 {
				status = "warnings"
			}
			a.record("import workbook", 0, status, fmt.Sprintf("%s: %d transactions", filepath.Base(args[0]), len(txns)))

			hash, err := a.commit(fmt.Sprintf("import: %s", filepath.Base(args[0])), paths...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d accounts, %d categories, %d tax rates, %d transactions (%d warnings)%s\n",
				len(w.Accounts), len(w.Categories), len(w.TaxRates), len(txns), len(w.Warnings), commitSuffix(hash))
			return nil
		},
	}
}

// saveWorkbook writes the entity sheets present in w and the business
// settings, returning the paths it changed.
func saveWorkbook(a *app, files *ledgerfile.Store, w *importer.Workbook) ([]string, error) {
	var paths []string
	bid := a.businessID()
	if w.Accounts != nil {
		for i := range w.Accounts {
			w.Accounts[i].BusinessID = bid
		}
		if err := files.SaveAccounts(w.Accounts); err != nil {
			return nil, err
		}
		paths = append(paths, ledgerfile.AccountsFile)
	}
	if w.Categories != nil {
		for i := range w.Categories {
			w.Categories[i].BusinessID = bid
		}
		if err := files.SaveCategories(w.Categories); err != nil {
			return nil, err
		}
		paths = append(paths, ledgerfile.CategoriesFile)
	}
	if w.TaxRates != nil {
		for i := range w.TaxRates {
			w.TaxRates[i].BusinessID = bid
		}
		if err := files.SaveTaxRates(w.TaxRates); err != nil {
			return nil, err
		}
		paths = append(paths, ledgerfile.TaxRatesFile)
	}

	a.cfg.Business.Name = w.BusinessName
	a.cfg.Business.Currency = w.Currency
	if err := config.Save(filepath.Join(a.root, config.FileName), a.cfg); err != nil {
		return nil, err
	}
	return append(paths, config.FileName), nil
}

func newImportStatementsCommand(g *globals) *cobra.Command {
	var (
		account int64
		format  string
	)

	cmd := &cobra.Command{
		Use:   "statements",
		Short: "Import bank statement CSVs waiting in the import/ directory",
		Long: `Import every CSV in <repo>/import/ as unallocated transactions on one
account, then move the files to import/processed/.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := importer.DefaultRegistry()
			parser := registry.Get(format)
			if parser == nil {
				known := registry.Formats()
				sort.Strings(known)
				return fmt.Errorf("unknown statement format %q (known: %s)", format, strings.Join(known, ", "))
			}

			a, err := openApp(cmd.Context(), cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()
			files, err := a.ledger()
			if err != nil {
				return err
			}

			pending, err := importer.Scan(a.root)
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No statements to import")
				return nil
			}

			var params []model.NewTransactionParams
			for _, fi := range pending {
				lines, err := parseStatement(parser, fi.Path)
				if err != nil {
					return fmt.Errorf("%s: %w", fi.Name, err)
				}
				for _, line := range lines {
					params = append(params, line.Params(account))
				}
				a.log.Debug().Str("file", fi.Name).Int("lines", len(lines)).Msg("statement parsed")
			}

			txns, err := files.AddAll(params)
			if err != nil {
				return err
			}
			for _, fi := range pending {
				if err := importer.MarkProcessed(a.root, fi.Name); err != nil {
					return err
				}
			}
			a.record("import statements", 0, "ok", fmt.Sprintf("%d files, %d transactions", len(pending), len(txns)))

			paths := append(journalPaths(txns), importer.ImportDir)
			hash, err := a.commit(fmt.Sprintf("import: %d statement lines", len(txns)), paths...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d transactions from %d files%s\n", len(txns), len(pending), commitSuffix(hash))
			return nil
		},
	}

	cmd.Flags().Int64Var(&account, "account", 0, "account ID the statements belong to (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().StringVar(&format, "format", "simple", "statement format: simple or chase")
	return cmd
}

func parseStatement(p importer.Parser, path string) ([]importer.StatementLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Parse(f)
}

// journalPaths returns the distinct month journals txns were written to.
func journalPaths(txns []model.Transaction) []string {
	seen := make(map[string]bool)
	var paths []string
	for _, t := range txns {
		p := ledgerfile.RelPath(t.Date.Year(), int(t.Date.Month()))
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	return paths
}
