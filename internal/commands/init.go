package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/cashbook/internal/chart"
	"github.com/cleared-dev/cashbook/internal/config"
	"github.com/cleared-dev/cashbook/internal/gitops"
	"github.com/cleared-dev/cashbook/internal/ledgerfile"
	"github.com/cleared-dev/cashbook/internal/model"
)

type initOptions struct {
	name     string
	currency string
	taxRate  string
	noGit    bool
}

func newInitCommand() *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledger directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			hash, err := runInit(absDir, opts)
			if err != nil {
				return err
			}
			if hash != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized cashbook ledger at %s (%s)\n", absDir, hash)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized cashbook ledger at %s\n", absDir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&opts.currency, "currency", model.DefaultCurrency, "reporting currency")
	cmd.Flags().StringVar(&opts.taxRate, "tax-rate", "0.081", "default sales tax rate, empty for none")
	cmd.Flags().BoolVar(&opts.noGit, "no-git", false, "do not create a git repository")

	return cmd
}

func runInit(dir string, opts initOptions) (string, error) {
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return "", fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	cfg := config.Default(opts.name, opts.currency)
	if opts.noGit {
		cfg.Git.AutoCommit = false
	}

	var rates []model.TaxRate
	if opts.taxRate != "" {
		rate, err := decimal.NewFromString(opts.taxRate)
		if err != nil {
			return "", fmt.Errorf("--tax-rate: %w", err)
		}
		if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return "", fmt.Errorf("--tax-rate %s: %w", rate, model.ErrRateOutOfRange)
		}
		rates = append(rates, model.TaxRate{
			ID:         1,
			BusinessID: cfg.Business.ID,
			Name:       "VAT " + rate.Shift(2).String() + "%",
			Rate:       rate,
			Default:    true,
		})
	}

	ledger := ledgerfile.New(dir, model.Business{ID: cfg.Business.ID, Name: opts.name, Currency: opts.currency})
	if err := ledger.Init(chart.DefaultChart(cfg.Business.ID), rates); err != nil {
		return "", fmt.Errorf("writing ledger: %w", err)
	}
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}

	gitignore := "exports/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return "", fmt.Errorf("writing .gitignore: %w", err)
	}

	if opts.noGit {
		return "", nil
	}
	if err := gitops.Init(dir); err != nil {
		return "", err
	}
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.Commit(dir, "init: Initialize "+opts.name, author)
	if err != nil {
		return "", fmt.Errorf("initial commit: %w", err)
	}
	return hash, nil
}
