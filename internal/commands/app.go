package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/cashbook/internal/config"
	"github.com/cleared-dev/cashbook/internal/engine"
	"github.com/cleared-dev/cashbook/internal/gitops"
	"github.com/cleared-dev/cashbook/internal/ledgerfile"
	"github.com/cleared-dev/cashbook/internal/logger"
	"github.com/cleared-dev/cashbook/internal/model"
	"github.com/cleared-dev/cashbook/internal/reportlog"
	"github.com/cleared-dev/cashbook/internal/store"
	"github.com/cleared-dev/cashbook/internal/store/postgres"
	"github.com/cleared-dev/cashbook/internal/validation"
)

// globals holds the persistent root flags.
type globals struct {
	repo     string
	logLevel string
}

// app is everything a command needs once the ledger directory is resolved.
type app struct {
	root   string
	cfg    *config.Config
	log    zerolog.Logger
	svc    *engine.Service
	files  *ledgerfile.Store // nil unless the file driver is configured
	closer func()
}

// openApp loads cashbook.yaml from the repo directory and wires the
// configured store into an engine.Service.
func openApp(ctx context.Context, cmd *cobra.Command, g *globals) (*app, error) {
	root, err := filepath.Abs(g.repo)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if g.logLevel != "" {
		level = g.logLevel
	}
	a := &app{
		root:   root,
		cfg:    cfg,
		log:    logger.New(level).With().Str("cmd", cmd.CommandPath()).Logger(),
		closer: func() {},
	}

	tol, err := cfg.Tolerance()
	if err != nil {
		return nil, err
	}
	opts := engine.Options{
		MaxRows: cfg.Limits.MaxRows,
		Validation: validation.Options{
			StaleAfterDays:    cfg.Validation.StaleAfterDays,
			MismatchTolerance: tol,
		},
	}

	var reader store.Reader
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pg, err := openPostgres(ctx, root, cfg)
		if err != nil {
			return nil, err
		}
		reader = pg
		a.closer = pg.Close
	default:
		a.files = ledgerfile.New(root, model.Business{
			ID:       cfg.Business.ID,
			Name:     cfg.Business.Name,
			Currency: cfg.Business.Currency,
		})
		reader = a.files
	}
	a.svc = engine.NewService(reader, a.log, opts)
	return a, nil
}

// openPostgres loads <root>/.env when present and connects with the DSN
// from the configured environment variable.
func openPostgres(ctx context.Context, root string, cfg *config.Config) (*postgres.Store, error) {
	if err := godotenv.Load(filepath.Join(root, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	dsn := os.Getenv(cfg.Store.DSNEnv)
	if dsn == "" {
		return nil, fmt.Errorf("%s is not set", cfg.Store.DSNEnv)
	}
	return postgres.Open(ctx, dsn)
}

func (a *app) Close() {
	a.closer()
}

func (a *app) businessID() int64 {
	return a.cfg.Business.ID
}

// ledger returns the file store, or an error when the ledger lives in
// Postgres and cannot be edited from the CLI.
func (a *app) ledger() (*ledgerfile.Store, error) {
	if a.files == nil {
		return nil, fmt.Errorf("store driver %q is read-only from the CLI", a.cfg.Store.Driver)
	}
	return a.files, nil
}

// record appends a run to the report log. Failures are logged, not returned.
func (a *app) record(command string, year int, status, details string) {
	e := reportlog.NewEntry(command, a.businessID(), year, status, details)
	if err := reportlog.Append(a.root, e); err != nil {
		a.log.Warn().Err(err).Msg("writing report log")
	}
}

// commit records changed ledger files in git when auto-commit is enabled.
func (a *app) commit(message string, paths ...string) (string, error) {
	if !a.cfg.Git.AutoCommit || !gitops.IsRepo(a.root) {
		return "", nil
	}
	author := gitops.Author{Name: a.cfg.Git.AuthorName, Email: a.cfg.Git.AuthorEmail}
	hash, err := gitops.Commit(a.root, message, author, paths...)
	if err != nil {
		return "", fmt.Errorf("committing ledger: %w", err)
	}
	return hash, nil
}
