package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"bankpoke/internal/amqp"
	"bankpoke/internal/classify"
	"bankpoke/internal/config"
	applog "bankpoke/internal/log"
	"bankpoke/internal/normalize"
	"bankpoke/internal/services"
	"bankpoke/internal/storage"
	"bankpoke/internal/storage/memory"
	"bankpoke/internal/transfer"
	"bankpoke/internal/tsv"
	"bankpoke/internal/validate"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "init-db":
		err = runInitDB(cfg)
	case "import":
		err = runImport(ctx, cfg, os.Args[2:])
	case "unmatched":
		err = runUnmatched(ctx, cfg, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("Command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: bankpoke <command> [flags]

Commands:
  init-db     create the SQLite database and run migrations
  import      import a TSV statement export
  unmatched   list unpaired transfer records`)
}

func runInitDB(cfg *config.Config) error {
	if cfg.DataBackend != "sqlite" {
		return fmt.Errorf("init-db requires the sqlite backend, got %q", cfg.DataBackend)
	}
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()
	slog.Info("Database initialized", "path", cfg.SQLiteDBPath)
	return nil
}

func runImport(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "path to the TSV statement export")
	source := fs.String("source", "tsv", "source type recorded on the batch")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("-file is required")
	}

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("open statement file: %w", err)
	}
	defer f.Close()

	rows, err := tsv.ReadRows(f)
	if err != nil {
		return fmt.Errorf("read statement: %w", err)
	}

	svc, cleanup, err := buildImportService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := svc.ImportRows(ctx, *source, rows)
	if err != nil {
		return err
	}

	fmt.Printf("batch %s: inserted=%d duplicates=%d rejected=%d review=%d groups=%d unmatched=%d\n",
		result.Batch.ID, result.Inserted, result.DuplicatesSkipped, result.Rejected,
		result.ReviewRequired, len(result.Groups), len(result.UnmatchedTransfer))
	for _, o := range result.Manifest {
		if o.Outcome == services.OutcomeRejected {
			fmt.Printf("  row %d rejected: %s\n", o.Index+1, o.Reason)
		}
	}
	return nil
}

func runUnmatched(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("unmatched", flag.ExitOnError)
	since := fs.Duration("since", cfg.PairingHorizon, "how far back to look")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.DataBackend != "sqlite" {
		return fmt.Errorf("unmatched requires the sqlite backend, got %q", cfg.DataBackend)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	candidates, err := repo.UnmatchedTransferCandidates(ctx, time.Now().Add(-*since))
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Println("no unmatched transfers")
		return nil
	}
	for _, tx := range candidates {
		fmt.Printf("%d\t%s\t%d %s\t%s\n",
			tx.ID, tx.OccurredAt.Format(time.RFC3339), tx.SignedAmount, tx.Currency, tx.Merchant)
	}
	return nil
}

func buildImportService(ctx context.Context, cfg *config.Config) (*services.ImportService, func(), error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	rules := classify.DefaultRules()
	if cfg.RulesPath != "" {
		rules, err = classify.Load(cfg.RulesPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load rules: %w", err)
		}
		slog.Info("Classification rules loaded", "path", cfg.RulesPath, "count", rules.Len())
	}

	var (
		store   services.TransactionStore
		cleanup = func() {}
	)
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, err
		}
		store = repo
		cleanup = func() { repo.Close() }
	default:
		store = memory.NewStore()
		slog.Info("Using in-memory store, data will not persist")
	}

	// AMQP is optional; without a broker the import still completes and
	// review export is simply skipped.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect AMQP: %w", err)
		}
		prev := cleanup
		cleanup = func() { amqpClient.Close(); prev() }
	} else {
		slog.InfoContext(ctx, "AMQP disabled - no AMQP_URL provided")
	}

	svc := services.NewImportService(
		store,
		normalize.New(loc, cfg.DefaultCurrency),
		validate.New(cfg.DefaultCurrency),
		rules,
		transfer.New(cfg.PairingWindow, transfer.DefaultDictionary()),
		amqpClient,
		services.Config{
			PairingHorizon: cfg.PairingHorizon,
			Parallelism:    cfg.ImportParallelism,
		},
	)
	return svc, cleanup, nil
}
