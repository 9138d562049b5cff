package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"orderledger/internal/catalog"
	"orderledger/internal/classify"
	"orderledger/internal/config"
	"orderledger/internal/ledger"
	"orderledger/internal/logging"
	"orderledger/internal/pipeline"
	"orderledger/internal/sheets"
	"orderledger/internal/storage"
	"orderledger/internal/xlsxstore"
)

const lastSuccessKey = "sync.last_success"

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Process new raw orders and append them to the ledger",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show how many raw orders are new without classifying them",
	Args:  cobra.NoArgs,
	RunE:  runDiff,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify store access, sheet headers and the classifier",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent runs from the local journal",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func bootstrap() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

func openStore(ctx context.Context, cfg config.Config) (ledger.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendSheets:
		return sheets.Open(ctx, cfg)
	case config.BackendXLSX:
		return xlsxstore.Open(cfg.LedgerXLSXPath)
	default:
		return nil, fmt.Errorf("unsupported STORE_BACKEND: %s", cfg.StoreBackend)
	}
}

// lockName identifies the destination a writer holds.
func lockName(cfg config.Config) string {
	target := cfg.SheetID
	if cfg.StoreBackend == config.BackendXLSX {
		target = filepath.Clean(cfg.LedgerXLSXPath)
	}
	return strings.Join([]string{"ledger", cfg.StoreBackend, target, cfg.ProcessedSheet}, ":")
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	workers, _ := cmd.Flags().GetInt("workers")
	reportPath, _ := cmd.Flags().GetString("report")
	if workers > 0 {
		cfg.Workers = workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open run journal: %w", err)
	}
	defer db.Close()

	if !dryRun {
		name, owner := lockName(cfg), uuid.NewString()
		if err := db.AcquireLock(name, owner, time.Duration(cfg.LockTTLMin)*time.Minute); err != nil {
			return err
		}
		defer func() {
			if err := db.ReleaseLock(name, owner); err != nil {
				log.Warn("release run lock", zap.String("lock", name), zap.Error(err))
			}
		}()
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("close store", zap.Error(err))
		}
	}()

	vocab, err := catalog.Load(cfg.VocabularyPath)
	if err != nil {
		return err
	}
	classifier, err := classify.New(ctx, cfg, log)
	if err != nil {
		return err
	}

	opts := pipeline.OptionsFromConfig(cfg)
	opts.DryRun = dryRun
	svc := pipeline.NewProcessingService(store, store, pipeline.NewResolver(classifier, vocab), opts, log)

	started := time.Now()
	res, runErr := svc.Run(ctx)
	record := storage.RunRecord{
		RunID:      res.RunID,
		StartedAt:  started,
		DurationMs: time.Since(started).Milliseconds(),
		DryRun:     dryRun,
		Status:     "ok",
		Counts: map[string]int{
			"read":              res.Read,
			"already_processed": res.AlreadyProcessed,
			"duplicates":        res.Duplicates,
			"blank_ids":         res.BlankIDs,
			"unresolved":        res.Unresolved,
			"failed":            res.Failed,
			"appended":          res.Appended,
		},
	}
	if runErr != nil {
		record.Status = "failed"
		record.Error = runErr.Error()
	}
	if err := db.InsertRun(record); err != nil {
		log.Warn("record run", zap.String("run_id", res.RunID), zap.Error(err))
	}
	if runErr != nil {
		return runErr
	}
	if !dryRun {
		if err := db.SetMetadata(lastSuccessKey, started.UTC().Format(time.RFC3339)); err != nil {
			log.Warn("store last success", zap.Error(err))
		}
	}

	if reportPath != "" {
		if err := pipeline.ExportRunReport(res, reportPath); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	printSummary(cmd.OutOrStdout(), res, reportPath)
	return nil
}

func printSummary(w io.Writer, res pipeline.RunResult, reportPath string) {
	mode := "sync"
	if res.DryRun {
		mode = "dry-run"
	}
	fmt.Fprintf(w, "%s complete run=%s\n", mode, res.RunID)
	fmt.Fprintf(w, "  read=%d already_processed=%d duplicates=%d blank_ids=%d\n",
		res.Read, res.AlreadyProcessed, res.Duplicates, res.BlankIDs)
	fmt.Fprintf(w, "  skipped=%d (unresolved=%d failed=%d) appended=%d\n",
		res.SkippedCount(), res.Unresolved, res.Failed, res.Appended)
	if res.DryRun {
		fmt.Fprintf(w, "  would append=%d\n", len(res.Rows))
	}
	fmt.Fprintf(w, "  value=R$ %s", res.AppendedValue.StringFixed(2))
	if res.UnparsedTotals > 0 {
		fmt.Fprintf(w, " (%d totals not parsed)", res.UnparsedTotals)
	}
	fmt.Fprintf(w, " took=%s\n", res.Duration.Round(time.Millisecond))
	if reportPath != "" {
		fmt.Fprintf(w, "  report=%s\n", reportPath)
	}
}

func runDiff(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if err := cfg.ValidateStore(); err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	svc := pipeline.NewProcessingService(store, store, nil, pipeline.OptionsFromConfig(cfg), log)
	plan, err := svc.Plan(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "read=%d new=%d already_processed=%d duplicates=%d blank_ids=%d\n",
		plan.Diff.Read, len(plan.Diff.New), plan.Diff.AlreadyProcessed, plan.Diff.Duplicates, plan.Diff.BlankIDs)
	if plan.EmptyDest {
		fmt.Fprintf(out, "ledger sheet %q is empty; the next sync writes its header\n", cfg.ProcessedSheet)
	}
	return nil
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if err := cfg.Validate(); err != nil {
		return err
	}
	noProbe, _ := cmd.Flags().GetBool("no-probe")
	out := cmd.OutOrStdout()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	table, err := store.ReadAll(ctx, cfg.RawSheet)
	if err != nil {
		return fmt.Errorf("read %s: %w", cfg.RawSheet, err)
	}
	orders, err := ledger.ParseTable(table)
	if err != nil {
		return fmt.Errorf("sheet %s: %w", cfg.RawSheet, err)
	}
	fmt.Fprintf(out, "store ok backend=%s raw_sheet=%q rows=%d\n", cfg.StoreBackend, cfg.RawSheet, len(orders))

	column, err := store.ReadColumn(ctx, cfg.ProcessedSheet, cfg.ProcessedIDColumn)
	if err != nil {
		return fmt.Errorf("read %s: %w", cfg.ProcessedSheet, err)
	}
	fmt.Fprintf(out, "ledger ok sheet=%q processed_ids=%d\n", cfg.ProcessedSheet, len(ledger.ProcessedIDs(column)))

	vocab, err := catalog.Load(cfg.VocabularyPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "vocabulary ok products=%d\n", vocab.Len())

	classifier, err := classify.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	if noProbe {
		fmt.Fprintf(out, "classifier configured provider=%s (probe skipped)\n", cfg.ClassifierProvider)
		return nil
	}
	sample := vocab.Names()[0]
	name, err := pipeline.NewResolver(classifier, vocab).Resolve(ctx, sample+" - Leve 1")
	if err != nil {
		return fmt.Errorf("classifier probe: %w", err)
	}
	fmt.Fprintf(out, "classifier ok provider=%s probe=%q -> %q\n", cfg.ClassifierProvider, sample, name)
	return nil
}

func runRuns(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	limit, _ := cmd.Flags().GetInt("limit")

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open run journal: %w", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(limit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if last, err := db.GetMetadata(lastSuccessKey); err == nil && last != nil {
		fmt.Fprintf(out, "last successful sync: %s\n", *last)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs recorded")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintln(out, formatRun(r))
	}
	return nil
}

func formatRun(r storage.RunRecord) string {
	mode := ""
	if r.DryRun {
		mode = " dry-run"
	}
	line := fmt.Sprintf("%s %s %s%s read=%d dup=%d skipped=%d appended=%d took=%dms",
		r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.RunID, r.Status, mode,
		r.Counts["read"], r.Counts["duplicates"], r.Counts["unresolved"]+r.Counts["failed"], r.Counts["appended"], r.DurationMs)
	if r.Error != "" {
		line += " error=" + r.Error
	}
	return line
}
