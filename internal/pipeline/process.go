package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"orderledger/internal"
	"orderledger/internal/config"
	"orderledger/internal/ledger"
	"orderledger/internal/util"
)

type Options struct {
	RawSheet       string
	ProcessedSheet string
	IDColumn       int
	Workers        int
	DryRun         bool
	ManagerSource  string
	ManagerCodes   []string
}

func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		RawSheet:       cfg.RawSheet,
		ProcessedSheet: cfg.ProcessedSheet,
		IDColumn:       cfg.ProcessedIDColumn,
		Workers:        cfg.Workers,
		ManagerSource:  cfg.ManagerCodeSource,
		ManagerCodes:   cfg.ManagerCodes,
	}
}

type ProcessingService struct {
	source   ledger.Source
	dest     ledger.Destination
	resolver *Resolver
	opts     Options
	log      *zap.Logger
}

func NewProcessingService(source ledger.Source, dest ledger.Destination, resolver *Resolver, opts Options, log *zap.Logger) *ProcessingService {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.IDColumn < 1 {
		opts.IDColumn = 3
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &ProcessingService{source: source, dest: dest, resolver: resolver, opts: opts, log: log}
}

type RunResult struct {
	RunID            string
	DryRun           bool
	Read             int
	AlreadyProcessed int
	Duplicates       int
	BlankIDs         int
	Unresolved       int
	Failed           int
	Appended         int
	AppendedValue    decimal.Decimal
	UnparsedTotals   int
	Rows             []internal.ProcessedOrder
	Skipped          []internal.SkippedOrder
	Duration         time.Duration
}

func (r RunResult) SkippedCount() int { return r.Unresolved + r.Failed }

// Plan is the state a run starts from: the raw orders and what the differ keeps of them.
type Plan struct {
	Orders    []internal.RawOrder
	Diff      ledger.DiffResult
	EmptyDest bool
}

// Plan reads both sheets and diffs them without calling the classifier.
func (s *ProcessingService) Plan(ctx context.Context) (Plan, error) {
	table, err := s.source.ReadAll(ctx, s.opts.RawSheet)
	if err != nil {
		return Plan{}, fmt.Errorf("read %s: %w", s.opts.RawSheet, err)
	}
	orders, err := ledger.ParseTable(table)
	if err != nil {
		return Plan{}, fmt.Errorf("sheet %s: %w", s.opts.RawSheet, err)
	}
	column, err := s.dest.ReadColumn(ctx, s.opts.ProcessedSheet, s.opts.IDColumn)
	if err != nil {
		return Plan{}, fmt.Errorf("read %s: %w", s.opts.ProcessedSheet, err)
	}
	return Plan{
		Orders:    orders,
		Diff:      ledger.Diff(orders, ledger.ProcessedIDs(column)),
		EmptyDest: len(column) == 0,
	}, nil
}

func (s *ProcessingService) Run(ctx context.Context) (RunResult, error) {
	start := time.Now()
	res := RunResult{RunID: uuid.NewString(), DryRun: s.opts.DryRun, AppendedValue: decimal.Zero}
	log := s.log.With(zap.String("run_id", res.RunID))

	plan, err := s.Plan(ctx)
	if err != nil {
		return res, err
	}
	res.Read = plan.Diff.Read
	res.AlreadyProcessed = plan.Diff.AlreadyProcessed
	res.Duplicates = plan.Diff.Duplicates
	res.BlankIDs = plan.Diff.BlankIDs

	descriptions := make([]string, 0, len(plan.Orders))
	for _, o := range plan.Orders {
		descriptions = append(descriptions, o.Product)
	}
	managers, err := NewManagerMatcher(s.opts.ManagerSource, s.opts.ManagerCodes, descriptions)
	if err != nil {
		return res, err
	}
	extractor := NewExtractor(managers)

	log.Info("processing new rows",
		zap.Int("read", res.Read),
		zap.Int("new", len(plan.Diff.New)),
		zap.Int("already_processed", res.AlreadyProcessed),
		zap.Int("duplicates", res.Duplicates),
		zap.Int("workers", s.opts.Workers))

	outcomes := s.processAll(ctx, plan.Diff.New, extractor)

	rows := make([][]any, 0, len(outcomes)+1)
	if plan.EmptyDest && len(outcomes) > 0 {
		header := make([]any, 0, len(ledger.ProcessedHeaders))
		for _, h := range ledger.ProcessedHeaders {
			header = append(header, h)
		}
		rows = append(rows, header)
	}
	for i, out := range outcomes {
		raw := plan.Diff.New[i]
		if out.err != nil {
			if errors.Is(out.err, ErrUnresolved) {
				res.Unresolved++
			} else {
				res.Failed++
			}
			res.Skipped = append(res.Skipped, internal.SkippedOrder{RowNo: raw.RowNo, OrderID: raw.OrderID, Reason: out.err.Error()})
			log.Warn("row skipped",
				zap.String("order_id", raw.OrderID),
				zap.Int("row", raw.RowNo),
				zap.Error(out.err))
			continue
		}
		res.Rows = append(res.Rows, out.order)
		rows = append(rows, out.order.LedgerRow())

		if amount, err := util.ParseMoney(raw.Total); err == nil {
			res.AppendedValue = res.AppendedValue.Add(amount)
		} else {
			res.UnparsedTotals++
			log.Debug("total not summed", zap.String("order_id", raw.OrderID), zap.String("total", raw.Total))
		}
	}

	if len(res.Rows) > 0 && !s.opts.DryRun {
		if err := s.dest.Append(ctx, s.opts.ProcessedSheet, rows); err != nil {
			res.Duration = time.Since(start)
			return res, fmt.Errorf("append to %s: %w", s.opts.ProcessedSheet, err)
		}
		res.Appended = len(res.Rows)
	}
	res.Duration = time.Since(start)

	log.Info("run complete",
		zap.Bool("dry_run", res.DryRun),
		zap.Int("read", res.Read),
		zap.Int("duplicates", res.Duplicates),
		zap.Int("skipped", res.SkippedCount()),
		zap.Int("appended", res.Appended),
		zap.String("appended_value", res.AppendedValue.StringFixed(2)),
		zap.Duration("took", res.Duration))
	return res, nil
}

type rowOutcome struct {
	order internal.ProcessedOrder
	err   error
}

// processAll keeps outcomes aligned with orders regardless of worker count.
func (s *ProcessingService) processAll(ctx context.Context, orders []internal.RawOrder, extractor *Extractor) []rowOutcome {
	out := make([]rowOutcome, len(orders))
	if s.opts.Workers <= 1 {
		for i, o := range orders {
			out[i] = s.processRow(ctx, o, extractor)
		}
		return out
	}

	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for i, o := range orders {
		g.Go(func() error {
			out[i] = s.processRow(ctx, o, extractor)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *ProcessingService) processRow(ctx context.Context, raw internal.RawOrder, extractor *Extractor) (out rowOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = rowOutcome{err: fmt.Errorf("unexpected failure: %v", r)}
		}
	}()

	attrs, err := extractor.Extract(raw.Product, raw.Quantity)
	if err != nil {
		return rowOutcome{err: err}
	}
	name, err := s.resolver.Resolve(ctx, raw.Product)
	if err != nil {
		return rowOutcome{err: err}
	}
	return rowOutcome{order: AssembleRow(raw, attrs, name)}
}
