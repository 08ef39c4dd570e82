package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/dcm51/Brutus/internal/cipher"
	"github.com/dcm51/Brutus/internal/config"
	"github.com/dcm51/Brutus/internal/history"
	"github.com/dcm51/Brutus/internal/logging"
	"github.com/dcm51/Brutus/internal/observability/metrics"
	"github.com/dcm51/Brutus/internal/observability/tracing"
	"github.com/dcm51/Brutus/internal/reporter"
	"github.com/dcm51/Brutus/internal/search"
)

func runCrack(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	fs := flag.NewFlagSet("crack", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var single, threaded bool
	fs.BoolVar(&single, "single", false, "scan all keys on one goroutine")
	fs.BoolVar(&single, "s", false, "shorthand for --single")
	fs.BoolVar(&threaded, "threaded", false, "scan the key space on parallel workers")
	fs.BoolVar(&threaded, "t", false, "shorthand for --threaded")
	workers := fs.Int("workers", cfg.Workers, "number of workers for --threaded")
	trim := fs.Bool("trim", cfg.TrimWhitespace, "strip trailing whitespace and line endings before decoding")
	format := fs.String("format", cfg.Format, "output format (text or json)")
	historyPath := fs.String("history", cfg.HistoryPath, "record the run in this SQLite database")
	metricsOut := fs.String("metrics-out", cfg.MetricsOut, "write a Prometheus text snapshot to this file")
	verbose := fs.Bool("verbose", false, "log structured events to stderr")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: brutus [crack] [options] <file>")
		fs.PrintDefaults()
	}

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return parseExit(err)
	}
	if len(positional) != 1 {
		return usageError(fs, "expected exactly one input file")
	}
	if single && threaded {
		return usageError(fs, "--single and --threaded are mutually exclusive")
	}

	switch {
	case single:
		cfg.Mode = config.ModeSingle
	case threaded:
		cfg.Mode = config.ModeThreaded
	}
	cfg.Workers = *workers
	cfg.TrimWhitespace = *trim
	cfg.Format = *format
	cfg.HistoryPath = *historyPath
	cfg.MetricsOut = *metricsOut
	if err := cfg.Validate(); err != nil {
		return usageError(fs, err.Error())
	}

	logger, err := newLogger(cfg.AuditLog, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open audit log: %v\n", err)
		return 1
	}
	defer logger.Close()

	ctx := context.Background()
	shutdown, err := tracing.Setup(ctx, tracing.Config{
		ServiceName: productName,
		SampleRatio: cfg.Trace.SampleRatio,
		FilePath:    cfg.Trace.File,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup tracing: %v\n", err)
		return 1
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "flush traces: %v\n", err)
		}
	}()

	c := &cracker{
		cfg:    cfg,
		source: positional[0],
		runID:  ulid.Make().String(),
	}
	c.log = logger.WithComponent("crack").WithRunID(c.runID)
	return c.run(ctx)
}

func newLogger(auditPath string, verbose bool) (*logging.Logger, error) {
	var opts []logging.Option
	if !verbose {
		opts = append(opts, logging.WithoutStderr())
	}
	if auditPath != "" {
		opts = append(opts, logging.WithFile(auditPath))
	}
	if !verbose && auditPath == "" {
		return logging.Nop(), nil
	}
	return logging.New(productName, opts...)
}

type cracker struct {
	cfg    config.Config
	source string
	runID  string
	log    *logging.Logger
}

func (c *cracker) run(ctx context.Context) (code int) {
	ctx, span := tracing.StartSpan(ctx, "brutus.crack", tracing.WithAttributes(map[string]any{
		"source": c.source,
		"mode":   c.cfg.Mode,
	}))
	defer func() {
		if code == 0 {
			span.EndWithStatus(tracing.StatusOK, "")
			return
		}
		span.End()
	}()

	c.emit(ctx, logging.Event{
		EventType: logging.EventRunStarted,
		Outcome:   logging.OutcomeInfo,
		Metadata: map[string]any{
			"source":  c.source,
			"mode":    c.cfg.Mode,
			"workers": c.cfg.Workers,
			"trim":    c.cfg.TrimWhitespace,
		},
	})

	data, err := os.ReadFile(c.source)
	if err != nil {
		span.RecordError(err)
		fmt.Fprintf(os.Stderr, "read %s: %v\n", c.source, err)
		return 1
	}
	c.emit(ctx, logging.Event{
		EventType: logging.EventInputRead,
		Outcome:   logging.OutcomeSuccess,
		Metadata:  map[string]any{"bytes": len(data)},
	})

	ciphertext, err := c.decode(ctx, data)
	if err != nil {
		span.RecordError(err)
		metrics.RecordDecodeFailure(decodeFailureReason(err))
		c.emit(ctx, logging.Event{
			EventType: logging.EventDecodeFailed,
			Outcome:   logging.OutcomeFailure,
			Reason:    err.Error(),
		})
		fmt.Fprintf(os.Stderr, "decode %s: %v\n", c.source, err)
		return 1
	}

	start := time.Now()
	best, workers, err := c.search(ctx, ciphertext)
	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		c.emit(ctx, logging.Event{
			EventType: logging.EventSearchCompleted,
			Outcome:   logging.OutcomeFailure,
			Reason:    err.Error(),
		})
		fmt.Fprintf(os.Stderr, "search %s: %v\n", c.source, err)
		return 1
	}

	result := reporter.Result{
		Source:    c.source,
		Mode:      c.cfg.Mode,
		Workers:   workers,
		Key:       best.Key,
		Score:     best.Score,
		Plaintext: cipher.XORSingleByte(ciphertext, best.Key),
		Duration:  elapsed,
	}
	c.emit(ctx, logging.Event{
		EventType: logging.EventSearchCompleted,
		Outcome:   logging.OutcomeSuccess,
		Metadata: map[string]any{
			"key":         int(best.Key),
			"score":       best.Score,
			"workers":     workers,
			"duration_ms": float64(elapsed) / float64(time.Millisecond),
		},
	})

	report, err := reporter.RenderJSON(result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render report: %v\n", err)
		return 1
	}
	if c.cfg.Format == config.FormatJSON {
		_, err = os.Stdout.Write(report)
	} else {
		err = reporter.RenderText(os.Stdout, result)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "write report: %v\n", err)
		return 1
	}

	if c.cfg.HistoryPath != "" {
		if err := c.record(ctx, bytes.TrimSpace(report)); err != nil {
			fmt.Fprintf(os.Stderr, "record history: %v\n", err)
			code = 1
		}
	}
	if c.cfg.MetricsOut != "" {
		if err := metrics.WriteFile(c.cfg.MetricsOut); err != nil {
			fmt.Fprintf(os.Stderr, "write metrics: %v\n", err)
			code = 1
		}
	}
	return code
}

// decode runs the decode pipeline, optionally trimming trailing whitespace first.
func (c *cracker) decode(ctx context.Context, data []byte) ([]byte, error) {
	ctx, span := tracing.StartSpan(ctx, "brutus.decode")
	defer span.End()

	steps := make([]cipher.OperationConfig, 0, 2)
	if c.cfg.TrimWhitespace {
		steps = append(steps, cipher.OperationConfig{Name: cipher.OpTrimWhitespace})
	}
	steps = append(steps, cipher.OperationConfig{Name: cipher.OpHexDecode})

	out, err := (&cipher.Pipeline{Operations: steps}).Execute(ctx, data)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("decoded.length", len(out))
	return out, nil
}

func (c *cracker) search(ctx context.Context, ciphertext []byte) (search.Candidate, int, error) {
	if c.cfg.Mode == config.ModeThreaded {
		workers := min(c.cfg.Workers, search.KeySpace)
		best, err := search.Parallel(ctx, ciphertext, workers)
		return best, workers, err
	}
	best, err := search.Sequential(ctx, ciphertext)
	return best, 1, err
}

func (c *cracker) record(ctx context.Context, report []byte) error {
	store, err := history.Open(c.cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Record(ctx, c.runID, report)
	if err != nil {
		return err
	}
	c.emit(ctx, logging.Event{
		EventType: logging.EventHistoryRecorded,
		Outcome:   logging.OutcomeSuccess,
		Metadata: map[string]any{
			"path":       c.cfg.HistoryPath,
			"session_id": run.SessionID,
		},
	})
	return nil
}

func (c *cracker) emit(ctx context.Context, event logging.Event) {
	if err := c.log.Emit(ctx, event); err != nil {
		fmt.Fprintf(os.Stderr, "log event: %v\n", err)
	}
}

func decodeFailureReason(err error) string {
	switch {
	case errors.Is(err, cipher.ErrOddLength):
		return "odd_length"
	case errors.Is(err, cipher.ErrInvalidDigit):
		return "invalid_digit"
	default:
		return "other"
	}
}
