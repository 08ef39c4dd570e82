package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/tidwall/sjson"

	"github.com/dcm51/Brutus/internal/config"
	"github.com/dcm51/Brutus/internal/history"
	"github.com/dcm51/Brutus/internal/reporter"
)

func runHistory(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	historyPath := fs.String("history", cfg.HistoryPath, "path to the run history database")
	limit := fs.Int("limit", 20, "maximum number of runs to show (0 for all)")
	format := fs.String("format", cfg.Format, "output format (text or json)")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}
	if fs.NArg() > 0 {
		return usageError(fs, "history takes no arguments")
	}
	if *historyPath == "" {
		return usageError(fs, "no history database configured (use --history or BRUTUS_HISTORY)")
	}
	if *format != config.FormatText && *format != config.FormatJSON {
		return usageError(fs, fmt.Sprintf("unknown format %q", *format))
	}

	store, err := history.Open(*historyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open history: %v\n", err)
		return 1
	}
	defer store.Close()

	runs, err := store.List(context.Background(), *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list history: %v\n", err)
		return 1
	}

	if *format == config.FormatJSON {
		return printHistoryJSON(runs)
	}
	return printHistoryText(runs)
}

func printHistoryText(runs []history.Run) int {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRECORDED\tSOURCE\tMODE\tKEY\tSCORE")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			run.ID,
			run.RecordedAt.Local().Format(time.RFC3339),
			run.Source,
			run.Mode,
			reporter.KeyHex(byte(run.Key)),
			run.Score,
		)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "write history: %v\n", err)
		return 1
	}
	return 0
}

func printHistoryJSON(runs []history.Run) int {
	list := []byte("[]")
	for _, run := range runs {
		doc, err := sjson.SetBytes(run.Report, "id", run.ID)
		if err == nil {
			doc, err = sjson.SetBytes(doc, "recorded_at", run.RecordedAt.UTC().Format(time.RFC3339Nano))
		}
		if err == nil {
			list, err = reporter.AppendRaw(list, doc)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "render history: %v\n", err)
			return 1
		}
	}
	fmt.Fprintf(os.Stdout, "%s\n", list)
	return 0
}
