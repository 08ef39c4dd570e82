package main

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func newTestFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestCrackTextOutput(t *testing.T) {
	dir := isolateConfig(t)
	path := writeInput(t, dir, "ct.txt", attackAtDawn)

	for _, args := range [][]string{
		{"crack", path},
		{"crack", "-s", path},
		{"crack", "--threaded", "--workers", "3", path},
		{"crack", path, "-t", "--workers", "300"},
	} {
		out, code := captureStdout(t, func() int { return run(args) })
		if code != 0 {
			t.Fatalf("%v: expected exit code 0, got %d", args, code)
		}
		want := "Final key: 0x42 (B)\nScore: 12\nPlaintext: Attack at dawn\n"
		if out != want {
			t.Fatalf("%v: unexpected output %q", args, out)
		}
	}
}

func TestCrackJSONOutput(t *testing.T) {
	dir := isolateConfig(t)
	path := writeInput(t, dir, "ct.txt",
		"1b37373331363f78151b7f2b783431333d78397828372d363c78373e783a393b3736")

	out, code := captureStdout(t, func() int {
		return run([]string{"crack", "-t", "--workers", "4", "--format", "json", path})
	})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !gjson.Valid(out) {
		t.Fatalf("invalid JSON output %q", out)
	}
	checks := map[string]string{
		"mode":      "threaded",
		"key_hex":   "0x58",
		"key_char":  "X",
		"plaintext": "Cooking MC's like a pound of bacon",
		"source":    path,
	}
	for field, want := range checks {
		if got := gjson.Get(out, field).String(); got != want {
			t.Errorf("%s = %q, want %q", field, got, want)
		}
	}
	if got := gjson.Get(out, "score").Int(); got != 9 {
		t.Errorf("score = %d, want 9", got)
	}
	if got := gjson.Get(out, "workers").Int(); got != 4 {
		t.Errorf("workers = %d, want 4", got)
	}
}

func TestCrackTrailingNewline(t *testing.T) {
	dir := isolateConfig(t)
	path := writeInput(t, dir, "ct.txt", attackAtDawn+"\r\n")

	restore := silenceOutput(t)
	code := run([]string{"crack", path})
	restore()
	if code != 1 {
		t.Fatalf("expected exit code 1 without --trim, got %d", code)
	}

	out, code := captureStdout(t, func() int { return run([]string{"crack", "--trim", path}) })
	if code != 0 {
		t.Fatalf("expected exit code 0 with --trim, got %d", code)
	}
	if !strings.HasPrefix(out, "Final key: 0x42 (B)") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestCrackTrimFromEnv(t *testing.T) {
	dir := isolateConfig(t)
	path := writeInput(t, dir, "ct.txt", attackAtDawn+"\n")
	t.Setenv("BRUTUS_TRIM", "true")

	_, code := captureStdout(t, func() int { return run([]string{path}) })
	if code != 0 {
		t.Fatalf("expected BRUTUS_TRIM to enable trimming, got exit code %d", code)
	}
}

func TestCrackFailures(t *testing.T) {
	dir := isolateConfig(t)
	valid := writeInput(t, dir, "ct.txt", attackAtDawn)
	odd := writeInput(t, dir, "odd.txt", "414")
	bad := writeInput(t, dir, "bad.txt", "41zz")
	empty := writeInput(t, dir, "empty.txt", "")

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"missing file", []string{"crack", filepath.Join(dir, "missing.txt")}, 1},
		{"odd length", []string{"crack", odd}, 1},
		{"invalid digit", []string{"crack", bad}, 1},
		{"empty ciphertext", []string{"crack", empty}, 1},
		{"no file", []string{"crack"}, 2},
		{"two files", []string{"crack", valid, valid}, 2},
		{"single and threaded", []string{"crack", "-s", "-t", valid}, 2},
		{"zero workers", []string{"crack", "-t", "--workers", "0", valid}, 2},
		{"unknown format", []string{"crack", "--format", "xml", valid}, 2},
		{"unknown flag", []string{"crack", "--bogus", valid}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restore := silenceOutput(t)
			defer restore()
			if code := run(tt.args); code != tt.code {
				t.Fatalf("expected exit code %d, got %d", tt.code, code)
			}
		})
	}
}

func TestCrackReadErrorMessage(t *testing.T) {
	dir := isolateConfig(t)
	missing := filepath.Join(dir, "missing.txt")

	old := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stderr = w
	code := run([]string{"crack", missing})
	w.Close()
	os.Stderr = old
	data, _ := io.ReadAll(r)
	r.Close()

	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.HasPrefix(string(data), "read "+missing+": ") {
		t.Fatalf("unexpected stderr %q", data)
	}
}

func TestCrackWritesSideOutputs(t *testing.T) {
	dir := isolateConfig(t)
	path := writeInput(t, dir, "ct.txt", attackAtDawn)
	historyPath := filepath.Join(dir, "state", "history.db")
	metricsPath := filepath.Join(dir, "state", "metrics.prom")
	auditPath := filepath.Join(dir, "state", "audit.jsonl")
	tracePath := filepath.Join(dir, "state", "spans.jsonl")
	t.Setenv("BRUTUS_AUDIT_LOG", auditPath)
	t.Setenv("BRUTUS_TRACE_FILE", tracePath)

	_, code := captureStdout(t, func() int {
		return run([]string{"crack", "-t", "--history", historyPath, "--metrics-out", metricsPath, path})
	})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}

	metricsData, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(metricsData), `brutus_searches_total{mode="threaded",outcome="success"}`) {
		t.Fatalf("metrics snapshot missing search counter:\n%s", metricsData)
	}

	auditData, err := os.ReadFile(auditPath)
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	var events []string
	var runIDs = map[string]bool{}
	for _, line := range strings.Split(strings.TrimSpace(string(auditData)), "\n") {
		events = append(events, gjson.Get(line, "event_type").String())
		runIDs[gjson.Get(line, "run_id").String()] = true
	}
	want := "run_started,input_read,search_completed,history_recorded"
	if strings.Join(events, ",") != want {
		t.Fatalf("audit events = %v, want %s", events, want)
	}
	if len(runIDs) != 1 {
		t.Fatalf("expected one run id across events, got %v", runIDs)
	}

	traceData, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatalf("read traces: %v", err)
	}
	for _, span := range []string{"brutus.crack", "brutus.decode", "search.parallel", "search.partition"} {
		if !strings.Contains(string(traceData), `"name":"`+span+`"`) {
			t.Errorf("expected span %s in trace file", span)
		}
	}

	out, code := captureStdout(t, func() int {
		return run([]string{"history", "--history", historyPath, "--format", "json"})
	})
	if code != 0 {
		t.Fatalf("history exit code %d", code)
	}
	if n := gjson.Get(out, "#").Int(); n != 1 {
		t.Fatalf("expected one recorded run, got %d: %s", n, out)
	}
	var runID string
	for id := range runIDs {
		runID = id
	}
	if got := gjson.Get(out, "0.id").String(); got != runID {
		t.Fatalf("history id %q does not match logged run id %q", got, runID)
	}
}
