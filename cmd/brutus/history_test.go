package main

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestRunHistoryListsRuns(t *testing.T) {
	dir := isolateConfig(t)
	path := writeInput(t, dir, "ct.txt", attackAtDawn)
	historyPath := filepath.Join(dir, "history.db")
	t.Setenv("BRUTUS_HISTORY", historyPath)

	for i := 0; i < 3; i++ {
		if _, code := captureStdout(t, func() int { return run([]string{path}) }); code != 0 {
			t.Fatalf("crack %d exit code %d", i, code)
		}
	}

	output, code := captureStdout(t, func() int {
		return runHistory([]string{"--limit", "2"})
	})
	if code != 0 {
		t.Fatalf("runHistory exit code = %d", code)
	}
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %q", output)
	}
	if fields := strings.Fields(lines[0]); fields[0] != "ID" || fields[len(fields)-1] != "SCORE" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if fields[len(fields)-2] != "0x42" || fields[len(fields)-1] != "12" {
			t.Fatalf("unexpected row %q", line)
		}
	}
}

func TestRunHistoryRequiresPath(t *testing.T) {
	isolateConfig(t)
	restore := silenceOutput(t)
	defer restore()

	if code := runHistory(nil); code != 2 {
		t.Fatalf("expected exit code 2 without a history path, got %d", code)
	}
}
