package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// attackAtDawn is "Attack at dawn" XORed with 0x42.
const attackAtDawn = "033636232129622336622623352c"

func silenceOutput(t *testing.T) func() {
	t.Helper()
	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open dev null: %v", err)
	}
	stdout := os.Stdout
	stderr := os.Stderr
	os.Stdout = devNull
	os.Stderr = devNull
	return func() {
		os.Stdout = stdout
		os.Stderr = stderr
		if err := devNull.Close(); err != nil {
			t.Fatalf("close dev null: %v", err)
		}
	}
}

func captureStdout(t *testing.T, fn func() int) (string, int) {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	code := fn()
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	os.Stdout = old
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read stdout: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close reader: %v", err)
	}
	return string(data), code
}

// isolateConfig points config discovery at empty directories and clears
// BRUTUS_* overrides. It returns the working directory.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	home := filepath.Join(dir, "home")
	if err := os.Mkdir(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	for _, key := range []string{
		"BRUTUS_MODE", "BRUTUS_WORKERS", "BRUTUS_THREADS", "BRUTUS_TRIM", "BRUTUS_FORMAT",
		"BRUTUS_HISTORY", "BRUTUS_AUDIT_LOG", "BRUTUS_METRICS_OUT", "BRUTUS_TRACE_FILE",
		"BRUTUS_TRACE_SAMPLE",
	} {
		t.Setenv(key, "")
	}
	prevDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		if err := os.Chdir(prevDir); err != nil {
			t.Errorf("restore working directory: %v", err)
		}
	})
	return dir
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRunWithoutArgumentsIsUsageError(t *testing.T) {
	restore := silenceOutput(t)
	defer restore()

	if code := run(nil); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}

func TestRunDefaultsToCrack(t *testing.T) {
	dir := isolateConfig(t)
	path := writeInput(t, dir, "ct.txt", attackAtDawn)

	out, code := captureStdout(t, func() int { return run([]string{path}) })
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.HasPrefix(out, "Final key: 0x42 (B)\n") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRunHelpAndVersion(t *testing.T) {
	out, code := captureStdout(t, func() int { return run([]string{"help"}) })
	if code != 0 || !strings.Contains(out, cliBanner) {
		t.Fatalf("unexpected help output (code %d): %q", code, out)
	}

	out, code = captureStdout(t, func() int { return run([]string{"version"}) })
	if code != 0 || strings.TrimSpace(out) != "brutus dev" {
		t.Fatalf("unexpected version output (code %d): %q", code, out)
	}

	restore := silenceOutput(t)
	defer restore()
	if code := run([]string{"version", "extra"}); code != 2 {
		t.Fatalf("expected exit code 2 for version with arguments, got %d", code)
	}
}

func TestParseInterspersed(t *testing.T) {
	restore := silenceOutput(t)
	defer restore()

	tests := []struct {
		name       string
		args       []string
		positional []string
		threaded   bool
	}{
		{"flags first", []string{"-t", "ct.txt"}, []string{"ct.txt"}, true},
		{"flags last", []string{"ct.txt", "--threaded"}, []string{"ct.txt"}, true},
		{"no flags", []string{"a", "b"}, []string{"a", "b"}, false},
		{"double dash", []string{"--", "-t"}, []string{"-t"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newTestFlagSet()
			threaded := fs.Bool("threaded", false, "")
			fs.BoolVar(threaded, "t", false, "")
			got, err := parseInterspersed(fs, tt.args)
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if strings.Join(got, ",") != strings.Join(tt.positional, ",") {
				t.Fatalf("positional = %v, want %v", got, tt.positional)
			}
			if *threaded != tt.threaded {
				t.Fatalf("threaded = %v, want %v", *threaded, tt.threaded)
			}
		})
	}
}
