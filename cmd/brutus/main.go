package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

const productName = "brutus"
const cliBanner = productName + ": single-byte XOR key recovery"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run dispatches to a subcommand. Anything that is not a known subcommand is
// handed to crack, so `brutus -t ciphertext.txt` works without naming it.
func run(args []string) int {
	if len(args) == 0 {
		printUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "crack":
		return runCrack(args[1:])
	case "encrypt":
		return runEncrypt(args[1:])
	case "history":
		return runHistory(args[1:])
	case "version", "--version", "-version":
		return runVersion(args[1:])
	case "help", "--help", "-help", "-h":
		printUsage(os.Stdout)
		return 0
	default:
		return runCrack(args)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, cliBanner)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  brutus [crack] [--single|-s] [--threaded|-t] [--workers N] [--trim] [--format text|json]")
	fmt.Fprintln(w, "                 [--history path] [--metrics-out path] [--verbose] <file>")
	fmt.Fprintln(w, "  brutus encrypt --key K [--trim] <file>")
	fmt.Fprintln(w, "  brutus history [--history path] [--limit N] [--format text|json]")
	fmt.Fprintln(w, "  brutus version")
}

// parseInterspersed parses flags that may appear before or after positional
// arguments. A literal "--" ends flag parsing.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		consumed := len(args) - len(rest)
		if consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// usageError prints msg and the flag set's usage, returning the usage exit code.
func usageError(fs *flag.FlagSet, msg string) int {
	fmt.Fprintln(os.Stderr, msg)
	fs.Usage()
	return 2
}

func parseExit(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	return 2
}
