package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dcm51/Brutus/internal/cipher"
)

// runEncrypt produces hex ciphertext from a plaintext file. The chain is built as
// the reverse of the decrypt chain so both directions share one definition.
func runEncrypt(args []string) int {
	fs := flag.NewFlagSet("encrypt", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	key := fs.String("key", "", "single-byte key: decimal (leading zeros allowed), 0x-prefixed hex, or one character")
	trim := fs.Bool("trim", false, "strip trailing whitespace and line endings from the plaintext")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: brutus encrypt --key K [--trim] <file>")
		fs.PrintDefaults()
	}

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return parseExit(err)
	}
	if len(positional) != 1 {
		return usageError(fs, "expected exactly one input file")
	}
	if *key == "" {
		return usageError(fs, "--key is required")
	}
	params := map[string]any{cipher.ParamKey: *key}
	if _, err := cipher.KeyParam(params); err != nil {
		return usageError(fs, fmt.Sprintf("invalid --key: %v", err))
	}

	decrypt := &cipher.Pipeline{Operations: []cipher.OperationConfig{
		{Name: cipher.OpHexDecode},
		{Name: cipher.OpXORSingleByte, Parameters: params},
	}}
	encrypt, err := decrypt.Reverse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build encrypt pipeline: %v\n", err)
		return 1
	}

	path := positional[0]
	plaintext, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
		return 1
	}
	if *trim {
		plaintext = cipher.TrimTrailingWhitespace(plaintext)
	}

	out, err := encrypt.Execute(context.Background(), plaintext)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encrypt %s: %v\n", path, err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "%s\n", out)
	return 0
}
