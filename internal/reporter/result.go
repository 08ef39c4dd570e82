// Package reporter renders the outcome of a key search for people and for tools.
package reporter

import (
	"fmt"
	"time"
)

// Result is everything reported about one crack run.
type Result struct {
	Source    string
	Mode      string
	Workers   int
	Key       byte
	Score     int
	Plaintext []byte
	Duration  time.Duration
}

// KeyHex formats the key as 0x-prefixed, two-digit lower-case hex.
func KeyHex(key byte) string {
	return fmt.Sprintf("0x%02x", key)
}

// KeyChar returns the key as a character when it is printable ASCII and as a \xNN
// escape otherwise.
func KeyChar(key byte) string {
	if key >= 0x20 && key < 0x7f {
		return string(rune(key))
	}
	return fmt.Sprintf("\\x%02x", key)
}
