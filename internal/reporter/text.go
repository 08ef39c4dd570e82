package reporter

import (
	"fmt"
	"io"
)

// RenderText writes the human-readable report.
func RenderText(w io.Writer, r Result) error {
	_, err := fmt.Fprintf(w, "Final key: %s (%s)\nScore: %d\nPlaintext: %s\n",
		KeyHex(r.Key), KeyChar(r.Key), r.Score, r.Plaintext)
	return err
}
