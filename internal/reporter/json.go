package reporter

import (
	"strings"
	"time"

	"github.com/tidwall/sjson"
)

// RenderJSON converts a result into a single-line JSON object terminated by a newline.
func RenderJSON(r Result) ([]byte, error) {
	fields := []struct {
		path  string
		value any
	}{
		{"source", r.Source},
		{"mode", r.Mode},
		{"workers", r.Workers},
		{"key", int(r.Key)},
		{"key_hex", KeyHex(r.Key)},
		{"key_char", KeyChar(r.Key)},
		{"score", r.Score},
		{"plaintext", strings.ToValidUTF8(string(r.Plaintext), "�")},
		{"duration_ms", float64(r.Duration) / float64(time.Millisecond)},
	}

	data := []byte("{}")
	for _, f := range fields {
		var err error
		data, err = sjson.SetBytes(data, f.path, f.value)
		if err != nil {
			return nil, err
		}
	}
	return append(data, '\n'), nil
}

// AppendRaw adds an already-rendered JSON document to a JSON array, starting a new
// array when list is empty.
func AppendRaw(list, doc []byte) ([]byte, error) {
	if len(list) == 0 {
		list = []byte("[]")
	}
	return sjson.SetRawBytes(list, "-1", doc)
}
