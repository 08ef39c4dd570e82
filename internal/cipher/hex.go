package cipher

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// DecodeDigit maps one ASCII hexadecimal digit to its value.
func DecodeDigit(b byte) (byte, error) {
	switch {
	case '0' <= b && b <= '9':
		return b - '0', nil
	case 'a' <= b && b <= 'f':
		return b - 'a' + 10, nil
	case 'A' <= b && b <= 'F':
		return b - 'A' + 10, nil
	}
	return 0, &InvalidDigitError{Position: -1, Byte: b}
}

// DecodeHex decodes pairs of hexadecimal digits into raw bytes. The input must have an
// even length and contain only digits; nothing is returned when either check fails.
func DecodeHex(input []byte) ([]byte, error) {
	if len(input)%2 != 0 {
		return nil, fmt.Errorf("%w: %d digits", ErrOddLength, len(input))
	}

	out := make([]byte, len(input)/2)
	for i := range out {
		hi, err := DecodeDigit(input[2*i])
		if err != nil {
			return nil, &InvalidDigitError{Position: 2 * i, Byte: input[2*i]}
		}
		lo, err := DecodeDigit(input[2*i+1])
		if err != nil {
			return nil, &InvalidDigitError{Position: 2*i + 1, Byte: input[2*i+1]}
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

// EncodeHex returns the lower-case hexadecimal form of data.
func EncodeHex(data []byte) []byte {
	out := make([]byte, hex.EncodedLen(len(data)))
	hex.Encode(out, data)
	return out
}

// TrimTrailingWhitespace drops trailing spaces, tabs and line endings so that files
// saved with a final newline (or CRLF) can be decoded.
func TrimTrailingWhitespace(input []byte) []byte {
	return bytes.TrimRight(input, " \t\r\n")
}
