package cipher

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDigit is matched by every *InvalidDigitError.
	ErrInvalidDigit = errors.New("invalid hex digit")
	// ErrOddLength reports hex input with an unpaired trailing digit.
	ErrOddLength = errors.New("odd length hex input")
	// ErrEmptyInput reports a request to score a zero-length sequence.
	ErrEmptyInput = errors.New("empty input")
)

// InvalidDigitError describes a byte that is not a hexadecimal digit. Position is the
// offset of the byte in the decoded input, or -1 when a single digit was decoded.
type InvalidDigitError struct {
	Position int
	Byte     byte
}

func (e *InvalidDigitError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("invalid hex digit 0x%02x", e.Byte)
	}
	return fmt.Sprintf("invalid hex digit 0x%02x at position %d", e.Byte, e.Position)
}

// Is reports whether target is ErrInvalidDigit.
func (e *InvalidDigitError) Is(target error) bool {
	return target == ErrInvalidDigit
}
