package cipher

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Registered operation names.
const (
	OpHexDecode      = "hex_decode"
	OpHexEncode      = "hex_encode"
	OpTrimWhitespace = "trim_whitespace"
	OpXORSingleByte  = "xor_single_byte"
)

// ParamKey is the parameter consumed by the xor_single_byte operation.
const ParamKey = "key"

var errMissingKey = errors.New("key parameter required")

// HexDecodeOp decodes strict hexadecimal text.
type HexDecodeOp struct {
	BaseOperation
}

func (op *HexDecodeOp) Execute(ctx context.Context, input []byte, params map[string]any) ([]byte, error) {
	return DecodeHex(input)
}

// HexEncodeOp encodes bytes as lower-case hexadecimal text.
type HexEncodeOp struct {
	BaseOperation
}

func (op *HexEncodeOp) Execute(ctx context.Context, input []byte, params map[string]any) ([]byte, error) {
	return EncodeHex(input), nil
}

// TrimWhitespaceOp strips trailing whitespace and line endings.
type TrimWhitespaceOp struct {
	BaseOperation
}

func (op *TrimWhitespaceOp) Execute(ctx context.Context, input []byte, params map[string]any) ([]byte, error) {
	trimmed := TrimTrailingWhitespace(input)
	out := make([]byte, len(trimmed))
	copy(out, trimmed)
	return out, nil
}

// XORSingleByteOp XORs every byte with the key parameter.
type XORSingleByteOp struct {
	BaseOperation
}

func (op *XORSingleByteOp) Execute(ctx context.Context, input []byte, params map[string]any) ([]byte, error) {
	key, err := KeyParam(params)
	if err != nil {
		return nil, err
	}
	return XORSingleByte(input, key), nil
}

// KeyParam extracts a single-byte key from operation parameters. Integers, JSON/YAML
// numbers and strings in decimal, 0x-hex or single-character form are accepted.
// Leading zeros do not select octal: "010" is ten.
func KeyParam(params map[string]any) (byte, error) {
	raw, ok := params[ParamKey]
	if !ok || raw == nil {
		return 0, errMissingKey
	}

	var n int64
	switch v := raw.(type) {
	case byte:
		return v, nil
	case int:
		n = int64(v)
	case int64:
		n = v
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("key %v is not an integer", v)
		}
		n = int64(v)
	case string:
		parsed, err := parseKeyString(v)
		if err != nil {
			return 0, err
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("unsupported key type %T", raw)
	}
	if n < 0 || n > 0xff {
		return 0, fmt.Errorf("key %d out of range 0-255", n)
	}
	return byte(n), nil
}

func parseKeyString(s string) (byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errMissingKey
	}
	if len(s) == 1 && (s[0] < '0' || s[0] > '9') {
		return s[0], nil
	}
	base, digits := 10, s
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, digits = 16, s[2:]
	}
	n, err := strconv.ParseUint(digits, base, 8)
	if err != nil {
		return 0, fmt.Errorf("parse key %q: %w", s, err)
	}
	return byte(n), nil
}

func init() {
	hexDecode := &HexDecodeOp{BaseOperation{
		NameValue:        OpHexDecode,
		TypeValue:        OperationTypeDecode,
		DescriptionValue: "Decode hexadecimal text, rejecting odd lengths and non-digit bytes",
	}}
	hexEncode := &HexEncodeOp{BaseOperation{
		NameValue:        OpHexEncode,
		TypeValue:        OperationTypeEncode,
		DescriptionValue: "Encode bytes as lower-case hexadecimal text",
	}}
	hexDecode.ReverseOp = hexEncode
	hexEncode.ReverseOp = hexDecode

	xor := &XORSingleByteOp{BaseOperation{
		NameValue:        OpXORSingleByte,
		TypeValue:        OperationTypeTransform,
		DescriptionValue: "XOR every byte with a single-byte key",
	}}
	xor.ReverseOp = xor

	trim := &TrimWhitespaceOp{BaseOperation{
		NameValue:        OpTrimWhitespace,
		TypeValue:        OperationTypePreprocess,
		DescriptionValue: "Strip trailing whitespace and line endings",
	}}

	mustRegister(hexDecode, hexEncode, xor, trim)
}
