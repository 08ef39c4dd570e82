// Package cipher implements the primitives used to break single-byte XOR ciphertext.
//
// # Decoding
//
// DecodeHex consumes two ASCII digits per output byte. Input with an odd number of
// digits fails with ErrOddLength and any byte outside 0-9, a-f, A-F fails with an
// *InvalidDigitError carrying its position; no partial output is returned. Line
// endings are not digits: callers that read files saved with a trailing newline
// should run TrimTrailingWhitespace (or the trim_whitespace operation) first.
//
//	ciphertext, err := cipher.DecodeHex([]byte("1b37373331363f78"))
//	var digitErr *cipher.InvalidDigitError
//	if errors.As(err, &digitErr) {
//	    fmt.Printf("bad byte at %d\n", digitErr.Position)
//	}
//
// # Scoring
//
// Score returns the mean per-byte weight of a candidate plaintext: +20 for e, t, a,
// o, i and n, +10 for other lower-case letters, 0 for space and -10 for anything
// else. Scores only rank candidates decrypted from the same ciphertext.
//
// # Pipelines
//
// Operations are registered by name at init and can be chained:
//
//	decode := &cipher.Pipeline{Operations: []cipher.OperationConfig{
//	    {Name: cipher.OpTrimWhitespace},
//	    {Name: cipher.OpHexDecode},
//	}}
//	ciphertext, err := decode.Execute(ctx, raw)
//
// xor_single_byte is its own inverse and hex_encode/hex_decode invert each other, so
// an encrypt chain can be reversed into the matching decrypt chain.
//
// # Thread Safety
//
// The registry is safe for concurrent use and every operation is stateless. Transforms
// always allocate their output, so a ciphertext can be shared by concurrent readers.
package cipher
