package cipher

// XORSingleByte returns a new slice holding every byte of data combined with key.
// Applying the same key twice restores the input.
func XORSingleByte(data []byte, key byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key
	}
	return out
}
