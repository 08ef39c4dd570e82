package cipher

// Per-byte weights used by Score.
const (
	weightFrequent = 20
	weightLower    = 10
	weightSpace    = 0
	weightOther    = -10
)

// Score rates how plausible data is as lower-case English prose. The result is the mean
// per-byte weight, truncated toward zero, and is only comparable between candidates
// decrypted from the same ciphertext.
func Score(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, ErrEmptyInput
	}

	total := 0
	for _, b := range data {
		total += byteWeight(b)
	}
	return total / len(data), nil
}

func byteWeight(b byte) int {
	switch {
	case b == 'e', b == 't', b == 'a', b == 'o', b == 'i', b == 'n':
		return weightFrequent
	case 'a' <= b && b <= 'z':
		return weightLower
	case b == ' ':
		return weightSpace
	default:
		return weightOther
	}
}
