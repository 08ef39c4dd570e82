package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dcm51/Brutus/internal/cipher"
	"github.com/dcm51/Brutus/internal/observability/metrics"
	"github.com/dcm51/Brutus/internal/observability/tracing"
)

// KeySpace is the number of distinct single-byte keys.
const KeySpace = 256

// Strategy names recorded in metrics and spans.
const (
	ModeSingle   = "single"
	ModeThreaded = "threaded"
)

// ErrInvalidWorkers reports a parallel search requested with fewer than one worker.
var ErrInvalidWorkers = errors.New("worker count must be at least 1")

// Candidate is a key together with the score of the plaintext it produces.
type Candidate struct {
	Score int
	Key   byte
}

// better reports whether c should replace best.
func (c Candidate) better(best Candidate) bool {
	return c.Score > best.Score
}

// Partition is the half-open key range [Start, End).
type Partition struct {
	Start int
	End   int
}

// Len returns the number of keys in the partition.
func (p Partition) Len() int {
	return p.End - p.Start
}

// Partitions splits the key space into contiguous ranges whose boundaries are
// ceil(KeySpace*i/workers). Worker counts above KeySpace are clamped so that no
// partition is empty.
func Partitions(workers int) ([]Partition, error) {
	if workers < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkers, workers)
	}
	if workers > KeySpace {
		workers = KeySpace
	}
	parts := make([]Partition, workers)
	for i := range parts {
		parts[i] = Partition{
			Start: boundary(i, workers),
			End:   boundary(i+1, workers),
		}
	}
	return parts, nil
}

func boundary(i, n int) int {
	return (KeySpace*i + n - 1) / n
}

// Sequential scores every key in order on the calling goroutine.
func Sequential(ctx context.Context, ciphertext []byte) (Candidate, error) {
	ctx, span := tracing.StartSpan(ctx, "search.sequential", tracing.WithAttributes(map[string]any{
		"ciphertext.length": len(ciphertext),
	}))
	start := time.Now()

	if len(ciphertext) == 0 {
		span.RecordError(cipher.ErrEmptyInput)
		span.End()
		metrics.RecordSearch(ctx, ModeSingle, 1, 0, time.Since(start), cipher.ErrEmptyInput)
		return Candidate{}, cipher.ErrEmptyInput
	}

	best := scan(ciphertext, Partition{Start: 0, End: KeySpace})
	metrics.RecordSearch(ctx, ModeSingle, 1, KeySpace, time.Since(start), nil)
	span.SetAttribute("result.key", best.Key)
	span.SetAttribute("result.score", best.Score)
	span.EndWithStatus(tracing.StatusOK, "")
	return best, nil
}

// Parallel scores the key space on one goroutine per partition. Workers share the
// ciphertext read-only and each sends exactly one result back; the caller reduces
// them in arrival order.
func Parallel(ctx context.Context, ciphertext []byte, workers int) (Candidate, error) {
	parts, err := Partitions(workers)
	if err != nil {
		return Candidate{}, err
	}

	ctx, span := tracing.StartSpan(ctx, "search.parallel", tracing.WithAttributes(map[string]any{
		"ciphertext.length": len(ciphertext),
		"workers":           len(parts),
	}))
	start := time.Now()

	if len(ciphertext) == 0 {
		span.RecordError(cipher.ErrEmptyInput)
		span.End()
		metrics.RecordSearch(ctx, ModeThreaded, len(parts), 0, time.Since(start), cipher.ErrEmptyInput)
		return Candidate{}, cipher.ErrEmptyInput
	}

	results := make(chan Candidate, len(parts))
	for i, part := range parts {
		go func(index int, part Partition) {
			_, partSpan := tracing.StartSpan(ctx, "search.partition", tracing.WithAttributes(map[string]any{
				"partition.index": index,
				"partition.start": part.Start,
				"partition.end":   part.End,
			}))
			best := scan(ciphertext, part)
			partSpan.SetAttribute("result.score", best.Score)
			partSpan.End()
			results <- best
		}(i, part)
	}

	best := Candidate{}
	for range parts {
		if c := <-results; c.better(best) {
			best = c
		}
	}

	metrics.RecordSearch(ctx, ModeThreaded, len(parts), KeySpace, time.Since(start), nil)
	span.SetAttribute("result.key", best.Key)
	span.SetAttribute("result.score", best.Score)
	span.EndWithStatus(tracing.StatusOK, "")
	return best, nil
}

// scan returns the best candidate in part, seeded with {0, 0}. ciphertext must be
// non-empty, which is the only case in which Score fails.
func scan(ciphertext []byte, part Partition) Candidate {
	best := Candidate{}
	for k := part.Start; k < part.End; k++ {
		key := byte(k)
		score, _ := cipher.Score(cipher.XORSingleByte(ciphertext, key))
		if c := (Candidate{Score: score, Key: key}); c.better(best) {
			best = c
		}
	}
	return best
}
