// Package search recovers a single-byte XOR key by scoring every candidate key
// against a ciphertext and keeping the best-scoring one.
//
// # Strategies
//
// Sequential walks keys 0 through 255 on the calling goroutine. Parallel splits the
// key space into contiguous partitions, scans each partition on its own goroutine and
// reduces the per-partition winners on the caller.
//
// Both strategies start from Candidate{Score: 0, Key: 0} and only replace the current
// best with a strictly greater score. When every key scores at or below zero the seed
// is returned unchanged.
//
// # Ties
//
// Sequential always returns the lowest key among those sharing the maximum score.
// Parallel reduces partition results in arrival order, so when keys in different
// partitions share the maximum score the returned key depends on scheduling and may
// differ between runs. The score is always the same.
package search
