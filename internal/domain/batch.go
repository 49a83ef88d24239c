package domain

import "iter"

// Batch yields consecutive windows of at most size elements.
// The windows share items' backing array.
func Batch[T any](items []T, size int) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		window := size
		if window <= 0 {
			window = len(items)
		}
		for start := 0; start < len(items); start += window {
			end := min(start+window, len(items))
			if !yield(items[start:end:end]) {
				return
			}
		}
	}
}
