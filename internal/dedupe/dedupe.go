// Package dedupe collapses noisy sub-record input to one entry per key.
package dedupe

// FirstSeen returns items in their original order keeping only the first
// occurrence of each key. The input slice is never modified.
func FirstSeen[T any, K comparable](items []T, keyOf func(T) K) []T {
	if len(items) == 0 {
		return nil
	}

	seen := make(map[K]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		key := keyOf(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
