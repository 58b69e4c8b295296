package dedupe

import (
	"reflect"
	"testing"
)

type skill struct {
	name   string
	rating int
}

func TestFirstSeen(t *testing.T) {
	t.Parallel()

	t.Run("keeps the first occurrence per key", func(t *testing.T) {
		t.Parallel()

		input := []skill{{"Swift", 4}, {"OpenCV", 1}, {"Swift", 7}, {"Go", 5}, {"OpenCV", 9}}
		got := FirstSeen(input, func(s skill) string { return s.name })
		want := []skill{{"Swift", 4}, {"OpenCV", 1}, {"Go", 5}}

		if !reflect.DeepEqual(got, want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})

	t.Run("preserves original order", func(t *testing.T) {
		t.Parallel()

		input := []int{3, 1, 4, 1, 5, 9, 2, 6, 5, 3}
		got := FirstSeen(input, func(n int) int { return n })
		want := []int{3, 1, 4, 5, 9, 2, 6}

		if !reflect.DeepEqual(got, want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		input := []skill{{"a", 1}, {"b", 2}, {"a", 3}}
		keyOf := func(s skill) string { return s.name }

		once := FirstSeen(input, keyOf)
		twice := FirstSeen(once, keyOf)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("expected %v after second pass, got %v", once, twice)
		}
	})

	t.Run("returns nil for empty input", func(t *testing.T) {
		t.Parallel()

		if got := FirstSeen(nil, func(s skill) string { return s.name }); got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
		if got := FirstSeen([]skill{}, func(s skill) string { return s.name }); got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
	})

	t.Run("does not modify the input", func(t *testing.T) {
		t.Parallel()

		input := []skill{{"a", 1}, {"a", 2}, {"b", 3}}
		snapshot := append([]skill(nil), input...)
		FirstSeen(input, func(s skill) string { return s.name })

		if !reflect.DeepEqual(input, snapshot) {
			t.Fatalf("input mutated: %v", input)
		}
	})
}
