package utils

import "strings"

func ToPtr[T any](t T) *T {
	return &t
}

func FromPtr[T any](t *T) T {
	var zero T
	if t == nil {
		return zero
	}
	return *t
}

func ToPtrNil(t string) *string {
	t = strings.TrimSpace(t)
	if t == "" {
		return nil
	}
	return &t
}

// Filter returns the elements of items for which keep is true, preserving order.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
