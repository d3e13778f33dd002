package enums

import (
	"fmt"
	"slices"
)

// parseKnown returns the member of valid equal to value.
func parseKnown[T ~string](kind, value string, valid []T) (T, error) {
	if v := T(value); slices.Contains(valid, v) {
		return v, nil
	}
	var zero T
	return zero, invalid(kind, value)
}

func invalid(kind, value string) error {
	return fmt.Errorf("invalid %s %q", kind, value)
}

// labelOr looks value up in labels, falling back to the raw code.
func labelOr[T ~string](value T, labels map[T]string) string {
	if label, ok := labels[value]; ok {
		return label
	}
	return string(value)
}
