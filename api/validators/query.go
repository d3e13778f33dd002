package validators

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/evergreenfarmers/storefront/pkg/errors"
)

// QueryInt reads an optional integer filter. Listing filters are forgiving:
// a missing, malformed or out-of-range value yields fallback instead of an
// error, so a hand-edited URL still renders a page.
func QueryInt(values url.Values, key string, fallback, lo, hi int) int {
	value, err := strconv.Atoi(strings.TrimSpace(values.Get(key)))
	if err != nil || value < lo || value > hi {
		return fallback
	}
	return value
}

// ParseUUIDParam parses a path parameter; a malformed id reads as not found
// so probing ids reveals nothing.
func ParseUUIDParam(value, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, name+" not found")
	}
	return id, nil
}

// FormInt reads a whole-number form field. Unlike QueryInt a bad value is
// an error, since it came from a submitted form.
func FormInt(raw string, fallback int, field string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		msg := field + " must be a whole number"
		return 0, pkgerrors.New(pkgerrors.CodeInvalidInput, msg).WithDetails(map[string]string{field: msg})
	}
	return value, nil
}

// splitComma splits a header list, dropping blanks.
func splitComma(value string) []string {
	var out []string
	for part := range strings.SplitSeq(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
