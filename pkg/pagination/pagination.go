package pagination

import (
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 12
	// MaxLimit caps how many rows any page can request.
	MaxLimit = 100
)

// Params holds page-number pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Page describes one page of a listing after clamping.
type Page struct {
	Number      int   `json:"page"`
	Size        int   `json:"page_size"`
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ParsePage reads a 1-based page number; anything unparsable or below one is page 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Resolve clamps the requested page into [1, TotalPages]. An empty listing
// still has one (empty) page.
func Resolve(requested, size int, total int64) Page {
	size = NormalizeLimit(size)
	if total < 0 {
		total = 0
	}
	pages := int((total + int64(size) - 1) / int64(size))
	if pages < 1 {
		pages = 1
	}
	if requested < 1 {
		requested = 1
	}
	if requested > pages {
		requested = pages
	}
	return Page{
		Number:      requested,
		Size:        size,
		TotalItems:  total,
		TotalPages:  pages,
		HasNext:     requested < pages,
		HasPrevious: requested > 1,
	}
}

// Offset is the row offset of the first item on the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}
