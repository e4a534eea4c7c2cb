// Package pagination implements page-numbered pagination over offset-based
// repository queries.
package pagination

const (
	// DefaultPageSize applies when the caller does not name a page size.
	DefaultPageSize = 20
	// MaxPageSize caps how many rows a single page may request.
	MaxPageSize = 100
)

// CapPageSize limits pageSize to the maximum. Values below 1 are the
// caller's validation problem, not a clamping one.
func CapPageSize(pageSize int) int {
	if pageSize > MaxPageSize {
		return MaxPageSize
	}
	return pageSize
}

// Offset converts a 1-based page number into a row offset.
func Offset(page, pageSize int) int {
	return (page - 1) * pageSize
}

// TotalPages returns how many pages of pageSize items cover totalItems.
// Zero items means zero pages.
func TotalPages(totalItems int64, pageSize int) int {
	if totalItems <= 0 {
		return 0
	}
	return int((totalItems + int64(pageSize) - 1) / int64(pageSize))
}

// HasPrev reports whether a page before the given one exists.
func HasPrev(page int) bool {
	return page > 1
}

// HasNext reports whether a page after the given one exists.
func HasNext(page, totalPages int) bool {
	return page < totalPages
}
