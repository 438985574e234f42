// internal/utils/paginate.go
package utils

// Paginate returns the page-th slice of items (1-based), pageSize items long.
// The last page may be shorter. Out-of-range pages yield an empty slice.
func Paginate[T any](items []T, pageSize, page int) []T {
	if pageSize < 1 || page < 1 {
		return []T{}
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// PageCount returns how many pages of pageSize are needed to hold n items.
func PageCount(n, pageSize int) int {
	if pageSize < 1 || n <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}
