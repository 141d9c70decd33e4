// Package pagination slices ordered result sets into pages.
// All functions are pure: inputs are never mutated.
package pagination

// Page is one window onto a larger ordered sequence.
type Page[T any] struct {
	Total   int `json:"total"`
	Results []T `json:"results"`
}

// Paginate returns the items starting at index skip, at most limit of them
// when limit is non-nil. Total is always len(items). A skip past the end
// yields an empty, non-nil Results slice.
func Paginate[T any](items []T, skip int, limit *int) Page[T] {
	if skip < 0 {
		skip = 0
	}

	end := len(items)
	if limit != nil && *limit >= 0 && skip+*limit < end {
		end = skip + *limit
	}

	results := []T{}
	if skip < end {
		results = make([]T, end-skip)
		copy(results, items[skip:end])
	}

	return Page[T]{Total: len(items), Results: results}
}
