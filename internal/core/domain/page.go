package domain

// PageQuery carries the list parameters sent to the backend.
type PageQuery struct {
	PageIndex  int
	PageSize   int
	SearchTerm string
}

// Page is one page of records as returned by a list call.
type Page[T any] struct {
	Items      []T
	TotalCount int
	PageIndex  int
	PageSize   int
}

// EmptyPage is the sentinel a failed list call is reported with.
func EmptyPage[T any](q PageQuery) Page[T] {
	return Page[T]{Items: []T{}, PageIndex: q.PageIndex, PageSize: q.PageSize}
}

// PageCount returns ceil(total/size), at least 1.
func PageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}
