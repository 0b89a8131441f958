package view

import "github.com/ppfmanagement/admin-dashboard/internal/core/domain"

// maxLinks bounds how many page links are rendered around the current page.
const maxLinks = 7

// Pagination is display-only: it renders links and never fetches.
type Pagination struct {
	Current    int // 0-based
	TotalCount int
	Size       int
}

// Total is the number of pages, at least 1.
func (p Pagination) Total() int {
	return domain.PageCount(p.TotalCount, p.Size)
}

func (p Pagination) HasPrev() bool { return p.Current > 0 }
func (p Pagination) HasNext() bool { return p.Current+1 < p.Total() }
func (p Pagination) Prev() int     { return p.Current - 1 }
func (p Pagination) Next() int     { return p.Current + 1 }

// Pages returns a window of 0-based page indexes centred on Current.
func (p Pagination) Pages() []int {
	total := p.Total()
	lo := max(p.Current-maxLinks/2, 0)
	hi := min(lo+maxLinks, total)
	lo = max(hi-maxLinks, 0)

	out := make([]int, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, i)
	}
	return out
}

// First and Last are the 1-based row numbers shown on the current page.
func (p Pagination) First() int {
	if p.TotalCount == 0 {
		return 0
	}
	return p.Current*p.Size + 1
}

func (p Pagination) Last() int {
	return min((p.Current+1)*p.Size, p.TotalCount)
}
