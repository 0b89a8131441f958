package view

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
)

// Column describes one list column of T.
type Column[T any] struct {
	Key   string
	Label string
	Value func(T) string
	// Compare orders two rows. Nil compares Value case-insensitively.
	Compare func(a, b T) int
}

// TextColumn builds a column ordered by its display value.
func TextColumn[T any](key, label string, value func(T) string) Column[T] {
	return Column[T]{Key: key, Label: label, Value: value}
}

// IntColumn builds a column ordered numerically.
func IntColumn[T any](key, label string, value func(T) int) Column[T] {
	return Column[T]{
		Key:     key,
		Label:   label,
		Value:   func(r T) string { return strconv.Itoa(value(r)) },
		Compare: func(a, b T) int { return cmp.Compare(value(a), value(b)) },
	}
}

func (c Column[T]) compare(a, b T) int {
	if c.Compare != nil {
		return c.Compare(a, b)
	}
	return strings.Compare(strings.ToLower(c.Value(a)), strings.ToLower(c.Value(b)))
}

// SortRecords returns a sorted copy of the loaded page. Sorting never leaves
// the page: it is a display concern only. Unknown keys keep server order.
func SortRecords[T any](recs []T, cols []Column[T], key string, desc bool) []T {
	out := slices.Clone(recs)
	idx := slices.IndexFunc(cols, func(c Column[T]) bool { return c.Key == key })
	if idx < 0 {
		return out
	}
	col := cols[idx]
	slices.SortStableFunc(out, func(a, b T) int {
		if desc {
			return col.compare(b, a)
		}
		return col.compare(a, b)
	})
	return out
}

// Header is a rendered column header.
type Header struct {
	Key    string
	Label  string
	Sorted bool
	Desc   bool
}

// NextDir is the direction a click on the header sorts by.
func (h Header) NextDir() string {
	if h.Sorted && !h.Desc {
		return "desc"
	}
	return "asc"
}

// Row is a rendered list row.
type Row struct {
	ID        int
	Cells     []string
	Status    domain.Status
	CanEdit   bool
	CanDelete bool
}

// Headers renders cols with the active sort marked.
func Headers[T any](cols []Column[T], sortKey string, desc bool) []Header {
	out := make([]Header, 0, len(cols))
	for _, c := range cols {
		out = append(out, Header{Key: c.Key, Label: c.Label, Sorted: c.Key == sortKey, Desc: desc && c.Key == sortKey})
	}
	return out
}

// Rows renders recs through cols.
func Rows[T domain.Record[T]](recs []T, cols []Column[T]) []Row {
	out := make([]Row, 0, len(recs))
	for _, r := range recs {
		cells := make([]string, 0, len(cols))
		for _, c := range cols {
			cells = append(cells, c.Value(r))
		}
		out = append(out, Row{ID: r.RecordID(), Cells: cells, Status: r.RecordStatus()})
	}
	return out
}

// Download is an export link in the screen toolbar.
type Download struct {
	Label string
	Href  string
}

// ListPage is the model of a management screen.
type ListPage struct {
	Screen     string
	Title      string
	Noun       string
	Search     string
	Headers    []Header
	Rows       []Row
	Pagination Pagination
	Form       *Form
	CanCreate  bool
	CanSearch  bool
	Exports    []Download
	// Confirm is the row awaiting delete confirmation, if any.
	Confirm *Row
}

