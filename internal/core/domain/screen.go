package domain

// Mode is the record form state of a management screen.
type Mode string

const (
	ModeNone     Mode = ""
	ModeCreating Mode = "creating"
	ModeEditing  Mode = "editing"
	ModeViewing  Mode = "viewing"
)

// ScreenState is everything a management screen remembers between requests.
type ScreenState[T any] struct {
	Records     []T    `json:"records"`
	TotalCount  int    `json:"totalCount"`
	CurrentPage int    `json:"currentPage"`
	PageSize    int    `json:"pageSize"`
	SearchTerm  string `json:"searchTerm"`
	Selected    *T     `json:"selected,omitempty"`
	Mode        Mode   `json:"mode"`
	SortColumn  string `json:"sortColumn,omitempty"`
	SortDesc    bool   `json:"sortDesc,omitempty"`
	Loaded      bool   `json:"loaded"`
}

// NewScreenState returns an empty screen with a fixed page size.
func NewScreenState[T any](pageSize int) *ScreenState[T] {
	return &ScreenState[T]{Records: []T{}, PageSize: pageSize}
}

// FormOpen reports whether any form mode is active.
func (s *ScreenState[T]) FormOpen() bool {
	return s.Mode != ModeNone
}

// OpenCreate switches to creating with an empty selection.
func (s *ScreenState[T]) OpenCreate() {
	s.Mode = ModeCreating
	s.Selected = nil
}

// OpenEdit switches to editing rec, replacing any previous selection.
func (s *ScreenState[T]) OpenEdit(rec T) {
	s.Mode = ModeEditing
	s.Selected = &rec
}

// OpenView switches to read-only viewing of rec.
func (s *ScreenState[T]) OpenView(rec T) {
	s.Mode = ModeViewing
	s.Selected = &rec
}

// Close returns to ModeNone.
func (s *ScreenState[T]) Close() {
	s.Mode = ModeNone
	s.Selected = nil
}
