package domain

// Status is the tri-state lifecycle marker shared by every managed record.
type Status int

const (
	StatusInactive      Status = 0
	StatusActive        Status = 1
	StatusPendingDelete Status = 2
)

// Valid reports whether s is one of the three known states.
func (s Status) Valid() bool {
	switch s {
	case StatusInactive, StatusActive, StatusPendingDelete:
		return true
	}
	return false
}

// Deletable reports whether a record in this state may be hard-deleted.
func (s Status) Deletable() bool {
	return s == StatusPendingDelete
}

// String returns the label shown in tables, forms and exports.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusPendingDelete:
		return "Delete"
	default:
		return "Inactive"
	}
}

// Statuses lists the selectable states in form order.
func Statuses() []Status {
	return []Status{StatusActive, StatusInactive, StatusPendingDelete}
}
