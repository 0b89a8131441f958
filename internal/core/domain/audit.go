package domain

import "time"

// AuditAction names a successful mutation.
type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
)

// AuditEntry records one successful mutation made through the dashboard.
type AuditEntry struct {
	Resource   string      `json:"resource"`
	Action     AuditAction `json:"action"`
	RecordID   int         `json:"record_id"`
	ActorEmail string      `json:"actor_email"`
	ActorID    int         `json:"actor_id"`
	At         time.Time   `json:"at"`
}
