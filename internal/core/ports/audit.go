package ports

import (
	"context"

	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
)

// AuditRecorder accepts audit entries without blocking the caller.
type AuditRecorder interface {
	Record(entry domain.AuditEntry)
}

// AuditSink is a destination the audit dispatcher writes to.
type AuditSink interface {
	Name() string
	Write(ctx context.Context, entry domain.AuditEntry) error
}

// AuditRepository stores and lists audit entries.
type AuditRepository interface {
	AuditSink
	Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}
