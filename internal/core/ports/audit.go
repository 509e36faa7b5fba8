package ports

import (
	"context"

	"github.com/propertyhub/identity-core/internal/core/domain"
)

// AuditSink accepts auth events for asynchronous persistence. Record must not block.
type AuditSink interface {
	Record(event domain.AuthEvent)
}

// AuditRepository persists auth events to the audit trail.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}
