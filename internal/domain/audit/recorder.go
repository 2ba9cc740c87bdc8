package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
)

// Recorder persists audit facts. Implementations must be safe to call
// from inside the transaction that carries the mutation so the fact
// commits or rolls back together with it.
type Recorder interface {
	// Record persists a single audit log entry
	Record(ctx context.Context, log *AuditLog) error
}

// Repository defines the query side of the audit log
type Repository interface {
	Recorder

	// FindByID finds an audit log entry by ID
	FindByID(ctx context.Context, id uuid.UUID) (*AuditLog, error)

	// FindByEntity finds the audit trail of a single entity, newest first
	FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID, filter shared.Filter) ([]AuditLog, error)

	// FindByAction finds entries recording a given action kind
	FindByAction(ctx context.Context, action AuditAction, filter shared.Filter) ([]AuditLog, error)

	// Count counts entries matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
