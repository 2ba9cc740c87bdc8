package audit

import (
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
)

// AuditAction identifies the kind of mutation being recorded
type AuditAction string

const (
	ActionCreate        AuditAction = "CREATE"
	ActionUpdate        AuditAction = "UPDATE"
	ActionStockIncrease AuditAction = "STOCK_INCREASE"
	ActionStockDecrease AuditAction = "STOCK_DECREASE"
	ActionOrderReceive  AuditAction = "ORDER_RECEIVE"
)

// IsValid checks if the audit action is valid
func (a AuditAction) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionStockIncrease, ActionStockDecrease, ActionOrderReceive:
		return true
	}
	return false
}

// AuditLog records a single successful mutation: who changed which
// entity, how, and the entity state before and after the change.
type AuditLog struct {
	shared.BaseEntity
	EntityType string         `json:"entity_type" gorm:"size:100;not null;index:idx_audit_entity"`
	EntityID   uuid.UUID      `json:"entity_id" gorm:"type:uuid;not null;index:idx_audit_entity"`
	Action     AuditAction    `json:"action" gorm:"size:50;not null"`
	Actor      *uuid.UUID     `json:"actor,omitempty" gorm:"type:uuid"`
	Before     map[string]any `json:"before,omitempty" gorm:"serializer:json"`
	After      map[string]any `json:"after,omitempty" gorm:"serializer:json"`
}

// TableName returns the table name for GORM
func (AuditLog) TableName() string {
	return "audit_logs"
}

// NewAuditLog creates a new audit log entry
func NewAuditLog(entityType string, entityID uuid.UUID, action AuditAction, before, after map[string]any) (*AuditLog, error) {
	if entityType == "" {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", "Entity type cannot be empty")
	}
	if entityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENTITY_ID", "Entity ID cannot be empty")
	}
	if !action.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACTION", "Invalid audit action")
	}

	return &AuditLog{
		BaseEntity: shared.NewBaseEntity(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Before:     before,
		After:      after,
	}, nil
}

// WithActor attaches the identity that performed the mutation
func (l *AuditLog) WithActor(actor *uuid.UUID) *AuditLog {
	l.Actor = actor
	return l
}

// GetBefore returns a copy of the entity state before the mutation
func (l *AuditLog) GetBefore() map[string]any {
	if l.Before == nil {
		return make(map[string]any)
	}
	result := make(map[string]any, len(l.Before))
	maps.Copy(result, l.Before)
	return result
}

// GetAfter returns a copy of the entity state after the mutation
func (l *AuditLog) GetAfter() map[string]any {
	if l.After == nil {
		return make(map[string]any)
	}
	result := make(map[string]any, len(l.After))
	maps.Copy(result, l.After)
	return result
}

// GetTimestamp returns when the mutation was recorded
func (l *AuditLog) GetTimestamp() time.Time {
	return l.CreatedAt
}
