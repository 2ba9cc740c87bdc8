package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockledger/backend/internal/domain/audit"
	"github.com/stockledger/backend/internal/domain/shared"
)

// GormAuditLogRepository implements the audit Repository using GORM.
// Entries are append-only: a recorded fact is never updated or deleted.
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Record persists a single audit log entry
func (r *GormAuditLogRepository) Record(ctx context.Context, log *audit.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindByID finds an audit log entry by ID
func (r *GormAuditLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*audit.AuditLog, error) {
	var log audit.AuditLog
	if err := r.db.WithContext(ctx).First(&log, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// FindByEntity finds the audit trail of a single entity, newest first
func (r *GormAuditLogRepository) FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID, filter shared.Filter) ([]audit.AuditLog, error) {
	var logs []audit.AuditLog
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&audit.AuditLog{}).
			Where("entity_type = ? AND entity_id = ?", entityType, entityID),
		filter,
	)

	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// FindByAction finds entries recording a given action kind
func (r *GormAuditLogRepository) FindByAction(ctx context.Context, action audit.AuditAction, filter shared.Filter) ([]audit.AuditLog, error) {
	var logs []audit.AuditLog
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&audit.AuditLog{}).Where("action = ?", action),
		filter,
	)

	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Count counts entries matching the filter
func (r *GormAuditLogRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&audit.AuditLog{})

	for key, value := range filter.Filters {
		switch key {
		case "entity_type":
			query = query.Where("entity_type = ?", value)
		case "action":
			query = query.Where("action = ?", value)
		case "actor":
			query = query.Where("actor = ?", value)
		}
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies pagination and ordering to an audit query
func (r *GormAuditLogRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "action":
			query = query.Where("action = ?", value)
		case "actor":
			query = query.Where("actor = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// Ensure GormAuditLogRepository implements the audit Repository
var _ audit.Repository = (*GormAuditLogRepository)(nil)
