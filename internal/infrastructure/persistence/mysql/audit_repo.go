package mysql

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xiebiao/bookcatalog/internal/domain/audit"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// AuditRepository 审计日志(edits表)，只插入
type AuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository 创建审计日志仓储
func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record 追加事件，ID为空时生成
func (r *AuditRepository) Record(ctx context.Context, e *audit.Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	model := &EditModel{
		ID:         e.ID,
		Timestamp:  e.Timestamp,
		Op:         string(e.Op),
		Collection: e.Collection,
		TargetID:   e.TargetID,
		Actor:      e.Actor,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return apperrors.Persistence(err, "failed to record audit event")
	}
	return nil
}

// Count 事件总数
func (r *AuditRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&EditModel{}).Count(&n).Error; err != nil {
		return 0, apperrors.Persistence(err, "failed to count audit events")
	}
	return n, nil
}

// ListByTarget 按时间顺序返回某个目标的事件
func (r *AuditRepository) ListByTarget(ctx context.Context, targetID string) ([]*audit.Event, error) {
	var models []EditModel
	err := r.db.WithContext(ctx).
		Where("target_id = ?", targetID).
		Order("timestamp ASC").
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Persistence(err, "failed to list audit events")
	}

	events := make([]*audit.Event, len(models))
	for i, m := range models {
		events[i] = &audit.Event{
			ID:         m.ID,
			Timestamp:  m.Timestamp,
			Op:         audit.Operation(m.Op),
			Collection: m.Collection,
			TargetID:   m.TargetID,
			Actor:      m.Actor,
		}
	}
	return events, nil
}

var _ audit.Log = (*AuditRepository)(nil)
