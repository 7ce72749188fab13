package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/contract-workflow/internal/model"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) InsertAudit(ctx context.Context, entry model.AuditLog) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO audit_log (action, actor_id, detail)
		VALUES (?, ?, ?)
	`, entry.Action, entry.ActorID, entry.Detail).Error
}

func (r *AuditRepository) ListAudit(ctx context.Context, limit int) ([]model.AuditLog, error) {
	var entries []model.AuditLog
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, action, actor_id, detail, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT ?
	`, limit).Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) InsertNotification(ctx context.Context, n model.Notification) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO notifications (user_id, message, read)
		VALUES (?, ?, ?)
	`, n.UserID, n.Message, n.Read).Error
}

func (r *NotificationRepository) ListNotifications(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	var notifications []model.Notification
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, user_id, message, read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID).Scan(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}
