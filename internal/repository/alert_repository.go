package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"astrowatch/internal/models"
)

type AlertRepository interface {
	Create(ctx context.Context, alert *models.Alert) error
	ExistsRecent(ctx context.Context, userID uuid.UUID, refID, alertType string, since time.Time) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]models.Alert, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type alertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *models.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

// ExistsRecent - проверка дедупликации: есть ли алерт этого типа для пары
// (user, object), созданный не раньше since.
func (r *alertRepository) ExistsRecent(ctx context.Context, userID uuid.UUID, refID, alertType string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Alert{}).
		Where("user_id = ? AND neo_reference_id = ? AND type = ? AND created_at >= ?",
			userID, refID, alertType, since).
		Count(&count).
		Error
	return count > 0, err
}

func (r *alertRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]models.Alert, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}

	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit)

	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var alerts []models.Alert
	err := q.Find(&alerts).Error
	return alerts, err
}

func (r *alertRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Alert{}).
		Where("id = ?", id).
		Update("is_read", true).
		Error
}

func (r *alertRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Alert{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *alertRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Alert{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).
		Error
	return count, err
}

func (r *alertRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Alert{}).
		Count(&count).
		Error
	return count, err
}
