package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"astrowatch/internal/models"
)

type NEORepository interface {
	Upsert(ctx context.Context, obj *models.NEOObject) error
	GetByRefID(ctx context.Context, refID string) (*models.NEOObject, error)
	FindUpcoming(ctx context.Context, from, until time.Time, limit int) ([]models.NEOObject, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type neoRepository struct {
	db *gorm.DB
}

func NewNEORepository(db *gorm.DB) NEORepository {
	return &neoRepository{db: db}
}

// Upsert идемпотентен по neo_reference_id: одинаковый вход дает одинаковое
// состояние, кроме fetched_at/expires_at, которые всегда продвигаются вперед.
func (r *neoRepository) Upsert(ctx context.Context, obj *models.NEOObject) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.NEOObject
		err := tx.Where("neo_reference_id = ?", obj.NeoReferenceID).First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(obj).Error
		}
		if err != nil {
			return err
		}

		obj.ID = existing.ID
		obj.CreatedAt = existing.CreatedAt
		return tx.Save(obj).Error
	})
}

func (r *neoRepository) GetByRefID(ctx context.Context, refID string) (*models.NEOObject, error) {
	var obj models.NEOObject
	err := r.db.WithContext(ctx).First(&obj, "neo_reference_id = ?", refID).Error
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

// FindUpcoming возвращает непротухшие снимки со сближением в окне [from, until].
func (r *neoRepository) FindUpcoming(ctx context.Context, from, until time.Time, limit int) ([]models.NEOObject, error) {
	q := r.db.WithContext(ctx).
		Where("close_approach_at >= ? AND close_approach_at <= ?", from, until).
		Where("expires_at > ?", time.Now().UTC()).
		Order("close_approach_at ASC")

	if limit > 0 {
		q = q.Limit(limit)
	}

	var objects []models.NEOObject
	err := q.Find(&objects).Error
	return objects, err
}

func (r *neoRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&models.NEOObject{})
	return res.RowsAffected, res.Error
}

func (r *neoRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.NEOObject{}).
		Count(&count).
		Error
	return count, err
}
