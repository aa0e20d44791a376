package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AlertTypeCloseApproach = "close_approach"
	AlertTypeHighRisk      = "high_risk"
	AlertTypeWatchedUpdate = "watched_update"
	AlertTypeNewHazardous  = "new_hazardous"
)

// Alert - одна доставленная нотификация. Для close_approach действует
// дедупликация: не более одной записи на пару (user, object) за 24 часа.
type Alert struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index"`
	NeoReferenceID string    `gorm:"not null;index"`
	ObjectName     string    `gorm:"type:text"`
	Type           string    `gorm:"type:varchar(32);not null"`
	Severity       string    `gorm:"type:varchar(16);not null"`
	Title          string    `gorm:"type:text"`
	Message        string    `gorm:"type:text"`
	EventAt        time.Time
	IsRead         bool      `gorm:"not null;default:false;index"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index"`
}
