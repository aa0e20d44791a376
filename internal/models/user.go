package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// User - настройки алертов читаются пайплайном только на чтение,
// мутации идут через пользовательский API.
type User struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Username         string    `gorm:"uniqueIndex;not null"`
	Email            string    `gorm:"uniqueIndex;not null"`
	AlertsEnabled    bool      `gorm:"not null;default:true;index"`
	MinDiameterM     float64   `gorm:"not null;default:0"`
	MaxDistanceLunar float64   `gorm:"not null;default:50"`
	RiskThreshold    int       `gorm:"not null;default:50"`
	WatchedObjects   datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (u *User) IsWatching(refID string) bool {
	for _, id := range u.WatchedObjects {
		if id == refID {
			return true
		}
	}
	return false
}
