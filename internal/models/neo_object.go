package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"astrowatch/internal/risk"
)

// NEOObject - снимок околоземного объекта из фида NeoWs.
// Ключ - внешний neo_reference_id, перезаписывается при каждом фетче.
type NEOObject struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	NeoReferenceID    string    `gorm:"uniqueIndex;not null"`
	Name              string    `gorm:"type:text"`
	AbsoluteMagnitude float64
	DiameterMinM      float64
	DiameterMaxM      float64
	IsHazardous       bool      `gorm:"index"`
	CloseApproachAt   time.Time `gorm:"index"`
	MissDistanceKm    float64
	MissDistanceAU    float64
	MissDistanceLunar float64
	VelocityKmS       float64
	VelocityKmH       float64
	OrbitingBody      string         `gorm:"type:varchar(50)"`
	RiskScore         int            `gorm:"index"`
	RiskCategory      string         `gorm:"type:varchar(16);index"`
	Raw               datatypes.JSON `gorm:"type:jsonb"`
	FetchedAt         time.Time      `gorm:"not null"`
	ExpiresAt         time.Time      `gorm:"not null;index"`
	CreatedAt         time.Time      `gorm:"autoCreateTime"`
}

// Factors возвращает канонический вход для скоринга из сохраненной формы.
func (o *NEOObject) Factors() risk.Factors {
	return risk.Factors{
		DiameterMaxM:      o.DiameterMaxM,
		MissDistanceLunar: o.MissDistanceLunar,
		VelocityKmS:       o.VelocityKmS,
		Hazardous:         o.IsHazardous,
	}
}
