package db

import (
	"time"

	"gorm.io/datatypes"
)

// Event is one accepted activity, kept as the game's audit trail.
type Event struct {
	ID          uint           `gorm:"primaryKey"`
	GameID      uint           `gorm:"index;not null"`
	RoundNumber int            `gorm:"not null;default:0"`
	Type        string         `gorm:"size:64;not null"`
	Payload     datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt   time.Time      `gorm:"not null"`
}
