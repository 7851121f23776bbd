package db

import "time"

type Round struct {
	ID        uint       `gorm:"primaryKey"`
	GameID    uint       `gorm:"index;not null;uniqueIndex:idx_rounds_game_number"`
	PublicID  string     `gorm:"size:64;not null"`
	Number    int        `gorm:"not null;uniqueIndex:idx_rounds_game_number"`
	FireScore int        `gorm:"not null;default:0"`
	IceScore  int        `gorm:"not null;default:0"`
	GoalScore int        `gorm:"not null"`
	Winner    string     `gorm:"size:8;not null;default:''"`
	Reason    string     `gorm:"size:16;not null;default:''"`
	StartedAt time.Time  `gorm:"not null"`
	EndedAt   *time.Time `gorm:"index"`
	CreatedAt time.Time  `gorm:"not null"`
}
