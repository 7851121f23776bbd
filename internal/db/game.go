package db

import "time"

type Game struct {
	ID             uint       `gorm:"primaryKey"`
	PublicID       string     `gorm:"size:64;uniqueIndex;not null"`
	StreamUsername string     `gorm:"size:64;not null"`
	GoalScore      int        `gorm:"not null"`
	StartedAt      time.Time  `gorm:"not null"`
	EndedAt        *time.Time `gorm:"index"`
	CreatedAt      time.Time  `gorm:"not null"`
	UpdatedAt      time.Time  `gorm:"not null"`
	Rounds         []Round
	Players        []Player
	Events         []Event
}
