package db

import "time"

type Player struct {
	ID        uint      `gorm:"primaryKey"`
	GameID    uint      `gorm:"index;not null;uniqueIndex:idx_players_game_username"`
	PublicID  string    `gorm:"size:64;not null"`
	Username  string    `gorm:"size:64;not null;uniqueIndex:idx_players_game_username"`
	Team      string    `gorm:"size:8;not null;default:''"`
	Points    int       `gorm:"not null;default:0;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
