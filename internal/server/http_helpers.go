package server

import (
	"errors"
	"net/http"

	"gift-battle/internal/battle"
	"gift-battle/internal/feed"

	"github.com/gin-gonic/gin"
)

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// statusForError maps invalid transitions to 409 and bad input to 400.
func statusForError(err error) int {
	switch {
	case errors.Is(err, battle.ErrGameActive),
		errors.Is(err, battle.ErrGameInactive),
		errors.Is(err, battle.ErrRoundComplete):
		return http.StatusConflict
	case errors.Is(err, battle.ErrUsernameRequired),
		errors.Is(err, battle.ErrNegativeGift),
		errors.Is(err, battle.ErrGiftTooLarge),
		errors.Is(err, battle.ErrGoalTooLarge),
		errors.Is(err, battle.ErrUnknownActivity),
		errors.Is(err, feed.ErrMissingUsername),
		errors.Is(err, feed.ErrInvalidTeam):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
