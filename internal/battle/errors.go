package battle

import "errors"

var (
	ErrGameActive       = errors.New("game already active")
	ErrGameInactive     = errors.New("game is not active")
	ErrRoundComplete    = errors.New("round already complete")
	ErrUsernameRequired = errors.New("stream username is required")
	ErrNegativeGift     = errors.New("gift value must not be negative")
	ErrGiftTooLarge     = errors.New("gift value is too large")
	ErrGoalTooLarge     = errors.New("goal score is too large")
	ErrUnknownActivity  = errors.New("unknown activity type")
)
