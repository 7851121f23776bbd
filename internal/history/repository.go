package history

import (
	"context"
	"errors"
	"time"

	"gift-battle/internal/battle"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameEnded    = errors.New("game already ended")
	ErrRoundExists  = errors.New("round already recorded")
	ErrGameExists   = errors.New("game already exists")
)

// GameRecord is a game as stored: append-only rounds, an end time once archived.
type GameRecord struct {
	GameID         string
	StreamUsername string
	GoalScore      int
	StartTime      time.Time
	EndTime        *time.Time
	Rounds         []battle.RoundResult
}

// GameHistory is the read model served to history displays.
type GameHistory struct {
	GameID         string               `json:"game_id"`
	StreamUsername string               `json:"stream_username"`
	GoalScore      int                  `json:"goal_score"`
	StartTime      time.Time            `json:"start_time"`
	EndTime        *time.Time           `json:"end_time"`
	TotalRounds    int                  `json:"total_rounds"`
	FireWins       int                  `json:"fire_wins"`
	IceWins        int                  `json:"ice_wins"`
	Rounds         []battle.RoundResult `json:"rounds"`
}

type ActiveGame struct {
	GameID string `json:"game_id"`
}

// Repository stores completed games and the per-game player totals that back the
// leaderboard. Games and rounds are never updated or deleted once appended, apart from
// a game's end time being set once.
type Repository interface {
	CreateGame(ctx context.Context, game GameRecord) error
	AppendRound(ctx context.Context, gameID string, round battle.RoundResult) error
	EndGame(ctx context.Context, gameID string, at time.Time) error
	SavePlayer(ctx context.Context, gameID string, player battle.Player) error
	RecordActivity(ctx context.Context, gameID string, roundNumber int, activity battle.Activity) error

	FetchGameHistory(ctx context.Context, gameID string) ([]GameHistory, error)
	FetchActiveGame(ctx context.Context) (*ActiveGame, error)
	FetchLeaderboard(ctx context.Context, gameID string, team battle.Team) ([]battle.LeaderboardPlayer, error)
}

// Summarize derives round and win counts from a stored game.
func Summarize(record GameRecord) GameHistory {
	rounds := make([]battle.RoundResult, len(record.Rounds))
	copy(rounds, record.Rounds)
	summary := GameHistory{
		GameID:         record.GameID,
		StreamUsername: record.StreamUsername,
		GoalScore:      record.GoalScore,
		StartTime:      record.StartTime,
		EndTime:        record.EndTime,
		TotalRounds:    len(rounds),
		Rounds:         rounds,
	}
	for _, round := range rounds {
		switch round.Winner {
		case battle.TeamFire:
			summary.FireWins++
		case battle.TeamIce:
			summary.IceWins++
		}
	}
	return summary
}
