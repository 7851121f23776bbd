package history

import (
	"context"
	"strings"
	"sync"
	"time"

	"gift-battle/internal/battle"
)

const memoryActivityLimit = 500

// MemoryStore keeps history in process. It backs the service when no database is
// configured and is the reference behavior for the gorm store.
type MemoryStore struct {
	mu         sync.Mutex
	games      []*GameRecord
	index      map[string]int
	players    map[string]map[string]battle.Player
	activities map[string][]battle.Activity
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		index:      make(map[string]int),
		players:    make(map[string]map[string]battle.Player),
		activities: make(map[string][]battle.Activity),
	}
}

// CreateGame archives any game still open, then appends the new one.
func (s *MemoryStore) CreateGame(ctx context.Context, game GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.index[game.GameID]; exists {
		return ErrGameExists
	}
	for _, existing := range s.games {
		if existing.EndTime == nil {
			end := game.StartTime
			existing.EndTime = &end
		}
	}
	record := game
	record.Rounds = append([]battle.RoundResult(nil), game.Rounds...)
	s.index[game.GameID] = len(s.games)
	s.games = append(s.games, &record)
	return nil
}

func (s *MemoryStore) AppendRound(ctx context.Context, gameID string, round battle.RoundResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, err := s.findLocked(gameID)
	if err != nil {
		return err
	}
	if game.EndTime != nil {
		return ErrGameEnded
	}
	for _, existing := range game.Rounds {
		if existing.RoundNumber == round.RoundNumber {
			return ErrRoundExists
		}
	}
	game.Rounds = append(game.Rounds, round)
	return nil
}

func (s *MemoryStore) EndGame(ctx context.Context, gameID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, err := s.findLocked(gameID)
	if err != nil {
		return err
	}
	if game.EndTime != nil {
		return ErrGameEnded
	}
	end := at
	game.EndTime = &end
	return nil
}

func (s *MemoryStore) SavePlayer(ctx context.Context, gameID string, player battle.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.findLocked(gameID); err != nil {
		return err
	}
	players := s.players[gameID]
	if players == nil {
		players = make(map[string]battle.Player)
		s.players[gameID] = players
	}
	players[strings.ToLower(player.Username)] = player
	return nil
}

func (s *MemoryStore) RecordActivity(ctx context.Context, gameID string, roundNumber int, activity battle.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.findLocked(gameID); err != nil {
		return err
	}
	entries := append(s.activities[gameID], activity)
	if len(entries) > memoryActivityLimit {
		entries = entries[len(entries)-memoryActivityLimit:]
	}
	s.activities[gameID] = entries
	return nil
}

func (s *MemoryStore) FetchGameHistory(ctx context.Context, gameID string) ([]GameHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gameID != "" {
		game, err := s.findLocked(gameID)
		if err != nil {
			return []GameHistory{}, nil
		}
		return []GameHistory{Summarize(*game)}, nil
	}
	list := make([]GameHistory, 0, len(s.games))
	for _, game := range s.games {
		list = append(list, Summarize(*game))
	}
	return list, nil
}

func (s *MemoryStore) FetchActiveGame(ctx context.Context) (*ActiveGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.games) - 1; i >= 0; i-- {
		if s.games[i].EndTime == nil {
			return &ActiveGame{GameID: s.games[i].GameID}, nil
		}
	}
	return nil, nil
}

// FetchLeaderboard ranks one game's players. Without a game id it uses the active
// game, or the most recent one when none is running.
func (s *MemoryStore) FetchLeaderboard(ctx context.Context, gameID string, team battle.Team) ([]battle.LeaderboardPlayer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gameID == "" {
		gameID = s.defaultGameLocked()
	}
	players := make([]battle.Player, 0, len(s.players[gameID]))
	for _, player := range s.players[gameID] {
		players = append(players, player)
	}
	return battle.RankPlayers(players, team), nil
}

func (s *MemoryStore) findLocked(gameID string) (*GameRecord, error) {
	i, ok := s.index[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}
	return s.games[i], nil
}

func (s *MemoryStore) defaultGameLocked() string {
	if len(s.games) == 0 {
		return ""
	}
	for i := len(s.games) - 1; i >= 0; i-- {
		if s.games[i].EndTime == nil {
			return s.games[i].GameID
		}
	}
	return s.games[len(s.games)-1].GameID
}
