package history

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gift-battle/internal/battle"
	"gift-battle/internal/db"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists history in Postgres through the internal/db models.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(conn *gorm.DB) *GormStore {
	return &GormStore{db: conn}
}

func (s *GormStore) CreateGame(ctx context.Context, game GameRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.Game{}).
			Where("ended_at IS NULL").
			Update("ended_at", game.StartTime).Error; err != nil {
			return err
		}
		record := db.Game{
			PublicID:       game.GameID,
			StreamUsername: game.StreamUsername,
			GoalScore:      game.GoalScore,
			StartedAt:      game.StartTime,
			EndedAt:        game.EndTime,
		}
		if err := tx.Create(&record).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrGameExists
			}
			return err
		}
		return nil
	})
}

func (s *GormStore) AppendRound(ctx context.Context, gameID string, round battle.RoundResult) error {
	game, err := s.findGame(ctx, gameID)
	if err != nil {
		return err
	}
	if game.EndedAt != nil {
		return ErrGameEnded
	}
	record := db.Round{
		GameID:    game.ID,
		PublicID:  round.RoundID,
		Number:    round.RoundNumber,
		FireScore: round.FireScore,
		IceScore:  round.IceScore,
		GoalScore: round.GoalScore,
		Winner:    string(round.Winner),
		Reason:    round.Reason,
		StartedAt: round.StartTime,
		EndedAt:   round.EndTime,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrRoundExists
		}
		return err
	}
	return nil
}

func (s *GormStore) EndGame(ctx context.Context, gameID string, at time.Time) error {
	result := s.db.WithContext(ctx).Model(&db.Game{}).
		Where("public_id = ? AND ended_at IS NULL", gameID).
		Update("ended_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := s.findGame(ctx, gameID); err != nil {
			return err
		}
		return ErrGameEnded
	}
	return nil
}

// SavePlayer upserts the running total for a player. The team is only written on
// insert, so a player keeps the first team they were seen with.
func (s *GormStore) SavePlayer(ctx context.Context, gameID string, player battle.Player) error {
	game, err := s.findGame(ctx, gameID)
	if err != nil {
		return err
	}
	record := db.Player{
		GameID:   game.ID,
		PublicID: player.ID,
		Username: player.Username,
		Team:     string(player.Team),
		Points:   player.Points,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "game_id"}, {Name: "username"}},
		DoUpdates: clause.Assignments(map[string]any{"points": player.Points, "updated_at": time.Now().UTC()}),
	}).Create(&record).Error
}

func (s *GormStore) RecordActivity(ctx context.Context, gameID string, roundNumber int, activity battle.Activity) error {
	game, err := s.findGame(ctx, gameID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(activity)
	if err != nil {
		return err
	}
	event := db.Event{
		GameID:      game.ID,
		RoundNumber: roundNumber,
		Type:        string(activity.Kind),
		Payload:     datatypes.JSON(data),
		CreatedAt:   activity.Timestamp,
	}
	return s.db.WithContext(ctx).Create(&event).Error
}

func (s *GormStore) FetchGameHistory(ctx context.Context, gameID string) ([]GameHistory, error) {
	query := s.db.WithContext(ctx).
		Preload("Rounds", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("number ASC")
		}).
		Order("started_at ASC").
		Order("id ASC")
	if gameID != "" {
		query = query.Where("public_id = ?", gameID)
	}
	var games []db.Game
	if err := query.Find(&games).Error; err != nil {
		return nil, err
	}
	list := make([]GameHistory, 0, len(games))
	for _, game := range games {
		list = append(list, Summarize(recordFromModel(game)))
	}
	return list, nil
}

func (s *GormStore) FetchActiveGame(ctx context.Context) (*ActiveGame, error) {
	var game db.Game
	err := s.db.WithContext(ctx).
		Where("ended_at IS NULL").
		Order("started_at DESC").
		Order("id DESC").
		First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ActiveGame{GameID: game.PublicID}, nil
}

func (s *GormStore) FetchLeaderboard(ctx context.Context, gameID string, team battle.Team) ([]battle.LeaderboardPlayer, error) {
	var game db.Game
	query := s.db.WithContext(ctx)
	var err error
	if gameID != "" {
		err = query.Where("public_id = ?", gameID).First(&game).Error
	} else {
		err = query.Order("ended_at IS NULL DESC").Order("started_at DESC").Order("id DESC").First(&game).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []battle.LeaderboardPlayer{}, nil
	}
	if err != nil {
		return nil, err
	}
	playersQuery := s.db.WithContext(ctx).Where("game_id = ?", game.ID)
	if team.Valid() {
		playersQuery = playersQuery.Where("team = ?", string(team))
	}
	var records []db.Player
	if err := playersQuery.Find(&records).Error; err != nil {
		return nil, err
	}
	players := make([]battle.Player, 0, len(records))
	for _, record := range records {
		players = append(players, battle.Player{
			ID:       record.PublicID,
			Username: record.Username,
			Team:     battle.Team(record.Team),
			Points:   record.Points,
		})
	}
	return battle.RankPlayers(players, team), nil
}

func (s *GormStore) findGame(ctx context.Context, gameID string) (db.Game, error) {
	var game db.Game
	err := s.db.WithContext(ctx).Where("public_id = ?", gameID).First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return game, ErrGameNotFound
	}
	return game, err
}

func recordFromModel(game db.Game) GameRecord {
	record := GameRecord{
		GameID:         game.PublicID,
		StreamUsername: game.StreamUsername,
		GoalScore:      game.GoalScore,
		StartTime:      game.StartedAt,
		EndTime:        game.EndedAt,
		Rounds:         make([]battle.RoundResult, 0, len(game.Rounds)),
	}
	for _, round := range game.Rounds {
		record.Rounds = append(record.Rounds, battle.RoundResult{
			RoundID:     round.PublicID,
			RoundNumber: round.Number,
			StartTime:   round.StartedAt,
			EndTime:     round.EndedAt,
			FireScore:   round.FireScore,
			IceScore:    round.IceScore,
			GoalScore:   round.GoalScore,
			Winner:      battle.Team(round.Winner),
			Reason:      round.Reason,
		})
	}
	return record
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
