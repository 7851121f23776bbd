package server

import (
	"context"
	"log"
	"time"

	"gift-battle/internal/battle"
	"gift-battle/internal/history"
	"gift-battle/internal/readmodel"
)

const persistTimeout = 5 * time.Second

// handleBattleEvent records each transition in history, drops the read models it
// makes stale and pushes the new snapshot once per operation. Failures are logged and
// never undo machine state.
func (s *Server) handleBattleEvent(evt battle.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	switch evt.Kind {
	case battle.EventGameStarted:
		log.Printf("game started game_id=%s stream=%s goal=%d", evt.GameID, evt.StreamUsername, evt.GoalScore)
		s.persistGame(ctx, evt)
		s.reads.Invalidate(ctx, readmodel.ScopeHistory, readmodel.ScopeActiveGame, readmodel.ScopeLeaderboard)
	case battle.EventRoundStarted:
		log.Printf("round started game_id=%s round=%d", evt.GameID, evt.Snapshot.RoundNumber)
	case battle.EventActivityRecorded:
		s.persistActivity(ctx, evt)
	case battle.EventRoundCompleted:
		s.persistRound(ctx, evt)
		s.reads.Invalidate(ctx, readmodel.ScopeHistory, readmodel.ScopeLeaderboard)
	case battle.EventGameReset:
		log.Printf("game reset game_id=%s", evt.GameID)
		if err := s.repo.EndGame(ctx, evt.GameID, evt.At); err != nil {
			log.Printf("persist game end failed game_id=%s err=%v", evt.GameID, err)
		}
		s.reads.Invalidate(ctx, readmodel.ScopeHistory, readmodel.ScopeActiveGame, readmodel.ScopeLeaderboard)
	case battle.EventConnectionChanged:
		log.Printf("feed connection changed connected=%t", evt.Snapshot.Connected)
	}

	if evt.Final {
		s.broadcastSnapshot(evt.Kind, evt.Snapshot)
	}
}

func (s *Server) persistGame(ctx context.Context, evt battle.Event) {
	record := history.GameRecord{
		GameID:         evt.GameID,
		StreamUsername: evt.StreamUsername,
		GoalScore:      evt.GoalScore,
		StartTime:      evt.At,
	}
	if err := s.repo.CreateGame(ctx, record); err != nil {
		log.Printf("persist game failed game_id=%s err=%v", evt.GameID, err)
	}
}

func (s *Server) persistRound(ctx context.Context, evt battle.Event) {
	if evt.Round == nil {
		return
	}
	round := *evt.Round
	log.Printf("round completed game_id=%s round=%d winner=%q fire=%d ice=%d reason=%s",
		evt.GameID, round.RoundNumber, round.Winner, round.FireScore, round.IceScore, round.Reason)
	if err := s.repo.AppendRound(ctx, evt.GameID, round); err != nil {
		log.Printf("persist round failed game_id=%s round=%d err=%v", evt.GameID, round.RoundNumber, err)
	}
}

func (s *Server) persistActivity(ctx context.Context, evt battle.Event) {
	if evt.Activity == nil {
		return
	}
	activity := *evt.Activity
	if err := s.repo.RecordActivity(ctx, evt.GameID, evt.Snapshot.RoundNumber, activity); err != nil {
		log.Printf("persist activity failed game_id=%s type=%s err=%v", evt.GameID, activity.Kind, err)
	}
	if evt.Player == nil {
		return
	}
	if err := s.repo.SavePlayer(ctx, evt.GameID, *evt.Player); err != nil {
		log.Printf("persist player failed game_id=%s username=%s err=%v", evt.GameID, evt.Player.Username, err)
		return
	}
	if activity.Kind == battle.ActivityGift && activity.GiftValue > 0 {
		s.reads.Invalidate(ctx, readmodel.ScopeLeaderboard)
	}
}
