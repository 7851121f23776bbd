package server

import (
	"context"
	"fmt"

	"gift-battle/internal/battle"
	"gift-battle/internal/web"
)

func (s *Server) buildDashboardState(ctx context.Context) web.DashboardState {
	snap := s.machine.Snapshot()
	state := web.DashboardState{
		Active:         snap.IsActive,
		Phase:          string(snap.Phase),
		StreamUsername: snap.StreamUsername,
		RoundNumber:    snap.RoundNumber,
		GoalScore:      snap.GoalScore,
		Connected:      snap.Connected,
		Teams: []web.TeamScore{
			{Team: string(battle.TeamFire), Label: "Fire", Score: snap.FireScore, Percent: web.Percent(snap.FireScore, snap.GoalScore)},
			{Team: string(battle.TeamIce), Label: "Ice", Score: snap.IceScore, Percent: web.Percent(snap.IceScore, snap.GoalScore)},
		},
	}
	if snap.RoundEndTime != nil {
		state.RoundEndsAt = web.FormatTime(*snap.RoundEndTime)
	}
	if snap.Phase == battle.PhaseRoundComplete && snap.LastResult != nil {
		state.Banner = roundBanner(*snap.LastResult)
	}
	for _, activity := range snap.Activities {
		state.Activities = append(state.Activities, web.ActivityItem{
			Kind:     string(activity.Kind),
			Team:     string(activity.Team),
			Username: activity.Username,
			Text:     activityText(activity),
			Time:     web.FormatTime(activity.Timestamp),
		})
	}

	fire := s.reads.Leaderboard(ctx, snap.GameID, battle.TeamFire)
	ice := s.reads.Leaderboard(ctx, snap.GameID, battle.TeamIce)
	games := s.reads.History(ctx, "")
	state.FireLeaders = leaderboardRows(fire.Data)
	state.IceLeaders = leaderboardRows(ice.Data)
	for _, notice := range []string{fire.Notice, ice.Notice, games.Notice} {
		if notice != "" {
			state.Notices = append(state.Notices, notice)
		}
	}
	for i := len(games.Data) - 1; i >= 0; i-- {
		game := games.Data[i]
		summary := web.GameSummary{
			GameID:      game.GameID,
			StartedAt:   game.StartTime.UTC().Format("2006-01-02 15:04"),
			TotalRounds: game.TotalRounds,
			FireWins:    game.FireWins,
			IceWins:     game.IceWins,
		}
		if game.EndTime != nil {
			summary.EndedAt = game.EndTime.UTC().Format("2006-01-02 15:04")
		}
		state.Games = append(state.Games, summary)
	}
	return state
}

func roundBanner(result battle.RoundResult) string {
	if result.Winner == battle.TeamNone {
		return fmt.Sprintf("Round %d ended in a tie!", result.RoundNumber)
	}
	return fmt.Sprintf("Team %s has won Round %d!", result.Winner, result.RoundNumber)
}

func activityText(activity battle.Activity) string {
	switch activity.Kind {
	case battle.ActivityJoined:
		if activity.Team != battle.TeamNone {
			return "joined team " + string(activity.Team)
		}
		return "joined the stream"
	case battle.ActivityGift:
		return fmt.Sprintf("sent %s (+%d)", activity.GiftName, activity.GiftValue)
	default:
		return activity.Message
	}
}

func leaderboardRows(players []battle.LeaderboardPlayer) []web.LeaderboardRow {
	rows := make([]web.LeaderboardRow, 0, len(players))
	for i, player := range players {
		rows = append(rows, web.LeaderboardRow{Rank: i + 1, Username: player.Username, Points: player.Points})
	}
	return rows
}
