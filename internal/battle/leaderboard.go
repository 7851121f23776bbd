package battle

import (
	"sort"
	"strings"
)

// RankPlayers projects players onto the leaderboard, highest points first. A non-empty
// team keeps only that team's players. Equal points are ordered by username
// (case-insensitive), then by id, so the order never depends on map iteration.
func RankPlayers(players []Player, team Team) []LeaderboardPlayer {
	filtered := make([]Player, 0, len(players))
	for _, player := range players {
		if team != TeamNone && player.Team != team {
			continue
		}
		filtered = append(filtered, player)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		la, lb := strings.ToLower(a.Username), strings.ToLower(b.Username)
		if la != lb {
			return la < lb
		}
		return a.ID < b.ID
	})
	ranked := make([]LeaderboardPlayer, 0, len(filtered))
	for _, player := range filtered {
		ranked = append(ranked, LeaderboardPlayer{
			ID:       player.ID,
			Username: player.Username,
			Points:   player.Points,
		})
	}
	return ranked
}
