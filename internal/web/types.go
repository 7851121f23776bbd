package web

type TeamScore struct {
	Team    string
	Label   string
	Score   int
	Percent int
}

type ActivityItem struct {
	Kind     string
	Team     string
	Username string
	Text     string
	Time     string
}

type LeaderboardRow struct {
	Rank     int
	Username string
	Points   int
}

type GameSummary struct {
	GameID      string
	StartedAt   string
	EndedAt     string
	TotalRounds int
	FireWins    int
	IceWins     int
}

// DashboardState is everything the operator dashboard renders in one pass.
type DashboardState struct {
	Active         bool
	Phase          string
	StreamUsername string
	RoundNumber    int
	GoalScore      int
	RoundEndsAt    string
	Connected      bool
	Banner         string
	Teams          []TeamScore
	Activities     []ActivityItem
	FireLeaders    []LeaderboardRow
	IceLeaders     []LeaderboardRow
	Games          []GameSummary
	Notices        []string
}
