package battle

import "time"

type Team string

const (
	TeamNone Team = ""
	TeamFire Team = "fire"
	TeamIce  Team = "ice"
)

// ParseTeam accepts "fire", "ice" or an empty string. Anything else is reported as not ok.
func ParseTeam(raw string) (Team, bool) {
	switch Team(raw) {
	case TeamFire, TeamIce, TeamNone:
		return Team(raw), true
	default:
		return TeamNone, false
	}
}

func (t Team) Valid() bool {
	return t == TeamFire || t == TeamIce
}

type ActivityKind string

const (
	ActivityJoined  ActivityKind = "joined"
	ActivityComment ActivityKind = "comment"
	ActivityGift    ActivityKind = "gift"
	ActivitySystem  ActivityKind = "system"
)

type Phase string

const (
	PhaseInactive      Phase = "inactive"
	PhaseActive        Phase = "active"
	PhaseRoundComplete Phase = "round_complete"
)

type Activity struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Kind      ActivityKind `json:"type"`
	Username  string       `json:"username,omitempty"`
	Team      Team         `json:"team"`
	Message   string       `json:"message,omitempty"`
	GiftName  string       `json:"gift_name,omitempty"`
	GiftValue int          `json:"gift_value,omitempty"`
}

// Incoming is a viewer event as received from the external source, before it is
// stamped with an id and applied.
type Incoming struct {
	Kind      ActivityKind
	Username  string
	Team      Team
	Message   string
	GiftName  string
	GiftValue int
	At        time.Time
}

type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Team     Team   `json:"team"`
	Points   int    `json:"points"`
}

type LeaderboardPlayer struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Points   int    `json:"points"`
}

// RoundResult is a sealed round as appended to game history.
type RoundResult struct {
	RoundID     string     `json:"round_id"`
	RoundNumber int        `json:"round_number"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	FireScore   int        `json:"fire_score"`
	IceScore    int        `json:"ice_score"`
	GoalScore   int        `json:"goal_score"`
	Winner      Team       `json:"winner"`
	Reason      string     `json:"reason"`
}

const (
	EndReasonGoal    = "goal"
	EndReasonSkipped = "skipped"
	EndReasonReset   = "reset"
)

type Snapshot struct {
	GameID         string            `json:"game_id"`
	RoundID        string            `json:"round_id"`
	Phase          Phase             `json:"phase"`
	IsActive       bool              `json:"is_active"`
	RoundNumber    int               `json:"round_number"`
	FireScore      int               `json:"fire_score"`
	IceScore       int               `json:"ice_score"`
	GoalScore      int               `json:"goal_score"`
	RoundEndTime   *time.Time        `json:"round_end_time"`
	Activities     []Activity        `json:"activities"`
	Players        map[string]Player `json:"players"`
	Connected      bool              `json:"connected"`
	StreamUsername string            `json:"stream_username"`
	LastResult     *RoundResult      `json:"last_result,omitempty"`
}
