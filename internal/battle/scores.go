package battle

import "math"

// Scores holds the cumulative per-team score of the active round.
type Scores struct {
	Fire int `json:"fire"`
	Ice  int `json:"ice"`
}

// Add folds one gift into the scores. Gifts without a team leave the scores untouched.
func (s Scores) Add(team Team, points int) Scores {
	if points <= 0 {
		return s
	}
	switch team {
	case TeamFire:
		s.Fire = addCapped(s.Fire, points)
	case TeamIce:
		s.Ice = addCapped(s.Ice, points)
	}
	return s
}

func (s Scores) IsZero() bool {
	return s.Fire == 0 && s.Ice == 0
}

// Leader returns the team with the strictly higher score, or TeamNone on a tie.
func (s Scores) Leader() Team {
	switch {
	case s.Fire > s.Ice:
		return TeamFire
	case s.Ice > s.Fire:
		return TeamIce
	default:
		return TeamNone
	}
}

// GoalReached reports whether a round with these scores is over. The winner is the
// leader; when both teams sit on the same score at or above the goal there is none.
func (s Scores) GoalReached(goal int) (bool, Team) {
	if s.Fire < goal && s.Ice < goal {
		return false, TeamNone
	}
	return true, s.Leader()
}

// addCapped adds a non-negative value without wrapping past math.MaxInt.
func addCapped(total, points int) int {
	if points > math.MaxInt-total {
		return math.MaxInt
	}
	return total + points
}
