package battle

import "time"

type EventKind string

const (
	EventGameStarted       EventKind = "game_started"
	EventRoundStarted      EventKind = "round_started"
	EventActivityRecorded  EventKind = "activity_recorded"
	EventRoundCompleted    EventKind = "round_completed"
	EventGameReset         EventKind = "game_reset"
	EventConnectionChanged EventKind = "connection_changed"
)

// Event describes one transition. Snapshot is the state after the whole operation
// that produced the event; Final marks the last event of that operation.
type Event struct {
	Kind           EventKind
	GameID         string
	StreamUsername string
	GoalScore      int
	At             time.Time
	Activity       *Activity
	Player         *Player
	Round          *RoundResult
	Snapshot       Snapshot
	Final          bool
}

// Listener receives events in the order transitions were applied. Listeners must not
// call back into the Machine synchronously; everything they need is on the Event.
type Listener func(Event)
