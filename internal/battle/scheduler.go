package battle

import "time"

// Timer is the handle of a deferred action.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. The returned handle cancels it.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// pendingAdvance is the one auto-advance allowed in flight. The callback compares its
// own pointer against Machine.pending, so a timer that already fired while a manual
// transition held the lock finds itself replaced and does nothing.
type pendingAdvance struct {
	timer       Timer
	roundNumber int
}
