package battle

const DefaultActivityCapacity = 20

// ActivityLog keeps the most recent activities, newest first. Once full, pushing
// evicts the oldest entry.
type ActivityLog struct {
	capacity int
	entries  []Activity
}

func NewActivityLog(capacity int) *ActivityLog {
	if capacity <= 0 {
		capacity = DefaultActivityCapacity
	}
	return &ActivityLog{
		capacity: capacity,
		entries:  make([]Activity, 0, capacity),
	}
}

func (l *ActivityLog) Push(activity Activity) {
	if len(l.entries) < l.capacity {
		l.entries = append(l.entries, Activity{})
	}
	copy(l.entries[1:], l.entries[:len(l.entries)-1])
	l.entries[0] = activity
}

func (l *ActivityLog) Clear() {
	l.entries = l.entries[:0]
}

// Entries returns a copy, newest first.
func (l *ActivityLog) Entries() []Activity {
	out := make([]Activity, len(l.entries))
	copy(out, l.entries)
	return out
}
