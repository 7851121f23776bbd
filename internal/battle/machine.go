package battle

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultGoalScore = 3000
	MaxGoalScore     = 1_000_000_000
	MaxGiftValue     = 1_000_000_000
)

type Settings struct {
	DefaultGoalScore int
	AutoAdvanceDelay time.Duration
	RoundDuration    time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		DefaultGoalScore: DefaultGoalScore,
		AutoAdvanceDelay: 3 * time.Second,
		RoundDuration:    10 * time.Minute,
	}
}

type Option func(*Machine)

func WithScheduler(s Scheduler) Option {
	return func(m *Machine) {
		if s != nil {
			m.sched = s
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

func WithIDs(newID func() string) Option {
	return func(m *Machine) {
		if newID != nil {
			m.newID = newID
		}
	}
}

// Machine owns the state of the one running game. Every mutation is applied under a
// single lock, and listeners observe the resulting events in the same order.
type Machine struct {
	settings Settings
	sched    Scheduler
	now      func() time.Time
	newID    func() string

	mu             sync.Mutex
	phase          Phase
	gameID         string
	roundID        string
	streamUsername string
	roundNumber    int
	roundStarted   time.Time
	roundEnds      *time.Time
	scores         Scores
	goal           int
	log            *ActivityLog
	players        map[string]*Player
	connected      bool
	lastResult     *RoundResult
	pending        *pendingAdvance
	listeners      []Listener
	nextSeq        uint64

	// Deliveries run outside mu. Each operation takes a sequence number under mu and
	// waits for its turn here, so listeners see operations in the order they were applied.
	deliverMu   sync.Mutex
	deliverCond *sync.Cond
	delivered   uint64
}

func NewMachine(settings Settings, opts ...Option) *Machine {
	if settings.DefaultGoalScore <= 0 {
		settings.DefaultGoalScore = DefaultGoalScore
	}
	if settings.DefaultGoalScore > MaxGoalScore {
		settings.DefaultGoalScore = MaxGoalScore
	}
	m := &Machine{
		settings: settings,
		sched:    realScheduler{},
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
		phase:    PhaseInactive,
		goal:     settings.DefaultGoalScore,
		log:      NewActivityLog(DefaultActivityCapacity),
		players:  make(map[string]*Player),
	}
	m.deliverCond = sync.NewCond(&m.deliverMu)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) Subscribe(listener Listener) {
	if listener == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, listener)
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// StartGame opens a new game with round 1. A non-positive goal falls back to the
// configured default.
func (m *Machine) StartGame(streamUsername string, goalScore int) (Snapshot, error) {
	username := strings.TrimSpace(streamUsername)
	if username == "" {
		return Snapshot{}, ErrUsernameRequired
	}
	if goalScore > MaxGoalScore {
		return Snapshot{}, ErrGoalTooLarge
	}
	m.mu.Lock()
	if m.phase != PhaseInactive {
		m.mu.Unlock()
		return Snapshot{}, ErrGameActive
	}
	if goalScore <= 0 {
		goalScore = m.settings.DefaultGoalScore
	}
	at := m.now()
	m.gameID = m.newID()
	m.streamUsername = username
	m.goal = goalScore
	m.players = make(map[string]*Player)
	m.lastResult = nil
	m.roundNumber = 0
	events := []Event{{
		Kind:           EventGameStarted,
		GameID:         m.gameID,
		StreamUsername: username,
		GoalScore:      goalScore,
		At:             at,
	}}
	events = append(events, m.beginRoundLocked(at))
	return m.commit(events), nil
}

// StartNewRound moves to the next round. A round still in progress with points on
// the board is sealed into history first.
func (m *Machine) StartNewRound() (Snapshot, error) {
	m.mu.Lock()
	if m.phase == PhaseInactive {
		m.mu.Unlock()
		return Snapshot{}, ErrGameInactive
	}
	m.cancelPendingLocked()
	at := m.now()
	events := make([]Event, 0, 2)
	if m.phase == PhaseActive && !m.scores.IsZero() {
		result := m.sealRoundLocked(m.scores.Leader(), EndReasonSkipped, at)
		events = append(events, m.roundEvent(result, at))
	}
	events = append(events, m.beginRoundLocked(at))
	return m.commit(events), nil
}

// ResetGame is valid from any phase and always ends in PhaseInactive.
func (m *Machine) ResetGame() Snapshot {
	m.mu.Lock()
	m.cancelPendingLocked()
	at := m.now()
	events := make([]Event, 0, 2)
	if m.phase == PhaseActive && !m.scores.IsZero() {
		result := m.sealRoundLocked(m.scores.Leader(), EndReasonReset, at)
		events = append(events, m.roundEvent(result, at))
	}
	if m.gameID != "" {
		events = append(events, Event{
			Kind:           EventGameReset,
			GameID:         m.gameID,
			StreamUsername: m.streamUsername,
			GoalScore:      m.goal,
			At:             at,
		})
	}
	m.phase = PhaseInactive
	m.gameID = ""
	m.roundID = ""
	m.roundNumber = 0
	m.scores = Scores{}
	m.roundEnds = nil
	m.roundStarted = time.Time{}
	m.log.Clear()
	m.players = make(map[string]*Player)
	m.lastResult = nil
	return m.commit(events)
}

// RecordGiftEvent scores an unattributed gift for team.
func (m *Machine) RecordGiftEvent(team Team, points int) (Snapshot, error) {
	return m.Ingest(Incoming{Kind: ActivityGift, Team: team, GiftValue: points})
}

// Ingest applies one viewer event: it is logged, credited to its player and, for
// gifts with a team, scored. The goal check runs before the lock is released.
func (m *Machine) Ingest(in Incoming) (Snapshot, error) {
	switch in.Kind {
	case ActivityJoined, ActivityComment, ActivityGift:
	default:
		return Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownActivity, in.Kind)
	}
	if in.Kind == ActivityGift && in.GiftValue < 0 {
		return Snapshot{}, ErrNegativeGift
	}
	if in.Kind == ActivityGift && in.GiftValue > MaxGiftValue {
		return Snapshot{}, ErrGiftTooLarge
	}
	m.mu.Lock()
	if m.phase == PhaseInactive {
		m.mu.Unlock()
		return Snapshot{}, ErrGameInactive
	}
	if m.phase == PhaseRoundComplete && in.Kind == ActivityGift {
		m.mu.Unlock()
		return Snapshot{}, ErrRoundComplete
	}
	at := in.At
	if at.IsZero() {
		at = m.now()
	}

	player := m.trackPlayerLocked(in.Username, in.Team)
	team := in.Team
	if player != nil && player.Team != TeamNone {
		team = player.Team
	}
	activity := Activity{
		ID:        m.newID(),
		Timestamp: at,
		Kind:      in.Kind,
		Username:  strings.TrimSpace(in.Username),
		Team:      team,
	}
	switch in.Kind {
	case ActivityComment:
		activity.Message = in.Message
	case ActivityGift:
		activity.GiftName = in.GiftName
		activity.GiftValue = in.GiftValue
		if player != nil {
			player.Points = addCapped(player.Points, in.GiftValue)
		}
		m.scores = m.scores.Add(team, in.GiftValue)
	}
	m.log.Push(activity)

	recorded := activity
	events := []Event{{Kind: EventActivityRecorded, GameID: m.gameID, At: at, Activity: &recorded}}
	if player != nil {
		copied := *player
		events[0].Player = &copied
	}

	if in.Kind == ActivityGift && team.Valid() {
		if reached, winner := m.scores.GoalReached(m.goal); reached {
			result := m.sealRoundLocked(winner, EndReasonGoal, at)
			events = append(events, m.roundEvent(result, at))
			announcement := m.announceLocked(result, at)
			events = append(events, Event{Kind: EventActivityRecorded, GameID: m.gameID, At: at, Activity: &announcement})
			m.phase = PhaseRoundComplete
			m.scheduleAdvanceLocked()
		}
	}
	return m.commit(events), nil
}

// SetConnected records whether the external event source is reachable.
func (m *Machine) SetConnected(connected bool) {
	m.mu.Lock()
	if m.connected == connected {
		m.mu.Unlock()
		return
	}
	m.connected = connected
	m.commit([]Event{{Kind: EventConnectionChanged, GameID: m.gameID, At: m.now()}})
}

func (m *Machine) autoAdvance(p *pendingAdvance) {
	m.mu.Lock()
	if m.pending != p || m.phase != PhaseRoundComplete || m.roundNumber != p.roundNumber {
		m.mu.Unlock()
		return
	}
	m.pending = nil
	m.commit([]Event{m.beginRoundLocked(m.now())})
}

func (m *Machine) beginRoundLocked(at time.Time) Event {
	m.roundNumber++
	m.roundID = m.newID()
	m.roundStarted = at
	m.scores = Scores{}
	m.log.Clear()
	m.roundEnds = nil
	if m.settings.RoundDuration > 0 {
		deadline := at.Add(m.settings.RoundDuration)
		m.roundEnds = &deadline
	}
	m.phase = PhaseActive
	return Event{
		Kind:           EventRoundStarted,
		GameID:         m.gameID,
		StreamUsername: m.streamUsername,
		GoalScore:      m.goal,
		At:             at,
	}
}

func (m *Machine) sealRoundLocked(winner Team, reason string, at time.Time) RoundResult {
	end := at
	result := RoundResult{
		RoundID:     m.roundID,
		RoundNumber: m.roundNumber,
		StartTime:   m.roundStarted,
		EndTime:     &end,
		FireScore:   m.scores.Fire,
		IceScore:    m.scores.Ice,
		GoalScore:   m.goal,
		Winner:      winner,
		Reason:      reason,
	}
	m.lastResult = &result
	return result
}

func (m *Machine) roundEvent(result RoundResult, at time.Time) Event {
	return Event{
		Kind:           EventRoundCompleted,
		GameID:         m.gameID,
		StreamUsername: m.streamUsername,
		GoalScore:      m.goal,
		At:             at,
		Round:          &result,
	}
}

func (m *Machine) announceLocked(result RoundResult, at time.Time) Activity {
	message := fmt.Sprintf("Round %d ended in a tie!", result.RoundNumber)
	if result.Winner != TeamNone {
		message = fmt.Sprintf("Team %s has won Round %d!", result.Winner, result.RoundNumber)
	}
	activity := Activity{
		ID:        m.newID(),
		Timestamp: at,
		Kind:      ActivitySystem,
		Team:      result.Winner,
		Message:   message,
	}
	m.log.Push(activity)
	return activity
}

func (m *Machine) scheduleAdvanceLocked() {
	m.cancelPendingLocked()
	p := &pendingAdvance{roundNumber: m.roundNumber}
	m.pending = p
	p.timer = m.sched.AfterFunc(m.settings.AutoAdvanceDelay, func() {
		m.autoAdvance(p)
	})
}

func (m *Machine) cancelPendingLocked() {
	if m.pending == nil {
		return
	}
	if m.pending.timer != nil {
		m.pending.timer.Stop()
	}
	m.pending = nil
}

func (m *Machine) trackPlayerLocked(username string, team Team) *Player {
	name := strings.TrimSpace(username)
	if name == "" {
		return nil
	}
	key := strings.ToLower(name)
	player, ok := m.players[key]
	if !ok {
		player = &Player{ID: m.newID(), Username: name}
		m.players[key] = player
	}
	if player.Team == TeamNone && team.Valid() {
		player.Team = team
	}
	return player
}

func (m *Machine) snapshotLocked() Snapshot {
	players := make(map[string]Player, len(m.players))
	for _, player := range m.players {
		players[player.ID] = *player
	}
	snap := Snapshot{
		GameID:         m.gameID,
		RoundID:        m.roundID,
		Phase:          m.phase,
		IsActive:       m.phase != PhaseInactive,
		RoundNumber:    m.roundNumber,
		FireScore:      m.scores.Fire,
		IceScore:       m.scores.Ice,
		GoalScore:      m.goal,
		Activities:     m.log.Entries(),
		Players:        players,
		Connected:      m.connected,
		StreamUsername: m.streamUsername,
	}
	if m.roundEnds != nil {
		deadline := *m.roundEnds
		snap.RoundEndTime = &deadline
	}
	if m.lastResult != nil {
		result := *m.lastResult
		snap.LastResult = &result
	}
	return snap
}

// commit must be called with mu held. It releases mu before any listener runs, so
// reads and new operations never wait on listener I/O.
func (m *Machine) commit(events []Event) Snapshot {
	snap := m.snapshotLocked()
	listeners := m.listeners
	m.nextSeq++
	seq := m.nextSeq
	m.mu.Unlock()

	m.deliverMu.Lock()
	for m.delivered != seq-1 {
		m.deliverCond.Wait()
	}
	m.deliverMu.Unlock()
	defer func() {
		m.deliverMu.Lock()
		m.delivered = seq
		m.deliverMu.Unlock()
		m.deliverCond.Broadcast()
	}()

	for i := range events {
		events[i].Snapshot = snap
		events[i].Final = i == len(events)-1
		for _, listener := range listeners {
			listener(events[i])
		}
	}
	return snap
}
