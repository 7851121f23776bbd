package battle

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"
)

func TestStartGameRequiresUsername(t *testing.T) {
	m, _ := newTestMachine()
	if _, err := m.StartGame("   ", 1000); !errors.Is(err, ErrUsernameRequired) {
		t.Fatalf("expected username error, got %v", err)
	}
	if snap := m.Snapshot(); snap.IsActive {
		t.Fatalf("expected machine to stay inactive")
	}
}

func TestStartGameDefaultsGoal(t *testing.T) {
	m, _ := newTestMachine()
	snap, err := m.StartGame("tiktoklive", 0)
	if err != nil {
		t.Fatalf("start game: %v", err)
	}
	if snap.GoalScore != DefaultGoalScore {
		t.Fatalf("expected default goal %d, got %d", DefaultGoalScore, snap.GoalScore)
	}
	if !snap.IsActive || snap.RoundNumber != 1 || snap.FireScore != 0 || snap.IceScore != 0 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.RoundEndTime == nil {
		t.Fatalf("expected advisory deadline")
	}
	if snap.StreamUsername != "tiktoklive" {
		t.Fatalf("expected stream username, got %q", snap.StreamUsername)
	}
	if _, err := m.StartGame("other", 100); !errors.Is(err, ErrGameActive) {
		t.Fatalf("expected already active error, got %v", err)
	}
}

func TestCommandsRejectedWhileInactive(t *testing.T) {
	m, _ := newTestMachine()
	if _, err := m.StartNewRound(); !errors.Is(err, ErrGameInactive) {
		t.Fatalf("expected inactive error, got %v", err)
	}
	if _, err := m.RecordGiftEvent(TeamFire, 100); !errors.Is(err, ErrGameInactive) {
		t.Fatalf("expected inactive error, got %v", err)
	}
}

func TestIngestRejectsBadInput(t *testing.T) {
	m, _ := newTestMachine()
	if _, err := m.StartGame("host", 1000); err != nil {
		t.Fatalf("start game: %v", err)
	}
	if _, err := m.Ingest(gift("Viewer1", TeamFire, -1)); !errors.Is(err, ErrNegativeGift) {
		t.Fatalf("expected negative gift error, got %v", err)
	}
	if _, err := m.Ingest(Incoming{Kind: ActivitySystem, Message: "spoof"}); !errors.Is(err, ErrUnknownActivity) {
		t.Fatalf("expected unknown activity error, got %v", err)
	}
	if snap := m.Snapshot(); len(snap.Activities) != 0 || snap.FireScore != 0 {
		t.Fatalf("expected no state change, got %+v", snap)
	}
}

func TestGoalScenarioAutoAdvance(t *testing.T) {
	m, sched := newTestMachine()
	if _, err := m.StartGame("host", 1000); err != nil {
		t.Fatalf("start game: %v", err)
	}
	if _, err := m.Ingest(gift("Viewer1", TeamFire, 600)); err != nil {
		t.Fatalf("gift: %v", err)
	}
	snap, err := m.Ingest(gift("Viewer2", TeamFire, 500))
	if err != nil {
		t.Fatalf("gift: %v", err)
	}
	if snap.Phase != PhaseRoundComplete {
		t.Fatalf("expected round complete, got %s", snap.Phase)
	}
	if snap.LastResult == nil || snap.LastResult.Winner != TeamFire {
		t.Fatalf("expected fire winner, got %+v", snap.LastResult)
	}
	if snap.FireScore != 1100 || snap.IceScore != 0 {
		t.Fatalf("expected 1100-0, got %d-%d", snap.FireScore, snap.IceScore)
	}
	if snap.Activities[0].Kind != ActivitySystem || snap.Activities[0].Message != "Team fire has won Round 1!" {
		t.Fatalf("expected victory announcement at head, got %+v", snap.Activities[0])
	}
	timer := sched.last()
	if timer == nil || timer.delay != DefaultSettings().AutoAdvanceDelay {
		t.Fatalf("expected auto advance scheduled with default delay")
	}

	timer.Fire()
	snap = m.Snapshot()
	if snap.Phase != PhaseActive || snap.RoundNumber != 2 {
		t.Fatalf("expected active round 2, got %s round %d", snap.Phase, snap.RoundNumber)
	}
	if snap.FireScore != 0 || snap.IceScore != 0 || len(snap.Activities) != 0 {
		t.Fatalf("expected cleared round, got %+v", snap)
	}
}

func TestTieAtGoalHasNoWinner(t *testing.T) {
	m, _ := newTestMachine()
	if _, err := m.StartGame("host", 1000); err != nil {
		t.Fatalf("start game: %v", err)
	}
	// One team's update cannot land both teams on the goal, so seed the board.
	m.mu.Lock()
	m.scores = Scores{Fire: 999, Ice: 1000}
	m.mu.Unlock()
	snap, err := m.RecordGiftEvent(TeamFire, 1)
	if err != nil {
		t.Fatalf("gift: %v", err)
	}
	if snap.Phase != PhaseRoundComplete {
		t.Fatalf("expected round complete, got %s", snap.Phase)
	}
	if snap.LastResult.Winner != TeamNone {
		t.Fatalf("expected no winner on tie, got %q", snap.LastResult.Winner)
	}
	if snap.Activities[0].Message != "Round 1 ended in a tie!" {
		t.Fatalf("unexpected announcement %q", snap.Activities[0].Message)
	}
}

func TestGiftsRejectedDuringIntermission(t *testing.T) {
	m, _ := newTestMachine()
	if _, err := m.StartGame("host", 100); err != nil {
		t.Fatalf("start game: %v", err)
	}
	if _, err := m.RecordGiftEvent(TeamIce, 100); err != nil {
		t.Fatalf("gift: %v", err)
	}
	if _, err := m.RecordGiftEvent(TeamIce, 100); !errors.Is(err, ErrRoundComplete) {
		t.Fatalf("expected round complete error, got %v", err)
	}
	snap, err := m.Ingest(Incoming{Kind: ActivityComment, Username: "Viewer3", Message: "gg"})
	if err != nil {
		t.Fatalf("expected comments to be accepted, got %v", err)
	}
	if snap.IceScore != 100 {
		t.Fatalf("expected score unchanged, got %d", snap.IceScore)
	}
}

func TestManualNewRoundCancelsPendingAdvance(t *testing.T) {
	m, sched := newTestMachine()
	if _, err := m.StartGame("host", 100); err != nil {
		t.Fatalf("start game: %v", err)
	}
	if _, err := m.RecordGiftEvent(TeamFire, 150); err != nil {
		t.Fatalf("gift: %v", err)
	}
	pending := sched.last()
	snap, err := m.StartNewRound()
	if err != nil {
		t.Fatalf("start new round: %v", err)
	}
	if snap.RoundNumber != 2 {
		t.Fatalf("expected round 2, got %d", snap.RoundNumber)
	}
	if !pending.stopped {
		t.Fatalf("expected pending advance to be stopped")
	}
	// A callback that raced past Stop must not advance again.
	pending.Fire()
	if got := m.Snapshot().RoundNumber; got != 2 {
		t.Fatalf("expected stale advance to be ignored, got round %d", got)
	}
}

func TestResetCancelsPendingAdvance(t *testing.T) {
	m, sched := newTestMachine()
	if _, err := m.StartGame("host", 100); err != nil {
		t.Fatalf("start game: %v", err)
	}
	if _, err := m.RecordGiftEvent(TeamFire, 150); err != nil {
		t.Fatalf("gift: %v", err)
	}
	pending := sched.last()
	snap := m.ResetGame()
	if snap.IsActive || snap.RoundNumber != 0 || snap.FireScore != 0 || snap.IceScore != 0 || snap.RoundEndTime != nil {
		t.Fatalf("unexpected reset snapshot %+v", snap)
	}
	pending.Fire()
	if snap := m.Snapshot(); snap.IsActive {
		t.Fatalf("expected stale advance to leave machine inactive")
	}
}

func TestResetFromAnyPhase(t *testing.T) {
	m, _ := newTestMachine()
	snap := m.ResetGame()
	if snap.IsActive || snap.RoundNumber != 0 {
		t.Fatalf("unexpected reset from inactive %+v", snap)
	}
	if _, err := m.StartGame("host", 500); err != nil {
		t.Fatalf("start game: %v", err)
	}
	if _, err := m.Ingest(Incoming{Kind: ActivityJoined, Username: "Viewer1", Team: TeamIce}); err != nil {
		t.Fatalf("join: %v", err)
	}
	snap = m.ResetGame()
	if snap.IsActive || len(snap.Activities) != 0 || snap.RoundEndTime != nil {
		t.Fatalf("unexpected reset from active %+v", snap)
	}
}

func TestNewRoundClearsScoresAndLog(t *testing.T) {
	m, _ := newTestMachine()
	if _, err := m.StartGame("host", 5000); err != nil {
		t.Fatalf("start game: %v", err)
	}
	if _, err := m.Ingest(gift("Viewer1", TeamIce, 200)); err != nil {
		t.Fatalf("gift: %v", err)
	}
	snap, err := m.StartNewRound()
	if err != nil {
		t.Fatalf("new round: %v", err)
	}
	if snap.FireScore != 0 || snap.IceScore != 0 || len(snap.Activities) != 0 {
		t.Fatalf("expected cleared round, got %+v", snap)
	}
	if snap.LastResult == nil || snap.LastResult.Reason != EndReasonSkipped || snap.LastResult.Winner != TeamIce {
		t.Fatalf("expected skipped round won by ice, got %+v", snap.LastResult)
	}
	if len(snap.Players) != 1 {
		t.Fatalf("expected players to survive round change, got %d", len(snap.Players))
	}
}

func TestPlayerTeamFixedOnceAssigned(t *testing.T) {
	m, _ := newTestMachine()
	if _, err := m.StartGame("host", 5000); err != nil {
		t.Fatalf("start game: %v", err)
	}
	if _, err := m.Ingest(Incoming{Kind: ActivityComment, Username: "Drifter", Message: "hi"}); err != nil {
		t.Fatalf("comment: %v", err)
	}
	if _, err := m.Ingest(gift("Drifter", TeamIce, 100)); err != nil {
		t.Fatalf("gift: %v", err)
	}
	snap, err := m.Ingest(gift("drifter", TeamFire, 50))
	if err != nil {
		t.Fatalf("gift: %v", err)
	}
	if snap.IceScore != 150 || snap.FireScore != 0 {
		t.Fatalf("expected gifts scored for ice, got %d-%d", snap.FireScore, snap.IceScore)
	}
	if len(snap.Players) != 1 {
		t.Fatalf("expected one player, got %d", len(snap.Players))
	}
	for _, player := range snap.Players {
		if player.Team != TeamIce || player.Points != 150 {
			t.Fatalf("unexpected player %+v", player)
		}
	}
}

func TestUnaffiliatedGiftLoggedNotScored(t *testing.T) {
	m, _ := newTestMachine()
	if _, err := m.StartGame("host", 5000); err != nil {
		t.Fatalf("start game: %v", err)
	}
	snap, err := m.Ingest(gift("Lurker", TeamNone, 1000))
	if err != nil {
		t.Fatalf("gift: %v", err)
	}
	if snap.FireScore != 0 || snap.IceScore != 0 {
		t.Fatalf("expected no score, got %d-%d", snap.FireScore, snap.IceScore)
	}
	if len(snap.Activities) != 1 || snap.Activities[0].GiftValue != 1000 {
		t.Fatalf("expected gift to be logged, got %+v", snap.Activities)
	}
}

func TestListenersSeeOrderedEvents(t *testing.T) {
	m, sched := newTestMachine()
	var mu sync.Mutex
	var kinds []EventKind
	var finals []bool
	m.Subscribe(func(evt Event) {
		mu.Lock()
		defer mu.Unlock()
		kinds = append(kinds, evt.Kind)
		finals = append(finals, evt.Final)
	})
	if _, err := m.StartGame("host", 100); err != nil {
		t.Fatalf("start game: %v", err)
	}
	if _, err := m.Ingest(gift("Viewer1", TeamFire, 100)); err != nil {
		t.Fatalf("gift: %v", err)
	}
	sched.last().Fire()
	m.ResetGame()

	want := []EventKind{
		EventGameStarted,
		EventRoundStarted,
		EventActivityRecorded,
		EventRoundCompleted,
		EventActivityRecorded,
		EventRoundStarted,
		EventGameReset,
	}
	mu.Lock()
	defer mu.Unlock()
	if len(kinds) != len(want) {
		t.Fatalf("expected %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, kinds)
		}
	}
	wantFinal := []bool{false, true, false, false, true, true, true}
	for i := range wantFinal {
		if finals[i] != wantFinal[i] {
			t.Fatalf("expected final flags %v, got %v", wantFinal, finals)
		}
	}
	if sched.count() != 1 {
		t.Fatalf("expected one scheduled advance, got %d", sched.count())
	}
}

func TestSetConnected(t *testing.T) {
	m, _ := newTestMachine()
	events := 0
	m.Subscribe(func(evt Event) {
		if evt.Kind == EventConnectionChanged {
			events++
		}
	})
	m.SetConnected(true)
	m.SetConnected(true)
	if !m.Snapshot().Connected {
		t.Fatalf("expected connected")
	}
	if events != 1 {
		t.Fatalf("expected one connection event, got %d", events)
	}
}

func TestSlowListenerDoesNotBlockReadsOrScoring(t *testing.T) {
	m, _ := newTestMachine()
	if _, err := m.StartGame("host", 100000); err != nil {
		t.Fatalf("start game: %v", err)
	}

	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var seen []string
	blocked := false
	m.Subscribe(func(evt Event) {
		if evt.Kind != EventActivityRecorded {
			return
		}
		mu.Lock()
		seen = append(seen, evt.Activity.Username)
		first := !blocked
		blocked = true
		mu.Unlock()
		if first {
			close(entered)
			<-release
		}
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := m.Ingest(gift("Viewer1", TeamFire, 100)); err != nil {
			t.Errorf("first gift: %v", err)
		}
	}()
	<-entered
	go func() {
		defer wg.Done()
		if _, err := m.Ingest(gift("Viewer2", TeamFire, 200)); err != nil {
			t.Errorf("second gift: %v", err)
		}
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		done := make(chan Snapshot, 1)
		go func() { done <- m.Snapshot() }()
		var snap Snapshot
		select {
		case snap = <-done:
		case <-time.After(500 * time.Millisecond):
			close(release)
			t.Fatalf("expected snapshot while a listener is busy, call blocked")
		}
		if snap.FireScore == 300 {
			break
		}
		if time.Now().After(deadline) {
			close(release)
			t.Fatalf("expected second gift applied while first delivery is busy, got fire=%d", snap.FireScore)
		}
		time.Sleep(5 * time.Millisecond)
	}

	close(release)
	wg.Wait()
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != "Viewer1" || seen[1] != "Viewer2" {
		t.Fatalf("expected deliveries in apply order, got %v", seen)
	}
}

func TestOversizedGoalAndGiftRejected(t *testing.T) {
	m, _ := newTestMachine()
	if _, err := m.StartGame("host", math.MaxInt); !errors.Is(err, ErrGoalTooLarge) {
		t.Fatalf("expected goal too large error, got %v", err)
	}
	if _, err := m.StartGame("host", MaxGoalScore); err != nil {
		t.Fatalf("start game: %v", err)
	}
	if _, err := m.Ingest(gift("Viewer1", TeamFire, math.MaxInt-1)); !errors.Is(err, ErrGiftTooLarge) {
		t.Fatalf("expected gift too large error, got %v", err)
	}
	if _, err := m.Ingest(gift("Viewer1", TeamFire, MaxGiftValue)); err != nil {
		t.Fatalf("gift: %v", err)
	}
	snap := m.Snapshot()
	if snap.FireScore != MaxGiftValue || snap.Phase != PhaseRoundComplete {
		t.Fatalf("expected fire=%d and round complete, got fire=%d phase=%s", MaxGiftValue, snap.FireScore, snap.Phase)
	}
}
