package feed

import (
	"context"
	"log"
	"math/rand"
	"time"

	"gift-battle/internal/battle"
)

var (
	simUsernames = []string{"Viewer1", "Viewer2", "Viewer3", "TikToker", "FanGirl", "GameBoy", "StreamLover"}
	simComments  = []string{
		"Let's go!",
		"We can win this!",
		"Team fire is the best!",
		"Ice will dominate!",
		"Send more gifts!",
		"We need more points!",
	}
	simGifts      = []string{"Rose", "Heart", "Diamond", "Crown", "Star", "Trophy"}
	simGiftValues = []int{50, 100, 200, 500, 1000}
	simKinds      = []battle.ActivityKind{battle.ActivityJoined, battle.ActivityComment, battle.ActivityGift}
)

// Simulator produces random viewer events for demos and local development. One in
// five viewers is unaffiliated; the rest split evenly between the teams.
type Simulator struct {
	rng *rand.Rand
	now func() time.Time
}

func NewSimulator(seed int64) *Simulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{rng: rand.New(rand.NewSource(seed)), now: time.Now}
}

func (s *Simulator) Next() battle.Incoming {
	in := battle.Incoming{
		Kind:     simKinds[s.rng.Intn(len(simKinds))],
		Username: simUsernames[s.rng.Intn(len(simUsernames))],
		At:       s.now().UTC(),
	}
	if s.rng.Float64() <= 0.8 {
		if s.rng.Float64() > 0.5 {
			in.Team = battle.TeamFire
		} else {
			in.Team = battle.TeamIce
		}
	}
	switch in.Kind {
	case battle.ActivityComment:
		in.Message = simComments[s.rng.Intn(len(simComments))]
	case battle.ActivityGift:
		in.GiftName = simGifts[s.rng.Intn(len(simGifts))]
		in.GiftValue = simGiftValues[s.rng.Intn(len(simGiftValues))]
	}
	return in
}

// Run emits one event per interval until ctx is cancelled. Emit errors are logged and
// do not stop the loop.
func (s *Simulator) Run(ctx context.Context, interval time.Duration, emit func(battle.Incoming) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			in := s.Next()
			if err := emit(in); err != nil {
				log.Printf("simulated event skipped type=%s username=%s err=%v", in.Kind, in.Username, err)
			}
		}
	}
}
