package readmodel

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"gift-battle/internal/battle"
	"gift-battle/internal/history"
)

const (
	ScopeLeaderboard = "leaderboard"
	ScopeHistory     = "history"
	ScopeActiveGame  = "active_game"

	DefaultLeaderboardTTL = 15 * time.Second
	DefaultHistoryTTL     = 30 * time.Second

	// maxLastGood bounds the fallback values kept for failed refreshes. Keys come from
	// query strings, so the oldest value is dropped once the limit is reached.
	maxLastGood = 128
)

// View is a read model as served to displays. Notice is set when the latest load
// failed and Data is the last good value (or empty).
type View[T any] struct {
	Data        T         `json:"data"`
	Notice      string    `json:"notice,omitempty"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

type Options struct {
	LeaderboardTTL time.Duration
	HistoryTTL     time.Duration
}

type cachedValue struct {
	Data        json.RawMessage `json:"data"`
	RefreshedAt time.Time       `json:"refreshed_at"`
}

// Service serves leaderboard, history and active-game queries from the repository
// through a cache. Entries live for at most one refresh interval and are dropped
// early by Invalidate when the underlying data changes.
type Service struct {
	repo  history.Repository
	cache Cache
	opts  Options
	now   func() time.Time

	mu       sync.Mutex
	lastGood map[string]cachedValue
}

func NewService(repo history.Repository, cache Cache, opts Options) *Service {
	if opts.LeaderboardTTL <= 0 {
		opts.LeaderboardTTL = DefaultLeaderboardTTL
	}
	if opts.HistoryTTL <= 0 {
		opts.HistoryTTL = DefaultHistoryTTL
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Service{
		repo:     repo,
		cache:    cache,
		opts:     opts,
		now:      time.Now,
		lastGood: make(map[string]cachedValue),
	}
}

func (s *Service) Leaderboard(ctx context.Context, gameID string, team battle.Team) View[[]battle.LeaderboardPlayer] {
	key := gameID + "|" + string(team)
	view := load(ctx, s, ScopeLeaderboard, key, s.opts.LeaderboardTTL, "Failed to load leaderboard data",
		func(ctx context.Context) ([]battle.LeaderboardPlayer, error) {
			return s.repo.FetchLeaderboard(ctx, gameID, team)
		})
	if view.Data == nil {
		view.Data = []battle.LeaderboardPlayer{}
	}
	return view
}

func (s *Service) History(ctx context.Context, gameID string) View[[]history.GameHistory] {
	view := load(ctx, s, ScopeHistory, gameID, s.opts.HistoryTTL, "Failed to load game history",
		func(ctx context.Context) ([]history.GameHistory, error) {
			return s.repo.FetchGameHistory(ctx, gameID)
		})
	if view.Data == nil {
		view.Data = []history.GameHistory{}
	}
	return view
}

func (s *Service) ActiveGame(ctx context.Context) View[*history.ActiveGame] {
	return load(ctx, s, ScopeActiveGame, "current", s.opts.HistoryTTL, "Failed to load active game",
		func(ctx context.Context) (*history.ActiveGame, error) {
			return s.repo.FetchActiveGame(ctx)
		})
}

// Invalidate drops the cached entries of the given scopes.
func (s *Service) Invalidate(ctx context.Context, scopes ...string) {
	for _, scope := range scopes {
		if err := s.cache.Invalidate(ctx, scope); err != nil {
			log.Printf("read model invalidate failed scope=%s err=%v", scope, err)
		}
	}
}

func load[T any](ctx context.Context, s *Service, scope, key string, ttl time.Duration, notice string, fetch func(context.Context) (T, error)) View[T] {
	var view View[T]
	data, ok, err := s.cache.Get(ctx, scope, key)
	if err != nil {
		log.Printf("read model cache read failed scope=%s key=%q err=%v", scope, key, err)
	}
	if ok {
		var cached cachedValue
		if err := json.Unmarshal(data, &cached); err == nil {
			if err := json.Unmarshal(cached.Data, &view.Data); err == nil {
				view.RefreshedAt = cached.RefreshedAt
				return view
			}
		}
	}

	value, err := fetch(ctx)
	if err != nil {
		log.Printf("read model refresh failed scope=%s key=%q err=%v", scope, key, err)
		view.Notice = notice
		s.mu.Lock()
		last, found := s.lastGood[scope+":"+key]
		s.mu.Unlock()
		if found {
			if err := json.Unmarshal(last.Data, &view.Data); err == nil {
				view.RefreshedAt = last.RefreshedAt
			}
		}
		return view
	}

	view.Data = value
	view.RefreshedAt = s.now().UTC()
	encoded, err := json.Marshal(value)
	if err != nil {
		return view
	}
	entry := cachedValue{Data: encoded, RefreshedAt: view.RefreshedAt}
	s.rememberLastGood(scope+":"+key, entry)
	if payload, err := json.Marshal(entry); err == nil {
		if err := s.cache.Set(ctx, scope, key, payload, ttl); err != nil {
			log.Printf("read model cache write failed scope=%s key=%q err=%v", scope, key, err)
		}
	}
	return view
}

func (s *Service) rememberLastGood(name string, entry cachedValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lastGood[name]; !ok && len(s.lastGood) >= maxLastGood {
		oldest := ""
		for candidate, value := range s.lastGood {
			if oldest == "" || value.RefreshedAt.Before(s.lastGood[oldest].RefreshedAt) {
				oldest = candidate
			}
		}
		delete(s.lastGood, oldest)
	}
	s.lastGood[name] = entry
}
