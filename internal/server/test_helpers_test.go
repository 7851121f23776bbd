package server

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gift-battle/internal/battle"
	"gift-battle/internal/config"
	"gift-battle/internal/history"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

// newBattleServer builds a server whose auto-advance never fires during a test.
func newBattleServer(t *testing.T) (*Server, *history.MemoryStore, *httptest.Server) {
	t.Helper()
	settings := battle.DefaultSettings()
	settings.AutoAdvanceDelay = time.Hour
	machine := battle.NewMachine(settings)
	store := history.NewMemoryStore()
	srv := New(machine, store, nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(func() {
		machine.ResetGame()
		ts.Close()
	})
	return srv, store, ts
}
