package server

import (
	"net/http"
	"time"

	"gift-battle/internal/battle"
	"gift-battle/internal/config"
	"gift-battle/internal/history"
	"gift-battle/internal/readmodel"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
)

type Server struct {
	machine *battle.Machine
	repo    history.Repository
	reads   *readmodel.Service
	ws      *wsHub
	cfg     config.Config
}

// New wires the HTTP surface around machine. A nil repo keeps history in memory and a
// nil reads caches it in process.
func New(machine *battle.Machine, repo history.Repository, reads *readmodel.Service, cfg config.Config) *Server {
	if repo == nil {
		repo = history.NewMemoryStore()
	}
	if reads == nil {
		reads = readmodel.NewService(repo, nil, readmodel.Options{
			LeaderboardTTL: time.Duration(cfg.LeaderboardRefreshSeconds) * time.Second,
			HistoryTTL:     time.Duration(cfg.HistoryRefreshSeconds) * time.Second,
		})
	}
	s := &Server{
		machine: machine,
		repo:    repo,
		reads:   reads,
		ws:      newWSHub(),
		cfg:     cfg,
	}
	machine.Subscribe(s.handleBattleEvent)
	return s
}

func (s *Server) Handler() http.Handler {
	registerValidators()
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", s.handleDashboard)
	router.GET("/healthz", s.handleHealth)
	router.GET("/ws", s.handleWebsocket)

	api := router.Group("/api")
	api.GET("/state", s.handleState)
	api.POST("/game/start", s.handleStartGame)
	api.POST("/game/reset", s.handleResetGame)
	api.POST("/rounds", s.handleStartRound)
	api.POST("/events", s.handleIngestEvent)
	api.GET("/leaderboard", s.handleLeaderboard)
	api.GET("/history", s.handleHistory)
	api.GET("/games/active", s.handleActiveGame)

	return cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})(router)
}
