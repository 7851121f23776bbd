package server

import (
	"log"
	"net/http"
	"strings"
	"time"

	"gift-battle/internal/battle"
	"gift-battle/internal/feed"

	"github.com/gin-gonic/gin"
)

type startGameRequest struct {
	Username  string `json:"username" binding:"required,username"`
	GoalScore int    `json:"goal_score" binding:"gte=0,lte=1000000000"`
}

type eventRequest struct {
	Type      string     `json:"type" binding:"required,oneof=joined comment gift"`
	Username  string     `json:"username" binding:"required,max=64"`
	Team      *string    `json:"team" binding:"omitempty,team"`
	Message   string     `json:"message" binding:"max=280"`
	GiftName  string     `json:"gift_name" binding:"max=64"`
	GiftValue int        `json:"gift_value" binding:"gte=0,lte=1000000000"`
	Timestamp *time.Time `json:"timestamp"`
}

type leaderboardQuery struct {
	GameID string `form:"game_id" binding:"max=64"`
	Team   string `form:"team" binding:"omitempty,oneof=fire ice"`
}

type historyQuery struct {
	GameID string `form:"game_id" binding:"max=64"`
}

var startGameMessages = bindMessages{
	"Username": {
		"required": "username is required",
		"username": "username must be 32 letters, digits, dots, dashes or underscores at most",
	},
	"GoalScore": {
		"gte": "goal score must not be negative",
		"lte": "goal score is too large",
	},
}

var eventMessages = bindMessages{
	"Type": {
		"required": "type is required",
		"oneof":    "type must be joined, comment or gift",
	},
	"Username": {
		"required": "username is required",
		"max":      "username is too long",
	},
	"Team":      {"team": "team must be fire, ice or null"},
	"Message":   {"max": "message is too long"},
	"GiftName":  {"max": "gift name is too long"},
	"GiftValue": {
		"gte": "gift value must not be negative",
		"lte": "gift value is too large",
	},
}

var leaderboardMessages = bindMessages{
	"Team": {"oneof": "team must be fire or ice"},
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.machine.Snapshot())
}

func (s *Server) handleStartGame(c *gin.Context) {
	var req startGameRequest
	if !bindJSON(c, &req, startGameMessages, "invalid game settings") {
		return
	}
	username, err := validateUsername(req.Username)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := s.machine.StartGame(username, req.GoalScore)
	if err != nil {
		writeError(c, statusForError(err), err.Error())
		return
	}
	c.JSON(http.StatusCreated, snap)
}

func (s *Server) handleResetGame(c *gin.Context) {
	c.JSON(http.StatusOK, s.machine.ResetGame())
}

func (s *Server) handleStartRound(c *gin.Context) {
	snap, err := s.machine.StartNewRound()
	if err != nil {
		writeError(c, statusForError(err), err.Error())
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleIngestEvent(c *gin.Context) {
	var req eventRequest
	if !bindJSON(c, &req, eventMessages, "invalid event") {
		return
	}
	envelope := feed.Envelope{
		Type:      req.Type,
		Username:  req.Username,
		Team:      req.Team,
		Message:   req.Message,
		GiftName:  req.GiftName,
		GiftValue: req.GiftValue,
		Timestamp: req.Timestamp,
	}
	in, err := envelope.Incoming()
	if err != nil {
		writeError(c, statusForError(err), err.Error())
		return
	}
	snap, err := s.machine.Ingest(in)
	if err != nil {
		log.Printf("event rejected type=%s username=%s err=%v", in.Kind, in.Username, err)
		writeError(c, statusForError(err), err.Error())
		return
	}
	c.JSON(http.StatusAccepted, snap)
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	var query leaderboardQuery
	if !bindQuery(c, &query, leaderboardMessages, "invalid leaderboard query") {
		return
	}
	team, _ := battle.ParseTeam(strings.ToLower(query.Team))
	c.JSON(http.StatusOK, s.reads.Leaderboard(c.Request.Context(), query.GameID, team))
}

func (s *Server) handleHistory(c *gin.Context) {
	var query historyQuery
	if !bindQuery(c, &query, nil, "invalid history query") {
		return
	}
	c.JSON(http.StatusOK, s.reads.History(c.Request.Context(), query.GameID))
}

func (s *Server) handleActiveGame(c *gin.Context) {
	c.JSON(http.StatusOK, s.reads.ActiveGame(c.Request.Context()))
}
