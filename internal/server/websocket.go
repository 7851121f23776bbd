package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"gift-battle/internal/battle"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const wsWriteTimeout = 5 * time.Second

type wsMessage struct {
	Type  string           `json:"type"`
	Event battle.EventKind `json:"event,omitempty"`
	State battle.Snapshot  `json:"state"`
}

// wsClient serializes writes; gorilla connections allow one writer at a time.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

type wsHub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{
		clients: make(map[*wsClient]struct{}),
	}
}

func (h *wsHub) Add(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
}

func (h *wsHub) Remove(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	_ = client.conn.Close()
}

func (h *wsHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *wsHub) Send(client *wsClient, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := client.write(data); err != nil {
		h.Remove(client)
	}
}

func (h *wsHub) Broadcast(payload any) {
	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for _, client := range clients {
		if err := client.write(data); err != nil {
			h.Remove(client)
		}
	}
}

func (s *Server) handleWebsocket(c *gin.Context) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	log.Printf("ws connected remote=%s", c.Request.RemoteAddr)
	client := &wsClient{conn: conn}
	s.ws.Add(client)
	s.ws.Send(client, wsMessage{Type: "snapshot", State: s.machine.Snapshot()})
	go s.readWS(client)
}

func (s *Server) readWS(client *wsClient) {
	defer s.ws.Remove(client)
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			log.Printf("ws disconnected remote=%s error=%v", client.conn.RemoteAddr(), err)
			return
		}
	}
}

func (s *Server) broadcastSnapshot(kind battle.EventKind, snap battle.Snapshot) {
	if s.ws == nil {
		return
	}
	s.ws.Broadcast(wsMessage{Type: "snapshot", Event: kind, State: snap})
}
