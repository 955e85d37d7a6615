package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/intelliguard-io/intelliguard/internal/core/domain"
	"github.com/intelliguard-io/intelliguard/internal/telemetry"
)

const broadcastEvery = 2 * time.Second

// OverviewSource supplies the dashboard summary pushed to clients.
type OverviewSource interface {
	Overview() domain.Overview
}

// WSMessage is the envelope for every websocket push.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WSManager owns the websocket clients. It pushes an overview snapshot on a
// fixed cadence and relays stream status notifications; it implements
// ports.Notifier.
type WSManager struct {
	overview OverviewSource
	clients  map[*websocket.Conn]bool
	mu       sync.Mutex
	upgrader websocket.Upgrader
}

// NewWSManager creates a manager pushing overviews from the given source.
// An allowed origin of "*" accepts any caller.
func NewWSManager(overview OverviewSource, allowedOrigin string) *WSManager {
	m := &WSManager{
		overview: overview,
		clients:  make(map[*websocket.Conn]bool),
	}
	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")

			// Allow same-origin (no Origin header)
			if origin == "" || allowedOrigin == "*" || origin == allowedOrigin {
				return true
			}

			log.Printf("[WS] rejected origin: %s", origin)
			return false
		},
	}
	return m
}

// Start launches the periodic overview broadcaster.
func (m *WSManager) Start(ctx context.Context) {
	go m.processAndBroadcast(ctx)
}

// HandleWebSocket upgrades the connection and tracks it until it closes.
func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("[WS] upgrade error:", err)
		return
	}

	m.mu.Lock()
	m.clients[conn] = true
	m.mu.Unlock()
	telemetry.WebsocketClients.Inc()

	log.Printf("[WS] client connected (%s)", r.RemoteAddr)

	// Clients never send application data; the read loop only detects close.
	go func() {
		defer conn.Close()
		defer func() {
			m.mu.Lock()
			delete(m.clients, conn)
			m.mu.Unlock()
			telemetry.WebsocketClients.Dec()
			log.Printf("[WS] client disconnected (%s)", r.RemoteAddr)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// ClientCount returns the number of connected clients.
func (m *WSManager) ClientCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

// Notify relays a stream status event to all connected clients.
func (m *WSManager) Notify(event domain.StatusEvent) {
	m.broadcastMessage(WSMessage{Type: "status", Payload: event})
}

func (m *WSManager) processAndBroadcast(ctx context.Context) {
	ticker := time.NewTicker(broadcastEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.broadcastOverview()
		}
	}
}

func (m *WSManager) broadcastOverview() {
	m.mu.Lock()
	idle := len(m.clients) == 0
	m.mu.Unlock()
	if idle {
		return
	}

	m.broadcastMessage(WSMessage{Type: "overview", Payload: m.overview.Overview()})
}

func (m *WSManager) broadcastMessage(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Println("[WS] marshal error:", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			// The read loop notices the close and removes the client.
			conn.Close()
		}
	}
}
