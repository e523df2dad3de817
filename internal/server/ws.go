package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"wager-lab/internal/domain"
	"wager-lab/internal/observability"
)

// WebSocket message types.
const (
	MessageProgress = "progress"
	MessageResult   = "result"
	MessageError    = "error"
)

const (
	wsReadTimeout  = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// Message is sent from server to client on /ws/simulations.
type Message struct {
	Type  string                `json:"type"`
	Done  int                   `json:"done,omitempty"`
	Total int                   `json:"total,omitempty"`
	Run   *domain.SimulationRun `json:"run,omitempty"`
	Error string                `json:"error,omitempty"`
}

// handleWS reads one SimulationRequest, streams progress messages while the run
// executes, then sends a result or error message and closes.
// The run is cancelled if the client goes away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	observability.DefaultMetrics.WSConnections.Inc()
	defer observability.DefaultMetrics.WSConnections.Dec()

	var mu sync.Mutex
	send := func(m Message) error {
		mu.Lock()
		defer mu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(m)
	}

	conn.SetReadLimit(maxBodyBytes)
	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	req := s.newRequest()
	if err := conn.ReadJSON(&req); err != nil {
		_ = send(Message{Type: MessageError, Error: "decode request: " + err.Error()})
		return
	}
	conn.SetReadDeadline(time.Time{})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reader loop: only used to notice the client closing.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	run, err := s.execute(ctx, req, func(done, total int) {
		_ = send(Message{Type: MessageProgress, Done: done, Total: total})
	})
	if err != nil {
		_ = send(Message{Type: MessageError, Error: err.Error()})
	} else {
		_ = send(Message{Type: MessageResult, Run: run})
	}

	mu.Lock()
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteTimeout))
	mu.Unlock()
}
