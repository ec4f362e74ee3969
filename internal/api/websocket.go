package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"delphi/internal/metrics"
	"delphi/internal/pipeline"
	"delphi/pkg/logger"
)

// defaultTicker is analyzed when a request omits the ticker field.
const defaultTicker = "AAPL"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Dashboard is served from arbitrary local origins
	},
}

// analysisRequest is the single inbound message a dashboard client sends
// after connecting.
type analysisRequest struct {
	Ticker string `json:"ticker"`
	Date   string `json:"date"`
}

// WebSocketHandler streams analysis runs to dashboard clients. Each
// connection carries exactly one run: the client sends one request, the
// handler forwards every pipeline event and closes after the terminal one.
type WebSocketHandler struct {
	runner *pipeline.Runner
	log    *logger.Logger
}

// NewWebSocketHandler creates a WebSocket handler backed by runner.
func NewWebSocketHandler(runner *pipeline.Runner, log *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		runner: runner,
		log:    log,
	}
}

// HandleWebSocket upgrades the connection, reads one analysis request and
// streams events until the run completes or fails.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorw("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	defer func() {
		deadline := time.Now().Add(time.Second)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	}()

	metrics.WebSocketConnections.Inc()
	defer metrics.WebSocketConnections.Dec()

	var req analysisRequest
	if err := conn.ReadJSON(&req); err != nil {
		if _, closed := err.(*websocket.CloseError); !closed {
			h.log.Warnw("Rejecting malformed analysis request", "error", err)
			h.writeEvent(conn, pipeline.NewErrorEvent("invalid analysis request: expected JSON {ticker, date}"))
		}
		return
	}
	if req.Ticker == "" {
		req.Ticker = defaultTicker
	}

	// A failed write means the client is gone; cancel so the run stops at
	// the next step boundary instead of burning provider quota.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	emit := func(ev pipeline.Event) {
		if err := h.writeEvent(conn, ev); err != nil {
			h.log.Warnw("WebSocket write failed, aborting run", "error", err)
			cancel()
		}
	}

	if _, err := h.runner.Run(ctx, req.Ticker, req.Date, emit); err != nil {
		h.log.Errorw("Streamed analysis run failed", "ticker", req.Ticker, "error", err)
	}
}

func (h *WebSocketHandler) writeEvent(conn *websocket.Conn, ev pipeline.Event) error {
	if err := conn.WriteJSON(ev); err != nil {
		return err
	}
	metrics.WebSocketMessages.WithLabelValues(string(ev.Type)).Inc()
	return nil
}
