// Package bridge exposes the dispatch gateway over a local WebSocket
// endpoint. Each inbound frame is one JSON request, each reply one JSON
// response envelope — the stand-in for the browser extension's message port.
package bridge

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/anuj1535-hue/superpower-gpt/internal/dispatch"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Local-only bridge; the listener binds to loopback.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Bridge serves the gateway's request/response contract over /ws and a plain
// HTTP liveness check over /healthz.
type Bridge struct {
	gw  *dispatch.Gateway
	log *zap.Logger
}

// New creates a Bridge for the given gateway.
func New(gw *dispatch.Gateway, log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{gw: gw, log: log}
}

// Handler returns the HTTP mux for the bridge endpoints.
func (b *Bridge) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", b.serveWS)
	mux.HandleFunc("/healthz", b.serveHealth)
	return mux
}

func (b *Bridge) serveHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// serveWS upgrades the connection and relays frames to the gateway until the
// peer goes away. One goroutine per connection reads and writes in turn, so
// responses come back in request order.
func (b *Bridge) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				b.log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		req, err := dispatch.DecodeRequest(frame)
		var resp dispatch.Response
		if err != nil {
			resp = dispatch.Response{"success": false, "error": err.Error()}
		} else {
			resp = b.gw.Dispatch(r.Context(), req)
		}

		if err := conn.WriteJSON(resp); err != nil {
			b.log.Warn("websocket write failed", zap.Error(err))
			return
		}
	}
}
