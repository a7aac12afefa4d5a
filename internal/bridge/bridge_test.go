package bridge_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/anuj1535-hue/superpower-gpt/internal/bridge"
	"github.com/anuj1535-hue/superpower-gpt/internal/dispatch"
	"github.com/anuj1535-hue/superpower-gpt/internal/storage"
	"github.com/anuj1535-hue/superpower-gpt/internal/store"
)

// dialTestBridge spins up the bridge over a hydrated store and returns a
// connected websocket client.
func dialTestBridge(t *testing.T) (*websocket.Conn, *httptest.Server) {
	t.Helper()

	s := store.New(store.Config{
		Adapter:          storage.NewMemory(),
		DebounceInterval: 20 * time.Millisecond,
	})
	s.Hydrate(context.Background())
	gw := dispatch.New(s, nil, 10*time.Millisecond, 5)

	srv := httptest.NewServer(bridge.New(gw, nil).Handler())
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, srv
}

func roundTrip(t *testing.T, conn *websocket.Conn, frame string) map[string]any {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("write: %v", err)
	}
	var resp map[string]any
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	return resp
}

func TestBridge_Ping(t *testing.T) {
	conn, _ := dialTestBridge(t)

	resp := roundTrip(t, conn, `{"action": "ping"}`)
	if resp["status"] != "ok" {
		t.Errorf("resp = %v, want status ok", resp)
	}
}

func TestBridge_RequestResponseFlow(t *testing.T) {
	conn, _ := dialTestBridge(t)

	add := roundTrip(t, conn, `{"action": "addConversations", "conversations": [
		{"id": "a", "title": "bridged", "update_time": 1}
	]}`)
	if add["success"] != true || add["count"] != float64(1) {
		t.Errorf("add resp = %v", add)
	}

	get := roundTrip(t, conn, `{"action": "getConversations"}`)
	if get["total"] != float64(1) {
		t.Errorf("get resp = %v, want total 1", get)
	}
}

func TestBridge_UnknownActionEnvelope(t *testing.T) {
	conn, _ := dialTestBridge(t)

	resp := roundTrip(t, conn, `{"action": "doesNotExist"}`)
	if resp["success"] != false || resp["error"] != "Unknown action" {
		t.Errorf("resp = %v", resp)
	}
}

func TestBridge_MalformedFrame(t *testing.T) {
	conn, _ := dialTestBridge(t)

	resp := roundTrip(t, conn, `{not json`)
	if resp["success"] != false {
		t.Errorf("resp = %v, want a failure envelope for a malformed frame", resp)
	}
}

func TestBridge_Healthz(t *testing.T) {
	_, srv := dialTestBridge(t)

	res, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", res.StatusCode)
	}
}
