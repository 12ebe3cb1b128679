package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/your-org/watchdog/pkg/dto"
)

func newWSServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", hub.HandleWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		n := len(hub.clients)
		hub.mu.RUnlock()
		if n == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("hub never reached %d clients", want)
}

func readCapture(t *testing.T, conn *websocket.Conn) dto.WSCapture {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	var evt dto.WSCapture
	if err := json.Unmarshal(data, &evt); err != nil {
		t.Fatalf("unmarshal message %q: %v", data, err)
	}
	return evt
}

func TestHubBroadcastsCaptureEnvelope(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	srv := newWSServer(t, hub)
	conn := dialWS(t, srv, "")
	waitForClients(t, hub, 1)

	hub.BroadcastCapture(&dto.WSCapture{
		Type:     "capture_analyzed",
		CameraID: 7,
		Data: dto.CaptureResponse{
			ID:          uuid.New(),
			CameraID:    7,
			Category:    "INTR",
			SnapshotURL: "/v1/captures/x/snapshot",
		},
	})

	evt := readCapture(t, conn)
	if evt.Type != "capture_analyzed" {
		t.Errorf("type = %q, want capture_analyzed", evt.Type)
	}
	if evt.CameraID != 7 || evt.Data.CameraID != 7 {
		t.Errorf("camera ids = %d/%d, want 7/7", evt.CameraID, evt.Data.CameraID)
	}
	if evt.Data.SnapshotURL == "" {
		t.Error("snapshot URL missing from envelope")
	}
}

func TestHubHonorsCameraFilter(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	srv := newWSServer(t, hub)
	filtered := dialWS(t, srv, "?camera_id=7")
	all := dialWS(t, srv, "")
	waitForClients(t, hub, 2)

	hub.BroadcastCapture(&dto.WSCapture{Type: "capture_analyzed", CameraID: 8})
	hub.BroadcastCapture(&dto.WSCapture{Type: "capture_analyzed", CameraID: 7})

	// The unfiltered client sees both, in order.
	if evt := readCapture(t, all); evt.CameraID != 8 {
		t.Errorf("first broadcast camera = %d, want 8", evt.CameraID)
	}
	if evt := readCapture(t, all); evt.CameraID != 7 {
		t.Errorf("second broadcast camera = %d, want 7", evt.CameraID)
	}

	// The filtered client sees only camera 7.
	if evt := readCapture(t, filtered); evt.CameraID != 7 {
		t.Errorf("filtered client received camera %d, want 7", evt.CameraID)
	}
	_ = filtered.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := filtered.ReadMessage(); err == nil {
		t.Error("filtered client received a message for another camera")
	}
}
