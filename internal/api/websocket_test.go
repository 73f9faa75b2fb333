package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/entrance-cockpit-mock/internal/monitoring"
)

// dialEvents connects a WebSocket client to the events endpoint of ts.
func dialEvents(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/events"
	ws, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v (resp: %v)", err, resp)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

// readEvent reads one text frame and decodes it as a monitoring event.
func readEvent(t *testing.T, ws *websocket.Conn) monitoring.Event {
	t.Helper()

	ws.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck // Test deadline
	var ev monitoring.Event
	if err := ws.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return ev
}

// waitForObservers polls until the hub reports want sessions.
func waitForObservers(t *testing.T, hub *monitoring.Hub, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ActiveCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("ActiveCount() = %d, want %d", hub.ActiveCount(), want)
}

func TestWebSocket_SnapshotOnConnect(t *testing.T) {
	env := testServer(t, nil)
	ts := httptest.NewServer(env.router)
	defer ts.Close()

	ws := dialEvents(t, ts)

	ev := readEvent(t, ws)
	if ev.Type != monitoring.TypeBadgeEvent {
		t.Errorf("snapshot Type = %q, want %q", ev.Type, monitoring.TypeBadgeEvent)
	}
	if ev.DeviceID != monitoring.SnapshotDeviceID {
		t.Errorf("snapshot DeviceID = %q, want %q", ev.DeviceID, monitoring.SnapshotDeviceID)
	}
	if got := ev.StringField(monitoring.KeyBadgeID); got != monitoring.SnapshotBadgeID {
		t.Errorf("snapshot badgeID = %q, want %q", got, monitoring.SnapshotBadgeID)
	}
}

func TestWebSocket_ReceivesPublishedEvents(t *testing.T) {
	env := testServer(t, nil)
	ts := httptest.NewServer(env.router)
	defer ts.Close()

	first := dialEvents(t, ts)
	second := dialEvents(t, ts)
	snapA := readEvent(t, first)
	snapB := readEvent(t, second)
	if snapA.ID == snapB.ID {
		t.Errorf("snapshot ids both %q, want one snapshot per observer", snapA.ID)
	}
	waitForObservers(t, env.hub, 2)

	resp, err := http.Post(ts.URL+"/api/mock/manual-access", "application/json",
		strings.NewReader(`{"doorId":"door-001"}`))
	if err != nil {
		t.Fatalf("manual access request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("manual access status = %d, want %d", resp.StatusCode, http.StatusAccepted)
	}

	for name, ws := range map[string]*websocket.Conn{"first": first, "second": second} {
		ev := readEvent(t, ws)
		if ev.Type != monitoring.TypeManualOverride {
			t.Errorf("%s: Type = %q, want %q", name, ev.Type, monitoring.TypeManualOverride)
		}
		if got := ev.StringField(monitoring.KeyDoorID); got != "door-001" {
			t.Errorf("%s: doorID = %q, want door-001", name, got)
		}
	}
}

func TestWebSocket_InjectedEventParity(t *testing.T) {
	env := testServer(t, nil)
	ts := httptest.NewServer(env.router)
	defer ts.Close()

	first := dialEvents(t, ts)
	second := dialEvents(t, ts)
	readEvent(t, first)
	readEvent(t, second)
	waitForObservers(t, env.hub, 2)

	resp, err := http.Post(ts.URL+"/api/mock/events", "application/json",
		strings.NewReader(`{"type":"x","device_id":"d","data":{"k":1}}`))
	if err != nil {
		t.Fatalf("inject request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("inject status = %d, want %d", resp.StatusCode, http.StatusAccepted)
	}

	a := readEvent(t, first)
	b := readEvent(t, second)
	if a.ID != b.ID {
		t.Errorf("ids = %q and %q, want the same event", a.ID, b.ID)
	}
	for name, ev := range map[string]monitoring.Event{"first": a, "second": b} {
		if ev.Type != "x" || ev.DeviceID != "d" {
			t.Errorf("%s: type/device = %q/%q, want x/d", name, ev.Type, ev.DeviceID)
		}
		if k, _ := ev.Data["k"].(float64); k != 1 {
			t.Errorf("%s: data.k = %v, want 1", name, ev.Data["k"])
		}
	}
}

func TestWebSocket_UnknownDoorReachesNoObserver(t *testing.T) {
	env := testServer(t, nil)
	ts := httptest.NewServer(env.router)
	defer ts.Close()

	ws := dialEvents(t, ts)
	readEvent(t, ws)
	waitForObservers(t, env.hub, 1)

	resp, err := http.Post(ts.URL+"/api/mock/manual-access", "application/json",
		strings.NewReader(`{"doorId":"door-999"}`))
	if err != nil {
		t.Fatalf("manual access request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("manual access status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	ws.SetReadDeadline(time.Now().Add(200 * time.Millisecond)) //nolint:errcheck // Test deadline
	if _, msg, err := ws.ReadMessage(); err == nil {
		t.Errorf("observer received %s, want nothing", msg)
	}
}

func TestWebSocket_ObserverCountTracksDisconnects(t *testing.T) {
	env := testServer(t, nil)
	ts := httptest.NewServer(env.router)
	defer ts.Close()

	ws := dialEvents(t, ts)
	readEvent(t, ws)
	waitForObservers(t, env.hub, 1)

	//nolint:errcheck // Best-effort close handshake
	ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	ws.Close()

	waitForObservers(t, env.hub, 0)
}

func TestWebSocket_InboundTextIgnored(t *testing.T) {
	env := testServer(t, nil)
	ts := httptest.NewServer(env.router)
	defer ts.Close()

	ws := dialEvents(t, ts)
	readEvent(t, ws)

	if err := ws.WriteMessage(websocket.TextMessage, []byte(`{"hello":"cockpit"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	// The session stays registered after an inbound frame.
	time.Sleep(50 * time.Millisecond)
	waitForObservers(t, env.hub, 1)
}

func TestWebSocket_HubCloseSendsCloseFrame(t *testing.T) {
	env := testServer(t, nil)
	ts := httptest.NewServer(env.router)
	defer ts.Close()

	ws := dialEvents(t, ts)
	readEvent(t, ws)
	waitForObservers(t, env.hub, 1)

	env.hub.Close()

	ws.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck // Test deadline
	_, _, err := ws.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("ReadMessage() error = %v, want normal close", err)
	}
}

func TestWSSession_SendBufferOverflowCloses(t *testing.T) {
	s := newWSSession(nil, 1, nil)

	if err := s.SendText("one"); err != nil {
		t.Fatalf("first SendText() error = %v", err)
	}
	if err := s.SendText("two"); err != errSendBufferFull {
		t.Errorf("second SendText() error = %v, want %v", err, errSendBufferFull)
	}
	if s.IsOpen() {
		t.Error("IsOpen() = true after overflow, want false")
	}
	if err := s.SendText("three"); err != errSessionClosed {
		t.Errorf("SendText() after close error = %v, want %v", err, errSessionClosed)
	}
}
