package api

import (
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"themeplane/model"
)

func dialWS(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(url, "http") + "/api/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg string) model.WSResponse {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write: %v", err)
	}
	var resp model.WSResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	return resp
}

func TestWebSocketRoundTrip(t *testing.T) {
	s, ts := newTestServer(t, Options{})
	conn := dialWS(t, ts.URL)
	defer conn.Close()

	opts := roundTrip(t, conn, `{"id":"1","use":"a b a"}`)
	if opts.ID != "1" || opts.Type != "options" {
		t.Fatalf("reply = %+v", opts)
	}
	if strings.Join(opts.Tokens, ",") != "a,b" || opts.Class != "mdc-theme--a mdc-theme--b" {
		t.Fatalf("options reply = %+v", opts)
	}

	colors := roundTrip(t, conn, `{"id":"2","options":{"primary":"#ffffff"},"style":{"color":"red"}}`)
	if colors.ID != "2" || colors.Type != "colors" {
		t.Fatalf("reply = %+v", colors)
	}
	want := "color: red; --mdc-theme-primary: #ffffff; --mdc-theme-on-primary: rgba(0, 0, 0, 0.87);"
	if colors.CSS != want {
		t.Fatalf("css = %q, want %q", colors.CSS, want)
	}

	bad := roundTrip(t, conn, `not json`)
	if bad.Type != "error" || bad.Error == "" {
		t.Fatalf("malformed reply = %+v", bad)
	}

	// the connection survives a malformed message
	again := roundTrip(t, conn, `{"id":"3","use":{"x":1}}`)
	if again.ID != "3" || strings.Join(again.Tokens, ",") != "x" {
		t.Fatalf("reply after error = %+v", again)
	}

	if n := s.ws.Count(); n != 1 {
		t.Fatalf("Count() = %d, want 1", n)
	}
}

func TestWebSocketCloseAll(t *testing.T) {
	s, ts := newTestServer(t, Options{})
	conn := dialWS(t, ts.URL)
	defer conn.Close()

	// make sure the server side has registered the connection
	roundTrip(t, conn, `{"id":"ping","use":"a"}`)

	s.ws.CloseAll()

	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline: %v", err)
	}
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Fatalf("ReadMessage error = %v, want going-away close", err)
	}
	if n := s.ws.Count(); n != 0 {
		t.Fatalf("Count() = %d after CloseAll", n)
	}
}

func TestWSConnectionManagerUnknownID(t *testing.T) {
	t.Parallel()

	m := NewWSConnectionManager()
	if err := m.WriteJSON("nope", map[string]string{"a": "b"}); err == nil {
		t.Fatalf("expected error writing to unknown connection")
	}
	m.Remove("nope")
	m.CloseAll()
}
