package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"smart_hub"
	"smart_hub/internal/models"
	"smart_hub/internal/service"
)

// --- parseInterval unit tests ---

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil, Options{})

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws", defaultInterval},
		{"interval_string_valid", "/ws?interval=200ms", 200 * time.Millisecond},
		{"interval_ms_valid", "/ws?interval_ms=150", 150 * time.Millisecond},
		{"interval_too_large", "/ws?interval=2m", defaultInterval},
		{"interval_ms_too_large", "/ws?interval_ms=120000", defaultInterval},
		{"interval_invalid_string", "/ws?interval=bogus", defaultInterval},
		{"interval_ms_invalid", "/ws?interval_ms=NaN", defaultInterval},
		{"both_present_interval_wins", "/ws?interval=2s&interval_ms=150", 2 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.u, nil)
			c, _ := gin.CreateTestContext(w)
			c.Request = req
			got := h.parseInterval(c)
			if got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

// --- websocket integration tests ---

type wsTestEnvelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func dialTestWS(t *testing.T, s *service.Service, opts Options, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(s, nil, opts)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	q := u.Query()
	q.Set("interval_ms", "20") // fast ticks for the test
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	return dialer.Dial(u.String(), header)
}

func TestWebSocket_DecisionStream_InitialAndPeriodic(t *testing.T) {
	dec := &mockDecision{decision: models.Decision{Fan: true, Light: false}}
	conn, _, err := dialTestWS(t, &service.Service{Decision: dec}, Options{}, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var env wsTestEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if env.Type != wsTypeDecision || len(env.Data) == 0 {
		t.Fatalf("bad envelope: %+v", env)
	}
	var d models.Decision
	if err := json.Unmarshal(env.Data, &d); err != nil {
		t.Fatalf("unmarshal decision: %v", err)
	}
	if !d.Fan || d.Light {
		t.Fatalf("unexpected decision: %+v", d)
	}

	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	env = wsTestEnvelope{}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read second: %v", err)
	}
	if env.Type != wsTypeDecision {
		t.Fatalf("expected type=%s, got %+v", wsTypeDecision, env)
	}
	if dec.calls() < 2 {
		t.Fatalf("expected periodic Decide calls, got %d", dec.calls())
	}
}

func TestWebSocket_NotReadyKeepsConnection(t *testing.T) {
	dec := &mockDecision{err: smart_hub.NotReady("no sensor data yet")}
	conn, _, err := dialTestWS(t, &service.Service{Decision: dec}, Options{}, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	for i := 0; i < 2; i++ {
		_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
		var env wsTestEnvelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if env.Type != wsTypeNotReady || env.Error != "no sensor data yet" {
			t.Fatalf("unexpected envelope: %+v", env)
		}
	}
}

func TestWebSocket_InitialDecideError_Closes(t *testing.T) {
	dec := &mockDecision{err: errors.New("boom")}
	conn, _, err := dialTestWS(t, &service.Service{Decision: dec}, Options{}, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	var raw json.RawMessage
	if err := conn.ReadJSON(&raw); err == nil {
		t.Fatalf("expected read error (closed), got message: %s", string(raw))
	}
}

func TestWebSocket_RejectsForeignOrigin(t *testing.T) {
	dec := &mockDecision{}
	opts := Options{AllowedOrigins: []string{"https://simple-smart-hub-client.netlify.app"}}

	header := http.Header{}
	header.Set("Origin", "https://evil.example")
	_, resp, err := dialTestWS(t, &service.Service{Decision: dec}, opts, header)
	if err == nil {
		t.Fatalf("expected handshake failure for foreign origin")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %+v", resp)
	}

	header.Set("Origin", "https://simple-smart-hub-client.netlify.app")
	conn, _, err := dialTestWS(t, &service.Service{Decision: dec}, opts, header)
	if err != nil {
		t.Fatalf("allowed origin should connect: %v", err)
	}
	_ = conn.Close()
}
