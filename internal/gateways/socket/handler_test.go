package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekoden/nekoden/internal/domain/actionlog"
	"github.com/nekoden/nekoden/internal/domain/events"
	"github.com/nekoden/nekoden/internal/domain/pet"
	"github.com/nekoden/nekoden/internal/gateways/memory"
	"github.com/nekoden/nekoden/internal/identity"
)

type received struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type testServer struct {
	srv      *httptest.Server
	hub      *Hub
	verifier *identity.Verifier
	skew     *atomic.Int64
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	_, err := pet.Bootstrap(context.Background(), store, time.Now())
	require.NoError(t, err)

	hub := NewHub()
	logs := actionlog.NewService(store, hub)
	settings := pet.Settings{}
	lock := pet.NewRestLock(store, logs, hub, settings)
	machine := pet.NewStateMachine(store, logs, hub, settings)

	verifier, err := identity.NewVerifier("test-secret", "", nil)
	require.NoError(t, err)

	skew := &atomic.Int64{}
	h := NewHandler(hub, Deps{Verifier: verifier, Rest: lock, State: machine, Logs: logs}, nil)
	h.now = func() time.Time { return time.Now().Add(time.Duration(skew.Load())) }
	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return &testServer{srv: srv, hub: hub, verifier: verifier, skew: skew}
}

func (ts *testServer) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.srv.URL, "http")
	if token != "" {
		url += "?token=" + token
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	first := read(t, conn)
	require.Equal(t, events.CurrentState, first.Event)
	return conn
}

func read(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg received
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{"event": event, "data": data}))
}

func TestHandler_AnonymousCannotRest(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t, "")

	send(t, conn, events.ActivateRest, map[string]string{"userId": "u1", "userName": "Mochi"})
	msg := read(t, conn)
	require.Equal(t, events.RestDenied, msg.Event)

	var denied restDeniedPayload
	require.NoError(t, json.Unmarshal(msg.Data, &denied))
	assert.Equal(t, string(pet.ReasonUnauthenticated), denied.Reason)
	assert.NotEmpty(t, denied.Message)
}

func TestHandler_ExpiredTokenCannotRest(t *testing.T) {
	ts := newTestServer(t)
	token, err := ts.verifier.Issue("u1", "Mochi", time.Minute)
	require.NoError(t, err)
	conn := ts.dial(t, token)

	ts.skew.Store(int64(2 * time.Minute))
	send(t, conn, events.ActivateRest, map[string]string{"userId": "u1", "userName": "Mochi"})

	msg := read(t, conn)
	require.Equal(t, events.RestDenied, msg.Event)
	var denied restDeniedPayload
	require.NoError(t, json.Unmarshal(msg.Data, &denied))
	assert.Equal(t, string(pet.ReasonUnauthenticated), denied.Reason)
}

func TestHandler_ActivateRestBroadcasts(t *testing.T) {
	ts := newTestServer(t)
	token, err := ts.verifier.Issue("u1", "", time.Hour)
	require.NoError(t, err)

	sleeper := ts.dial(t, token)
	observer := ts.dial(t, "")
	require.Eventually(t, func() bool { return ts.hub.Len() == 2 }, time.Second, 10*time.Millisecond)

	send(t, sleeper, events.ActivateRest, map[string]string{"userId": "u1", "userName": "Mochi"})

	want := []string{events.NewLog, events.RestStarted, events.StateChanged}
	for _, conn := range []*websocket.Conn{sleeper, observer} {
		for _, event := range want {
			msg := read(t, conn)
			require.Equal(t, event, msg.Event)
			if event == events.RestStarted {
				var p events.RestStartedPayload
				require.NoError(t, json.Unmarshal(msg.Data, &p))
				assert.Equal(t, "Mochi", p.UserName)
			}
		}
	}

	send(t, observer, events.GetCurrentState, nil)
	msg := read(t, observer)
	require.Equal(t, events.CurrentState, msg.Event)
	var snap pet.Snapshot
	require.NoError(t, json.Unmarshal(msg.Data, &snap))
	assert.Equal(t, "sleeping", snap.State)
	assert.True(t, snap.IsResting)
	assert.Equal(t, "Mochi", snap.RestedByName)

	send(t, sleeper, events.ActivateRest, nil)
	msg = read(t, sleeper)
	require.Equal(t, events.RestDenied, msg.Event)
	var denied restDeniedPayload
	require.NoError(t, json.Unmarshal(msg.Data, &denied))
	assert.Equal(t, string(pet.ReasonAlreadySleeping), denied.Reason)
}

func TestHandler_GetLogsAndUnknownEvent(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t, "")

	send(t, conn, events.GetLogs, map[string]int{"limit": 10})
	msg := read(t, conn)
	require.Equal(t, events.InitialLogs, msg.Event)
	assert.JSONEq(t, `[]`, string(msg.Data))

	send(t, conn, "feed-cat", nil)
	msg = read(t, conn)
	require.Equal(t, events.Error, msg.Event)
	assert.Contains(t, string(msg.Data), "feed-cat")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	msg = read(t, conn)
	assert.Equal(t, events.Error, msg.Event)
}

func TestHandler_RejectsBadToken(t *testing.T) {
	ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + "?token=bogus"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://nekoden.example"})

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(r), "requests without Origin are allowed")

	r.Header.Set("Origin", "https://nekoden.example")
	assert.True(t, check(r))

	r.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(r))

	assert.True(t, originChecker([]string{"*"})(r))
}
