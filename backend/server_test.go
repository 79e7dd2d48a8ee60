package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekoden/nekoden/backend"
	"github.com/nekoden/nekoden/backend/handlers"
	"github.com/nekoden/nekoden/internal/domain/actionlog"
	"github.com/nekoden/nekoden/internal/domain/events"
	"github.com/nekoden/nekoden/internal/domain/pet"
	"github.com/nekoden/nekoden/internal/domain/rewards"
	"github.com/nekoden/nekoden/internal/gateways/memory"
	"github.com/nekoden/nekoden/internal/identity"
)

var spinTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type testServer struct {
	app      *fiber.App
	webApp   *handlers.WebApp
	verifier *identity.Verifier
	logs     *actionlog.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewStore()
	_, err := pet.Bootstrap(context.Background(), store, spinTime)
	require.NoError(t, err)

	verifier, err := identity.NewVerifier("test-secret", "nekoden", nil)
	require.NoError(t, err)

	clock := func() time.Time { return spinTime }
	noop := events.BroadcasterFunc(func(string, any) {})
	logs := actionlog.NewService(store, noop)
	machine := pet.NewStateMachine(store, logs, noop, pet.DefaultSettings())

	avatars := rewards.NewDefaultAvatars([]string{"/avatars/default-1.png"})
	ledger := rewards.NewLedger(store, avatars, clock)
	guard := rewards.NewCooldownGuard(store, 30*time.Second, []string{"Free Spin"}, clock)
	service := rewards.NewService(guard, ledger, rewards.NewCatalogue(rewards.DefaultPrizes()))

	webApp := &handlers.WebApp{
		Verifier: verifier,
		Rewards:  service,
		Ledger:   ledger,
		State:    machine,
		Logs:     logs,
		Version:  "test",
	}
	return &testServer{
		app:      backend.NewApp(webApp, nil),
		webApp:   webApp,
		verifier: verifier,
		logs:     logs,
	}
}

func (s *testServer) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := s.verifier.Issue(userID, "Mochi", time.Hour)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestRewardRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
	}{
		{"spin without token", http.MethodPost, "/api/rewards/spin", ""},
		{"history without token", http.MethodGet, "/api/rewards/history", ""},
		{"cooldown with garbage token", http.MethodGet, "/api/rewards/cooldown", "not-a-jwt"},
		{"cleanup without token", http.MethodPost, "/api/rewards/cleanup", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := s.do(t, tt.method, tt.path, tt.token, "")
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
		})
	}
}

func TestSpinThenCooldown(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "user-1")

	status, env := s.do(t, http.MethodPost, "/api/rewards/spin", token, `{"reward":"Cat Treat"}`)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	var result rewards.SpinResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "Cat Treat", result.Spin.Reward)
	assert.Equal(t, "user-1", result.Spin.UserID)
	assert.False(t, result.CanSpinAgain)
	assert.Equal(t, 30, result.CooldownRemaining)

	status, env = s.do(t, http.MethodPost, "/api/rewards/spin", token, `{"reward":"Cat Treat"}`)
	assert.Equal(t, http.StatusTooManyRequests, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "COOLDOWN_ACTIVE", env.Error.Code)
	assert.EqualValues(t, 30, env.Error.Details["remaining"])

	status, env = s.do(t, http.MethodGet, "/api/rewards/cooldown", token, "")
	require.Equal(t, http.StatusOK, status)
	var cooldown rewards.CooldownStatus
	require.NoError(t, json.Unmarshal(env.Data, &cooldown))
	assert.False(t, cooldown.Allowed)
	assert.Equal(t, 30, cooldown.RemainingSeconds)

	status, env = s.do(t, http.MethodGet, "/api/rewards/history", token, "")
	require.Equal(t, http.StatusOK, status)
	var history []rewards.Spin
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history, 1)
	assert.Equal(t, "Cat Treat", history[0].Reward)
}

func TestSpinRejectsBadInput(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "user-1")

	status, env := s.do(t, http.MethodPost, "/api/rewards/spin", token, `{"reward":"Party Cat Avtar"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNKNOWN_PRIZE", env.Error.Code)
	assert.Contains(t, env.Error.Details["suggestions"], "Party Cat Avatar")

	status, env = s.do(t, http.MethodPost, "/api/rewards/spin", token, `{"reward":"  "}`)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)

	// A rejected spin does not start the cooldown.
	status, env = s.do(t, http.MethodGet, "/api/rewards/cooldown", token, "")
	require.Equal(t, http.StatusOK, status)
	var cooldown rewards.CooldownStatus
	require.NoError(t, json.Unmarshal(env.Data, &cooldown))
	assert.True(t, cooldown.Allowed)
}

func TestAvatarPrizeShowsUpAsActive(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "user-2")

	status, env := s.do(t, http.MethodGet, "/api/rewards/avatar", token, "")
	require.Equal(t, http.StatusOK, status)
	var avatar rewards.AvatarView
	require.NoError(t, json.Unmarshal(env.Data, &avatar))
	assert.Equal(t, "/avatars/default-1.png", avatar.Avatar)
	assert.False(t, avatar.Temporary)

	status, _ = s.do(t, http.MethodPost, "/api/rewards/spin", token, `{"reward":"Party Cat Avatar"}`)
	require.Equal(t, http.StatusOK, status)

	status, env = s.do(t, http.MethodGet, "/api/rewards/active", token, "")
	require.Equal(t, http.StatusOK, status)
	var active map[string]struct {
		Value     map[string]string `json:"value"`
		ExpiresAt time.Time         `json:"expiresAt"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &active))
	require.Contains(t, active, rewards.EffectAvatar)
	assert.Equal(t, "/avatars/party-cat.png", active[rewards.EffectAvatar].Value[rewards.ValueAvatar])
	assert.True(t, active[rewards.EffectAvatar].ExpiresAt.Equal(spinTime.Add(time.Hour)))

	status, env = s.do(t, http.MethodGet, "/api/rewards/avatar", token, "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &avatar))
	assert.Equal(t, "/avatars/party-cat.png", avatar.Avatar)
	assert.True(t, avatar.Temporary)
	require.NotNil(t, avatar.ExpiresAt)
}

type failingLedger struct{}

func (failingLedger) ListActive(context.Context, string) ([]rewards.ActiveReward, error) {
	return nil, errors.New("db down")
}

func (failingLedger) ActiveAvatar(context.Context, string) rewards.AvatarView {
	return rewards.AvatarView{}
}

func (failingLedger) CleanupExpired(context.Context, string) (int64, error) {
	return 0, errors.New("db down")
}

func TestCleanupAlwaysSucceeds(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "user-3")

	status, env := s.do(t, http.MethodPost, "/api/rewards/cleanup", token, "")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, "Expired rewards cleaned up", env.Message)

	s.webApp.Ledger = failingLedger{}
	status, env = s.do(t, http.MethodPost, "/api/rewards/cleanup", token, "")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, "cleanup will retry later", env.Message)

	status, env = s.do(t, http.MethodGet, "/api/rewards/active", token, "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.False(t, env.Success)
}

func TestPetRoutes(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodGet, "/api/pet/state", "", "")
	require.Equal(t, http.StatusOK, status)
	var snap pet.Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, "playing", snap.State)
	assert.False(t, snap.IsResting)

	status, env = s.do(t, http.MethodGet, "/api/pet/logs", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env.Data))

	for _, action := range []string{"first", "second", "third"} {
		_, err := s.logs.Append(context.Background(), action, "Mochi")
		require.NoError(t, err)
	}

	status, env = s.do(t, http.MethodGet, "/api/pet/logs?limit=2", "", "")
	require.Equal(t, http.StatusOK, status)
	var entries []actionlog.Entry
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "third", entries[0].Action)
	assert.Equal(t, "second", entries[1].Action)
}

type downStore struct{}

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	s.webApp.Store = downStore{}
	status, env = s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "SERVICE_UNAVAILABLE", env.Error.Code)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}
