package socket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nekoden/nekoden/internal/domain/actionlog"
	"github.com/nekoden/nekoden/internal/domain/events"
	"github.com/nekoden/nekoden/internal/domain/pet"
	"github.com/nekoden/nekoden/internal/identity"
	"github.com/nekoden/nekoden/nekoden/config"
)

type TokenVerifier interface {
	Verify(token string) (identity.Identity, error)
}

type RestActivator interface {
	Activate(ctx context.Context, actor pet.Actor) (*pet.RestResult, error)
}

type StateReader interface {
	Current(ctx context.Context) (*pet.State, error)
}

type LogReader interface {
	Recent(ctx context.Context, limit int) ([]actionlog.Entry, error)
}

type Deps struct {
	Verifier TokenVerifier
	Rest     RestActivator
	State    StateReader
	Logs     LogReader
}

// Handler upgrades GET /ws and serves the event protocol. A missing token
// gives a read-only observer; a bad token is rejected before the upgrade.
type Handler struct {
	hub      *Hub
	deps     Deps
	upgrader websocket.Upgrader
	timeout  time.Duration
	now      func() time.Time
}

func NewHandler(hub *Hub, deps Deps, allowOrigins []string) *Handler {
	return &Handler{
		hub:  hub,
		deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowOrigins),
		},
		timeout: config.DefaultQueryTimeout,
		now:     time.Now,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var id *identity.Identity
	if token := requestToken(r); token != "" {
		verified, err := h.deps.Verifier.Verify(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		id = &verified
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed",
			slog.String("type", "ws"),
			slog.Any("error", err))
		return
	}

	c := newClient(h.hub, conn, id)
	if !h.hub.register(c) {
		_ = conn.Close()
		return
	}
	slog.Debug("Websocket client joined",
		slog.String("type", "ws"),
		slog.String("client", c.String()),
		slog.Int("clients", h.hub.Len()))

	go c.writePump()
	h.sendState(r.Context(), c)
	c.readPump(func(c *Client, payload []byte) {
		h.dispatch(r.Context(), c, payload)
	})
}

func (h *Handler) dispatch(parent context.Context, c *Client, payload []byte) {
	var msg inbound
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.reply(events.Error, errorPayload{Message: "malformed message"})
		return
	}

	ctx, cancel := context.WithTimeout(parent, h.timeout)
	defer cancel()

	switch msg.Event {
	case events.GetCurrentState:
		h.sendState(ctx, c)
	case events.ActivateRest:
		h.activateRest(ctx, c, msg.Data)
	case events.GetLogs:
		h.sendLogs(ctx, c, msg.Data)
	default:
		c.reply(events.Error, errorPayload{Message: "unknown event: " + msg.Event})
	}
}

func (h *Handler) sendState(ctx context.Context, c *Client) {
	state, err := h.deps.State.Current(ctx)
	if err != nil {
		slog.Error("Failed to load state for client",
			slog.String("type", "error"),
			slog.Any("error", err))
		c.reply(events.Error, errorPayload{Message: "state unavailable"})
		return
	}
	c.reply(events.CurrentState, state.Snapshot())
}

func (h *Handler) activateRest(ctx context.Context, c *Client, data json.RawMessage) {
	var p activateRestPayload
	if len(data) > 0 {
		_ = json.Unmarshal(data, &p)
	}

	// A connection outlives its token; once it expires the client is an
	// observer again.
	var actor pet.Actor
	if c.identity != nil && h.now().Before(c.identity.ExpiresAt) {
		actor = pet.Actor{ID: c.identity.UserID, Name: c.identity.Name}
		if name := strings.TrimSpace(p.UserName); name != "" && actor.Name == actor.ID {
			actor.Name = name
		}
	}

	_, err := h.deps.Rest.Activate(ctx, actor)
	if err == nil {
		return
	}
	var denied *pet.RestDeniedError
	if errors.As(err, &denied) {
		c.reply(events.RestDenied, restDeniedPayload{
			Reason:  string(denied.Reason),
			Message: denied.Reason.Message(),
		})
		return
	}
	slog.Error("Rest activation failed",
		slog.String("type", "error"),
		slog.String("client", c.String()),
		slog.Any("error", err))
	c.reply(events.Error, errorPayload{Message: "could not put the cat to sleep, try again"})
}

func (h *Handler) sendLogs(ctx context.Context, c *Client, data json.RawMessage) {
	var p getLogsPayload
	if len(data) > 0 {
		_ = json.Unmarshal(data, &p)
	}
	entries, err := h.deps.Logs.Recent(ctx, p.Limit)
	if err != nil {
		slog.Error("Failed to load logs for client",
			slog.String("type", "error"),
			slog.Any("error", err))
		c.reply(events.Error, errorPayload{Message: "logs unavailable"})
		return
	}
	if entries == nil {
		entries = []actionlog.Entry{}
	}
	c.reply(events.InitialLogs, entries)
}

func requestToken(r *http.Request) string {
	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		return token
	}
	return identity.BearerToken(r.Header.Get("Authorization"))
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}
