package pet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nekoden/nekoden/internal/domain/actionlog"
	"github.com/nekoden/nekoden/internal/domain/events"
)

// TickOutcome describes what a single tick did.
type TickOutcome string

const (
	TickWoke     TickOutcome = "woke"
	TickResting  TickOutcome = "resting"
	TickDwelling TickOutcome = "dwelling"
	TickChanged  TickOutcome = "changed"
	// TickSkipped means a conditional write lost to a concurrent change.
	TickSkipped TickOutcome = "skipped"
)

// StateMachine cycles the mood on a timer and drives the rest -> waking ->
// cycle transition. It reads fresh state every tick and never writes while
// a rest period is active.
type StateMachine struct {
	repo        Repository
	log         actionlog.Appender
	broadcaster events.Broadcaster
	settings    Settings
}

func NewStateMachine(repo Repository, log actionlog.Appender, broadcaster events.Broadcaster, settings Settings) *StateMachine {
	if broadcaster == nil {
		broadcaster = events.Nop
	}
	return &StateMachine{
		repo:        repo,
		log:         log,
		broadcaster: broadcaster,
		settings:    settings.withDefaults(),
	}
}

// Bootstrap creates the state row if needed and verifies it can be read.
// A failure here means the process must not accept traffic.
func Bootstrap(ctx context.Context, repo Repository, now time.Time) (*State, error) {
	initial := State{
		Current:     Playing,
		LastUpdated: now.UTC(),
	}
	if err := repo.EnsureState(ctx, initial); err != nil {
		return nil, fmt.Errorf("failed to create global state: %w", err)
	}
	state, err := repo.GetState(ctx)
	if err != nil {
		if errors.Is(err, ErrStateNotFound) {
			return nil, fmt.Errorf("global state missing after bootstrap: %w", err)
		}
		return nil, fmt.Errorf("failed to read global state: %w", err)
	}
	if !state.Current.Valid() {
		return nil, fmt.Errorf("global state holds unknown mood %q", state.Current)
	}
	return state, nil
}

func (m *StateMachine) Current(ctx context.Context) (*State, error) {
	state, err := m.repo.GetState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}
	return state, nil
}

// Run ticks until ctx is cancelled. Each tick gets its own timeout so a
// stuck store call cannot hold up the ones after it.
func (m *StateMachine) Run(ctx context.Context) {
	ticker := time.NewTicker(m.settings.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			outcome, err := m.safeTick(ctx)
			if err != nil {
				slog.Error("State tick failed",
					slog.String("type", "error"),
					slog.Any("error", err))
				continue
			}
			slog.Debug("State tick",
				slog.String("type", "tick"),
				slog.String("outcome", string(outcome)))
		}
	}
}

// safeTick runs one Tick under its own timeout. A panic fails only that tick.
func (m *StateMachine) safeTick(ctx context.Context) (outcome TickOutcome, err error) {
	tickCtx, cancel := context.WithTimeout(ctx, m.settings.TickTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("state tick panicked: %v", r)
		}
	}()
	return m.Tick(tickCtx)
}

// Tick runs one cycle of the lifecycle.
func (m *StateMachine) Tick(ctx context.Context) (TickOutcome, error) {
	state, err := m.repo.GetState(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read state: %w", err)
	}
	now := m.settings.Now().UTC()

	switch {
	case state.RestExpired(now):
		return m.wake(ctx, now)
	case state.IsResting:
		return TickResting, nil
	case state.Current == Waking && now.Sub(state.LastUpdated) < m.settings.WakeDwell:
		return TickDwelling, nil
	}

	next := NextMood(state.Current, state.Previous, m.settings.Intn)
	if !state.Current.CanTransitionTo(next) {
		return TickSkipped, nil
	}
	ok, err := m.repo.SetMood(ctx, state.Current, next, state.priorCycleMood(), now)
	if err != nil {
		return "", fmt.Errorf("failed to set mood: %w", err)
	}
	if !ok {
		return TickSkipped, nil
	}

	m.append(ctx, fmt.Sprintf("The cat is now %s", next))
	m.broadcaster.Broadcast(events.StateChanged, events.StateChangedPayload{State: next.String()})
	return TickChanged, nil
}

func (m *StateMachine) wake(ctx context.Context, now time.Time) (TickOutcome, error) {
	ok, err := m.repo.EndRest(ctx, now)
	if err != nil {
		return "", fmt.Errorf("failed to end rest: %w", err)
	}
	if !ok {
		return TickSkipped, nil
	}

	m.append(ctx, "The cat woke up")
	m.broadcaster.Broadcast(events.RestEnded, nil)
	m.broadcaster.Broadcast(events.StateChanged, events.StateChangedPayload{State: Waking.String()})
	return TickWoke, nil
}

func (m *StateMachine) append(ctx context.Context, action string) {
	if m.log == nil {
		return
	}
	if _, err := m.log.Append(ctx, action, "System"); err != nil {
		slog.Warn("Failed to append state log entry", slog.Any("error", err))
	}
}
