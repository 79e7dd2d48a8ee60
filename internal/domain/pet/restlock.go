package pet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nekoden/nekoden/internal/domain/actionlog"
	"github.com/nekoden/nekoden/internal/domain/events"
)

type DenyReason string

const (
	ReasonAlreadySleeping DenyReason = "already_sleeping"
	ReasonStillWakingUp   DenyReason = "still_waking_up"
	ReasonRaceLost        DenyReason = "race_lost"
	ReasonUnauthenticated DenyReason = "unauthenticated"
)

func (r DenyReason) Message() string {
	switch r {
	case ReasonAlreadySleeping:
		return "The cat is already sleeping"
	case ReasonStillWakingUp:
		return "The cat is still waking up"
	case ReasonRaceLost:
		return "Someone else already put the cat to sleep"
	case ReasonUnauthenticated:
		return "You need to be logged in to do that"
	}
	return string(r)
}

// RestDeniedError is a policy rejection, never a server fault.
type RestDeniedError struct {
	Reason DenyReason
}

func (e *RestDeniedError) Error() string {
	return fmt.Sprintf("rest denied: %s", e.Reason)
}

type RestResult struct {
	RestUntil time.Time
	Actor     Actor
}

// RestLock grants a single exclusive rest period. The conditional write on
// is_resting is the only thing deciding between concurrent callers.
type RestLock struct {
	repo        Repository
	log         actionlog.Appender
	broadcaster events.Broadcaster
	settings    Settings
}

func NewRestLock(repo Repository, log actionlog.Appender, broadcaster events.Broadcaster, settings Settings) *RestLock {
	if broadcaster == nil {
		broadcaster = events.Nop
	}
	return &RestLock{
		repo:        repo,
		log:         log,
		broadcaster: broadcaster,
		settings:    settings.withDefaults(),
	}
}

func (l *RestLock) Activate(ctx context.Context, actor Actor) (*RestResult, error) {
	if actor.ID == "" {
		return nil, &RestDeniedError{Reason: ReasonUnauthenticated}
	}
	if actor.Name == "" {
		actor.Name = actor.ID
	}

	state, err := l.repo.GetState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}
	if state.IsResting {
		return nil, &RestDeniedError{Reason: ReasonAlreadySleeping}
	}
	if state.Current == Waking {
		return nil, &RestDeniedError{Reason: ReasonStillWakingUp}
	}

	now := l.settings.Now().UTC()
	claim := RestClaim{
		Actor:    actor,
		Previous: state.priorCycleMood(),
		Until:    now.Add(l.settings.RestDuration),
		At:       now,
	}
	won, err := l.repo.AcquireRest(ctx, claim)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire rest: %w", err)
	}
	if !won {
		l.append(ctx, fmt.Sprintf("%s tried to put the cat to sleep, but someone else got there first", actor.Name), actor.Name)
		return nil, &RestDeniedError{Reason: ReasonRaceLost}
	}

	slog.Info("Rest period started",
		slog.String("user_id", actor.ID),
		slog.String("user_name", actor.Name),
		slog.Time("rest_until", claim.Until))

	l.append(ctx, fmt.Sprintf("%s put the cat to sleep", actor.Name), actor.Name)
	l.broadcaster.Broadcast(events.RestStarted, events.RestStartedPayload{
		RestUntil: claim.Until,
		UserName:  actor.Name,
	})
	l.broadcaster.Broadcast(events.StateChanged, events.StateChangedPayload{State: Sleeping.String()})

	return &RestResult{RestUntil: claim.Until, Actor: actor}, nil
}

func (l *RestLock) append(ctx context.Context, action, actor string) {
	if l.log == nil {
		return
	}
	if _, err := l.log.Append(ctx, action, actor); err != nil {
		slog.Warn("Failed to append rest log entry", slog.Any("error", err))
	}
}
