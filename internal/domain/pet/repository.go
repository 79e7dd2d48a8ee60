package pet

import (
	"context"
	"errors"
	"time"
)

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock

var ErrStateNotFound = errors.New("global state not found")

// RestClaim is the write RestLock attempts.
type RestClaim struct {
	Actor    Actor
	Previous Mood
	Until    time.Time
	At       time.Time
}

// Repository stores the single State row. Every mutating method is a
// conditional write and reports whether its condition held.
type Repository interface {
	// EnsureState creates the row from initial if it does not exist yet.
	EnsureState(ctx context.Context, initial State) error
	GetState(ctx context.Context) (*State, error)
	// AcquireRest puts the state to sleep only while is_resting is false.
	AcquireRest(ctx context.Context, claim RestClaim) (bool, error)
	// EndRest moves to Waking only while resting with rest_end_time <= at.
	EndRest(ctx context.Context, at time.Time) (bool, error)
	// SetMood writes next only while not resting and current is still from.
	SetMood(ctx context.Context, from, next, previous Mood, at time.Time) (bool, error)
}
