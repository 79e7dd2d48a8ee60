package handlers

import (
	"context"

	"github.com/nekoden/nekoden/internal/domain/actionlog"
	"github.com/nekoden/nekoden/internal/domain/pet"
	"github.com/nekoden/nekoden/internal/domain/rewards"
	"github.com/nekoden/nekoden/internal/identity"
)

type TokenVerifier interface {
	Verify(token string) (identity.Identity, error)
}

type RewardService interface {
	Spin(ctx context.Context, userID, reward string) (*rewards.SpinResult, error)
	History(ctx context.Context, userID string) ([]rewards.Spin, error)
	Cooldown(ctx context.Context, userID string) (rewards.CooldownStatus, error)
}

type RewardLedger interface {
	ListActive(ctx context.Context, userID string) ([]rewards.ActiveReward, error)
	ActiveAvatar(ctx context.Context, userID string) rewards.AvatarView
	CleanupExpired(ctx context.Context, userID string) (int64, error)
}

type StateReader interface {
	Current(ctx context.Context) (*pet.State, error)
}

type LogReader interface {
	Recent(ctx context.Context, limit int) ([]actionlog.Entry, error)
}

// Pinger is satisfied by the postgres connection. A nil Store reports the
// in-process store as healthy.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WebApp represents the web application with all dependencies
type WebApp struct {
	Verifier TokenVerifier
	Rewards  RewardService
	Ledger   RewardLedger
	State    StateReader
	Logs     LogReader
	Store    Pinger
	Version  string
}
