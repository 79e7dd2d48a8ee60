package rewards

import (
	"context"
	"time"
)

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock

type Repository interface {
	InsertSpin(ctx context.Context, spin *Spin) error
	// LatestSpin returns nil, nil when the user never spun.
	LatestSpin(ctx context.Context, userID string) (*Spin, error)
	SpinHistory(ctx context.Context, userID string, limit int) ([]Spin, error)

	// UpsertReward replaces any existing row for (UserID, RewardType).
	UpsertReward(ctx context.Context, reward *ActiveReward) error
	ActiveRewards(ctx context.Context, userID string, now time.Time) ([]ActiveReward, error)
	DeleteExpiredRewards(ctx context.Context, userID string, now time.Time) (int64, error)
	DeleteAllExpiredRewards(ctx context.Context, now time.Time) (int64, error)
}
