package rewards

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"
)

// Ledger stores and exposes time-boxed cosmetic effects. Readers filter by
// expiry themselves; expired rows may linger until a cleanup runs.
type Ledger struct {
	repo    Repository
	avatars AvatarCatalogue
	now     func() time.Time
}

func NewLedger(repo Repository, avatars AvatarCatalogue, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{repo: repo, avatars: avatars, now: now}
}

// Grant replaces the user's effect of rewardType with a fresh one lasting d.
func (l *Ledger) Grant(ctx context.Context, userID, rewardType string, value map[string]string, d time.Duration) (*ActiveReward, error) {
	if userID == "" || rewardType == "" {
		return nil, fmt.Errorf("grant requires a user and a reward type")
	}
	if d <= 0 {
		return nil, fmt.Errorf("grant of %q requires a positive duration", rewardType)
	}

	now := l.now().UTC()
	v := make(map[string]string, len(value)+1)
	maps.Copy(v, value)
	if rewardType == EffectAvatar {
		v[ValueDefaultAvatar] = l.defaultAvatar(userID)
	}

	reward := &ActiveReward{
		UserID:     userID,
		RewardType: rewardType,
		Value:      v,
		ExpiresAt:  now.Add(d),
		CreatedAt:  now,
	}
	if err := l.repo.UpsertReward(ctx, reward); err != nil {
		return nil, fmt.Errorf("failed to grant %s reward: %w", rewardType, err)
	}
	return reward, nil
}

// ListActive returns the user's unexpired effects.
func (l *Ledger) ListActive(ctx context.Context, userID string) ([]ActiveReward, error) {
	now := l.now().UTC()
	rows, err := l.repo.ActiveRewards(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list active rewards: %w", err)
	}
	active := make([]ActiveReward, 0, len(rows))
	for _, r := range rows {
		if r.ActiveAt(now) {
			active = append(active, r)
		}
	}
	return active, nil
}

// ActiveAvatar resolves the avatar to show: a granted one while it lasts,
// otherwise the user's default. Storage errors fall back to the default.
func (l *Ledger) ActiveAvatar(ctx context.Context, userID string) AvatarView {
	fallback := AvatarView{Avatar: l.defaultAvatar(userID)}

	active, err := l.ListActive(ctx, userID)
	if err != nil {
		slog.Warn("Falling back to default avatar",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return fallback
	}
	for _, r := range active {
		if r.RewardType != EffectAvatar {
			continue
		}
		if path := r.Value[ValueAvatar]; path != "" {
			expires := r.ExpiresAt
			return AvatarView{Avatar: path, Temporary: true, ExpiresAt: &expires}
		}
	}
	return fallback
}

// CleanupExpired deletes the user's expired rows. Best-effort.
func (l *Ledger) CleanupExpired(ctx context.Context, userID string) (int64, error) {
	n, err := l.repo.DeleteExpiredRewards(ctx, userID, l.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to clean up expired rewards: %w", err)
	}
	return n, nil
}

// SweepExpired deletes expired rows for every user.
func (l *Ledger) SweepExpired(ctx context.Context) (int64, error) {
	n, err := l.repo.DeleteAllExpiredRewards(ctx, l.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired rewards: %w", err)
	}
	return n, nil
}

// RunSweeper calls SweepExpired every interval until ctx is cancelled.
func (l *Ledger) RunSweeper(ctx context.Context, interval, timeout time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, timeout)
			n, err := l.SweepExpired(sweepCtx)
			cancel()
			if err != nil {
				slog.Error("Reward sweep failed",
					slog.String("type", "error"),
					slog.Any("error", err))
				continue
			}
			if n > 0 {
				slog.Info("Swept expired rewards", slog.Int64("deleted", n))
			}
		}
	}
}

func (l *Ledger) defaultAvatar(userID string) string {
	if l.avatars == nil {
		return ""
	}
	return l.avatars.DefaultFor(userID)
}
