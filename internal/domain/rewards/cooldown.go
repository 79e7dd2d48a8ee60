package rewards

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// CooldownGuard limits how often a user may spin. The spin history itself is
// the rate-limit state; there is no separate lock.
type CooldownGuard struct {
	repo   Repository
	window time.Duration
	bypass map[string]bool
	now    func() time.Time
}

// NewCooldownGuard builds a guard. Spins whose latest reward is listed in
// bypass may be followed immediately.
func NewCooldownGuard(repo Repository, window time.Duration, bypass []string, now func() time.Time) *CooldownGuard {
	if now == nil {
		now = time.Now
	}
	set := make(map[string]bool, len(bypass))
	for _, name := range bypass {
		set[name] = true
	}
	return &CooldownGuard{repo: repo, window: window, bypass: set, now: now}
}

func (g *CooldownGuard) Window() time.Duration { return g.window }

// Bypasses reports whether reward lets the next spin skip the cooldown.
func (g *CooldownGuard) Bypasses(reward string) bool {
	return g.bypass[reward]
}

func (g *CooldownGuard) Check(ctx context.Context, userID string) (CooldownStatus, error) {
	last, err := g.repo.LatestSpin(ctx, userID)
	if err != nil {
		return CooldownStatus{}, fmt.Errorf("failed to load latest spin: %w", err)
	}
	if last == nil || g.Bypasses(last.Reward) {
		return CooldownStatus{Allowed: true}, nil
	}

	elapsed := g.now().Sub(last.CreatedAt)
	if elapsed >= g.window {
		return CooldownStatus{Allowed: true}, nil
	}
	return CooldownStatus{RemainingSeconds: remainingSeconds(g.window - elapsed)}, nil
}

func (g *CooldownGuard) Record(ctx context.Context, userID, reward string) (*Spin, error) {
	spin := &Spin{
		ID:        uuid.NewString(),
		UserID:    userID,
		Reward:    reward,
		CreatedAt: g.now().UTC(),
	}
	if err := g.repo.InsertSpin(ctx, spin); err != nil {
		return nil, fmt.Errorf("failed to record spin: %w", err)
	}
	return spin, nil
}

func remainingSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
