// Package memory keeps all state in process. It backs the "memory" storage
// driver and the domain tests, and enforces the same conditional-write rules
// as the postgres repositories.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/nekoden/nekoden/internal/domain/actionlog"
	"github.com/nekoden/nekoden/internal/domain/pet"
	"github.com/nekoden/nekoden/internal/domain/rewards"
)

type rewardKey struct {
	userID     string
	rewardType string
}

// Store implements pet.Repository, actionlog.Repository and rewards.Repository.
type Store struct {
	mu      sync.Mutex
	state   *pet.State
	logs    []actionlog.Entry
	spins   []rewards.Spin
	rewards map[rewardKey]rewards.ActiveReward
}

var (
	_ pet.Repository       = (*Store)(nil)
	_ actionlog.Repository = (*Store)(nil)
	_ rewards.Repository   = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{rewards: make(map[rewardKey]rewards.ActiveReward)}
}

func (s *Store) EnsureState(ctx context.Context, initial pet.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		st := copyState(initial)
		s.state = &st
	}
	return nil
}

func (s *Store) GetState(ctx context.Context) (*pet.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil, pet.ErrStateNotFound
	}
	st := copyState(*s.state)
	return &st, nil
}

func (s *Store) AcquireRest(ctx context.Context, claim pet.RestClaim) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return false, pet.ErrStateNotFound
	}
	if s.state.IsResting {
		return false, nil
	}
	until := claim.Until
	s.state.Current = pet.Sleeping
	s.state.Previous = claim.Previous
	s.state.IsResting = true
	s.state.RestEndTime = &until
	s.state.RestedBy = claim.Actor.ID
	s.state.RestedByName = claim.Actor.Name
	s.state.LastUpdated = claim.At
	return true, nil
}

func (s *Store) EndRest(ctx context.Context, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return false, pet.ErrStateNotFound
	}
	st := s.state
	if !st.IsResting || st.RestEndTime == nil || st.RestEndTime.After(at) {
		return false, nil
	}
	st.Current = pet.Waking
	st.IsResting = false
	st.RestEndTime = nil
	st.RestedBy = ""
	st.RestedByName = ""
	st.LastUpdated = at
	return true, nil
}

func (s *Store) SetMood(ctx context.Context, from, next, previous pet.Mood, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return false, pet.ErrStateNotFound
	}
	if s.state.IsResting || s.state.Current != from {
		return false, nil
	}
	s.state.Current = next
	s.state.Previous = previous
	s.state.LastUpdated = at
	return true, nil
}

func (s *Store) Insert(ctx context.Context, entry *actionlog.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, *entry)
	return nil
}

func (s *Store) Recent(ctx context.Context, limit int) ([]actionlog.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	out := make([]actionlog.Entry, len(s.logs))
	copy(out, s.logs)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.logs[:0]
	var deleted int64
	for _, e := range s.logs {
		if e.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.logs = kept
	return deleted, nil
}

func (s *Store) InsertSpin(ctx context.Context, spin *rewards.Spin) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spins = append(s.spins, *spin)
	return nil
}

func (s *Store) LatestSpin(ctx context.Context, userID string) (*rewards.Spin, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *rewards.Spin
	for i := range s.spins {
		sp := s.spins[i]
		if sp.UserID != userID {
			continue
		}
		if latest == nil || !sp.CreatedAt.Before(latest.CreatedAt) {
			latest = &sp
		}
	}
	return latest, nil
}

func (s *Store) SpinHistory(ctx context.Context, userID string, limit int) ([]rewards.Spin, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	out := make([]rewards.Spin, 0)
	for _, sp := range s.spins {
		if sp.UserID == userID {
			out = append(out, sp)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) UpsertReward(ctx context.Context, reward *rewards.ActiveReward) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r := *reward
	r.Value = maps.Clone(reward.Value)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rewards[rewardKey{userID: r.UserID, rewardType: r.RewardType}] = r
	return nil
}

func (s *Store) ActiveRewards(ctx context.Context, userID string, now time.Time) ([]rewards.ActiveReward, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	out := make([]rewards.ActiveReward, 0)
	for k, r := range s.rewards {
		if k.userID == userID && r.ActiveAt(now) {
			r.Value = maps.Clone(r.Value)
			out = append(out, r)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].ExpiresAt.Before(out[j].ExpiresAt)
	})
	return out, nil
}

func (s *Store) DeleteExpiredRewards(ctx context.Context, userID string, now time.Time) (int64, error) {
	return s.deleteRewards(ctx, func(k rewardKey, r rewards.ActiveReward) bool {
		return k.userID == userID && !r.ActiveAt(now)
	})
}

func (s *Store) DeleteAllExpiredRewards(ctx context.Context, now time.Time) (int64, error) {
	return s.deleteRewards(ctx, func(_ rewardKey, r rewards.ActiveReward) bool {
		return !r.ActiveAt(now)
	})
}

func (s *Store) deleteRewards(ctx context.Context, match func(rewardKey, rewards.ActiveReward) bool) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, r := range s.rewards {
		if match(k, r) {
			delete(s.rewards, k)
			n++
		}
	}
	return n, nil
}

func copyState(s pet.State) pet.State {
	if s.RestEndTime != nil {
		t := *s.RestEndTime
		s.RestEndTime = &t
	}
	return s
}
