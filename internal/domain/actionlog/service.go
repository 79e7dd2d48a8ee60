package actionlog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/nekoden/nekoden/internal/domain/events"
	"github.com/nekoden/nekoden/nekoden/config"
)

const mirrorTimeout = 10 * time.Second

// Appender is the narrow view other domains use to write to the trail.
type Appender interface {
	Append(ctx context.Context, action, actorName string) (*Entry, error)
}

type Service struct {
	repo        Repository
	broadcaster events.Broadcaster
	mirror      Mirror
	retention   time.Duration
	now         func() time.Time
	seq         atomic.Uint32
}

type Option func(*Service)

func WithMirror(m Mirror) Option {
	return func(s *Service) { s.mirror = m }
}

func WithRetention(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.retention = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, broadcaster events.Broadcaster, opts ...Option) *Service {
	if broadcaster == nil {
		broadcaster = events.Nop
	}
	s := &Service{
		repo:        repo,
		broadcaster: broadcaster,
		retention:   config.DefaultLogRetention,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append stores a new entry and publishes it. Publishing and mirroring are
// best-effort and never fail the append.
func (s *Service) Append(ctx context.Context, action, actorName string) (*Entry, error) {
	action = strings.TrimSpace(action)
	if action == "" {
		return nil, fmt.Errorf("action log entry requires an action")
	}
	if actorName = strings.TrimSpace(actorName); actorName == "" {
		actorName = "System"
	}

	now := s.now().UTC()
	entry := &Entry{
		ID:        s.nextID(now),
		Timestamp: now,
		Action:    action,
		ActorName: actorName,
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append action log: %w", err)
	}

	s.broadcaster.Broadcast(events.NewLog, *entry)

	if s.mirror != nil {
		go func(e Entry) {
			mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mirrorTimeout)
			defer cancel()
			if err := s.mirror.Mirror(mctx, e); err != nil {
				slog.Warn("Failed to mirror action log entry",
					slog.String("entry_id", e.ID),
					slog.Any("error", err))
			}
		}(*entry)
	}

	return entry, nil
}

// Recent returns a newest-first page, clamping limit to a sane range.
func (s *Service) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = config.DefaultLogPageSize
	}
	if limit > config.MaxLogPageSize {
		limit = config.MaxLogPageSize
	}
	entries, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent action logs: %w", err)
	}
	return entries, nil
}

// Sweep deletes entries older than the retention window.
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep action logs: %w", err)
	}
	return deleted, nil
}

// Run sweeps on every interval until ctx is cancelled. A failed sweep is
// logged and retried on the next run.
func (s *Service) Run(ctx context.Context, interval time.Duration, timeout time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, timeout)
			deleted, err := s.Sweep(sweepCtx)
			cancel()
			if err != nil {
				slog.Error("Action log sweep failed",
					slog.String("type", "error"),
					slog.Any("error", err))
				continue
			}
			slog.Info("Action log sweep finished",
				slog.Int64("deleted", deleted),
				slog.Duration("retention", s.retention))
		}
	}
}

// nextID builds a time-ordered snowflake, using the increment bits to keep
// entries created within the same millisecond distinct.
func (s *Service) nextID(t time.Time) string {
	base := snowflake.New(t)
	inc := uint64(s.seq.Add(1) & 0xFFF)
	return snowflake.ID(uint64(base) | inc).String()
}
