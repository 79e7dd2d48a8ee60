package actionlog

import (
	"context"
	"time"
)

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock

type Repository interface {
	Insert(ctx context.Context, entry *Entry) error
	// Recent returns at most limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Mirror receives a copy of every appended entry, e.g. a chat webhook.
type Mirror interface {
	Mirror(ctx context.Context, entry Entry) error
}
