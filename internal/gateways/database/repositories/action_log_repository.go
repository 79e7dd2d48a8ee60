package repositories

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/nekoden/nekoden/internal/domain/actionlog"
	"github.com/nekoden/nekoden/internal/gateways/database/models"
)

type actionLogRepository struct {
	db *bun.DB
}

func NewActionLogRepository(db *bun.DB) actionlog.Repository {
	return &actionLogRepository{db: db}
}

func (r *actionLogRepository) Insert(ctx context.Context, entry *actionlog.Entry) error {
	row := &models.ActionLog{
		ID:        entry.ID,
		Timestamp: entry.Timestamp,
		Action:    entry.Action,
		ActorName: entry.ActorName,
	}
	_, err := r.db.NewInsert().Model(row).Exec(ctx)
	return err
}

func (r *actionLogRepository) Recent(ctx context.Context, limit int) ([]actionlog.Entry, error) {
	var rows []models.ActionLog
	err := r.db.NewSelect().
		Model(&rows).
		Order("timestamp DESC", "id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]actionlog.Entry, len(rows))
	for i, row := range rows {
		entries[i] = actionlog.Entry{
			ID:        row.ID,
			Timestamp: row.Timestamp,
			Action:    row.Action,
			ActorName: row.ActorName,
		}
	}
	return entries, nil
}

func (r *actionLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*models.ActionLog)(nil)).
		Where("timestamp < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
