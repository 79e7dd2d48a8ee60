package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/nekoden/nekoden/internal/domain/rewards"
	"github.com/nekoden/nekoden/internal/gateways/database/models"
)

type rewardRepository struct {
	db *bun.DB
}

func NewRewardRepository(db *bun.DB) rewards.Repository {
	return &rewardRepository{db: db}
}

func (r *rewardRepository) InsertSpin(ctx context.Context, spin *rewards.Spin) error {
	row := &models.Spin{
		ID:        spin.ID,
		UserID:    spin.UserID,
		Reward:    spin.Reward,
		CreatedAt: spin.CreatedAt,
	}
	_, err := r.db.NewInsert().Model(row).Exec(ctx)
	return err
}

func (r *rewardRepository) LatestSpin(ctx context.Context, userID string) (*rewards.Spin, error) {
	row := new(models.Spin)
	err := r.db.NewSelect().
		Model(row).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	spin := toSpin(*row)
	return &spin, nil
}

func (r *rewardRepository) SpinHistory(ctx context.Context, userID string, limit int) ([]rewards.Spin, error) {
	var rows []models.Spin
	err := r.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	spins := make([]rewards.Spin, len(rows))
	for i, row := range rows {
		spins[i] = toSpin(row)
	}
	return spins, nil
}

// UpsertReward relies on the unique (user_id, reward_type) index.
func (r *rewardRepository) UpsertReward(ctx context.Context, reward *rewards.ActiveReward) error {
	row := &models.ActiveReward{
		UserID:      reward.UserID,
		RewardType:  reward.RewardType,
		RewardValue: reward.Value,
		ExpiresAt:   reward.ExpiresAt,
		CreatedAt:   reward.CreatedAt,
	}
	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (user_id, reward_type) DO UPDATE").
		Set("reward_value = EXCLUDED.reward_value").
		Set("expires_at = EXCLUDED.expires_at").
		Set("created_at = EXCLUDED.created_at").
		Exec(ctx)
	return err
}

func (r *rewardRepository) ActiveRewards(ctx context.Context, userID string, now time.Time) ([]rewards.ActiveReward, error) {
	var rows []models.ActiveReward
	err := r.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Where("expires_at > ?", now).
		Order("expires_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]rewards.ActiveReward, len(rows))
	for i, row := range rows {
		out[i] = rewards.ActiveReward{
			UserID:     row.UserID,
			RewardType: row.RewardType,
			Value:      row.RewardValue,
			ExpiresAt:  row.ExpiresAt,
			CreatedAt:  row.CreatedAt,
		}
	}
	return out, nil
}

func (r *rewardRepository) DeleteExpiredRewards(ctx context.Context, userID string, now time.Time) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*models.ActiveReward)(nil)).
		Where("user_id = ?", userID).
		Where("expires_at <= ?", now).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *rewardRepository) DeleteAllExpiredRewards(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*models.ActiveReward)(nil)).
		Where("expires_at <= ?", now).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func toSpin(row models.Spin) rewards.Spin {
	return rewards.Spin{
		ID:        row.ID,
		UserID:    row.UserID,
		Reward:    row.Reward,
		CreatedAt: row.CreatedAt,
	}
}
