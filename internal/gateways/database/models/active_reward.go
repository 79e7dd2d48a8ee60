package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ActiveReward rows are unique per (user_id, reward_type); see the
// idx_active_rewards_user_type index created with the schema.
type ActiveReward struct {
	bun.BaseModel `bun:"table:active_rewards,alias:ar"`

	ID          int64             `bun:"id,pk,autoincrement"`
	UserID      string            `bun:"user_id,notnull"`
	RewardType  string            `bun:"reward_type,notnull"`
	RewardValue map[string]string `bun:"reward_value,type:jsonb,notnull"`
	ExpiresAt   time.Time         `bun:"expires_at,notnull"`
	CreatedAt   time.Time         `bun:"created_at,notnull"`
}
