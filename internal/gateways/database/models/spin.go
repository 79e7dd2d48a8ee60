package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Spin struct {
	bun.BaseModel `bun:"table:spins,alias:sp"`

	ID        string    `bun:"id,pk"`
	UserID    string    `bun:"user_id,notnull"`
	Reward    string    `bun:"reward,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}
