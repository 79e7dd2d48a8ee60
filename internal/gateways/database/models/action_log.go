package models

import (
	"time"

	"github.com/uptrace/bun"
)

type ActionLog struct {
	bun.BaseModel `bun:"table:action_logs,alias:al"`

	ID        string    `bun:"id,pk"`
	Timestamp time.Time `bun:"timestamp,notnull"`
	Action    string    `bun:"action,notnull"`
	ActorName string    `bun:"actor_name,notnull"`
}
