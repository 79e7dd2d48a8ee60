package models

import (
	"time"

	"github.com/uptrace/bun"
)

// GlobalStateID is the primary key of the only global_state row.
const GlobalStateID = 1

type GlobalState struct {
	bun.BaseModel `bun:"table:global_state,alias:gs"`

	ID           int        `bun:"id,pk"`
	Current      string     `bun:"current,notnull"`
	Previous     string     `bun:"previous,notnull,default:''"`
	IsResting    bool       `bun:"is_resting,notnull,default:false"`
	RestEndTime  *time.Time `bun:"rest_end_time"`
	RestedBy     *string    `bun:"rested_by"`
	RestedByName *string    `bun:"rested_by_name"`
	LastUpdated  time.Time  `bun:"last_updated,notnull"`
}
