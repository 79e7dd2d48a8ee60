package actionlog

import "time"

// Entry is one immutable line of the audit trail.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	ActorName string    `json:"actorName"`
}
