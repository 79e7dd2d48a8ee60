// Package events names the messages exchanged with connected observers and
// the broadcaster contract the domain services publish through.
package events

import "time"

// Outbound events sent to every observer.
const (
	StateChanged = "cat-state-changed"
	RestStarted  = "cat-resting"
	RestEnded    = "cat-rest-ended"
	NewLog       = "new-log"
)

// Events sent only to the observer that asked.
const (
	CurrentState = "current-state"
	RestDenied   = "rest-denied"
	InitialLogs  = "initial-logs"
	Error        = "error"
)

// Inbound commands.
const (
	GetCurrentState = "get-current-state"
	ActivateRest    = "activate-rest"
	GetLogs         = "get-logs"
)

// Broadcaster fans an event out to all connected observers. Implementations
// must not block the caller on slow or disconnected observers.
type Broadcaster interface {
	Broadcast(event string, data any)
}

// BroadcasterFunc adapts a function to Broadcaster.
type BroadcasterFunc func(event string, data any)

func (f BroadcasterFunc) Broadcast(event string, data any) { f(event, data) }

// Nop drops every event.
var Nop Broadcaster = BroadcasterFunc(func(string, any) {})

type StateChangedPayload struct {
	State string `json:"state"`
}

type RestStartedPayload struct {
	RestUntil time.Time `json:"restUntil"`
	UserName  string    `json:"userName"`
}
