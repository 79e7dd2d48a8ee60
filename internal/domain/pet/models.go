package pet

import "time"

// State is the single shared world state.
type State struct {
	Current      Mood
	Previous     Mood
	IsResting    bool
	RestEndTime  *time.Time
	RestedBy     string
	RestedByName string
	LastUpdated  time.Time
}

// Actor identifies whoever triggered a mutation.
type Actor struct {
	ID   string
	Name string
}

// Snapshot is the client-facing view of State.
type Snapshot struct {
	State        string     `json:"state"`
	IsResting    bool       `json:"isResting"`
	RestUntil    *time.Time `json:"restUntil,omitempty"`
	RestedByName string     `json:"restedByName,omitempty"`
	LastUpdated  time.Time  `json:"lastUpdated"`
}

func (s State) Snapshot() Snapshot {
	return Snapshot{
		State:        s.Current.String(),
		IsResting:    s.IsResting,
		RestUntil:    s.RestEndTime,
		RestedByName: s.RestedByName,
		LastUpdated:  s.LastUpdated,
	}
}

// RestExpired reports whether an active rest has run out at now.
func (s State) RestExpired(now time.Time) bool {
	return s.IsResting && s.RestEndTime != nil && !now.Before(*s.RestEndTime)
}

// priorCycleMood is the mood to remember as "previous" when leaving s.
func (s State) priorCycleMood() Mood {
	if s.Current.IsRest() {
		return s.Previous
	}
	return s.Current
}
