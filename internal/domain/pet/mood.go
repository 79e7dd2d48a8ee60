package pet

import "fmt"

type Mood string

const (
	Playing  Mood = "playing"
	Zen      Mood = "zen"
	Happy    Mood = "happy"
	Tired    Mood = "tired"
	Angry    Mood = "angry"
	Sleeping Mood = "sleeping"
	Waking   Mood = "waking"
)

// cycleMoods are the moods the autonomous cycle may pick. Sleeping and Waking
// are only reachable through the rest lifecycle.
var cycleMoods = []Mood{Playing, Zen, Happy, Tired, Angry}

func ParseMood(s string) (Mood, error) {
	m := Mood(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown mood %q", s)
	}
	return m, nil
}

func (m Mood) Valid() bool {
	switch m {
	case Playing, Zen, Happy, Tired, Angry, Sleeping, Waking:
		return true
	}
	return false
}

// IsRest reports whether m belongs to the rest lifecycle.
func (m Mood) IsRest() bool {
	return m == Sleeping || m == Waking
}

func (m Mood) String() string { return string(m) }

// CanTransitionTo encodes the lifecycle graph:
//
//	cycle mood -> other cycle mood | sleeping
//	sleeping   -> waking
//	waking     -> cycle mood
func (m Mood) CanTransitionTo(next Mood) bool {
	if !m.Valid() || !next.Valid() || m == next {
		return false
	}
	switch m {
	case Sleeping:
		return next == Waking
	case Waking:
		return !next.IsRest()
	default:
		return next == Sleeping || !next.IsRest()
	}
}

// NextMood picks uniformly among cycle moods other than current and previous.
// If that leaves nothing, only current is excluded. intn must return a value
// in [0, n).
func NextMood(current, previous Mood, intn func(n int) int) Mood {
	candidates := make([]Mood, 0, len(cycleMoods))
	for _, m := range cycleMoods {
		if m != current && m != previous {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		for _, m := range cycleMoods {
			if m != current {
				candidates = append(candidates, m)
			}
		}
	}
	if len(candidates) == 0 {
		return current
	}
	return candidates[intn(len(candidates))]
}
