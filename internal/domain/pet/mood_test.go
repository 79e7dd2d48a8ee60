package pet

import "testing"

func TestNextMood(t *testing.T) {
	tests := []struct {
		name     string
		current  Mood
		previous Mood
		excluded []Mood
	}{
		{name: "excludes current and previous", current: Playing, previous: Zen, excluded: []Mood{Playing, Zen}},
		{name: "same current and previous", current: Happy, previous: Happy, excluded: []Mood{Happy}},
		{name: "after waking", current: Waking, previous: Angry, excluded: []Mood{Waking, Angry, Sleeping}},
		{name: "empty previous", current: Tired, previous: "", excluded: []Mood{Tired}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := map[Mood]bool{}
			for i := 0; i < len(cycleMoods); i++ {
				pick := i
				got := NextMood(tt.current, tt.previous, func(n int) int { return pick % n })
				seen[got] = true
				for _, ex := range tt.excluded {
					if got == ex {
						t.Errorf("NextMood(%s, %s) = %s, must not repeat", tt.current, tt.previous, got)
					}
				}
				if got.IsRest() {
					t.Errorf("NextMood(%s, %s) = %s, want a cycle mood", tt.current, tt.previous, got)
				}
			}
			if len(seen) < 2 {
				t.Errorf("NextMood(%s, %s) only produced %v", tt.current, tt.previous, seen)
			}
		})
	}
}

func TestNextMood_PassesCandidateCount(t *testing.T) {
	var got int
	NextMood(Playing, Zen, func(n int) int {
		got = n
		return 0
	})
	if want := len(cycleMoods) - 2; got != want {
		t.Errorf("intn called with %d, want %d", got, want)
	}
}

func TestMood_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Mood
		want     bool
	}{
		{Playing, Zen, true},
		{Playing, Sleeping, true},
		{Playing, Waking, false},
		{Playing, Playing, false},
		{Sleeping, Waking, true},
		{Sleeping, Playing, false},
		{Waking, Happy, true},
		{Waking, Sleeping, false},
		{Waking, Waking, false},
		{Mood("bored"), Playing, false},
		{Angry, Mood("bored"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("%s.CanTransitionTo(%s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestParseMood(t *testing.T) {
	if _, err := ParseMood("zen"); err != nil {
		t.Errorf("ParseMood(zen) error = %v", err)
	}
	if _, err := ParseMood("grumpy"); err == nil {
		t.Error("ParseMood(grumpy) expected error")
	}
}

func TestState_priorCycleMood(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  Mood
	}{
		{name: "cycle mood", state: State{Current: Zen, Previous: Happy}, want: Zen},
		{name: "sleeping", state: State{Current: Sleeping, Previous: Happy}, want: Happy},
		{name: "waking", state: State{Current: Waking, Previous: Angry}, want: Angry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.priorCycleMood(); got != tt.want {
				t.Errorf("priorCycleMood() = %v, want %v", got, tt.want)
			}
		})
	}
}
