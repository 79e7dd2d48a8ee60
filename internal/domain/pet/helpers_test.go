package pet_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nekoden/nekoden/internal/domain/actionlog"
	"github.com/nekoden/nekoden/internal/domain/pet"
	"github.com/nekoden/nekoden/internal/gateways/memory"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type sent struct {
	event string
	data  any
}

type recorder struct {
	mu     sync.Mutex
	events []sent
}

func (r *recorder) Broadcast(event string, data any) {
	r.mu.Lock()
	r.events = append(r.events, sent{event: event, data: data})
	r.mu.Unlock()
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.event)
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

type fixture struct {
	store   *memory.Store
	clock   *fakeClock
	events  *recorder
	logs    *actionlog.Service
	lock    *pet.RestLock
	machine *pet.StateMachine
}

func newFixture(t *testing.T, initial pet.Mood) *fixture {
	t.Helper()
	f := &fixture{
		store:  memory.NewStore(),
		clock:  newFakeClock(),
		events: &recorder{},
	}
	f.logs = actionlog.NewService(f.store, f.events, actionlog.WithClock(f.clock.Now))
	settings := pet.Settings{
		RestDuration: time.Minute,
		WakeDwell:    10 * time.Second,
		Now:          f.clock.Now,
		Intn:         func(int) int { return 0 },
	}
	f.lock = pet.NewRestLock(f.store, f.logs, f.events, settings)
	f.machine = pet.NewStateMachine(f.store, f.logs, f.events, settings)

	if err := f.store.EnsureState(context.Background(), pet.State{Current: initial, LastUpdated: f.clock.Now()}); err != nil {
		t.Fatalf("EnsureState() error = %v", err)
	}
	return f
}

func (f *fixture) state(t *testing.T) *pet.State {
	t.Helper()
	st, err := f.store.GetState(context.Background())
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	return st
}
