package pet_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/nekoden/nekoden/internal/domain/events"
	"github.com/nekoden/nekoden/internal/domain/pet"
	"github.com/nekoden/nekoden/internal/domain/pet/mock"
)

func denyReason(err error) pet.DenyReason {
	var denied *pet.RestDeniedError
	if errors.As(err, &denied) {
		return denied.Reason
	}
	return ""
}

func TestRestLock_Activate(t *testing.T) {
	f := newFixture(t, pet.Happy)
	ctx := context.Background()

	got, err := f.lock.Activate(ctx, pet.Actor{ID: "u1", Name: "Mochi"})
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	wantUntil := f.clock.Now().Add(time.Minute)
	if !got.RestUntil.Equal(wantUntil) {
		t.Errorf("RestUntil = %v, want %v", got.RestUntil, wantUntil)
	}

	st := f.state(t)
	if !st.IsResting || st.Current != pet.Sleeping {
		t.Errorf("state = %+v, want resting and sleeping", st)
	}
	if st.Previous != pet.Happy {
		t.Errorf("Previous = %v, want %v", st.Previous, pet.Happy)
	}
	if st.RestedBy != "u1" || st.RestedByName != "Mochi" {
		t.Errorf("rested by = %q/%q", st.RestedBy, st.RestedByName)
	}

	wantEvents := []string{events.NewLog, events.RestStarted, events.StateChanged}
	if names := f.events.names(); !reflect.DeepEqual(names, wantEvents) {
		t.Errorf("events = %v, want %v", names, wantEvents)
	}

	entries, err := f.logs.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Action != "Mochi put the cat to sleep" || entries[0].ActorName != "Mochi" {
		t.Errorf("log entries = %+v", entries)
	}
}

func TestRestLock_Activate_Denied(t *testing.T) {
	ctx := context.Background()

	t.Run("unauthenticated", func(t *testing.T) {
		f := newFixture(t, pet.Playing)
		_, err := f.lock.Activate(ctx, pet.Actor{Name: "ghost"})
		if got := denyReason(err); got != pet.ReasonUnauthenticated {
			t.Errorf("reason = %q, want %q", got, pet.ReasonUnauthenticated)
		}
		if f.state(t).IsResting {
			t.Error("unauthenticated caller must not change state")
		}
	})

	t.Run("already sleeping", func(t *testing.T) {
		f := newFixture(t, pet.Playing)
		if _, err := f.lock.Activate(ctx, pet.Actor{ID: "u1", Name: "A"}); err != nil {
			t.Fatalf("first Activate() error = %v", err)
		}
		f.events.reset()
		_, err := f.lock.Activate(ctx, pet.Actor{ID: "u2", Name: "B"})
		if got := denyReason(err); got != pet.ReasonAlreadySleeping {
			t.Errorf("reason = %q, want %q", got, pet.ReasonAlreadySleeping)
		}
		if names := f.events.names(); len(names) != 0 {
			t.Errorf("denied activation broadcast %v", names)
		}
		if st := f.state(t); st.RestedBy != "u1" {
			t.Errorf("RestedBy = %q, want u1", st.RestedBy)
		}
	})

	t.Run("still waking", func(t *testing.T) {
		f := newFixture(t, pet.Waking)
		_, err := f.lock.Activate(ctx, pet.Actor{ID: "u1", Name: "A"})
		if got := denyReason(err); got != pet.ReasonStillWakingUp {
			t.Errorf("reason = %q, want %q", got, pet.ReasonStillWakingUp)
		}
	})
}

func TestRestLock_Activate_RaceLost(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	repo.EXPECT().
		GetState(gomock.Any()).
		Return(&pet.State{Current: pet.Zen}, nil)
	repo.EXPECT().
		AcquireRest(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, claim pet.RestClaim) (bool, error) {
			if claim.Previous != pet.Zen {
				t.Errorf("claim.Previous = %v, want %v", claim.Previous, pet.Zen)
			}
			return false, nil
		})

	rec := &recorder{}
	lock := pet.NewRestLock(repo, nil, rec, pet.Settings{})

	_, err := lock.Activate(context.Background(), pet.Actor{ID: "u1", Name: "A"})
	if got := denyReason(err); got != pet.ReasonRaceLost {
		t.Errorf("reason = %q, want %q", got, pet.ReasonRaceLost)
	}
	if names := rec.names(); len(names) != 0 {
		t.Errorf("losing caller broadcast %v", names)
	}
}

func TestRestLock_Activate_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	repo.EXPECT().
		GetState(gomock.Any()).
		Return(nil, errors.New("connection reset"))

	lock := pet.NewRestLock(repo, nil, nil, pet.Settings{})
	_, err := lock.Activate(context.Background(), pet.Actor{ID: "u1"})
	if err == nil {
		t.Fatal("Activate() expected error")
	}
	if denyReason(err) != "" {
		t.Errorf("store failure reported as denial: %v", err)
	}
}

func TestRestLock_Activate_SingleWinner(t *testing.T) {
	f := newFixture(t, pet.Playing)
	ctx := context.Background()

	const callers = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []string
		reasons = map[pet.DenyReason]int{}
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			actor := pet.Actor{ID: fmt.Sprintf("u%d", i), Name: fmt.Sprintf("user %d", i)}
			_, err := f.lock.Activate(ctx, actor)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners = append(winners, actor.ID)
				return
			}
			reasons[denyReason(err)]++
		}(i)
	}
	close(start)
	wg.Wait()

	if len(winners) != 1 {
		t.Fatalf("winners = %v, want exactly one", winners)
	}
	for reason, n := range reasons {
		if reason != pet.ReasonRaceLost && reason != pet.ReasonAlreadySleeping {
			t.Errorf("unexpected denial %q x%d", reason, n)
		}
	}
	if st := f.state(t); st.RestedBy != winners[0] {
		t.Errorf("RestedBy = %q, want winner %q", st.RestedBy, winners[0])
	}

	started := 0
	for _, name := range f.events.names() {
		if name == events.RestStarted {
			started++
		}
	}
	if started != 1 {
		t.Errorf("%s broadcast %d times, want 1", events.RestStarted, started)
	}
}
