package actionlog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/nekoden/nekoden/internal/domain/actionlog"
	"github.com/nekoden/nekoden/internal/domain/actionlog/mock"
	"github.com/nekoden/nekoden/internal/domain/events"
	"github.com/nekoden/nekoden/internal/gateways/memory"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestService_Append(t *testing.T) {
	var got []string
	b := events.BroadcasterFunc(func(event string, data any) {
		got = append(got, event)
		if _, ok := data.(actionlog.Entry); !ok {
			t.Errorf("broadcast payload = %T, want actionlog.Entry", data)
		}
	})
	store := memory.NewStore()
	s := actionlog.NewService(store, b, actionlog.WithClock(func() time.Time { return epoch }))

	tests := []struct {
		name      string
		action    string
		actor     string
		wantActor string
		wantErr   bool
	}{
		{name: "named actor", action: "Mochi put the cat to sleep", actor: "Mochi", wantActor: "Mochi"},
		{name: "system default", action: "The cat woke up", actor: "  ", wantActor: "System"},
		{name: "empty action", action: " ", actor: "Mochi", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := s.Append(context.Background(), tt.action, tt.actor)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Append() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if entry.ActorName != tt.wantActor {
				t.Errorf("ActorName = %q, want %q", entry.ActorName, tt.wantActor)
			}
			if entry.ID == "" || !entry.Timestamp.Equal(epoch) {
				t.Errorf("entry = %+v", entry)
			}
		})
	}

	if len(got) != 2 {
		t.Errorf("broadcast %d events, want 2", len(got))
	}
}

func TestService_Append_UniqueIDsWithinMillisecond(t *testing.T) {
	s := actionlog.NewService(memory.NewStore(), nil, actionlog.WithClock(func() time.Time { return epoch }))
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		entry, err := s.Append(context.Background(), "tick", "")
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if seen[entry.ID] {
			t.Fatalf("duplicate id %s", entry.ID)
		}
		seen[entry.ID] = true
	}
}

func TestService_Append_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	repo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		Return(errors.New("disk full"))

	broadcast := false
	s := actionlog.NewService(repo, events.BroadcasterFunc(func(string, any) { broadcast = true }))
	if _, err := s.Append(context.Background(), "x", "y"); err == nil {
		t.Fatal("Append() expected error")
	}
	if broadcast {
		t.Error("failed append must not broadcast")
	}
}

func TestService_Append_Mirror(t *testing.T) {
	ctrl := gomock.NewController(t)
	mirror := mock.NewMockMirror(ctrl)
	done := make(chan actionlog.Entry, 1)
	mirror.EXPECT().
		Mirror(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e actionlog.Entry) error {
			done <- e
			return errors.New("webhook down")
		})

	s := actionlog.NewService(memory.NewStore(), nil, actionlog.WithMirror(mirror))

	ctx, cancel := context.WithCancel(context.Background())
	entry, err := s.Append(ctx, "The cat is now zen", "")
	cancel()
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	select {
	case got := <-done:
		if got.ID != entry.ID {
			t.Errorf("mirrored %s, want %s", got.ID, entry.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("mirror was not called")
	}
}

func TestService_Recent(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	gomock.InOrder(
		repo.EXPECT().Recent(gomock.Any(), 50).Return(nil, nil),
		repo.EXPECT().Recent(gomock.Any(), 100).Return(nil, nil),
		repo.EXPECT().Recent(gomock.Any(), 7).Return(nil, nil),
	)

	s := actionlog.NewService(repo, nil)
	for _, limit := range []int{0, 500, 7} {
		if _, err := s.Recent(context.Background(), limit); err != nil {
			t.Errorf("Recent(%d) error = %v", limit, err)
		}
	}
}

func TestService_Recent_NewestFirst(t *testing.T) {
	now := epoch
	s := actionlog.NewService(memory.NewStore(), nil, actionlog.WithClock(func() time.Time { return now }))
	for _, action := range []string{"first", "second", "third"} {
		if _, err := s.Append(context.Background(), action, ""); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		now = now.Add(time.Second)
	}

	got, err := s.Recent(context.Background(), 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 || got[0].Action != "third" || got[1].Action != "second" {
		t.Errorf("Recent() = %+v", got)
	}
}

func TestService_Sweep(t *testing.T) {
	now := epoch
	store := memory.NewStore()
	s := actionlog.NewService(store, nil,
		actionlog.WithClock(func() time.Time { return now }),
		actionlog.WithRetention(time.Hour))

	if _, err := s.Append(context.Background(), "old", ""); err != nil {
		t.Fatal(err)
	}
	now = now.Add(50 * time.Minute)
	if _, err := s.Append(context.Background(), "recent", ""); err != nil {
		t.Fatal(err)
	}
	now = now.Add(20 * time.Minute)

	deleted, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("Sweep() deleted %d, want 1", deleted)
	}
	left, _ := s.Recent(context.Background(), 10)
	if len(left) != 1 || left[0].Action != "recent" {
		t.Errorf("remaining entries = %+v", left)
	}
}
