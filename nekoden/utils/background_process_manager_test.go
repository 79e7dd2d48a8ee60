package utils

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

func TestBackgroundProcessManager_Shutdown(t *testing.T) {
	bpm := NewBackgroundProcessManager(context.Background())

	var stopped atomic.Int32
	loop := func(ctx context.Context) {
		<-ctx.Done()
		stopped.Add(1)
	}
	for _, name := range []string{"tick", "log-sweep"} {
		if err := bpm.StartProcess(name, "test loop", loop); err != nil {
			t.Fatalf("StartProcess(%s) error = %v", name, err)
		}
	}
	if got, want := bpm.Running(), []string{"log-sweep", "tick"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Running() = %v, want %v", got, want)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := bpm.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if got := stopped.Load(); got != 2 {
		t.Errorf("%d processes observed cancellation, want 2", got)
	}
	if err := bpm.StartProcess("late", "", loop); !errors.Is(err, ErrManagerStopped) {
		t.Errorf("StartProcess() after shutdown error = %v", err)
	}
}

func TestBackgroundProcessManager_ShutdownTimeout(t *testing.T) {
	bpm := NewBackgroundProcessManager(context.Background())
	release := make(chan struct{})
	defer close(release)
	_ = bpm.StartProcess("stuck", "ignores cancellation", func(context.Context) { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := bpm.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown() error = %v, want deadline exceeded", err)
	}
}

func TestBackgroundProcessManager_PanicAndReplace(t *testing.T) {
	bpm := NewBackgroundProcessManager(context.Background())

	done := make(chan struct{})
	_ = bpm.StartProcess("boom", "", func(context.Context) {
		defer close(done)
		panic("sweep exploded")
	})
	<-done

	deadline := time.Now().Add(time.Second)
	for len(bpm.Running()) != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := bpm.Running(); len(got) != 0 {
		t.Errorf("Running() after panic = %v", got)
	}

	first := make(chan struct{})
	_ = bpm.StartProcess("tick", "", func(ctx context.Context) {
		<-ctx.Done()
		close(first)
	})
	_ = bpm.StartProcess("tick", "", func(ctx context.Context) { <-ctx.Done() })
	select {
	case <-first:
	case <-time.After(time.Second):
		t.Fatal("replaced process was not cancelled")
	}
	if got := bpm.Running(); !reflect.DeepEqual(got, []string{"tick"}) {
		t.Errorf("Running() = %v, want [tick]", got)
	}

	_ = bpm.Shutdown(context.Background())
}
