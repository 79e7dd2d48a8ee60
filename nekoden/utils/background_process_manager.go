package utils

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
)

var ErrManagerStopped = errors.New("process manager is shutting down")

// BackgroundProcessManager owns the long-running loops (state ticks, sweeps)
// so shutdown can cancel them together and wait for them to return.
type BackgroundProcessManager struct {
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	processes map[string]*ProcessInfo
	seq       uint64
	stopped   bool
}

type ProcessInfo struct {
	Name        string
	Description string
	cancel      context.CancelFunc
	id          uint64
}

func NewBackgroundProcessManager(parent context.Context) *BackgroundProcessManager {
	ctx, cancel := context.WithCancel(parent)
	return &BackgroundProcessManager{
		ctx:       ctx,
		cancel:    cancel,
		processes: make(map[string]*ProcessInfo),
	}
}

// StartProcess runs fn in its own goroutine. Starting a name that is already
// running replaces it. A panic in fn is logged and ends only that process.
func (bpm *BackgroundProcessManager) StartProcess(name, description string, fn func(ctx context.Context)) error {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	if bpm.stopped {
		return ErrManagerStopped
	}
	if _, exists := bpm.processes[name]; exists {
		slog.Warn("Process already running, replacing it", slog.String("process", name))
		bpm.stopProcessLocked(name)
	}

	bpm.seq++
	processCtx, processCancel := context.WithCancel(bpm.ctx)
	info := &ProcessInfo{
		Name:        name,
		Description: description,
		cancel:      processCancel,
		id:          bpm.seq,
	}
	bpm.processes[name] = info

	bpm.wg.Add(1)
	go func() {
		defer bpm.wg.Done()
		defer bpm.forget(info)
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Background process panic",
					slog.String("type", "error"),
					slog.String("process", name),
					slog.Any("panic", r))
			}
		}()

		slog.Info("Starting background process",
			slog.String("process", name),
			slog.String("description", description))

		fn(processCtx)

		slog.Info("Background process ended", slog.String("process", name))
	}()
	return nil
}

func (bpm *BackgroundProcessManager) stopProcessLocked(name string) {
	if process, exists := bpm.processes[name]; exists {
		process.cancel()
		delete(bpm.processes, name)
		slog.Info("Stopped background process", slog.String("process", name))
	}
}

// forget drops info once its goroutine returns, unless it was replaced.
func (bpm *BackgroundProcessManager) forget(info *ProcessInfo) {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()
	if current, ok := bpm.processes[info.Name]; ok && current.id == info.id {
		current.cancel()
		delete(bpm.processes, info.Name)
	}
}

// Shutdown cancels every process and waits until they return or ctx ends.
func (bpm *BackgroundProcessManager) Shutdown(ctx context.Context) error {
	bpm.mu.Lock()
	bpm.stopped = true
	count := len(bpm.processes)
	bpm.mu.Unlock()

	slog.Info("Shutting down background processes", slog.Int("process_count", count))
	bpm.cancel()

	done := make(chan struct{})
	go func() {
		bpm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("All background processes stopped")
		return nil
	case <-ctx.Done():
		slog.Warn("Timed out waiting for background processes", slog.Any("error", ctx.Err()))
		return ctx.Err()
	}
}

func (bpm *BackgroundProcessManager) Running() []string {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()
	names := make([]string, 0, len(bpm.processes))
	for name := range bpm.processes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
