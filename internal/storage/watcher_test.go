package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestWatchFile_ExternalAppendNotifies(t *testing.T) {
	c := tempCSV(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	go WatchFile(ctx, c.Path(), quietLogger(), func() { calls.Add(1) })
	time.Sleep(100 * time.Millisecond)

	f, err := os.OpenFile(c.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString("2025-01-01 08:00:00,120,80,70,Home,\n")
	_ = f.Close()

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return calls.Load() == 1
	}, "expected one change notification")
}

func TestWatchFile_AtomicRewriteNotifies(t *testing.T) {
	c := tempCSV(t)
	_, _ = c.Create(context.Background(), sampleReading(120, 80, 70))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	go WatchFile(ctx, c.Path(), quietLogger(), func() { calls.Add(1) })
	time.Sleep(100 * time.Millisecond)

	if _, err := c.Delete(context.Background(), 1); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return calls.Load() >= 1
	}, "rename-based rewrite not observed")
}

func TestWatchFile_IgnoresOtherFilesAndNoopWrites(t *testing.T) {
	c := tempCSV(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	go WatchFile(ctx, c.Path(), quietLogger(), func() { calls.Add(1) })
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(filepath.Dir(c.Path()), "other.csv"), []byte("x"), 0o644)
	data, _ := os.ReadFile(c.Path())
	_ = os.WriteFile(c.Path(), data, 0o644)

	time.Sleep(600 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("calls = %d, want 0", n)
	}
}

func TestWatchFile_StopsOnCancel(t *testing.T) {
	c := tempCSV(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- WatchFile(ctx, c.Path(), quietLogger(), nil) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WatchFile returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
