package watch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

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

func TestRun_BuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var builds atomic.Int32
	go Run(ctx, []string{dir}, 50*time.Millisecond, quietLogger(), func(context.Context) error {
		builds.Add(1)
		return nil
	})
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(dir, "a.md"), []byte("# A"), 0o644)

	eventually(t, 5*time.Second, 25*time.Millisecond, func() bool {
		return builds.Load() >= 1
	}, "change did not trigger a build")
}

func TestRun_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var builds atomic.Int32
	go Run(ctx, []string{dir}, 300*time.Millisecond, quietLogger(), func(context.Context) error {
		builds.Add(1)
		return nil
	})
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		_ = os.WriteFile(filepath.Join(dir, "burst.md"), []byte{byte('a' + i)}, 0o644)
		time.Sleep(20 * time.Millisecond)
	}

	eventually(t, 5*time.Second, 25*time.Millisecond, func() bool {
		return builds.Load() >= 1
	}, "burst did not trigger a build")
	time.Sleep(500 * time.Millisecond)
	if n := builds.Load(); n != 1 {
		t.Errorf("builds = %d, want 1", n)
	}
}

func TestRun_BuildErrorDoesNotStop(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var builds atomic.Int32
	go Run(ctx, []string{dir}, 30*time.Millisecond, quietLogger(), func(context.Context) error {
		builds.Add(1)
		return errors.New("broken manuscript")
	})
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(dir, "a.md"), []byte("1"), 0o644)
	eventually(t, 5*time.Second, 25*time.Millisecond, func() bool { return builds.Load() == 1 }, "first build missing")

	_ = os.WriteFile(filepath.Join(dir, "b.md"), []byte("2"), 0o644)
	eventually(t, 5*time.Second, 25*time.Millisecond, func() bool { return builds.Load() >= 2 }, "watch stopped after failed build")
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, []string{t.TempDir()}, 0, quietLogger(), func(context.Context) error { return nil })
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_MissingDir(t *testing.T) {
	err := Run(context.Background(), []string{filepath.Join(t.TempDir(), "nope")}, 0, quietLogger(), nil)
	if err == nil {
		t.Fatal("expected error for missing dir")
	}
}

func TestIgnored(t *testing.T) {
	cases := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: "/m/a.md", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "/m/a.md", Op: fsnotify.Chmod}, true},
		{fsnotify.Event{Name: "/b/.quire-tmp-123", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/m/a.md~", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/m/.a.md.swp", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/m/.#a.md", Op: fsnotify.Create}, true},
	}
	for _, c := range cases {
		if got := ignored(c.ev); got != c.want {
			t.Errorf("ignored(%v) = %v, want %v", c.ev, got, c.want)
		}
	}
}
