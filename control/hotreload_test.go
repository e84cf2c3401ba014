package control

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestWatchConfig_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	store := NewConfigStore(cfg)
	reloaded := make(chan Config, 4)
	store.OnReload(func(c Config) { reloaded <- c })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := WatchConfig(ctx, path, store, quietLogger()); err != nil {
		t.Fatalf("WatchConfig: %v", err)
	}

	// an invalid file is rejected and keeps the old snapshot
	if err := os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	if store.Snapshot().Logging.Level != "info" {
		t.Fatalf("invalid reload was applied")
	}

	if err := os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.After(3 * time.Second)
	for {
		select {
		case c := <-reloaded:
			if c.Logging.Level == "debug" {
				return
			}
		case <-deadline:
			t.Fatalf("no reload observed, level=%s", store.Snapshot().Logging.Level)
		}
	}
}

func TestWatchConfig_EmptyPath(t *testing.T) {
	err := WatchConfig(context.Background(), "", NewConfigStore(DefaultConfig()), nil)
	if !errors.Is(err, ErrNoConfigPath) {
		t.Fatalf("got %v", err)
	}
}
