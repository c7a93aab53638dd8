package watch

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNewWatcher(t *testing.T) {
	w, err := New(Config{Path: filepath.Join(t.TempDir(), "book.xlsx"), Debounce: 100 * time.Millisecond}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if w == nil {
		t.Fatal("expected non-nil watcher")
	}
	if !filepath.IsAbs(w.Path()) {
		t.Errorf("expected absolute path, got %q", w.Path())
	}
	w.watcher.Close()
}

func TestDefaultDebounce(t *testing.T) {
	w, _ := New(Config{Path: "book.xlsx"}, zerolog.Nop())
	defer w.watcher.Close()

	if w.Config.Debounce != DefaultDebounce {
		t.Errorf("expected default debounce %s, got %s", DefaultDebounce, w.Config.Debounce)
	}
}

func TestMatches(t *testing.T) {
	w, _ := New(Config{Path: "/tmp/data/book.xlsx"}, zerolog.Nop())
	defer w.watcher.Close()

	if !w.matches("/tmp/data/book.xlsx") {
		t.Error("should match the watched file")
	}
	if w.matches("/tmp/data/other.xlsx") {
		t.Error("should not match another workbook")
	}
	if w.matches("/tmp/data/~$book.xlsx") {
		t.Error("should not match the lock file")
	}
}

func startWatcher(t *testing.T, path string, handler Handler) (*Watcher, context.CancelFunc) {
	t.Helper()
	w, err := New(Config{Path: path, Debounce: 50 * time.Millisecond}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	w.Handler = handler

	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx)

	// Give the watcher time to start
	time.Sleep(100 * time.Millisecond)
	return w, cancel
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.xlsx")
	os.WriteFile(path, []byte("v1"), 0644)

	called := make(chan string, 4)
	w, cancel := startWatcher(t, path, func(p string) error {
		called <- p
		return nil
	})
	defer cancel()

	// Several writes in a burst produce one call.
	for i := 0; i < 3; i++ {
		os.WriteFile(path, []byte("v2"), 0644)
	}

	select {
	case got := <-called:
		if got != w.Path() {
			t.Errorf("expected %q, got %q", w.Path(), got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for handler call")
	}

	time.Sleep(150 * time.Millisecond)
	if n := len(called); n != 0 {
		t.Errorf("expected a single debounced call, got %d more", n)
	}
	if events := w.Events(); len(events) != 1 || events[0].Status != "reloaded" {
		t.Errorf("unexpected events %+v", events)
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.xlsx")

	called := make(chan string, 1)
	_, cancel := startWatcher(t, path, func(p string) error {
		called <- p
		return nil
	})
	defer cancel()

	os.WriteFile(filepath.Join(dir, "other.xlsx"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "~$book.xlsx"), []byte("lock"), 0644)
	time.Sleep(200 * time.Millisecond)

	if len(called) != 0 {
		t.Error("handler should not be called for other files")
	}
}

func TestWatcherRecordsHandlerErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.xlsx")

	done := make(chan struct{}, 1)
	w, cancel := startWatcher(t, path, func(string) error {
		defer func() { done <- struct{}{} }()
		return errors.New("could not decode workbook")
	})
	defer cancel()

	os.WriteFile(path, []byte("broken"), 0644)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for handler call")
	}

	// The event is recorded right after the handler returns.
	time.Sleep(20 * time.Millisecond)
	events := w.Events()
	if len(events) != 1 || events[0].Status != "error" || events[0].Error == "" {
		t.Errorf("unexpected events %+v", events)
	}
}

func TestStartMissingDirectory(t *testing.T) {
	w, err := New(Config{Path: filepath.Join(t.TempDir(), "missing", "book.xlsx")}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestEventJSON(t *testing.T) {
	evt := Event{
		Time:      time.Now(),
		Path:      "/tmp/book.xlsx",
		Operation: "WRITE",
		Status:    "reloaded",
	}

	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatal(err)
	}

	var decoded Event
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Path != "/tmp/book.xlsx" {
		t.Errorf("Path = %q", decoded.Path)
	}
	if decoded.Status != "reloaded" {
		t.Errorf("Status = %q", decoded.Status)
	}
}
