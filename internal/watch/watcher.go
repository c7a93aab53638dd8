// Package watch reloads an open workbook when it changes on disk.
// It watches the file's directory, since editors usually replace the file
// rather than write it in place.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is used when Config.Debounce is not positive.
const DefaultDebounce = 500 * time.Millisecond

// Config selects the file to watch.
type Config struct {
	Path     string
	Debounce time.Duration
}

// Event records one handled change.
type Event struct {
	Time      time.Time `json:"time"`
	Path      string    `json:"path"`
	Operation string    `json:"operation"`
	Status    string    `json:"status"` // "reloaded", "error"
	Error     string    `json:"error,omitempty"`
}

// Handler is called once per burst of changes to the watched file.
type Handler func(path string) error

// Watcher monitors one file for changes.
type Watcher struct {
	Config  Config
	Handler Handler

	log     zerolog.Logger
	path    string
	base    string
	mu      sync.Mutex
	events  []Event
	watcher *fsnotify.Watcher
	timer   *time.Timer
}

// New creates a Watcher for config.Path.
func New(config Config, log zerolog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(config.Path)
	if err != nil {
		return nil, fmt.Errorf("could not resolve %s: %w", config.Path, err)
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create file watcher: %w", err)
	}

	return &Watcher{
		Config:  config,
		log:     log.With().Str("component", "watch").Logger(),
		path:    abs,
		base:    filepath.Base(abs),
		watcher: fsw,
	}, nil
}

// Start watches until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		w.watcher.Close()
		return fmt.Errorf("could not watch %s: %w", dir, err)
	}
	w.log.Debug().Str("path", w.path).Dur("debounce", w.Config.Debounce).Msg("watching")

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			w.log.Debug().Str("path", w.path).Msg("stopping watcher")
			return w.watcher.Close()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}

// matches reports whether name is the watched file. Office lock files such
// as "~$book.xlsx" never match.
func (w *Watcher) matches(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".~") {
		return false
	}
	return base == w.base
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}
	if !w.matches(event.Name) {
		return
	}

	// Debounce: editors write a file in several steps.
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	op := event.Op.String()
	w.timer = time.AfterFunc(w.Config.Debounce, func() {
		w.process(op)
	})
	w.mu.Unlock()
}

func (w *Watcher) process(operation string) {
	evt := Event{Time: time.Now(), Path: w.path, Operation: operation, Status: "reloaded"}

	if w.Handler != nil {
		if err := w.Handler(w.path); err != nil {
			evt.Status = "error"
			evt.Error = err.Error()
			w.log.Warn().Err(err).Str("path", w.path).Msg("reload failed")
		} else {
			w.log.Info().Str("path", w.path).Str("op", operation).Msg("reloaded")
		}
	}

	w.mu.Lock()
	w.events = append(w.events, evt)
	w.mu.Unlock()
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Events returns all recorded events.
func (w *Watcher) Events() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	events := make([]Event, len(w.events))
	copy(events, w.events)
	return events
}
