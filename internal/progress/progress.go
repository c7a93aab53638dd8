// Package progress shows a spinner while a workbook loads.
// All output goes to stderr to avoid polluting stdout/pipes.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var frames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

// Spinner shows a spinner for operations where total is unknown.
type Spinner struct {
	Label   string
	Enabled bool
	// Delay holds the first frame back so fast operations print nothing.
	Delay time.Duration

	out     io.Writer
	mu      sync.Mutex
	done    chan struct{}
	drawn   bool
	stopped bool
}

// NewSpinner creates a spinner on stderr. It is disabled when stderr is not
// a terminal or SHEETKIT_NO_PROGRESS=1.
func NewSpinner(label string) *Spinner {
	return &Spinner{
		Label:   label,
		Enabled: shouldEnable(),
		Delay:   150 * time.Millisecond,
		out:     os.Stderr,
		done:    make(chan struct{}),
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	if !s.Enabled {
		return
	}
	if s.out == nil {
		s.out = os.Stderr
	}

	s.mu.Lock()
	s.stopped = false
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go func() {
		select {
		case <-done:
			return
		case <-time.After(s.Delay):
		}

		i := 0
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			s.mu.Lock()
			if !s.stopped {
				fmt.Fprintf(s.out, "\r\033[K%c %s", frames[i%len(frames)], s.Label)
				s.drawn = true
				i++
			}
			s.mu.Unlock()

			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop stops the spinner and clears its line. A spinner that never drew
// anything prints nothing.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	if s.Enabled && s.drawn {
		fmt.Fprint(s.out, "\r\033[K")
	}
}

// Update changes the spinner label while it's running.
func (s *Spinner) Update(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Label = label
}

// Wait runs the spinner until errc yields, and returns what it yielded.
func (s *Spinner) Wait(errc <-chan error) error {
	s.Start()
	defer s.Stop()
	return <-errc
}

func shouldEnable() bool {
	if os.Getenv("SHEETKIT_NO_PROGRESS") == "1" {
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}
