// Package session holds the state of one open workbook: the selected sheet's
// dataset, its column transforms and the global view state. Every operation
// either succeeds completely or leaves the state as it was and records a
// user-visible message.
package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/klytics/sheetkit/internal/palette"
	"github.com/klytics/sheetkit/internal/query"
	"github.com/klytics/sheetkit/internal/table"
)

var (
	// ErrNoWorkbook is returned by sheet operations before a workbook is open.
	ErrNoWorkbook = errors.New("no workbook open")

	// ErrNoSheet is returned by view and edit operations before a sheet is selected.
	ErrNoSheet = errors.New("no sheet selected")

	// ErrSuperseded is reported by a load that finished after a newer load
	// had started. Its result is discarded.
	ErrSuperseded = errors.New("load superseded by a newer one")
)

// Decoder turns workbook bytes into sheet names and datasets.
type Decoder interface {
	ListSheets(data []byte) ([]string, error)
	LoadSheet(data []byte, sheet string) (*table.Dataset, error)
}

// ReadFunc reads the raw bytes of a workbook.
type ReadFunc func(path string) ([]byte, error)

// Options configure a Session.
type Options struct {
	Decoder Decoder
	Read    ReadFunc
	Logger  zerolog.Logger

	// ColorFrom is the start color of new color ranges.
	ColorFrom palette.Color
	// ColorTo is the end color. Nil means the opposite of ColorFrom.
	ColorTo *palette.Color
}

// Session is the state container of the viewer. It is safe for use from
// several goroutines, though operations are meant to run one at a time.
type Session struct {
	mu   sync.Mutex
	dec  Decoder
	read ReadFunc
	log  zerolog.Logger
	from palette.Color
	to   *palette.Color

	seq    uint64
	path   string
	data   []byte
	sheets []string
	sheet  string

	state   table.State
	view    table.ViewState
	where   *query.Predicate
	message string
}

// New creates an empty session.
func New(opts Options) *Session {
	return &Session{
		dec:  opts.Decoder,
		read: opts.Read,
		log:  opts.Logger,
		from: opts.ColorFrom,
		to:   opts.ColorTo,
	}
}

// Open starts reading the workbook at path in the background. The returned
// channel yields the outcome once. If another Open or Reload starts before
// this one finishes, this result is dropped and ErrSuperseded is reported.
// On failure the previous workbook stays open.
func (s *Session) Open(ctx context.Context, path string) <-chan error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- s.load(ctx, seq, path, false)
	}()
	return done
}

// OpenFile opens a workbook and waits for the result.
func (s *Session) OpenFile(ctx context.Context, path string) error {
	select {
	case err := <-s.Open(ctx, path):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reload re-reads the open workbook. The selected sheet is reloaded when it
// still exists; transforms of columns that survived are kept.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	if s.path == "" {
		s.mu.Unlock()
		return s.failLocked(ErrNoWorkbook)
	}
	s.seq++
	seq, path := s.seq, s.path
	s.mu.Unlock()

	return s.load(ctx, seq, path, true)
}

func (s *Session) load(ctx context.Context, seq uint64, path string, keep bool) error {
	s.log.Debug().Str("path", path).Uint64("seq", seq).Msg("loading workbook")

	data, err := s.read(path)
	var sheets []string
	if err == nil {
		sheets, err = s.dec.ListSheets(data)
	}

	s.mu.Lock()
	sheet := s.sheet
	s.mu.Unlock()

	var dataset *table.Dataset
	if err == nil && keep && sheet != "" && contains(sheets, sheet) {
		dataset, err = s.dec.LoadSheet(data, sheet)
	}
	if err == nil {
		err = ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		s.log.Debug().Str("path", path).Uint64("seq", seq).Uint64("latest", s.seq).Msg("discarding stale load")
		return ErrSuperseded
	}
	if err != nil {
		return s.fail(err)
	}

	s.path, s.data, s.sheets = path, data, sheets
	if dataset != nil {
		s.state = table.State{Data: dataset, Transforms: s.state.Transforms.Prune(dataset.Columns)}
		s.fixViewLocked()
	} else {
		s.resetSheetLocked("")
	}
	s.log.Info().Str("path", path).Int("sheets", len(sheets)).Bool("reload", keep).Msg("workbook loaded")
	return s.ok()
}

// Sheets returns the sheet names of the open workbook.
func (s *Session) Sheets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sheets...)
}

// Select decodes a sheet and makes it current. Dataset, transforms and view
// state are replaced in full.
func (s *Session) Select(sheet string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return s.fail(ErrNoWorkbook)
	}
	d, err := s.dec.LoadSheet(s.data, sheet)
	if err != nil {
		return s.fail(err)
	}
	s.resetSheetLocked(sheet)
	s.state = table.State{Data: d, Transforms: table.Transforms{}}
	s.log.Info().Str("sheet", sheet).Int("rows", d.Len()).Int("columns", len(d.Columns)).Msg("sheet selected")
	return s.ok()
}

func (s *Session) resetSheetLocked(sheet string) {
	s.sheet = sheet
	s.state = table.State{}
	s.view = table.ViewState{}
	s.where = nil
}

// fixViewLocked drops a sort whose column no longer exists.
func (s *Session) fixViewLocked() {
	if s.view.Sort != nil && !s.state.Data.Has(s.view.Sort.Column) {
		s.view.Sort = nil
	}
}

// Path returns the path of the open workbook.
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Sheet returns the selected sheet name.
func (s *Session) Sheet() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sheet
}

// Title is "file - sheet", "file" before a sheet is selected, or "sheetkit".
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return "sheetkit"
	}
	base := filepath.Base(s.path)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	if s.sheet == "" {
		return base
	}
	return base + " - " + s.sheet
}

// Message returns the last error message, or "" after a success.
func (s *Session) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

func (s *Session) fail(err error) error {
	s.message = err.Error()
	s.log.Debug().Err(err).Msg("operation failed")
	return err
}

func (s *Session) failLocked(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fail(err)
}

func (s *Session) ok() error {
	s.message = ""
	return nil
}

func (s *Session) requireSheet() error {
	if s.state.Data == nil {
		return ErrNoSheet
	}
	return nil
}

func (s *Session) requireColumn(c string) error {
	if err := s.requireSheet(); err != nil {
		return err
	}
	if !s.state.Data.Has(c) {
		return fmt.Errorf("%w: %q", table.ErrUnknownColumn, c)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
