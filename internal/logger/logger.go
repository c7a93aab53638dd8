// Package logger configures zerolog for the CLI: human-readable lines on
// stderr and, optionally, JSON lines in a log file.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options configure the logger.
type Options struct {
	// Level is a zerolog level name. Empty means warn, so normal runs stay quiet.
	Level string
	// Verbose forces debug level.
	Verbose bool
	// File, when set, receives JSON log lines in addition to the console.
	File string
	// Console is where console lines go. Nil means stderr.
	Console io.Writer
	// NoColor disables colors in console lines.
	NoColor bool
}

// New builds a logger. The returned close func releases the log file.
func New(opts Options) (zerolog.Logger, func() error, error) {
	level := zerolog.WarnLevel
	if opts.Level != "" {
		l, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = l
	}
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	writers := []io.Writer{zerolog.ConsoleWriter{Out: console, TimeFormat: time.Kitchen, NoColor: opts.NoColor}}

	closeFn := func() error { return nil }
	if opts.File != "" {
		file, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("could not open log file %s: %w", opts.File, err)
		}
		writers = append(writers, file)
		closeFn = file.Close
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()
	return logger, closeFn, nil
}

// Init builds a logger and installs it as the zerolog global.
func Init(opts Options) (func() error, error) {
	logger, closeFn, err := New(opts)
	if err != nil {
		return nil, err
	}
	log.Logger = logger
	zerolog.DefaultContextLogger = &log.Logger
	return closeFn, nil
}

// Get returns the global logger.
func Get() zerolog.Logger {
	return log.Logger
}
