// Package app wires configuration, logging and the workbook decoder into
// the objects the commands work with.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/klytics/sheetkit/internal/config"
	"github.com/klytics/sheetkit/internal/formats/xlsx"
	"github.com/klytics/sheetkit/internal/output"
	"github.com/klytics/sheetkit/internal/progress"
	"github.com/klytics/sheetkit/internal/session"
)

type configKey struct{}

// WithConfig returns a copy of ctx carrying cfg.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// Config returns the configuration stored in ctx, loading it when absent.
func Config(ctx context.Context) (*config.Config, error) {
	if ctx != nil {
		if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok && cfg != nil {
			return cfg, nil
		}
	}
	return config.Load()
}

// NewSession creates a session that reads workbooks from disk with the
// configured default colors.
func NewSession(cfg *config.Config, log zerolog.Logger) (*session.Session, error) {
	from, to, err := cfg.Colors()
	if err != nil {
		return nil, err
	}
	return session.New(session.Options{
		Decoder:   xlsx.Decoder{},
		Read:      xlsx.ReadFile,
		Logger:    log,
		ColorFrom: from,
		ColorTo:   to,
	}), nil
}

// Open loads the workbook at path into sess, with a spinner on stderr
// unless quiet is set.
func Open(ctx context.Context, sess *session.Session, path string, quiet bool) error {
	errc := sess.Open(ctx, path)
	if quiet {
		return <-errc
	}
	spin := progress.NewSpinner(fmt.Sprintf("Reading %s", filepath.Base(path)))
	return spin.Wait(errc)
}

// TableOptions returns the renderer settings. Colors are off when disabled
// in the configuration or by --no-color.
func TableOptions(cfg *config.Config) output.TableOptions {
	return output.TableOptions{
		MaxWidth: cfg.Output.MaxWidth,
		Color:    cfg.Output.Color && !color.NoColor,
	}
}

// ExitCode maps err to the process exit code. Unreadable workbooks are
// system errors; everything else is a user error.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return output.ExitOK
	case errors.Is(err, xlsx.ErrDecode):
		return output.ExitSystemError
	default:
		return output.ExitUserError
	}
}
