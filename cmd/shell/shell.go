// Package shell provides the "sheetkit shell" interactive REPL command.
package shell

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/klytics/sheetkit/internal/app"
	shellpkg "github.com/klytics/sheetkit/internal/shell"
	"github.com/klytics/sheetkit/internal/watch"
)

// NewCommand creates the "shell" command.
func NewCommand() *cobra.Command {
	var (
		evalCmds []string
		sheet    string
		watchArg bool
	)

	cmd := &cobra.Command{
		Use:   "shell [file.xlsx]",
		Short: "Start an interactive sheetkit shell",
		Long: `Start an interactive REPL over one workbook with history and tab completion.

The workbook stays open between commands, so hide, sort, filter and color
build up on the same view. With --watch the workbook is reloaded whenever it
changes on disk, keeping the transforms of columns that still exist.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := app.Config(ctx)
			if err != nil {
				return err
			}
			log := *zerolog.Ctx(ctx)
			sess, err := app.NewSession(cfg, log)
			if err != nil {
				return err
			}

			sh := shellpkg.New(shellpkg.Options{
				Session:     sess,
				Table:       app.TableOptions(cfg),
				HistoryFile: cfg.Shell.History,
				Out:         cmd.OutOrStdout(),
				Logger:      log,
			})

			if len(args) == 1 {
				if err := app.Open(ctx, sess, args[0], len(evalCmds) > 0); err != nil {
					return err
				}
				if sheet == "" && len(sess.Sheets()) == 1 {
					sheet = sess.Sheets()[0]
				}
				if sheet != "" {
					if err := sess.Select(sheet); err != nil {
						return err
					}
				}
			} else if sheet != "" || watchArg {
				return fmt.Errorf("--sheet and --watch need a workbook argument")
			}

			if len(evalCmds) > 0 {
				for _, line := range evalCmds {
					out, err := sh.Eval(ctx, line)
					fmt.Fprint(cmd.OutOrStdout(), out)
					if err != nil {
						return err
					}
				}
				return nil
			}

			if watchArg {
				w, err := watch.New(watch.Config{Path: args[0], Debounce: cfg.Debounce()}, log)
				if err != nil {
					return err
				}
				w.Handler = sh.Reload
				wctx, cancel := context.WithCancel(ctx)
				defer cancel()
				go func() {
					if err := w.Start(wctx); err != nil {
						log.Warn().Err(err).Msg("watcher stopped")
					}
				}()
			}

			return sh.Run(ctx)
		},
	}

	cmd.Flags().StringArrayVar(&evalCmds, "eval", nil, "Run a command and exit (repeatable)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to select after opening")
	cmd.Flags().BoolVar(&watchArg, "watch", false, "Reload the workbook when it changes on disk")
	return cmd
}
