// Package sheets implements "sheetkit sheets", which lists the sheets of a workbook.
package sheets

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/klytics/sheetkit/internal/app"
	"github.com/klytics/sheetkit/internal/output"
)

// Result is the JSON payload of the command.
type Result struct {
	File   string   `json:"file"`
	Sheets []string `json:"sheets"`
}

// NewCommand returns the sheets command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sheets <file.xlsx>",
		Short: "List the sheets of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			cfg, err := app.Config(cmd.Context())
			if err != nil {
				return err
			}
			sess, err := app.NewSession(cfg, *zerolog.Ctx(cmd.Context()))
			if err != nil {
				return err
			}
			if err := app.Open(cmd.Context(), sess, args[0], jsonFlag); err != nil {
				return err
			}

			names := sess.Sheets()
			if jsonFlag {
				return output.WriteJSON(cmd.OutOrStdout(), "sheets", Result{File: args[0], Sheets: names})
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
