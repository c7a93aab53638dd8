// Package completion provides shell completion generation commands.
package completion

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// installHints is printed as a comment above each generated script.
var installHints = map[string]string{
	"bash":       "sheetkit completion bash > /etc/bash_completion.d/sheetkit",
	"zsh":        "sheetkit completion zsh > ~/.zsh/completions/_sheetkit",
	"fish":       "sheetkit completion fish > ~/.config/fish/completions/sheetkit.fish",
	"powershell": "sheetkit completion powershell >> $PROFILE",
}

// NewCommand returns the completion command.
func NewCommand(rootCmd *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completions",
		Long: `Generate shell completion scripts for sheetkit.

Install instructions:
  Bash:       sheetkit completion bash > /etc/bash_completion.d/sheetkit
              echo 'source <(sheetkit completion bash)' >> ~/.bashrc
  Zsh:        sheetkit completion zsh > ~/.zsh/completions/_sheetkit
  Fish:       sheetkit completion fish > ~/.config/fish/completions/sheetkit.fish
  PowerShell: sheetkit completion powershell >> $PROFILE`,
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return generate(rootCmd, cmd.OutOrStdout(), args[0])
		},
	}
	return cmd
}

func generate(rootCmd *cobra.Command, w io.Writer, shell string) error {
	hint, ok := installHints[shell]
	if !ok {
		return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish, powershell)", shell)
	}
	fmt.Fprintf(w, "# sheetkit %s completion\n", shell)
	fmt.Fprintf(w, "# Install: %s\n\n", hint)

	switch shell {
	case "bash":
		return rootCmd.GenBashCompletion(w)
	case "zsh":
		return rootCmd.GenZshCompletion(w)
	case "fish":
		return rootCmd.GenFishCompletion(w, true)
	default:
		return rootCmd.GenPowerShellCompletionWithDesc(w)
	}
}
