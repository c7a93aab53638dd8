// Package shell provides the interactive sheetkit REPL over one session.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/klytics/sheetkit/internal/output"
	"github.com/klytics/sheetkit/internal/script"
	"github.com/klytics/sheetkit/internal/session"
)

// Options configure a Shell.
type Options struct {
	Session  *session.Session
	Executor *script.Executor
	Table    output.TableOptions
	// HistoryFile keeps readline history across runs. Empty disables it.
	HistoryFile string
	Out         io.Writer
	Logger      zerolog.Logger
}

// Shell is an interactive session over a workbook.
type Shell struct {
	CommandHistory []string
	StartTime      time.Time

	sess   *session.Session
	exec   *script.Executor
	table  output.TableOptions
	hist   string
	log    zerolog.Logger
	outMu  sync.Mutex
	out    io.Writer
	prompt func(string)
}

// New creates a shell. A nil executor gets one with the built-in actions.
func New(opts Options) *Shell {
	if opts.Executor == nil {
		opts.Executor = script.NewExecutor(opts.Logger)
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Shell{
		StartTime: time.Now(),
		sess:      opts.Session,
		exec:      opts.Executor,
		table:     opts.Table,
		hist:      opts.HistoryFile,
		log:       opts.Logger,
		out:       opts.Out,
	}
}

// Prompt is the readline prompt: the session title.
func (s *Shell) Prompt() string {
	return s.sess.Title() + "> "
}

// Run starts the REPL loop. Blocks until 'exit' or Ctrl+D.
func (s *Shell) Run(ctx context.Context) error {
	if s.hist != "" {
		os.MkdirAll(filepath.Dir(s.hist), 0755)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.Prompt(),
		HistoryFile:     s.hist,
		AutoComplete:    readline.NewPrefixCompleter(s.buildCompleter()...),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	s.outMu.Lock()
	s.out = rl.Stdout()
	s.prompt = rl.SetPrompt
	s.outMu.Unlock()

	s.println("sheetkit — interactive shell")
	s.println("Type 'help' for commands, 'exit' to quit.")
	s.println("")

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if line == "exit" || line == "quit" {
			s.printf("\nSession ended. %d commands run in %s.\n",
				len(s.CommandHistory), formatDuration(time.Since(s.StartTime)))
			return nil
		}

		out, err := s.Eval(ctx, line)
		if out != "" {
			s.print(out)
		}
		if err != nil {
			s.printf("%s %s\n", color.RedString("Error:"), err)
		}
		rl.SetPrompt(s.Prompt())
	}

	return nil
}

// Eval runs one command line and returns what it printed.
func (s *Shell) Eval(ctx context.Context, line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}
	args, err := Split(line)
	if err != nil {
		return "", err
	}
	if len(args) == 0 {
		return "", nil
	}
	s.CommandHistory = append(s.CommandHistory, line)

	name := args[0]
	cmd, ok := commands[name]
	if !ok {
		return "", fmt.Errorf("unknown command %q — type 'help' for the list", name)
	}
	if len(args)-1 < cmd.min {
		return "", fmt.Errorf("usage: %s", cmd.usage)
	}

	var buf bytes.Buffer
	err = cmd.run(ctx, s, &buf, args[1:], rest(line, name))
	s.log.Debug().Str("command", name).AnErr("error", err).Msg("shell command")
	return buf.String(), err
}

// Reload re-reads the workbook and announces the result. It has the shape
// of a watch handler.
func (s *Shell) Reload(path string) error {
	err := s.sess.Reload(context.Background())
	if err == session.ErrSuperseded {
		return nil
	}
	if err != nil {
		s.printf("\n%s reload of %s failed: %s\n", color.RedString("Error:"), filepath.Base(path), err)
		return err
	}
	s.printf("\n%s reloaded\n", filepath.Base(path))
	if s.sess.Sheet() != "" {
		var buf bytes.Buffer
		if err := s.render(&buf); err == nil {
			s.print(buf.String())
		}
	}
	s.outMu.Lock()
	if s.prompt != nil {
		s.prompt(s.Prompt())
	}
	s.outMu.Unlock()
	return nil
}

func (s *Shell) render(w io.Writer) error {
	v, err := s.sess.View()
	if err != nil {
		return err
	}
	return output.RenderTable(w, v, s.table)
}

// Complete returns tab-completion candidates for the given input.
func (s *Shell) Complete(input string) []string {
	parts := strings.Fields(input)
	trailing := strings.HasSuffix(input, " ")

	if len(parts) == 0 || (len(parts) == 1 && !trailing) {
		prefix := ""
		if len(parts) == 1 {
			prefix = parts[0]
		}
		return matching(commandNames(), prefix)
	}

	cmd, ok := commands[parts[0]]
	if !ok || cmd.complete == nil {
		return nil
	}
	argIndex := len(parts) - 1
	prefix := parts[len(parts)-1]
	if trailing {
		argIndex, prefix = len(parts), ""
	}
	if argIndex != 1 {
		return nil
	}
	return matching(cmd.complete(s), prefix)
}

func (s *Shell) buildCompleter() []readline.PrefixCompleterInterface {
	var items []readline.PrefixCompleterInterface
	for _, name := range commandNames() {
		cmd := commands[name]
		if cmd.complete == nil {
			items = append(items, readline.PcItem(name))
			continue
		}
		complete := cmd.complete
		items = append(items, readline.PcItem(name,
			readline.PcItemDynamic(func(string) []string { return quoteAll(complete(s)) })))
	}
	return items
}

func (s *Shell) print(text string) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprint(s.out, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(s.out)
	}
}

func (s *Shell) println(text string) {
	s.print(text + "\n")
}

func (s *Shell) printf(format string, args ...interface{}) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

// rest returns the raw text after the command name, for commands whose
// argument is free text with its own quoting.
func rest(line, name string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, name))
}

func matching(candidates []string, prefix string) []string {
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// quoteAll wraps names holding spaces in double quotes so they split back
// into one argument.
func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		if strings.ContainsAny(n, " \t\"") {
			n = strconv.Quote(n)
		}
		out[i] = n
	}
	return out
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", m, s)
}
