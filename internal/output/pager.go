package output

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
)

// ShouldPage returns true if output should be piped through a pager.
// This checks if stdout is a terminal and the content exceeds terminal height.
func ShouldPage(content string, termHeight int) bool {
	if !isTerminal() {
		return false
	}
	lines := strings.Count(content, "\n")
	return lines > termHeight
}

// Page pipes content through the user's preferred pager (PAGER env, or "less -R"
// so colors survive).
func Page(content string) error {
	pager := os.Getenv("PAGER")
	args := []string{}
	if pager == "" {
		pager, args = "less", []string{"-R"}
	}

	cmd := exec.Command(pager, args...)
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

// Show writes content to w, going through the pager instead when paging is
// enabled, w is stdout and the content is taller than the terminal.
func Show(w io.Writer, content string, page bool) error {
	if page && w == io.Writer(os.Stdout) && ShouldPage(content, termHeight()) {
		if err := Page(content); err == nil {
			return nil
		}
	}
	_, err := fmt.Fprint(w, content)
	return err
}

// termHeight reads LINES, which most shells export, and falls back to 24.
func termHeight() int {
	if n, err := strconv.Atoi(os.Getenv("LINES")); err == nil && n > 0 {
		return n
	}
	return 24
}

func isTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
