package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestRootCommands(t *testing.T) {
	root := NewRootCommand()
	want := []string{"sheets", "view", "shell", "config", "completion", "version"}
	for _, name := range want {
		found, _, err := root.Find([]string{name})
		if err != nil || found.Name() != name {
			t.Errorf("expected a %q subcommand", name)
		}
	}
	for _, flag := range []string{"json", "verbose", "no-color", "config"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("expected a --%s flag", flag)
		}
	}
}

func TestRootLoadsConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	viper.Reset()

	root := NewRootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"config", "get", "output.max_width"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "output.max_width: 40\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestCloseLogFileReportsError(t *testing.T) {
	saved := closeLog
	t.Cleanup(func() { closeLog = saved })

	closeLog = func() error { return errors.New("disk full") }
	var buf bytes.Buffer
	closeLogFile(&buf)
	if !strings.Contains(buf.String(), "disk full") {
		t.Errorf("expected the close error on the writer, got %q", buf.String())
	}
	if closeLog != nil {
		t.Error("expected the close func to be cleared")
	}

	buf.Reset()
	closeLogFile(&buf)
	if buf.Len() != 0 {
		t.Errorf("expected no output without a log file, got %q", buf.String())
	}
}
