// Package base contains the pieces shared by all CLI commands.
package base

import (
	"bytes"
	"flag"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

// Command is embedded by every CLI command.
type Command struct {
	// Log is the logger to use.
	Log hclog.Logger

	// UI is the terminal UI to write to.
	UI cli.Ui
}

// FlagSet wraps flag.FlagSet with help rendering for command Help()
// output.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet creates a named flag set that reports errors instead of
// exiting.
func NewFlagSet(name string) *FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return &FlagSet{FlagSet: fs}
}

// Help renders the defined flags as an indented usage block.
func (f *FlagSet) Help() string {
	var buf bytes.Buffer
	buf.WriteString("Options:\n")
	f.VisitAll(func(fl *flag.Flag) {
		buf.WriteString("  -" + fl.Name)
		if fl.DefValue != "" {
			buf.WriteString(" (default: " + fl.DefValue + ")")
		}
		buf.WriteString("\n      " + fl.Usage + "\n")
	})
	return buf.String()
}
