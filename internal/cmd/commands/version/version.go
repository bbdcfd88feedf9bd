// Package version implements the `conflagent version` command.
package version

import (
	"fmt"

	"github.com/conflagent-dev/conflagent/internal/cmd/base"
	"github.com/conflagent-dev/conflagent/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version of this binary"
}

func (c *Command) Help() string {
	return "Usage: conflagent version"
}

func (c *Command) Run(args []string) int {
	c.UI.Output(fmt.Sprintf("conflagent v%s (%s, built %s)",
		version.Version, version.Commit, version.BuildDate))
	return 0
}
