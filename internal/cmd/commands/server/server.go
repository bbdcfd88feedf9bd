// Package server implements the `conflagent server` command.
package server

import (
	"fmt"
	"net/http"

	"github.com/spf13/afero"

	"github.com/conflagent-dev/conflagent/internal/api"
	"github.com/conflagent-dev/conflagent/internal/cmd/base"
	"github.com/conflagent-dev/conflagent/internal/config"
	"github.com/conflagent-dev/conflagent/internal/server"
)

type Command struct {
	*base.Command

	flagConfig string
}

func (c *Command) Synopsis() string {
	return "Run the Conflagent API server"
}

func (c *Command) Help() string {
	return `Usage: conflagent server -config=<config file>

  Starts the Conflagent API server. The config file defines the listen
  address and one endpoint block per deployed endpoint name.

` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet("server")

	f.StringVar(
		&c.flagConfig, "config", "conflagent.hcl",
		"Path to the HCL configuration file.",
	)

	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	cfg, err := config.NewConfig(afero.NewOsFs(), c.flagConfig)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error loading configuration: %v", err))
		return 1
	}

	srv := server.Server{
		Config: cfg,
		Logger: c.Log,
	}

	mux := http.NewServeMux()
	mux.Handle("/endpoint/", api.EndpointHandler(srv))
	mux.Handle("/", api.LandingHandler(srv))

	c.Log.Info("starting server",
		"listen_addr", cfg.ListenAddr,
		"endpoints", len(cfg.Endpoints),
	)
	if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
		c.UI.Error(fmt.Sprintf("server error: %v", err))
		return 1
	}

	return 0
}
