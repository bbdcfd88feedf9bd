package server

import (
	"github.com/hashicorp/go-hclog"

	"github.com/conflagent-dev/conflagent/internal/config"
)

// Server contains the server configuration.
type Server struct {
	// Config is the config for the server. Read-only after startup and
	// safe for concurrent reads.
	Config *config.Config

	// Logger is the logger for the server.
	Logger hclog.Logger
}
