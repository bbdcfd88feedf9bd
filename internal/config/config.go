// Package config loads the Conflagent server configuration: one
// endpoint block per deployed endpoint name, each binding a Confluence
// space subtree to a shared-secret credential.
package config

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"
)

// Config is the top-level server configuration.
type Config struct {
	// ListenAddr is the address the HTTP server binds to.
	ListenAddr string `hcl:"listen_addr,optional"`

	// Endpoints are the deployed endpoint profiles, keyed by name in
	// the URL path. Immutable once loaded.
	Endpoints []*Endpoint `hcl:"endpoint,block"`
}

// Endpoint binds one named endpoint to a Confluence space subtree.
type Endpoint struct {
	// Name is the endpoint name used in /endpoint/{name}/... URLs.
	Name string `hcl:"name,label"`

	// BaseURL is the Confluence site base URL.
	BaseURL string `hcl:"base_url"`

	// SpaceKey is the Confluence space key.
	SpaceKey string `hcl:"space_key"`

	// RootPageID is the page defining the sandboxed subtree.
	RootPageID string `hcl:"root_page_id"`

	// Email and APIToken are the Confluence Basic auth credentials.
	Email    string `hcl:"email"`
	APIToken string `hcl:"api_token"`

	// SharedSecret is the bearer token expected from API clients.
	SharedSecret string `hcl:"shared_secret"`

	// RemoteTimeout bounds each request to the Confluence API.
	// Optional; accepts Go duration syntax ("30s").
	RemoteTimeout string `hcl:"remote_timeout,optional"`
}

// DefaultListenAddr is used when listen_addr is not configured.
const DefaultListenAddr = ":8000"

// NewConfig parses the configuration file at path using the provided
// filesystem. Tests pass an afero in-memory fs.
func NewConfig(fs afero.Fs, path string) (*Config, error) {
	src, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("error parsing config file: %s", diags.Error())
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("error decoding config file: %s", diags.Error())
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the whole configuration, aggregating all endpoint
// errors instead of stopping at the first one.
func (c *Config) Validate() error {
	var result *multierror.Error

	if len(c.Endpoints) == 0 {
		result = multierror.Append(result,
			fmt.Errorf("at least one endpoint block is required"))
	}

	seen := make(map[string]bool, len(c.Endpoints))
	for _, ep := range c.Endpoints {
		if seen[ep.Name] {
			result = multierror.Append(result,
				fmt.Errorf("duplicate endpoint name %q", ep.Name))
		}
		seen[ep.Name] = true

		if err := ep.Validate(); err != nil {
			result = multierror.Append(result,
				fmt.Errorf("endpoint %q: %w", ep.Name, err))
		}
	}

	return result.ErrorOrNil()
}

// Validate checks that an endpoint block is complete.
func (e *Endpoint) Validate() error {
	if err := validation.ValidateStruct(e,
		validation.Field(&e.Name, validation.Required),
		validation.Field(&e.BaseURL, validation.Required),
		validation.Field(&e.SpaceKey, validation.Required),
		validation.Field(&e.RootPageID, validation.Required),
		validation.Field(&e.Email, validation.Required),
		validation.Field(&e.APIToken, validation.Required),
		validation.Field(&e.SharedSecret, validation.Required),
	); err != nil {
		return err
	}

	if e.RemoteTimeout != "" {
		if _, err := time.ParseDuration(e.RemoteTimeout); err != nil {
			return fmt.Errorf("invalid remote_timeout: %w", err)
		}
	}
	return nil
}

// Endpoint returns the endpoint with the given name, or nil when no
// such endpoint is configured.
func (c *Config) Endpoint(name string) *Endpoint {
	for _, ep := range c.Endpoints {
		if ep.Name == name {
			return ep
		}
	}
	return nil
}

// Timeout returns the parsed remote timeout, or zero when unset.
func (e *Endpoint) Timeout() time.Duration {
	if e.RemoteTimeout == "" {
		return 0
	}
	d, _ := time.ParseDuration(e.RemoteTimeout)
	return d
}
