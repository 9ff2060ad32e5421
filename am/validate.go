package am

import (
	"math"

	"github.com/teranos/graphscope/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Server port: 0 is invalid (omit for default), negative is invalid
	if c.Server.Port != nil && *c.Server.Port == 0 {
		return errors.Newf("server.port cannot be 0 (omit for default port %d)", DefaultServerPort)
	}
	if c.Server.Port != nil && (*c.Server.Port < 0 || *c.Server.Port > math.MaxUint16) {
		return errors.Newf("server.port must be between 1 and 65535, got %d", *c.Server.Port)
	}

	// Max clients: 0 = unlimited, negative = invalid
	if c.Server.MaxClients < 0 {
		return errors.Newf("server.max_clients must be >= 0, got %d", c.Server.MaxClients)
	}
	if c.Server.MessageRate <= 0 {
		return errors.Newf("server.message_rate must be > 0, got %f", c.Server.MessageRate)
	}
	if c.Server.MessageBurst < 1 {
		return errors.Newf("server.message_burst must be >= 1, got %d", c.Server.MessageBurst)
	}
	if c.Server.PingInterval <= 0 {
		return errors.Newf("server.ping_interval_secs must be > 0, got %d", c.Server.PingInterval)
	}

	if c.Data.FetchTimeout <= 0 {
		return errors.Newf("data.fetch_timeout_secs must be > 0, got %d", c.Data.FetchTimeout)
	}

	// Year slider: the span must be positive so [0, span] is a real range
	if c.Dashboard.YearSpan <= 0 {
		return errors.Newf("dashboard.year_span must be > 0, got %d", c.Dashboard.YearSpan)
	}
	if c.Dashboard.ScaleFactor <= 0 {
		return errors.Newf("dashboard.scale_factor must be > 0, got %f", c.Dashboard.ScaleFactor)
	}
	if len(c.Dashboard.EdgeTypes) == 0 {
		return errors.New("dashboard.edge_types cannot be empty")
	}

	seen := make(map[string]bool, len(c.Dashboard.Regions))
	for i, r := range c.Dashboard.Regions {
		if r.Label == "" {
			return errors.Newf("dashboard.regions[%d].label cannot be empty", i)
		}
		if seen[r.Label] {
			return errors.Newf("dashboard.regions: duplicate label %q", r.Label)
		}
		seen[r.Label] = true
	}

	if c.Log.Verbosity < 0 {
		return errors.Newf("log.verbosity must be >= 0, got %d", c.Log.Verbosity)
	}

	return nil
}

// ValidateForServe additionally requires the inputs a running dashboard needs
func (c *Config) ValidateForServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Data.Edges == "" {
		return errors.WithHint(
			errors.New("data.edges is not set"),
			"pass --edges or set [data] edges in graphscope.toml")
	}
	return nil
}
