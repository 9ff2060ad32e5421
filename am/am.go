// Package am ("I am") loads graphscope configuration from TOML files
// and GRAPHSCOPE_* environment variables.
package am

import (
	"github.com/teranos/graphscope/graph"
	"github.com/teranos/graphscope/pipeline"
)

// Config represents the graphscope configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server" toml:"server"`
	Data      DataConfig      `mapstructure:"data" toml:"data"`
	Dashboard DashboardConfig `mapstructure:"dashboard" toml:"dashboard"`
	Log       LogConfig       `mapstructure:"log" toml:"log"`
}

// ServerConfig configures the dashboard web server
type ServerConfig struct {
	Host           string   `mapstructure:"host" toml:"host"`
	Port           *int     `mapstructure:"port" toml:"port"` // nil = default 8060, 0 is invalid (omit for default)
	AllowedOrigins []string `mapstructure:"allowed_origins" toml:"allowed_origins"`
	MaxClients     int      `mapstructure:"max_clients" toml:"max_clients"`         // Concurrent websocket sessions (0 = unlimited)
	MessageRate    float64  `mapstructure:"message_rate" toml:"message_rate"`       // Control messages per second per client
	MessageBurst   int      `mapstructure:"message_burst" toml:"message_burst"`     // Burst allowance on top of MessageRate
	PingInterval   int      `mapstructure:"ping_interval_secs" toml:"ping_interval_secs"`
}

// DataConfig points at the input tables and names their column roles
type DataConfig struct {
	Edges             string        `mapstructure:"edges" toml:"edges"`                             // Edge CSV path or http(s) URL (required)
	Nodes             string        `mapstructure:"nodes" toml:"nodes"`                             // Node CSV path or http(s) URL (optional)
	Directed          bool          `mapstructure:"directed" toml:"directed"`                       // Draw arrowheads
	OptionsFile       string        `mapstructure:"options_file" toml:"options_file"`               // YAML renderer option overrides
	FetchTimeout      int           `mapstructure:"fetch_timeout_secs" toml:"fetch_timeout_secs"`   // Per-table download timeout
	AllowPrivateHosts bool          `mapstructure:"allow_private_hosts" toml:"allow_private_hosts"` // Permit URLs on loopback or private networks
	Columns           ColumnsConfig `mapstructure:"columns" toml:"columns"`
}

// ColumnsConfig maps dataset columns to the roles the dashboard derives fields from
type ColumnsConfig struct {
	Discriminant  string   `mapstructure:"discriminant" toml:"discriminant"`
	EdgeType      string   `mapstructure:"edge_type" toml:"edge_type"`
	Region        string   `mapstructure:"region" toml:"region"`
	Label         []string `mapstructure:"label" toml:"label"`
	TooltipHeader string   `mapstructure:"tooltip_header" toml:"tooltip_header"`
	TooltipBody   string   `mapstructure:"tooltip_body" toml:"tooltip_body"`
	Shape         string   `mapstructure:"shape" toml:"shape"`
	SquareValue   string   `mapstructure:"square_value" toml:"square_value"`
}

// DashboardConfig configures the control options and stage constants
type DashboardConfig struct {
	BaseYear    int            `mapstructure:"base_year" toml:"base_year"`
	YearSpan    int            `mapstructure:"year_span" toml:"year_span"`
	ScaleFactor float64        `mapstructure:"scale_factor" toml:"scale_factor"`
	EdgeTypes   []string       `mapstructure:"edge_types" toml:"edge_types"`
	Regions     []RegionOption `mapstructure:"regions" toml:"regions"`
}

// RegionOption is one entry of the same-region checklist.
// Region labels are stored as values rather than keys since viper lowercases keys.
type RegionOption struct {
	Label string `mapstructure:"label" toml:"label"`
	Value string `mapstructure:"value" toml:"value"`
}

// LogConfig configures logging
type LogConfig struct {
	JSON      bool `mapstructure:"json" toml:"json"`
	Verbosity int  `mapstructure:"verbosity" toml:"verbosity"`
}

// Server port constants
const (
	DefaultServerPort = 8060
	DefaultHost       = "127.0.0.1"
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)

// BuildOptions returns the dataset build options for the configured columns
func (c *Config) BuildOptions() graph.BuildOptions {
	return graph.BuildOptions{
		Discriminant:  c.Data.Columns.Discriminant,
		LabelColumns:  c.Data.Columns.Label,
		TooltipHeader: c.Data.Columns.TooltipHeader,
		TooltipBody:   c.Data.Columns.TooltipBody,
		ShapeColumn:   c.Data.Columns.Shape,
		SquareValue:   c.Data.Columns.SquareValue,
		BaseYear:      c.Dashboard.BaseYear,
	}
}

// PipelineConfig returns the stage configuration
func (c *Config) PipelineConfig() pipeline.Config {
	regions := make(map[string]string, len(c.Dashboard.Regions))
	for _, r := range c.Dashboard.Regions {
		regions[r.Label] = r.Value
	}
	return pipeline.Config{
		EdgeTypeAttr: c.Data.Columns.EdgeType,
		EdgeTypes:    c.Dashboard.EdgeTypes,
		RegionAttr:   c.Data.Columns.Region,
		Regions:      regions,
		Discriminant: c.Data.Columns.Discriminant,
		BaseYear:     c.Dashboard.BaseYear,
		YearSpan:     c.Dashboard.YearSpan,
		ScaleFactor:  c.Dashboard.ScaleFactor,
	}
}
