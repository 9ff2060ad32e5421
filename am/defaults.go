package am

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/teranos/graphscope/graph"
	"github.com/teranos/graphscope/internal/util"
	"github.com/teranos/graphscope/pipeline"
)

// DefaultConfig returns the built-in configuration. The column roles and
// dashboard constants match the collaboration datasets graphscope was built for.
func DefaultConfig() *Config {
	build := graph.DefaultBuildOptions()
	stages := pipeline.DefaultConfig()

	return &Config{
		Server: ServerConfig{
			Host: DefaultHost,
			Port: util.Ptr(DefaultServerPort),
			AllowedOrigins: []string{
				"http://localhost",
				"https://localhost",
				"http://127.0.0.1",
				"https://127.0.0.1",
			},
			MaxClients:   64,
			MessageRate:  20,
			MessageBurst: 40,
			PingInterval: 30,
		},
		Data: DataConfig{
			Directed:     true,
			FetchTimeout: 30,
			Columns: ColumnsConfig{
				Discriminant:  build.Discriminant,
				EdgeType:      stages.EdgeTypeAttr,
				Region:        stages.RegionAttr,
				Label:         build.LabelColumns,
				TooltipHeader: build.TooltipHeader,
				TooltipBody:   build.TooltipBody,
				Shape:         build.ShapeColumn,
				SquareValue:   build.SquareValue,
			},
		},
		Dashboard: DashboardConfig{
			BaseYear:    stages.BaseYear,
			YearSpan:    stages.YearSpan,
			ScaleFactor: stages.ScaleFactor,
			EdgeTypes:   stages.EdgeTypes,
			Regions: []RegionOption{
				{Label: pipeline.RegionCrossCountry, Value: stages.Regions[pipeline.RegionCrossCountry]},
				{Label: pipeline.RegionDomestic, Value: stages.Regions[pipeline.RegionDomestic]},
			},
		},
	}
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()

	// Server defaults
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", *d.Server.Port)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.max_clients", d.Server.MaxClients)
	v.SetDefault("server.message_rate", d.Server.MessageRate)
	v.SetDefault("server.message_burst", d.Server.MessageBurst)
	v.SetDefault("server.ping_interval_secs", d.Server.PingInterval)

	// Data defaults (no default input paths)
	v.SetDefault("data.edges", "")
	v.SetDefault("data.nodes", "")
	v.SetDefault("data.directed", d.Data.Directed)
	v.SetDefault("data.options_file", "")
	v.SetDefault("data.fetch_timeout_secs", d.Data.FetchTimeout)
	v.SetDefault("data.allow_private_hosts", d.Data.AllowPrivateHosts)
	v.SetDefault("data.columns.discriminant", d.Data.Columns.Discriminant)
	v.SetDefault("data.columns.edge_type", d.Data.Columns.EdgeType)
	v.SetDefault("data.columns.region", d.Data.Columns.Region)
	v.SetDefault("data.columns.label", d.Data.Columns.Label)
	v.SetDefault("data.columns.tooltip_header", d.Data.Columns.TooltipHeader)
	v.SetDefault("data.columns.tooltip_body", d.Data.Columns.TooltipBody)
	v.SetDefault("data.columns.shape", d.Data.Columns.Shape)
	v.SetDefault("data.columns.square_value", d.Data.Columns.SquareValue)

	// Dashboard defaults
	v.SetDefault("dashboard.base_year", d.Dashboard.BaseYear)
	v.SetDefault("dashboard.year_span", d.Dashboard.YearSpan)
	v.SetDefault("dashboard.scale_factor", d.Dashboard.ScaleFactor)
	v.SetDefault("dashboard.edge_types", d.Dashboard.EdgeTypes)
	regions := make([]map[string]interface{}, len(d.Dashboard.Regions))
	for i, r := range d.Dashboard.Regions {
		regions[i] = map[string]interface{}{"label": r.Label, "value": r.Value}
	}
	v.SetDefault("dashboard.regions", regions)

	// Log defaults
	v.SetDefault("log.json", false)
	v.SetDefault("log.verbosity", 0)
}

// BindEnvVars explicitly binds the settings most often overridden per run
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("data.edges", "GRAPHSCOPE_DATA_EDGES")
	v.BindEnv("data.nodes", "GRAPHSCOPE_DATA_NODES")
	v.BindEnv("server.port", "GRAPHSCOPE_SERVER_PORT", "GRAPHSCOPE_PORT")
}

// GetServerPort returns the configured port, or DefaultServerPort
func (c *Config) GetServerPort() int {
	if c.Server.Port == nil {
		return DefaultServerPort
	}
	return *c.Server.Port
}

// GetServerAddress returns host:port for the listener
func (c *Config) GetServerAddress() string {
	host := c.Server.Host
	if host == "" {
		host = DefaultHost
	}
	return fmt.Sprintf("%s:%d", host, c.GetServerPort())
}

// GetServerAllowedOrigins returns the allowed websocket origins
func (c *Config) GetServerAllowedOrigins() []string {
	if len(c.Server.AllowedOrigins) == 0 {
		return DefaultConfig().Server.AllowedOrigins
	}
	return c.Server.AllowedOrigins
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Data: {Edges: %s, Nodes: %s}, Server: %s, Dashboard: {BaseYear: %d, YearSpan: %d}}",
		c.Data.Edges, c.Data.Nodes, c.GetServerAddress(), c.Dashboard.BaseYear, c.Dashboard.YearSpan)
}
