package commands

import (
	"fmt"
	"path/filepath"
	"sort"

	json "github.com/goccy/go-json"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/graphscope/am"
	"github.com/teranos/graphscope/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage graphscope configuration",
	Long: `am - Manage graphscope configuration ("I am")

Display and manage graphscope configuration settings.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (GRAPHSCOPE_* prefix)
3. Project config (./graphscope.toml or ./am.toml, searched up the tree)
4. User config (~/.graphscope/graphscope.toml)
5. System config (/etc/graphscope/graphscope.toml)
6. Default values

Examples:
  graphscope am show                    # Show current configuration
  graphscope am show --format json      # Show configuration in JSON format
  graphscope am get server.port         # Get specific config value
  graphscope am validate                # Validate current configuration
  graphscope am init                    # Write ~/.graphscope/graphscope.toml`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current graphscope configuration from all sources",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., server.port, dashboard.year_span)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Long:  "Validate that the current configuration is complete enough to serve a dashboard",
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	Long: `Show the configuration cascade and which source supplied each setting.

Settings are grouped by the file or layer that last set them.`,
	RunE: runAmWhere,
}

var amInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration",
	Long: `Write the built-in defaults as TOML, to ~/.graphscope/graphscope.toml unless
a path is given. An existing file is kept unless --force is set, in which case
it is rotated into .back1, .back2 and .back3.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAmInit,
}

var (
	configFormat string
	initForce    bool
)

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")
	amInitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
	AmCmd.AddCommand(amInitCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	out := cmd.OutOrStdout()
	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Fprintln(out, string(data))

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(out, "# graphscope configuration\n%s", string(data))

	case "toml":
		data, err := am.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "# graphscope configuration\n%s", string(data))

	default:
		return fmt.Errorf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}

	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	if _, err := am.Load(); err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if !am.GetViper().IsSet(key) {
		return fmt.Errorf("configuration key %q not found", key)
	}

	fmt.Fprintln(cmd.OutOrStdout(), am.Get(key))
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	if err := cfg.ValidateForServe(); err != nil {
		for _, hint := range errors.GetAllHints(err) {
			pterm.Info.Println(hint)
		}
		return errors.Wrap(err, "configuration validation failed")
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration is valid")
	return nil
}

func runAmInit(cmd *cobra.Command, args []string) error {
	path := am.UserConfigPath()
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return errors.WithHint(errors.New("no home directory to write the user config to"),
			"pass an explicit path: graphscope am init ./graphscope.toml")
	}

	if err := am.WriteDefault(path, initForce); err != nil {
		for _, hint := range errors.GetAllHints(err) {
			pterm.Info.Println(hint)
		}
		return err
	}

	pterm.Success.Printf("Wrote default configuration to %s\n", path)
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	intro, err := am.GetConfigIntrospection()
	if err != nil {
		return errors.Wrap(err, "failed to get config introspection")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration cascade (later overrides earlier):")
	fmt.Fprintln(out, "  1. [DEFAULT]  Built-in defaults")
	fmt.Fprintf(out, "  2. [SYSTEM]   %s\n", am.SystemConfigPath)
	fmt.Fprintln(out, "  3. [USER]     ~/.graphscope/graphscope.toml")
	fmt.Fprintln(out, "  4. [PROJECT]  ./graphscope.toml or ./am.toml (searches up directories)")
	fmt.Fprintln(out, "  5. [ENV]      GRAPHSCOPE_* environment variables")
	fmt.Fprintln(out)

	if len(intro.ConfigFiles) == 0 {
		fmt.Fprintln(out, "No config files found.")
	} else {
		fmt.Fprintln(out, "Config files found:")
		for _, f := range intro.ConfigFiles {
			fmt.Fprintf(out, "  %s\n", f)
		}
	}
	fmt.Fprintln(out)

	type fileGroup struct {
		source   am.ConfigSource
		path     string
		settings []am.SettingInfo
	}

	// Defaults and env vars have no file, so they group under the source name
	groups := make(map[string]*fileGroup)
	for _, setting := range intro.Settings {
		fromFile := setting.Source != am.SourceDefault && setting.Source != am.SourceEnvironment
		key := string(setting.Source)
		if fromFile {
			key = setting.SourcePath
		}
		group, ok := groups[key]
		if !ok {
			group = &fileGroup{source: setting.Source}
			if fromFile {
				group.path = setting.SourcePath
			}
			groups[key] = group
		}
		group.settings = append(group.settings, setting)
	}

	sourceOrder := []am.ConfigSource{
		am.SourceDefault,
		am.SourceSystem,
		am.SourceUser,
		am.SourceProject,
		am.SourceEnvironment,
	}

	fmt.Fprintln(out, "Active configuration:")
	for _, source := range sourceOrder {
		var ordered []*fileGroup
		for _, group := range groups {
			if group.source == source {
				ordered = append(ordered, group)
			}
		}
		sort.Slice(ordered, func(i, j int) bool {
			return filepath.Base(ordered[i].path) < filepath.Base(ordered[j].path)
		})

		for _, group := range ordered {
			switch {
			case group.path != "":
				fmt.Fprintf(out, "\n%s: %d settings from %s\n", source, len(group.settings), group.path)
			case source == am.SourceEnvironment:
				fmt.Fprintf(out, "\n%s: %d settings from environment variables\n", source, len(group.settings))
			default:
				fmt.Fprintf(out, "\n%s: %d settings\n", source, len(group.settings))
			}

			for _, setting := range group.settings {
				valueStr := fmt.Sprintf("%v", setting.Value)
				if len(valueStr) > 50 {
					valueStr = valueStr[:47] + "..."
				}
				if setting.Source == am.SourceEnvironment {
					fmt.Fprintf(out, "  %s = %s (%s)\n", setting.Key, valueStr, setting.SourcePath)
				} else {
					fmt.Fprintf(out, "  %s = %s\n", setting.Key, valueStr)
				}
			}
		}
	}

	return nil
}
