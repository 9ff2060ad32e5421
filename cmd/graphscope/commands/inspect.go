package commands

import (
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/graphscope/am"
	"github.com/teranos/graphscope/errors"
	"github.com/teranos/graphscope/graph"
	"github.com/teranos/graphscope/logger"
)

// InspectCmd summarizes a dataset the way the dashboard will see it
var InspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Summarize a dataset without starting the server",
	Long: `Build the base dataset from the configured tables and print what the
dashboard derives from it: node and edge counts, the attributes offered for
coloring and sizing, and the numeric ranges used for scaling.

Examples:
  graphscope inspect --edges edges.csv --nodes nodes.csv
  graphscope inspect --format json`,
	RunE: runInspect,
}

var (
	inspectData   dataFlags
	inspectFormat string
)

func init() {
	inspectData.register(InspectCmd)
	InspectCmd.Flags().StringVar(&inspectFormat, "format", "table", "Output format: table, json")
}

// inspectReport is the json form of the summary
type inspectReport struct {
	Nodes    int               `json:"nodes"`
	Edges    int               `json:"edges"`
	Features graph.Features    `json:"features"`
	Scaling  graph.ScalingVars `json:"scaling"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	inspectData.apply(cfg)
	if err := cfg.ValidateForServe(); err != nil {
		return err
	}

	ds, err := loadDataset(cmd.Context(), cfg, logger.ComponentLogger("inspect"))
	if err != nil {
		return err
	}

	nodes, edges := ds.Len()
	report := inspectReport{
		Nodes:    nodes,
		Edges:    edges,
		Features: ds.Features(),
		Scaling:  ds.Scaling(),
	}

	switch inspectFormat {
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal report")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	case "table":
		return printReport(report)
	default:
		return fmt.Errorf("unsupported format: %s (supported: table, json)", inspectFormat)
	}
}

func printReport(r inspectReport) error {
	pterm.DefaultHeader.WithFullWidth().Printf("Dataset: %d nodes, %d edges", r.Nodes, r.Edges)
	pterm.Println()

	features := pterm.TableData{
		{"Entity", "Categorical (color)", "Numerical (size)"},
		{"nodes", strings.Join(r.Features.NodeCategorical, ", "), strings.Join(r.Features.NodeNumerical, ", ")},
		{"edges", strings.Join(r.Features.EdgeCategorical, ", "), strings.Join(r.Features.EdgeNumerical, ", ")},
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(features).Render(); err != nil {
		return err
	}
	pterm.Println()

	scaling := pterm.TableData{{"Entity", "Attribute", "Min", "Max", "Sizable"}}
	scaling = appendBounds(scaling, "nodes", r.Scaling.Nodes)
	scaling = appendBounds(scaling, "edges", r.Scaling.Edges)
	if len(scaling) == 1 {
		pterm.Info.Println("No numeric attributes")
		return nil
	}
	return pterm.DefaultTable.WithHasHeader().WithData(scaling).Render()
}

func appendBounds(data pterm.TableData, entity string, bounds map[string]graph.Bounds) pterm.TableData {
	names := make([]string, 0, len(bounds))
	for name := range bounds {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		b := bounds[name]
		sizable := "yes"
		if !b.Defined() {
			sizable = "no (flat range)"
		}
		data = append(data, []string{entity, name, fmt.Sprintf("%g", b.Min), fmt.Sprintf("%g", b.Max), sizable})
	}
	return data
}
