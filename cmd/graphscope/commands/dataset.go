package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teranos/graphscope/am"
	"github.com/teranos/graphscope/errors"
	"github.com/teranos/graphscope/graph"
	"github.com/teranos/graphscope/internal/httpclient"
	"github.com/teranos/graphscope/table"
)

// dataFlags are the input overrides shared by server and inspect
type dataFlags struct {
	edges   string
	nodes   string
	options string
}

func (f *dataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.edges, "edges", "", "Edge table CSV (overrides data.edges)")
	cmd.Flags().StringVar(&f.nodes, "nodes", "", "Node table CSV (overrides data.nodes)")
	cmd.Flags().StringVar(&f.options, "options", "", "YAML renderer options file (overrides data.options_file)")
}

// apply copies the flags that were set onto cfg. It runs again on every
// config reload so a file change never drops a command line override.
func (f *dataFlags) apply(cfg *am.Config) {
	if f.edges != "" {
		cfg.Data.Edges = f.edges
	}
	if f.nodes != "" {
		cfg.Data.Nodes = f.nodes
	}
	if f.options != "" {
		cfg.Data.OptionsFile = f.options
	}
}

// loadDataset reads the configured tables, local or remote, and builds the base dataset
func loadDataset(ctx context.Context, cfg *am.Config, log *zap.SugaredLogger) (*graph.Dataset, error) {
	client := httpclient.NewSaferClient(time.Duration(cfg.Data.FetchTimeout)*time.Second, httpclient.Options{
		AllowPrivate: cfg.Data.AllowPrivateHosts,
	})

	edges, err := table.Load(ctx, cfg.Data.Edges, client)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read edge table")
	}

	var nodes *table.Table
	if cfg.Data.Nodes != "" {
		nodes, err = table.Load(ctx, cfg.Data.Nodes, client)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read node table")
		}
	}

	ds, err := graph.NewBuilder(cfg.BuildOptions(), log).Build(edges, nodes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build dataset")
	}
	return ds, nil
}
