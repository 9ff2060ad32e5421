package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teranos/graphscope/am"
	"github.com/teranos/graphscope/graph"
)

const edgesCSV = `from,to,year-factor,edgetype,edge_sc,weight
1,2,2005,LMHC,N,1
2,3,2010,LMHC,N,4
3,3,2012,LMLM,Y,2
1,3,2020,LMLM,N,3
`

const nodesCSV = `id,Country,City,Country_type,degree
1,Kenya,Nairobi,LMIC,3
2,France,Paris,HIC,5
3,Peru,Lima,LMIC,7
4,Chile,Santiago,LMIC,9
`

// isolate points HOME and the working directory at an empty temp dir so no
// real config file leaks into the test
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	am.Reset()
	t.Cleanup(am.Reset)
	return dir
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDataFlags_Apply(t *testing.T) {
	cfg := am.DefaultConfig()
	cfg.Data.Edges = "config-edges.csv"
	cfg.Data.Nodes = "config-nodes.csv"

	f := dataFlags{edges: "flag-edges.csv", options: "vis.yaml"}
	f.apply(cfg)

	assert.Equal(t, "flag-edges.csv", cfg.Data.Edges)
	assert.Equal(t, "config-nodes.csv", cfg.Data.Nodes, "unset flags keep the config value")
	assert.Equal(t, "vis.yaml", cfg.Data.OptionsFile)
}

func TestServerVerbosity(t *testing.T) {
	cfg := am.DefaultConfig()
	assert.Equal(t, 1, serverVerbosity(0, cfg), "server output defaults to info")

	cfg.Log.Verbosity = 3
	assert.Equal(t, 3, serverVerbosity(0, cfg))
	assert.Equal(t, 2, serverVerbosity(2, cfg), "the -v count wins")
}

func TestLoadDataset(t *testing.T) {
	dir := t.TempDir()
	cfg := am.DefaultConfig()
	cfg.Data.Edges = writeFile(t, filepath.Join(dir, "edges.csv"), edgesCSV)

	ds, err := loadDataset(context.Background(), cfg, zap.NewNop().Sugar())
	require.NoError(t, err)
	nodes, edges := ds.Len()
	assert.Equal(t, 3, nodes, "nodes synthesized from edge endpoints")
	assert.Equal(t, 4, edges)

	cfg.Data.Nodes = writeFile(t, filepath.Join(dir, "nodes.csv"), nodesCSV)
	ds, err = loadDataset(context.Background(), cfg, zap.NewNop().Sugar())
	require.NoError(t, err)
	nodes, _ = ds.Len()
	assert.Equal(t, 4, nodes)

	cfg.Data.Edges = filepath.Join(dir, "missing.csv")
	_, err = loadDataset(context.Background(), cfg, zap.NewNop().Sugar())
	assert.Error(t, err)
}

func TestInspect_JSON(t *testing.T) {
	dir := isolate(t)
	inspectData = dataFlags{
		edges: writeFile(t, filepath.Join(dir, "edges.csv"), edgesCSV),
		nodes: writeFile(t, filepath.Join(dir, "nodes.csv"), nodesCSV),
	}
	inspectFormat = "json"
	t.Cleanup(func() { inspectData, inspectFormat = dataFlags{}, "table" })

	var out bytes.Buffer
	InspectCmd.SetOut(&out)
	require.NoError(t, runInspect(InspectCmd, nil))

	var report inspectReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, 4, report.Nodes)
	assert.Equal(t, 4, report.Edges)
	assert.Equal(t, graph.NoneOption, report.Features.NodeNumerical[0])
	assert.Equal(t, graph.Bounds{Min: 3, Max: 9}, report.Scaling.Nodes["degree"])
}

func TestInspect_RequiresEdges(t *testing.T) {
	isolate(t)
	inspectData = dataFlags{}

	err := runInspect(InspectCmd, nil)
	assert.Error(t, err)
}

func TestAmInit(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "conf", "graphscope.toml")

	initForce = false
	require.NoError(t, runAmInit(amInitCmd, []string{path}))

	cfg, err := am.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, am.DefaultConfig().Dashboard, cfg.Dashboard)

	assert.Error(t, runAmInit(amInitCmd, []string{path}), "existing file needs --force")

	initForce = true
	t.Cleanup(func() { initForce = false })
	require.NoError(t, runAmInit(amInitCmd, []string{path}))
	assert.FileExists(t, path+".back1")
}

func TestAmShowAndGet(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, am.ConfigFileName), "[server]\nport = 9300\n")

	var out bytes.Buffer
	amShowCmd.SetOut(&out)
	configFormat = "toml"
	require.NoError(t, runAmShow(amShowCmd, nil))
	assert.Contains(t, out.String(), "port = 9300")

	out.Reset()
	configFormat = "bogus"
	t.Cleanup(func() { configFormat = "toml" })
	assert.Error(t, runAmShow(amShowCmd, nil))

	out.Reset()
	amGetCmd.SetOut(&out)
	require.NoError(t, runAmGet(amGetCmd, []string{"server.port"}))
	assert.Equal(t, "9300\n", out.String())

	assert.Error(t, runAmGet(amGetCmd, []string{"server.nope"}))
}

func TestAmWhere(t *testing.T) {
	dir := isolate(t)
	project := writeFile(t, filepath.Join(dir, am.ConfigFileName), "[log]\nverbosity = 2\n")
	t.Setenv("GRAPHSCOPE_DATA_EDGES", "edges.csv")

	var out bytes.Buffer
	amWhereCmd.SetOut(&out)
	require.NoError(t, runAmWhere(amWhereCmd, nil))

	text := out.String()
	assert.Contains(t, text, "project: 1 settings from "+project)
	assert.Contains(t, text, "log.verbosity = 2")
	assert.Contains(t, text, "data.edges = edges.csv (GRAPHSCOPE_DATA_EDGES)")
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	VersionCmd.SetOut(&out)
	VersionCmd.Run(VersionCmd, nil)
	assert.Contains(t, out.String(), "graphscope dev")
}
