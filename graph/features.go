package graph

import (
	"github.com/teranos/graphscope/table"
)

// NoneOption is the dropdown entry that turns coloring or sizing off
const NoneOption = "None"

// Features lists the attributes the dashboard offers for coloring and sizing.
// Each list starts with NoneOption.
type Features struct {
	NodeCategorical []string `json:"node_categorical"`
	NodeNumerical   []string `json:"node_numerical"`
	EdgeCategorical []string `json:"edge_categorical"`
	EdgeNumerical   []string `json:"edge_numerical"`
}

var (
	nodeCategoricalBlacklist = map[string]bool{KeyShape: true, KeyLabel: true, KeyID: true}
	edgeCategoricalBlacklist = map[string]bool{KeyColor: true, KeyFrom: true, KeyTo: true, KeyID: true, "year": true}
	numericalBlacklist       = map[string]bool{KeySize: true, KeyWidth: true, KeyID: true, KeyFrom: true, KeyTo: true}
)

func discoverFeatures(nodes, edges *table.Table) Features {
	return Features{
		NodeCategorical: categorical(nodes, nodeCategoricalBlacklist),
		NodeNumerical:   numerical(nodes),
		EdgeCategorical: categorical(edges, edgeCategoricalBlacklist),
		EdgeNumerical:   numerical(edges),
	}
}

// categorical picks string columns with few enough distinct values to color by
func categorical(t *table.Table, blacklist map[string]bool) []string {
	out := []string{NoneOption}
	if t == nil {
		return out
	}
	for _, col := range t.Columns() {
		if col.Kind != table.KindString || blacklist[col.Name] {
			continue
		}
		if t.Unique(col.Name) <= MaxCategoricalValues {
			out = append(out, col.Name)
		}
	}
	return out
}

func numerical(t *table.Table) []string {
	out := []string{NoneOption}
	if t == nil {
		return out
	}
	for _, col := range t.Columns() {
		if col.Kind.Numeric() && !numericalBlacklist[col.Name] {
			out = append(out, col.Name)
		}
	}
	return out
}
