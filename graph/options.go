package graph

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/teranos/graphscope/errors"
)

// Options is the renderer's display configuration, passed through untouched
type Options map[string]any

// DefaultOptions returns the renderer options the dashboard starts with
func DefaultOptions(directed bool) Options {
	return Options{
		"height": "600px",
		"width":  "100%",
		"interaction": map[string]any{
			"hover": true,
		},
		"physics": map[string]any{
			"stabilization": map[string]any{
				"iterations": 100,
			},
		},
		"edges": map[string]any{
			"arrows": map[string]any{
				"to": directed,
			},
		},
	}
}

// LoadOptions reads a YAML overrides file and deep-merges it over the defaults.
// An empty path returns the defaults.
func LoadOptions(path string, directed bool) (Options, error) {
	opts := DefaultOptions(directed)
	if path == "" {
		return opts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read options file %s", path)
	}

	var overrides map[string]any
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, errors.Wrapf(err, "failed to parse options file %s", path)
	}
	return opts.Merge(overrides), nil
}

// Merge returns a copy of o with overrides applied recursively
func (o Options) Merge(overrides map[string]any) Options {
	return Options(mergeMaps(o, overrides))
}

func mergeMaps(base, overrides map[string]any) map[string]any {
	out := make(map[string]any, len(base))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overrides {
		ov, ok := v.(map[string]any)
		if !ok {
			out[k] = v
			continue
		}
		bv, ok := out[k].(map[string]any)
		if !ok {
			bv = map[string]any{}
		}
		out[k] = mergeMaps(bv, ov)
	}
	return out
}
