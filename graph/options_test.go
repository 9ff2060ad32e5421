package graph

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions(true)
	assert.Equal(t, "600px", opts["height"])
	assert.Equal(t, "100%", opts["width"])

	arrows := opts["edges"].(map[string]any)["arrows"].(map[string]any)
	assert.Equal(t, true, arrows["to"])

	undirected := DefaultOptions(false)["edges"].(map[string]any)["arrows"].(map[string]any)
	assert.Equal(t, false, undirected["to"])
}

func TestLoadOptions_Merge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
height: 900px
physics:
  stabilization:
    iterations: 250
  enabled: false
`), 0o644))

	opts, err := LoadOptions(path, false)
	require.NoError(t, err)

	assert.Equal(t, "900px", opts["height"])
	assert.Equal(t, "100%", opts["width"], "untouched keys keep defaults")

	physics := opts["physics"].(map[string]any)
	assert.Equal(t, false, physics["enabled"])
	assert.Equal(t, 250, physics["stabilization"].(map[string]any)["iterations"])
	assert.Equal(t, true, opts["interaction"].(map[string]any)["hover"])
}

func TestLoadOptions_Errors(t *testing.T) {
	_, err := LoadOptions(filepath.Join(t.TempDir(), "missing.yaml"), false)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("height: [unclosed"), 0o644))
	_, err = LoadOptions(path, false)
	assert.Error(t, err)

	opts, err := LoadOptions("", true)
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(true), opts)
}

func TestNodeTooltip(t *testing.T) {
	short := nodeTooltip("p1", "Smith J, Doe A")
	assert.Equal(t, "p1<br>Smith J, Doe A", short)

	authors := make([]string, 20)
	for i := range authors {
		authors[i] = "Author Number" + string(rune('A'+i))
	}
	long := nodeTooltip("p2", strings.Join(authors, ", "))

	lines := strings.Split(long, "<br>")
	assert.Equal(t, "p2", lines[0])
	assert.Greater(t, len(lines), 3, "long author lists are wrapped")
	for _, line := range lines[1:] {
		assert.LessOrEqual(t, len(line), 80)
	}
}
