package palette

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/teranos/graphscope/errors"
)

func TestAssign_FirstSeenOrder(t *testing.T) {
	m, err := Assign("Country", []any{"Kenya", "Peru", "Kenya", "Chile"})
	require.NoError(t, err)

	entries := m.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "Kenya", entries[0].Value)
	assert.Equal(t, Kelly[0], entries[0].Color)
	assert.Equal(t, "Peru", entries[1].Value)
	assert.Equal(t, Kelly[1], entries[1].Color)
	assert.Equal(t, "Chile", entries[2].Value)
	assert.Equal(t, Kelly[2], entries[2].Color)
}

func TestAssign_BinaryOffset(t *testing.T) {
	m, err := Assign("edge_sc", []any{"Y", "N"})
	require.NoError(t, err)

	c, ok := m.Color("Y")
	require.True(t, ok)
	assert.Equal(t, Kelly[3], c)
	c, _ = m.Color("N")
	assert.Equal(t, Kelly[4], c)
}

func TestAssign_TypesAreDistinct(t *testing.T) {
	m, err := Assign("mixed", []any{int64(1), "1", nil})
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())

	_, ok := m.Color("1")
	assert.True(t, ok)
	_, ok = m.Color(1.0)
	assert.False(t, ok, "float64 1 was never assigned")
}

func TestAssign_Overflow(t *testing.T) {
	values := make([]any, len(Kelly)+5)
	for i := range values {
		values[i] = fmt.Sprintf("v%d", i)
	}

	m, err := Assign("many", values)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInsufficientPalette))
	assert.Equal(t, len(Kelly), m.Len(), "partial mapping is still returned")

	_, ok := m.Color(fmt.Sprintf("v%d", len(Kelly)))
	assert.False(t, ok, "overflow values stay uncolored")
}

func TestMapping_Legend(t *testing.T) {
	m, err := Assign("City", []any{"Lima", nil, "Quito"})
	require.NoError(t, err)

	legend := m.Legend()
	require.Len(t, legend, 3)
	assert.Equal(t, "Lima", legend[0].Label)
	assert.Equal(t, "(empty)", legend[1].Label)
	assert.Equal(t, Kelly[2], legend[2].Color)
}

func TestMapping_ZeroValue(t *testing.T) {
	var m Mapping
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Legend())
	_, ok := m.Color("x")
	assert.False(t, ok)
}

func TestAssign_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		values := rapid.SliceOf(rapid.SampledFrom([]string{"a", "b", "c", "d", "e", "f"})).Draw(t, "values")
		in := make([]any, len(values))
		for i, v := range values {
			in[i] = v
		}

		m1, err := Assign("attr", in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		m2, _ := Assign("attr", in)

		seen := map[string]bool{}
		used := map[string]bool{}
		for _, v := range values {
			c, ok := m1.Color(v)
			if !ok {
				t.Fatalf("value %q has no color", v)
			}
			if c2, _ := m2.Color(v); c2 != c {
				t.Fatalf("assignment not deterministic for %q: %s vs %s", v, c, c2)
			}
			if !seen[v] && used[c] {
				t.Fatalf("color %s assigned twice", c)
			}
			seen[v] = true
			used[c] = true
		}
		if m1.Len() != len(seen) {
			t.Fatalf("mapping has %d entries, want %d", m1.Len(), len(seen))
		}
	})
}
