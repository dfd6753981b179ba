package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeYAML_EmptyMap_ReturnsEmpty(t *testing.T) {
	out, err := SerializeYAML(map[string]any{}, Style{Newline: "\n"})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestSerializeYAML_DeterministicOrder(t *testing.T) {
	fields := map[string]any{"b": "two", "a": "one", "c": 3}

	out1, err := SerializeYAML(fields, Style{})
	require.NoError(t, err)
	out2, err := SerializeYAML(fields, Style{})
	require.NoError(t, err)
	require.Equal(t, string(out1), string(out2))
	require.Equal(t, "a: one\nb: two\nc: 3\n", string(out1))
}

func TestSerializeYAML_NewlineStyle_CRLF(t *testing.T) {
	out, err := SerializeYAML(map[string]any{"a": "one"}, Style{Newline: "\r\n"})
	require.NoError(t, err)
	require.Equal(t, "a: one\r\n", string(out))
}

func TestSerializeYAML_CategoryShape(t *testing.T) {
	fields := map[string]any{
		"label":    "Reference",
		"position": 30,
		"customProps": map[string]any{
			"description": "All the gadgets",
		},
		"link": map[string]any{
			"type":  "generated-index",
			"title": "Reference",
			"slug":  "reference/",
		},
	}

	out, err := SerializeYAML(fields, Style{})
	require.NoError(t, err)
	require.Equal(t, "customProps:\n  description: All the gadgets\n"+
		"label: Reference\n"+
		"link:\n  slug: reference/\n  title: Reference\n  type: generated-index\n"+
		"position: 30\n", string(out))
}

func TestSerializeYAML_Sequences(t *testing.T) {
	out, err := SerializeYAML(map[string]any{
		"tags":  []string{"a", "b"},
		"mixed": []any{1, "x", true, nil},
	}, Style{})
	require.NoError(t, err)
	require.Equal(t, "mixed:\n  - 1\n  - x\n  - true\n  - null\ntags:\n  - a\n  - b\n", string(out))
}
