package doctree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalk_DocumentOrder(t *testing.T) {
	tree := NewRoot().Append(
		Other("Paragraph", Text("a"), Link("u", Text("b")), InlineCode("c")),
		Code("d"),
	)

	var seen []string
	Walk(tree, func(n *Node) {
		switch {
		case n.HasPayload():
			seen = append(seen, n.Value)
		case n.Kind == KindLink:
			seen = append(seen, "link:"+n.URL)
		}
	})

	assert.Equal(t, []string{"a", "link:u", "b", "c", "d"}, seen)
}

func TestWalk_NilTree(t *testing.T) {
	calls := 0
	Walk(nil, func(*Node) { calls++ })
	assert.Zero(t, calls)
}

func TestCountAndKinds(t *testing.T) {
	tree := NewRoot().Append(Other("Paragraph", Text("x")))
	require.Equal(t, 3, Count(tree))
	assert.Equal(t, []Kind{KindRoot, KindOther, KindText}, Kinds(tree))
}

func TestSpanValid(t *testing.T) {
	assert.False(t, Span{}.Valid())
	assert.False(t, Span{Start: 3, Stop: 3}.Valid())
	assert.True(t, Span{Start: 0, Stop: 1}.Valid())
}
