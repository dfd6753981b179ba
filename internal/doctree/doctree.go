// Package doctree defines the Document Tree that content transforms operate on.
//
// A tree is produced from a parsed Markdown/MDX body (see internal/markdown)
// and consumed by whatever persists the result. Transforms mutate payload
// fields in place; they never add, remove or reorder nodes.
package doctree

// Kind tags a node with the role it plays for content transforms.
type Kind string

const (
	KindRoot       Kind = "root"
	KindText       Kind = "text"
	KindInlineCode Kind = "inlineCode"
	KindCode       Kind = "code"
	KindLink       Kind = "link"
	KindOther      Kind = "other"
)

// Span is a half-open byte range [Start, Stop) into the source a node was
// parsed from. The zero Span means the payload has no addressable source.
type Span struct {
	Start int
	Stop  int
}

// Valid reports whether the span addresses at least one byte.
func (s Span) Valid() bool { return s.Start >= 0 && s.Stop > s.Start }

// Node is one element of a Document Tree.
//
// Value is the payload of text, inline code and code nodes. URL is the
// destination of link nodes. Element keeps the parser's name for the node
// (e.g. "Heading", "FencedCodeBlock") for diagnostics only.
type Node struct {
	Kind     Kind
	Element  string
	Value    string
	URL      string
	Children []*Node

	// ValueSpan and URLSpan locate Value and URL in the parsed source.
	ValueSpan Span
	URLSpan   Span
}

// NewRoot returns an empty root node.
func NewRoot() *Node { return &Node{Kind: KindRoot, Element: "Document"} }

// Text returns a text node.
func Text(v string) *Node { return &Node{Kind: KindText, Element: "Text", Value: v} }

// InlineCode returns an inline code node.
func InlineCode(v string) *Node { return &Node{Kind: KindInlineCode, Element: "CodeSpan", Value: v} }

// Code returns a code block node.
func Code(v string) *Node { return &Node{Kind: KindCode, Element: "FencedCodeBlock", Value: v} }

// Link returns a link node with the given URL and link-text children.
func Link(url string, children ...*Node) *Node {
	return &Node{Kind: KindLink, Element: "Link", URL: url, Children: children}
}

// Other returns a node of any other type wrapping children.
func Other(element string, children ...*Node) *Node {
	return &Node{Kind: KindOther, Element: element, Children: children}
}

// Append adds children to n and returns n.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// HasPayload reports whether the node kind carries a Value payload.
func (n *Node) HasPayload() bool {
	switch n.Kind {
	case KindText, KindInlineCode, KindCode:
		return true
	default:
		return false
	}
}

// Walk visits n and all of its descendants in document (pre-)order.
// A nil tree is a no-op.
func Walk(n *Node, visit func(*Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Children {
		Walk(c, visit)
	}
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n *Node) int {
	total := 0
	Walk(n, func(*Node) { total++ })
	return total
}

// Kinds returns the kind of every node in document order.
func Kinds(n *Node) []Kind {
	var kinds []Kind
	Walk(n, func(c *Node) { kinds = append(kinds, c.Kind) })
	return kinds
}
