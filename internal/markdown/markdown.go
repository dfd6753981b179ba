// Package markdown adapts goldmark's Markdown AST to the Document Tree used by
// content transforms and maps transform results back onto the source.
//
// Output is produced with targeted byte-range edits instead of re-rendering,
// so everything a transform did not touch stays byte-for-byte identical.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/inspektor-gadget/website/internal/doctree"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// ParseAST parses a Markdown body (frontmatter already removed) into a goldmark AST.
func ParseAST(body []byte) gmast.Node {
	return md.Parser().Parse(text.NewReader(body))
}

// Parse parses a Markdown body (frontmatter already removed) into a Document Tree.
//
// Payload nodes remember the byte span of the source they were read from:
//   - text: the text run; adjacent contiguous runs are merged into one node
//   - inline code: the raw code span content
//   - code blocks: the raw block lines
//   - inline links: the destination between the parentheses
//   - autolinks: the link label
//
// Images, raw HTML and JSX are "other" nodes without payload. With MDX, HTML
// blocks carry the text between their tags as children.
func Parse(body []byte, opts ...Option) *doctree.Node {
	b := &builder{source: body}
	for _, opt := range opts {
		opt(b)
	}
	return b.convert(ParseAST(body))
}

type builder struct {
	source []byte
	mdx    bool
	// cursor is the furthest source offset attributed to a node so far; link
	// destinations are searched for from here.
	cursor int
}

func (b *builder) advance(pos int) {
	if pos > b.cursor {
		b.cursor = pos
	}
}

func (b *builder) span(start, stop int) (doctree.Span, string) {
	if start < 0 || stop <= start || stop > len(b.source) {
		return doctree.Span{}, ""
	}
	return doctree.Span{Start: start, Stop: stop}, string(b.source[start:stop])
}

func (b *builder) convert(n gmast.Node) *doctree.Node {
	switch v := n.(type) {
	case *gmast.Document:
		out := doctree.NewRoot()
		b.children(out, v)
		return out

	case *gmast.Text:
		out := &doctree.Node{Kind: doctree.KindText, Element: "Text"}
		out.ValueSpan, out.Value = b.span(v.Segment.Start, v.Segment.Stop)
		b.advance(v.Segment.Stop)
		return out

	case *gmast.String:
		return &doctree.Node{Kind: doctree.KindText, Element: "String", Value: string(v.Value)}

	case *gmast.CodeSpan:
		out := &doctree.Node{Kind: doctree.KindInlineCode, Element: "CodeSpan"}
		start, stop := -1, -1
		for c := v.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*gmast.Text); ok {
				if start < 0 {
					start = t.Segment.Start
				}
				stop = t.Segment.Stop
			}
		}
		out.ValueSpan, out.Value = b.span(start, stop)
		b.advance(stop)
		return out

	case *gmast.FencedCodeBlock:
		return b.codeBlock("FencedCodeBlock", v.Lines())

	case *gmast.CodeBlock:
		return b.codeBlock("CodeBlock", v.Lines())

	case *gmast.Link:
		out := doctree.Link(string(v.Destination))
		b.children(out, v)
		if span, ok := b.locateDestination(v.Destination); ok {
			out.URLSpan = span
			b.advance(span.Stop)
		}
		return out

	case *gmast.AutoLink:
		label := v.Label(b.source)
		out := doctree.Link(string(label))
		out.Element = "AutoLink"
		if i := bytes.Index(b.source[b.cursor:], label); len(label) > 0 && i >= 0 {
			start := b.cursor + i
			out.URLSpan = doctree.Span{Start: start, Stop: start + len(label)}
			b.advance(out.URLSpan.Stop)
		}
		return out

	case *gmast.Image:
		// Alt text and destination are not rewritten; only move the cursor past them.
		b.skip(v)
		if span, ok := b.locateDestination(v.Destination); ok {
			b.advance(span.Stop)
		}
		return doctree.Other("Image")

	case *gmast.HTMLBlock:
		out := doctree.Other("HTMLBlock")
		if b.mdx {
			out.Children = b.jsxText(v.Lines())
		}
		b.advanceLines(v.Lines())
		if v.HasClosure() {
			b.advance(v.ClosureLine.Stop)
		}
		return out

	case *gmast.RawHTML:
		b.advanceLines(v.Segments)
		return doctree.Other("RawHTML")

	default:
		out := doctree.Other(n.Kind().String())
		b.children(out, n)
		return out
	}
}

// children converts the children of n into parent, merging text runs that are
// contiguous in the source. goldmark may split a run at delimiter characters
// such as '_' (e.g. "%IG" "_" "TAG%").
func (b *builder) children(parent *doctree.Node, n gmast.Node) {
	var prev *gmast.Text
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		t, isText := c.(*gmast.Text)
		if isText && prev != nil && !prev.SoftLineBreak() && !prev.HardLineBreak() &&
			prev.Segment.Stop == t.Segment.Start && len(parent.Children) > 0 {
			last := parent.Children[len(parent.Children)-1]
			if last.Kind == doctree.KindText && last.ValueSpan.Valid() {
				last.ValueSpan, last.Value = b.span(last.ValueSpan.Start, t.Segment.Stop)
				b.advance(t.Segment.Stop)
				prev = t
				continue
			}
		}
		parent.Children = append(parent.Children, b.convert(c))
		if isText {
			prev = t
		} else {
			prev = nil
		}
	}
}

func (b *builder) codeBlock(element string, lines *text.Segments) *doctree.Node {
	out := &doctree.Node{Kind: doctree.KindCode, Element: element}
	if lines == nil || lines.Len() == 0 {
		return out
	}
	first, last := lines.At(0), lines.At(lines.Len()-1)
	out.ValueSpan, out.Value = b.span(first.Start, last.Stop)
	b.advance(last.Stop)
	return out
}

func (b *builder) advanceLines(lines *text.Segments) {
	if lines == nil || lines.Len() == 0 {
		return
	}
	b.advance(lines.At(lines.Len() - 1).Stop)
}

// skip moves the cursor past every text segment below n.
func (b *builder) skip(n gmast.Node) {
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if t, ok := c.(*gmast.Text); ok && entering {
			b.advance(t.Segment.Stop)
		}
		return gmast.WalkContinue, nil
	})
}

// locateDestination finds the raw bytes of an inline link destination. It
// looks for the first "](" after the cursor within the current block and
// accepts it only when the destination follows verbatim. Reference-style
// links and destinations with escapes are not addressable.
func (b *builder) locateDestination(dest []byte) (doctree.Span, bool) {
	if len(dest) == 0 || b.cursor >= len(b.source) {
		return doctree.Span{}, false
	}
	rest := b.source[b.cursor:]
	i := bytes.Index(rest, []byte("]("))
	if i < 0 || bytes.Contains(rest[:i], []byte("\n\n")) {
		return doctree.Span{}, false
	}
	p := b.cursor + i + 2
	for p < len(b.source) && (b.source[p] == ' ' || b.source[p] == '\t' || b.source[p] == '\n') {
		p++
	}
	if p < len(b.source) && b.source[p] == '<' {
		p++
	}
	if !bytes.HasPrefix(b.source[p:], dest) {
		return doctree.Span{}, false
	}
	return doctree.Span{Start: p, Stop: p + len(dest)}, true
}

// Edits returns one edit per payload of tree whose value no longer matches the
// source span it was parsed from.
func Edits(tree *doctree.Node, source []byte) []Edit {
	var edits []Edit
	add := func(span doctree.Span, value string) {
		if !span.Valid() || span.Stop > len(source) {
			return
		}
		if string(source[span.Start:span.Stop]) == value {
			return
		}
		edits = append(edits, Edit{Start: span.Start, End: span.Stop, Replacement: []byte(value)})
	}
	doctree.Walk(tree, func(n *doctree.Node) {
		switch {
		case n.HasPayload():
			add(n.ValueSpan, n.Value)
		case n.Kind == doctree.KindLink:
			add(n.URLSpan, n.URL)
		}
	})
	return edits
}

// Transform parses body, lets fn mutate the tree and writes the changed
// payloads back into a copy of body. It returns the new body and the number
// of edits applied.
func Transform(body []byte, fn func(tree *doctree.Node), opts ...Option) ([]byte, int, error) {
	tree := Parse(body, opts...)
	fn(tree)
	edits := Edits(tree, body)
	out, err := ApplyEdits(body, edits)
	if err != nil {
		return nil, 0, err
	}
	return out, len(edits), nil
}
