package markdown

import (
	"github.com/yuin/goldmark/text"

	"github.com/inspektor-gadget/website/internal/doctree"
)

// Option configures Parse and Transform.
type Option func(*builder)

// MDX makes the children of JSX elements in HTML blocks addressable as text,
// as MDX parses them. Tags, attributes and {expressions} stay opaque.
func MDX() Option {
	return func(b *builder) { b.mdx = true }
}

// jsxText returns one text node per run of bytes between the tags of an
// HTML block. Blocks that do not open with an element, such as comments, yield
// nothing.
func (b *builder) jsxText(lines *text.Segments) []*doctree.Node {
	if lines == nil || lines.Len() == 0 {
		return nil
	}
	start, stop := lines.At(0).Start, lines.At(lines.Len()-1).Stop
	src := b.source[start:stop]
	if !opensElement(src) {
		return nil
	}

	var nodes []*doctree.Node
	runStart := -1
	flush := func(end int) {
		if runStart >= 0 && !isBlank(src[runStart:end]) {
			n := &doctree.Node{Kind: doctree.KindText, Element: "JSXText"}
			n.ValueSpan, n.Value = b.span(start+runStart, start+end)
			nodes = append(nodes, n)
		}
		runStart = -1
	}
	for i := 0; i < len(src); {
		switch src[i] {
		case '<':
			flush(i)
			i = skipTag(src, i)
		case '{':
			flush(i)
			i = skipExpression(src, i)
		default:
			if runStart < 0 {
				runStart = i
			}
			i++
		}
	}
	flush(len(src))
	return nodes
}

func opensElement(src []byte) bool {
	for i, c := range src {
		switch c {
		case ' ', '\t':
			continue
		case '<':
			if i+1 >= len(src) {
				return false
			}
			next := src[i+1]
			return next == '>' || next == '/' || isLetter(next)
		default:
			return false
		}
	}
	return false
}

// skipTag returns the offset just past the tag opening at i. Quoted attribute
// values and {expressions} may contain '>'.
func skipTag(src []byte, i int) int {
	var quote byte
	for i++; i < len(src); i++ {
		c := src[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '{':
			i = skipExpression(src, i) - 1
		case c == '>':
			return i + 1
		}
	}
	return len(src)
}

// skipExpression returns the offset just past the brace-balanced expression
// opening at i.
func skipExpression(src []byte, i int) int {
	depth := 0
	for ; i < len(src); i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(src)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isBlank(p []byte) bool {
	for _, c := range p {
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			return false
		}
	}
	return true
}
