// Package frontmatter splits YAML frontmatter from Markdown documents and
// edits it line by line so unrelated bytes survive a rewrite.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Style captures the newline shape of a document.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// Block is a document split into raw frontmatter and body.
type Block struct {
	// Raw is the frontmatter without the --- delimiter lines.
	Raw  []byte
	Body []byte
	// Had reports whether the document carried a frontmatter block at all.
	Had   bool
	Style Style
}

// Parse splits content into a Block.
func Parse(content []byte) (Block, error) {
	fm, body, had, style, err := Split(content)
	if err != nil {
		return Block{}, err
	}
	return Block{Raw: fm, Body: body, Had: had, Style: style}, nil
}

// Bytes reassembles the document.
func (b Block) Bytes() []byte {
	return Join(b.Raw, b.Body, b.Had, b.Style)
}

// Fields decodes the frontmatter into a map.
func (b Block) Fields() (map[string]any, error) {
	return ParseYAML(b.Raw)
}

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// If the document does not start with a YAML frontmatter delimiter, had is false
// and body is the full input.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)

	nl := style.Newline
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, style, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, style, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter on the last line without a trailing newline.
		if tail := []byte(nl + "---"); bytes.HasSuffix(content, tail) && len(content)-len(tail) >= start {
			return content[start : len(content)-len(tail)+len(nl)], []byte{}, true, style, nil
		}
		return nil, nil, false, style, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closeSeq):], true, style, nil
}

// Join reassembles a document from raw frontmatter and body.
//
// If had is false, Join returns body as-is.
func Join(frontmatter []byte, body []byte, had bool, style Style) []byte {
	if !had {
		return body
	}

	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}

	delim := []byte("---" + nl)
	out := make([]byte, 0, 2*len(delim)+len(frontmatter)+len(body))
	out = append(out, delim...)
	out = append(out, frontmatter...)
	out = append(out, delim...)
	out = append(out, body...)
	return out
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// String returns fields[key] when it is a scalar, formatted as a string.
func String(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case int, int64, float64, bool:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

// Int returns fields[key] as an int when it is numeric or a numeric string.
func Int(fields map[string]any, key string) (int, bool) {
	switch v := fields[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}

// RenameKey renames every top-level key from to to, keeping the value and
// everything else byte for byte. It returns the new frontmatter and the
// number of renamed lines.
func RenameKey(frontmatter []byte, from, to string) ([]byte, int) {
	re := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(from) + `:`)
	n := len(re.FindAllIndex(frontmatter, -1))
	if n == 0 {
		return frontmatter, 0
	}
	return re.ReplaceAllLiteral(frontmatter, []byte(to+":")), n
}

// ReplaceKey replaces every top-level `from: <value>` line with `to: value`.
// The rest of the line, including trailing comments, is dropped.
func ReplaceKey(frontmatter []byte, from, to, value string) ([]byte, int) {
	re := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(from) + `:[^\r\n]*`)
	n := len(re.FindAllIndex(frontmatter, -1))
	if n == 0 {
		return frontmatter, 0
	}
	return re.ReplaceAllLiteral(frontmatter, []byte(to+": "+value)), n
}

func detectStyle(content []byte) Style {
	newline := "\n"
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		newline = "\r\n"
	}
	return Style{
		Newline:            newline,
		HasTrailingNewline: len(content) > 0 && content[len(content)-1] == '\n',
	}
}
