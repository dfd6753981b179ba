package pipeline

import (
	"strings"

	"github.com/inful/mdfp"

	"github.com/inspektor-gadget/website/internal/frontmatter"
)

// fingerprintDocument records a content fingerprint of the final frontmatter
// and body. The fingerprint is not written into the document; the importer
// stores it to report which pages changed between imports.
func fingerprintDocument(doc *Document) ([]*Document, error) {
	if !doc.IsMarkdown() {
		return nil, nil
	}
	fp, err := ComputeFingerprint(doc.RawFrontMatter, []byte(doc.Content))
	if err != nil {
		return nil, err
	}
	doc.Fingerprint = fp
	return nil, nil
}

// ComputeFingerprint fingerprints a document from its raw frontmatter and
// body. The frontmatter is canonicalized first, so key order and formatting
// do not matter, and any existing fingerprint field is ignored.
func ComputeFingerprint(rawFrontMatter, body []byte) (string, error) {
	fields, err := frontmatter.ParseYAML(rawFrontMatter)
	if err != nil {
		// Unparseable frontmatter is hashed as is.
		return mdfp.CalculateFingerprintFromParts(string(rawFrontMatter), string(body)), nil
	}
	delete(fields, mdfp.FingerprintField)

	canonical := ""
	if len(fields) > 0 {
		serialized, err := frontmatter.SerializeYAML(fields, frontmatter.Style{Newline: "\n"})
		if err != nil {
			return "", err
		}
		canonical = strings.TrimSuffix(string(serialized), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(canonical, string(body)), nil
}
