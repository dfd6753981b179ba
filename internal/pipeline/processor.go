package pipeline

import (
	"log/slog"

	"github.com/inspektor-gadget/website/internal/foundation/errors"
	"github.com/inspektor-gadget/website/internal/logfields"
)

// namedTransform pairs a transform with a name for logs and errors.
type namedTransform struct {
	name string
	fn   FileTransform
}

// Processor runs an ordered list of transforms over documents.
type Processor struct {
	transforms []namedTransform
}

// NewProcessor returns a processor with the full import transform set:
// Hugo to Docusaurus conversion followed by the placeholder pass.
func NewProcessor() *Processor {
	return &Processor{transforms: []namedTransform{
		{"parse_front_matter", parseFrontMatter},
		{"convert_index", convertIndex},
		{"convert_sidebar_position", convertSidebarPosition},
		{"rewrite_hugo_links", rewriteHugoLinks},
		{"convert_admonitions", convertAdmonitions},
		{"rewrite_version_placeholders", rewriteVersionPlaceholders},
		{"fingerprint_document", fingerprintDocument},
		{"serialize_document", serializeDocument},
	}}
}

// RenderOnly returns a processor that only resolves placeholders. Documents
// are otherwise written back unchanged.
func RenderOnly() *Processor {
	return &Processor{transforms: []namedTransform{
		{"parse_front_matter", parseFrontMatter},
		{"rewrite_version_placeholders", rewriteVersionPlaceholders},
		{"fingerprint_document", fingerprintDocument},
		{"serialize_document", serializeDocument},
	}}
}

// WithTransform appends a transform.
func (p *Processor) WithTransform(name string, fn FileTransform) *Processor {
	p.transforms = append(p.transforms, namedTransform{name: name, fn: fn})
	return p
}

// Process runs every transform over docs in order. Documents returned by a
// transform are appended and processed as well. The returned slice holds the
// input documents followed by generated ones; skipped documents are included
// so callers can see what was dropped.
func (p *Processor) Process(docs []*Document) ([]*Document, error) {
	queue := append([]*Document(nil), docs...)
	for i := 0; i < len(queue); i++ {
		doc := queue[i]
		for _, t := range p.transforms {
			if doc.Skip {
				break
			}
			created, err := t.fn(doc)
			if err != nil {
				return nil, errors.ContentError("transform failed").WithCause(err).
					WithContext("transform", t.name).
					WithContext("path", doc.Path).
					Build()
			}
			if len(created) == 0 {
				continue
			}
			if doc.Generated {
				return nil, errors.InternalError("generated document created new documents").
					WithContext("transform", t.name).
					WithContext("path", doc.Path).
					Build()
			}
			for _, c := range created {
				c.Generated = true
			}
			queue = append(queue, created...)
		}
	}
	slog.Debug("Processed documents", logfields.Documents(len(queue)))
	return queue, nil
}

// Output returns the documents that should be written.
func Output(docs []*Document) []*Document {
	out := make([]*Document, 0, len(docs))
	for _, d := range docs {
		if !d.Skip {
			out = append(out, d)
		}
	}
	return out
}
