package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/inspektor-gadget/website/internal/foundation/errors"
)

const (
	// DefaultMaxVersions keeps three releases plus latest.
	DefaultMaxVersions = 4
	// DefaultVersionRepo is the repository new release docs are imported from.
	DefaultVersionRepo = "https://github.com/inspektor-gadget/inspektor-gadget.git"
	// DefaultVersionDir is the docs directory inside DefaultVersionRepo.
	DefaultVersionDir = "docs"
)

// AddVersion adds release version to the site config at path. See AddVersionYAML.
func AddVersion(path, version string, maxVersions int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "failed to read site config").WithContext("path", path).Build()
	}
	out, err := AddVersionYAML(data, version, maxVersions)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to stat site config").WithContext("path", path).Build()
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write site config").WithContext("path", path).Build()
	}
	return nil
}

// AddVersionYAML inserts an external docs entry for version at the head of
// params.docs.external_docs. When the list then holds more than maxVersions
// entries, the last entry (latest) takes the place of the second to last one
// and the list is shortened by one, so the oldest release is dropped.
//
// The document is edited as a yaml.Node tree; other keys, their order and
// comments are preserved.
func AddVersionYAML(data []byte, version string, maxVersions int) ([]byte, error) {
	if version == "" || version == LatestName {
		return nil, errors.ValidationError("invalid version").WithContext("version", version).Build()
	}
	if maxVersions <= 0 {
		maxVersions = DefaultMaxVersions
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse site config").Build()
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.ConfigError("site config is empty").Build()
	}

	docs, err := lookupPath(doc.Content[0], "params", "docs", "external_docs")
	if err != nil {
		return nil, err
	}
	if docs.Kind != yaml.SequenceNode {
		return nil, errors.ConfigError("params.docs.external_docs is not a list").Build()
	}
	for _, entry := range docs.Content {
		if v := mappingValue(entry, "name"); v != nil && v.Value == version {
			return nil, errors.AlreadyExistsError("version already configured").WithContext("version", version).Build()
		}
	}

	entry := &yaml.Node{Kind: yaml.MappingNode}
	for _, kv := range [][2]string{
		{"repo", DefaultVersionRepo},
		{"name", version},
		{"branch", version},
		{"dir", DefaultVersionDir},
	} {
		entry.Content = append(entry.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: kv[0]},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: kv[1]})
	}
	docs.Content = append([]*yaml.Node{entry}, docs.Content...)

	if size := len(docs.Content); size > maxVersions {
		docs.Content[size-2] = docs.Content[size-1]
		docs.Content = docs.Content[:size-1]
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to encode site config").Build()
	}
	if err := enc.Close(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to encode site config").Build()
	}
	return buf.Bytes(), nil
}

// lookupPath walks mapping keys from n and returns the value node at the end.
func lookupPath(n *yaml.Node, keys ...string) (*yaml.Node, error) {
	cur := n
	for i, k := range keys {
		next := mappingValue(cur, k)
		if next == nil {
			return nil, errors.ConfigError(fmt.Sprintf("site config has no %s", strings.Join(keys[:i+1], "."))).Build()
		}
		cur = next
	}
	return cur, nil
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}
