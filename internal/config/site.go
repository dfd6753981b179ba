package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inspektor-gadget/website/internal/foundation/errors"
)

// LatestName is the external docs name that is imported into docs/ instead of
// a versioned_docs/ directory.
const LatestName = "latest"

// ExternalDoc is one entry of params.docs.external_docs in the site config.
type ExternalDoc struct {
	Repo   string `yaml:"repo"`
	Name   string `yaml:"name"`
	Branch string `yaml:"branch"`
	Dir    string `yaml:"dir"`
}

// IsLatest reports whether the entry is the unversioned latest docs.
func (d ExternalDoc) IsLatest() bool { return d.Name == LatestName }

// DocsParams is params.docs of the site config.
type DocsParams struct {
	ExternalDocs []ExternalDoc `yaml:"external_docs"`
	HideFolders  []string      `yaml:"hide_folders"`
}

// SiteConfig is the subset of the website's config.yaml that igdocs reads.
type SiteConfig struct {
	Params struct {
		Docs DocsParams `yaml:"docs"`
	} `yaml:"params"`
}

// ExternalDocs returns the configured external docs in config order.
func (s *SiteConfig) ExternalDocs() []ExternalDoc { return s.Params.Docs.ExternalDocs }

// HideFolders returns the top-level folders excluded from every import.
func (s *SiteConfig) HideFolders() []string { return s.Params.Docs.HideFolders }

// Find returns the external docs entry called name.
func (s *SiteConfig) Find(name string) (ExternalDoc, bool) {
	for _, d := range s.Params.Docs.ExternalDocs {
		if d.Name == name {
			return d, true
		}
	}
	return ExternalDoc{}, false
}

// LoadSite reads and validates the site config at path.
func LoadSite(path string) (*SiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("site config not found").WithContext("path", path).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read site config").WithContext("path", path).Build()
	}
	site, err := ParseSite(data)
	if err != nil {
		if c, ok := errors.AsClassified(err); ok {
			return nil, c.WithContext("path", path)
		}
		return nil, err
	}
	return site, nil
}

// ParseSite decodes and validates site config bytes.
func ParseSite(data []byte) (*SiteConfig, error) {
	var site SiteConfig
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal site config").Fatal().Build()
	}
	if err := site.Validate(); err != nil {
		return nil, err
	}
	return &site, nil
}

// Validate checks that every external docs entry is complete and that names
// are unique.
func (s *SiteConfig) Validate() error {
	seen := make(map[string]struct{}, len(s.Params.Docs.ExternalDocs))
	for i, d := range s.Params.Docs.ExternalDocs {
		field := fmt.Sprintf("params.docs.external_docs[%d]", i)
		switch {
		case d.Repo == "":
			return validationError("external docs entry is missing repo", field, d.Name)
		case d.Name == "":
			return validationError("external docs entry is missing name", field, d.Repo)
		case d.Branch == "":
			return validationError("external docs entry is missing branch", field, d.Name)
		case d.Dir == "":
			return validationError("external docs entry is missing dir", field, d.Name)
		}
		if _, dup := seen[d.Name]; dup {
			return validationError("duplicate external docs name", field, d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	return nil
}
