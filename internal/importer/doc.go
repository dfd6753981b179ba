// Package importer fetches the external documentation repositories listed
// in the site config and lays them out for Docusaurus.
//
// For every external_docs entry the repository is cloned or updated in the
// workspace, the configured directory is copied to docs/ (latest) or
// versioned_docs/version-<name>/, Markdown is converted from Hugo
// conventions and version placeholders are resolved. Versions are imported
// concurrently. After a successful run versions.json lists every released
// version in config order.
package importer
