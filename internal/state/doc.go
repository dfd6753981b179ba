// Package state keeps the import history and per-document fingerprints in a
// SQLite database.
//
// The history lets the importer skip versions whose upstream commit did not
// move since the last successful import, and lets the daemon and the status
// command report past runs. Document fingerprints are compared between runs
// to count how many pages an import actually changed.
package state
