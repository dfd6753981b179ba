// Package workspace manages the persistent directory that holds the clones of
// external documentation repositories.
//
// Each configured version gets one clone named after the repository, branch
// and version (e.g. inspektor-gadget_v0.40.0v0.40.0), reused across runs so
// later imports only need to pull.
package workspace
