package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID        = "run_id"
	KeyVersion      = "version"
	KeyDurationMS   = "duration_ms"
	KeySchedule     = "schedule"
	KeyRepo         = "repository"
	KeyBranch       = "branch"
	KeyCommit       = "commit"
	KeyPath         = "path"
	KeyFile         = "file"
	KeyURL          = "url"
	KeyMethod       = "method"
	KeyStatus       = "status"
	KeyDocuments    = "documents"
	KeyPlaceholders = "placeholders"
	KeyError        = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Schedule(s string) slog.Attr     { return slog.String(KeySchedule, s) }
func Repository(r string) slog.Attr   { return slog.String(KeyRepo, r) }
func Branch(b string) slog.Attr       { return slog.String(KeyBranch, b) }
func Commit(c string) slog.Attr       { return slog.String(KeyCommit, c) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func Documents(n int) slog.Attr       { return slog.Int(KeyDocuments, n) }
func Placeholders(n int) slog.Attr    { return slog.Int(KeyPlaceholders, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
