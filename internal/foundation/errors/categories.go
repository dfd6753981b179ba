package errors

// ErrorCategory groups errors by the subsystem that raised them. The CLI and
// the daemon's admin API map categories to exit codes and HTTP statuses.
type ErrorCategory string

// Caller mistakes: bad flags, bad config, unknown versions.
const (
	CategoryConfig        ErrorCategory = "config"
	CategoryValidation    ErrorCategory = "validation"
	CategoryAuth          ErrorCategory = "auth"
	CategoryNotFound      ErrorCategory = "not_found"
	CategoryAlreadyExists ErrorCategory = "already_exists"
)

// Upstream failures while cloning docs or publishing import events.
const (
	CategoryNetwork ErrorCategory = "network"
	CategoryGit     ErrorCategory = "git"
	CategoryEvents  ErrorCategory = "events"
)

// Failures while rewriting and copying a version's docs.
const (
	CategoryContent    ErrorCategory = "content"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryState      ErrorCategory = "state"
)

const (
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryDaemon   ErrorCategory = "daemon"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity says whether an import can continue after the error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"
	SeverityError   ErrorSeverity = "error"   // the current version fails
	SeverityWarning ErrorSeverity = "warning" // the page is kept as is
	SeverityInfo    ErrorSeverity = "info"
)

// RetryStrategy tells retry.Do whether another attempt makes sense.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryImmediate  RetryStrategy = "immediate"
	RetryBackoff    RetryStrategy = "backoff"
	RetryUserAction RetryStrategy = "user" // fix the config, then rerun
)

// ErrorContext carries structured fields (version, file, repo) that are
// logged next to the error message.
type ErrorContext map[string]any

// Set stores value under key, allocating the map when c is nil.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = ErrorContext{}
	}
	c[key] = value
	return c
}

func (c ErrorContext) Get(key string) (any, bool) {
	value, ok := c[key]
	return value, ok
}

// GetString is Get restricted to string values.
func (c ErrorContext) GetString(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}
