// Package errors provides the classified error primitives used across igdocs.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, git, content, state, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - RetryStrategy: Retry behavior (never, immediate, backoff, user action)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - HTTP and CLI adapters for error presentation
//
// Example usage:
//
//	err := errors.WrapError(cloneErr, errors.CategoryGit, "clone failed").
//		Retryable().
//		WithContext("repository", repoURL).
//		WithContext("version", "v0.40.0").
//		Build()
package errors
