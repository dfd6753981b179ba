package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "igdocs.yaml").
			Build()

		assert.Equal(t, CategoryConfig, err.Category())
		assert.Equal(t, SeverityFatal, err.Severity())
		assert.Equal(t, "invalid configuration", err.Message())
		assert.Equal(t, "[config:fatal] invalid configuration", err.Error())

		file, ok := err.Context().GetString("file")
		require.True(t, ok)
		assert.Equal(t, "igdocs.yaml", file)
	})

	t.Run("Error detection", func(t *testing.T) {
		err := ConfigError("test error").Build()

		assert.True(t, IsClassified(err))
		assert.True(t, HasCategory(err, CategoryConfig))
		assert.False(t, err.CanRetry())
		assert.True(t, err.IsFatal())
	})

	t.Run("Detection through wrapping", func(t *testing.T) {
		inner := NewError(CategoryGit, "clone failed").Retryable().Build()
		wrapped := fmt.Errorf("import v0.40.0: %w", inner)

		c, ok := AsClassified(wrapped)
		require.True(t, ok)
		assert.Same(t, inner, c)
		assert.Equal(t, CategoryGit, GetCategory(wrapped))
		assert.True(t, IsRetryable(wrapped))
	})

	t.Run("Unclassified", func(t *testing.T) {
		err := stderrors.New("plain")
		assert.False(t, IsClassified(err))
		assert.Equal(t, CategoryInternal, GetCategory(err))
		assert.False(t, IsRetryable(err))
	})
}

func TestErrorBuilder(t *testing.T) {
	originalErr := stderrors.New("original error")
	err := WrapError(originalErr, CategoryNetwork, "network failure").
		Warning().
		Retryable().
		WithContext("host", "github.com").
		WithContext("attempt", 2).
		Build()

	assert.Equal(t, CategoryNetwork, err.Category())
	assert.Equal(t, SeverityWarning, err.Severity())
	assert.Equal(t, RetryBackoff, err.RetryStrategy())
	assert.ErrorIs(t, err, originalErr)
	assert.Equal(t, "[network:warning] network failure: original error", err.Error())

	host, _ := err.Context().GetString("host")
	assert.Equal(t, "github.com", host)
	attempt, _ := err.Context().Get("attempt")
	assert.Equal(t, 2, attempt)
}

func TestErrorBuilder_WithCategoryAndCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := NewError(CategoryInternal, "write failed").
		WithCategory(CategoryFileSystem).
		WithCause(cause).
		Build()

	assert.Equal(t, CategoryFileSystem, err.Category())
	assert.Same(t, cause, err.Cause())
}

func TestClassifiedError_WithContextCopies(t *testing.T) {
	base := ContentError("parse failed").WithContext("file", "a.md").Build()
	derived := base.WithContext("version", "v1.0.0")

	_, ok := base.Context().Get("version")
	assert.False(t, ok, "original context must not change")
	v, _ := derived.Context().GetString("version")
	assert.Equal(t, "v1.0.0", v)
	f, _ := derived.Context().GetString("file")
	assert.Equal(t, "a.md", f)
}

func TestClassifiedError_Is(t *testing.T) {
	a := NotFoundError("version not found").Build()
	b := NotFoundError("version not found").WithContext("version", "x").Build()
	c := NotFoundError("other").Build()

	assert.ErrorIs(t, a, b)
	assert.NotErrorIs(t, a, c)
}

func TestConvenienceConstructors(t *testing.T) {
	cases := []struct {
		builder  *ErrorBuilder
		category ErrorCategory
		retry    bool
	}{
		{ValidationError("v"), CategoryValidation, false},
		{AuthError("a"), CategoryAuth, false},
		{NewError(CategoryGit, "g").Retryable(), CategoryGit, true},
		{StateError("s"), CategoryState, false},
		{EventsError("e"), CategoryEvents, false},
		{DaemonError("d"), CategoryDaemon, false},
		{AlreadyExistsError("x"), CategoryAlreadyExists, false},
	}
	for _, tc := range cases {
		err := tc.builder.Build()
		assert.Equal(t, tc.category, err.Category())
		assert.Equal(t, tc.retry, err.CanRetry(), string(tc.category))
	}
}
