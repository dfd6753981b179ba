package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation", ValidationError("invalid input").Build(), 2},
		{"duplicate version", AlreadyExistsError("exists").Build(), 2},
		{"not found", NotFoundError("missing").Build(), 3},
		{"auth", AuthError("unauthorized").Build(), 5},
		{"config", ConfigError("bad config").Build(), 7},
		{"git", NewError(CategoryGit, "clone failed").Retryable().Build(), 8},
		{"content", ContentError("bad markdown").Build(), 11},
		{"wrapped state", fmt.Errorf("ctx: %w", StateError("db").Build()), 11},
		{"daemon", DaemonError("scheduler").Build(), 12},
		{"internal", InternalError("boom").Build(), 10},
		{"unclassified", stderrors.New("unknown error"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, slog.Default())
	verbose := NewCLIErrorAdapter(true, slog.Default())

	cfg := WrapError(stderrors.New("no such file"), CategoryConfig, "load config").Build()
	assert.Equal(t, "Error: load config: no such file", quiet.FormatError(cfg))
	assert.Equal(t, "Error: [config:error] load config: no such file", verbose.FormatError(cfg))

	internal := InternalError("nil pointer").Build()
	assert.Equal(t, "Internal error occurred (use -v for details)", quiet.FormatError(internal))

	assert.Equal(t, "Error: plain", quiet.FormatError(stderrors.New("plain")))
	assert.Empty(t, quiet.FormatError(nil))
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logs, out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ConfigError("missing site config").WithContext("path", "x.yaml").Build())

	assert.Equal(t, 7, code)
	assert.Equal(t, "Error: missing site config\n", out.String())
	assert.Contains(t, logs.String(), "category=config")
	assert.Contains(t, logs.String(), "path=x.yaml")

	code = -1
	adapter.HandleError(nil)
	assert.Equal(t, -1, code)
}
