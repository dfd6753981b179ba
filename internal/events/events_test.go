package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inspektor-gadget/website/internal/config"
	"github.com/inspektor-gadget/website/internal/foundation/errors"
)

type fakeConn struct {
	subject    string
	data       []byte
	publishErr error
	flushed    bool
	drained    bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subject = subject
	f.data = data
	return f.publishErr
}

func (f *fakeConn) FlushWithContext(context.Context) error {
	f.flushed = true
	return nil
}

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func TestNATSPublisher_Publish(t *testing.T) {
	fc := &fakeConn{}
	p := newNATSPublisher(fc, "igdocs.imports")
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	err := p.Publish(t.Context(), ImportEvent{RunID: "r1", Version: "v0.40.0", Commit: "abc", Documents: 3, Changed: 1, Status: "success", Timestamp: ts})
	require.NoError(t, err)
	assert.Equal(t, "igdocs.imports", fc.subject)
	assert.True(t, fc.flushed)

	var got ImportEvent
	require.NoError(t, json.Unmarshal(fc.data, &got))
	assert.Equal(t, "v0.40.0", got.Version)
	assert.Equal(t, 1, got.Changed)
	assert.True(t, ts.Equal(got.Timestamp))

	require.NoError(t, p.Close())
	assert.True(t, fc.drained)
}

func TestNATSPublisher_PublishError(t *testing.T) {
	fc := &fakeConn{publishErr: assert.AnError}
	err := newNATSPublisher(fc, "s").Publish(t.Context(), ImportEvent{Version: "latest"})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryEvents))
	assert.False(t, fc.flushed)
}

func TestNewPublisher_DisabledIsNoop(t *testing.T) {
	p, err := NewPublisher(config.EventsConfig{Enabled: false})
	require.NoError(t, err)
	assert.IsType(t, NoopPublisher{}, p)
	assert.NoError(t, p.Publish(t.Context(), ImportEvent{}))
	assert.NoError(t, p.Close())
}
