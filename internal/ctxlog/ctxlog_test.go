package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))

	FromContext(ctx).Info("attached")
	assert.Contains(t, buf.String(), "msg=attached")
}

func TestFromContext_FallsBackToDiscard(t *testing.T) {
	t.Parallel()

	assert.Same(t, Discard(), FromContext(context.Background()))
	assert.Same(t, Discard(), FromContext(WithLogger(context.Background(), nil)))
	assert.False(t, Discard().Enabled(context.Background(), slog.LevelError))
}
