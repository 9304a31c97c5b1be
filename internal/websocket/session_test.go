package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRequestIdsIncrease(t *testing.T) {
	s := NewSession("sess-1", false)

	first, _ := s.BeginRequest(context.Background())
	second, _ := s.BeginRequest(context.Background())

	assert.Greater(t, second, first)
	assert.Equal(t, second, s.ActiveRequestId())
}

func TestSessionSupersededRequestIsStale(t *testing.T) {
	s := NewSession("sess-1", false)

	first, firstCtx := s.BeginRequest(context.Background())
	assert.False(t, s.IsStale(first))

	second, _ := s.BeginRequest(context.Background())
	assert.True(t, s.IsStale(first))
	assert.False(t, s.IsStale(second))

	// Superseding also cancels the in-flight generation.
	select {
	case <-firstCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("superseded request context was not cancelled")
	}
}

func TestSessionCloseCancelsActive(t *testing.T) {
	s := NewSession("sess-1", false)

	_, ctx := s.BeginRequest(context.Background())
	s.Close()

	require.Error(t, ctx.Err())
}

func TestSessionAutoDetectState(t *testing.T) {
	s := NewSession("sess-1", true)

	enabled, assistantId, lastTriggered := s.AutoDetect()
	assert.True(t, enabled)
	assert.Empty(t, assistantId)
	assert.True(t, lastTriggered.IsZero())

	s.SetAutoDetect(false, "coach-1")
	enabled, assistantId, _ = s.AutoDetect()
	assert.False(t, enabled)
	assert.Equal(t, "coach-1", assistantId)

	now := time.Now()
	s.MarkTriggered(now)
	_, _, lastTriggered = s.AutoDetect()
	assert.Equal(t, now, lastTriggered)
}
