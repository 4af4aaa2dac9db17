package transcription

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStatus_CanTransitionTo(t *testing.T) {
	// 許可される遷移は PENDING→PROCESSING→{COMPLETED, FAILED} のみ
	assert.True(t, StatusPending.CanTransitionTo(StatusProcessing))
	assert.True(t, StatusProcessing.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusProcessing.CanTransitionTo(StatusFailed))

	assert.False(t, StatusPending.CanTransitionTo(StatusCompleted))
	assert.False(t, StatusPending.CanTransitionTo(StatusFailed))
	assert.False(t, StatusPending.CanTransitionTo(StatusPending))
	assert.False(t, StatusProcessing.CanTransitionTo(StatusPending))
	assert.False(t, StatusProcessing.CanTransitionTo(StatusProcessing))

	// 終端状態からはどこへも遷移しない
	for _, terminal := range []JobStatus{StatusCompleted, StatusFailed} {
		for _, next := range []JobStatus{StatusPending, StatusProcessing, StatusCompleted, StatusFailed} {
			assert.False(t, terminal.CanTransitionTo(next), "%s -> %s", terminal, next)
		}
	}
}

func TestJobStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
}

func TestJobStatus_IsValid(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.True(t, StatusProcessing.IsValid())
	assert.True(t, StatusCompleted.IsValid())
	assert.True(t, StatusFailed.IsValid())
	assert.False(t, JobStatus("QUEUED").IsValid())
	assert.False(t, JobStatus("").IsValid())
}
