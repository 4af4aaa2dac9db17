package openai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTranscriber_RequiresAPIKey(t *testing.T) {
	_, err := NewTranscriber("")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAPIKeyNotSet)
}

func TestNewTranscriber_Defaults(t *testing.T) {
	tr, err := NewTranscriber("sk-test")
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, tr.ModelName())
	assert.Equal(t, DefaultTimeout, tr.timeout)
}

func TestNewTranscriber_Options(t *testing.T) {
	tr, err := NewTranscriber("sk-test", WithModel("gpt-4o-transcribe"), WithTimeout(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-transcribe", tr.ModelName())
	assert.Equal(t, 30*time.Second, tr.timeout)

	// 無効な値はデフォルトのまま
	tr, err = NewTranscriber("sk-test", WithModel(""), WithTimeout(0))
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, tr.ModelName())
	assert.Equal(t, DefaultTimeout, tr.timeout)
}
