package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "sonorizeaudios", cfg.S3.Bucket)
	assert.Equal(t, "uploads/", cfg.S3.UploadPrefix)
	assert.Equal(t, time.Hour, cfg.S3.PresignTTL)
	assert.False(t, cfg.S3.ValidateOnSubmit)
	assert.Equal(t, "whisper-1", cfg.OpenAI.TranscriptionModel)
	assert.Equal(t, 4, cfg.Dispatcher.Workers)
	assert.Equal(t, 256, cfg.Dispatcher.QueueSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("S3_PRESIGN_TTL", "30m")
	t.Setenv("S3_VALIDATE_ON_SUBMIT", "true")
	t.Setenv("DISPATCHER_WORKERS", "16")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 30*time.Minute, cfg.S3.PresignTTL)
	assert.True(t, cfg.S3.ValidateOnSubmit)
	assert.Equal(t, 16, cfg.Dispatcher.Workers)
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("S3_PRESIGN_TTL", "soon")
	t.Setenv("S3_VALIDATE_ON_SUBMIT", "maybe")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.S3.PresignTTL)
	assert.False(t, cfg.S3.ValidateOnSubmit)
}
