package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fpang/idea-studio/internal/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var studioEnv = []string{
	"GEMINI_API_KEY", "SSM_API_KEY_PARAM", "GEMINI_MODEL", "GEMINI_IMAGE_MODEL", "GEMINI_TTS_MODEL",
	"STUDIO_STORE", "STUDIO_DB_PATH", "STUDIO_DYNAMO_TABLE", "STUDIO_COMPRESS", "STUDIO_EXPORT_DIR",
	"STUDIO_EXPORT_BUCKET", "STUDIO_AUDIT_BUS", "STUDIO_VOICE_LOCALE", "STUDIO_METRICS", "STUDIO_LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range studioEnv {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, chat.DefaultModelName, cfg.Models.Text)
	assert.Equal(t, chat.DefaultImageModelName, cfg.Models.Image)
	assert.Equal(t, chat.DefaultTTSModelName, cfg.Models.TTS)
	assert.Equal(t, StoreSQLite, cfg.Store.Backend)
	assert.NotEmpty(t, cfg.Store.DBPath)
	assert.True(t, cfg.Store.Compress)
	assert.Equal(t, ".", cfg.Export.Dir)
	assert.Equal(t, DefaultVoiceLocale, cfg.VoiceLocale)
	assert.False(t, cfg.Metrics)
	assert.False(t, cfg.NeedsAWS())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_MODEL", "gemini-2.5-flash")
	t.Setenv("STUDIO_STORE", "DynamoDB")
	t.Setenv("STUDIO_DYNAMO_TABLE", "studio")
	t.Setenv("STUDIO_COMPRESS", "false")
	t.Setenv("STUDIO_METRICS", "EMF")
	t.Setenv("STUDIO_VOICE_LOCALE", "en-GB")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", cfg.Models.Text)
	assert.Equal(t, StoreDynamo, cfg.Store.Backend)
	assert.Equal(t, "studio", cfg.Store.DynamoTable)
	assert.False(t, cfg.Store.Compress)
	assert.True(t, cfg.Metrics)
	assert.Equal(t, "en-GB", cfg.VoiceLocale)
	assert.True(t, cfg.NeedsAWS())
}

func TestFromEnv_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("STUDIO_STORE", "postgres")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "unknown STUDIO_STORE")

	clearEnv(t)
	t.Setenv("STUDIO_STORE", "dynamodb")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "STUDIO_DYNAMO_TABLE")

	clearEnv(t)
	t.Setenv("STUDIO_COMPRESS", "sometimes")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "STUDIO_COMPRESS")
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("STUDIO_EXPORT_BUCKET")
	t.Cleanup(func() { os.Unsetenv("STUDIO_EXPORT_BUCKET") })

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STUDIO_EXPORT_BUCKET=scripts-bucket\n"), 0o600))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "scripts-bucket", cfg.Export.Bucket)
}
