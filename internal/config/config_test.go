package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"LLM_API_KEY", "LLM_API_ENDPOINT", "LLM_MODEL", "LLM_TIMEOUT", "MEMO_DATABASE",
	"TESSERACT_PATH", "TESSERACT_LANG", "LOG_LEVEL", "LOG_FORMAT", "PORT",
	"MAX_UPLOAD_MB", "RESULT_CAPACITY",
}

// isolate runs the test from an empty directory with a clean environment so
// neither a developer .env nor exported variables leak in.
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "", cfg.LLMKey)
	assert.Equal(t, DefaultEndpoint, cfg.LLMEndpoint)
	assert.Equal(t, DefaultModel, cfg.LLMModel)
	assert.Equal(t, 2*time.Minute, cfg.LLMTimeout)
	assert.Equal(t, ":memory:", cfg.MemoDatabase)
	assert.Equal(t, "tesseract", cfg.TesseractPath)
	assert.Equal(t, "eng", cfg.TesseractLang)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 32, cfg.MaxUploadMB)
	assert.Equal(t, 50, cfg.ResultCapacity)
}

func TestLoadFileThenEnv(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "malai.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[llm]
api_key = "file-key"
model = "gpt-4o-mini"
timeout = "30s"

[ocr]
language = "fra"

[server]
port = "9000"
result_capacity = 5
`), 0o600))

	t.Setenv("LLM_MODEL", "env-model")
	t.Setenv("MAX_UPLOAD_MB", "8")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.LLMKey)
	assert.Equal(t, "env-model", cfg.LLMModel, "environment wins over file")
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.Equal(t, "fra", cfg.TesseractLang)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 5, cfg.ResultCapacity)
	assert.Equal(t, 8, cfg.MaxUploadMB)
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("LLM_API_KEY=dotenv-key\n"), 0o600))
	// godotenv never overrides a variable that exists, even when empty.
	require.NoError(t, os.Unsetenv("LLM_API_KEY"))
	t.Cleanup(func() { os.Unsetenv("LLM_API_KEY") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-key", cfg.LLMKey)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		isolate(t)
		_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
		assert.Error(t, err)
	})

	t.Run("malformed file", func(t *testing.T) {
		isolate(t)
		path := filepath.Join(t.TempDir(), "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("[llm\nmodel ="), 0o600))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("bad numbers", func(t *testing.T) {
		isolate(t)
		t.Setenv("MAX_UPLOAD_MB", "lots")
		t.Setenv("LLM_TIMEOUT", "soon")
		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MAX_UPLOAD_MB")
		assert.Contains(t, err.Error(), "LLM_TIMEOUT")
	})
}
