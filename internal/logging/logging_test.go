package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mal-ai/internal/ingest"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			log := New(tc.level, "json", &bytes.Buffer{})
			assert.Equal(t, tc.want, log.GetLevel())
		})
	}
}

func TestNewConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", "console", &buf)
	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestReporter(t *testing.T) {
	var buf bytes.Buffer
	report := Reporter(New("info", "json", &buf))

	report.Report(ingest.Failure{
		Kind:     ingest.RecognitionFailed,
		Document: 2,
		Page:     3,
		Image:    1,
		Err:      errors.New("tesseract not found"),
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "recognition_failed", entry["kind"])
	assert.Equal(t, "tesseract not found", entry["error"])
	assert.EqualValues(t, 2, entry["document"])
	assert.EqualValues(t, 3, entry["page"])
	assert.EqualValues(t, 1, entry["image"])
}

func TestReporterOmitsZeroLevels(t *testing.T) {
	var buf bytes.Buffer
	Reporter(New("info", "json", &buf)).Report(ingest.Failure{
		Kind:     ingest.DocumentFailed,
		Document: 1,
		Err:      errors.New("malformed"),
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "page")
	assert.NotContains(t, entry, "image")
}
