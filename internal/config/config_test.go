package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cuemark.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, cfg.Editor.PollInterval)
	assert.Empty(t, cfg.Suggest.Prompt)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
editor:
  seek_step: 2.5
  poll_interval: 100ms
export:
  format: " VTT "
suggest:
  provider: OpenAI
  concurrency: 0
  prompt: "Speakers: Ana and Bo."
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.Editor.SeekStep)
	assert.Equal(t, 100*time.Millisecond, cfg.Editor.PollInterval)
	assert.Equal(t, 0.01, cfg.Editor.Epsilon, "epsilon default lost")
	assert.Equal(t, "vtt", cfg.Export.Format)
	assert.Equal(t, "openai", cfg.Suggest.Provider)
	assert.Equal(t, 3, cfg.Suggest.Concurrency)
	assert.Equal(t, "Speakers: Ana and Bo.", cfg.Suggest.Prompt)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"seek step", "editor:\n  seek_step: 0\n", "seek_step"},
		{"epsilon", "editor:\n  epsilon: 2\n", "epsilon"},
		{"sub-millisecond epsilon", "editor:\n  epsilon: 0.0005\n", "epsilon"},
		{"format", "export:\n  format: txt\n", "export.format"},
		{"provider", "suggest:\n  provider: whisper\n", "suggest.provider"},
		{"yaml", "editor: [", "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
