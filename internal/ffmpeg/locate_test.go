package ffmpeg

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocatePrefersEnv(t *testing.T) {
	env := map[string]string{
		"CUEMARK_FFMPEG_PATH":  "/opt/ffmpeg",
		"CUEMARK_FFPROBE_PATH": "/opt/ffprobe",
	}
	lookPath := func(string) (string, error) {
		t.Fatal("PATH lookup should not happen when env is set")
		return "", nil
	}

	paths, err := locate(func(k string) string { return env[k] }, lookPath, "")
	require.NoError(t, err)
	assert.Equal(t, BinaryPaths{FFmpeg: "/opt/ffmpeg", FFprobe: "/opt/ffprobe"}, paths)
}

func TestLocateFallsBackToCache(t *testing.T) {
	cached := t.TempDir()
	probe := filepath.Join(cached, "ffprobe"+executableSuffix())
	require.NoError(t, os.WriteFile(probe, []byte("bin"), 0755))
	lookPath := func(name string) (string, error) {
		if name == "ffmpeg" {
			return "/usr/bin/ffmpeg", nil
		}
		return "", errors.New("not found")
	}

	paths, err := locate(func(string) string { return "" }, lookPath, cached)
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/ffmpeg", paths.FFmpeg)
	assert.Equal(t, probe, paths.FFprobe)
}

func TestLocateIgnoresEmptyCachedFile(t *testing.T) {
	cached := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cached, "ffprobe"+executableSuffix()), nil, 0755))
	lookPath := func(name string) (string, error) {
		if name == "ffmpeg" {
			return "/usr/bin/ffmpeg", nil
		}
		return "", errors.New("not found")
	}

	_, err := locate(func(string) string { return "" }, lookPath, cached)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocateMissing(t *testing.T) {
	lookPath := func(string) (string, error) { return "", errors.New("not found") }

	_, err := locate(func(string) string { return "" }, lookPath, t.TempDir())
	assert.ErrorIs(t, err, ErrNotFound)
}
