package media

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProbeDuration(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{"plain", `{"format":{"duration":"12.480000"}}`, 12.48, false},
		{"spaces", `{"format":{"duration":" 3 "}}`, 3, false},
		{"missing", `{"format":{}}`, 0, true},
		{"garbage", `not json`, 0, true},
		{"negative", `{"format":{"duration":"-1"}}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProbeDuration([]byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClipArgs(t *testing.T) {
	args := clipArgs(2.5, DefaultClipOptions())
	assert.Equal(t, 2.5, args["t"])
	assert.Equal(t, "libmp3lame", args["acodec"])
	assert.Equal(t, "64k", args["b:a"])

	wav := clipArgs(1, ClipOptions{Format: "wav", SampleRate: 16000, Channels: 1})
	assert.Equal(t, "pcm_s16le", wav["acodec"])
	assert.NotContains(t, wav, "b:a", "wav output should not carry a bitrate")
}

func TestClipCommandArgs(t *testing.T) {
	args := clipCommandArgs("in.mp4", 1.5, 4, "out.mp3", DefaultClipOptions())

	require.NotEmpty(t, args)
	assert.Equal(t, []string{"-ss", "1.5", "-i", "in.mp4"}, args[:4])
	assert.Contains(t, args, "-vn")
	assert.Contains(t, args, "2.5")
	assert.Contains(t, args, "out.mp3")
	assert.Equal(t, "-y", args[len(args)-1])
}

func TestExtractClipValidatesInput(t *testing.T) {
	ctx := context.Background()
	out := filepath.Join(t.TempDir(), "clip.mp3")

	assert.Error(t, ExtractClip(ctx, "in.mp4", 5, 5, out, DefaultClipOptions()), "empty clip")
	assert.Error(t,
		ExtractClip(ctx, filepath.Join(t.TempDir(), "missing.mp4"), 0, 1, out, DefaultClipOptions()),
		"missing media file")
}

func TestExtractClipCancelledBeforeStart(t *testing.T) {
	in := filepath.Join(t.TempDir(), "in.mp4")
	require.NoError(t, os.WriteFile(in, []byte("video"), 0644))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ExtractClip(ctx, in, 0, 1, filepath.Join(t.TempDir(), "clip.mp3"), DefaultClipOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunFFmpegStopsOnCancel(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	slow := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(slow, []byte("#!/bin/sh\nexec sleep 30\n"), 0755))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	began := time.Now()
	err := runFFmpeg(ctx, slow, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(began), 10*time.Second)
}

func TestRunFFmpegReportsStderr(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	failing := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\necho 'banner' >&2\necho 'in.mp4: Invalid data found' >&2\nexit 1\n"
	require.NoError(t, os.WriteFile(failing, []byte(script), 0755))

	err := runFFmpeg(context.Background(), failing, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in.mp4: Invalid data found")
	assert.NotContains(t, err.Error(), "banner")
}

func TestIsMediaFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"talk.MP4", true},
		{"song.flac", true},
		{"subs.srt", false},
		{"noext", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsMediaFile(tt.path), tt.path)
	}
}
