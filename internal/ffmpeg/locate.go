package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
)

// ErrNotFound is returned when ffmpeg or ffprobe cannot be located.
var ErrNotFound = errors.New("ffmpeg binaries not found: install ffmpeg or set CUEMARK_FFMPEG_PATH and CUEMARK_FFPROBE_PATH")

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	locateOnce sync.Once
	locateErr  error
	locatePath BinaryPaths
)

// Locate finds the binaries once per process: explicit env paths first,
// then PATH, then the user cache directory.
func Locate() (BinaryPaths, error) {
	locateOnce.Do(func() {
		locatePath, locateErr = locate(os.Getenv, exec.LookPath, cacheDir())
	})
	return locatePath, locateErr
}

func FFmpegPath() (string, error) {
	paths, err := Locate()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Locate()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

func locate(
	getenv func(string) string,
	lookPath func(string) (string, error),
	cached string,
) (BinaryPaths, error) {
	paths := BinaryPaths{
		FFmpeg:  getenv("CUEMARK_FFMPEG_PATH"),
		FFprobe: getenv("CUEMARK_FFPROBE_PATH"),
	}

	resolve := func(current *string, name string) {
		if *current != "" {
			return
		}
		if found, err := lookPath(name); err == nil {
			*current = found
			return
		}
		if cached == "" {
			return
		}
		candidate := filepath.Join(cached, name+executableSuffix())
		if fileExists(candidate) {
			*current = candidate
		}
	}
	resolve(&paths.FFmpeg, "ffmpeg")
	resolve(&paths.FFprobe, "ffprobe")

	if paths.FFmpeg == "" || paths.FFprobe == "" {
		return BinaryPaths{}, fmt.Errorf("%w (ffmpeg=%q, ffprobe=%q)", ErrNotFound, paths.FFmpeg, paths.FFprobe)
	}
	return paths, nil
}

func cacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil || dir == "" {
		return ""
	}
	return filepath.Join(dir, "cuemark", "ffmpeg", runtime.GOOS, runtime.GOARCH)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
