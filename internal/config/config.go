package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mgpai22/cuemark/internal/subtitle"
	"github.com/mgpai22/cuemark/internal/timeline"
)

// settings file for the editor; every field is optional
type Config struct {
	Editor struct {
		// seconds moved by the left/right keys
		SeekStep float64 `yaml:"seek_step"`
		// how often the active subtitle is recomputed
		PollInterval time.Duration `yaml:"poll_interval"`
		// minimum gap between a start and its end while dragging
		Epsilon float64 `yaml:"epsilon"`
		// seconds a drag may move past the interval before hitting neighbours
		DragBuffer float64 `yaml:"drag_buffer"`
		// how long a released drag keeps its selection
		ReleaseGrace time.Duration `yaml:"release_grace"`
	} `yaml:"editor"`

	Export struct {
		Format string `yaml:"format"`
		Path   string `yaml:"path"`
	} `yaml:"export"`

	Suggest struct {
		Provider    string `yaml:"provider"`
		Model       string `yaml:"model"`
		Language    string `yaml:"language"`
		Concurrency int    `yaml:"concurrency"`
		Prompt      string `yaml:"prompt"`
	} `yaml:"suggest"`
}

func Default() *Config {
	c := &Config{}

	c.Editor.SeekStep = 5
	c.Editor.PollInterval = 200 * time.Millisecond
	c.Editor.Epsilon = 0.01
	c.Editor.DragBuffer = 10
	c.Editor.ReleaseGrace = 300 * time.Millisecond

	c.Export.Format = string(subtitle.FormatSRT)
	c.Export.Path = "subtitles.srt"

	c.Suggest.Provider = "gemini"
	c.Suggest.Concurrency = 3

	return c
}

// reads path over the defaults; an empty path returns the defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// fields absent from the file keep their defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Export.Format = strings.ToLower(strings.TrimSpace(c.Export.Format))
	c.Suggest.Provider = strings.ToLower(strings.TrimSpace(c.Suggest.Provider))
	if c.Suggest.Concurrency <= 0 {
		c.Suggest.Concurrency = 3
	}
}

func (c *Config) Validate() error {
	if c.Editor.SeekStep <= 0 {
		return fmt.Errorf("editor.seek_step must be positive, got %v", c.Editor.SeekStep)
	}
	if c.Editor.PollInterval < 10*time.Millisecond {
		return fmt.Errorf("editor.poll_interval must be at least 10ms, got %v", c.Editor.PollInterval)
	}
	if c.Editor.Epsilon < timeline.MinEpsilon || c.Editor.Epsilon >= 1 {
		return fmt.Errorf("editor.epsilon must be between %v and 1, got %v", timeline.MinEpsilon, c.Editor.Epsilon)
	}
	if c.Editor.DragBuffer < 0 {
		return fmt.Errorf("editor.drag_buffer must not be negative, got %v", c.Editor.DragBuffer)
	}
	if c.Editor.ReleaseGrace < 0 {
		return fmt.Errorf("editor.release_grace must not be negative, got %v", c.Editor.ReleaseGrace)
	}
	if _, err := subtitle.ParseFormat(c.Export.Format); err != nil {
		return fmt.Errorf("export.format: %w", err)
	}
	switch c.Suggest.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("suggest.provider must be gemini or openai, got %q", c.Suggest.Provider)
	}
	return nil
}
