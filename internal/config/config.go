// Package config holds the generator job file and the upload server settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDeadline   = "2025-12-31"
	DefaultBackground = "images/alertimage.png"
	DefaultOutputDir  = "docs"
)

// Config is a generator job.
type Config struct {
	Deadline   string `yaml:"deadline"`
	Background string `yaml:"background"`
	OutputDir  string `yaml:"output_dir"`
	DPI        int    `yaml:"dpi"`
	Workers    int    `yaml:"workers"`
	ShowStats  bool   `yaml:"show_stats"`

	Fonts     Fonts     `yaml:"fonts"`
	Animation Animation `yaml:"animation"`
	Static    Static    `yaml:"static"`

	BuildVersion string `yaml:"-"`
}

// Fonts lists font candidates tried in order before the embedded fallback.
type Fonts struct {
	Bold    []string `yaml:"bold"`
	Regular []string `yaml:"regular"`
}

type Animation struct {
	Enabled bool   `yaml:"enabled"`
	Output  string `yaml:"output"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Frames  int    `yaml:"frames"`
	DelayMS int    `yaml:"delay_ms"`
	Text    string `yaml:"text"`
	Easing  string `yaml:"easing"`
	Video   Video  `yaml:"video"`
}

// Delay is the per-frame display time.
func (a Animation) Delay() time.Duration {
	return time.Duration(a.DelayMS) * time.Millisecond
}

// Video configures the optional MP4 copy of the animation.
type Video struct {
	Enabled bool   `yaml:"enabled"`
	Output  string `yaml:"output"`
	FPS     int    `yaml:"fps"`
	Encoder string `yaml:"encoder"`
	Quality int    `yaml:"quality"`
}

type Static struct {
	Enabled bool   `yaml:"enabled"`
	Text    string `yaml:"text"`
	Quality int    `yaml:"quality"`
	// Pattern names each output; {name} is replaced with the size name.
	Pattern string `yaml:"pattern"`
	Sizes   []Size `yaml:"sizes"`
}

type Size struct {
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// OutputPath returns the file a size is written to.
func (s Static) OutputPath(dir string, size Size) string {
	return filepath.Join(dir, strings.ReplaceAll(s.Pattern, "{name}", size.Name))
}

// Default returns the job producing the decommission alert set.
func Default() *Config {
	return &Config{
		Deadline:   DefaultDeadline,
		Background: DefaultBackground,
		OutputDir:  DefaultOutputDir,
		DPI:        150,
		Workers:    runtime.NumCPU(),
		Fonts: Fonts{
			Bold: []string{
				"arialbd.ttf",
				"DejaVuSans-Bold.ttf",
				"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
			},
			Regular: []string{
				"arial.ttf",
				"DejaVuSans.ttf",
				"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
			},
		},
		Animation: Animation{
			Enabled: true,
			Output:  "decommission_alert.gif",
			Width:   1200,
			Height:  600,
			Frames:  10,
			DelayMS: 500,
			Text:    "{days} days left for decommissioning Current-Gen!",
			Easing:  "linear",
			Video: Video{
				Output:  "decommission_alert.mp4",
				FPS:     2,
				Encoder: "libx264",
				Quality: 23,
			},
		},
		Static: Static{
			Enabled: true,
			Text:    "{days} Days Left!",
			Quality: 75,
			Pattern: "decommission_alert_{name}.jpg",
			Sizes: []Size{
				{Name: "small", Width: 320, Height: 240},
				{Name: "medium", Width: 640, Height: 480},
				{Name: "large", Width: 800, Height: 580},
				{Name: "banner", Width: 1200, Height: 500},
			},
		},
	}
}

// Read loads a job file. Keys missing from the file keep their defaults.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Write stores the job as YAML.
func Write(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every problem in the job at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := time.Parse("2006-01-02", c.Deadline); err != nil {
		errs = append(errs, fmt.Errorf("deadline must be YYYY-MM-DD, got %q", c.Deadline))
	}
	if c.Background == "" {
		errs = append(errs, errors.New("background is required"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir is required"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if !c.Animation.Enabled && !c.Static.Enabled {
		errs = append(errs, errors.New("nothing to generate: animation and static are both disabled"))
	}

	if a := c.Animation; a.Enabled {
		if a.Width <= 0 || a.Height <= 0 {
			errs = append(errs, fmt.Errorf("animation size must be positive, got %dx%d", a.Width, a.Height))
		}
		if a.Frames < 1 {
			errs = append(errs, fmt.Errorf("animation frames must be positive, got %d", a.Frames))
		}
		if a.DelayMS < 10 {
			errs = append(errs, fmt.Errorf("animation delay_ms must be at least 10, got %d", a.DelayMS))
		}
		if a.Output == "" {
			errs = append(errs, errors.New("animation output is required"))
		}
		if a.Video.Enabled && (a.Video.Output == "" || a.Video.FPS < 1) {
			errs = append(errs, errors.New("animation video needs an output and a positive fps"))
		}
	}

	if s := c.Static; s.Enabled {
		if !strings.Contains(s.Pattern, "{name}") {
			errs = append(errs, fmt.Errorf("static pattern must contain {name}, got %q", s.Pattern))
		}
		if s.Quality < 1 || s.Quality > 100 {
			errs = append(errs, fmt.Errorf("static quality must be in 1..100, got %d", s.Quality))
		}
		seen := make(map[string]bool)
		for _, size := range s.Sizes {
			if size.Width <= 0 || size.Height <= 0 {
				errs = append(errs, fmt.Errorf("size %q must be positive, got %dx%d", size.Name, size.Width, size.Height))
			}
			if seen[size.Name] {
				errs = append(errs, fmt.Errorf("size %q listed twice", size.Name))
			}
			seen[size.Name] = true
		}
	}

	return errors.Join(errs...)
}
