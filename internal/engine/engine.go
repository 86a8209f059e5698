// Package engine runs a generator job end to end.
package engine

import (
	"context"
	"fmt"
	"image"
	"image/gif"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/alertkit/internal/animation"
	"github.com/ivlev/alertkit/internal/compositor"
	"github.com/ivlev/alertkit/internal/config"
	"github.com/ivlev/alertkit/internal/countdown"
	"github.com/ivlev/alertkit/internal/fonts"
	"github.com/ivlev/alertkit/internal/source"
	"github.com/ivlev/alertkit/internal/system"
	"github.com/ivlev/alertkit/internal/video"
)

// DefaultStatsLog is where performance reports are appended.
const DefaultStatsLog = "benchmark.log"

type Project struct {
	Config   *config.Config
	Renderer *compositor.Renderer
	Encoder  video.VideoEncoder
	Clock    clockwork.Clock
	Logger   *slog.Logger
	// Out receives the human-readable progress lines.
	Out      io.Writer
	StatsLog string
}

// Result lists what a run produced.
type Result struct {
	Days    int
	Outputs []string
	Timings Timings
}

type Timings struct {
	Total     time.Duration
	Animation time.Duration
	Video     time.Duration
	Static    time.Duration
}

func NewProject(cfg *config.Config, renderer *compositor.Renderer, ve video.VideoEncoder) *Project {
	return &Project{
		Config:   cfg,
		Renderer: renderer,
		Encoder:  ve,
		StatsLog: DefaultStatsLog,
	}
}

// NewRenderer resolves the job's fonts and returns a renderer using them.
func NewRenderer(cfg *config.Config, logger *slog.Logger) (*compositor.Renderer, error) {
	resolver := fonts.NewResolver(logger)
	bold, err := resolver.Load(fonts.Bold, cfg.Fonts.Bold...)
	if err != nil {
		return nil, err
	}
	regular, err := resolver.Load(fonts.Regular, cfg.Fonts.Regular...)
	if err != nil {
		return nil, err
	}
	r := compositor.NewRenderer(bold, regular)
	r.Pool = system.NewImagePool()
	return r, nil
}

func (p *Project) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

func (p *Project) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// Run generates every enabled output of the job. Stages are checked for
// cancellation between each other and between frames.
func (p *Project) Run(ctx context.Context) (*Result, error) {
	startTime := time.Now()
	cfg := p.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job: %w", err)
	}

	target, err := countdown.ParseTarget(cfg.Deadline)
	if err != nil {
		return nil, err
	}
	easing, err := animation.EasingByName(cfg.Animation.Easing)
	if err != nil {
		return nil, err
	}

	src, err := source.Open(cfg.Background, cfg.DPI)
	if err != nil {
		return nil, fmt.Errorf("open background: %w", err)
	}
	defer src.Close()

	if p.Renderer == nil {
		if p.Renderer, err = NewRenderer(cfg, p.logger()); err != nil {
			return nil, err
		}
	}

	now := countdown.Clock(p.Clock).Now()
	res := &Result{Days: target.DaysRemaining(now)}
	out := p.out()

	fmt.Fprintln(out, "--- [PROJECT: COUNTDOWN BANNER] ---")
	fmt.Fprintf(out, "[*] Background: %s | Frames: %d\n", cfg.Background, src.FrameCount())
	fmt.Fprintf(out, "[*] Deadline: %s | Days left: %d | Fonts: %s / %s\n",
		target, res.Days, p.Renderer.Bold.Source(), p.Renderer.Regular.Source())
	fmt.Fprintln(out, "-----------------------------")

	if cfg.Animation.Enabled {
		opts := compositor.AnimationOptions{
			Width:    cfg.Animation.Width,
			Height:   cfg.Animation.Height,
			Frames:   cfg.Animation.Frames,
			Delay:    cfg.Animation.Delay(),
			Template: cfg.Animation.Text,
			Target:   target,
			Now:      now,
			Easing:   easing,
		}
		if err := p.runAnimation(ctx, src, opts, res); err != nil {
			return nil, err
		}
	}

	if cfg.Static.Enabled {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.runStatic(ctx, src, target, now, res); err != nil {
			return nil, err
		}
	}

	res.Timings.Total = time.Since(startTime)
	if cfg.ShowStats {
		p.report(res)
	}
	return res, nil
}

func (p *Project) runAnimation(ctx context.Context, src source.Source, opts compositor.AnimationOptions, res *Result) error {
	cfg := p.Config
	start := time.Now()

	frames, _, err := p.Renderer.RenderFrames(ctx, src, opts)
	if err != nil {
		return fmt.Errorf("render animation: %w", err)
	}

	gifPath := filepath.Join(cfg.OutputDir, cfg.Animation.Output)
	anim := compositor.EncodeGIF(frames, opts.Delay)
	if err := system.WriteFileAtomic(gifPath, func(w io.Writer) error {
		return gif.EncodeAll(w, anim)
	}); err != nil {
		return fmt.Errorf("write %s: %w", gifPath, err)
	}
	res.Timings.Animation = time.Since(start)
	res.Outputs = append(res.Outputs, gifPath)
	fmt.Fprintf(p.out(), "[>] Ready: %s (%d frames)\n", gifPath, len(frames))

	if !cfg.Animation.Video.Enabled {
		return nil
	}
	return p.runVideo(ctx, frames, opts.Delay, res)
}

func (p *Project) runVideo(ctx context.Context, frames []*image.RGBA, delay time.Duration, res *Result) error {
	v := p.Config.Animation.Video
	if p.Encoder == nil {
		return fmt.Errorf("video export enabled but no encoder configured")
	}
	if a, ok := p.Encoder.(interface{ Available() bool }); ok && !a.Available() {
		return fmt.Errorf("video export enabled but ffmpeg was not found in PATH")
	}

	start := time.Now()
	videoPath := filepath.Join(p.Config.OutputDir, v.Output)
	if err := os.MkdirAll(filepath.Dir(videoPath), 0755); err != nil {
		return err
	}
	params := video.Params{
		FrameDuration: delay,
		FPS:           v.FPS,
		Encoder:       v.Encoder,
		Quality:       v.Quality,
	}
	if err := p.Encoder.EncodeFrames(ctx, frames, videoPath, params); err != nil {
		return fmt.Errorf("encode video: %w", err)
	}
	res.Timings.Video = time.Since(start)
	res.Outputs = append(res.Outputs, videoPath)
	fmt.Fprintf(p.out(), "[>] Ready: %s\n", videoPath)
	return nil
}

// runStatic renders every static size from the first background frame. Sizes
// are independent and write distinct files, so they run in parallel.
func (p *Project) runStatic(ctx context.Context, src source.Source, target countdown.Target, now time.Time, res *Result) error {
	cfg := p.Config
	start := time.Now()

	bg, err := src.Frame(0)
	if err != nil {
		return fmt.Errorf("background frame: %w", err)
	}

	paths := make([]string, len(cfg.Static.Sizes))
	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, cfg.Workers))
	for i, size := range cfg.Static.Sizes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, _, err := p.Renderer.RenderStatic(bg, compositor.StaticOptions{
				Size:     compositor.Size{Name: size.Name, Width: size.Width, Height: size.Height},
				Template: cfg.Static.Text,
				Target:   target,
				Now:      now,
			})
			if err != nil {
				return fmt.Errorf("render %s: %w", size.Name, err)
			}

			path := cfg.Static.OutputPath(cfg.OutputDir, size)
			if err := system.WriteFileAtomic(path, func(w io.Writer) error {
				return compositor.EncodeJPEG(w, img, cfg.Static.Quality)
			}); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			paths[i] = path

			mu.Lock()
			done++
			fmt.Fprintf(p.out(), "[>] Ready: %d/%d %s\n", done, len(cfg.Static.Sizes), path)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	res.Timings.Static = time.Since(start)
	res.Outputs = append(res.Outputs, paths...)
	return nil
}
