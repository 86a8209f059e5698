package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ivlev/alertkit/internal/config"
	"github.com/ivlev/alertkit/internal/engine"
	"github.com/ivlev/alertkit/internal/video"
)

type generateFlags struct {
	configPath string
	background string
	outputDir  string
	deadline   string
	workers    int
	dpi        int
	width      int
	height     int
	frames     int
	easing     string
	stats      bool
	withVideo  bool
	noAnim     bool
	noStatic   bool
}

func generateCmd(version string) *cobra.Command {
	var f generateFlags

	c := &cobra.Command{
		Use:   "generate",
		Short: "Render the animated countdown GIF and the static banner images",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadJob(cmd, &f)
			if err != nil {
				return err
			}
			cfg.BuildVersion = version

			renderer, err := engine.NewRenderer(cfg, slog.Default())
			if err != nil {
				return err
			}

			project := engine.NewProject(cfg, renderer, &video.FFmpegEncoder{})
			project.Out = cmd.OutOrStdout()
			project.Logger = slog.Default()

			res, err := project.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "[+++] Success! %d days left, %d files in %s\n", res.Days, len(res.Outputs), cfg.OutputDir)
			return nil
		},
	}

	c.Flags().StringVarP(&f.configPath, "config", "c", "", "Job file (YAML); defaults are used when omitted")
	c.Flags().StringVarP(&f.background, "background", "b", "", "Background image, GIF, PDF or directory (newest file is used)")
	c.Flags().StringVarP(&f.outputDir, "output", "o", "", "Output directory")
	c.Flags().StringVar(&f.deadline, "deadline", "", "Deadline date, YYYY-MM-DD")
	c.Flags().IntVar(&f.workers, "workers", 0, "Parallel static renders")
	c.Flags().IntVar(&f.dpi, "dpi", 0, "DPI for PDF backgrounds")
	c.Flags().IntVar(&f.width, "width", 0, "Animation width")
	c.Flags().IntVar(&f.height, "height", 0, "Animation height")
	c.Flags().IntVar(&f.frames, "frames", 0, "Animation frame count")
	c.Flags().StringVar(&f.easing, "easing", "", "Slide and fade easing: linear or cubic")
	c.Flags().BoolVar(&f.stats, "stats", false, "Print a performance report and append it to benchmark.log")
	c.Flags().BoolVar(&f.withVideo, "video", false, "Also export the animation as MP4 (needs ffmpeg)")
	c.Flags().BoolVar(&f.noAnim, "no-animation", false, "Skip the animated GIF")
	c.Flags().BoolVar(&f.noStatic, "no-static", false, "Skip the static images")
	return c
}

// loadJob reads the job file, if any, and applies explicitly set flags on top.
func loadJob(cmd *cobra.Command, f *generateFlags) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Read(f.configPath); err != nil {
			return nil, fmt.Errorf("read job file: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("background") {
		cfg.Background = f.background
	}
	if flags.Changed("output") {
		cfg.OutputDir = f.outputDir
	}
	if flags.Changed("deadline") {
		cfg.Deadline = f.deadline
	}
	if flags.Changed("workers") {
		cfg.Workers = f.workers
	}
	if flags.Changed("dpi") {
		cfg.DPI = f.dpi
	}
	if flags.Changed("width") {
		cfg.Animation.Width = f.width
	}
	if flags.Changed("height") {
		cfg.Animation.Height = f.height
	}
	if flags.Changed("frames") {
		cfg.Animation.Frames = f.frames
	}
	if flags.Changed("easing") {
		cfg.Animation.Easing = f.easing
	}
	if flags.Changed("stats") {
		cfg.ShowStats = f.stats
	}
	if flags.Changed("video") {
		cfg.Animation.Video.Enabled = f.withVideo
	}
	if f.noAnim {
		cfg.Animation.Enabled = false
	}
	if f.noStatic {
		cfg.Static.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
