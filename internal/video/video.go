package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"strings"
	"time"
)

// Params describes how a frame sequence is turned into a video.
type Params struct {
	// FrameDuration is how long each input frame stays on screen.
	FrameDuration time.Duration
	// FPS is the output frame rate.
	FPS     int
	Encoder string
	Quality int
}

type VideoEncoder interface {
	EncodeFrames(ctx context.Context, frames []*image.RGBA, videoPath string, params Params) error
}

type FFmpegEncoder struct {
	// Binary is the ffmpeg executable; empty means "ffmpeg" from PATH.
	Binary string
}

func (e *FFmpegEncoder) binary() string {
	if e.Binary == "" {
		return "ffmpeg"
	}
	return e.Binary
}

// Available reports whether the ffmpeg binary can be found.
func (e *FFmpegEncoder) Available() bool {
	_, err := exec.LookPath(e.binary())
	return err == nil
}

// BestH264Encoder prefers hardware encoders that ffmpeg reports, falling back
// to libx264.
func (e *FFmpegEncoder) BestH264Encoder(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, e.binary(), "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), name) {
			return name
		}
	}
	return "libx264"
}

// EncodeFrames pipes frames to ffmpeg as raw RGBA, so nothing touches the disk
// except the final video.
func (e *FFmpegEncoder) EncodeFrames(ctx context.Context, frames []*image.RGBA, videoPath string, params Params) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to encode")
	}
	b := frames[0].Bounds()
	for i, f := range frames {
		if f.Bounds().Size() != b.Size() {
			return fmt.Errorf("frame %d is %v, want %v", i, f.Bounds().Size(), b.Size())
		}
	}

	args := e.buildFFmpegArgs(b.Dx(), b.Dy(), videoPath, params)
	cmd := exec.CommandContext(ctx, e.binary(), args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	for i, f := range frames {
		if err := e.writeRawRGBA(stdin, f); err != nil {
			stdin.Close()
			cmd.Wait()
			return fmt.Errorf("write raw frame %d: %w", i, err)
		}
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, out.String())
	}
	return nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(inputW, inputH int, videoPath string, params Params) []string {
	inputRate := 1.0
	if params.FrameDuration > 0 {
		inputRate = float64(time.Second) / float64(params.FrameDuration)
	}
	fps := params.FPS
	if fps <= 0 {
		fps = 25
	}
	encoderName := params.Encoder
	if encoderName == "" {
		encoderName = "libx264"
	}

	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", inputW, inputH),
		"-framerate", fmt.Sprintf("%g", inputRate),
		"-i", "-",
		// yuv420p needs even dimensions.
		"-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2",
		"-r", fmt.Sprintf("%d", fps),
		"-pix_fmt", "yuv420p",
		"-c:v", encoderName,
	}

	// Качество в зависимости от энкодера
	quality := params.Quality
	switch encoderName {
	case "h264_videotoolbox":
		args = append(args, "-b:v", fmt.Sprintf("%dk", quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", quality), "-preset", "medium")
	}

	args = append(args, videoPath)
	return args
}

func (e *FFmpegEncoder) writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}
