package video

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"slices"
	"testing"
	"time"
)

func argAfter(args []string, flag string) string {
	i := slices.Index(args, flag)
	if i < 0 || i+1 >= len(args) {
		return ""
	}
	return args[i+1]
}

func TestBuildFFmpegArgs(t *testing.T) {
	e := &FFmpegEncoder{}
	tests := []struct {
		name        string
		params      Params
		qualityFlag string
		qualityVal  string
	}{
		{"libx264", Params{FrameDuration: 500 * time.Millisecond, FPS: 10, Encoder: "libx264", Quality: 23}, "-crf", "23"},
		{"nvenc", Params{FrameDuration: 500 * time.Millisecond, FPS: 10, Encoder: "h264_nvenc", Quality: 28}, "-cq", "28"},
		{"videotoolbox", Params{FrameDuration: 500 * time.Millisecond, FPS: 10, Encoder: "h264_videotoolbox", Quality: 75}, "-b:v", "7500k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := e.buildFFmpegArgs(1200, 600, "out.mp4", tt.params)

			if got := argAfter(args, "-video_size"); got != "1200x600" {
				t.Errorf("video_size = %q", got)
			}
			if got := argAfter(args, "-framerate"); got != "2" {
				t.Errorf("framerate = %q, want 2 for 500ms frames", got)
			}
			if got := argAfter(args, "-r"); got != "10" {
				t.Errorf("output rate = %q", got)
			}
			if got := argAfter(args, tt.qualityFlag); got != tt.qualityVal {
				t.Errorf("%s = %q, want %q", tt.qualityFlag, got, tt.qualityVal)
			}
			if args[len(args)-1] != "out.mp4" {
				t.Errorf("output must be last, got %q", args[len(args)-1])
			}
		})
	}
}

func TestBuildFFmpegArgs_Defaults(t *testing.T) {
	args := (&FFmpegEncoder{}).buildFFmpegArgs(4, 4, "v.mp4", Params{})
	if got := argAfter(args, "-c:v"); got != "libx264" {
		t.Errorf("encoder = %q", got)
	}
	if got := argAfter(args, "-framerate"); got != "1" {
		t.Errorf("framerate = %q", got)
	}
}

func TestWriteRawRGBA_SubImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src.Set(2, 2, color.RGBA{R: 9, G: 8, B: 7, A: 255})
	sub := src.SubImage(image.Rect(2, 2, 4, 4))

	var buf bytes.Buffer
	if err := (&FFmpegEncoder{}).writeRawRGBA(&buf, sub); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 2*2*4 {
		t.Fatalf("wrote %d bytes, want 16", buf.Len())
	}
	if got := buf.Bytes()[:4]; !bytes.Equal(got, []byte{9, 8, 7, 255}) {
		t.Errorf("first pixel = %v", got)
	}
}

func TestEncodeFrames_Validation(t *testing.T) {
	e := &FFmpegEncoder{Binary: "ffmpeg-does-not-exist"}
	if e.Available() {
		t.Fatal("bogus binary reported as available")
	}
	if err := e.EncodeFrames(context.Background(), nil, "x.mp4", Params{}); err == nil {
		t.Error("expected error for empty frame list")
	}
	frames := []*image.RGBA{
		image.NewRGBA(image.Rect(0, 0, 2, 2)),
		image.NewRGBA(image.Rect(0, 0, 3, 3)),
	}
	if err := e.EncodeFrames(context.Background(), frames, "x.mp4", Params{}); err == nil {
		t.Error("expected error for mismatched frame sizes")
	}
}
