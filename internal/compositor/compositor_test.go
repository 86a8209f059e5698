package compositor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/alertkit/internal/animation"
	"github.com/ivlev/alertkit/internal/countdown"
	"github.com/ivlev/alertkit/internal/fonts"
	"github.com/ivlev/alertkit/internal/source"
	"github.com/ivlev/alertkit/internal/system"
)

var (
	newYear  = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	deadline = countdown.Target{Year: 2025, Month: time.December, Day: 31}
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	resolver := fonts.NewResolver(nil)
	bold, err := resolver.Load(fonts.Bold)
	require.NoError(t, err)
	regular, err := resolver.Load(fonts.Regular)
	require.NoError(t, err)

	r := NewRenderer(bold, regular)
	r.Pool = system.NewImagePool()
	return r
}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func near(t *testing.T, want color.NRGBA, got color.Color) {
	t.Helper()
	r, g, b, _ := got.RGBA()
	assert.InDelta(t, int(want.R), int(r>>8), 2)
	assert.InDelta(t, int(want.G), int(g>>8), 2)
	assert.InDelta(t, int(want.B), int(b>>8), 2)
}

type recordingSurface struct {
	calls []string
}

func (s *recordingSurface) SetRGBA255(r, g, b, a int)         { s.calls = append(s.calls, "color") }
func (s *recordingSurface) DrawRectangle(x, y, w, h float64) { s.calls = append(s.calls, "rect") }
func (s *recordingSurface) Fill()                            { s.calls = append(s.calls, "fill") }

type roundingSurface struct {
	recordingSurface
}

func (s *roundingSurface) DrawRoundedRectangle(x, y, w, h, r float64) {
	s.calls = append(s.calls, "rounded")
}

func TestFillBox(t *testing.T) {
	box := image.Rect(0, 0, 10, 10)

	t.Run("rounded when supported", func(t *testing.T) {
		s := &roundingSurface{}
		FillBox(s, box, 4, color.NRGBA{A: 180})
		assert.Equal(t, []string{"color", "rounded", "fill"}, s.calls)
	})

	t.Run("plain when surface cannot round", func(t *testing.T) {
		s := &recordingSurface{}
		FillBox(s, box, 4, color.NRGBA{A: 180})
		assert.Equal(t, []string{"color", "rect", "fill"}, s.calls)
	})

	t.Run("plain when radius is zero", func(t *testing.T) {
		s := &roundingSurface{}
		FillBox(s, box, 0, color.NRGBA{A: 180})
		assert.Equal(t, []string{"color", "rect", "fill"}, s.calls)
	})
}

func TestLayoutFrame_Sequence(t *testing.T) {
	r := newTestRenderer(t)

	easings := map[string]animation.Easing{
		"linear": animation.Linear,
		"cubic":  animation.EaseInOutCubic,
	}
	for name, ease := range easings {
		t.Run(name, func(t *testing.T) {
			opts := DefaultAnimationOptions(deadline, newYear)
			opts.Easing = ease

			var layouts []FrameLayout
			for i := 0; i < opts.Frames; i++ {
				layouts = append(layouts, r.LayoutFrame(i, opts))
			}

			first, last := layouts[0], layouts[len(layouts)-1]
			assert.Equal(t, uint8(25), first.TextAlpha)
			assert.Equal(t, uint8(18), first.BackdropAlpha)
			assert.Equal(t, uint8(20), first.ShadowAlpha)
			assert.Equal(t, uint8(255), last.TextAlpha)
			assert.Equal(t, uint8(180), last.BackdropAlpha)
			assert.Equal(t, uint8(200), last.ShadowAlpha)

			// Exactly 364 days at midnight, one second later the floor drops a day.
			assert.Equal(t, 364, first.Days)
			assert.Equal(t, "364 days left for decommissioning Current-Gen!", first.Text)
			assert.Equal(t, 363, layouts[1].Days)

			floor := int(float64(min(opts.Width, opts.Height)) * 0.05)
			for i := 1; i < len(layouts); i++ {
				assert.LessOrEqual(t, layouts[i].Y, layouts[i-1].Y, "frame %d moved down", i)
				assert.GreaterOrEqual(t, layouts[i].TextAlpha, layouts[i-1].TextAlpha)
			}
			for _, l := range layouts {
				assert.NotZero(t, l.TextAlpha, "frame %d", l.Index)
				assert.NotZero(t, l.BackdropAlpha, "frame %d", l.Index)
				assert.NotZero(t, l.ShadowAlpha, "frame %d", l.Index)
				assert.GreaterOrEqual(t, l.Fit.Size, floor)
				assert.LessOrEqual(t, l.Radius, 30)
				assert.Equal(t, 2, l.ShadowOffset)
				if l.Fit.Fits {
					assert.Less(t, float64(l.Fit.Width), 0.9*float64(opts.Width))
				}
			}
		})
	}
}

func TestLayoutFrame_EasingOnlyMovesText(t *testing.T) {
	r := newTestRenderer(t)
	linear := DefaultAnimationOptions(deadline, newYear)
	linear.Template = "{days}"
	cubic := linear
	cubic.Easing = animation.EaseInOutCubic

	// Digits alone fit large enough to slide. At frame 2 of 10 the cubic curve
	// lags linear, so the text sits lower.
	l, c := r.LayoutFrame(2, linear), r.LayoutFrame(2, cubic)
	assert.Greater(t, c.Y, l.Y)
	assert.Equal(t, l.TextAlpha, c.TextAlpha)
	assert.Equal(t, l.BackdropAlpha, c.BackdropAlpha)

	first, last := r.LayoutFrame(0, cubic), r.LayoutFrame(9, cubic)
	assert.Equal(t, r.LayoutFrame(0, linear).Y, first.Y)
	assert.Equal(t, r.LayoutFrame(9, linear).Y, last.Y)
}

func TestLayoutFrame_TinyCanvasStaysMonotonic(t *testing.T) {
	r := newTestRenderer(t)
	opts := DefaultAnimationOptions(deadline, newYear)
	opts.Width, opts.Height = 60, 30

	prev := r.LayoutFrame(0, opts)
	for i := 1; i < opts.Frames; i++ {
		l := r.LayoutFrame(i, opts)
		assert.LessOrEqual(t, l.Y, prev.Y)
		assert.GreaterOrEqual(t, l.Fit.Size, 1)
		prev = l
	}
}

func TestRenderFrames_CyclesBackground(t *testing.T) {
	r := newTestRenderer(t)
	colors := []color.NRGBA{
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
	}
	src := source.NewFramesSource(
		solid(8, 8, colors[0]),
		solid(8, 8, colors[1]),
		solid(8, 8, colors[2]),
	)

	opts := DefaultAnimationOptions(deadline, newYear)
	opts.Width, opts.Height = 240, 120

	frames, layouts, err := r.RenderFrames(context.Background(), src, opts)
	require.NoError(t, err)
	require.Len(t, frames, 10)
	require.Len(t, layouts, 10)

	for i, f := range frames {
		assert.Equal(t, image.Rect(0, 0, 240, 120), f.Bounds())
		near(t, colors[i%3], f.At(0, 0))
	}
}

func TestRenderFrames_Cancelled(t *testing.T) {
	r := newTestRenderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := r.RenderFrames(ctx, source.NewFramesSource(solid(4, 4, color.White)), DefaultAnimationOptions(deadline, newYear))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderFrames_EmptySource(t *testing.T) {
	r := newTestRenderer(t)
	_, _, err := r.RenderFrames(context.Background(), source.NewFramesSource(), DefaultAnimationOptions(deadline, newYear))
	assert.Error(t, err)
}

func TestGenerateAnimation(t *testing.T) {
	r := newTestRenderer(t)
	src := source.NewFramesSource(solid(16, 8, color.NRGBA{R: 40, G: 90, B: 160, A: 255}))

	g, err := r.GenerateAnimation(context.Background(), src, DefaultAnimationOptions(deadline, newYear))
	require.NoError(t, err)

	require.Len(t, g.Image, 10)
	assert.Equal(t, 0, g.LoopCount)
	for i, frame := range g.Image {
		assert.Equal(t, image.Rect(0, 0, 1200, 600), frame.Bounds(), "frame %d", i)
		assert.Equal(t, 50, g.Delay[i])
	}
	assert.Equal(t, 1200, g.Config.Width)
	assert.Equal(t, 600, g.Config.Height)
}

func TestEncodeGIF_Delay(t *testing.T) {
	frames := []*image.RGBA{image.NewRGBA(image.Rect(0, 0, 2, 2))}
	g := EncodeGIF(frames, 200*time.Millisecond)
	assert.Equal(t, []int{20}, g.Delay)
}

func TestLayoutStatic(t *testing.T) {
	r := newTestRenderer(t)

	for _, size := range DefaultSizes() {
		t.Run(size.Name, func(t *testing.T) {
			l := r.LayoutStatic(StaticOptions{Size: size, Target: deadline, Now: newYear})

			bh := int(float64(size.Height) * 0.13)
			assert.Equal(t, "364 Days Left!", l.Text)
			assert.Equal(t, "Generated: 2025-01-01 00:00:00", l.Label)
			assert.Equal(t, image.Rect(0, size.Height-bh, size.Width, size.Height), l.Banner)
			assert.GreaterOrEqual(t, l.Fit.Size, int(float64(bh)*0.8))
			assert.Equal(t, max(16, int(float64(min(size.Width, size.Height))*0.06)), l.LabelSize)
			assert.Equal(t, 10, l.LabelY)
		})
	}
}

func TestRenderStatic(t *testing.T) {
	r := newTestRenderer(t)
	size := Size{Name: "small", Width: 320, Height: 240}

	img, l, err := r.RenderStatic(solid(64, 48, color.White), StaticOptions{Size: size, Target: deadline, Now: newYear})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 320, 240), img.Bounds())
	assert.Equal(t, "364 Days Left!", l.Text)

	// Untouched corner keeps the background, the banner corner is darkened.
	near(t, color.NRGBA{R: 255, G: 255, B: 255}, img.At(0, 0))
	br, _, _, ba := img.At(0, 239).RGBA()
	assert.Less(t, br>>8, uint32(100))
	assert.Equal(t, uint32(0xffff), ba)
}

func TestRenderStatic_FlattensOverBlack(t *testing.T) {
	r := newTestRenderer(t)
	size := Size{Name: "tiny", Width: 200, Height: 100}

	img, _, err := r.RenderStatic(solid(10, 10, color.NRGBA{}), StaticOptions{Size: size, Target: deadline, Now: newYear})
	require.NoError(t, err)

	_, _, _, a := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), a)
	near(t, color.NRGBA{}, img.At(0, 0))
}

func TestRenderStatic_InvalidSize(t *testing.T) {
	r := newTestRenderer(t)
	_, _, err := r.RenderStatic(solid(2, 2, color.White), StaticOptions{Size: Size{Name: "bad"}})
	assert.Error(t, err)
}

func TestEncodeJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeJPEG(&buf, solid(32, 16, color.White), 0))

	cfg, err := jpeg.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Width)
	assert.Equal(t, 16, cfg.Height)
}
