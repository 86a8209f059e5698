package compositor

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"time"

	"github.com/fogleman/gg"

	"github.com/ivlev/alertkit/internal/animation"
	"github.com/ivlev/alertkit/internal/countdown"
	"github.com/ivlev/alertkit/internal/fonts"
	"github.com/ivlev/alertkit/internal/source"
	"github.com/ivlev/alertkit/internal/textfit"
)

const (
	DefaultAnimationWidth  = 1200
	DefaultAnimationHeight = 600
	DefaultFrames          = 10
	DefaultFrameDelay      = 500 * time.Millisecond
	DefaultAnimationText   = "{days} days left for decommissioning Current-Gen!"

	maxTextAlpha     = 255
	maxBackdropAlpha = 180
	maxShadowAlpha   = 200
	maxCornerRadius  = 30
)

// TextColor is the color of the animated headline.
var TextColor = color.NRGBA{R: 255, A: 255}

// Renderer owns the fonts used for all outputs. It is safe for concurrent use.
type Renderer struct {
	Bold    *fonts.Family
	Regular *fonts.Family
	// Pool recycles overlay buffers; nil allocates a fresh one per render.
	Pool interface {
		Get(image.Rectangle) *image.RGBA
		Put(*image.RGBA)
	}
}

// NewRenderer returns a renderer drawing headlines with bold and labels with
// regular.
func NewRenderer(bold, regular *fonts.Family) *Renderer {
	return &Renderer{Bold: bold, Regular: regular}
}

// AnimationOptions controls the animated sequence.
type AnimationOptions struct {
	Width, Height int
	Frames        int
	Delay         time.Duration
	Template      string
	Target        countdown.Target
	Now           time.Time
	Easing        animation.Easing
}

// DefaultAnimationOptions returns the 1200x600, ten frame, half second banner.
func DefaultAnimationOptions(target countdown.Target, now time.Time) AnimationOptions {
	return AnimationOptions{
		Width:    DefaultAnimationWidth,
		Height:   DefaultAnimationHeight,
		Frames:   DefaultFrames,
		Delay:    DefaultFrameDelay,
		Template: DefaultAnimationText,
		Target:   target,
		Now:      now,
		Easing:   animation.Linear,
	}
}

func (o AnimationOptions) validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("invalid canvas %dx%d", o.Width, o.Height)
	}
	if o.Frames <= 0 {
		return fmt.Errorf("invalid frame count %d", o.Frames)
	}
	return nil
}

// FrameLayout is everything computed for one animated frame before drawing.
type FrameLayout struct {
	Index         int
	Days          int
	Text          string
	Fit           textfit.Layout
	X, Y          int
	TextAlpha     uint8
	BackdropAlpha uint8
	ShadowAlpha   uint8
	Backdrop      image.Rectangle
	Radius        int
	ShadowOffset  int
}

// LayoutFrame computes the text, font size, position and alphas of frame i.
// The day count is evaluated i seconds after opts.Now. opts.Easing applies to
// the vertical slide, not to the fade.
func (r *Renderer) LayoutFrame(i int, opts AnimationOptions) FrameLayout {
	ease := opts.Easing
	if ease == nil {
		ease = animation.Linear
	}
	w, h := opts.Width, opts.Height

	days := opts.Target.DaysRemainingAfter(opts.Now, time.Duration(i)*time.Second)
	text := countdown.Format(opts.Template, days)
	fit := textfit.Fit(r.Bold, text, textfit.Animated(w, h))
	tw, th := fit.Width, fit.Height

	x := floorDiv(w-tw, 2)
	startY := h - int(float64(h)*0.15)
	endY := min(h-th-int(float64(h)*0.08), startY)
	progress := ease(animation.Progress(i, opts.Frames))
	y := int(animation.Lerp(float64(startY), float64(endY), progress))

	// Easing shapes the slide only; the fade stays linear so frame 0 is never
	// fully transparent.
	fade := animation.FadeStep(i, opts.Frames)
	mx := int(float64(tw) * 0.15)
	my := int(float64(th) * 0.25)

	return FrameLayout{
		Index:         i,
		Days:          days,
		Text:          text,
		Fit:           fit,
		X:             x,
		Y:             y,
		TextAlpha:     animation.ScaleAlpha(maxTextAlpha, fade),
		BackdropAlpha: animation.ScaleAlpha(maxBackdropAlpha, fade),
		ShadowAlpha:   animation.ScaleAlpha(maxShadowAlpha, fade),
		Backdrop:      image.Rect(x-mx, y-my, x+tw+mx, y+th+my),
		Radius:        max(0, min(mx, my, maxCornerRadius)),
		ShadowOffset:  shadowOffset(w, h),
	}
}

func shadowOffset(w, h int) int {
	return max(2, int(float64(min(w, h))*0.003))
}

// RenderFrames renders every frame of the sequence as RGBA. Frame i uses
// source frame i mod FrameCount.
func (r *Renderer) RenderFrames(ctx context.Context, src source.Source, opts AnimationOptions) ([]*image.RGBA, []FrameLayout, error) {
	if err := opts.validate(); err != nil {
		return nil, nil, err
	}
	n := src.FrameCount()
	if n == 0 {
		return nil, nil, fmt.Errorf("background has no frames")
	}

	backgrounds := make(map[int]*image.RGBA)
	frames := make([]*image.RGBA, 0, opts.Frames)
	layouts := make([]FrameLayout, 0, opts.Frames)

	for i := 0; i < opts.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		idx := source.CycleIndex(i, n)
		bg, ok := backgrounds[idx]
		if !ok {
			img, err := src.Frame(idx)
			if err != nil {
				return nil, nil, fmt.Errorf("background frame %d: %w", idx, err)
			}
			bg = resize(img, opts.Width, opts.Height)
			backgrounds[idx] = bg
		}

		layout := r.LayoutFrame(i, opts)
		frame := image.NewRGBA(bg.Rect)
		copy(frame.Pix, bg.Pix)
		if err := r.drawHeadline(frame, layout); err != nil {
			return nil, nil, fmt.Errorf("frame %d: %w", i, err)
		}

		frames = append(frames, frame)
		layouts = append(layouts, layout)
	}
	return frames, layouts, nil
}

func (r *Renderer) drawHeadline(dst *image.RGBA, l FrameLayout) error {
	fc, box, err := face(r.Bold, l.Fit.Size, l.Text)
	if err != nil {
		return err
	}
	defer fc.Close()

	ov := r.overlay(dst.Rect.Dx(), dst.Rect.Dy())
	defer r.release(ov)

	dc := gg.NewContextForRGBA(ov)
	FillBox(dc, l.Backdrop, l.Radius, color.NRGBA{A: l.BackdropAlpha})
	drawText(dc, fc, box, l.Text, l.X+l.ShadowOffset, l.Y+l.ShadowOffset, color.NRGBA{A: l.ShadowAlpha})
	c := TextColor
	c.A = l.TextAlpha
	drawText(dc, fc, box, l.Text, l.X, l.Y, c)

	composite(dst, ov)
	return nil
}

// EncodeGIF quantizes frames to the web-safe palette with Floyd-Steinberg
// dithering. The result loops forever.
func EncodeGIF(frames []*image.RGBA, delay time.Duration) *gif.GIF {
	cs := int(delay / (10 * time.Millisecond))
	g := &gif.GIF{LoopCount: 0}
	for _, f := range frames {
		p := image.NewPaletted(f.Bounds(), palette.WebSafe)
		draw.FloydSteinberg.Draw(p, p.Bounds(), f, f.Bounds().Min)
		g.Image = append(g.Image, p)
		g.Delay = append(g.Delay, cs)
		g.Disposal = append(g.Disposal, gif.DisposalNone)
	}
	if len(frames) > 0 {
		b := frames[0].Bounds()
		g.Config = image.Config{ColorModel: color.Palette(palette.WebSafe), Width: b.Dx(), Height: b.Dy()}
	}
	return g
}

// GenerateAnimation renders the sequence and returns it as a GIF.
func (r *Renderer) GenerateAnimation(ctx context.Context, src source.Source, opts AnimationOptions) (*gif.GIF, error) {
	frames, _, err := r.RenderFrames(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	return EncodeGIF(frames, opts.Delay), nil
}
