package compositor

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/ivlev/alertkit/internal/countdown"
	"github.com/ivlev/alertkit/internal/fonts"
	"github.com/ivlev/alertkit/internal/textfit"
)

const (
	DefaultStaticText  = "{days} Days Left!"
	DefaultJPEGQuality = 75

	labelTop      = 10
	labelPadX     = 5
	labelPadY     = 2
	labelMinSize  = 16
	bannerShare   = 0.13
	labelSizeFrac = 0.06
)

var (
	bannerColor   = color.NRGBA{A: 180}
	labelBoxColor = color.NRGBA{A: 120}
	white         = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black         = color.NRGBA{A: 255}
)

// Size is a named static output.
type Size struct {
	Name          string
	Width, Height int
}

// DefaultSizes are the static outputs produced by a default job.
func DefaultSizes() []Size {
	return []Size{
		{Name: "small", Width: 320, Height: 240},
		{Name: "medium", Width: 640, Height: 480},
		{Name: "large", Width: 800, Height: 580},
		{Name: "banner", Width: 1200, Height: 500},
	}
}

// StaticOptions controls one static render.
type StaticOptions struct {
	Size     Size
	Template string
	Target   countdown.Target
	Now      time.Time
}

// StaticLayout is the computed geometry of a static banner image.
type StaticLayout struct {
	Days         int
	Text         string
	Fit          textfit.Layout
	Banner       image.Rectangle
	TextX, TextY int
	ShadowOffset int

	Label     string
	LabelSize int
	LabelBox  image.Rectangle
	LabelX    int
	LabelY    int
}

// LayoutStatic computes the banner, headline and timestamp label geometry.
func (r *Renderer) LayoutStatic(opts StaticOptions) StaticLayout {
	w, h := opts.Size.Width, opts.Size.Height
	tmpl := opts.Template
	if tmpl == "" {
		tmpl = DefaultStaticText
	}

	days := opts.Target.DaysRemaining(opts.Now)
	text := countdown.Format(tmpl, days)
	bh := int(float64(h) * bannerShare)
	fit := textfit.Fit(r.Bold, text, textfit.Banner(w, bh))

	label := countdown.GeneratedLabel(opts.Now)
	labelSize := max(labelMinSize, int(float64(min(w, h))*labelSizeFrac))
	lw, lh := r.labelFamily().Measure(label, labelSize)
	lx := floorDiv(w-lw, 2)

	return StaticLayout{
		Days:         days,
		Text:         text,
		Fit:          fit,
		Banner:       image.Rect(0, h-bh, w, h),
		TextX:        floorDiv(w-fit.Width, 2),
		TextY:        h - bh + floorDiv(bh-fit.Height, 2),
		ShadowOffset: shadowOffset(w, h),
		Label:        label,
		LabelSize:    labelSize,
		LabelBox:     image.Rect(lx-labelPadX, labelTop-labelPadY, lx+lw+labelPadX, labelTop+lh+labelPadY),
		LabelX:       lx,
		LabelY:       labelTop,
	}
}

func (r *Renderer) labelFamily() *fonts.Family {
	if r.Regular != nil {
		return r.Regular
	}
	return r.Bold
}

// RenderStatic draws one static output from the background image. The result
// is opaque: any transparency left in the background is flattened over black.
func (r *Renderer) RenderStatic(bg image.Image, opts StaticOptions) (*image.RGBA, StaticLayout, error) {
	w, h := opts.Size.Width, opts.Size.Height
	if w <= 0 || h <= 0 {
		return nil, StaticLayout{}, fmt.Errorf("invalid size %q: %dx%d", opts.Size.Name, w, h)
	}

	layout := r.LayoutStatic(opts)
	canvas := resize(bg, w, h)

	ov := r.overlay(w, h)
	defer r.release(ov)
	dc := gg.NewContextForRGBA(ov)

	FillBox(dc, layout.Banner, 0, bannerColor)

	fc, box, err := face(r.Bold, layout.Fit.Size, layout.Text)
	if err != nil {
		return nil, StaticLayout{}, err
	}
	drawText(dc, fc, box, layout.Text, layout.TextX+layout.ShadowOffset, layout.TextY+layout.ShadowOffset, black)
	drawText(dc, fc, box, layout.Text, layout.TextX, layout.TextY, white)
	fc.Close()

	lf, lbox, err := face(r.labelFamily(), layout.LabelSize, layout.Label)
	if err != nil {
		return nil, StaticLayout{}, err
	}
	FillBox(dc, layout.LabelBox, 0, labelBoxColor)
	drawText(dc, lf, lbox, layout.Label, layout.LabelX, layout.LabelY, white)
	lf.Close()

	composite(canvas, ov)
	return flatten(canvas), layout, nil
}

// EncodeJPEG writes img as a baseline JPEG.
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return nil
}
