package source

import (
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// ImageSource is a single decoded still image.
type ImageSource struct {
	img image.Image
}

func NewImageSource(path string) (*ImageSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &ImageSource{img: img}, nil
}

// NewStaticSource wraps an in-memory image.
func NewStaticSource(img image.Image) *ImageSource {
	return &ImageSource{img: img}
}

func (s *ImageSource) FrameCount() int {
	return 1
}

func (s *ImageSource) GetFrameDimensions(int) (float64, float64, error) {
	b := s.img.Bounds()
	return float64(b.Dx()), float64(b.Dy()), nil
}

func (s *ImageSource) Frame(int) (image.Image, error) {
	return s.img, nil
}

func (s *ImageSource) Close() error {
	return nil
}

// FramesSource holds fully composed frames, e.g. of an animated GIF.
type FramesSource struct {
	frames []image.Image
}

// NewFramesSource wraps in-memory frames.
func NewFramesSource(frames ...image.Image) *FramesSource {
	return &FramesSource{frames: frames}
}

// NewGIFSource decodes every frame of a GIF. Frames are composed on the logical
// screen with their disposal methods applied, so each one is a full picture rather
// than a delta rectangle.
func NewGIFSource(path string) (*FramesSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := gif.DecodeAll(f)
	if err != nil {
		return nil, fmt.Errorf("decode gif %s: %w", path, err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("gif %s has no frames", path)
	}
	return &FramesSource{frames: composeGIF(g)}, nil
}

func composeGIF(g *gif.GIF) []image.Image {
	screen := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if screen.Empty() {
		screen = g.Image[0].Bounds()
		for _, p := range g.Image[1:] {
			screen = screen.Union(p.Bounds())
		}
	}

	canvas := image.NewRGBA(screen)
	frames := make([]image.Image, 0, len(g.Image))
	for i, p := range g.Image {
		var saved *image.RGBA
		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			saved = image.NewRGBA(screen)
			copy(saved.Pix, canvas.Pix)
		}

		draw.Draw(canvas, p.Bounds(), p, p.Bounds().Min, draw.Over)

		frame := image.NewRGBA(screen)
		copy(frame.Pix, canvas.Pix)
		frames = append(frames, frame)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, p.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = saved
		}
	}
	return frames
}

func (s *FramesSource) FrameCount() int {
	return len(s.frames)
}

func (s *FramesSource) GetFrameDimensions(index int) (float64, float64, error) {
	if index < 0 || index >= len(s.frames) {
		return 0, 0, fmt.Errorf("frame %d out of range [0,%d)", index, len(s.frames))
	}
	b := s.frames[index].Bounds()
	return float64(b.Dx()), float64(b.Dy()), nil
}

func (s *FramesSource) Frame(index int) (image.Image, error) {
	if index < 0 || index >= len(s.frames) {
		return nil, fmt.Errorf("frame %d out of range [0,%d)", index, len(s.frames))
	}
	return s.frames[index], nil
}

func (s *FramesSource) Close() error {
	return nil
}
