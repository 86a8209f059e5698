// Package source loads banner backgrounds from still images, animated GIFs and
// PDF pages.
package source

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/ivlev/alertkit/internal/system"
)

// Source supplies background frames. Output frame i uses Frame(i % FrameCount()).
type Source interface {
	FrameCount() int
	GetFrameDimensions(index int) (width, height float64, err error)
	Frame(index int) (image.Image, error)
	Close() error
}

// DefaultDPI is used when rendering PDF pages.
const DefaultDPI = 150

// Open picks a Source by file extension. A directory resolves to the most recently
// modified background inside it.
func Open(path string, dpi int) (Source, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("background %s: %w", path, err)
	}
	if fi.IsDir() {
		latest, err := system.FindLatestImage(path)
		if err != nil {
			return nil, err
		}
		path = latest
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return NewFitzPDFSource(path, dpi)
	case ".gif":
		return NewGIFSource(path)
	default:
		return NewImageSource(path)
	}
}

// CycleIndex maps an output frame index onto a source of n frames.
func CycleIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	return i % n
}

// FitzPDFSource renders PDF pages as background frames.
type FitzPDFSource struct {
	doc  *fitz.Document
	path string
	dpi  int
}

func NewFitzPDFSource(path string, dpi int) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &FitzPDFSource{doc: doc, path: path, dpi: dpi}, nil
}

func (f *FitzPDFSource) FrameCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) GetFrameDimensions(index int) (float64, float64, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

func (f *FitzPDFSource) Frame(index int) (image.Image, error) {
	return f.doc.ImageDPI(index, float64(f.dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
