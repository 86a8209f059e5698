package system

import (
	"image"
	"sync"
)

// ImagePool recycles the transparent overlay buffers text is drawn on. Buffers
// are bucketed by rectangle because every frame of an animation, and every
// render of one static size, asks for the same bounds.
//
// Get always returns a cleared buffer, so callers can draw on it straight away
// without erasing the previous frame's text.
type ImagePool struct {
	mu      sync.RWMutex
	buckets map[image.Rectangle]*sync.Pool
}

func NewImagePool() *ImagePool {
	return &ImagePool{buckets: make(map[image.Rectangle]*sync.Pool)}
}

func (p *ImagePool) bucket(rect image.Rectangle, create bool) *sync.Pool {
	p.mu.RLock()
	b := p.buckets[rect]
	p.mu.RUnlock()
	if b != nil || !create {
		return b
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if b = p.buckets[rect]; b == nil {
		b = &sync.Pool{New: func() any { return image.NewRGBA(rect) }}
		p.buckets[rect] = b
	}
	return b
}

// Get returns a fully transparent overlay with bounds rect.
func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	img := p.bucket(rect, true).Get().(*image.RGBA)
	clear(img.Pix)
	return img
}

// Put returns an overlay obtained from Get. Buffers of unknown bounds are dropped.
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	if b := p.bucket(img.Rect, false); b != nil {
		b.Put(img)
	}
}
