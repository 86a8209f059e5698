// Package fonts resolves TrueType fonts by name or path and falls back to the
// embedded Go fonts, so rendering never fails because a system font is missing.
package fonts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Weight selects which embedded font backs a family when no candidate loads.
type Weight int

const (
	Regular Weight = iota
	Bold
)

// BuiltinSource is reported as the Source of a family using an embedded font.
const BuiltinSource = "builtin"

// SearchDirs are the directories tried for candidates given by bare file name.
var SearchDirs = []string{
	".",
	"/usr/share/fonts/truetype/dejavu",
	"/usr/share/fonts/truetype/msttcorefonts",
	"/usr/share/fonts/TTF",
	"/Library/Fonts",
	"/System/Library/Fonts/Supplemental",
	`C:\Windows\Fonts`,
}

// Family is a parsed font able to produce faces at any pixel size. A Family may
// be shared between goroutines; the faces it returns may not.
type Family struct {
	font   *opentype.Font
	source string
}

// Source is the path the font was loaded from, or BuiltinSource.
func (f *Family) Source() string { return f.source }

// Builtin reports whether the embedded fallback is in use.
func (f *Family) Builtin() bool { return f.source == BuiltinSource }

// Face returns a new face for the pixel size (72 DPI, so points equal pixels).
// The caller closes it.
func (f *Family) Face(size int) (font.Face, error) {
	if size < 1 {
		size = 1
	}
	face, err := opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}

// Measure returns the ink bounding box of text at size, in pixels. It satisfies
// textfit.Measurer.
func (f *Family) Measure(text string, size int) (int, int) {
	face, err := f.Face(size)
	if err != nil {
		return 0, 0
	}
	defer face.Close()
	b := Bounds(face, text)
	return b.Dx(), b.Dy()
}

// Bounds returns the ink box of text relative to a dot at the origin on the
// baseline. Min.Y is negative for glyphs above the baseline.
func Bounds(face font.Face, text string) Box {
	b, _ := font.BoundString(face, text)
	return Box{
		MinX: b.Min.X.Floor(),
		MinY: b.Min.Y.Floor(),
		MaxX: b.Max.X.Ceil(),
		MaxY: b.Max.Y.Ceil(),
	}
}

// Box is an integer ink box.
type Box struct {
	MinX, MinY, MaxX, MaxY int
}

func (b Box) Dx() int { return max(0, b.MaxX-b.MinX) }
func (b Box) Dy() int { return max(0, b.MaxY-b.MinY) }

// Origin returns the dot that places the top-left of the ink box at (x, y).
func (b Box) Origin(x, y int) fixed.Point26_6 {
	return fixed.P(x-b.MinX, y-b.MinY)
}

// Resolver walks candidate font names/paths in order.
type Resolver struct {
	Dirs   []string
	Logger *slog.Logger
}

// NewResolver returns a resolver over SearchDirs.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{Dirs: SearchDirs, Logger: logger}
}

// Load returns the first candidate that parses, or the embedded font of the
// given weight. Load only fails if the embedded font itself cannot be parsed.
func (r *Resolver) Load(weight Weight, candidates ...string) (*Family, error) {
	for _, c := range candidates {
		for _, path := range r.expand(c) {
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			parsed, err := opentype.Parse(data)
			if err != nil {
				r.Logger.Debug("font unreadable, trying next", "path", path, "error", err)
				continue
			}
			return newFamily(parsed, path), nil
		}
		r.Logger.Debug("font not found", "font", c)
	}

	parsed, err := builtin(weight)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("using builtin font", "weight", weight)
	return newFamily(parsed, BuiltinSource), nil
}

func (r *Resolver) expand(candidate string) []string {
	if candidate == "" {
		return nil
	}
	if filepath.IsAbs(candidate) || filepath.Base(candidate) != candidate {
		return []string{candidate}
	}
	paths := make([]string, 0, len(r.Dirs))
	for _, dir := range r.Dirs {
		paths = append(paths, filepath.Join(dir, candidate))
	}
	return paths
}

var (
	builtinOnce sync.Once
	builtinBold *opentype.Font
	builtinReg  *opentype.Font
	builtinErr  error
)

func builtin(weight Weight) (*opentype.Font, error) {
	builtinOnce.Do(func() {
		builtinBold, builtinErr = opentype.Parse(gobold.TTF)
		if builtinErr != nil {
			builtinErr = fmt.Errorf("parse embedded bold font: %w", builtinErr)
			return
		}
		builtinReg, builtinErr = opentype.Parse(goregular.TTF)
		if builtinErr != nil {
			builtinErr = fmt.Errorf("parse embedded regular font: %w", builtinErr)
		}
	})
	if builtinErr != nil {
		return nil, builtinErr
	}
	if weight == Bold {
		return builtinBold, nil
	}
	return builtinReg, nil
}

func newFamily(f *opentype.Font, source string) *Family {
	return &Family{font: f, source: source}
}
