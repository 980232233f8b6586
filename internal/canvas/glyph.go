package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// ErrEmptyGlyph is returned when asked to paint an empty string.
var ErrEmptyGlyph = errors.New("glyph is empty")

// FontSet resolves faces of one font at arbitrary pixel sizes. Faces are
// created on first use and cached.
type FontSet struct {
	font  *opentype.Font
	faces sync.Map // map[float64]font.Face
	// opentype faces keep a scratch buffer and must not be used concurrently.
	mu sync.Mutex
}

var (
	defaultFontsOnce sync.Once
	defaultFonts     *FontSet
)

// DefaultFonts returns the shared set backed by the embedded Go Regular font.
// Go Regular has no colour emoji; glyphs it lacks are painted as the font's
// missing-glyph box.
func DefaultFonts() *FontSet {
	defaultFontsOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			panic(fmt.Sprintf("parse embedded font: %v", err))
		}
		defaultFonts = NewFontSet(f)
	})
	return defaultFonts
}

// NewFontSet wraps a parsed font.
func NewFontSet(f *opentype.Font) *FontSet {
	return &FontSet{font: f}
}

// LoadFontFile parses a TrueType or OpenType file from disk.
func LoadFontFile(path string) (*FontSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return NewFontSet(f), nil
}

func (fs *FontSet) face(size float64) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %v", size)
	}
	if face, ok := fs.faces.Load(size); ok {
		return face.(font.Face), nil
	}
	face, err := opentype.NewFace(fs.font, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	actual, _ := fs.faces.LoadOrStore(size, face)
	return actual.(font.Face), nil
}

// GlyphTile renders glyph at the given pixel size onto a transparent tile
// just large enough to hold it. The fill is painted over a black outline that
// extends outline pixels around every covered pixel.
func (fs *FontSet) GlyphTile(glyph string, size float64, outline int, fill color.Color) (*image.RGBA, error) {
	if glyph == "" {
		return nil, ErrEmptyGlyph
	}
	if outline < 0 {
		outline = 0
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	face, err := fs.face(size)
	if err != nil {
		return nil, err
	}
	d := &font.Drawer{Face: face}
	adv := d.MeasureString(glyph).Ceil()
	m := face.Metrics()
	ascent := m.Ascent.Ceil()
	descent := m.Descent.Ceil()
	pad := outline + 1
	rect := image.Rect(0, 0, adv+2*pad, ascent+descent+2*pad)

	mask := image.NewAlpha(rect)
	d.Dst = mask
	d.Src = image.Opaque
	d.Dot = fixed.P(pad, pad+ascent)
	d.DrawString(glyph)

	tile := image.NewRGBA(rect)
	if outline > 0 {
		draw.DrawMask(tile, rect, image.NewUniform(color.Black), image.Point{}, dilate(mask, outline), image.Point{}, draw.Over)
	}
	draw.DrawMask(tile, rect, image.NewUniform(fill), image.Point{}, mask, image.Point{}, draw.Over)
	return tile, nil
}

// dilate returns a copy of m where every pixel takes the maximum alpha found
// within radius r.
func dilate(m *image.Alpha, r int) *image.Alpha {
	b := m.Bounds()
	out := image.NewAlpha(b)
	r2 := r * r
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var best uint8
			for dy := -r; dy <= r && best < 255; dy++ {
				for dx := -r; dx <= r; dx++ {
					if dx*dx+dy*dy > r2 {
						continue
					}
					p := image.Pt(x+dx, y+dy)
					if !p.In(b) {
						continue
					}
					if a := m.AlphaAt(p.X, p.Y).A; a > best {
						best = a
					}
				}
			}
			out.SetAlpha(x, y, color.Alpha{A: best})
		}
	}
	return out
}

// DrawGlyph paints glyph centred on c, rotated clockwise by rotation degrees
// about that centre. size is in logical units. The outline is one logical
// unit wide.
func (s *Surface) DrawGlyph(glyph string, c Point, rotation, size float64, fill color.Color) error {
	if !c.Finite() || size <= 0 || math.IsNaN(rotation) {
		return nil
	}
	outline := int(math.Round(s.scale))
	if outline < 1 {
		outline = 1
	}
	tile, err := s.fonts.GlyphTile(glyph, size*s.scale, outline, fill)
	if err != nil {
		return err
	}
	tb := tile.Bounds()
	tx, ty := float64(tb.Dx())/2, float64(tb.Dy())/2
	cx, cy := s.toPixel(c)
	sin, cos := math.Sincos(rotation * math.Pi / 180)
	aff := f64.Aff3{
		cos, -sin, cx - (cos*tx - sin*ty),
		sin, cos, cy - (sin*tx + cos*ty),
	}
	xdraw.BiLinear.Transform(s.img, aff, tile, tb, xdraw.Over, nil)
	return nil
}
