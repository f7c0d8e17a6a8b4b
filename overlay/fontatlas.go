package overlay

import (
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/frame/internal/shelf"
)

// DefaultFontSize is the baked glyph size in pixels.
const DefaultFontSize = 13

const (
	asciiFirst = 32  // space
	asciiLast  = 126 // tilde
)

// bakedGlyph is one pre-rendered ASCII glyph in the atlas.
type bakedGlyph struct {
	// U0, V0, U1, V1 are normalized texture coordinates.
	U0, V0, U1, V1 float32

	// X0, Y0, X1, Y1 is the quad relative to the pen position, y-down
	// from the text top.
	X0, Y0, X1, Y1 float32

	Advance float32
}

// FontAtlas holds the overlay's private baked font texture: the printable
// ASCII range at one size plus a solid white pixel for untextured fills.
// Text buffers drawn by the frame's text pass use a separate shaped
// pipeline; the overlay only ever needs debug-quality Latin text.
type FontAtlas struct {
	pix    []byte // one byte per pixel alpha
	w, h   int
	glyphs [asciiLast - asciiFirst + 1]bakedGlyph

	// whiteU, whiteV sample the solid pixel.
	whiteU, whiteV float32

	lineHeight float32
	ascent     float32
}

// NewFontAtlas bakes the embedded Go Regular face at DefaultFontSize.
func NewFontAtlas() (*FontAtlas, error) {
	parsed, err := sfnt.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse overlay font: %w", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    DefaultFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create overlay face: %w", err)
	}
	defer face.Close()

	const dim = 128
	a := &FontAtlas{
		pix: make([]byte, dim*dim),
		w:   dim,
		h:   dim,
	}
	packer := shelf.New(dim, dim, 1)

	m := face.Metrics()
	a.ascent = fixToF(m.Ascent)
	a.lineHeight = fixToF(m.Height)

	// Solid white pixel first so fills can share the glyph texture.
	wx, wy, ok := packer.Pack(3, 3)
	if !ok {
		return nil, fmt.Errorf("bake overlay font: atlas full")
	}
	for y := wy; y < wy+3; y++ {
		for x := wx; x < wx+3; x++ {
			a.pix[y*dim+x] = 0xFF
		}
	}
	a.whiteU = (float32(wx) + 1.5) / dim
	a.whiteV = (float32(wy) + 1.5) / dim

	dst := &image.Alpha{Pix: a.pix, Stride: dim, Rect: image.Rect(0, 0, dim, dim)}
	for r := rune(asciiFirst); r <= asciiLast; r++ {
		dr, mask, maskp, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		g := &a.glyphs[r-asciiFirst]
		g.Advance = fixToF(adv)
		if !ok || dr.Empty() {
			continue
		}
		gw, gh := dr.Dx(), dr.Dy()
		x, y, packed := packer.Pack(gw, gh)
		if !packed {
			return nil, fmt.Errorf("bake overlay font: atlas full at %q", r)
		}
		draw.Draw(dst, image.Rect(x, y, x+gw, y+gh), mask, maskp, draw.Src)

		g.U0 = float32(x) / dim
		g.V0 = float32(y) / dim
		g.U1 = float32(x+gw) / dim
		g.V1 = float32(y+gh) / dim
		// face.Glyph positions relative to the baseline; rebase to the
		// text top so callers place quads at the cursor.
		g.X0 = float32(dr.Min.X)
		g.Y0 = float32(dr.Min.Y) + a.ascent
		g.X1 = float32(dr.Max.X)
		g.Y1 = float32(dr.Max.Y) + a.ascent
	}
	return a, nil
}

// Pix returns the atlas pixels, one alpha byte per pixel.
func (a *FontAtlas) Pix() []byte { return a.pix }

// Size returns the atlas dimensions.
func (a *FontAtlas) Size() (w, h int) { return a.w, a.h }

// LineHeight returns the baked line advance in pixels.
func (a *FontAtlas) LineHeight() float32 { return a.lineHeight }

// Glyph returns the baked glyph for r; unbakeable runes fall back to '?'.
func (a *FontAtlas) Glyph(r rune) bakedGlyph {
	if r < asciiFirst || r > asciiLast {
		r = '?'
	}
	return a.glyphs[r-asciiFirst]
}

// TextWidth measures s with the baked advances.
func (a *FontAtlas) TextWidth(s string) float32 {
	var w float32
	for _, r := range s {
		w += a.Glyph(r).Advance
	}
	return w
}

func fixToF(v fixed.Int26_6) float32 { return float32(v) / 64 }
