package text

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// Font bundles the two parsed views of one font file: the go-text face used
// for shaping and the sfnt font used to rasterize glyph outlines by glyph ID.
//
// A Font is not safe for concurrent use. The orchestrator's single-threaded
// frame model means one Font per Store is sufficient.
type Font struct {
	// face wraps the thread-safe *font.Font for go-text shaping.
	face *font.Face

	// outline is the same font parsed by x/image for LoadGlyph rasterization.
	outline *sfnt.Font

	// sfntBuf is reused across LoadGlyph calls.
	sfntBuf sfnt.Buffer

	// upem caches the design units per em for metric scaling.
	upem float32
}

// NewFont parses TTF/OTF data into a Font.
func NewFont(ttf []byte) (*Font, error) {
	face, err := font.ParseTTF(bytes.NewReader(ttf))
	if err != nil {
		return nil, fmt.Errorf("parse font for shaping: %w", err)
	}
	of, err := sfnt.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font for rasterization: %w", err)
	}
	return &Font{
		face:    face,
		outline: of,
		upem:    float32(face.Upem()),
	}, nil
}

var (
	defaultFontOnce sync.Once
	defaultFont     *Font
	defaultFontErr  error
)

// DefaultFont returns the embedded Go Regular font, parsed once.
func DefaultFont() (*Font, error) {
	defaultFontOnce.Do(func() {
		defaultFont, defaultFontErr = NewFont(goregular.TTF)
	})
	return defaultFont, defaultFontErr
}
