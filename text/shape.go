package text

import (
	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"
)

// Glyph is one positioned glyph within a shaped line.
// Positions are in pixels, relative to the line's pen origin on the baseline.
type Glyph struct {
	// GID is the font glyph index (not a rune).
	GID uint16

	// X, Y position the glyph origin relative to the line start.
	X, Y float32

	// Advance is the horizontal pen advance contributed by this glyph.
	Advance float32

	// Cluster is the rune index in the source paragraph this glyph maps to.
	Cluster int
}

// Line is one shaped, wrapped line of a buffer.
type Line struct {
	Glyphs  []Glyph
	Width   float32
	Ascent  float32 // above baseline, positive
	Descent float32 // below baseline, positive
}

// shaper wraps a pooled HarfBuzz shaper. Not safe for concurrent use,
// which matches the orchestrator's single-threaded frame model.
type shaper struct {
	hb shaping.HarfbuzzShaper
}

// shapeLine shapes one already-wrapped run of runes at the given pixel size.
// clusterBase offsets the reported cluster indices so they refer to the
// original paragraph, not the wrapped slice.
func (s *shaper) shapeLine(f *Font, runes []rune, sizePx float32, clusterBase int) Line {
	if len(runes) == 0 {
		return Line{}
	}

	dir := baseDirection(runes)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: dir,
		Face:      f.face,
		Size:      fixed.Int26_6(sizePx * 64),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}
	out := s.hb.Shape(input)

	ln := Line{
		Glyphs: make([]Glyph, 0, len(out.Glyphs)),
		// go-text reports Descent as a negative distance below the baseline.
		Ascent:  fixedToFloat(out.LineBounds.Ascent),
		Descent: -fixedToFloat(out.LineBounds.Descent),
	}

	var x float32
	for _, g := range out.Glyphs {
		adv := fixedToFloat(g.XAdvance)
		ln.Glyphs = append(ln.Glyphs, Glyph{
			GID:     uint16(g.GlyphID),
			X:       x + fixedToFloat(g.XOffset),
			Y:       -fixedToFloat(g.YOffset),
			Advance: adv,
			Cluster: clusterBase + g.ClusterIndex,
		})
		x += adv
	}
	ln.Width = x
	return ln
}

// measure returns the advance width of the run without materializing glyphs.
func (s *shaper) measure(f *Font, runes []rune, sizePx float32) float32 {
	return s.shapeLine(f, runes, sizePx, 0).Width
}

/// baseDirection resolves the paragraph base direction per UAX #9 rule P2:
// the first strong directional rune wins, LTR when there is none.
func baseDirection(runes []rune) di.Direction {
	s := string(runes)
	for len(s) > 0 {
		prop, size := bidi.LookupString(s)
		switch prop.Class() {
		case bidi.L:
			return di.DirectionLTR
		case bidi.R, bidi.AL:
			return di.DirectionRTL
		}
		s = s[size:]
	}
	return di.DirectionLTR
}

// detectScript inspects the runes and returns the script of the first
// non-space character. Mixed-script runs should be split before shaping.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
