package text

import (
	"image"
	"image/draw"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/gogpu/frame/internal/shelf"
)

// trimThreshold is the atlas utilization above which Trim evicts.
const trimThreshold = 0.7

// glyphKey identifies one rasterized mask: glyph ID at a quantized pixel
// size. Size is quantized to quarter pixels so animated sizes do not flood
// the atlas.
type glyphKey struct {
	gid    uint16
	size4x int16
}

func makeKey(gid uint16, sizePx float32) glyphKey {
	return glyphKey{gid: gid, size4x: int16(sizePx*4 + 0.5)}
}

// Region locates one glyph mask inside the atlas.
type Region struct {
	// X, Y, W, H is the mask rectangle in atlas pixels.
	X, Y, W, H int

	// BearingX, BearingY offset the mask from the pen position on the
	// baseline; BearingY is negative for glyphs extending above it
	// (the atlas works y-down, like the surface).
	BearingX, BearingY float32
}

// Atlas packs alpha glyph masks into one CPU-side image that the text pass
// uploads as an R8 texture. Masks are rasterized on demand from sfnt
// outlines by glyph ID, so ligature and substituted glyphs work even when
// they have no rune.
type Atlas struct {
	font   *Font
	packer *shelf.Packer
	pix    *image.Alpha
	w, h   int

	entries map[glyphKey]Region
	used    map[glyphKey]bool // touched since the last Trim

	dirty bool   // pixels changed since last upload
	epoch uint64 // bumped on every eviction
}

// NewAtlas creates an empty atlas of the given pixel dimensions.
func NewAtlas(font *Font, w, h int) *Atlas {
	return &Atlas{
		font:    font,
		packer:  shelf.New(w, h, 1),
		pix:     image.NewAlpha(image.Rect(0, 0, w, h)),
		w:       w,
		h:       h,
		entries: make(map[glyphKey]Region),
		used:    make(map[glyphKey]bool),
	}
}

// Get returns the atlas region for a glyph, rasterizing and packing it on
// first use. ok is false for empty masks (spaces) and when the atlas is
// full even after an eviction.
func (a *Atlas) Get(gid uint16, sizePx float32) (Region, bool) {
	key := makeKey(gid, sizePx)
	if r, ok := a.entries[key]; ok {
		a.used[key] = true
		return r, true
	}

	r, ok := a.place(key)
	if !ok {
		// One eviction attempt: drop everything and retry. Survivors
		// re-rasterize lazily over the following frames.
		if len(a.entries) == 0 {
			return Region{}, false
		}
		slogger().Debug("glyph atlas full, evicting", "entries", len(a.entries))
		a.evict()
		r, ok = a.place(key)
		if !ok {
			return Region{}, false
		}
	}
	a.entries[key] = r
	a.used[key] = true
	return r, true
}

// place rasterizes the glyph and packs the mask, returning its region.
func (a *Atlas) place(key glyphKey) (Region, bool) {
	mask, bx, by, ok := a.rasterize(key.gid, float32(key.size4x)/4)
	if !ok {
		return Region{}, false
	}
	w := mask.Rect.Dx()
	h := mask.Rect.Dy()
	x, y, ok := a.packer.Pack(w, h)
	if !ok {
		return Region{}, false
	}
	draw.Draw(a.pix, image.Rect(x, y, x+w, y+h), mask, mask.Rect.Min, draw.Src)
	a.dirty = true
	return Region{X: x, Y: y, W: w, H: h, BearingX: bx, BearingY: by}, true
}

// rasterize renders the glyph outline to an alpha mask.
// Returns ok=false for glyphs with no visible outline.
func (a *Atlas) rasterize(gid uint16, sizePx float32) (mask *image.Alpha, bearingX, bearingY float32, ok bool) {
	ppem := fixed.Int26_6(sizePx * 64)
	segs, err := a.font.outline.LoadGlyph(&a.font.sfntBuf, sfnt.GlyphIndex(gid), ppem, nil)
	if err != nil || len(segs) == 0 {
		return nil, 0, 0, false
	}

	minX, minY, maxX, maxY := segmentBounds(segs)
	// Pixel-align the mask origin; pad one pixel for antialiasing spill.
	x0 := floorInt(minX) - 1
	y0 := floorInt(minY) - 1
	w := ceilInt(maxX) + 1 - x0
	h := ceilInt(maxY) + 1 - y0
	if w <= 0 || h <= 0 {
		return nil, 0, 0, false
	}

	r := vector.NewRasterizer(w, h)
	r.DrawOp = draw.Src
	ox := float32(-x0)
	oy := float32(-y0)
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			r.MoveTo(fix(seg.Args[0].X)+ox, fix(seg.Args[0].Y)+oy)
		case sfnt.SegmentOpLineTo:
			r.LineTo(fix(seg.Args[0].X)+ox, fix(seg.Args[0].Y)+oy)
		case sfnt.SegmentOpQuadTo:
			r.QuadTo(
				fix(seg.Args[0].X)+ox, fix(seg.Args[0].Y)+oy,
				fix(seg.Args[1].X)+ox, fix(seg.Args[1].Y)+oy)
		case sfnt.SegmentOpCubeTo:
			r.CubeTo(
				fix(seg.Args[0].X)+ox, fix(seg.Args[0].Y)+oy,
				fix(seg.Args[1].X)+ox, fix(seg.Args[1].Y)+oy,
				fix(seg.Args[2].X)+ox, fix(seg.Args[2].Y)+oy)
		}
	}

	mask = image.NewAlpha(image.Rect(0, 0, w, h))
	r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask, float32(x0), float32(y0), true
}

// evict clears all entries; the shelf packer cannot free individual
// rectangles, so reclamation is whole-atlas.
func (a *Atlas) evict() {
	a.epoch++
	a.packer.Reset()
	clear(a.entries)
	clear(a.used)
	for i := range a.pix.Pix {
		a.pix.Pix[i] = 0
	}
	a.dirty = true
}

// Trim is end-of-frame bookkeeping: when the atlas runs hot and some
// entries went untouched this frame, evict so long-gone glyph sizes do
// not pin atlas space forever.
func (a *Atlas) Trim() {
	if a.packer.Utilization() < trimThreshold {
		clear(a.used)
		return
	}
	stale := false
	for key := range a.entries {
		if !a.used[key] {
			stale = true
			break
		}
	}
	if stale {
		a.evict()
	}
	clear(a.used)
}

// Epoch counts evictions. A region obtained from Get is valid only as
// long as the epoch it was obtained under; callers batching regions
// across many Get calls must recollect when the epoch moves.
func (a *Atlas) Epoch() uint64 { return a.epoch }

// Pix returns the atlas pixels (tightly packed, one byte per pixel).
func (a *Atlas) Pix() []byte { return a.pix.Pix }

// Size returns the atlas dimensions.
func (a *Atlas) Size() (w, h int) { return a.w, a.h }

// Dirty reports whether pixels changed since the last MarkClean.
func (a *Atlas) Dirty() bool { return a.dirty }

// MarkClean records that the current pixels have been uploaded.
func (a *Atlas) MarkClean() { a.dirty = false }

func segmentBounds(segs sfnt.Segments) (minX, minY, maxX, maxY float32) {
	const big = 1e9
	minX, minY = big, big
	maxX, maxY = -big, -big
	upd := func(p fixed.Point26_6) {
		x, y := fix(p.X), fix(p.Y)
		minX = min(minX, x)
		minY = min(minY, y)
		maxX = max(maxX, x)
		maxY = max(maxY, y)
	}
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo, sfnt.SegmentOpLineTo:
			upd(seg.Args[0])
		case sfnt.SegmentOpQuadTo:
			upd(seg.Args[0])
			upd(seg.Args[1])
		case sfnt.SegmentOpCubeTo:
			upd(seg.Args[0])
			upd(seg.Args[1])
			upd(seg.Args[2])
		}
	}
	return minX, minY, maxX, maxY
}

func fix(v fixed.Int26_6) float32 { return float32(v) / 64 }

func floorInt(v float32) int {
	i := int(v)
	if v < 0 && float32(i) != v {
		i--
	}
	return i
}

func ceilInt(v float32) int {
	i := int(v)
	if v > 0 && float32(i) != v {
		i++
	}
	return i
}
