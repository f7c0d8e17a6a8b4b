// Package shelf implements shelf-based rectangle packing for glyph atlases.
//
// The algorithm organizes rectangles in horizontal "shelves". Each shelf has
// a fixed height (determined by the tallest item placed so far). New items
// are placed left-to-right on the current shelf until no space remains, then
// a new shelf is started below. Simple and fast, and well suited to runs of
// similar-height glyph masks.
package shelf

// Packer allocates rectangles inside a fixed-size atlas.
// It does not track freeing of individual rectangles; callers that need to
// reclaim space evict the whole atlas with Reset and re-pack live entries.
type Packer struct {
	width   int
	height  int
	padding int
	shelves []row

	usedArea int
}

// row is a horizontal strip in the atlas.
type row struct {
	y      int // y position of the strip top
	height int // tallest item packed so far
	x      int // next free slot
}

// New returns a packer for an atlas of the given dimensions.
// padding is inserted between packed rectangles to prevent sampling bleed.
func New(width, height, padding int) *Packer {
	return &Packer{
		width:   width,
		height:  height,
		padding: padding,
		shelves: make([]row, 0, 16),
	}
}

// Pack finds space for a w x h rectangle. It returns the packed position,
// or ok=false when the atlas is full.
func (p *Packer) Pack(w, h int) (x, y int, ok bool) {
	if w <= 0 || h <= 0 || w > p.width {
		return -1, -1, false
	}
	pw := w + p.padding
	ph := h + p.padding

	for i := range p.shelves {
		s := &p.shelves[i]
		if s.x+pw > p.width {
			continue
		}
		if h > s.height {
			// Taller than this shelf. The last shelf may grow downward
			// if there is still room below it.
			if i == len(p.shelves)-1 && s.y+ph <= p.height {
				s.height = h
				x, y = s.x, s.y
				s.x += pw
				p.usedArea += w * h
				return x, y, true
			}
			continue
		}
		x, y = s.x, s.y
		s.x += pw
		p.usedArea += w * h
		return x, y, true
	}

	// Open a new shelf below the last one.
	ny := 0
	if n := len(p.shelves); n > 0 {
		last := p.shelves[n-1]
		ny = last.y + last.height + p.padding
	}
	if ny+ph > p.height {
		return -1, -1, false
	}
	p.shelves = append(p.shelves, row{y: ny, height: h, x: pw})
	p.usedArea += w * h
	return 0, ny, true
}

// Reset discards all allocations, returning the packer to an empty atlas.
func (p *Packer) Reset() {
	p.shelves = p.shelves[:0]
	p.usedArea = 0
}

// Utilization returns the fraction of atlas area currently allocated,
// in [0, 1]. Padding does not count as used.
func (p *Packer) Utilization() float64 {
	total := p.width * p.height
	if total == 0 {
		return 0
	}
	return float64(p.usedArea) / float64(total)
}

// Size returns the atlas dimensions the packer was created with.
func (p *Packer) Size() (w, h int) { return p.width, p.height }
