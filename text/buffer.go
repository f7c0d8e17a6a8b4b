package text

import "strings"

// Metrics carries the font size and the relative line height of a buffer,
// the way the caller supplied them to AddText.
type Metrics struct {
	// FontSize is the glyph size in logical pixels.
	FontSize float32

	// LineHeight is a multiplier on FontSize (1.0 = solid leading).
	LineHeight float32
}

// LineHeightPx returns the absolute line advance in logical pixels.
func (m Metrics) LineHeightPx() float32 {
	return m.FontSize * m.LineHeight
}

// Buffer is one shaped text block: the source content, its metrics, the
// width constraint it was wrapped to, and the resulting shaped lines.
//
// A Buffer is owned by a single Store and never shared.
type Buffer struct {
	content  string
	metrics  Metrics
	maxWidth float32
	lines    []Line
}

// newBuffer shapes content against the given width constraint.
func newBuffer(f *Font, s *shaper, content string, m Metrics, maxWidth float32) *Buffer {
	b := &Buffer{content: content, metrics: m}
	b.reshape(f, s, maxWidth)
	return b
}

// reshape re-wraps and re-shapes the whole buffer to a new width constraint.
// Shaping is intentionally not cached across calls: a width change moves
// break points, and stale kerning across old breaks is worse than the
// re-shaping cost for the buffer counts this package serves.
func (b *Buffer) reshape(f *Font, s *shaper, maxWidth float32) {
	b.maxWidth = maxWidth
	b.lines = b.lines[:0]

	base := 0
	for _, para := range strings.Split(b.content, "\n") {
		runes := []rune(para)
		for _, span := range wrapParagraph(f, s, runes, b.metrics.FontSize, maxWidth) {
			ln := s.shapeLine(f, runes[span[0]:span[1]], b.metrics.FontSize, base+span[0])
			b.lines = append(b.lines, ln)
		}
		base += len(runes) + 1 // +1 for the newline
	}
}

// Content returns the source string.
func (b *Buffer) Content() string { return b.content }

// Metrics returns the buffer's font size and line height.
func (b *Buffer) Metrics() Metrics { return b.metrics }

// MaxWidth returns the width constraint the buffer is currently wrapped to.
func (b *Buffer) MaxWidth() float32 { return b.maxWidth }

// Lines returns the shaped lines, top to bottom.
func (b *Buffer) Lines() []Line { return b.lines }

// LineCount returns the number of wrapped lines.
func (b *Buffer) LineCount() int { return len(b.lines) }

// Height returns the stacked height of the buffer in logical pixels,
// using the buffer's own line-height metric.
func (b *Buffer) Height() float32 {
	return float32(len(b.lines)) * b.metrics.LineHeightPx()
}
