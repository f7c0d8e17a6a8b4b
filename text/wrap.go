package text

import "unicode"

// breakClass is a simplified UAX #14 line breaking class.
type breakClass uint8

const (
	breakOther breakClass = iota
	breakSpace             // break after
	breakHyphen            // break after
	breakOpen              // no break after
	breakClose             // no break before
	breakIdeographic       // break before and after
)

func classifyRune(r rune) breakClass {
	switch r {
	case ' ', '\t', '​':
		return breakSpace
	case '(', '[', '{', '“', '‘':
		return breakOpen
	case ')', ']', '}', '”', '’':
		return breakClose
	case '-', '‐', '‑', '–', '—':
		return breakHyphen
	}
	if isIdeographic(r) {
		return breakIdeographic
	}
	return breakOther
}

// isIdeographic reports CJK characters that permit breaks on either side.
func isIdeographic(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r) ||
		(r >= 0xFF00 && r <= 0xFFEF) // fullwidth forms
}

// breakPoints returns the rune indices at which a line may end, in
// increasing order. An index i means "the line may break after rune i-1",
// i.e. runes[:i] stays on the line.
func breakPoints(runes []rune) []int {
	var pts []int
	for i := 0; i < len(runes)-1; i++ {
		cur := classifyRune(runes[i])
		next := classifyRune(runes[i+1])

		switch cur {
		case breakSpace, breakHyphen:
			if next != breakClose {
				pts = append(pts, i+1)
			}
		case breakIdeographic:
			if next != breakClose {
				pts = append(pts, i+1)
			}
		case breakOther, breakClose:
			if next == breakIdeographic {
				pts = append(pts, i+1)
			}
		}
	}
	return pts
}

// wrapParagraph splits one paragraph (no newlines) into rune ranges whose
// shaped width does not exceed maxWidth. Break opportunities follow
// breakPoints; a run with no viable opportunity falls back to per-rune
// breaking so long words still fit. maxWidth <= 0 disables wrapping.
//
// Trailing break-space runes are kept on the ending line but excluded from
// the width test, matching common editor behavior.
func wrapParagraph(f *Font, s *shaper, runes []rune, sizePx, maxWidth float32) [][2]int {
	if len(runes) == 0 {
		return [][2]int{{0, 0}}
	}
	if maxWidth <= 0 {
		return [][2]int{{0, len(runes)}}
	}

	var spans [][2]int
	pts := breakPoints(runes)
	start := 0

	for start < len(runes) {
		end := fitRun(f, s, runes, pts, start, sizePx, maxWidth)
		spans = append(spans, [2]int{start, end})
		// Skip the spaces the break consumed; they carry no visible width
		// at a line start.
		for end < len(runes) && classifyRune(runes[end]) == breakSpace {
			end++
		}
		start = end
	}
	return spans
}

// fitRun finds the largest end > start such that runes[start:end] fits in
// maxWidth, honoring break opportunities when possible.
func fitRun(f *Font, s *shaper, runes []rune, pts []int, start int, sizePx, maxWidth float32) int {
	limit := len(runes)
	if trimmedWidth(f, s, runes[start:limit], sizePx) <= maxWidth {
		return limit
	}

	// Widest break opportunity that still fits.
	best := -1
	for _, p := range pts {
		if p <= start {
			continue
		}
		if trimmedWidth(f, s, runes[start:p], sizePx) <= maxWidth {
			best = p
			continue
		}
		break
	}
	if best > start {
		return best
	}

	// No opportunity fits: fall back to character breaking.
	for end := start + 1; end < limit; end++ {
		if trimmedWidth(f, s, runes[start:end+1], sizePx) > maxWidth {
			return end
		}
	}
	return limit
}

// trimmedWidth measures the run with trailing break-spaces removed.
func trimmedWidth(f *Font, s *shaper, runes []rune, sizePx float32) float32 {
	end := len(runes)
	for end > 0 && classifyRune(runes[end-1]) == breakSpace {
		end--
	}
	if end == 0 {
		return 0
	}
	return s.measure(f, runes[:end], sizePx)
}
