package text

import "testing"

// TestClassifyRune tests rune classification for line breaking.
func TestClassifyRune(t *testing.T) {
	tests := []struct {
		name string
		r    rune
		want breakClass
	}{
		{"space", ' ', breakSpace},
		{"tab", '\t', breakSpace},
		{"open paren", '(', breakOpen},
		{"close paren", ')', breakClose},
		{"open brace", '{', breakOpen},
		{"close brace", '}', breakClose},
		{"hyphen", '-', breakHyphen},
		{"em dash", '—', breakHyphen},
		{"CJK ideograph", '一', breakIdeographic},
		{"hiragana", 'あ', breakIdeographic},
		{"hangul", '가', breakIdeographic},
		{"fullwidth comma", '，', breakIdeographic},
		{"latin a", 'a', breakOther},
		{"digit 1", '1', breakOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyRune(tt.r); got != tt.want {
				t.Errorf("classifyRune(%q) = %d, want %d", tt.r, got, tt.want)
			}
		})
	}
}

// TestBreakPoints tests break opportunity detection.
func TestBreakPoints(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []int
	}{
		{"two words", "ab cd", []int{3}},
		{"no opportunities", "abcd", nil},
		{"hyphenated", "ab-cd", []int{3}},
		{"space before close paren", "ab )", nil},
		{"ideographs", "ab一丁", []int{2, 3}},
		{"empty", "", nil},
		{"single rune", "a", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := breakPoints([]rune(tt.text))
			if len(got) != len(tt.want) {
				t.Fatalf("breakPoints(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("breakPoints(%q)[%d] = %d, want %d", tt.text, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// TestWrapParagraph tests greedy wrapping against a real shaped font.
func TestWrapParagraph(t *testing.T) {
	f, err := DefaultFont()
	if err != nil {
		t.Fatalf("DefaultFont: %v", err)
	}
	var s shaper

	t.Run("unconstrained", func(t *testing.T) {
		runes := []rune("hello wrapping world")
		spans := wrapParagraph(f, &s, runes, 16, 0)
		if len(spans) != 1 {
			t.Fatalf("spans = %d, want 1", len(spans))
		}
		if spans[0] != [2]int{0, len(runes)} {
			t.Errorf("span = %v, want [0 %d]", spans[0], len(runes))
		}
	})

	t.Run("fits on one line", func(t *testing.T) {
		runes := []rune("hi")
		spans := wrapParagraph(f, &s, runes, 16, 10000)
		if len(spans) != 1 {
			t.Errorf("spans = %d, want 1", len(spans))
		}
	})

	t.Run("breaks at word boundary", func(t *testing.T) {
		runes := []rune("aaaa bbbb")
		full := s.measure(f, runes, 16)
		spans := wrapParagraph(f, &s, runes, 16, full*0.7)
		if len(spans) != 2 {
			t.Fatalf("spans = %v, want 2 lines", spans)
		}
		if spans[0][1] != 5 {
			t.Errorf("first line ends at %d, want 5 (after the space)", spans[0][1])
		}
		if spans[1][0] != 5 {
			t.Errorf("second line starts at %d, want 5", spans[1][0])
		}
	})

	t.Run("char fallback for long word", func(t *testing.T) {
		runes := []rune("abcdefghij")
		one := s.measure(f, []rune("abc"), 16)
		spans := wrapParagraph(f, &s, runes, 16, one)
		if len(spans) < 2 {
			t.Fatalf("spans = %v, want multiple lines", spans)
		}
		// Every span must stay within the constraint.
		for _, sp := range spans {
			if w := s.measure(f, runes[sp[0]:sp[1]], 16); w > one+0.01 {
				t.Errorf("span %v width %.2f exceeds %.2f", sp, w, one)
			}
		}
		// Spans must tile the paragraph.
		if spans[0][0] != 0 || spans[len(spans)-1][1] != len(runes) {
			t.Errorf("spans %v do not cover the paragraph", spans)
		}
	})

	t.Run("empty paragraph yields one empty span", func(t *testing.T) {
		spans := wrapParagraph(f, &s, nil, 16, 100)
		if len(spans) != 1 || spans[0] != [2]int{0, 0} {
			t.Errorf("spans = %v, want [[0 0]]", spans)
		}
	})
}
