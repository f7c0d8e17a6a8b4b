package overlay

import "testing"

func newTestContext(t *testing.T) *Context {
	t.Helper()
	c, err := NewContext()
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	return c
}

// frame runs one overlay frame with the given UI body.
func frame(c *Context, body func()) *DrawData {
	c.Begin(Vec2{X: 800, Y: 600}, 1.0/60)
	if body != nil {
		body()
	}
	return c.End()
}

// click moves the mouse to p and performs a full press-release over two
// frames, invoking body each frame.
func click(c *Context, p Vec2, body func()) {
	c.ProcessEvent(MouseMoveEvent{X: p.X, Y: p.Y})
	c.ProcessEvent(MouseButtonEvent{Button: MouseButtonLeft, Pressed: true})
	frame(c, body)
	c.ProcessEvent(MouseButtonEvent{Button: MouseButtonLeft, Pressed: false})
	frame(c, body)
}

// TestFontAtlasBake tests the baked ASCII atlas.
func TestFontAtlasBake(t *testing.T) {
	a, err := NewFontAtlas()
	if err != nil {
		t.Fatalf("NewFontAtlas: %v", err)
	}

	if a.LineHeight() <= 0 {
		t.Errorf("LineHeight = %v, want > 0", a.LineHeight())
	}
	g := a.Glyph('A')
	if g.Advance <= 0 {
		t.Errorf("glyph A advance = %v, want > 0", g.Advance)
	}
	if g.U1 <= g.U0 || g.V1 <= g.V0 {
		t.Errorf("glyph A has empty UVs: %+v", g)
	}
	// Out-of-range runes fall back to '?'.
	if got, want := a.Glyph('€'), a.Glyph('?'); got != want {
		t.Errorf("fallback glyph = %+v, want %+v", got, want)
	}
	if a.TextWidth("ab") <= a.TextWidth("a") {
		t.Error("TextWidth not additive")
	}
	// White pixel must be solid for untextured fills.
	w, _ := a.Size()
	wx := int(a.whiteU * float32(w))
	wy := int(a.whiteV * float32(w))
	if a.Pix()[wy*w+wx] != 0xFF {
		t.Error("white pixel is not opaque")
	}
}

// TestDrawListGeometry tests vertex and index accounting.
func TestDrawListGeometry(t *testing.T) {
	c := newTestContext(t)
	d := newDrawList(c.Font())

	d.AddRectFilled(Vec2{0, 0}, Vec2{10, 10}, 0xFFFFFFFF)
	if len(d.vertices) != 4 || len(d.indices) != 6 {
		t.Fatalf("filled rect: %d verts %d idx, want 4/6", len(d.vertices), len(d.indices))
	}

	d.reset()
	d.AddText(Vec2{0, 0}, "hi!", 0xFFFFFFFF)
	// Three visible glyphs, one quad each.
	if len(d.vertices) != 12 || len(d.indices) != 18 {
		t.Errorf("text: %d verts %d idx, want 12/18", len(d.vertices), len(d.indices))
	}

	d.reset()
	d.AddText(Vec2{0, 0}, "a b", 0xFFFFFFFF)
	// The space has no quad.
	if len(d.vertices) != 8 {
		t.Errorf("text with space: %d verts, want 8", len(d.vertices))
	}
}

// TestCursorReportedOnlyOnChange tests the last-cursor diffing contract.
func TestCursorReportedOnlyOnChange(t *testing.T) {
	c := newTestContext(t)
	var reports []Cursor
	c.OnCursorChange(func(cur Cursor) { reports = append(reports, cur) })

	// First frame reports the initial arrow.
	frame(c, nil)
	if len(reports) != 1 || reports[0] != CursorArrow {
		t.Fatalf("initial reports = %v, want [Arrow]", reports)
	}

	// Idle frames report nothing new.
	frame(c, nil)
	frame(c, nil)
	if len(reports) != 1 {
		t.Fatalf("idle frames added reports: %v", reports)
	}

	// Hovering a button switches to hand exactly once.
	ui := func() {
		if c.BeginWindow("w") {
			c.Button("go")
			c.EndWindow()
		}
	}
	frame(c, ui) // establishes window geometry
	w := c.windows["w"]
	c.ProcessEvent(MouseMoveEvent{X: w.pos.X + 20, Y: w.pos.Y + c.style.TitleBar + c.style.Padding + 5})
	frame(c, ui)
	frame(c, ui)
	if len(reports) != 2 || reports[1] != CursorHand {
		t.Fatalf("hover reports = %v, want [Arrow Hand]", reports)
	}

	// Leaving the button switches back.
	c.ProcessEvent(MouseMoveEvent{X: 790, Y: 590})
	frame(c, ui)
	if len(reports) != 3 || reports[2] != CursorArrow {
		t.Fatalf("leave reports = %v, want trailing Arrow", reports)
	}
}

// TestButtonClick tests the press-release click contract.
func TestButtonClick(t *testing.T) {
	c := newTestContext(t)
	var clicks int
	ui := func() {
		if c.BeginWindow("w") {
			if c.Button("go") {
				clicks++
			}
			c.EndWindow()
		}
	}
	frame(c, ui)
	w := c.windows["w"]
	over := Vec2{X: w.pos.X + c.style.Padding + 5, Y: w.pos.Y + c.style.TitleBar + c.style.Padding + 5}

	click(c, over, ui)
	if clicks != 1 {
		t.Fatalf("clicks = %d, want 1", clicks)
	}

	// Press on the button, drag off, release: no click.
	c.ProcessEvent(MouseMoveEvent{X: over.X, Y: over.Y})
	c.ProcessEvent(MouseButtonEvent{Button: MouseButtonLeft, Pressed: true})
	frame(c, ui)
	c.ProcessEvent(MouseMoveEvent{X: 790, Y: 590})
	c.ProcessEvent(MouseButtonEvent{Button: MouseButtonLeft, Pressed: false})
	frame(c, ui)
	if clicks != 1 {
		t.Errorf("drag-off release clicked: clicks = %d, want 1", clicks)
	}
}

// TestCheckboxToggle tests checkbox state changes on click.
func TestCheckboxToggle(t *testing.T) {
	c := newTestContext(t)
	var on bool
	ui := func() {
		if c.BeginWindow("w") {
			c.Checkbox("enable", &on)
			c.EndWindow()
		}
	}
	frame(c, ui)
	w := c.windows["w"]
	over := Vec2{X: w.pos.X + c.style.Padding + 3, Y: w.pos.Y + c.style.TitleBar + c.style.Padding + 3}

	click(c, over, ui)
	if !on {
		t.Fatal("checkbox not toggled on")
	}
	click(c, over, ui)
	if on {
		t.Fatal("checkbox not toggled off")
	}
}

// TestWindowDrag tests title-bar dragging and the move cursor.
func TestWindowDrag(t *testing.T) {
	c := newTestContext(t)
	ui := func() {
		if c.BeginWindow("w") {
			c.Text("content")
			c.EndWindow()
		}
	}
	frame(c, ui)
	w := c.windows["w"]
	start := w.pos

	grab := Vec2{X: start.X + 30, Y: start.Y + 8}
	c.ProcessEvent(MouseMoveEvent{X: grab.X, Y: grab.Y})
	c.ProcessEvent(MouseButtonEvent{Button: MouseButtonLeft, Pressed: true})
	frame(c, ui)

	c.ProcessEvent(MouseMoveEvent{X: grab.X + 50, Y: grab.Y + 30})
	frame(c, ui)
	if c.lastCursor != CursorMove {
		t.Errorf("cursor during drag = %v, want Move", c.lastCursor)
	}
	if w.pos.X != start.X+50 || w.pos.Y != start.Y+30 {
		t.Errorf("window pos = %+v, want %+v moved by (50,30)", w.pos, start)
	}

	c.ProcessEvent(MouseButtonEvent{Button: MouseButtonLeft, Pressed: false})
	frame(c, ui)
	if c.dragging != "" {
		t.Error("drag did not end on release")
	}
}

// TestWantCaptureMouse tests mouse-over reporting for host input routing.
func TestWantCaptureMouse(t *testing.T) {
	c := newTestContext(t)
	ui := func() {
		if c.BeginWindow("w") {
			c.Text("x")
			c.EndWindow()
		}
	}
	frame(c, ui)
	w := c.windows["w"]

	c.ProcessEvent(MouseMoveEvent{X: w.pos.X + 10, Y: w.pos.Y + 10})
	frame(c, ui)
	if !c.WantCaptureMouse() {
		t.Error("WantCaptureMouse = false with pointer over window")
	}

	c.ProcessEvent(MouseMoveEvent{X: 790, Y: 590})
	frame(c, ui)
	if c.WantCaptureMouse() {
		t.Error("WantCaptureMouse = true with pointer outside")
	}
}

// TestFrameProtocolMisuse tests that unbalanced Begin/End is tolerated.
func TestFrameProtocolMisuse(t *testing.T) {
	c := newTestContext(t)

	// End without Begin returns empty data.
	if d := c.End(); len(d.Vertices) != 0 {
		t.Error("End without Begin returned geometry")
	}

	// Unclosed window is closed by End.
	c.Begin(Vec2{800, 600}, 0.016)
	c.BeginWindow("w")
	c.Text("x")
	c.End()
	if c.cur != nil {
		t.Error("End left a window open")
	}
}
