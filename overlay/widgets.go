package overlay

import "fmt"

// defaultWindowPos staggers first-time windows so they do not stack at the
// origin.
var defaultWindowPos = Vec2{X: 60, Y: 40}

// BeginWindow opens a movable window with a title bar and positions the
// layout pen inside it. It returns true and must be paired with EndWindow.
//
// Window position persists between frames; the size tracks the widest and
// tallest content of the previous frame.
func (c *Context) BeginWindow(title string) bool {
	if !c.inFrame || c.cur != nil {
		slogger().Warn("BeginWindow outside a frame or nested", "window", title)
		return false
	}
	w, ok := c.windows[title]
	if !ok {
		w = &windowState{
			pos:  defaultWindowPos,
			size: Vec2{X: 200, Y: 80},
		}
		defaultWindowPos = defaultWindowPos.Add(Vec2{X: 24, Y: 24})
		c.windows[title] = w
	}
	c.cur = w
	c.curName = title

	st := &c.style
	titleBar := Rect{Min: w.pos, Max: Vec2{w.pos.X + w.size.X, w.pos.Y + st.TitleBar}}
	body := Rect{Min: w.pos, Max: w.pos.Add(w.size)}

	// Title bar drag.
	hoverTitle := titleBar.Contains(c.io.MousePos)
	if hoverTitle && c.io.Clicked(MouseButtonLeft) && c.activeID == "" {
		c.dragging = title
		c.dragOff = c.io.MousePos.Sub(w.pos)
	}
	if c.dragging == title {
		w.pos = c.io.MousePos.Sub(c.dragOff)
		c.clampWindow(w)
		titleBar = Rect{Min: w.pos, Max: Vec2{w.pos.X + w.size.X, w.pos.Y + st.TitleBar}}
		body = Rect{Min: w.pos, Max: w.pos.Add(w.size)}
		c.cursor = CursorMove
	}
	if body.Contains(c.io.MousePos) {
		c.nextWantMouse = true
	}

	c.draw.AddRectFilled(body.Min, body.Max, st.WindowBg)
	titleBg := st.TitleBg
	if hoverTitle || c.dragging == title {
		titleBg = st.TitleBgHot
	}
	c.draw.AddRectFilled(titleBar.Min, titleBar.Max, titleBg)
	c.draw.AddRect(body.Min, body.Max, st.Border)

	titleY := w.pos.Y + (st.TitleBar-c.font.LineHeight())/2
	c.draw.AddText(Vec2{w.pos.X + st.Padding, titleY}, title, st.Text)

	w.pen = Vec2{w.pos.X + st.Padding, w.pos.Y + st.TitleBar + st.Padding}
	w.contentMax = w.pen
	return true
}

// EndWindow closes the current window and records its content extent for
// next frame's auto-size.
func (c *Context) EndWindow() {
	w := c.cur
	if w == nil {
		slogger().Warn("EndWindow without BeginWindow")
		return
	}
	st := &c.style
	w.size = Vec2{
		X: max(w.contentMax.X-w.pos.X+st.Padding, 120),
		Y: w.contentMax.Y - w.pos.Y + st.Padding,
	}
	c.cur = nil
	c.curName = ""
}

// Text draws one line of text at the layout pen.
func (c *Context) Text(s string) {
	w := c.cur
	if w == nil {
		return
	}
	c.draw.AddText(w.pen, s, c.style.Text)
	c.advance(Vec2{X: c.font.TextWidth(s), Y: c.font.LineHeight()})
}

// Textf formats and draws one line of text.
func (c *Context) Textf(format string, args ...any) {
	c.Text(fmt.Sprintf(format, args...))
}

// Separator draws a horizontal rule across the window.
func (c *Context) Separator() {
	w := c.cur
	if w == nil {
		return
	}
	y := w.pen.Y + c.style.ItemGap/2
	c.draw.AddLine(Vec2{w.pos.X + c.style.Padding, y}, Vec2{w.pos.X + w.size.X - c.style.Padding, y}, c.style.Separator)
	c.advance(Vec2{X: 0, Y: c.style.ItemGap})
}

// Button draws a clickable button and reports whether it was clicked this
// frame, meaning pressed and released over the button.
func (c *Context) Button(label string) bool {
	w := c.cur
	if w == nil {
		return false
	}
	st := &c.style
	id := c.curName + "##" + label

	size := Vec2{
		X: c.font.TextWidth(label) + 2*st.Padding,
		Y: c.font.LineHeight() + st.ItemGap*2,
	}
	r := Rect{Min: w.pen, Max: w.pen.Add(size)}
	hovered := r.Contains(c.io.MousePos) && c.dragging == ""
	held := c.activeID == id

	if hovered {
		c.cursor = CursorHand
		if c.io.Clicked(MouseButtonLeft) && c.activeID == "" {
			c.activeID = id
		}
	}
	clicked := held && hovered && c.io.Released(MouseButtonLeft)

	bg := st.Button
	switch {
	case held:
		bg = st.ButtonHeld
	case hovered:
		bg = st.ButtonHot
	}
	c.draw.AddRectFilled(r.Min, r.Max, bg)
	c.draw.AddRect(r.Min, r.Max, st.Border)
	c.draw.AddText(Vec2{r.Min.X + st.Padding, r.Min.Y + st.ItemGap}, label, st.Text)

	c.advance(size)
	return clicked
}

// Checkbox draws a toggle box and reports whether the value changed.
func (c *Context) Checkbox(label string, value *bool) bool {
	w := c.cur
	if w == nil || value == nil {
		return false
	}
	st := &c.style
	id := c.curName + "##cb##" + label

	box := c.font.LineHeight()
	r := Rect{Min: w.pen, Max: w.pen.Add(Vec2{box, box})}
	full := Rect{Min: w.pen, Max: w.pen.Add(Vec2{box + st.ItemGap + c.font.TextWidth(label), box})}
	hovered := full.Contains(c.io.MousePos) && c.dragging == ""

	if hovered {
		c.cursor = CursorHand
		if c.io.Clicked(MouseButtonLeft) && c.activeID == "" {
			c.activeID = id
		}
	}
	changed := c.activeID == id && hovered && c.io.Released(MouseButtonLeft)
	if changed {
		*value = !*value
	}

	bg := st.Button
	if hovered {
		bg = st.ButtonHot
	}
	c.draw.AddRectFilled(r.Min, r.Max, bg)
	c.draw.AddRect(r.Min, r.Max, st.Border)
	if *value {
		inset := Vec2{3, 3}
		c.draw.AddRectFilled(r.Min.Add(inset), r.Max.Sub(inset), st.Text)
	}
	c.draw.AddText(Vec2{r.Max.X + st.ItemGap, r.Min.Y}, label, st.Text)

	c.advance(Vec2{X: full.Max.X - full.Min.X, Y: box})
	return changed
}

// advance moves the layout pen past an item of the given size.
func (c *Context) advance(size Vec2) {
	w := c.cur
	w.contentMax.X = max(w.contentMax.X, w.pen.X+size.X)
	w.contentMax.Y = max(w.contentMax.Y, w.pen.Y+size.Y)
	w.pen.Y += size.Y + c.style.ItemGap
}

// clampWindow keeps at least the title bar on screen during a drag.
func (c *Context) clampWindow(w *windowState) {
	ds := c.io.DisplaySize
	if ds.X <= 0 || ds.Y <= 0 {
		return
	}
	w.pos.X = min(max(w.pos.X, -w.size.X+40), ds.X-40)
	w.pos.Y = min(max(w.pos.Y, 0), ds.Y-c.style.TitleBar)
}
