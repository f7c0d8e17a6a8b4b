package overlay

import "fmt"

// Style holds the overlay color scheme and spacing constants.
type Style struct {
	WindowBg   Color
	TitleBg    Color
	TitleBgHot Color
	Border     Color
	Text       Color
	Button     Color
	ButtonHot  Color
	ButtonHeld Color
	Separator  Color

	Padding  float32
	ItemGap  float32
	TitleBar float32
}

// DefaultStyle returns the dark debug scheme.
func DefaultStyle() Style {
	return Style{
		WindowBg:   0x11131AE6,
		TitleBg:    0x2A2F3AFF,
		TitleBgHot: 0x3A4150FF,
		Border:     0x4A5160FF,
		Text:       0xE6E6E6FF,
		Button:     0x3A4150FF,
		ButtonHot:  0x4A5570FF,
		ButtonHeld: 0x2A3550FF,
		Separator:  0x4A5160FF,

		Padding:  8,
		ItemGap:  4,
		TitleBar: 20,
	}
}

// windowState persists across frames for one named window.
type windowState struct {
	pos  Vec2
	size Vec2
	pen  Vec2 // layout cursor while the window is being built

	// contentMax tracks the extent of this frame's widgets so the window
	// sizes to fit next frame.
	contentMax Vec2
}

// Context is the immediate-mode overlay state. Create one per renderer and
// rebuild the UI between Begin and End every frame.
//
// Context is not safe for concurrent use.
type Context struct {
	io    IO
	style Style
	font  *FontAtlas
	draw  *DrawList

	windows map[string]*windowState
	cur     *windowState
	curName string

	activeID string // widget holding the mouse
	dragging string // window being moved by its title bar
	dragOff  Vec2

	cursor     Cursor
	lastCursor Cursor
	onCursor   func(Cursor)

	wantMouse     bool // mouse over any window last frame
	nextWantMouse bool
	inFrame       bool
}

// NewContext bakes the overlay font and returns a ready context.
func NewContext() (*Context, error) {
	font, err := NewFontAtlas()
	if err != nil {
		return nil, fmt.Errorf("create overlay context: %w", err)
	}
	return &Context{
		style:      DefaultStyle(),
		font:       font,
		draw:       newDrawList(font),
		windows:    make(map[string]*windowState),
		lastCursor: -1, // force the first cursor report
	}, nil
}

// Font returns the baked atlas for the GPU pass to upload once.
func (c *Context) Font() *FontAtlas { return c.font }

// Style returns a pointer to the mutable style.
func (c *Context) Style() *Style { return &c.style }

// IO returns the current input state.
func (c *Context) IO() *IO { return &c.io }

// OnCursorChange registers the platform callback for cursor shape changes.
// It fires from End, only when the desired cursor differs from the last
// reported one.
func (c *Context) OnCursorChange(fn func(Cursor)) { c.onCursor = fn }

// ProcessEvent folds a platform input event into the next frame's state.
func (c *Context) ProcessEvent(ev Event) {
	c.io.apply(ev)
}

// WantCaptureMouse reports whether the pointer was over overlay geometry
// on the previous frame, so hosts can skip their own mouse handling.
func (c *Context) WantCaptureMouse() bool { return c.wantMouse }

// Begin starts a new overlay frame.
func (c *Context) Begin(displaySize Vec2, dt float32) {
	if c.inFrame {
		slogger().Warn("overlay Begin called twice without End")
		return
	}
	c.inFrame = true
	c.io.DisplaySize = displaySize
	c.io.DeltaTime = dt
	c.draw.reset()
	c.cursor = CursorArrow
	c.nextWantMouse = false
}

// End finishes the frame, resolves the cursor, and returns the geometry.
func (c *Context) End() *DrawData {
	if !c.inFrame {
		slogger().Warn("overlay End called without Begin")
		return &DrawData{}
	}
	if c.cur != nil {
		slogger().Warn("overlay window not closed", "window", c.curName)
		c.EndWindow()
	}
	c.inFrame = false
	c.wantMouse = c.nextWantMouse

	// Release held widgets only after this frame's widgets observed the
	// release edge, otherwise clicks could never complete.
	if !c.io.MouseDown[MouseButtonLeft] {
		c.activeID = ""
		c.dragging = ""
	}

	if c.cursor != c.lastCursor {
		c.lastCursor = c.cursor
		if c.onCursor != nil {
			c.onCursor(c.cursor)
		}
	}
	c.io.endFrame()
	return c.draw.data()
}
