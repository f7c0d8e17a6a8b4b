package overlay

// MouseButton identifies a mouse button in overlay events.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle

	mouseButtonCount
)

// Cursor is the mouse cursor shape the overlay wants the platform to show.
type Cursor int

const (
	// CursorArrow is the default pointer.
	CursorArrow Cursor = iota

	// CursorHand marks interactive widgets under the mouse.
	CursorHand

	// CursorMove is shown while a window is dragged by its title bar.
	CursorMove
)

func (c Cursor) String() string {
	switch c {
	case CursorArrow:
		return "Arrow"
	case CursorHand:
		return "Hand"
	case CursorMove:
		return "Move"
	}
	return "Unknown"
}

// Event is a platform input event forwarded to the overlay.
type Event interface {
	isEvent()
}

// MouseMoveEvent reports the pointer position in surface pixels.
type MouseMoveEvent struct {
	X, Y float32
}

// MouseButtonEvent reports a button press or release.
type MouseButtonEvent struct {
	Button  MouseButton
	Pressed bool
}

// ScrollEvent reports wheel movement in lines.
type ScrollEvent struct {
	DX, DY float32
}

func (MouseMoveEvent) isEvent()   {}
func (MouseButtonEvent) isEvent() {}
func (ScrollEvent) isEvent()      {}

// IO is the per-frame input state the widgets read.
type IO struct {
	// MousePos is the pointer position in overlay pixels.
	MousePos Vec2

	// MouseDown holds the current held state per button.
	MouseDown [mouseButtonCount]bool

	// Scroll is the wheel delta accumulated since the previous frame.
	Scroll Vec2

	// DisplaySize is the logical size passed to Begin.
	DisplaySize Vec2

	// DeltaTime is the seconds elapsed since the previous frame.
	DeltaTime float32

	clicked  [mouseButtonCount]bool // pressed this frame
	released [mouseButtonCount]bool // released this frame
}

// Clicked reports whether the button went down this frame.
func (io *IO) Clicked(b MouseButton) bool { return io.clicked[b] }

// Released reports whether the button went up this frame.
func (io *IO) Released(b MouseButton) bool { return io.released[b] }

// apply folds one event into the pending input state.
func (io *IO) apply(ev Event) {
	switch e := ev.(type) {
	case MouseMoveEvent:
		io.MousePos = Vec2{e.X, e.Y}
	case MouseButtonEvent:
		if e.Button < 0 || e.Button >= mouseButtonCount {
			return
		}
		if e.Pressed && !io.MouseDown[e.Button] {
			io.clicked[e.Button] = true
		}
		if !e.Pressed && io.MouseDown[e.Button] {
			io.released[e.Button] = true
		}
		io.MouseDown[e.Button] = e.Pressed
	case ScrollEvent:
		io.Scroll.X += e.DX
		io.Scroll.Y += e.DY
	}
}

// newFrame clears the per-frame edges after the widgets consumed them.
func (io *IO) endFrame() {
	io.clicked = [mouseButtonCount]bool{}
	io.released = [mouseButtonCount]bool{}
	io.Scroll = Vec2{}
}
