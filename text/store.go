package text

// ID is an opaque buffer identifier issued by a Store.
// The zero ID is never issued.
type ID uint64

// Store owns every text buffer of one renderer, keyed by ID, and preserves
// insertion order for the deterministic stacking layout of the text pass.
type Store struct {
	font   *Font
	shaper shaper

	width float32 // current wrap constraint (logical px)

	next  ID
	order []ID
	bufs  map[ID]*Buffer
}

// NewStore creates an empty store wrapping to the given logical width.
func NewStore(font *Font, width float32) *Store {
	return &Store{
		font:  font,
		width: width,
		bufs:  make(map[ID]*Buffer),
	}
}

// Add shapes content against the current width constraint and stores it.
// lineHeight is a multiplier on fontSize (1.0 = solid leading).
func (st *Store) Add(content string, fontSize, lineHeight float32) ID {
	st.next++
	id := st.next
	m := Metrics{FontSize: fontSize, LineHeight: lineHeight}
	st.bufs[id] = newBuffer(st.font, &st.shaper, content, m, st.width)
	st.order = append(st.order, id)
	slogger().Debug("text buffer added", "id", uint64(id), "runes", len(content))
	return id
}

// Remove deletes a buffer. It reports whether the ID was present.
func (st *Store) Remove(id ID) bool {
	if _, ok := st.bufs[id]; !ok {
		return false
	}
	delete(st.bufs, id)
	for i, v := range st.order {
		if v == id {
			st.order = append(st.order[:i], st.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the buffer for id.
func (st *Store) Get(id ID) (*Buffer, bool) {
	b, ok := st.bufs[id]
	return b, ok
}

// Len returns the number of live buffers.
func (st *Store) Len() int { return len(st.bufs) }

// Width returns the current wrap constraint.
func (st *Store) Width() float32 { return st.width }

// SetWidth re-wraps and re-shapes every buffer to a new logical width.
// Called on window resize; a no-op when the width is unchanged.
func (st *Store) SetWidth(width float32) {
	if width == st.width {
		return
	}
	st.width = width
	for _, b := range st.bufs {
		b.reshape(st.font, &st.shaper, width)
	}
	slogger().Debug("text buffers rewrapped", "width", width, "buffers", len(st.bufs))
}

// Each visits buffers in insertion order.
func (st *Store) Each(fn func(ID, *Buffer)) {
	for _, id := range st.order {
		fn(id, st.bufs[id])
	}
}

// Font returns the store's font, shared with the glyph atlas.
func (st *Store) Font() *Font { return st.font }
