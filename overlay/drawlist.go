package overlay

// Vec2 is a 2D point in overlay pixel space, y-down.
type Vec2 struct {
	X, Y float32
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Rect is an axis-aligned rectangle.
type Rect struct {
	Min, Max Vec2
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// Color is a packed 0xRRGGBBAA color, matching WGSL unpack order after the
// byte swizzle in the overlay shader.
type Color uint32

// RGBA unpacks the color channels.
func (c Color) RGBA() (r, g, b, a uint8) {
	return uint8(c >> 24), uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Vertex is one overlay vertex: position in pixels, texture coordinate
// into the font atlas, and a straight-alpha color.
type Vertex struct {
	PosX, PosY float32
	U, V       float32
	R, G, B, A uint8
}

// DrawData is the finished geometry of one overlay frame, consumed by the
// GPU pass. Vertices index into a single texture, the overlay font atlas.
type DrawData struct {
	Vertices []Vertex
	Indices  []uint16
}

// DrawList accumulates triangles for one frame. All primitives sample the
// font atlas; untextured fills use its solid white pixel.
type DrawList struct {
	font     *FontAtlas
	vertices []Vertex
	indices  []uint16
}

func newDrawList(font *FontAtlas) *DrawList {
	return &DrawList{font: font}
}

func (d *DrawList) reset() {
	d.vertices = d.vertices[:0]
	d.indices = d.indices[:0]
}

// quad pushes one textured quad.
func (d *DrawList) quad(min, max Vec2, u0, v0, u1, v1 float32, c Color) {
	base := uint16(len(d.vertices))
	r, g, b, a := c.RGBA()
	d.vertices = append(d.vertices,
		Vertex{min.X, min.Y, u0, v0, r, g, b, a},
		Vertex{max.X, min.Y, u1, v0, r, g, b, a},
		Vertex{max.X, max.Y, u1, v1, r, g, b, a},
		Vertex{min.X, max.Y, u0, v1, r, g, b, a},
	)
	d.indices = append(d.indices, base, base+1, base+2, base, base+2, base+3)
}

// AddRectFilled fills the rectangle with a solid color.
func (d *DrawList) AddRectFilled(min, max Vec2, c Color) {
	u, v := d.font.whiteU, d.font.whiteV
	d.quad(min, max, u, v, u, v, c)
}

// AddRect strokes a one-pixel rectangle outline.
func (d *DrawList) AddRect(min, max Vec2, c Color) {
	d.AddRectFilled(min, Vec2{max.X, min.Y + 1}, c)
	d.AddRectFilled(Vec2{min.X, max.Y - 1}, max, c)
	d.AddRectFilled(Vec2{min.X, min.Y + 1}, Vec2{min.X + 1, max.Y - 1}, c)
	d.AddRectFilled(Vec2{max.X - 1, min.Y + 1}, Vec2{max.X, max.Y - 1}, c)
}

// AddLine draws a horizontal or vertical one-pixel line. Diagonals are not
// needed by the overlay widgets.
func (d *DrawList) AddLine(from, to Vec2, c Color) {
	if from.Y == to.Y {
		d.AddRectFilled(from, Vec2{to.X, to.Y + 1}, c)
		return
	}
	d.AddRectFilled(from, Vec2{to.X + 1, to.Y}, c)
}

// AddText draws s with the baked font, pos at the text's top-left corner.
func (d *DrawList) AddText(pos Vec2, s string, c Color) {
	pen := pos
	for _, r := range s {
		g := d.font.Glyph(r)
		if g.U1 > g.U0 {
			d.quad(
				Vec2{pen.X + g.X0, pen.Y + g.Y0},
				Vec2{pen.X + g.X1, pen.Y + g.Y1},
				g.U0, g.V0, g.U1, g.V1, c)
		}
		pen.X += g.Advance
	}
}

// data snapshots the accumulated geometry. The slices alias the list's
// buffers and are valid until the next Begin.
func (d *DrawList) data() *DrawData {
	return &DrawData{Vertices: d.vertices, Indices: d.indices}
}
