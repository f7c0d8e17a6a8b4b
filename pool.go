package frame

import (
	"fmt"
	"image"

	"github.com/cogentcore/webgpu/wgpu"
	xdraw "golang.org/x/image/draw"
)

// Source is one named image the asset collaborator resolved to pixels.
// Pix is tightly packed 8-bit RGBA, len = 4*Width*Height.
type Source struct {
	Name   string
	Width  int
	Height int
	Pix    []byte
}

// SourceFromImage converts any image.Image into a Source.
func SourceFromImage(name string, img image.Image) Source {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(rgba, rgba.Bounds(), img, b.Min, xdraw.Src)
	return Source{Name: name, Width: b.Dx(), Height: b.Dy(), Pix: rgba.Pix}
}

// Handle is a stable reference to one pool entry. Unlike a raw index it
// survives removals of other entries and detects its own: a handle to a
// removed entry simply stops resolving instead of silently rebinding.
//
// The zero Handle never resolves.
type Handle struct {
	index      uint32
	generation uint32
}

// Entry is one GPU-resident pool member.
type Entry struct {
	Name   string
	Width  uint32
	Height uint32

	Texture   *wgpu.Texture
	View      *wgpu.TextureView
	Sampler   *wgpu.Sampler
	BindGroup *wgpu.BindGroup
}

func (e *Entry) release() {
	if e.BindGroup != nil {
		e.BindGroup.Release()
	}
	if e.Sampler != nil {
		e.Sampler.Release()
	}
	if e.View != nil {
		e.View.Release()
	}
	if e.Texture != nil {
		e.Texture.Release()
	}
}

// poolSlot is one arena cell. The generation increments on removal so
// stale handles miss.
type poolSlot struct {
	entry      *Entry
	generation uint32
	live       bool
}

// Pool is a GPU-resident collection of textures with their bind groups,
// built as a batch and released as a unit. Entries are addressed by
// generation-checked Handles; iteration order is insertion order.
type Pool struct {
	slots []poolSlot
	order []Handle
}

// BuildPool uploads every source synchronously and returns the finished
// pool. The build is all-or-nothing: on any failure the partial pool is
// released and an error returned, so no half-built pool is observable.
func BuildPool(ctx *Context, layouts *LayoutRegistry, sources []Source) (*Pool, error) {
	layout, err := layouts.Get(LayoutTextureSampler)
	if err != nil {
		return nil, fmt.Errorf("build pool: %w", err)
	}

	p := &Pool{slots: make([]poolSlot, 0, len(sources))}
	for _, src := range sources {
		entry, err := uploadEntry(ctx, layout, src)
		if err != nil {
			p.Release()
			return nil, fmt.Errorf("build pool: entry %q: %w", src.Name, err)
		}
		h := Handle{index: uint32(len(p.slots)), generation: 1}
		p.slots = append(p.slots, poolSlot{entry: entry, generation: 1, live: true})
		p.order = append(p.order, h)
	}
	Logger().Debug("pool built", "entries", len(p.slots))
	return p, nil
}

// uploadEntry creates texture, view, sampler, and bind group for one source.
func uploadEntry(ctx *Context, layout *wgpu.BindGroupLayout, src Source) (*Entry, error) {
	if src.Width <= 0 || src.Height <= 0 {
		return nil, fmt.Errorf("degenerate source %dx%d", src.Width, src.Height)
	}
	if len(src.Pix) != 4*src.Width*src.Height {
		return nil, fmt.Errorf("pixel data is %d bytes, want %d", len(src.Pix), 4*src.Width*src.Height)
	}

	size := wgpu.Extent3D{
		Width:              uint32(src.Width),
		Height:             uint32(src.Height),
		DepthOrArrayLayers: 1,
	}
	tex, err := ctx.Device().CreateTexture(&wgpu.TextureDescriptor{
		Label:         "frame.pool." + src.Name,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}
	entry := &Entry{Name: src.Name, Width: size.Width, Height: size.Height, Texture: tex}

	ctx.Queue().WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		src.Pix,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  4 * size.Width,
			RowsPerImage: size.Height,
		},
		&size,
	)

	entry.View, err = tex.CreateView(nil)
	if err != nil {
		entry.release()
		return nil, fmt.Errorf("create view: %w", err)
	}

	entry.Sampler, err = ctx.Device().CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "frame.pool." + src.Name + ".sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		entry.release()
		return nil, fmt.Errorf("create sampler: %w", err)
	}

	entry.BindGroup, err = ctx.Device().CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "frame.pool." + src.Name + ".bind",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: entry.View},
			{Binding: 1, Sampler: entry.Sampler},
		},
	})
	if err != nil {
		entry.release()
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	return entry, nil
}

// Get resolves a handle. A zero, removed, or foreign handle misses.
func (p *Pool) Get(h Handle) (*Entry, bool) {
	if int(h.index) >= len(p.slots) {
		return nil, false
	}
	s := &p.slots[h.index]
	if !s.live || s.generation != h.generation {
		return nil, false
	}
	return s.entry, true
}

// Handles returns the live handles in insertion order.
func (p *Pool) Handles() []Handle {
	out := make([]Handle, 0, len(p.order))
	for _, h := range p.order {
		if _, ok := p.Get(h); ok {
			out = append(out, h)
		}
	}
	return out
}

// Count returns the number of live entries.
func (p *Pool) Count() int {
	n := 0
	for _, s := range p.slots {
		if s.live {
			n++
		}
	}
	return n
}

// Remove releases one entry's GPU resources and invalidates its handle.
// Handles to other entries are unaffected. Reports whether h was live.
// Callers must not remove entries while a frame is in flight; the Renderer
// enforces this by rejecting mutations during a live frame.
func (p *Pool) Remove(h Handle) bool {
	e, ok := p.Get(h)
	if !ok {
		return false
	}
	e.release()
	s := &p.slots[h.index]
	s.entry = nil
	s.live = false
	s.generation++
	return true
}

// Release frees every live entry. The pool is unusable afterwards.
func (p *Pool) Release() {
	for i := range p.slots {
		if p.slots[i].live {
			p.slots[i].entry.release()
			p.slots[i].entry = nil
			p.slots[i].live = false
			p.slots[i].generation++
		}
	}
}
