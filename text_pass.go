package frame

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/frame/text"
)

const (
	// textLeftMargin and textTopMargin position the stacked buffers, in
	// logical pixels.
	textLeftMargin = 10
	textTopMargin  = 10

	// textBufferGap separates consecutive buffers vertically.
	textBufferGap = 5

	// textAtlasDim is the glyph atlas size in pixels.
	textAtlasDim = 1024
)

// textRenderer owns the text pass: the shaped buffer store, the glyph
// atlas, and the GPU resources that draw them. Layout is a deterministic
// top-to-bottom stack in insertion order, not a general layout engine.
type textRenderer struct {
	store *text.Store
	atlas *text.Atlas

	texture   *wgpu.Texture
	view      *wgpu.TextureView
	sampler   *wgpu.Sampler
	atlasBind *wgpu.BindGroup

	uniformBuf  *wgpu.Buffer
	uniformBind *wgpu.BindGroup

	vertexBuf   *wgpu.Buffer
	vertexCount uint32
}

func newTextRenderer(ctx *Context, layouts *LayoutRegistry, logicalWidth float32) (*textRenderer, error) {
	font, err := text.DefaultFont()
	if err != nil {
		return nil, fmt.Errorf("create text renderer: %w", err)
	}
	r := &textRenderer{
		store: text.NewStore(font, logicalWidth),
		atlas: text.NewAtlas(font, textAtlasDim, textAtlasDim),
	}
	if err := r.createGPU(ctx, layouts); err != nil {
		r.release()
		return nil, fmt.Errorf("create text renderer: %w", err)
	}
	return r, nil
}

func (r *textRenderer) createGPU(ctx *Context, layouts *LayoutRegistry) error {
	dev := ctx.Device()
	var err error

	r.texture, err = dev.CreateTexture(&wgpu.TextureDescriptor{
		Label: "frame.text.atlas",
		Size: wgpu.Extent3D{
			Width:              textAtlasDim,
			Height:             textAtlasDim,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create atlas texture: %w", err)
	}
	r.view, err = r.texture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create atlas view: %w", err)
	}
	r.sampler, err = dev.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "frame.text.sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("create atlas sampler: %w", err)
	}

	texLayout, err := layouts.Get(LayoutTextureSampler)
	if err != nil {
		return err
	}
	r.atlasBind, err = dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "frame.text.atlas.bind",
		Layout: texLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: r.view},
			{Binding: 1, Sampler: r.sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("create atlas bind group: %w", err)
	}

	r.uniformBuf, err = dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "frame.text.uniform",
		Size:  16,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	uniLayout, err := layouts.Get(LayoutUniform)
	if err != nil {
		return err
	}
	r.uniformBind, err = dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "frame.text.uniform.bind",
		Layout: uniLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: r.uniformBuf, Size: 16},
		},
	})
	if err != nil {
		return fmt.Errorf("create uniform bind group: %w", err)
	}
	return nil
}

// setLogicalWidth re-wraps every buffer to the new constraint.
func (r *textRenderer) setLogicalWidth(w float32) {
	r.store.SetWidth(w)
}

// prepare lays out every buffer, refreshes the atlas and vertex buffer,
// and returns the text pass plan. The pass loads the image pass's output;
// it never clears.
func (r *textRenderer) prepare(ctx *Context, pipelines *PipelineRegistry, scale float32) passPlan {
	plan := passPlan{kind: passText, load: wgpu.LoadOpLoad}

	verts := r.buildVertices(scale)
	if len(verts) == 0 {
		return plan
	}
	r.uploadAtlas(ctx)
	pipeline, err := pipelines.Get(PipelineText)
	if err != nil {
		Logger().Info("text pass skipped", "reason", err)
		return plan
	}

	w, h := ctx.Size()
	writeScreenUniform(ctx, r.uniformBuf, w, h)

	if r.vertexBuf != nil {
		r.vertexBuf.Release()
		r.vertexBuf = nil
	}
	buf, err := ctx.Device().CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "frame.text.vertices",
		Contents: f32Bytes(verts),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		Logger().Warn("text pass skipped", "reason", err)
		return plan
	}
	r.vertexBuf = buf
	r.vertexCount = uint32(len(verts) / 8)

	plan.draw = func(rp *wgpu.RenderPassEncoder) {
		rp.SetPipeline(pipeline)
		rp.SetBindGroup(0, r.atlasBind, nil)
		rp.SetBindGroup(1, r.uniformBind, nil)
		rp.SetVertexBuffer(0, r.vertexBuf, 0, wgpu.WholeSize)
		rp.Draw(r.vertexCount, 1, 0, 0)
	}
	return plan
}

// buildVertices stacks the buffers and emits two triangles per glyph:
// pos.xy, uv.xy, rgba per vertex, positions in surface pixels.
//
// An eviction while collecting moves glyphs that were already emitted,
// so their UVs would point at cleared pixels for one frame. When the
// atlas epoch advances during a pass the collection restarts; the retry
// hits the rebuilt cache and comes out stable.
func (r *textRenderer) buildVertices(scale float32) []float32 {
	for range 3 {
		epoch := r.atlas.Epoch()
		verts := r.collectVertices(scale)
		if r.atlas.Epoch() == epoch {
			return verts
		}
	}
	// The working set itself overflows the atlas; nothing a retry fixes.
	Logger().Warn("glyph working set exceeds atlas capacity")
	return r.collectVertices(scale)
}

func (r *textRenderer) collectVertices(scale float32) []float32 {
	var verts []float32
	aw, ah := r.atlas.Size()
	top := float32(textTopMargin)

	r.store.Each(func(_ text.ID, b *text.Buffer) {
		m := b.Metrics()
		for i, ln := range b.Lines() {
			baseline := top + float32(i)*m.LineHeightPx() + ln.Ascent
			for _, g := range ln.Glyphs {
				reg, ok := r.atlas.Get(g.GID, m.FontSize*scale)
				if !ok {
					continue
				}
				// Snap quad origins to the pixel grid; the atlas is
				// sampled linearly and off-grid glyphs blur.
				x0 := math32.Round((textLeftMargin+g.X)*scale + reg.BearingX)
				y0 := math32.Round((baseline+g.Y)*scale + reg.BearingY)
				x1 := x0 + float32(reg.W)
				y1 := y0 + float32(reg.H)
				u0 := float32(reg.X) / float32(aw)
				v0 := float32(reg.Y) / float32(ah)
				u1 := float32(reg.X+reg.W) / float32(aw)
				v1 := float32(reg.Y+reg.H) / float32(ah)
				verts = appendGlyphQuad(verts, x0, y0, x1, y1, u0, v0, u1, v1)
			}
		}
		top += b.Height() + textBufferGap
	})
	return verts
}

func appendGlyphQuad(verts []float32, x0, y0, x1, y1, u0, v0, u1, v1 float32) []float32 {
	const cr, cg, cb, ca = 1, 1, 1, 1 // white text
	return append(verts,
		x0, y0, u0, v0, cr, cg, cb, ca,
		x1, y0, u1, v0, cr, cg, cb, ca,
		x1, y1, u1, v1, cr, cg, cb, ca,
		x0, y0, u0, v0, cr, cg, cb, ca,
		x1, y1, u1, v1, cr, cg, cb, ca,
		x0, y1, u0, v1, cr, cg, cb, ca,
	)
}

// uploadAtlas pushes dirty atlas pixels to the GPU texture.
func (r *textRenderer) uploadAtlas(ctx *Context) {
	if !r.atlas.Dirty() {
		return
	}
	w, h := r.atlas.Size()
	size := wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1}
	ctx.Queue().WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  r.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		r.atlas.Pix(),
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(w),
			RowsPerImage: uint32(h),
		},
		&size,
	)
	r.atlas.MarkClean()
}

func (r *textRenderer) release() {
	if r.vertexBuf != nil {
		r.vertexBuf.Release()
	}
	if r.uniformBind != nil {
		r.uniformBind.Release()
	}
	if r.uniformBuf != nil {
		r.uniformBuf.Release()
	}
	if r.atlasBind != nil {
		r.atlasBind.Release()
	}
	if r.sampler != nil {
		r.sampler.Release()
	}
	if r.view != nil {
		r.view.Release()
	}
	if r.texture != nil {
		r.texture.Release()
	}
}

// writeScreenUniform uploads the surface size as a vec2 plus padding.
func writeScreenUniform(ctx *Context, buf *wgpu.Buffer, w, h uint32) {
	ctx.Queue().WriteBuffer(buf, 0, f32Bytes([]float32{float32(w), float32(h), 0, 0}))
}
