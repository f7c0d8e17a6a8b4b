package frame

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/frame/overlay"
)

// overlayRenderer owns the UI pass: the immediate-mode context, its baked
// font texture, and per-frame vertex and index buffers. It draws last,
// loading the text pass's output.
type overlayRenderer struct {
	ui *overlay.Context

	texture   *wgpu.Texture
	view      *wgpu.TextureView
	sampler   *wgpu.Sampler
	atlasBind *wgpu.BindGroup

	uniformBuf  *wgpu.Buffer
	uniformBind *wgpu.BindGroup

	vertexBuf *wgpu.Buffer
	indexBuf  *wgpu.Buffer
	indexes   uint32
}

func newOverlayRenderer(ctx *Context, layouts *LayoutRegistry) (*overlayRenderer, error) {
	ui, err := overlay.NewContext()
	if err != nil {
		return nil, fmt.Errorf("create overlay renderer: %w", err)
	}
	r := &overlayRenderer{ui: ui}
	if err := r.createGPU(ctx, layouts); err != nil {
		r.release()
		return nil, fmt.Errorf("create overlay renderer: %w", err)
	}
	return r, nil
}

func (r *overlayRenderer) createGPU(ctx *Context, layouts *LayoutRegistry) error {
	dev := ctx.Device()
	font := r.ui.Font()
	w, h := font.Size()
	var err error

	r.texture, err = dev.CreateTexture(&wgpu.TextureDescriptor{
		Label: "frame.overlay.font",
		Size: wgpu.Extent3D{
			Width:              uint32(w),
			Height:             uint32(h),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create font texture: %w", err)
	}

	// The baked atlas never changes, so one upload covers the lifetime.
	size := wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1}
	ctx.Queue().WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  r.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		font.Pix(),
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(w),
			RowsPerImage: uint32(h),
		},
		&size,
	)

	r.view, err = r.texture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create font view: %w", err)
	}
	r.sampler, err = dev.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "frame.overlay.sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("create font sampler: %w", err)
	}

	texLayout, err := layouts.Get(LayoutTextureSampler)
	if err != nil {
		return err
	}
	r.atlasBind, err = dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "frame.overlay.font.bind",
		Layout: texLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: r.view},
			{Binding: 1, Sampler: r.sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("create font bind group: %w", err)
	}

	r.uniformBuf, err = dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "frame.overlay.uniform",
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
		Label:  "frame.overlay.uniform.bind",
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

// prepare uploads the frame's draw data and returns the overlay plan.
func (r *overlayRenderer) prepare(ctx *Context, pipelines *PipelineRegistry, data *overlay.DrawData) passPlan {
	plan := passPlan{kind: passOverlay, load: wgpu.LoadOpLoad}
	if data == nil || len(data.Indices) == 0 {
		return plan
	}
	pipeline, err := pipelines.Get(PipelineOverlay)
	if err != nil {
		Logger().Info("overlay pass skipped", "reason", err)
		return plan
	}

	w, h := ctx.Size()
	writeScreenUniform(ctx, r.uniformBuf, w, h)

	if r.vertexBuf != nil {
		r.vertexBuf.Release()
		r.vertexBuf = nil
	}
	if r.indexBuf != nil {
		r.indexBuf.Release()
		r.indexBuf = nil
	}
	vbuf, err := ctx.Device().CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "frame.overlay.vertices",
		Contents: overlayVertexBytes(data.Vertices),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		Logger().Warn("overlay pass skipped", "reason", err)
		return plan
	}
	ibuf, err := ctx.Device().CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "frame.overlay.indices",
		Contents: u16Bytes(data.Indices),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		vbuf.Release()
		Logger().Warn("overlay pass skipped", "reason", err)
		return plan
	}
	r.vertexBuf = vbuf
	r.indexBuf = ibuf
	r.indexes = uint32(len(data.Indices))

	plan.draw = func(rp *wgpu.RenderPassEncoder) {
		rp.SetPipeline(pipeline)
		rp.SetBindGroup(0, r.atlasBind, nil)
		rp.SetBindGroup(1, r.uniformBind, nil)
		rp.SetVertexBuffer(0, r.vertexBuf, 0, wgpu.WholeSize)
		rp.SetIndexBuffer(r.indexBuf, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
		rp.DrawIndexed(r.indexes, 1, 0, 0, 0)
	}
	return plan
}

func (r *overlayRenderer) release() {
	if r.vertexBuf != nil {
		r.vertexBuf.Release()
	}
	if r.indexBuf != nil {
		r.indexBuf.Release()
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

// overlayVertexBytes serializes overlay vertices to the 20-byte layout the
// overlay pipeline expects: pos f32x2, uv f32x2, color unorm8x4.
func overlayVertexBytes(verts []overlay.Vertex) []byte {
	out := make([]byte, 20*len(verts))
	for i, v := range verts {
		o := out[20*i:]
		binary.LittleEndian.PutUint32(o[0:], math.Float32bits(v.PosX))
		binary.LittleEndian.PutUint32(o[4:], math.Float32bits(v.PosY))
		binary.LittleEndian.PutUint32(o[8:], math.Float32bits(v.U))
		binary.LittleEndian.PutUint32(o[12:], math.Float32bits(v.V))
		o[16], o[17], o[18], o[19] = v.R, v.G, v.B, v.A
	}
	return out
}
