package frame

import (
	_ "embed"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga"
)

//go:embed shaders/quad.wgsl
var quadShaderWGSL string

//go:embed shaders/glyph.wgsl
var glyphShaderWGSL string

//go:embed shaders/overlay.wgsl
var overlayShaderWGSL string

// PipelineKind tags one of the fixed draw pipelines.
type PipelineKind int

const (
	// PipelineImage draws the textured background quad.
	PipelineImage PipelineKind = iota

	// PipelineText draws glyph quads against the text atlas.
	PipelineText

	// PipelineOverlay draws the immediate-mode UI geometry.
	PipelineOverlay
)

func (k PipelineKind) String() string {
	switch k {
	case PipelineImage:
		return "Image"
	case PipelineText:
		return "Text"
	case PipelineOverlay:
		return "Overlay"
	}
	return "Unknown"
}

// BuildError reports a pipeline compilation failure. At startup it is
// fatal; callers abort rather than render without a pipeline.
type BuildError struct {
	Kind PipelineKind
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %v pipeline: %v", e.Kind, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// alphaBlend is straight-alpha over blending, shared by all pipelines.
var alphaBlend = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
}

type pipelineEntry struct {
	pipeline *wgpu.RenderPipeline
	format   wgpu.TextureFormat
}

// PipelineRegistry compiles and caches the draw pipelines against the
// current surface format. Pipelines are built lazily on first Get and
// survive resizes; only a surface format change invalidates them.
//
// Every WGSL source is validated through naga before module creation, so
// a bad shader fails with a Go error at startup instead of a native
// validation error at draw time.
type PipelineRegistry struct {
	device  *wgpu.Device
	layouts *LayoutRegistry
	format  wgpu.TextureFormat
	entries map[PipelineKind]*pipelineEntry
}

func newPipelineRegistry(device *wgpu.Device, layouts *LayoutRegistry, format wgpu.TextureFormat) *PipelineRegistry {
	return &PipelineRegistry{
		device:  device,
		layouts: layouts,
		format:  format,
		entries: make(map[PipelineKind]*pipelineEntry),
	}
}

// Get returns the compiled pipeline for kind, building it on first use.
func (r *PipelineRegistry) Get(kind PipelineKind) (*wgpu.RenderPipeline, error) {
	if e, ok := r.entries[kind]; ok {
		return e.pipeline, nil
	}
	if err := r.Build(kind); err != nil {
		return nil, err
	}
	return r.entries[kind].pipeline, nil
}

// Build compiles the pipeline for kind against the current surface format,
// replacing any existing entry.
func (r *PipelineRegistry) Build(kind PipelineKind) error {
	p, err := r.compile(kind)
	if err != nil {
		return &BuildError{Kind: kind, Err: err}
	}
	if old, ok := r.entries[kind]; ok {
		old.pipeline.Release()
	}
	r.entries[kind] = &pipelineEntry{pipeline: p, format: r.format}
	Logger().Debug("pipeline built", "kind", kind, "format", r.format)
	return nil
}

// Invalidate drops every compiled pipeline when the surface format
// changed. A pure dimension resize keeps the format and is a no-op here;
// entries rebuild lazily on the next Get.
func (r *PipelineRegistry) Invalidate(format wgpu.TextureFormat) {
	if format == r.format {
		return
	}
	Logger().Info("surface format changed, invalidating pipelines",
		"old", r.format, "new", format)
	r.format = format
	for kind, e := range r.entries {
		e.pipeline.Release()
		delete(r.entries, kind)
	}
}

func (r *PipelineRegistry) release() {
	for kind, e := range r.entries {
		e.pipeline.Release()
		delete(r.entries, kind)
	}
}

func (r *PipelineRegistry) compile(kind PipelineKind) (*wgpu.RenderPipeline, error) {
	var (
		src     string
		label   string
		buffers []wgpu.VertexBufferLayout
		groups  []LayoutTag
	)
	switch kind {
	case PipelineImage:
		src, label = quadShaderWGSL, "frame.pipeline.image"
		buffers = []wgpu.VertexBufferLayout{quadVertexLayout()}
		groups = []LayoutTag{LayoutTextureSampler}
	case PipelineText:
		src, label = glyphShaderWGSL, "frame.pipeline.text"
		buffers = []wgpu.VertexBufferLayout{glyphVertexLayout()}
		groups = []LayoutTag{LayoutTextureSampler, LayoutUniform}
	case PipelineOverlay:
		src, label = overlayShaderWGSL, "frame.pipeline.overlay"
		buffers = []wgpu.VertexBufferLayout{overlayVertexLayout()}
		groups = []LayoutTag{LayoutTextureSampler, LayoutUniform}
	default:
		return nil, fmt.Errorf("unknown pipeline kind %d", kind)
	}

	// naga validates the WGSL; the SPIR-V result is discarded because the
	// device consumes WGSL directly.
	if _, err := naga.Compile(src); err != nil {
		return nil, fmt.Errorf("validate shader: %w", err)
	}

	module, err := r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label + ".shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: src},
	})
	if err != nil {
		return nil, fmt.Errorf("create shader module: %w", err)
	}
	defer module.Release()

	bgls := make([]*wgpu.BindGroupLayout, len(groups))
	for i, tag := range groups {
		bgl, err := r.layouts.Get(tag)
		if err != nil {
			return nil, err
		}
		bgls[i] = bgl
	}
	layout, err := r.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label + ".layout",
		BindGroupLayouts: bgls,
	})
	if err != nil {
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}
	defer layout.Release()

	return r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  label,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    buffers,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    r.format,
				Blend:     &alphaBlend,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
	})
}

// quadVertexLayout: pos float32x2 + uv float32x2.
func quadVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 16,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
		},
	}
}

// glyphVertexLayout: pos float32x2 + uv float32x2 + color float32x4.
func glyphVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 32,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
		},
	}
}

// overlayVertexLayout: pos float32x2 + uv float32x2 + color unorm8x4,
// matching overlay.Vertex.
func overlayVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 20,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
			{Format: wgpu.VertexFormatUnorm8x4, Offset: 16, ShaderLocation: 2},
		},
	}
}
