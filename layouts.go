package frame

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// LayoutTag names a shared bind-group layout shape.
type LayoutTag int

const (
	// LayoutTextureSampler is one sampled 2D texture plus one filtering
	// sampler, visible to the fragment stage. Every pool entry and every
	// atlas binding uses it.
	LayoutTextureSampler LayoutTag = iota

	// LayoutUniform is a single uniform buffer visible to both stages,
	// used for per-pass parameters such as the viewport transform.
	LayoutUniform
)

func (t LayoutTag) String() string {
	switch t {
	case LayoutTextureSampler:
		return "TextureSampler"
	case LayoutUniform:
		return "Uniform"
	}
	return "Unknown"
}

// LayoutRegistry holds the shared bind-group layouts. It is built once at
// startup and immutable thereafter; pools and pipelines reference the same
// layout objects so bind groups stay compatible across all of them.
type LayoutRegistry struct {
	layouts map[LayoutTag]*wgpu.BindGroupLayout
}

// newLayoutRegistry creates every shared layout up front.
func newLayoutRegistry(device *wgpu.Device) (*LayoutRegistry, error) {
	texSampler, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "frame.layout.texture-sampler",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create texture-sampler layout: %w", err)
	}

	uniform, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "frame.layout.uniform",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeUniform,
				},
			},
		},
	})
	if err != nil {
		texSampler.Release()
		return nil, fmt.Errorf("create uniform layout: %w", err)
	}

	return &LayoutRegistry{
		layouts: map[LayoutTag]*wgpu.BindGroupLayout{
			LayoutTextureSampler: texSampler,
			LayoutUniform:        uniform,
		},
	}, nil
}

// Get returns the layout for tag, or ErrNotFound for an unknown tag.
func (r *LayoutRegistry) Get(tag LayoutTag) (*wgpu.BindGroupLayout, error) {
	l, ok := r.layouts[tag]
	if !ok {
		return nil, fmt.Errorf("layout %v: %w", tag, ErrNotFound)
	}
	return l, nil
}

func (r *LayoutRegistry) release() {
	for _, l := range r.layouts {
		l.Release()
	}
	r.layouts = nil
}
