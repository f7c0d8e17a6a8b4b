package frame

import "github.com/cogentcore/webgpu/wgpu"

// passKind orders the closed set of per-frame passes. The order is a hard
// invariant: image first (clears), then text, then overlay, both loading
// the previous contents.
type passKind int

const (
	passImage passKind = iota
	passText
	passOverlay
)

func (k passKind) String() string {
	switch k {
	case passImage:
		return "image"
	case passText:
		return "text"
	case passOverlay:
		return "overlay"
	}
	return "unknown"
}

// passPlan is one planned render pass: its load policy and a recorded
// draw closure. A nil draw still opens and closes the pass, so the image
// pass clears even when it has nothing to draw.
type passPlan struct {
	kind  passKind
	load  wgpu.LoadOp
	clear wgpu.Color
	draw  func(rp *wgpu.RenderPassEncoder)
}

// recordPasses encodes every plan against the frame's view, in order.
func recordPasses(f *Frame, plans []passPlan) {
	for _, p := range plans {
		rp := f.Encoder().BeginRenderPass(&wgpu.RenderPassDescriptor{
			Label: "frame.pass." + p.kind.String(),
			ColorAttachments: []wgpu.RenderPassColorAttachment{{
				View:       f.View(),
				LoadOp:     p.load,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: p.clear,
			}},
		})
		if p.draw != nil {
			p.draw(rp)
		}
		rp.End()
		rp.Release()
	}
}
