package frame

import (
	"encoding/binary"
	"math"
	"math/rand"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
)

// SelectionStrategy picks which pool entry the image pass draws each
// frame. handles is non-empty and holds the live handles in insertion
// order. The default picks arbitrarily; the exact choice is not a
// compatibility contract.
type SelectionStrategy interface {
	Select(handles []Handle) Handle
}

// randomSelection is the default strategy: any valid entry is acceptable.
type randomSelection struct {
	r *rand.Rand
}

func (s *randomSelection) Select(handles []Handle) Handle {
	return handles[s.r.Intn(len(handles))]
}

// quadRegion is the half-extent of the fixed screen region the textured
// quad covers, in NDC.
const quadRegion = 0.8

// imageRenderer owns the background pass: an animated clear color and an
// optional textured quad sampling one pool entry. The unit quad buffers
// are created once and shared for the renderer's lifetime.
type imageRenderer struct {
	pool     *Pool
	strategy SelectionStrategy
	bg       *backgroundAnimator

	vertices *wgpu.Buffer
	indices  *wgpu.Buffer

	// lastSkip dedupes the missing-pool log so a skipped pass logs once
	// per state change, not once per frame.
	lastSkip string
}

func newImageRenderer(ctx *Context) (*imageRenderer, error) {
	verts := []float32{
		// x, y, u, v
		-quadRegion, quadRegion, 0, 0,
		quadRegion, quadRegion, 1, 0,
		quadRegion, -quadRegion, 1, 1,
		-quadRegion, -quadRegion, 0, 1,
	}
	vbuf, err := ctx.Device().CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "frame.image.vertices",
		Contents: f32Bytes(verts),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, err
	}
	ibuf, err := ctx.Device().CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "frame.image.indices",
		Contents: u16Bytes([]uint16{0, 1, 2, 0, 2, 3}),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		vbuf.Release()
		return nil, err
	}
	return &imageRenderer{
		strategy: &randomSelection{r: rand.New(rand.NewSource(time.Now().UnixNano()))},
		bg:       newBackgroundAnimator(time.Now().UnixNano()),
		vertices: vbuf,
		indices:  ibuf,
	}, nil
}

// prepare picks this frame's pool entry and clear color. The returned
// plan always exists (the pass clears the frame); with no pool or an
// empty one the quad is skipped and the skip logged once.
func (r *imageRenderer) prepare(pipelines *PipelineRegistry, dt float32) passPlan {
	plan := passPlan{
		kind:  passImage,
		load:  wgpu.LoadOpClear,
		clear: r.bg.advance(dt),
	}

	entry, ok := r.selectEntry()
	if !ok {
		return plan
	}
	pipeline, err := pipelines.Get(PipelineImage)
	if err != nil {
		r.skip("pipeline unavailable: " + err.Error())
		return plan
	}

	r.lastSkip = ""
	plan.draw = func(rp *wgpu.RenderPassEncoder) {
		rp.SetPipeline(pipeline)
		rp.SetBindGroup(0, entry.BindGroup, nil)
		rp.SetVertexBuffer(0, r.vertices, 0, wgpu.WholeSize)
		rp.SetIndexBuffer(r.indices, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
		rp.DrawIndexed(6, 1, 0, 0, 0)
	}
	return plan
}

func (r *imageRenderer) selectEntry() (*Entry, bool) {
	if r.pool == nil {
		r.skip("no pool registered")
		return nil, false
	}
	handles := r.pool.Handles()
	if len(handles) == 0 {
		r.skip("pool is empty")
		return nil, false
	}
	entry, ok := r.pool.Get(r.strategy.Select(handles))
	if !ok {
		r.skip("selection strategy returned a dead handle")
		return nil, false
	}
	return entry, true
}

// skip logs a degraded image pass, once per distinct reason.
func (r *imageRenderer) skip(reason string) {
	if r.lastSkip == reason {
		return
	}
	r.lastSkip = reason
	Logger().Info("image pass skipped", "reason", reason)
}

func (r *imageRenderer) release() {
	if r.vertices != nil {
		r.vertices.Release()
		r.vertices = nil
	}
	if r.indices != nil {
		r.indices.Release()
		r.indices = nil
	}
}

// f32Bytes serializes float32 values little-endian for buffer upload.
func f32Bytes(vals []float32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	return out
}

// u16Bytes serializes uint16 values little-endian, padded to the 4-byte
// buffer alignment wgpu requires.
func u16Bytes(vals []uint16) []byte {
	n := 2 * len(vals)
	out := make([]byte, (n+3)&^3)
	for i, v := range vals {
		binary.LittleEndian.PutUint16(out[2*i:], v)
	}
	return out
}
