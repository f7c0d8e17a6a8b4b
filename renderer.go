package frame

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/frame/overlay"
	"github.com/gogpu/frame/text"
)

// Renderer is the owning object of the whole orchestrator: the graphics
// context, shared layouts, pipelines, the active pool, the three passes,
// and the frame cycle. All subsystem state is reached through it, and all
// mutation goes through it, which is what makes the single-threaded frame
// protocol safe: a mutation method cannot run while the Renderer is inside
// OnRedraw, and explicitly mutating from a pass callback is rejected with
// ErrFrameLive.
type Renderer struct {
	ctx       *Context
	layouts   *LayoutRegistry
	pipelines *PipelineRegistry
	cycle     *FrameCycle

	image   *imageRenderer
	text    *textRenderer
	overlay *overlayRenderer

	uiBuilders []func(*overlay.Context)

	margin float32
	scale  float32
}

// New opens the GPU for the described surface and builds every subsystem.
// Adapter, device, and pipeline failures are fatal; callers abort startup.
func New(desc *wgpu.SurfaceDescriptor, width, height uint32, opts ...Option) (*Renderer, error) {
	cfg := newConfig(opts)

	ctx, err := NewContext(desc, width, height)
	if err != nil {
		return nil, fmt.Errorf("frame: %w", err)
	}
	r := &Renderer{ctx: ctx, margin: cfg.margin, scale: cfg.scale}
	if cfg.presentMode != nil {
		ctx.SetPresentMode(*cfg.presentMode)
	}

	r.layouts, err = newLayoutRegistry(ctx.Device())
	if err != nil {
		r.Release()
		return nil, fmt.Errorf("frame: %w", err)
	}

	// Pipelines compile eagerly so a bad shader fails startup, not the
	// first frame.
	r.pipelines = newPipelineRegistry(ctx.Device(), r.layouts, ctx.Format())
	for _, kind := range []PipelineKind{PipelineImage, PipelineText, PipelineOverlay} {
		if err := r.pipelines.Build(kind); err != nil {
			r.Release()
			return nil, fmt.Errorf("frame: %w", err)
		}
	}

	r.text, err = newTextRenderer(ctx, r.layouts, logicalWidth(width, r.scale, r.margin))
	if err != nil {
		r.Release()
		return nil, fmt.Errorf("frame: %w", err)
	}
	r.overlay, err = newOverlayRenderer(ctx, r.layouts)
	if err != nil {
		r.Release()
		return nil, fmt.Errorf("frame: %w", err)
	}
	r.image, err = newImageRenderer(ctx)
	if err != nil {
		r.Release()
		return nil, fmt.Errorf("frame: %w", err)
	}
	if cfg.selection != nil {
		r.image.strategy = cfg.selection
	}

	r.cycle = newFrameCycle(wgpuTarget{ctx: ctx})
	r.cycle.onEnd(r.text.atlas.Trim)
	return r, nil
}

// logicalWidth is the text wrap constraint for a surface width at a scale
// factor: width divided by scale, minus the margin.
func logicalWidth(width uint32, scale, margin float32) float32 {
	w := float32(width)/scale - margin
	if w < 1 {
		w = 1
	}
	return w
}

// OnResize reacts to a new surface size and display scale. A zero
// dimension is a guarded no-op leaving every subsystem untouched.
// Otherwise the surface is reconfigured, pipelines are checked for a
// format change, and every text buffer re-wraps to the new logical width.
func (r *Renderer) OnResize(width, height uint32, scale float32) {
	if width == 0 || height == 0 {
		Logger().Debug("ignoring degenerate resize", "width", width, "height", height)
		return
	}
	if scale <= 0 {
		scale = 1
	}
	r.ctx.Reconfigure(width, height)
	r.pipelines.Invalidate(r.ctx.Format())
	r.scale = scale
	r.text.setLogicalWidth(logicalWidth(width, scale, r.margin))
}

/// OnRedraw runs one full frame: begin, prepare each pass, record the
// passes in their fixed order, submit, present. A skipped frame (failed
// acquisition) returns nil; the next redraw re-enters the cycle.
func (r *Renderer) OnRedraw() error {
	if r.ctx == nil {
		return ErrReleased
	}
	f, err := r.cycle.Begin()
	if err != nil {
		return err
	}
	if f == nil {
		return nil // frame skipped, already logged
	}
	dt := f.Delta()

	w, h := r.ctx.Size()
	r.overlay.ui.Begin(overlay.Vec2{X: float32(w), Y: float32(h)}, dt)
	for _, build := range r.uiBuilders {
		build(r.overlay.ui)
	}
	data := r.overlay.ui.End()

	plans := []passPlan{
		r.image.prepare(r.pipelines, dt),
		r.text.prepare(r.ctx, r.pipelines, r.scale),
		r.overlay.prepare(r.ctx, r.pipelines, data),
	}
	recordPasses(f, plans)
	return r.cycle.End(f)
}

// HandleEvent forwards a platform input event to the overlay. Event
// semantics are not interpreted here.
func (r *Renderer) HandleEvent(ev overlay.Event) {
	r.overlay.ui.ProcessEvent(ev)
}

// OnCursorChange registers the platform callback for UI cursor changes.
func (r *Renderer) OnCursorChange(fn func(overlay.Cursor)) {
	r.overlay.ui.OnCursorChange(fn)
}

// RegisterPool builds a pool from the sources and makes it the image
// pass's active pool, replacing (and releasing) any previous one.
func (r *Renderer) RegisterPool(sources []Source) (*Pool, error) {
	if r.ctx == nil {
		return nil, ErrReleased
	}
	if r.cycle.Live() {
		return nil, ErrFrameLive
	}
	p, err := BuildPool(r.ctx, r.layouts, sources)
	if err != nil {
		return nil, err
	}
	if r.image.pool != nil {
		r.image.pool.Release()
	}
	r.image.pool = p
	return p, nil
}

// AddText shapes content against the current logical width and stores it.
// lineHeight is a multiplier on fontSize. The buffer draws every frame
// until removed.
func (r *Renderer) AddText(content string, fontSize, lineHeight float32) (text.ID, error) {
	if r.ctx == nil {
		return 0, ErrReleased
	}
	if r.cycle.Live() {
		return 0, ErrFrameLive
	}
	return r.text.store.Add(content, fontSize, lineHeight), nil
}

// RemoveText deletes a text buffer.
func (r *Renderer) RemoveText(id text.ID) error {
	if r.ctx == nil {
		return ErrReleased
	}
	if r.cycle.Live() {
		return ErrFrameLive
	}
	if !r.text.store.Remove(id) {
		return fmt.Errorf("text buffer %d: %w", id, ErrNotFound)
	}
	return nil
}

// Text returns a shaped buffer for inspection.
func (r *Renderer) Text(id text.ID) (*text.Buffer, bool) {
	return r.text.store.Get(id)
}

// OnUI registers a builder that runs inside every overlay frame. Builders
// run in registration order.
func (r *Renderer) OnUI(build func(*overlay.Context)) {
	r.uiBuilders = append(r.uiBuilders, build)
}

// Release tears everything down in reverse construction order.
func (r *Renderer) Release() {
	if r.image != nil {
		if r.image.pool != nil {
			r.image.pool.Release()
		}
		r.image.release()
		r.image = nil
	}
	if r.overlay != nil {
		r.overlay.release()
		r.overlay = nil
	}
	if r.text != nil {
		r.text.release()
		r.text = nil
	}
	if r.pipelines != nil {
		r.pipelines.release()
		r.pipelines = nil
	}
	if r.layouts != nil {
		r.layouts.release()
		r.layouts = nil
	}
	if r.ctx != nil {
		r.ctx.Release()
		r.ctx = nil
	}
}
