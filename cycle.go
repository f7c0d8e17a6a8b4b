package frame

import (
	"strings"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
)

// surfaceTarget is the narrow seam between the frame cycle and the GPU
// surface, so acquisition failure paths stay testable without a device.
type surfaceTarget interface {
	// acquire obtains the next presentable target.
	acquire() (presentable, error)

	// recover reconfigures the surface from the last known-good
	// configuration after a transient acquisition failure.
	recover()

	// newEncoder opens a command encoder for the frame.
	newEncoder() (frameEncoder, error)
}

// presentable is one acquired surface texture.
type presentable interface {
	view() (frameView, error)
	present()
	release()
}

type frameView interface {
	raw() *wgpu.TextureView
	release()
}

// frameEncoder records one frame's commands and submits them as a unit.
type frameEncoder interface {
	raw() *wgpu.CommandEncoder
	submit() error
	release()
}

// Frame is the ephemeral per-frame context: the acquired target, its
// view, the command encoder, and the frame's delta time. Exactly one
// Frame is live at a time; it is consumed by FrameCycle.End.
type Frame struct {
	target  presentable
	view    frameView
	encoder frameEncoder
	delta   float32
}

// View returns the render target view for pass attachments.
func (f *Frame) View() *wgpu.TextureView { return f.view.raw() }

// Encoder returns the command encoder recording this frame.
func (f *Frame) Encoder() *wgpu.CommandEncoder { return f.encoder.raw() }

// Delta returns the seconds elapsed since the previous Begin, computed
// once per frame and shared read-only by every pass.
func (f *Frame) Delta() float32 { return f.delta }

// FrameCycle drives the begin/submit/present protocol. States move
// Idle -> Acquiring -> (Ready | AcquireFailed) -> Composing -> Submitted
// -> Idle; a failed acquisition skips the frame and returns to Idle.
type FrameCycle struct {
	target surfaceTarget

	now     func() time.Time
	last    time.Time
	started bool

	live *Frame

	// endHooks run after present, for end-of-frame bookkeeping such as
	// trimming the glyph atlas.
	endHooks []func()
}

func newFrameCycle(target surfaceTarget) *FrameCycle {
	return &FrameCycle{target: target, now: time.Now}
}

// onEnd registers an end-of-frame bookkeeping hook.
func (c *FrameCycle) onEnd(fn func()) {
	c.endHooks = append(c.endHooks, fn)
}

// Live reports whether a Frame is currently in flight.
func (c *FrameCycle) Live() bool { return c.live != nil }

// Begin computes delta time and acquires the next presentable target.
//
// A transient acquisition failure (surface outdated, lost, or timed out)
// triggers one reconfigure from the last known configuration and exactly
// one retry; if that also fails, or on any other acquisition error, the
// frame is skipped: Begin logs and returns (nil, nil). The next redraw
// re-enters the cycle.
//
// Begin while a Frame is live returns ErrFrameLive.
func (c *FrameCycle) Begin() (*Frame, error) {
	if c.live != nil {
		return nil, ErrFrameLive
	}

	now := c.now()
	var delta float32
	if c.started {
		delta = float32(now.Sub(c.last).Seconds())
	}
	c.started = true
	c.last = now

	target, err := c.target.acquire()
	if err != nil {
		if !isTransientAcquire(err) {
			Logger().Warn("frame skipped: surface acquisition failed", "err", err)
			return nil, nil
		}
		Logger().Debug("surface stale, reconfiguring", "err", err)
		c.target.recover()
		target, err = c.target.acquire()
		if err != nil {
			Logger().Warn("frame skipped: acquisition failed after reconfigure", "err", err)
			return nil, nil
		}
	}

	view, err := target.view()
	if err != nil {
		target.release()
		Logger().Warn("frame skipped: target view creation failed", "err", err)
		return nil, nil
	}
	encoder, err := c.target.newEncoder()
	if err != nil {
		view.release()
		target.release()
		Logger().Warn("frame skipped: command encoder creation failed", "err", err)
		return nil, nil
	}

	c.live = &Frame{target: target, view: view, encoder: encoder, delta: delta}
	return c.live, nil
}

// End submits the frame's commands, presents the target, and runs the
// end-of-frame hooks. The Frame is consumed and must not be used after.
func (c *FrameCycle) End(f *Frame) error {
	if f == nil || f != c.live {
		return ErrFrameLive
	}
	c.live = nil

	err := f.encoder.submit()
	if err == nil {
		f.target.present()
	} else {
		Logger().Error("frame submission failed", "err", err)
	}
	f.encoder.release()
	f.view.release()
	f.target.release()

	for _, fn := range c.endHooks {
		fn()
	}
	return err
}

// isTransientAcquire classifies acquisition errors that a single surface
// reconfigure may fix.
func isTransientAcquire(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "outdated") ||
		strings.Contains(s, "lost") ||
		strings.Contains(s, "timeout") ||
		strings.Contains(s, "timed out") ||
		strings.Contains(s, "suboptimal")
}

// wgpuTarget adapts a Context to the surfaceTarget seam.
type wgpuTarget struct {
	ctx *Context
}

func (t wgpuTarget) acquire() (presentable, error) {
	tex, err := t.ctx.Surface().GetCurrentTexture()
	if err != nil {
		return nil, err
	}
	return wgpuPresentable{tex: tex, surface: t.ctx.Surface()}, nil
}

func (t wgpuTarget) recover() {
	t.ctx.reconfigureCurrent()
}

func (t wgpuTarget) newEncoder() (frameEncoder, error) {
	enc, err := t.ctx.Device().CreateCommandEncoder(nil)
	if err != nil {
		return nil, err
	}
	return &wgpuEncoder{enc: enc, queue: t.ctx.Queue()}, nil
}

type wgpuPresentable struct {
	tex     *wgpu.Texture
	surface *wgpu.Surface
}

func (p wgpuPresentable) view() (frameView, error) {
	v, err := p.tex.CreateView(nil)
	if err != nil {
		return nil, err
	}
	return wgpuView{v}, nil
}

func (p wgpuPresentable) present() { p.surface.Present() }
func (p wgpuPresentable) release() { p.tex.Release() }

type wgpuView struct {
	v *wgpu.TextureView
}

func (v wgpuView) raw() *wgpu.TextureView { return v.v }
func (v wgpuView) release()               { v.v.Release() }

type wgpuEncoder struct {
	enc   *wgpu.CommandEncoder
	queue *wgpu.Queue
}

func (e *wgpuEncoder) raw() *wgpu.CommandEncoder { return e.enc }

func (e *wgpuEncoder) submit() error {
	cmd, err := e.enc.Finish(nil)
	if err != nil {
		return err
	}
	e.queue.Submit(cmd)
	cmd.Release()
	return nil
}

func (e *wgpuEncoder) release() { e.enc.Release() }
