package frame

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Context owns the GPU instance, adapter, device, queue, and presentable
// surface, together with the current surface configuration. Everything
// else in the package borrows GPU access from it.
//
// A Context is created once at startup and torn down with Release. Its
// configuration dimensions stay > 0 for the whole usable lifetime: a
// degenerate resize never reaches the surface (see Reconfigure).
type Context struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	config   wgpu.SurfaceConfiguration
	released bool
}

// NewContext opens the GPU for the surface described by desc and
// configures it at the given pixel size. Failure to find a compatible
// adapter or to open a device is fatal: the caller cannot render and
// should abort startup.
func NewContext(desc *wgpu.SurfaceDescriptor, width, height uint32) (*Context, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("create context: degenerate initial size %dx%d", width, height)
	}

	c := &Context{instance: wgpu.CreateInstance(nil)}
	c.surface = c.instance.CreateSurface(desc)

	adapter, err := c.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: c.surface,
	})
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("request adapter: %w: %w", ErrNoAdapter, err)
	}
	c.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "frame device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	c.device = device
	c.queue = device.GetQueue()

	caps := c.surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 {
		c.Release()
		return nil, fmt.Errorf("request adapter: surface reports no formats: %w", ErrNoAdapter)
	}
	c.config = wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      pickFormat(caps.Formats),
		Width:       width,
		Height:      height,
		PresentMode: pickPresentMode(caps.PresentModes),
		AlphaMode:   caps.AlphaModes[0],
	}
	c.surface.Configure(c.adapter, c.device, &c.config)

	Logger().Info("graphics context ready",
		"format", c.config.Format,
		"present_mode", c.config.PresentMode,
		"width", width, "height", height)
	return c, nil
}

// pickFormat prefers 8-bit sRGB BGRA; adapters that cannot present it fall
// back to their own first (preferred) format.
func pickFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, f := range formats {
		if f == wgpu.TextureFormatBGRA8UnormSrgb {
			return f
		}
	}
	return formats[0]
}

// pickPresentMode prefers Mailbox, the lowest-latency non-tearing mode,
// falling back to the adapter's first supported mode (Fifo is always
// present per the WebGPU spec).
func pickPresentMode(modes []wgpu.PresentMode) wgpu.PresentMode {
	for _, m := range modes {
		if m == wgpu.PresentModeMailbox {
			return m
		}
	}
	if len(modes) == 0 {
		return wgpu.PresentModeFifo
	}
	return modes[0]
}

// Device returns the logical device handle.
func (c *Context) Device() *wgpu.Device { return c.device }

// Queue returns the command queue.
func (c *Context) Queue() *wgpu.Queue { return c.queue }

// Surface returns the presentable surface.
func (c *Context) Surface() *wgpu.Surface { return c.surface }

// Format returns the configured surface format.
func (c *Context) Format() wgpu.TextureFormat { return c.config.Format }

// Size returns the configured surface dimensions in pixels.
func (c *Context) Size() (width, height uint32) {
	return c.config.Width, c.config.Height
}

// Reconfigure resizes the surface. A zero dimension is a guarded no-op
// that leaves the previous configuration untouched, so minimized windows
// never produce an invalid surface.
func (c *Context) Reconfigure(width, height uint32) {
	if width == 0 || height == 0 {
		Logger().Debug("ignoring degenerate resize", "width", width, "height", height)
		return
	}
	c.config.Width = width
	c.config.Height = height
	c.surface.Configure(c.adapter, c.device, &c.config)
	Logger().Debug("surface reconfigured", "width", width, "height", height)
}

// SetPresentMode overrides the presentation mode and reapplies the
// configuration. Callers are responsible for picking a supported mode.
func (c *Context) SetPresentMode(m wgpu.PresentMode) {
	c.config.PresentMode = m
	c.reconfigureCurrent()
}

// reconfigureCurrent reapplies the stored configuration, used by the frame
// cycle to recover an outdated or lost surface.
func (c *Context) reconfigureCurrent() {
	c.surface.Configure(c.adapter, c.device, &c.config)
}

// Release tears the context down. Safe to call on a partially constructed
// context and more than once.
func (c *Context) Release() {
	if c.released {
		return
	}
	c.released = true
	if c.device != nil {
		c.device.Release()
		c.device = nil
	}
	if c.adapter != nil {
		c.adapter.Release()
		c.adapter = nil
	}
	if c.surface != nil {
		c.surface.Release()
		c.surface = nil
	}
	if c.instance != nil {
		c.instance.Release()
		c.instance = nil
	}
}
