package frame

import "github.com/cogentcore/webgpu/wgpu"

// DefaultMargin is the logical width subtracted from the viewport when
// wrapping text.
const DefaultMargin = 20

// Option configures a Renderer during creation.
type Option func(*config)

type config struct {
	margin      float32
	scale       float32
	presentMode *wgpu.PresentMode
	selection   SelectionStrategy
}

func newConfig(opts []Option) config {
	cfg := config{
		margin: DefaultMargin,
		scale:  1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.scale <= 0 {
		cfg.scale = 1
	}
	return cfg
}

// WithMargin sets the logical margin used for text wrapping.
func WithMargin(margin float32) Option {
	return func(c *config) { c.margin = margin }
}

// WithScaleFactor sets the initial display scale factor. Later resizes
// carry their own scale.
func WithScaleFactor(scale float32) Option {
	return func(c *config) { c.scale = scale }
}

// WithPresentMode overrides the automatically selected present mode.
func WithPresentMode(mode wgpu.PresentMode) Option {
	return func(c *config) { c.presentMode = &mode }
}

// WithSelectionStrategy replaces the image pass's per-frame pool entry
// selection policy.
func WithSelectionStrategy(s SelectionStrategy) Option {
	return func(c *config) { c.selection = s }
}
