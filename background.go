package frame

import (
	"math/rand"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// backgroundTransitionSeconds is how long one clear-color transition takes.
const backgroundTransitionSeconds = 3

// backgroundAnimator drifts the clear color of the image pass between
// random targets, one tween per channel. When a transition finishes the
// next random target is chosen, so the background shifts continuously.
type backgroundAnimator struct {
	current [3]float32
	tweens  [3]*gween.Tween
	rand    *rand.Rand
}

func newBackgroundAnimator(seed int64) *backgroundAnimator {
	b := &backgroundAnimator{
		current: [3]float32{0.1, 0.2, 0.3},
		rand:    rand.New(rand.NewSource(seed)),
	}
	b.retarget()
	return b
}

// retarget starts a new transition from the current color to a random one.
func (b *backgroundAnimator) retarget() {
	for i := range b.tweens {
		b.tweens[i] = gween.New(b.current[i], b.rand.Float32(), backgroundTransitionSeconds, ease.InOutQuad)
	}
}

// advance moves the animation by dt seconds and returns the clear color.
func (b *backgroundAnimator) advance(dt float32) wgpu.Color {
	done := false
	for i, tw := range b.tweens {
		v, finished := tw.Update(dt)
		b.current[i] = v
		done = done || finished
	}
	if done {
		b.retarget()
	}
	return wgpu.Color{
		R: float64(b.current[0]),
		G: float64(b.current[1]),
		B: float64(b.current[2]),
		A: 1,
	}
}
