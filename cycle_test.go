package frame

import (
	"errors"
	"testing"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
)

// fakeTarget simulates the surface seam without a GPU.
type fakeTarget struct {
	acquireErrs []error // consumed per acquire; nil means success
	acquires    int
	recovers    int
	encoders    int
	submits     int
	presents    int
	encoderErr  error
}

func (t *fakeTarget) acquire() (presentable, error) {
	var err error
	if t.acquires < len(t.acquireErrs) {
		err = t.acquireErrs[t.acquires]
	}
	t.acquires++
	if err != nil {
		return nil, err
	}
	return &fakeSurface{t: t}, nil
}

func (t *fakeTarget) recover() { t.recovers++ }

func (t *fakeTarget) newEncoder() (frameEncoder, error) {
	if t.encoderErr != nil {
		return nil, t.encoderErr
	}
	t.encoders++
	return &fakeEncoder{t: t}, nil
}

type fakeSurface struct {
	t        *fakeTarget
	released bool
}

func (s *fakeSurface) view() (frameView, error) { return fakeView{}, nil }
func (s *fakeSurface) present()                 { s.t.presents++ }
func (s *fakeSurface) release()                 { s.released = true }

type fakeView struct{}

func (fakeView) raw() *wgpu.TextureView { return nil }
func (fakeView) release()               {}

type fakeEncoder struct {
	t *fakeTarget
}

func (e *fakeEncoder) raw() *wgpu.CommandEncoder { return nil }
func (e *fakeEncoder) submit() error             { e.t.submits++; return nil }
func (e *fakeEncoder) release()                  {}

// TestFrameCycleBeginEnd tests that one healthy begin/end pair produces
// exactly one submission and one presentation.
func TestFrameCycleBeginEnd(t *testing.T) {
	target := &fakeTarget{}
	c := newFrameCycle(target)

	f, err := c.Begin()
	if err != nil || f == nil {
		t.Fatalf("Begin = (%v, %v), want frame", f, err)
	}
	if !c.Live() {
		t.Error("cycle not live after Begin")
	}
	if err := c.End(f); err != nil {
		t.Fatalf("End: %v", err)
	}
	if c.Live() {
		t.Error("cycle still live after End")
	}
	if target.submits != 1 || target.presents != 1 {
		t.Errorf("submits=%d presents=%d, want 1/1", target.submits, target.presents)
	}

	// Next pair works too.
	f2, err := c.Begin()
	if err != nil || f2 == nil {
		t.Fatalf("second Begin = (%v, %v)", f2, err)
	}
	c.End(f2)
	if target.submits != 2 || target.presents != 2 {
		t.Errorf("after second pair: submits=%d presents=%d, want 2/2", target.submits, target.presents)
	}
}

// TestFrameCycleTransientRetry tests the reconfigure-and-retry-once
// behavior on a stale surface.
func TestFrameCycleTransientRetry(t *testing.T) {
	outdated := errors.New("Surface is Outdated")

	t.Run("retry succeeds", func(t *testing.T) {
		target := &fakeTarget{acquireErrs: []error{outdated, nil}}
		c := newFrameCycle(target)
		f, err := c.Begin()
		if err != nil || f == nil {
			t.Fatalf("Begin = (%v, %v), want recovered frame", f, err)
		}
		if target.recovers != 1 || target.acquires != 2 {
			t.Errorf("recovers=%d acquires=%d, want 1/2", target.recovers, target.acquires)
		}
		c.End(f)
	})

	t.Run("retry fails, frame skipped", func(t *testing.T) {
		target := &fakeTarget{acquireErrs: []error{outdated, outdated}}
		c := newFrameCycle(target)
		f, err := c.Begin()
		if err != nil {
			t.Fatalf("Begin returned error %v, want skipped frame", err)
		}
		if f != nil {
			t.Fatal("Begin returned a frame from a dead surface")
		}
		if target.recovers != 1 {
			t.Errorf("recovers = %d, want exactly 1", target.recovers)
		}
		if target.acquires != 2 {
			t.Errorf("acquires = %d, want exactly 2 (no endless retry)", target.acquires)
		}
		if target.encoders != 0 {
			t.Errorf("encoders = %d, want 0 for a skipped frame", target.encoders)
		}
		if c.Live() {
			t.Error("cycle live after a skipped frame")
		}
	})

	t.Run("non-transient error skips without reconfigure", func(t *testing.T) {
		target := &fakeTarget{acquireErrs: []error{errors.New("out of memory")}}
		c := newFrameCycle(target)
		f, err := c.Begin()
		if err != nil || f != nil {
			t.Fatalf("Begin = (%v, %v), want skipped frame", f, err)
		}
		if target.recovers != 0 || target.acquires != 1 {
			t.Errorf("recovers=%d acquires=%d, want 0/1", target.recovers, target.acquires)
		}
	})
}

// TestFrameCycleProtocol tests the one-live-frame contract.
func TestFrameCycleProtocol(t *testing.T) {
	target := &fakeTarget{}
	c := newFrameCycle(target)

	f, _ := c.Begin()
	if _, err := c.Begin(); !errors.Is(err, ErrFrameLive) {
		t.Errorf("nested Begin error = %v, want ErrFrameLive", err)
	}
	if err := c.End(nil); !errors.Is(err, ErrFrameLive) {
		t.Errorf("End(nil) error = %v, want ErrFrameLive", err)
	}
	if err := c.End(f); err != nil {
		t.Fatalf("End: %v", err)
	}
	// Double End is rejected.
	if err := c.End(f); !errors.Is(err, ErrFrameLive) {
		t.Errorf("double End error = %v, want ErrFrameLive", err)
	}
}

// TestFrameCycleDelta tests per-frame delta time from an injected clock.
func TestFrameCycleDelta(t *testing.T) {
	target := &fakeTarget{}
	c := newFrameCycle(target)
	now := time.Unix(100, 0)
	c.now = func() time.Time { return now }

	f, _ := c.Begin()
	if f.Delta() != 0 {
		t.Errorf("first frame delta = %v, want 0", f.Delta())
	}
	c.End(f)

	now = now.Add(16 * time.Millisecond)
	f, _ = c.Begin()
	if got := f.Delta(); got < 0.0159 || got > 0.0161 {
		t.Errorf("delta = %v, want ~0.016", got)
	}
	c.End(f)
}

// TestFrameCycleEndHooks tests end-of-frame bookkeeping ordering.
func TestFrameCycleEndHooks(t *testing.T) {
	target := &fakeTarget{}
	c := newFrameCycle(target)

	var afterPresent bool
	c.onEnd(func() { afterPresent = target.presents == 1 })

	f, _ := c.Begin()
	c.End(f)
	if !afterPresent {
		t.Error("end hook did not run after present")
	}
}

// TestIsTransientAcquire tests acquisition error classification.
func TestIsTransientAcquire(t *testing.T) {
	tests := []struct {
		name string
		err  string
		want bool
	}{
		{"outdated", "Surface is Outdated", true},
		{"lost", "surface lost", true},
		{"timeout", "acquire Timeout", true},
		{"timed out", "surface timed out waiting", true},
		{"suboptimal", "Suboptimal present", true},
		{"oom", "out of memory", false},
		{"validation", "validation error", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTransientAcquire(errors.New(tt.err)); got != tt.want {
				t.Errorf("isTransientAcquire(%q) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
