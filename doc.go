// Package frame is a real-time frame orchestrator for WebGPU surfaces.
//
// # Overview
//
// frame owns a GPU device, queue, and presentable surface, and composes
// independent sub-renderers into a single per-frame command stream: a
// background/image pass, a text pass, and an immediate-mode UI overlay.
// It enforces a strict begin/submit/present protocol per frame and
// degrades gracefully when a resource a pass depends on is missing: the
// affected pass is skipped and the rest of the frame still submits and
// presents.
//
// # Quick Start
//
//	// desc comes from your window library, e.g. wgpuglfw.GetSurfaceDescriptor.
//	r, err := frame.New(desc, width, height)
//	if err != nil {
//	    log.Fatal(err) // no compatible GPU: fatal at startup
//	}
//	defer r.Release()
//
//	r.AddText("hello from the text pass", 24, 1.4)
//	r.OnUI(func(ui *overlay.Context) {
//	    if ui.BeginWindow("Stats") {
//	        ui.Textf("frame %.2f ms", ui.IO().DeltaTime*1000)
//	        ui.EndWindow()
//	    }
//	})
//
//	// In your window loop:
//	//   resize  -> r.OnResize(w, h, scale)
//	//   redraw  -> r.OnRedraw()
//	//   input   -> r.HandleEvent(ev)
//
// # Architecture
//
// The library is organized into:
//   - Public API: Renderer, Context, Pool, PipelineRegistry
//   - text: shaping, wrapping, and glyph atlas bookkeeping (CPU side)
//   - overlay: immediate-mode UI context and draw lists (CPU side)
//   - internal/shelf: rectangle packing shared by both glyph atlases
//
// GPU recording for every pass lives in the root package; the text and
// overlay packages never import wgpu.
//
// # Frame Protocol
//
// Every frame follows acquire -> prepare -> record -> submit -> present on
// one thread, driven by the host window's redraw callback. A failed surface
// acquisition skips the frame (after one reconfigure-and-retry); the next
// redraw re-enters the cycle. Exactly one frame is in flight at a time.
package frame
