/*
Package overlay provides a small immediate-mode debug overlay that renders
on top of the frame as the final render pass.

The UI is rebuilt every frame: widgets are plain function calls on a
Context and return their interaction results directly, so there is no
widget tree to manage and no callbacks to wire.

	ctx := overlay.NewContext()
	...
	ctx.Begin(overlay.Vec2{X: 1920, Y: 1080}, dt)
	if ctx.BeginWindow("debug") {
		ctx.Text("frame time: 16.6ms")
		ctx.Separator()
		if ctx.Button("reset") {
			// clicked this frame
		}
		ctx.EndWindow()
	}
	data := ctx.End()

The resulting DrawData is a flat vertex/index stream against a single
baked font texture, which the host uploads and draws with load semantics
so earlier passes show through.

The package is CPU-only. Platform input arrives through ProcessEvent and
the mouse cursor the UI wants is reported through OnCursorChange, fired
only when the cursor actually changes.
*/
package overlay
