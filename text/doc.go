// Package text shapes, wraps, and lays out text buffers for the frame
// orchestrator's text pass.
//
// A [Store] maps opaque buffer identifiers to shaped [Buffer] values.
// Buffers are wrapped to a logical width constraint at creation time and
// re-wrapped and re-shaped whenever the constraint changes; shaping is
// never cached across a resize. Per frame, buffers stack top to bottom
// in insertion order; the vertical gap between buffers derives from each
// buffer's own line-height metric.
//
// Shaping uses go-text/typesetting's HarfBuzz implementation. Glyph masks
// for the GPU atlas are rasterized by glyph ID via x/image sfnt outlines,
// packed with a shelf allocator.
//
// This package is CPU-only: it never touches the GPU. The root frame
// package uploads the atlas and records the draw commands.
package text
