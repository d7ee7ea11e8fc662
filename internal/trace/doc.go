// Package trace records what the bundler does while it builds.
//
// Tracing is the only logging layer: stages open spans, per-module work
// opens nested spans, and the CLI chooses where events go.
//
//	bundler build --trace=- --trace-level=detail
//	bundler build --trace=build.ndjson --trace-level=debug
//
// Implementations:
//
//   - Nop: disabled tracing
//   - StreamTracer: writes each event immediately (text or NDJSON)
//   - RingTracer: keeps the last N events for dumping after a failure
//   - MultiTracer: fan-out
//
// Levels select scopes: phase shows the build and its stages, detail adds one
// span per module, debug adds per-node events such as single replacements.
//
// Tracers travel through context.Context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeModule, "module")
//	defer span.End("")
package trace
