// Package trace records structured events from the leo tools and the
// interpreter: spans for file loads and runs, points for handler calls and
// returns, error events, and periodic heartbeats.
//
// The CLI builds a tracer from its flags or from the [trace] section of
// leo.toml:
//
//	leo run --trace=- --trace-level=detail prog.leoasm
//	leo run --trace=run.ndjson --trace-mode=ring prog.leoasm
//
// A StreamTracer writes events as they happen. A RingTracer keeps the last
// events and writes them when closed, which is what a crash report needs.
// MultiTracer combines both.
//
// Levels pick the finest scope that is recorded: LevelPhase records driver
// and run spans, LevelDetail adds handler calls, LevelDebug adds every
// instruction. LevelError records only error events.
//
// Tracers travel in a context.Context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "load", trace.CurrentSpan(ctx).SpanID)
//	defer span.End("")
package trace
