// Package trace records spans of a generation run: the whole run, each
// stage and each container.
//
// Enable tracing via command-line flags:
//
//	bindsadapter gen --trace=- --trace-level=stage ./...
//
// Tracers are propagated through the pipeline via context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeStage, "scan", parentID)
//	defer span.End("")
//
// Every tracer carries a session id (a random UUID) that is stamped on each
// event, so traces from concurrent runs appended to one file stay separable.
package trace
