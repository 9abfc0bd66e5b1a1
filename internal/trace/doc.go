// Package trace records what the checker and the CLI did while a run was in
// progress: commands and files (driver scope), the validation pass, and the
// functions and blocks it walked. Every event carries the Site it concerns,
// so a trace of a rejected file ends with the function and block of the
// violation. Tracing never changes a verdict.
//
//	minimir check --trace=- --trace-level=detail prog.mmir
//
// Spans travel in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeDriver, "check_file", trace.FileSite(path))
//	defer span.End("ok")
//
// Levels select scopes: phase keeps driver and pass events, detail adds
// functions, debug adds blocks.
package trace
