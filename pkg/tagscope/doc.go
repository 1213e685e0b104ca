// Package tagscope provides request-scoped cache tag collection.
//
// Rendering code that produces cacheable content registers the cache tags
// the content belongs to, without threading a tag list through every call:
// the tag set rides on the request's context.Context. A middleware (or any
// request entry point) establishes the scope, the call tree registers tags,
// and the entry point reads the accumulated set when the work completes.
//
//	tags, err := tagscope.Run(r.Context(), func(ctx context.Context) error {
//		return render(ctx, w) // calls tagscope.Add(ctx, "post-42") somewhere inside
//	})
//
// Each Run gets its own set, so concurrent requests never observe each
// other's tags, and suspending on I/O inside the scope cannot leak the
// binding to unrelated work — isolation comes from context propagation, not
// from any process-wide state.
package tagscope
