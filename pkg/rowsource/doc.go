// Package rowsource adapts remote row stores to [rows.Source].
//
// A [Backend] answers four questions about a store: how many top-level
// rows it has, which rows sit in a page, which rows are children of a row,
// and which changes happened. [Source] turns a Backend into a
// [rows.Hierarchical] and [rows.Writer]:
//
//   - reads are paged: the row at index i is served from the page that
//     contains it, and pages are kept in a [cache.Cache];
//   - transient failures wrapped with [Retryable] are retried under a
//     capped exponential [Backoff];
//   - change notifications from the backend drop the source's cached
//     pages and fan out to subscribers through a dispatcher.
//
// The layout engine is single-threaded. Backends watch for changes on
// their own goroutine, and a Source never notifies subscribers from it:
// changes queue until the host calls [Source.Deliver], or hosts with an
// event loop pass [WithDispatcher] to hand each notification to it:
//
//	src := rowsource.New(backend,
//		rowsource.WithCache(cache.NewMemoryCache(), time.Minute),
//		rowsource.WithDispatcher(func(fn func()) { program.Send(runMsg(fn)) }),
//	)
//
// Implementations live in the redis and mongo subpackages.
package rowsource
