// Package observability provides hooks for metrics, tracing, and logging.
//
// The engine packages never depend on a metrics backend. Instead they emit
// events through small hook interfaces that a host registers once at
// startup. Every hook has a no-op default, so an unconfigured process pays
// only for an interface call.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    observability.SetRealizeHooks(&myRealizeHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Layout().OnMeasureStart(ctx, containers)
//	// ... fill the viewport ...
//	observability.Layout().OnMeasureComplete(ctx, realized, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from the scroll/layout engine.
type LayoutHooks interface {
	// OnMeasureStart is called before a measure pass over containers.
	OnMeasureStart(ctx context.Context, containers int)

	// OnMeasureComplete is called after a measure pass with the size of the
	// realized window it produced.
	OnMeasureComplete(ctx context.Context, realized int, duration time.Duration, err error)

	// OnScroll records a new main-axis scroll offset.
	OnScroll(ctx context.Context, offset, extent float64)
}

// =============================================================================
// Realize Hooks
// =============================================================================

// RealizeHooks receives container lifecycle events from the realization
// manager.
type RealizeHooks interface {
	// OnRealize records a container bound to ordinal. pooled reports whether
	// the view was recycled rather than allocated.
	OnRealize(ctx context.Context, ordinal int, pooled bool)

	// OnVirtualize records a container returned to the pool.
	OnVirtualize(ctx context.Context, ordinal int)
}

// =============================================================================
// Source Hooks
// =============================================================================

// SourceHooks receives events from row sources.
type SourceHooks interface {
	// OnFetch records a successful row or page fetch.
	OnFetch(ctx context.Context, source string, index, count int, duration time.Duration)

	// OnFetchError records a failed fetch.
	OnFetchError(ctx context.Context, source string, index int, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnMeasureStart(context.Context, int)                          {}
func (NoopLayoutHooks) OnMeasureComplete(context.Context, int, time.Duration, error) {}
func (NoopLayoutHooks) OnScroll(context.Context, float64, float64)                   {}

// NoopRealizeHooks is a no-op implementation of RealizeHooks.
type NoopRealizeHooks struct{}

func (NoopRealizeHooks) OnRealize(context.Context, int, bool) {}
func (NoopRealizeHooks) OnVirtualize(context.Context, int)    {}

// NoopSourceHooks is a no-op implementation of SourceHooks.
type NoopSourceHooks struct{}

func (NoopSourceHooks) OnFetch(context.Context, string, int, int, time.Duration) {}
func (NoopSourceHooks) OnFetchError(context.Context, string, int, error)         {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	layoutHooks  LayoutHooks  = NoopLayoutHooks{}
	realizeHooks RealizeHooks = NoopRealizeHooks{}
	sourceHooks  SourceHooks  = NoopSourceHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	hooksMu      sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks.
// This should be called once at application startup before any engine is built.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetRealizeHooks registers custom realization hooks.
func SetRealizeHooks(h RealizeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		realizeHooks = h
	}
}

// SetSourceHooks registers custom row source hooks.
func SetSourceHooks(h SourceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sourceHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Realize returns the registered realization hooks.
func Realize() RealizeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return realizeHooks
}

// Source returns the registered row source hooks.
func Source() SourceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sourceHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	layoutHooks = NoopLayoutHooks{}
	realizeHooks = NoopRealizeHooks{}
	sourceHooks = NoopSourceHooks{}
	cacheHooks = NoopCacheHooks{}
}
