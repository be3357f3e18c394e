package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Layout hooks
	l := NoopLayoutHooks{}
	l.OnMeasureStart(ctx, 10)
	l.OnMeasureComplete(ctx, 4, time.Millisecond, nil)
	l.OnScroll(ctx, 120, 900)

	// Realize hooks
	r := NoopRealizeHooks{}
	r.OnRealize(ctx, 3, true)
	r.OnVirtualize(ctx, 3)

	// Source hooks
	s := NoopSourceHooks{}
	s.OnFetch(ctx, "memory", 0, 50, time.Millisecond)
	s.OnFetchError(ctx, "redis", 50, errors.New("boom"))

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "page")
	c.OnCacheMiss(ctx, "page")
	c.OnCacheSet(ctx, "page", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Layout() should return NoopLayoutHooks by default")
	}
	if _, ok := Realize().(NoopRealizeHooks); !ok {
		t.Error("Realize() should return NoopRealizeHooks by default")
	}
	if _, ok := Source().(NoopSourceHooks); !ok {
		t.Error("Source() should return NoopSourceHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	customLayout := &testLayoutHooks{}
	SetLayoutHooks(customLayout)
	if Layout() != customLayout {
		t.Error("SetLayoutHooks should set custom hooks")
	}

	customRealize := &testRealizeHooks{}
	SetRealizeHooks(customRealize)
	if Realize() != customRealize {
		t.Error("SetRealizeHooks should set custom hooks")
	}

	customSource := &testSourceHooks{}
	SetSourceHooks(customSource)
	if Source() != customSource {
		t.Error("SetSourceHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Reset() should restore NoopLayoutHooks")
	}
	if _, ok := Source().(NoopSourceHooks); !ok {
		t.Error("Reset() should restore NoopSourceHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testRealizeHooks{}
	SetRealizeHooks(custom)

	// Setting nil should be ignored
	SetRealizeHooks(nil)

	if Realize() != custom {
		t.Error("SetRealizeHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testLayoutHooks struct{ NoopLayoutHooks }
type testRealizeHooks struct{ NoopRealizeHooks }
type testSourceHooks struct{ NoopSourceHooks }
type testCacheHooks struct{ NoopCacheHooks }
