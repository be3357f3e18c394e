package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	buf := []byte("page")
	if err := c.Set(ctx, "a", buf, time.Minute); err != nil {
		t.Fatal(err)
	}
	buf[0] = 'X'
	if err := c.Set(ctx, "b", []byte("forever"), 0); err != nil {
		t.Fatal(err)
	}

	got, hit, _ := c.Get(ctx, "a")
	if !hit || string(got) != "page" {
		t.Fatalf("Get(a) = %q,%t, want page,true", got, hit)
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("expired entry returned")
	}
	if _, hit, _ := c.Get(ctx, "b"); !hit {
		t.Error("entry without ttl expired")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestMemoryCacheDeletePrefix(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	k := NewDefaultKeyer()
	_ = c.Set(ctx, k.CountKey("orders"), []byte("3"), 0)
	_ = c.Set(ctx, k.PageKey("orders", 0, 10), []byte("[]"), 0)
	_ = c.Set(ctx, k.PageKey("users", 0, 10), []byte("[]"), 0)

	if n := c.DeletePrefix(ctx, k.Prefix("orders")); n != 2 {
		t.Errorf("DeletePrefix() = %d, want 2", n)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestHashKey(t *testing.T) {
	a := hashKey("rows:orders:page", 0, 50)
	if a != hashKey("rows:orders:page", 0, 50) {
		t.Error("hashKey should be deterministic")
	}
	if a == hashKey("rows:orders:page", 50, 0) {
		t.Error("argument order should change the key")
	}
	const prefix = "rows:orders:page:"
	if !strings.HasPrefix(a, prefix) || len(a) != len(prefix)+64 {
		t.Errorf("hashKey() = %q, want %s<sha256 hex>", a, prefix)
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.CountKey("orders"); got != "rows:orders:count" {
		t.Errorf("CountKey unexpected: %s", got)
	}
	p1 := k.PageKey("orders", 0, 50)
	p2 := k.PageKey("orders", 50, 50)
	if p1 == p2 {
		t.Error("Different offsets should produce different keys")
	}
	for _, key := range []string{p1, k.ChildrenKey("orders", "r1")} {
		if !strings.HasPrefix(key, k.Prefix("orders")) {
			t.Errorf("%s is missing the source prefix", key)
		}
	}
}

func TestScopedKeyer(t *testing.T) {
	tests := []struct {
		name  string
		inner Keyer
	}{
		{"default inner", NewDefaultKeyer()},
		{"nil inner", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scoped := NewScopedKeyer(tt.inner, "pane:1:")
			if got := scoped.CountKey("orders"); got != "pane:1:rows:orders:count" {
				t.Errorf("CountKey unexpected: %s", got)
			}
			if got := scoped.PageKey("orders", 0, 10); !strings.HasPrefix(got, scoped.Prefix("orders")) {
				t.Errorf("PageKey should carry the scoped prefix: %s", got)
			}
		})
	}
}
