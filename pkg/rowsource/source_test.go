package rowsource

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/gridview/pkg/cache"
	"github.com/matzehuels/gridview/pkg/errors"
	"github.com/matzehuels/gridview/pkg/rows"
)

type fakeBackend struct {
	mu       sync.Mutex
	rows     []rows.Row
	children map[string][]rows.Row
	pages    int
	counts   int
	flaky    int // transient failures left
	changes  chan rows.Change
}

func newFakeBackend(n int) *fakeBackend {
	b := &fakeBackend{children: make(map[string][]rows.Row), changes: make(chan rows.Change)}
	for i := range n {
		b.rows = append(b.rows, rows.Row{ID: fmt.Sprintf("r%d", i), Values: map[string]any{"name": fmt.Sprintf("row %d", i)}})
	}
	return b
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Count(context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counts++
	return len(b.rows), nil
}

func (b *fakeBackend) Page(_ context.Context, offset, limit int) ([]rows.Row, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.flaky > 0 {
		b.flaky--
		return nil, Retryable(stderrors.New("connection reset"))
	}
	b.pages++
	end := min(offset+limit, len(b.rows))
	if offset >= end {
		return nil, nil
	}
	return append([]rows.Row(nil), b.rows[offset:end]...), nil
}

func (b *fakeBackend) Children(_ context.Context, id string) ([]rows.Row, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.children[id], nil
}

func (b *fakeBackend) Update(_ context.Context, id string, values map[string]any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.rows {
		if b.rows[i].ID == id {
			b.rows[i].Values = values
			return nil
		}
	}
	return stderrors.New("no such row")
}

func (b *fakeBackend) Watch(ctx context.Context, fn func(rows.Change)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ch := <-b.changes:
			fn(ch)
		}
	}
}

func TestSourcePaging(t *testing.T) {
	ctx := context.Background()
	b := newFakeBackend(10)
	s := New(b, WithPageSize(4), WithCache(cache.NewMemoryCache(), 0))
	defer s.Close()

	n, err := s.Len(ctx)
	if err != nil || n != 10 {
		t.Fatalf("Len() = %d,%v, want 10", n, err)
	}
	for _, i := range []int{0, 3, 1, 5, 9, 8} {
		r, err := s.Row(ctx, i)
		if err != nil {
			t.Fatalf("Row(%d) error = %v", i, err)
		}
		if want := fmt.Sprintf("r%d", i); r.ID != want {
			t.Errorf("Row(%d).ID = %s, want %s", i, r.ID, want)
		}
	}
	if b.pages != 3 {
		t.Errorf("backend pages = %d, want 3", b.pages)
	}
	if _, err := s.Len(ctx); err != nil || b.counts != 1 {
		t.Errorf("count not served from cache: %d backend calls", b.counts)
	}
	if _, err := s.Row(ctx, 10); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Row(10) error = %v, want NOT_FOUND", err)
	}
}

func TestSourceWithoutCacheRefetches(t *testing.T) {
	ctx := context.Background()
	b := newFakeBackend(4)
	s := New(b, WithPageSize(4))
	defer s.Close()

	for range 3 {
		if _, err := s.Row(ctx, 2); err != nil {
			t.Fatal(err)
		}
	}
	if b.pages != 3 {
		t.Errorf("backend pages = %d, want 3", b.pages)
	}
}

func TestSourceRetriesTransientErrors(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		flaky    int
		attempts int
		wantErr  bool
	}{
		{"recovers", 2, 3, false},
		{"gives up", 3, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend(4)
			b.flaky = tt.flaky
			s := New(b, WithRetry(tt.attempts, time.Millisecond))
			defer s.Close()

			_, err := s.Row(ctx, 1)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Row() error = %v, wantErr %t", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, errors.ErrCodeRowSource) {
				t.Errorf("error = %v, want ROW_SOURCE", err)
			}
		})
	}
}

// waitPending waits until s has queued n changes.
func waitPending(t *testing.T, s *Source, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for s.Pending() < n {
		if time.Now().After(deadline) {
			t.Fatalf("Pending() = %d, want %d", s.Pending(), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSourceChangesDropCacheAndQueue(t *testing.T) {
	ctx := context.Background()
	b := newFakeBackend(4)
	s := New(b, WithCache(cache.NewMemoryCache(), 0))
	defer s.Close()

	if _, err := s.Row(ctx, 0); err != nil {
		t.Fatal(err)
	}

	var got []rows.Change
	unsubscribe := s.Subscribe(func(ch rows.Change) { got = append(got, ch) })
	defer unsubscribe()

	want := []rows.Change{{Kind: rows.Inserted, Index: 2}, {Kind: rows.Removed, Index: 0}}
	for _, ch := range want {
		b.changes <- ch
	}
	waitPending(t, s, len(want))
	if len(got) != 0 {
		t.Fatalf("changes delivered on the watching goroutine: %v", got)
	}

	if n := s.Deliver(); n != len(want) {
		t.Errorf("Deliver() = %d, want %d", n, len(want))
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("delivered changes (-want +got):\n%s", diff)
	}
	if s.Pending() != 0 || s.Deliver() != 0 {
		t.Error("queue not drained")
	}

	if _, err := s.Row(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if b.pages != 2 {
		t.Errorf("backend pages = %d, want 2 after invalidation", b.pages)
	}
}

func TestManagerSeesChangesOnlyWhenDelivered(t *testing.T) {
	ctx := context.Background()
	b := newFakeBackend(3)
	s := New(b)
	defer s.Close()

	m, err := rows.NewManager(s)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()
	if err := m.Load(ctx); err != nil {
		t.Fatal(err)
	}

	b.mu.Lock()
	b.rows = b.rows[1:]
	b.mu.Unlock()
	b.changes <- rows.Change{Kind: rows.Removed, Index: 0}
	waitPending(t, s, 1)
	if m.Len() != 3 {
		t.Fatalf("Len() = %d before delivery, want 3", m.Len())
	}

	s.Deliver()
	if m.Len() != 2 {
		t.Errorf("Len() = %d after delivery, want 2", m.Len())
	}
}

func TestSourceDispatcher(t *testing.T) {
	b := newFakeBackend(1)
	queued := make(chan func(), 1)
	s := New(b, WithDispatcher(func(fn func()) { queued <- fn }))
	defer s.Close()

	var delivered []rows.Change
	unsubscribe := s.Subscribe(func(ch rows.Change) { delivered = append(delivered, ch) })
	defer unsubscribe()

	b.changes <- rows.Change{Kind: rows.Reset}
	fn := <-queued
	if len(delivered) != 0 {
		t.Fatal("change delivered before the dispatcher ran it")
	}
	fn()
	if len(delivered) != 1 || delivered[0].Kind != rows.Reset {
		t.Errorf("delivered = %v", delivered)
	}
}

func TestSourceUpdate(t *testing.T) {
	ctx := context.Background()
	b := newFakeBackend(2)
	s := New(b, WithCache(cache.NewMemoryCache(), 0))
	defer s.Close()

	if _, err := s.Row(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(ctx, "r1", map[string]any{"name": "renamed"}); err != nil {
		t.Fatal(err)
	}
	r, err := s.Row(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if r.Value("name") != "renamed" {
		t.Errorf("Value(name) = %v, want renamed", r.Value("name"))
	}
	if err := s.Update(ctx, "missing", nil); !errors.Is(err, errors.ErrCodeRowSource) {
		t.Errorf("Update(missing) error = %v, want ROW_SOURCE", err)
	}
}

func TestManagerOverSource(t *testing.T) {
	ctx := context.Background()
	b := newFakeBackend(3)
	b.children["r0"] = []rows.Row{{ID: "c0"}, {ID: "c1"}}
	s := New(b)
	defer s.Close()

	m, err := rows.NewManager(s, rows.WithRecursive(true))
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()
	if err := m.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if err := m.Expand(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 5 {
		t.Errorf("Len() = %d, want 5", m.Len())
	}
}

func TestBackoffDo(t *testing.T) {
	boom := stderrors.New("boom")
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name      string
		ctx       context.Context
		backoff   Backoff
		fail      int // leading failures
		retryable bool
		wantCalls int
		wantErr   error
	}{
		{"success", context.Background(), Backoff{Attempts: 3}, 0, true, 1, nil},
		{"recovers", context.Background(), Backoff{Attempts: 3, Delay: time.Millisecond}, 2, true, 3, nil},
		{"exhausted", context.Background(), Backoff{Attempts: 2, Delay: time.Millisecond}, 5, true, 2, boom},
		{"not retryable", context.Background(), Backoff{Attempts: 3}, 5, false, 1, boom},
		{"zero attempts", context.Background(), Backoff{}, 5, true, 1, boom},
		{"canceled", canceled, Backoff{Attempts: 3, Delay: time.Hour}, 5, true, 1, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := tt.backoff.Do(tt.ctx, func() error {
				calls++
				if calls > tt.fail {
					return nil
				}
				if tt.retryable {
					return Retryable(boom)
				}
				return boom
			})
			if !stderrors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Errorf("Do() error = %v, want %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	if !IsRetryable(fmt.Errorf("wrapped: %w", Retryable(stderrors.New("reset")))) {
		t.Error("IsRetryable should see through wrapping")
	}
}
