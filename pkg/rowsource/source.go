package rowsource

import (
	"context"
	"encoding/json"
	"io"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridview/pkg/cache"
	"github.com/matzehuels/gridview/pkg/errors"
	"github.com/matzehuels/gridview/pkg/observability"
	"github.com/matzehuels/gridview/pkg/rows"
)

// Backend is a remote row store. Transient errors should be wrapped with
// [Retryable].
type Backend interface {
	// Name identifies the store in cache keys and logs.
	Name() string

	// Count returns the number of top-level rows.
	Count(ctx context.Context) (int, error)

	// Page returns the top-level rows [offset, offset+limit), fewer at the
	// end of the store.
	Page(ctx context.Context, offset, limit int) ([]rows.Row, error)

	// Children returns the direct children of the row with the given ID.
	Children(ctx context.Context, id string) ([]rows.Row, error)

	// Update replaces the values of the row with the given ID.
	Update(ctx context.Context, id string, values map[string]any) error

	// Watch delivers changes to fn until ctx ends. It returns nil when
	// ctx ends and an error when watching cannot continue.
	Watch(ctx context.Context, fn func(rows.Change)) error
}

const (
	defaultPageSize = 64
	defaultAttempts = 3
	defaultDelay    = 200 * time.Millisecond
	defaultMaxDelay = 2 * time.Second
)

// Source is a paged, cached rows.Source over a Backend.
type Source struct {
	backend  Backend
	cache    cache.Cache
	keyer    cache.Keyer
	ttl      time.Duration
	pageSize int
	backoff  Backoff
	dispatch func(func())
	logger   *log.Logger

	mu      sync.Mutex
	keys    map[string]struct{}
	subs    map[int]func(rows.Change)
	nextSub int
	pending []rows.Change
	stop    context.CancelFunc
	done    chan struct{}
}

// Option configures a Source.
type Option func(*Source)

// WithCache stores fetched pages in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Source) { s.cache, s.ttl = c, ttl }
}

// WithKeyer sets the cache key scheme. The default is cache.DefaultKeyer.
func WithKeyer(k cache.Keyer) Option {
	return func(s *Source) { s.keyer = k }
}

// WithPageSize sets how many rows one backend read fetches.
func WithPageSize(n int) Option {
	return func(s *Source) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithRetry sets the attempt count and initial backoff of backend reads.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(s *Source) {
		s.backoff.Attempts, s.backoff.Delay = attempts, delay
	}
}

// WithDispatcher hands each change notification to dispatch, which must
// run it on the host's event loop. Without a dispatcher notifications are
// queued until the host calls [Source.Deliver].
func WithDispatcher(dispatch func(func())) Option {
	return func(s *Source) { s.dispatch = dispatch }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Source) { s.logger = l }
}

// New creates a Source over b.
func New(b Backend, opts ...Option) *Source {
	s := &Source{
		backend:  b,
		cache:    cache.NewNullCache(),
		keyer:    cache.NewDefaultKeyer(),
		pageSize: defaultPageSize,
		backoff:  Backoff{Attempts: defaultAttempts, Delay: defaultDelay, MaxDelay: defaultMaxDelay},
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		keys:     make(map[string]struct{}),
		subs:     make(map[int]func(rows.Change)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend returns the wrapped backend.
func (s *Source) Backend() Backend { return s.backend }

// Len implements rows.Source.
func (s *Source) Len(ctx context.Context) (int, error) {
	var n int
	err := s.cached(ctx, s.keyer.CountKey(s.backend.Name()), -1, &n, func() (any, int, error) {
		n, err := s.backend.Count(ctx)
		return n, 1, err
	})
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeRowSource, err, "%s: count rows", s.backend.Name())
	}
	return n, nil
}

// Row implements rows.Source. It fetches the whole page containing i.
func (s *Source) Row(ctx context.Context, i int) (rows.Row, error) {
	if i < 0 {
		return rows.Row{}, errors.New(errors.ErrCodeNotFound, "%s: row %d", s.backend.Name(), i)
	}
	offset := i / s.pageSize * s.pageSize
	var page []rows.Row
	key := s.keyer.PageKey(s.backend.Name(), offset, s.pageSize)
	err := s.cached(ctx, key, offset, &page, func() (any, int, error) {
		p, err := s.backend.Page(ctx, offset, s.pageSize)
		return p, len(p), err
	})
	if err != nil {
		return rows.Row{}, errors.Wrap(errors.ErrCodeRowSource, err, "%s: read row %d", s.backend.Name(), i)
	}
	if i-offset >= len(page) {
		return rows.Row{}, errors.New(errors.ErrCodeNotFound, "%s: row %d past end", s.backend.Name(), i)
	}
	return page[i-offset], nil
}

// Children implements rows.Hierarchical.
func (s *Source) Children(ctx context.Context, id string) ([]rows.Row, error) {
	var children []rows.Row
	key := s.keyer.ChildrenKey(s.backend.Name(), id)
	err := s.cached(ctx, key, -1, &children, func() (any, int, error) {
		c, err := s.backend.Children(ctx, id)
		return c, len(c), err
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRowSource, err, "%s: children of %s", s.backend.Name(), id)
	}
	return children, nil
}

// Update implements rows.Writer. Cached pages are dropped on success.
func (s *Source) Update(ctx context.Context, id string, values map[string]any) error {
	err := s.backoff.Do(ctx, func() error {
		return s.backend.Update(ctx, id, values)
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeRowSource, err, "%s: update %s", s.backend.Name(), id)
	}
	s.invalidate(ctx)
	return nil
}

// cached decodes the entry for key into out, or runs fetch with retries,
// stores its result and decodes that. Misses are decoded from the encoded
// form too, so values look the same whether or not they were cached. index is reported to the source
// hooks; -1 for reads that are not pages.
func (s *Source) cached(ctx context.Context, key string, index int, out any, fetch func() (any, int, error)) error {
	name := s.backend.Name()
	data, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed", "key", key, "err", err)
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, key)
		return json.Unmarshal(data, out)
	}
	observability.Cache().OnCacheMiss(ctx, key)

	start := time.Now()
	var (
		v     any
		count int
	)
	err = s.backoff.Do(ctx, func() error {
		var err error
		v, count, err = fetch()
		return err
	})
	if err != nil {
		observability.Source().OnFetchError(ctx, name, index, err)
		return err
	}
	observability.Source().OnFetch(ctx, name, index, count, time.Since(start))

	if data, err = json.Marshal(v); err != nil {
		return err
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("cache write failed", "key", key, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, key, len(data))
		s.mu.Lock()
		s.keys[key] = struct{}{}
		s.mu.Unlock()
	}
	return json.Unmarshal(data, out)
}

// invalidate drops every entry this source wrote to the cache.
func (s *Source) invalidate(ctx context.Context) {
	s.mu.Lock()
	keys := slices.Collect(maps.Keys(s.keys))
	clear(s.keys)
	s.mu.Unlock()
	for _, k := range keys {
		if err := s.cache.Delete(ctx, k); err != nil {
			s.logger.Warn("cache delete failed", "key", k, "err", err)
		}
	}
}

// Subscribe implements rows.Source. The first subscriber starts watching
// the backend; the last unsubscribe stops it.
func (s *Source) Subscribe(fn func(rows.Change)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	if s.stop == nil {
		s.startWatch()
	}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		var stop context.CancelFunc
		var done chan struct{}
		if len(s.subs) == 0 && s.stop != nil {
			stop, done = s.stop, s.done
			s.stop, s.done = nil, nil
		}
		s.mu.Unlock()
		if stop != nil {
			stop()
			<-done
		}
	}
}

// startWatch runs the backend watch loop. Callers hold mu.
func (s *Source) startWatch() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.stop, s.done = cancel, done
	go func() {
		defer close(done)
		err := s.backend.Watch(ctx, func(ch rows.Change) {
			s.invalidate(ctx)
			if s.dispatch != nil {
				s.dispatch(func() { s.notify(ch) })
				return
			}
			s.mu.Lock()
			s.pending = append(s.pending, ch)
			s.mu.Unlock()
		})
		if err != nil && ctx.Err() == nil {
			s.logger.Error("row source watch stopped", "source", s.backend.Name(), "err", err)
		}
	}()
}

// Pending returns the number of queued change notifications.
func (s *Source) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Deliver notifies subscribers of the queued changes, in arrival order, on
// the calling goroutine and returns how many it delivered.
func (s *Source) Deliver() int {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, ch := range batch {
		s.notify(ch)
	}
	return len(batch)
}

func (s *Source) notify(ch rows.Change) {
	s.mu.Lock()
	ids := slices.Sorted(maps.Keys(s.subs))
	fns := make([]func(rows.Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.mu.Unlock()
	s.logger.Debug("row source change", "source", s.backend.Name(), "kind", ch.Kind, "index", ch.Index)
	for _, fn := range fns {
		fn(ch)
	}
}

// Close stops watching the backend and drops cached pages.
func (s *Source) Close() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	clear(s.subs)
	s.pending = nil
	s.mu.Unlock()
	if stop != nil {
		stop()
		<-done
	}
	s.invalidate(context.Background())
}

var (
	_ rows.Hierarchical = (*Source)(nil)
	_ rows.Writer       = (*Source)(nil)
)
