package cache

// ScopedKeyer wraps a Keyer with a prefix so that several engines can share
// one cache without seeing each other's pages:
//
//	left := NewScopedKeyer(NewDefaultKeyer(), "pane:left:")
//	right := NewScopedKeyer(NewDefaultKeyer(), "pane:right:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key. A nil
// inner keyer uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) Prefix(source string) string { return k.prefix + k.inner.Prefix(source) }

func (k *ScopedKeyer) CountKey(source string) string {
	return k.prefix + k.inner.CountKey(source)
}

func (k *ScopedKeyer) PageKey(source string, offset, limit int) string {
	return k.prefix + k.inner.PageKey(source, offset, limit)
}

func (k *ScopedKeyer) ChildrenKey(source, id string) string {
	return k.prefix + k.inner.ChildrenKey(source, id)
}
