package rows

import "context"

// Row is one record of a row source. ID is stable for the lifetime of the
// record and is the only handle the engine keeps into the source.
type Row struct {
	ID     string         `json:"id" bson:"_id"`
	Values map[string]any `json:"values" bson:"values"`
}

// Value returns the named value, or nil.
func (r Row) Value(key string) any {
	if r.Values == nil {
		return nil
	}
	return r.Values[key]
}

// ChangeKind identifies a row source notification.
type ChangeKind int

const (
	// Inserted reports a row inserted at Index.
	Inserted ChangeKind = iota
	// Removed reports the row at Index removed.
	Removed
	// Reset reports that the whole sequence must be reloaded.
	Reset
)

func (k ChangeKind) String() string {
	switch k {
	case Inserted:
		return "inserted"
	case Removed:
		return "removed"
	default:
		return "reset"
	}
}

// Change is a row source notification. Parent is empty for top-level rows
// and holds the parent row ID for a change inside a hierarchy.
type Change struct {
	Kind   ChangeKind
	Index  int
	Parent string
}

// Source is the ordered, optionally filtered and sorted, row collection the
// engine presents. Implementations own retries; the engine never retries a
// failed call.
type Source interface {
	// Len returns the number of top-level rows.
	Len(ctx context.Context) (int, error)

	// Row returns the top-level row at index i.
	Row(ctx context.Context, i int) (Row, error)

	// Subscribe registers fn for change notifications and returns a
	// function that cancels the subscription.
	Subscribe(fn func(Change)) (unsubscribe func())
}

// Hierarchical is implemented by sources of self-referencing rows.
type Hierarchical interface {
	Source

	// Children returns the direct children of the row with the given ID.
	Children(ctx context.Context, id string) ([]Row, error)
}

// Writer is implemented by sources that accept committed edits.
type Writer interface {
	Update(ctx context.Context, id string, values map[string]any) error
}
