package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/gridview/pkg/rows"
	"github.com/matzehuels/gridview/pkg/rowsource"
	"github.com/matzehuels/gridview/pkg/rowsource/mongo"
	"github.com/matzehuels/gridview/pkg/rowsource/redis"
)

// GenerateRows returns n generated row value maps.
func GenerateRows(n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{
			DefaultField: fmt.Sprintf("row %d", i),
			"index":      i,
		}
	}
	return out
}

// OpenSource opens the row source sc declares. The returned function
// releases it.
func (r *Runner) OpenSource(ctx context.Context, sc SourceConfig) (rows.Source, func(), error) {
	switch sc.Kind {
	case SourceRedis:
		b, err := redis.Open(ctx, sc.URL, sc.Key)
		if err != nil {
			return nil, nil, err
		}
		if sc.Seed {
			if err := seedRedis(ctx, b, sc); err != nil {
				_ = b.Close()
				return nil, nil, err
			}
		}
		src := r.wrap(b, sc)
		return src, func() {
			src.Close()
			_ = b.Close()
		}, nil

	case SourceMongo:
		b, client, err := mongo.Open(ctx, sc.URL, sc.Database, sc.Collection)
		if err != nil {
			return nil, nil, err
		}
		if sc.Seed {
			if err := b.Seed(ctx, GenerateRows(sc.Rows)); err != nil {
				_ = client.Disconnect(ctx)
				return nil, nil, err
			}
		}
		src := r.wrap(b, sc)
		return src, func() {
			src.Close()
			_ = client.Disconnect(context.Background())
		}, nil

	default:
		src := rows.NewMemorySource(GenerateRows(sc.Rows)...)
		if sc.Children > 0 {
			for i := range sc.Rows {
				parent, err := src.Row(ctx, i)
				if err != nil {
					return nil, nil, err
				}
				for j := range sc.Children {
					if _, err := src.AddChild(parent.ID, map[string]any{
						DefaultField: fmt.Sprintf("row %d.%d", i, j),
					}); err != nil {
						return nil, nil, err
					}
				}
			}
		}
		return src, func() {}, nil
	}
}

func (r *Runner) wrap(b rowsource.Backend, sc SourceConfig) *rowsource.Source {
	opts := []rowsource.Option{
		rowsource.WithCache(r.Cache, sc.TTL()),
		rowsource.WithKeyer(r.Keyer),
		rowsource.WithPageSize(sc.PageSize),
		rowsource.WithLogger(r.Logger),
	}
	if r.Dispatch != nil {
		opts = append(opts, rowsource.WithDispatcher(r.Dispatch))
	}
	return rowsource.New(b, opts...)
}

func seedRedis(ctx context.Context, b *redis.Backend, sc SourceConfig) error {
	if err := b.Reset(ctx, GenerateRows(sc.Rows)); err != nil {
		return err
	}
	if sc.Children == 0 {
		return nil
	}
	page, err := b.Page(ctx, 0, sc.Rows)
	if err != nil {
		return err
	}
	for i, parent := range page {
		for j := range sc.Children {
			if _, err := b.Append(ctx, parent.ID, map[string]any{
				DefaultField: fmt.Sprintf("row %d.%d", i, j),
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
