// Package redis is a row source backend over Redis.
//
// Rows live under a base key:
//
//	<key>                   list of top-level row IDs, in order
//	<key>:children:<id>     list of child row IDs of <id>
//	<key>:row:<id>          JSON object with the row's values
//	<key>:changes           pub/sub channel of change messages
//
// Writers that go through [Backend] publish a message for every
// structural change; [Backend.Watch] turns those into row changes.
package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/matzehuels/gridview/pkg/errors"
	"github.com/matzehuels/gridview/pkg/rows"
	"github.com/matzehuels/gridview/pkg/rowsource"
)

// Backend implements rowsource.Backend.
type Backend struct {
	client goredis.UniversalClient
	key    string
}

// New creates a backend reading rows under key.
func New(client goredis.UniversalClient, key string) *Backend {
	return &Backend{client: client, key: key}
}

// Open connects to the Redis server at url (redis://host:port/db) and
// checks the connection.
func Open(ctx context.Context, url, key string) (*Backend, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse redis url")
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to %s", opts.Addr)
	}
	return New(client, key), nil
}

// Close closes the client.
func (b *Backend) Close() error { return b.client.Close() }

func (b *Backend) Name() string { return "redis:" + b.key }

func (b *Backend) rowKey(id string) string      { return b.key + ":row:" + id }
func (b *Backend) childrenKey(id string) string { return b.key + ":children:" + id }
func (b *Backend) channel() string              { return b.key + ":changes" }

func (b *Backend) listKey(parent string) string {
	if parent == "" {
		return b.key
	}
	return b.childrenKey(parent)
}

func (b *Backend) Count(ctx context.Context) (int, error) {
	n, err := b.client.LLen(ctx, b.key).Result()
	return int(n), classify(err)
}

func (b *Backend) Page(ctx context.Context, offset, limit int) ([]rows.Row, error) {
	ids, err := b.client.LRange(ctx, b.key, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, classify(err)
	}
	return b.load(ctx, ids)
}

func (b *Backend) Children(ctx context.Context, id string) ([]rows.Row, error) {
	ids, err := b.client.LRange(ctx, b.childrenKey(id), 0, -1).Result()
	if err != nil {
		return nil, classify(err)
	}
	return b.load(ctx, ids)
}

// load reads the values of ids in one round trip. IDs without a values
// key yield rows without values.
func (b *Backend) load(ctx context.Context, ids []string) ([]rows.Row, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = b.rowKey(id)
	}
	raw, err := b.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, classify(err)
	}
	out := make([]rows.Row, len(ids))
	for i, id := range ids {
		out[i] = rows.Row{ID: id}
		s, ok := raw[i].(string)
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(s), &out[i].Values); err != nil {
			return nil, errors.Wrap(errors.ErrCodeRowSource, err, "decode row %s", id)
		}
	}
	return out, nil
}

// Update overwrites the values of a row. Value changes are not published;
// the engine pulls values on every refresh.
func (b *Backend) Update(ctx context.Context, id string, values map[string]any) error {
	exists, err := b.client.Exists(ctx, b.rowKey(id)).Result()
	if err != nil {
		return classify(err)
	}
	if exists == 0 {
		return errors.New(errors.ErrCodeNotFound, "row %s not found", id)
	}
	data, err := json.Marshal(values)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "encode row %s", id)
	}
	return classify(b.client.Set(ctx, b.rowKey(id), data, 0).Err())
}

// Append adds a row at the end of parent's list (the top level when parent
// is empty) and publishes the insert.
func (b *Backend) Append(ctx context.Context, parent string, values map[string]any) (rows.Row, error) {
	r := rows.Row{ID: uuid.NewString(), Values: values}
	data, err := json.Marshal(values)
	if err != nil {
		return rows.Row{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "encode row")
	}
	var push *goredis.IntCmd
	_, err = b.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, b.rowKey(r.ID), data, 0)
		push = p.RPush(ctx, b.listKey(parent), r.ID)
		return nil
	})
	if err != nil {
		return rows.Row{}, classify(err)
	}
	index := int(push.Val()) - 1
	return r, b.publish(ctx, rows.Change{Kind: rows.Inserted, Index: index, Parent: parent})
}

// Remove deletes the top-level row at index and publishes the removal.
// Its children stay in Redis until the next Reset.
func (b *Backend) Remove(ctx context.Context, index int) error {
	id, err := b.client.LIndex(ctx, b.key, int64(index)).Result()
	if stderrors.Is(err, goredis.Nil) {
		return errors.New(errors.ErrCodeNotFound, "row %d not found", index)
	}
	if err != nil {
		return classify(err)
	}
	_, err = b.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.LRem(ctx, b.key, 1, id)
		p.Del(ctx, b.rowKey(id), b.childrenKey(id))
		return nil
	})
	if err != nil {
		return classify(err)
	}
	return b.publish(ctx, rows.Change{Kind: rows.Removed, Index: index})
}

// Reset replaces every top-level row and publishes a reset.
func (b *Backend) Reset(ctx context.Context, values []map[string]any) error {
	ids := make([]any, len(values))
	_, err := b.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Del(ctx, b.key)
		for i, v := range values {
			id := uuid.NewString()
			data, err := json.Marshal(v)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "encode row %d", i)
			}
			p.Set(ctx, b.rowKey(id), data, 0)
			ids[i] = id
		}
		if len(ids) > 0 {
			p.RPush(ctx, b.key, ids...)
		}
		return nil
	})
	if err != nil {
		return classify(err)
	}
	return b.publish(ctx, rows.Change{Kind: rows.Reset})
}

func (b *Backend) publish(ctx context.Context, ch rows.Change) error {
	return classify(b.client.Publish(ctx, b.channel(), encodeChange(ch)).Err())
}

// Watch subscribes to the change channel. Malformed messages are reported
// as resets so subscribers reload instead of missing a change.
func (b *Backend) Watch(ctx context.Context, fn func(rows.Change)) error {
	ps := b.client.Subscribe(ctx, b.channel())
	defer ps.Close()
	if _, err := ps.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return classify(err)
	}
	msgs := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-msgs:
			if !ok {
				return nil
			}
			ch, err := decodeChange(m.Payload)
			if err != nil {
				ch = rows.Change{Kind: rows.Reset}
			}
			fn(ch)
		}
	}
}

// classify marks connection-level failures retryable.
func classify(err error) error {
	if err == nil || stderrors.Is(err, goredis.Nil) {
		return nil
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) || stderrors.Is(err, io.EOF) {
		return rowsource.Retryable(err)
	}
	return err
}

var _ rowsource.Backend = (*Backend)(nil)
