// Package mongo is a row source backend over a MongoDB collection.
//
// Each document is one row:
//
//	{_id: "<id>", parent: "<parent id>", order: 3, values: {...}}
//
// Top-level rows have no parent field. Rows are ordered by the order
// field, then by _id. Any change on the collection is reported as a reset,
// since a change stream event does not carry the row's position.
package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/gridview/pkg/errors"
	"github.com/matzehuels/gridview/pkg/rows"
	"github.com/matzehuels/gridview/pkg/rowsource"
)

// document is the stored form of a row.
type document struct {
	ID     string         `bson:"_id"`
	Parent string         `bson:"parent,omitempty"`
	Order  int64          `bson:"order"`
	Values map[string]any `bson:"values"`
}

func (d document) row() rows.Row { return rows.Row{ID: d.ID, Values: d.Values} }

// Backend implements rowsource.Backend.
type Backend struct {
	coll *mongo.Collection
}

// New creates a backend over coll.
func New(coll *mongo.Collection) *Backend { return &Backend{coll: coll} }

// Open connects to uri and returns a backend over database.collection.
// The caller disconnects the returned client.
func Open(ctx context.Context, uri, database, collection string) (*Backend, *mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}
	return New(client.Database(database).Collection(collection)), client, nil
}

func (b *Backend) Name() string {
	return fmt.Sprintf("mongo:%s.%s", b.coll.Database().Name(), b.coll.Name())
}

func childrenOf(parent string) bson.D {
	if parent == "" {
		return bson.D{{Key: "parent", Value: nil}}
	}
	return bson.D{{Key: "parent", Value: parent}}
}

var byOrder = bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}}

func pageOptions(offset, limit int) *options.FindOptions {
	return options.Find().SetSort(byOrder).SetSkip(int64(offset)).SetLimit(int64(limit))
}

func (b *Backend) Count(ctx context.Context) (int, error) {
	n, err := b.coll.CountDocuments(ctx, childrenOf(""))
	return int(n), classify(err)
}

func (b *Backend) Page(ctx context.Context, offset, limit int) ([]rows.Row, error) {
	return b.find(ctx, childrenOf(""), pageOptions(offset, limit))
}

func (b *Backend) Children(ctx context.Context, id string) ([]rows.Row, error) {
	return b.find(ctx, childrenOf(id), options.Find().SetSort(byOrder))
}

func (b *Backend) find(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]rows.Row, error) {
	cur, err := b.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, classify(err)
	}
	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, classify(err)
	}
	out := make([]rows.Row, len(docs))
	for i, d := range docs {
		out[i] = d.row()
	}
	return out, nil
}

func (b *Backend) Update(ctx context.Context, id string, values map[string]any) error {
	res, err := b.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "values", Value: values}}}})
	if err != nil {
		return classify(err)
	}
	if res.MatchedCount == 0 {
		return errors.New(errors.ErrCodeNotFound, "row %s not found", id)
	}
	return nil
}

// Seed replaces the collection's contents with one top-level row per
// values map.
func (b *Backend) Seed(ctx context.Context, values []map[string]any) error {
	if _, err := b.coll.DeleteMany(ctx, bson.D{}); err != nil {
		return classify(err)
	}
	if len(values) == 0 {
		return nil
	}
	docs := make([]any, len(values))
	for i, v := range values {
		docs[i] = document{ID: uuid.NewString(), Order: int64(i), Values: v}
	}
	_, err := b.coll.InsertMany(ctx, docs)
	return classify(err)
}

// Watch follows the collection's change stream. Change streams need a
// replica set; on a standalone server Watch returns the server's error.
func (b *Backend) Watch(ctx context.Context, fn func(rows.Change)) error {
	cs, err := b.coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return classify(err)
	}
	defer cs.Close(context.WithoutCancel(ctx))
	for cs.Next(ctx) {
		fn(rows.Change{Kind: rows.Reset})
	}
	if ctx.Err() != nil {
		return nil
	}
	return classify(cs.Err())
}

// classify marks network errors and timeouts retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return rowsource.Retryable(err)
	}
	return err
}

var _ rowsource.Backend = (*Backend)(nil)
