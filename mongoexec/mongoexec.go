// Package mongoexec implements pager.Executor on top of the official MongoDB
// driver.
//
// Filters and boundaries are rendered as query documents, orderings as a
// sort document. T is decoded from the collection with its bson tags, so the
// columns used by an endpoint are the document field names.
package mongoexec

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Alp4ka/pager"
)

// Executor runs pager queries against a collection of T.
type Executor[T any] struct {
	coll *mongo.Collection
	base bson.D
}

// New returns an Executor over coll.
func New[T any](coll *mongo.Collection) *Executor[T] {
	return &Executor[T]{coll: coll}
}

// WithBase returns a copy of e that AND-s base into every query, e.g. a
// tenant or a soft-delete condition.
func (e *Executor[T]) WithBase(base bson.D) *Executor[T] {
	return &Executor[T]{coll: e.coll, base: base}
}

// Find implements pager.Executor.
func (e *Executor[T]) Find(ctx context.Context, q pager.Query) ([]T, error) {
	filter, err := queryDocument(q.Filter, q.Boundary)
	if err != nil {
		return nil, fmt.Errorf("cannot translate query: %w", err)
	}

	opts := options.Find()
	if len(q.Sort) > 0 {
		opts.SetSort(sortDocument(q.Sort))
	}
	if q.Skip > 0 {
		opts.SetSkip(int64(q.Skip))
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := e.coll.Find(ctx, e.withBase(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]T, 0, max(q.Limit, 0))
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}

	return items, nil
}

// Count implements pager.Executor.
func (e *Executor[T]) Count(ctx context.Context, f pager.Filter) (int64, error) {
	filter, err := queryDocument(f, nil)
	if err != nil {
		return 0, fmt.Errorf("cannot translate filter: %w", err)
	}

	return e.coll.CountDocuments(ctx, e.withBase(filter))
}

func (e *Executor[T]) withBase(filter bson.D) bson.D {
	if len(e.base) == 0 {
		return filter
	}
	if len(filter) == 0 {
		return e.base
	}

	return bson.D{{Key: "$and", Value: bson.A{e.base, filter}}}
}
