package pager

import "context"

// Query is a store-agnostic read request. Translating it into a concrete
// query language is up to the Executor.
type Query struct {
	Filter Filter
	// Boundary is the keyset seek predicate, intersected with Filter.
	Boundary Boundary
	Sort     Orderings
	Skip     int
	Limit    int
}

// Executor runs queries against a store. Implementations must honor ctx
// cancellation and return store errors as is: the pagers neither retry nor
// interpret them.
type Executor[T any] interface {
	Find(ctx context.Context, q Query) ([]T, error)
	Count(ctx context.Context, f Filter) (int64, error)
}
