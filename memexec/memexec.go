// Package memexec implements pager.Executor over an in-memory slice.
//
// It evaluates filters, boundaries and orderings with pager.CompareValues and
// is meant for tests, fixtures and small static lists.
package memexec

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"sync"

	"github.com/samber/lo"

	"github.com/Alp4ka/pager"
)

// Executor is a concurrency-safe in-memory collection of T.
type Executor[T any] struct {
	mu      sync.RWMutex
	records []T
	getters pager.Getters[T]
}

// New copies records into a new Executor. getters must cover every column
// that filters and orderings refer to.
func New[T any](records []T, getters pager.Getters[T]) *Executor[T] {
	return &Executor[T]{
		records: slices.Clone(records),
		getters: getters,
	}
}

// Insert adds records to the collection.
func (e *Executor[T]) Insert(records ...T) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.records = append(e.records, records...)
}

// Delete removes every record for which match returns true and reports how
// many were removed.
func (e *Executor[T]) Delete(match func(T) bool) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	before := len(e.records)
	e.records = slices.DeleteFunc(e.records, match)

	return before - len(e.records)
}

// Len returns the number of stored records.
func (e *Executor[T]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.records)
}

// Find implements pager.Executor.
func (e *Executor[T]) Find(ctx context.Context, q pager.Query) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matched, err := e.match(q.Filter, q.Boundary)
	if err != nil {
		return nil, err
	}

	var sortErr error
	slices.SortStableFunc(matched, func(a, b T) int {
		res, err := e.compare(a, b, q.Sort)
		if err != nil && sortErr == nil {
			sortErr = err
		}
		return res
	})
	if sortErr != nil {
		return nil, sortErr
	}

	if q.Skip > 0 {
		matched = matched[min(q.Skip, len(matched)):]
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	return matched, nil
}

// Count implements pager.Executor.
func (e *Executor[T]) Count(ctx context.Context, f pager.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	matched, err := e.match(f, nil)
	if err != nil {
		return 0, err
	}

	return int64(len(matched)), nil
}

// match returns a fresh slice with the records satisfying filter and boundary.
func (e *Executor[T]) match(filter pager.Filter, boundary pager.Boundary) ([]T, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	m := matcher[T]{getters: e.getters, patterns: make(map[string]*regexp.Regexp)}
	ret := make([]T, 0, len(e.records))

	for _, record := range e.records {
		ok, err := m.record(record, filter, boundary)
		if err != nil {
			return nil, err
		}
		if ok {
			ret = append(ret, record)
		}
	}

	return ret, nil
}

func (e *Executor[T]) compare(a, b T, sort pager.Orderings) (int, error) {
	for _, orderBy := range sort {
		va, err := e.getters.Get(a, orderBy.Column)
		if err != nil {
			return 0, err
		}
		vb, err := e.getters.Get(b, orderBy.Column)
		if err != nil {
			return 0, err
		}

		res, err := pager.CompareValues(va, vb)
		if err != nil {
			return 0, fmt.Errorf("column '%s': %w", orderBy.Column, err)
		}
		if res != 0 {
			return lo.Ternary(orderBy.Direction == pager.DirectionDESC, -res, res), nil
		}
	}

	return 0, nil
}
