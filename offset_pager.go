package pager

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// OffsetPager pages through a dataset with SKIP/LIMIT and a total count.
//
// It is meant for "jump to page N" style screens with moderate page numbers.
// Results are not stable under concurrent writes: a record may move across a
// page boundary between two requests. Use CursorPager when that matters.
type OffsetPager[T any] struct {
	page     int
	limit    int
	maxLimit int
	sort     Orderings
	filter   Filter
}

func NewOffsetPager[T any]() *OffsetPager[T] {
	return new(OffsetPager[T])
}

// WithPage sets the 1-based page number. Values below 1 are clamped to 1.
func (p *OffsetPager[T]) WithPage(page int) *OffsetPager[T] {
	if p == nil {
		p = new(OffsetPager[T])
	}

	p.page = page

	return p
}

// WithLimit sets the page size. It is normalized into [1, max limit] when the
// pager runs.
func (p *OffsetPager[T]) WithLimit(limit int) *OffsetPager[T] {
	if p == nil {
		p = new(OffsetPager[T])
	}

	p.limit = limit

	return p
}

// WithMaxLimit sets the page size ceiling. Defaults to MaxLimit.
func (p *OffsetPager[T]) WithMaxLimit(maxLimit int) *OffsetPager[T] {
	if p == nil {
		p = new(OffsetPager[T])
	}

	p.maxLimit = maxLimit

	return p
}

// WithSort sets the orderings. The last one must be the tie-breaker.
func (p *OffsetPager[T]) WithSort(sort Orderings) *OffsetPager[T] {
	if p == nil {
		p = new(OffsetPager[T])
	}

	p.sort = sort

	return p
}

func (p *OffsetPager[T]) WithFilter(filter Filter) *OffsetPager[T] {
	if p == nil {
		p = new(OffsetPager[T])
	}

	p.filter = filter

	return p
}

// GetPage returns the effective page number: at least 1, and saturated so
// that the offset of the page still fits an int.
func (p *OffsetPager[T]) GetPage() int {
	if p == nil {
		return 1
	}

	page, limit := NormalizePage(p.page), p.GetLimit()
	if page-1 > math.MaxInt/limit {
		page = math.MaxInt/limit + 1
	}

	return page
}

// GetLimit returns the effective page size.
func (p *OffsetPager[T]) GetLimit() int {
	if p == nil {
		return DefaultLimit
	}

	return NormalizeLimitMax(p.limit, p.maxLimit)
}

// GetOffset returns the number of records to skip.
func (p *OffsetPager[T]) GetOffset() int {
	return (p.GetPage() - 1) * p.GetLimit()
}

// GetSort returns orderings that will be applied to the dataset.
func (p *OffsetPager[T]) GetSort() Orderings {
	if p == nil {
		return nil
	}

	return p.sort
}

// Paginate fetches the page and the total count concurrently. If either call
// fails the whole operation fails with that error.
func (p *OffsetPager[T]) Paginate(ctx context.Context, exec Executor[T]) (*OffsetPage[T], error) {
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("cannot paginate: %w", err)
	}

	page, limit := p.GetPage(), p.GetLimit()
	query := Query{
		Filter: p.filter,
		Sort:   p.sort,
		Skip:   p.GetOffset(),
		Limit:  limit,
	}

	var (
		items []T
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = exec.Find(gctx, query)
		if err != nil {
			return fmt.Errorf("find: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = exec.Count(gctx, p.filter)
		if err != nil {
			return fmt.Errorf("count: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	totalPages := TotalPages(total, limit)

	return &OffsetPage[T]{
		Items:        items,
		Page:         page,
		AppliedLimit: limit,
		TotalCount:   total,
		TotalPages:   totalPages,
		HasNext:      page < totalPages,
		HasPrev:      page > 1 && total > 0,
	}, nil
}

func (p *OffsetPager[T]) validate() error {
	if p == nil {
		return fmt.Errorf("offset pager is nil")
	}

	return p.sort.validate()
}

// TotalPages returns ceil(total / limit).
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}

	return int((total + int64(limit) - 1) / int64(limit))
}
