package pager

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// Traversal is the direction a keyset page is read in, relative to the
// declared sort order.
type Traversal string

const (
	TraversalForward  Traversal = "next"
	TraversalBackward Traversal = "prev"
)

func (t Traversal) Valid() bool {
	return t == TraversalForward || t == TraversalBackward
}

// ParseTraversal accepts "next" or "prev" in any case. An empty string means
// forward.
func ParseTraversal(s string) (Traversal, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TraversalForward, nil
	}

	t := Traversal(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid direction '%s', expected next or prev", s)
	}

	return t, nil
}

// CursorPager pages through a dataset with keyset (seek) conditions instead
// of SKIP. Pages are stable under concurrent inserts and deletes and the cost
// of a page does not depend on how deep it is.
//
// IMPORTANT:
// The last ordering MUST be a unique column (the tie-breaker), otherwise
// records sharing sort values may be skipped or repeated.
type CursorPager[T any] struct {
	limit     int
	maxLimit  int
	token     string
	cursor    *Cursor
	traversal Traversal
	sort      Orderings
	filter    Filter
	getters   Getters[T]
}

func NewCursorPager[T any]() *CursorPager[T] {
	return new(CursorPager[T])
}

// WithLimit sets the maximum number of returned records. It is normalized
// into [1, max limit] when the pager runs.
func (c *CursorPager[T]) WithLimit(limit int) *CursorPager[T] {
	if c == nil {
		c = new(CursorPager[T])
	}

	c.limit = limit

	return c
}

// WithMaxLimit sets the page size ceiling. Defaults to MaxLimit.
func (c *CursorPager[T]) WithMaxLimit(maxLimit int) *CursorPager[T] {
	if c == nil {
		c = new(CursorPager[T])
	}

	c.maxLimit = maxLimit

	return c
}

// WithCursor sets the cursor explicitly. A nil cursor starts at the beginning
// of the sequence in the requested traversal.
func (c *CursorPager[T]) WithCursor(cursor *Cursor) *CursorPager[T] {
	if c == nil {
		c = new(CursorPager[T])
	}

	c.cursor = cursor
	c.token = ""

	return c
}

// WithToken sets an opaque cursor token received from a client. It is
// decoded against the final orderings when the pager runs; a token that does
// not decode is treated as no cursor.
func (c *CursorPager[T]) WithToken(token string) *CursorPager[T] {
	if c == nil {
		c = new(CursorPager[T])
	}

	c.token = token
	c.cursor = nil

	return c
}

func (c *CursorPager[T]) WithTraversal(traversal Traversal) *CursorPager[T] {
	if c == nil {
		c = new(CursorPager[T])
	}

	c.traversal = traversal

	return c
}

// WithSort sets the orderings. The last one must be the tie-breaker.
func (c *CursorPager[T]) WithSort(sort Orderings) *CursorPager[T] {
	if c == nil {
		c = new(CursorPager[T])
	}

	c.sort = sort

	return c
}

func (c *CursorPager[T]) WithFilter(filter Filter) *CursorPager[T] {
	if c == nil {
		c = new(CursorPager[T])
	}

	c.filter = filter

	return c
}

// WithGetters sets the accessors used to build cursors from returned records.
func (c *CursorPager[T]) WithGetters(getters Getters[T]) *CursorPager[T] {
	if c == nil {
		c = new(CursorPager[T])
	}

	c.getters = getters

	return c
}

// GetLimit returns the effective page size.
func (c *CursorPager[T]) GetLimit() int {
	if c == nil {
		return DefaultLimit
	}

	return NormalizeLimitMax(c.limit, c.maxLimit)
}

// GetDatasetLimit returns the number of records requested from the store:
// one more than GetLimit, to learn whether more records follow.
func (c *CursorPager[T]) GetDatasetLimit() int {
	return c.GetLimit() + 1
}

// GetCursor returns the cursor the pager starts from, decoding a token if one
// was given. Nil means the start of the sequence.
func (c *CursorPager[T]) GetCursor() *Cursor {
	if c == nil {
		return nil
	}

	if c.cursor == nil && c.token != "" {
		return DecodeCursor(c.token, c.sort)
	}

	return c.cursor
}

// GetTraversal returns the traversal, forward unless set otherwise.
func (c *CursorPager[T]) GetTraversal() Traversal {
	if c == nil || c.traversal == "" {
		return TraversalForward
	}

	return c.traversal
}

// GetSort returns orderings that will be applied to the dataset.
func (c *CursorPager[T]) GetSort() Orderings {
	if c == nil {
		return nil
	}

	return c.sort
}

// Paginate fetches one page.
//
// Backward traversal walks the reversed orderings away from the cursor and
// reverses the fetched records in memory, so items are always returned in the
// declared order. Cursors are always encoded with the declared orderings.
//
// The cursor on the side the traversal moves toward is set only when more
// records follow; the cursor on the side it came from only when the request
// had a cursor. Both are empty for an empty page.
func (c *CursorPager[T]) Paginate(ctx context.Context, exec Executor[T]) (*CursorPage[T], error) {
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("cannot paginate: %w", err)
	}

	cursor := c.GetCursor()
	backward := c.GetTraversal() == TraversalBackward

	effectiveSort := c.sort
	if backward {
		effectiveSort = c.sort.Reverse()
	}

	boundary, err := SeekBoundary(effectiveSort, cursor)
	if err != nil {
		return nil, fmt.Errorf("cannot paginate: %w", err)
	}

	limit := c.GetLimit()
	items, err := exec.Find(ctx, Query{
		Filter:   c.filter,
		Boundary: boundary,
		Sort:     effectiveSort,
		Limit:    c.GetDatasetLimit(),
	})
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}

	items, hasMore := trimLookahead(items, limit)
	if backward {
		slices.Reverse(items)
	}

	page := &CursorPage[T]{
		Items:        items,
		HasMore:      hasMore,
		AppliedLimit: limit,
	}
	if len(items) == 0 {
		return page, nil
	}

	hasNext, hasPrev := hasMore, cursor != nil
	if backward {
		hasNext, hasPrev = cursor != nil, hasMore
	}

	if hasNext {
		page.NextCursor, err = EncodeCursor(items[len(items)-1], c.sort, c.getters)
		if err != nil {
			return nil, fmt.Errorf("cannot build next page cursor: %w", err)
		}
	}
	if hasPrev {
		page.PrevCursor, err = EncodeCursor(items[0], c.sort, c.getters)
		if err != nil {
			return nil, fmt.Errorf("cannot build previous page cursor: %w", err)
		}
	}

	return page, nil
}

func (c *CursorPager[T]) validate() error {
	if c == nil {
		return fmt.Errorf("cursor pager is nil")
	}

	if c.traversal != "" && !c.traversal.Valid() {
		return fmt.Errorf("invalid traversal '%s'", c.traversal)
	}

	err := c.sort.validate()
	if err != nil {
		return err
	}

	for _, orderBy := range c.sort {
		if _, ok := c.getters[orderBy.Column]; !ok {
			return fmt.Errorf("cannot find getter for column '%s' met in ordering", orderBy.Column)
		}
	}

	return nil
}

// trimLookahead drops the extra record fetched to detect a following page.
//
// Suppose limit = 2 and resultSet = [a, b, c] → [a, b], true.
// With resultSet = [a, b] → [a, b], false.
func trimLookahead[T any](resultSet []T, limit int) ([]T, bool) {
	if len(resultSet) > limit {
		return resultSet[:limit], true
	}

	return resultSet, false
}
