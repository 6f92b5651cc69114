package pager

import (
	"context"
	"net/url"
)

// Mode selects the paginator of an endpoint.
type Mode string

const (
	ModeOffset Mode = "offset"
	ModeCursor Mode = "cursor"
	// ModeAuto uses keyset paging when the request has a cursor or a
	// direction, offset paging otherwise.
	ModeAuto Mode = "auto"
)

// Endpoint declares how a list endpoint filters, sorts and pages records of
// type T. It holds no request state and is safe for concurrent use.
type Endpoint[T any] struct {
	Filters FilterFields
	Sort    SortRules
	// Getters must cover every column of Sort.Columns and the tie-breaker.
	Getters  Getters[T]
	MaxLimit int
	Mode     Mode
}

// List runs one request end to end and returns its transport envelope, an
// OffsetEnvelope[T] or a CursorEnvelope[T].
//
// Invalid sort, filter or direction parameters yield an *InputError, executor
// errors are returned wrapped but otherwise untouched.
func (e *Endpoint[T]) List(ctx context.Context, exec Executor[T], raw url.Values) (any, error) {
	req, err := ParseRequest(raw)
	if err != nil {
		return nil, err
	}

	switch e.mode(req) {
	case ModeCursor:
		page, err := e.Cursor(ctx, exec, req, raw)
		if err != nil {
			return nil, err
		}
		return AssembleCursor(page), nil
	default:
		page, err := e.Offset(ctx, exec, req, raw)
		if err != nil {
			return nil, err
		}
		return AssembleOffset(page), nil
	}
}

// Offset pages with OffsetPager.
func (e *Endpoint[T]) Offset(ctx context.Context, exec Executor[T], req Request, raw url.Values) (*OffsetPage[T], error) {
	filter, sort, err := e.prepare(req, raw)
	if err != nil {
		return nil, err
	}

	return NewOffsetPager[T]().
		WithPage(req.Page).
		WithLimit(req.Limit).
		WithMaxLimit(e.MaxLimit).
		WithSort(sort).
		WithFilter(filter).
		Paginate(ctx, exec)
}

// Cursor pages with CursorPager.
func (e *Endpoint[T]) Cursor(ctx context.Context, exec Executor[T], req Request, raw url.Values) (*CursorPage[T], error) {
	filter, sort, err := e.prepare(req, raw)
	if err != nil {
		return nil, err
	}

	return NewCursorPager[T]().
		WithLimit(req.Limit).
		WithMaxLimit(e.MaxLimit).
		WithSort(sort).
		WithFilter(filter).
		WithGetters(e.Getters).
		WithToken(req.Cursor).
		WithTraversal(req.Direction).
		Paginate(ctx, exec)
}

func (e *Endpoint[T]) prepare(req Request, raw url.Values) (Filter, Orderings, error) {
	sort, err := e.Sort.Resolve(req.SortBy)
	if err != nil {
		return Filter{}, nil, err
	}

	filter, err := BuildFilter(raw, e.Filters)
	if err != nil {
		return Filter{}, nil, err
	}

	return filter, sort, nil
}

func (e *Endpoint[T]) mode(req Request) Mode {
	switch e.Mode {
	case ModeOffset, ModeCursor:
		return e.Mode
	default:
		if req.WantsCursor() {
			return ModeCursor
		}
		return ModeOffset
	}
}
