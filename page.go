package pager

import "github.com/samber/lo"

// OffsetPage is the result of OffsetPager.Paginate.
type OffsetPage[T any] struct {
	// Items result elements.
	Items []T
	// Page is the effective 1-based page number.
	Page int
	// AppliedLimit effective limit used for the query.
	AppliedLimit int
	// TotalCount number of records matching the filter.
	TotalCount int64
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// CursorPage is the result of CursorPager.Paginate.
type CursorPage[T any] struct {
	// Items result elements, always in the declared sort order.
	Items []T
	// HasMore reports whether more records exist in the traversal direction.
	HasMore bool
	// NextCursor and PrevCursor are opaque tokens, empty when absent.
	NextCursor string
	PrevCursor string
	// AppliedLimit effective limit used for the query.
	AppliedLimit int
}

type (
	// OffsetEnvelope is the transport envelope of an offset page.
	OffsetEnvelope[T any] struct {
		Success    bool             `json:"success"`
		Data       []T              `json:"data"`
		Pagination OffsetPagination `json:"pagination"`
	}

	OffsetPagination struct {
		CurrentPage int   `json:"currentPage"`
		TotalPages  int   `json:"totalPages"`
		TotalCount  int64 `json:"totalCount"`
		Limit       int   `json:"limit"`
		HasNextPage bool  `json:"hasNextPage"`
		HasPrevPage bool  `json:"hasPrevPage"`
		NextPage    *int  `json:"nextPage"`
		PrevPage    *int  `json:"prevPage"`
	}

	// CursorEnvelope is the transport envelope of a keyset page.
	CursorEnvelope[T any] struct {
		Success    bool             `json:"success"`
		Data       []T              `json:"data"`
		Pagination CursorPagination `json:"pagination"`
	}

	CursorPagination struct {
		HasMore    bool    `json:"hasMore"`
		NextCursor *string `json:"nextCursor"`
		PrevCursor *string `json:"prevCursor"`
		Limit      int     `json:"limit"`
	}
)

// AssembleOffset wraps an offset page into its transport envelope.
func AssembleOffset[T any](p *OffsetPage[T]) OffsetEnvelope[T] {
	if p == nil {
		p = &OffsetPage[T]{}
	}

	pagination := OffsetPagination{
		CurrentPage: p.Page,
		TotalPages:  p.TotalPages,
		TotalCount:  p.TotalCount,
		Limit:       p.AppliedLimit,
		HasNextPage: p.HasNext,
		HasPrevPage: p.HasPrev,
	}
	if p.HasNext {
		pagination.NextPage = lo.ToPtr(p.Page + 1)
	}
	if p.HasPrev {
		pagination.PrevPage = lo.ToPtr(p.Page - 1)
	}

	return OffsetEnvelope[T]{
		Success:    true,
		Data:       nonNilItems(p.Items),
		Pagination: pagination,
	}
}

// AssembleCursor wraps a keyset page into its transport envelope.
func AssembleCursor[T any](p *CursorPage[T]) CursorEnvelope[T] {
	if p == nil {
		p = &CursorPage[T]{}
	}

	return CursorEnvelope[T]{
		Success: true,
		Data:    nonNilItems(p.Items),
		Pagination: CursorPagination{
			HasMore:    p.HasMore,
			NextCursor: lo.EmptyableToPtr(p.NextCursor),
			PrevCursor: lo.EmptyableToPtr(p.PrevCursor),
			Limit:      p.AppliedLimit,
		},
	}
}

func nonNilItems[T any](items []T) []T {
	if items == nil {
		return make([]T, 0)
	}

	return items
}
