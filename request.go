package pager

import (
	"net/url"
	"strconv"
	"strings"
)

// Query-string parameter names read by ParseRequest.
const (
	ParamPage      = "page"
	ParamLimit     = "limit"
	ParamSortBy    = "sortBy"
	ParamCursor    = "cursor"
	ParamDirection = "direction"
)

// Request holds the pagination parameters of an HTTP request.
type Request struct {
	// Page is the 1-based page number of offset mode.
	Page int `json:"page" form:"page"`
	// Limit - maximum number of records to return in the response.
	Limit int `json:"limit" form:"limit"`
	// SortBy - "field:asc|desc" list, comma separated.
	SortBy string `json:"sortBy" form:"sortBy"`
	// Cursor - opaque token obtained from a previous keyset response.
	// If empty, the first page in Direction is returned.
	Cursor string `json:"cursor" form:"cursor"`
	// Direction - keyset traversal, "next" or "prev". Empty means "next".
	Direction Traversal `json:"direction" form:"direction"`
}

// ParseRequest extracts pagination parameters from raw query values.
//
// Non-numeric page and limit values fall back to their defaults, as does a
// missing direction. An unknown direction is an *InputError.
func ParseRequest(raw url.Values) (Request, error) {
	var direction Traversal
	if rawDirection := strings.TrimSpace(raw.Get(ParamDirection)); rawDirection != "" {
		var err error
		direction, err = ParseTraversal(rawDirection)
		if err != nil {
			return Request{}, newInputError(ErrInvalidRequest, ParamDirection, "%s", err)
		}
	}

	return Request{
		Page:      atoiOrZero(raw.Get(ParamPage)),
		Limit:     atoiOrZero(raw.Get(ParamLimit)),
		SortBy:    strings.TrimSpace(raw.Get(ParamSortBy)),
		Cursor:    strings.TrimSpace(raw.Get(ParamCursor)),
		Direction: direction,
	}, nil
}

// WantsCursor reports whether the request carries keyset parameters.
func (r Request) WantsCursor() bool {
	return r.Cursor != "" || r.Direction != ""
}

func atoiOrZero(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}

	return v
}
