package pager

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseRequest(t *testing.T) {
	tests := []struct {
		name       string
		raw        url.Values
		want       Request
		wantCursor bool
	}{
		{
			name: "empty",
			raw:  url.Values{},
			want: Request{},
		},
		{
			name: "offset params",
			raw:  url.Values{"page": {"3"}, "limit": {" 20 "}, "sortBy": {"price:asc"}},
			want: Request{Page: 3, Limit: 20, SortBy: "price:asc"},
		},
		{
			name: "garbage numbers fall back to zero",
			raw:  url.Values{"page": {"two"}, "limit": {"1e3"}},
			want: Request{},
		},
		{
			name:       "cursor without direction",
			raw:        url.Values{"cursor": {"abc"}},
			want:       Request{Cursor: "abc"},
			wantCursor: true,
		},
		{
			name:       "direction alone",
			raw:        url.Values{"direction": {"PREV"}},
			want:       Request{Direction: TraversalBackward},
			wantCursor: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRequest(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCursor, got.WantsCursor())
		})
	}
}

func Test_ParseRequest_invalidDirection(t *testing.T) {
	_, err := ParseRequest(url.Values{"direction": {"sideways"}})
	require.Error(t, err)
	assert.True(t, IsInputError(err))
	assert.True(t, errors.Is(err, ErrInvalidRequest))

	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, ParamDirection, inputErr.Field)
}

func Test_ParseTraversal(t *testing.T) {
	got, err := ParseTraversal("")
	require.NoError(t, err)
	assert.Equal(t, TraversalForward, got)

	got, err = ParseTraversal(" Next ")
	require.NoError(t, err)
	assert.Equal(t, TraversalForward, got)

	_, err = ParseTraversal("back")
	assert.Error(t, err)
}
