package memexec

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alp4ka/pager"
)

type apartment struct {
	ID      int
	City    string
	Price   float64
	Rooms   int
	Listed  time.Time
	Comment string
}

var _apartmentGetters = pager.Getters[apartment]{
	"id":      func(a apartment) any { return a.ID },
	"city":    func(a apartment) any { return a.City },
	"price":   func(a apartment) any { return a.Price },
	"rooms":   func(a apartment) any { return a.Rooms },
	"listed":  func(a apartment) any { return a.Listed },
	"comment": func(a apartment) any { return a.Comment },
}

func apartments() []apartment {
	day := func(d int) time.Time { return time.Date(2024, 6, d, 12, 0, 0, 0, time.UTC) }

	return []apartment{
		{ID: 1, City: "Kazan", Price: 50, Rooms: 1, Listed: day(1), Comment: "Near the river"},
		{ID: 2, City: "Moscow", Price: 120, Rooms: 2, Listed: day(2), Comment: "city center"},
		{ID: 3, City: "Moscow", Price: 90, Rooms: 2, Listed: day(3), Comment: "quiet"},
		{ID: 4, City: "Sochi", Price: 75.5, Rooms: 3, Listed: day(4), Comment: "sea VIEW"},
		{ID: 5, City: "Kazan", Price: 90, Rooms: 1, Listed: day(5), Comment: ""},
	}
}

func Test_Executor_Find(t *testing.T) {
	exec := New(apartments(), _apartmentGetters)

	byPrice := pager.Orderings{
		{Column: "price", Direction: pager.DirectionDESC},
		{Column: "id", Direction: pager.DirectionASC},
	}

	tests := []struct {
		name  string
		query pager.Query
		want  []int
	}{
		{
			name:  "sort only",
			query: pager.Query{Sort: byPrice},
			want:  []int{2, 3, 5, 4, 1},
		},
		{
			name:  "skip and limit",
			query: pager.Query{Sort: byPrice, Skip: 1, Limit: 2},
			want:  []int{3, 5},
		},
		{
			name:  "skip past the end",
			query: pager.Query{Sort: byPrice, Skip: 10},
			want:  []int{},
		},
		{
			name: "equals and one of",
			query: pager.Query{
				Sort: byPrice,
				Filter: pager.Filter{All: []pager.Term{
					{Column: "city", Predicate: pager.OneOf{Values: []any{"Kazan", "Sochi"}}},
					{Column: "rooms", Predicate: pager.Equals{Value: int64(1)}},
				}},
			},
			want: []int{5, 1},
		},
		{
			name: "open range",
			query: pager.Query{
				Sort:   byPrice,
				Filter: pager.Filter{All: []pager.Term{{Column: "price", Predicate: pager.Range{Max: 90.0}}}},
			},
			want: []int{3, 5, 4, 1},
		},
		{
			name: "time range",
			query: pager.Query{
				Sort: byPrice,
				Filter: pager.Filter{All: []pager.Term{{Column: "listed", Predicate: pager.Range{
					Min: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
					Max: time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
				}}}},
			},
			want: []int{2, 3},
		},
		{
			name: "any of case insensitive patterns",
			query: pager.Query{
				Sort: byPrice,
				Filter: pager.Filter{Any: []pager.Term{
					{Column: "comment", Predicate: pager.Matches{Pattern: "view", CaseInsensitive: true}},
					{Column: "city", Predicate: pager.Matches{Pattern: "KAZ", CaseInsensitive: true}},
				}},
			},
			want: []int{5, 4, 1},
		},
		{
			name: "case sensitive pattern",
			query: pager.Query{
				Sort:   byPrice,
				Filter: pager.Filter{All: []pager.Term{{Column: "comment", Predicate: pager.Matches{Pattern: "view"}}}},
			},
			want: []int{},
		},
		{
			name: "boundary",
			query: pager.Query{
				Sort: byPrice,
				// price < 90 OR (price = 90 AND id > 3)
				Boundary: pager.Boundary{
					{{Column: "price", Operator: pager.OperatorLT, Value: 90.0}},
					{
						{Column: "price", Operator: pager.OperatorEQ, Value: 90.0},
						{Column: "id", Operator: pager.OperatorGT, Value: int64(3)},
					},
				},
			},
			want: []int{5, 4, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := exec.Find(context.Background(), tt.query)
			require.NoError(t, err)

			gotIDs := make([]int, 0, len(got))
			for _, a := range got {
				gotIDs = append(gotIDs, a.ID)
			}
			assert.Equal(t, tt.want, gotIDs)
		})
	}
}

func Test_Executor_Count(t *testing.T) {
	exec := New(apartments(), _apartmentGetters)

	n, err := exec.Count(context.Background(), pager.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	n, err = exec.Count(context.Background(), pager.Filter{All: []pager.Term{
		{Column: "city", Predicate: pager.Equals{Value: "Moscow"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func Test_Executor_errors(t *testing.T) {
	exec := New(apartments(), _apartmentGetters)
	ctx := context.Background()

	_, err := exec.Find(ctx, pager.Query{Sort: pager.Orderings{{Column: "floor", Direction: pager.DirectionASC}}})
	assert.Error(t, err, "unknown sort column")

	_, err = exec.Find(ctx, pager.Query{Filter: pager.Filter{All: []pager.Term{
		{Column: "price", Predicate: pager.Equals{Value: "cheap"}},
	}}})
	assert.Error(t, err, "incomparable values")

	_, err = exec.Count(ctx, pager.Filter{All: []pager.Term{
		{Column: "rooms", Predicate: pager.Matches{Pattern: "1"}},
	}})
	assert.Error(t, err, "pattern on a number")

	canceled, cancel := context.WithCancel(ctx)
	cancel()

	_, err = exec.Find(canceled, pager.Query{})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = exec.Count(canceled, pager.Filter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func Test_Executor_mutations(t *testing.T) {
	source := apartments()
	exec := New(source, _apartmentGetters)

	exec.Insert(apartment{ID: 6, City: "Perm"})
	assert.Equal(t, 6, exec.Len())
	assert.Len(t, source, 5, "source slice is not shared")

	removed := exec.Delete(func(a apartment) bool { return a.City == "Kazan" })
	assert.Equal(t, 2, removed)
	assert.Equal(t, 4, exec.Len())
}
