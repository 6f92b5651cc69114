package pager

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Direction_Valid_And_SeekOperator(t *testing.T) {
	tests := []struct {
		name     string
		in       Direction
		valid    bool
		operator Operator
		reverse  Direction
	}{
		{"ASC valid maps to GT", DirectionASC, true, OperatorGT, DirectionDESC},
		{"DESC valid maps to LT", DirectionDESC, true, OperatorLT, DirectionASC},
	}
	for _, tt := range tests {
		if got := tt.in.Valid(); got != tt.valid {
			t.Errorf("%s: Valid=%v want %v", tt.name, got, tt.valid)
		}
		if got, err := tt.in.SeekOperator(); err != nil || got != tt.operator {
			t.Errorf("%s: SeekOperator=%v, %v want %v", tt.name, got, err, tt.operator)
		}
		if got := tt.in.Reverse(); got != tt.reverse {
			t.Errorf("%s: Reverse=%v want %v", tt.name, got, tt.reverse)
		}
	}
}

func Test_Direction_SeekOperator_invalid(t *testing.T) {
	_, err := Direction("SIDEWAYS").SeekOperator()
	assert.Error(t, err)
}

func Test_Orderings_validate(t *testing.T) {
	tests := []struct {
		name string
		ord  Orderings
		ok   bool
	}{
		{"empty returns error", Orderings{}, false},
		{"invalid direction", Orderings{{Column: "id", Direction: "bad"}}, false},
		{"forbidden symbols", Orderings{{Column: "id; drop table", Direction: DirectionASC}}, false},
		{"unknown kind", Orderings{{Column: "id", Direction: DirectionASC, Kind: "decimal"}}, false},
		{"valid list", Orderings{{Column: "id", Direction: DirectionASC}}, true},
		{"valid typed list", Orderings{{Column: "id", Direction: DirectionASC, Kind: KindUUID}}, true},
	}
	for _, tt := range tests {
		if err := tt.ord.validate(); (err == nil) != tt.ok {
			t.Errorf("%s: ok=%v err=%v", tt.name, tt.ok, err)
		}
	}
}

func Test_Orderings_Reverse_Keys_TieBreaker(t *testing.T) {
	ord := Orderings{
		{Column: "score", Direction: DirectionDESC},
		{Column: "name", Direction: DirectionASC},
		{Column: "id", Direction: DirectionDESC},
	}

	require.Equal(t, Orderings{
		{Column: "score", Direction: DirectionASC},
		{Column: "name", Direction: DirectionDESC},
		{Column: "id", Direction: DirectionASC},
	}, ord.Reverse())
	require.Equal(t, DirectionDESC, ord[0].Direction, "Reverse must not mutate the receiver")
	require.Equal(t, ord[:2], ord.Keys())
	require.Equal(t, OrderBy{Column: "id", Direction: DirectionDESC}, ord.TieBreaker())
	require.Equal(t, "score DESC, name ASC, id DESC", ord.ToSQL())
}

func Test_SortRules_Resolve(t *testing.T) {
	rules := SortRules{
		Columns: ColumnMapping{
			"id":        "_id",
			"name":      "name",
			"score":     "score",
			"createdAt": "created_at",
		},
		TieBreaker:       "id",
		DefaultDirection: DirectionDESC,
	}

	tests := []struct {
		name    string
		in      string
		want    Orderings
		wantErr bool
	}{
		{
			name: "empty param uses createdAt desc",
			in:   "",
			want: Orderings{{Column: "created_at", Direction: DirectionDESC}, {Column: "_id", Direction: DirectionDESC}},
		},
		{
			name: "single field",
			in:   "score:asc",
			want: Orderings{{Column: "score", Direction: DirectionASC}, {Column: "_id", Direction: DirectionDESC}},
		},
		{
			name: "direction is case insensitive and optional",
			in:   "name:DESC, score",
			want: Orderings{{Column: "name", Direction: DirectionDESC}, {Column: "score", Direction: DirectionDESC}, {Column: "_id", Direction: DirectionDESC}},
		},
		{
			name: "tie-breaker moved to the end with its direction",
			in:   "id:asc,score:desc",
			want: Orderings{{Column: "score", Direction: DirectionDESC}, {Column: "_id", Direction: DirectionASC}},
		},
		{
			name: "only tie-breaker",
			in:   "id:asc",
			want: Orderings{{Column: "_id", Direction: DirectionASC}},
		},
		{
			name: "duplicate field keeps the last occurrence",
			in:   "score:asc,name:asc,score:desc",
			want: Orderings{{Column: "name", Direction: DirectionASC}, {Column: "score", Direction: DirectionDESC}, {Column: "_id", Direction: DirectionDESC}},
		},
		{name: "unknown field", in: "scroe:asc", wantErr: true},
		{name: "bad direction", in: "score:up", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rules.Resolve(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidSort))
				assert.True(t, IsInputError(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func Test_ResolveSort_NoDefaultColumn(t *testing.T) {
	got, err := ResolveSort("", ColumnMapping{"id": "id", "name": "name"}, "id", DirectionASC)
	require.NoError(t, err)
	require.Equal(t, Orderings{{Column: "id", Direction: DirectionASC}}, got)
}

func Test_ResolveSort_UnknownFieldSuggestsClosest(t *testing.T) {
	_, err := ResolveSort("nmae:asc", ColumnMapping{"id": "id", "name": "name"}, "id", DirectionASC)

	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	require.Equal(t, "sortBy", inputErr.Field)
	require.Contains(t, inputErr.Message, "closest: 'name'")
}

func Test_ResolveSort_MissingTieBreaker(t *testing.T) {
	_, err := ResolveSort("", ColumnMapping{"name": "name"}, "", DirectionASC)
	require.Error(t, err)
	require.False(t, IsInputError(err))
}

func Test_SortRules_Resolve_kinds(t *testing.T) {
	rules := SortRules{
		Columns:    ColumnMapping{"score": "score", "name": "name", "id": "_id"},
		Kinds:      map[ColumnAlias]ValueKind{"score": KindInt, "id": KindUUID},
		TieBreaker: "id",
	}

	got, err := rules.Resolve("score:asc,name")
	require.NoError(t, err)
	assert.Equal(t, Orderings{
		{Column: "score", Direction: DirectionASC, Kind: KindInt},
		{Column: "name", Direction: DirectionDESC},
		{Column: "_id", Direction: DirectionDESC, Kind: KindUUID},
	}, got)

	assert.Equal(t, KindInt, got.Reverse()[0].Kind)
}
