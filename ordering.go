package pager

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Direction defines the sort direction for the requested dataset.
type Direction string

const (
	DirectionASC  Direction = "ASC"
	DirectionDESC Direction = "DESC"
)

// DefaultSortAlias is the alias sorted on (descending) when a request carries
// no sortBy parameter and the endpoint allows it.
const DefaultSortAlias = "createdAt"

func (o Direction) Valid() bool {
	return o == DirectionASC || o == DirectionDESC
}

// SeekOperator returns the strict operator selecting records that come after
// a value in direction o.
func (o Direction) SeekOperator() (Operator, error) {
	switch o {
	case DirectionASC:
		return OperatorGT, nil
	case DirectionDESC:
		return OperatorLT, nil
	default:
		return "", fmt.Errorf("cannot map direction '%s' to operator", o)
	}
}

// Reverse returns the opposite direction.
func (o Direction) Reverse() Direction {
	if o == DirectionDESC {
		return DirectionASC
	}

	return DirectionDESC
}

// ParseDirection accepts "asc" or "desc" in any case.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("invalid ordering direction '%s'", s)
	}

	return d, nil
}

type (
	// Orderings is the sort specification of a request. The last element is
	// the tie-breaker: a unique column that makes the order total.
	Orderings []OrderBy
	OrderBy   struct {
		Column    string
		Direction Direction
		// Kind is the value kind of the column. When set, cursor values of
		// another type are refused on encode and decode. Empty accepts any.
		Kind ValueKind
	}

	ColumnAlias = string

	// ColumnMapping maps external column aliases to fully qualified column names.
	// It doubles as the sort allow-list: aliases missing from it are rejected.
	// Key is an external alias, value is an internal column name.
	ColumnMapping = map[ColumnAlias]string
)

var _availableColumnNameSymbols = append([]rune("_.'`\""), lo.AlphanumericCharset...)

func (o OrderBy) validate() error {
	if !o.Direction.Valid() {
		return fmt.Errorf("invalid ordering direction '%s'", o.Direction)
	}
	if o.Kind != "" && !o.Kind.Valid() {
		return fmt.Errorf("unknown value kind '%s' for column '%s'", o.Kind, o.Column)
	}

	// Guard against injection by restricting allowed characters in column names.
	if o.Column == "" || !lo.Every(_availableColumnNameSymbols, []rune(o.Column)) {
		return fmt.Errorf("ordering column name contains forbidden symbols '%s'", o.Column)
	}

	return nil
}

// ToSQLSlice converts Orderings to a slice of strings in the form
// "<order_column> <order_direction>" suitable for SQL query builders.
//
// Example: for Orderings: [{"a", "ASC"}, {"b", "DESC"}] returns ["a ASC", "b DESC"].
func (o Orderings) ToSQLSlice() []string {
	ret := make([]string, 0, len(o))
	for _, ordering := range o {
		ret = append(ret, fmt.Sprintf("%s %s", ordering.Column, ordering.Direction))
	}

	return ret
}

// ToSQL converts Orderings to a single string
// "<order_column_1> <order_direction_1>, <order_column_2> <order_direction_2>"
// suitable for embedding into an SQL query.
// Example: for [{"a", "ASC"}, {"b", "DESC"}] returns "a ASC, b DESC".
func (o Orderings) ToSQL() string {
	return strings.Join(o.ToSQLSlice(), ", ")
}

// Reverse returns a copy of o with every direction negated. Used to walk
// backward from a cursor.
func (o Orderings) Reverse() Orderings {
	return lo.Map(o, func(ordering OrderBy, _ int) OrderBy {
		return OrderBy{Column: ordering.Column, Direction: ordering.Direction.Reverse(), Kind: ordering.Kind}
	})
}

// TieBreaker returns the last ordering, which must be on a unique column.
func (o Orderings) TieBreaker() OrderBy {
	return lo.LastOrEmpty(o)
}

// Keys returns every ordering except the tie-breaker.
func (o Orderings) Keys() Orderings {
	if len(o) == 0 {
		return nil
	}

	return o[:len(o)-1]
}

// with appends ordering, removing a previous occurrence of the same column.
func (o Orderings) with(ordering OrderBy) Orderings {
	idx := slices.IndexFunc(o, func(processed OrderBy) bool {
		return processed.Column == ordering.Column
	})

	// Remove previous occurrence (avoid duplication).
	if idx != -1 {
		o = slices.Delete(o, idx, idx+1)
	}

	return append(o, ordering)
}

func (o Orderings) validate() error {
	if len(o) == 0 {
		return fmt.Errorf("empty ordering list")
	}

	var err error
	for _, ordering := range o {
		err = ordering.validate()
		if err != nil {
			return err
		}
	}

	return nil
}

// SortRules is the per-endpoint sort declaration.
type SortRules struct {
	// Columns is the allow-list of sortable aliases.
	Columns ColumnMapping
	// TieBreaker is the alias of the unique column closing every ordering.
	// If it is absent from Columns it is used as the column name verbatim.
	TieBreaker ColumnAlias
	// DefaultDirection is used for the appended tie-breaker and for fields
	// requested without an explicit direction. Defaults to DESC.
	DefaultDirection Direction
	// Kinds declares the value kind per alias, the tie-breaker included.
	// Cursors carrying a value of another kind decode to nil.
	Kinds map[ColumnAlias]ValueKind
}

// Resolve turns a "field:asc|desc[,field:asc|desc...]" parameter into Orderings
// terminated by the tie-breaker.
//
// If the tie-breaker alias is requested explicitly it is moved to the final
// position with its requested direction, otherwise it is appended with
// DefaultDirection. Unknown aliases or directions produce an *InputError
// wrapping ErrInvalidSort.
func (r SortRules) Resolve(sortParam string) (Orderings, error) {
	defaultDirection := lo.Ternary(r.DefaultDirection.Valid(), r.DefaultDirection, DirectionDESC)
	tieColumn := lo.Ternary(r.Columns[r.TieBreaker] != "", r.Columns[r.TieBreaker], r.TieBreaker)
	if tieColumn == "" {
		return nil, fmt.Errorf("sort rules: tie-breaker is not set")
	}

	if strings.TrimSpace(sortParam) == "" {
		if _, ok := r.Columns[DefaultSortAlias]; ok {
			sortParam = DefaultSortAlias + ":desc"
		}
	}

	ret := make(Orderings, 0, 4)
	tieDirection := defaultDirection

	for _, part := range strings.Split(sortParam, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		alias, rawDirection, hasDirection := strings.Cut(part, ":")
		alias = strings.TrimSpace(alias)

		direction := defaultDirection
		if hasDirection {
			var err error
			direction, err = ParseDirection(rawDirection)
			if err != nil {
				return nil, newInputError(ErrInvalidSort, "sortBy", "%s for '%s', expected asc or desc", err, alias)
			}
		}

		column := r.Columns[alias]
		if alias == r.TieBreaker || (column != "" && column == tieColumn) {
			tieDirection = direction
			continue
		}
		if column == "" {
			return nil, newInputError(
				ErrInvalidSort,
				"sortBy",
				"field '%s' is not sortable. closest: '%s'",
				alias,
				closestAlias(alias, lo.Keys(r.Columns)),
			)
		}

		ret = ret.with(OrderBy{Column: column, Direction: direction, Kind: r.Kinds[alias]})
	}

	ret = append(ret, OrderBy{Column: tieColumn, Direction: tieDirection, Kind: r.Kinds[r.TieBreaker]})

	if err := ret.validate(); err != nil {
		return nil, newInputError(ErrInvalidSort, "sortBy", "%s", err)
	}

	return ret, nil
}

// ResolveSort is a shortcut for SortRules{...}.Resolve(sortParam).
func ResolveSort(
	sortParam string,
	columns ColumnMapping,
	tieBreaker ColumnAlias,
	defaultDirection Direction,
) (Orderings, error) {
	return SortRules{
		Columns:          columns,
		TieBreaker:       tieBreaker,
		DefaultDirection: defaultDirection,
	}.Resolve(sortParam)
}

func closestAlias(input ColumnAlias, dataSet []ColumnAlias) ColumnAlias {
	minDist := math.MaxInt
	closest := ""

	// Map iteration order is random, sort for a stable suggestion.
	slices.Sort(dataSet)

	for _, dataSetAlias := range dataSet {
		dist := levenshtein([]rune(dataSetAlias), []rune(input))
		if dist < minDist {
			minDist = dist
			closest = dataSetAlias
		}
	}

	return closest
}
