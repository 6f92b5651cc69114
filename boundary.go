package pager

import (
	"fmt"

	"github.com/samber/lo"
)

type (
	// Condition is a single comparison Operator(Column, Value).
	Condition struct {
		Column   string
		Operator Operator
		Value    any
	}

	// Conjunction is a list of conditions joined by AND.
	Conjunction []Condition

	// Boundary is the seek predicate of a keyset page in disjunctive normal
	// form (DNF). Each conjunction is joined by OR. A nil Boundary matches
	// every record.
	//
	// Thus:
	//
	//	DNF = X1 OR X2 ... OR Xn, where Xi = Ai1 AND Ai2 ... AND Aim.
	//	DNF = (A11 AND A12 AND A13) OR (A21 AND A22 AND A23), for n=2, m=3.
	Boundary []Conjunction
)

// SeekBoundary builds the boundary selecting the records that come strictly
// after cursor when traversing in sort order.
//
// For orderings [(C1, D1), (C2, D2) ... (Cn, Dn)] and cursor values
// [V1, V2 ... Vn] the result is
//
//	(C1 O1 V1) OR (C1 = V1 AND C2 O2 V2) OR ... OR (C1 = V1 AND ... AND Cn On Vn)
//
// where Oi is "<" for a descending ordering and ">" otherwise. Since Cn is the
// unique tie-breaker the boundary never selects the cursor record itself and
// never skips a record.
func SeekBoundary(sort Orderings, cursor *Cursor) (Boundary, error) {
	if cursor == nil {
		return nil, nil
	}

	values := cursor.Values()
	if len(values) != len(sort) {
		return nil, fmt.Errorf("cursor has %d values for %d orderings", len(values), len(sort))
	}

	elements := make([]Condition, 0, len(sort))
	for i, orderBy := range sort {
		operator, err := orderBy.Direction.SeekOperator()
		if err != nil {
			return nil, err
		}
		elements = append(elements, Condition{Column: orderBy.Column, Operator: operator, Value: values[i]})
	}

	dnf := make(Boundary, 0, len(elements))
	for i := range elements {
		previousElementsWithEqualityCondition := lo.Map(elements[:i], func(item Condition, _ int) Condition {
			return item.withEqualityCondition()
		})

		conjunction := make(Conjunction, 0, len(previousElementsWithEqualityCondition)+1)
		conjunction = append(conjunction, previousElementsWithEqualityCondition...)
		conjunction = append(conjunction, elements[i])

		dnf = append(dnf, conjunction)
	}

	return dnf, nil
}

func (c Condition) withEqualityCondition() Condition {
	return Condition{
		Column:   c.Column,
		Value:    c.Value,
		Operator: OperatorEQ,
	}
}

// IsEmpty reports whether the boundary has no effect.
func (b Boundary) IsEmpty() bool {
	return lo.EveryBy(b, func(c Conjunction) bool { return len(c) == 0 })
}
