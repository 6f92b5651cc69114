package mongoexec

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Alp4ka/pager"
)

// _binaryGeneric is the subtype the driver writes uuid.UUID fields with.
const _binaryGeneric byte = 0x00

var _operators = map[pager.Operator]string{
	pager.OperatorGT: "$gt",
	pager.OperatorLT: "$lt",
	pager.OperatorEQ: "$eq",
}

// queryDocument builds the find filter: every filter term, the OR-ed search
// group and the boundary, all AND-ed together.
func queryDocument(f pager.Filter, b pager.Boundary) (bson.D, error) {
	conds, err := filterConditions(f)
	if err != nil {
		return nil, err
	}

	seek, err := boundaryDocument(b)
	if err != nil {
		return nil, err
	}
	if seek != nil {
		conds = append(conds, seek)
	}

	switch len(conds) {
	case 0:
		return bson.D{}, nil
	case 1:
		return conds[0], nil
	default:
		return bson.D{{Key: "$and", Value: toArray(conds)}}, nil
	}
}

func filterConditions(f pager.Filter) ([]bson.D, error) {
	ret := make([]bson.D, 0, len(f.All)+1)

	for _, term := range f.All {
		doc, err := termDocument(term)
		if err != nil {
			return nil, err
		}
		ret = append(ret, doc)
	}

	if len(f.Any) > 0 {
		alternatives := make([]bson.D, 0, len(f.Any))
		for _, term := range f.Any {
			doc, err := termDocument(term)
			if err != nil {
				return nil, err
			}
			alternatives = append(alternatives, doc)
		}
		ret = append(ret, bson.D{{Key: "$or", Value: toArray(alternatives)}})
	}

	return ret, nil
}

func termDocument(term pager.Term) (bson.D, error) {
	var cond bson.D

	switch p := term.Predicate.(type) {
	case pager.Equals:
		v, err := bsonValue(p.Value)
		if err != nil {
			return nil, fmt.Errorf("column '%s': %w", term.Column, err)
		}
		cond = bson.D{{Key: "$eq", Value: v}}

	case pager.OneOf:
		values := make(bson.A, 0, len(p.Values))
		for _, value := range p.Values {
			v, err := bsonValue(value)
			if err != nil {
				return nil, fmt.Errorf("column '%s': %w", term.Column, err)
			}
			values = append(values, v)
		}
		cond = bson.D{{Key: "$in", Value: values}}

	case pager.Range:
		if p.Min != nil {
			v, err := bsonValue(p.Min)
			if err != nil {
				return nil, fmt.Errorf("column '%s': %w", term.Column, err)
			}
			cond = append(cond, bson.E{Key: "$gte", Value: v})
		}
		if p.Max != nil {
			v, err := bsonValue(p.Max)
			if err != nil {
				return nil, fmt.Errorf("column '%s': %w", term.Column, err)
			}
			cond = append(cond, bson.E{Key: "$lte", Value: v})
		}
		if len(cond) == 0 {
			return bson.D{}, nil
		}

	case pager.Matches:
		cond = bson.D{{Key: "$regex", Value: p.Pattern}}
		if p.CaseInsensitive {
			cond = append(cond, bson.E{Key: "$options", Value: "i"})
		}

	default:
		return nil, fmt.Errorf("unsupported predicate %T", term.Predicate)
	}

	return bson.D{{Key: term.Column, Value: cond}}, nil
}

// boundaryDocument renders the seek predicate as
// {$or: [{$and: [...]}, ...]}. Returns nil for an empty boundary.
func boundaryDocument(b pager.Boundary) (bson.D, error) {
	if b.IsEmpty() {
		return nil, nil
	}

	alternatives := make([]bson.D, 0, len(b))
	for _, conjunction := range b {
		if len(conjunction) == 0 {
			continue
		}

		conds := make([]bson.D, 0, len(conjunction))
		for _, c := range conjunction {
			op, ok := _operators[c.Operator]
			if !ok {
				return nil, fmt.Errorf("unsupported operator '%s'", c.Operator)
			}
			v, err := bsonValue(c.Value)
			if err != nil {
				return nil, fmt.Errorf("column '%s': %w", c.Column, err)
			}
			conds = append(conds, bson.D{{Key: c.Column, Value: bson.D{{Key: op, Value: v}}}})
		}

		if len(conds) == 1 {
			alternatives = append(alternatives, conds[0])
		} else {
			alternatives = append(alternatives, bson.D{{Key: "$and", Value: toArray(conds)}})
		}
	}

	if len(alternatives) == 1 {
		return alternatives[0], nil
	}

	return bson.D{{Key: "$or", Value: toArray(alternatives)}}, nil
}

// sortDocument renders orderings as {column: 1|-1, ...}.
func sortDocument(sort pager.Orderings) bson.D {
	ret := make(bson.D, 0, len(sort))
	for _, orderBy := range sort {
		dir := 1
		if orderBy.Direction == pager.DirectionDESC {
			dir = -1
		}
		ret = append(ret, bson.E{Key: orderBy.Column, Value: dir})
	}

	return ret
}

// bsonValue converts a value into the form the driver stores it in, so that
// comparisons against documents written from the same Go types hold.
func bsonValue(v any) (any, error) {
	nv, err := pager.NormalizeValue(v)
	if err != nil {
		return nil, err
	}

	switch vt := nv.(type) {
	case uuid.UUID:
		return primitive.Binary{Subtype: _binaryGeneric, Data: vt[:]}, nil
	case uint64:
		if vt > math.MaxInt64 {
			return nil, fmt.Errorf("value %d overflows int64", vt)
		}
		return int64(vt), nil
	default:
		return nv, nil
	}
}

func toArray(docs []bson.D) bson.A {
	ret := make(bson.A, 0, len(docs))
	for _, doc := range docs {
		ret = append(ret, doc)
	}

	return ret
}
