package gormexec

import (
	"errors"
	"fmt"
	"regexp/syntax"
	"strings"

	"gorm.io/gorm/clause"

	"github.com/Alp4ka/pager"
)

// ErrPatternUnsupported is returned when a filter needs a regular expression
// match and the dialect has no regex operator.
var ErrPatternUnsupported = errors.New("regular expression filters are not supported by dialect")

// _likeEscape is the escape character of generated LIKE patterns.
const _likeEscape = "!"

var _likeReplacer = strings.NewReplacer(
	_likeEscape, _likeEscape+_likeEscape,
	"%", _likeEscape+"%",
	"_", _likeEscape+"_",
)

// conditionExpression converts a seek condition of the form Operator(Column, Value)
// into an SQL condition "Column Operator ?".
//
// Example:
//
//	pager.Condition{Column: "id", Operator: ">", Value: 123}
//
// Result:
//
//	"id > ?", [123]
func conditionExpression(c pager.Condition) clause.Expression {
	return clause.Expr{
		SQL:  fmt.Sprintf("%s %s ?", c.Column, c.Operator),
		Vars: []any{c.Value},
	}
}

// conjunctionExpression converts a conjunction (K1, K2, K3) into
// "K1 AND K2 AND K3".
func conjunctionExpression(c pager.Conjunction) clause.Expression {
	andExpressions := make([]clause.Expression, 0, len(c))
	for _, cond := range c {
		andExpressions = append(andExpressions, conditionExpression(cond))
	}

	return joinExpressions(andExpressions, clause.And)
}

// boundaryExpression converts a boundary in disjunctive normal form into
// "(C1) OR (C2) ... OR (Cn)" where every Ci is a conjunction. Returns nil for
// an empty boundary.
//
// Example:
//
//	{
//		{{Column: "id", Operator: "<", Value: 10}},
//		{{Column: "id", Operator: "=", Value: 10}, {Column: "name", Operator: "<", Value: "abc"}},
//	}
//
// Result:
//
//	"(id < ? OR (id = ? AND name < ?))", [10, 10, "abc"]
func boundaryExpression(b pager.Boundary) clause.Expression {
	orExpressions := make([]clause.Expression, 0, len(b))
	for _, conjunction := range b {
		exp := conjunctionExpression(conjunction)
		if exp == nil {
			continue
		}

		orExpressions = append(orExpressions, exp)
	}

	return joinExpressions(orExpressions, clause.Or)
}

// joinExpressions joins more than one expression with join and returns a
// single expression as is. A lone clause.Or would be glued to the preceding
// WHERE condition with OR.
func joinExpressions(exprs []clause.Expression, join func(...clause.Expression) clause.Expression) clause.Expression {
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return exprs[0]
	default:
		return join(exprs...)
	}
}

// translator renders filters for one SQL dialect.
type translator struct {
	dialect string
}

// filterExpressions returns one expression per AND-ed term plus, if present,
// a single expression for the OR-ed group.
func (t translator) filterExpressions(f pager.Filter) ([]clause.Expression, error) {
	ret := make([]clause.Expression, 0, len(f.All)+1)

	for _, term := range f.All {
		exp, err := t.termExpression(term)
		if err != nil {
			return nil, err
		}
		if exp != nil {
			ret = append(ret, exp)
		}
	}

	anyExpressions := make([]clause.Expression, 0, len(f.Any))
	for _, term := range f.Any {
		exp, err := t.termExpression(term)
		if err != nil {
			return nil, err
		}
		if exp == nil {
			// An always-true alternative makes the whole group true.
			anyExpressions = nil
			break
		}
		anyExpressions = append(anyExpressions, exp)
	}
	if exp := joinExpressions(anyExpressions, clause.Or); exp != nil {
		ret = append(ret, exp)
	}

	return ret, nil
}

// termExpression renders a single term. A nil expression means the term
// matches every row.
func (t translator) termExpression(term pager.Term) (clause.Expression, error) {
	column := term.Column

	switch p := term.Predicate.(type) {
	case pager.Equals:
		return clause.Expr{SQL: column + " = ?", Vars: []any{p.Value}}, nil

	case pager.OneOf:
		if len(p.Values) == 0 {
			return clause.Expr{SQL: "1 = 0"}, nil
		}
		return clause.Expr{SQL: column + " IN ?", Vars: []any{p.Values}}, nil

	case pager.Range:
		rangeExpressions := make([]clause.Expression, 0, 2)
		if p.Min != nil {
			rangeExpressions = append(rangeExpressions, clause.Expr{SQL: column + " >= ?", Vars: []any{p.Min}})
		}
		if p.Max != nil {
			rangeExpressions = append(rangeExpressions, clause.Expr{SQL: column + " <= ?", Vars: []any{p.Max}})
		}
		return joinExpressions(rangeExpressions, clause.And), nil

	case pager.Matches:
		return t.matchExpression(column, p)

	default:
		return nil, fmt.Errorf("unsupported predicate %T", term.Predicate)
	}
}

// matchExpression renders a substring match. Literal patterns, which is what
// the filter builder produces, become portable LIKE conditions. Anything else
// needs a dialect regex operator.
func (t translator) matchExpression(column string, p pager.Matches) (clause.Expression, error) {
	literal, ok, err := literalPattern(p.Pattern)
	if err != nil {
		return nil, fmt.Errorf("column '%s': %w", column, err)
	}

	if ok {
		if literal == "" {
			return nil, nil
		}

		if p.CaseInsensitive {
			return clause.Expr{
				SQL:  fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '%s'", column, _likeEscape),
				Vars: []any{"%" + _likeReplacer.Replace(strings.ToLower(literal)) + "%"},
			}, nil
		}

		return clause.Expr{
			SQL:  fmt.Sprintf("%s LIKE ? ESCAPE '%s'", column, _likeEscape),
			Vars: []any{"%" + _likeReplacer.Replace(literal) + "%"},
		}, nil
	}

	switch t.dialect {
	case "postgres":
		op := "~"
		if p.CaseInsensitive {
			op = "~*"
		}
		return clause.Expr{SQL: fmt.Sprintf("%s %s ?", column, op), Vars: []any{p.Pattern}}, nil

	case "mysql":
		mode := "c"
		if p.CaseInsensitive {
			mode = "i"
		}
		return clause.Expr{SQL: fmt.Sprintf("REGEXP_LIKE(%s, ?, '%s')", column, mode), Vars: []any{p.Pattern}}, nil

	default:
		return nil, fmt.Errorf("%w '%s'", ErrPatternUnsupported, t.dialect)
	}
}

// literalPattern reports whether pattern matches a fixed string and returns
// that string.
func literalPattern(pattern string) (string, bool, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return "", false, fmt.Errorf("invalid pattern '%s': %w", pattern, err)
	}

	re = re.Simplify()
	switch re.Op {
	case syntax.OpEmptyMatch:
		return "", true, nil
	case syntax.OpLiteral:
		if re.Flags&syntax.FoldCase != 0 {
			return "", false, nil
		}
		return string(re.Rune), true, nil
	default:
		return "", false, nil
	}
}
