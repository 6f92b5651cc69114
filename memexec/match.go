package memexec

import (
	"fmt"
	"regexp"

	"github.com/Alp4ka/pager"
)

type matcher[T any] struct {
	getters  pager.Getters[T]
	patterns map[string]*regexp.Regexp
}

func (m matcher[T]) record(record T, filter pager.Filter, boundary pager.Boundary) (bool, error) {
	for _, term := range filter.All {
		ok, err := m.term(record, term)
		if err != nil || !ok {
			return false, err
		}
	}

	if len(filter.Any) > 0 {
		anyOK := false
		for _, term := range filter.Any {
			ok, err := m.term(record, term)
			if err != nil {
				return false, err
			}
			if ok {
				anyOK = true
				break
			}
		}
		if !anyOK {
			return false, nil
		}
	}

	if boundary.IsEmpty() {
		return true, nil
	}

	for _, conjunction := range boundary {
		ok, err := m.conjunction(record, conjunction)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}

	return false, nil
}

func (m matcher[T]) conjunction(record T, conjunction pager.Conjunction) (bool, error) {
	if len(conjunction) == 0 {
		return false, nil
	}

	for _, cond := range conjunction {
		v, err := m.getters.Get(record, cond.Column)
		if err != nil {
			return false, err
		}

		res, err := pager.CompareValues(v, cond.Value)
		if err != nil {
			return false, fmt.Errorf("column '%s': %w", cond.Column, err)
		}

		var ok bool
		switch cond.Operator {
		case pager.OperatorGT:
			ok = res > 0
		case pager.OperatorLT:
			ok = res < 0
		case pager.OperatorEQ:
			ok = res == 0
		default:
			return false, fmt.Errorf("unsupported operator '%s'", cond.Operator)
		}
		if !ok {
			return false, nil
		}
	}

	return true, nil
}

func (m matcher[T]) term(record T, term pager.Term) (bool, error) {
	v, err := m.getters.Get(record, term.Column)
	if err != nil {
		return false, err
	}

	switch p := term.Predicate.(type) {
	case pager.Equals:
		return m.equal(term.Column, v, p.Value)

	case pager.OneOf:
		for _, candidate := range p.Values {
			ok, err := m.equal(term.Column, v, candidate)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil

	case pager.Range:
		if p.Min != nil {
			res, err := pager.CompareValues(v, p.Min)
			if err != nil {
				return false, fmt.Errorf("column '%s': %w", term.Column, err)
			}
			if res < 0 {
				return false, nil
			}
		}
		if p.Max != nil {
			res, err := pager.CompareValues(v, p.Max)
			if err != nil {
				return false, fmt.Errorf("column '%s': %w", term.Column, err)
			}
			if res > 0 {
				return false, nil
			}
		}
		return true, nil

	case pager.Matches:
		s, ok := v.(string)
		if !ok {
			return false, fmt.Errorf("column '%s': cannot match %T against a pattern", term.Column, v)
		}
		re, err := m.pattern(p)
		if err != nil {
			return false, err
		}
		return re.MatchString(s), nil

	default:
		return false, fmt.Errorf("unsupported predicate %T", term.Predicate)
	}
}

func (m matcher[T]) equal(column string, v, want any) (bool, error) {
	res, err := pager.CompareValues(v, want)
	if err != nil {
		return false, fmt.Errorf("column '%s': %w", column, err)
	}

	return res == 0, nil
}

func (m matcher[T]) pattern(p pager.Matches) (*regexp.Regexp, error) {
	expr := p.Pattern
	if p.CaseInsensitive {
		expr = "(?i)" + expr
	}

	if re, ok := m.patterns[expr]; ok {
		return re, nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern '%s': %w", p.Pattern, err)
	}
	m.patterns[expr] = re

	return re, nil
}
