package pager

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// FieldType is the caller-declared predicate kind of a filterable field. The
// predicate is never inferred from the shape of the value.
type FieldType string

const (
	FieldExact     FieldType = "exact"
	FieldRegex     FieldType = "regex"
	FieldRange     FieldType = "range"
	FieldSet       FieldType = "set"
	FieldDateRange FieldType = "dateRange"
	// FieldSearch is free text matched against several columns at once.
	FieldSearch FieldType = "search"
)

// ValueKind tells the builder how to parse raw string values.
type ValueKind string

const (
	KindString ValueKind = "string"
	KindInt    ValueKind = "int"
	KindFloat  ValueKind = "float"
	KindBool   ValueKind = "bool"
	KindTime   ValueKind = "time"
	KindUUID   ValueKind = "uuid"
)

func (k ValueKind) Valid() bool {
	switch k {
	case KindString, KindInt, KindFloat, KindBool, KindTime, KindUUID:
		return true
	default:
		return false
	}
}

// Raw parameter suffixes of range bounds.
const (
	suffixMin  = "Min"
	suffixMax  = "Max"
	suffixFrom = "From"
	suffixTo   = "To"
)

type (
	// FieldRule declares how a public filter key maps onto the store.
	FieldRule struct {
		// Column is the internal column. Defaults to the alias.
		Column string
		Type   FieldType
		// Kind is the value kind for exact, range and set. Defaults to string,
		// dateRange always uses time.
		Kind ValueKind
		// CaseSensitive turns off case folding for regex fields.
		CaseSensitive bool
		// Columns are the columns searched by a FieldSearch rule.
		Columns []string
	}

	// FilterFields is the filter allow-list of an endpoint, keyed by alias.
	FilterFields map[ColumnAlias]FieldRule
)

// Predicate is one of Equals, Matches, Range or OneOf.
type Predicate interface {
	predicate()
}

type (
	Equals struct {
		Value any
	}

	// Matches is a regular expression match.
	Matches struct {
		Pattern         string
		CaseInsensitive bool
	}

	// Range is an inclusive range, a nil bound is open.
	Range struct {
		Min any
		Max any
	}

	OneOf struct {
		Values []any
	}
)

func (Equals) predicate()  {}
func (Matches) predicate() {}
func (Range) predicate()   {}
func (OneOf) predicate()   {}

// Term applies a predicate to a column.
type Term struct {
	Column    string
	Predicate Predicate
}

// Filter is the store-agnostic filter expression of a request: every term of
// All must hold and, when Any is not empty, at least one term of Any.
//
// A Filter is built fresh per request and must not be modified afterwards.
type Filter struct {
	All []Term
	Any []Term
}

// IsEmpty reports whether the filter matches every record.
func (f Filter) IsEmpty() bool {
	return len(f.All) == 0 && len(f.Any) == 0
}

// BuildFilter turns raw query parameters into a Filter. Only keys declared in
// fields are considered, anything else is ignored so that store specific
// operators can never leak through from client input. Empty values are
// ignored as well.
//
// Key conventions per field type:
//
//	exact, regex, search  alias=value
//	set                   alias=a&alias=b or alias=a,b
//	range                 aliasMin=..&aliasMax=..
//	dateRange             aliasFrom=..&aliasTo=..
//
// A value that cannot be parsed as the declared kind yields an *InputError
// wrapping ErrInvalidFilter.
func BuildFilter(raw url.Values, fields FilterFields) (Filter, error) {
	var ret Filter

	// Iterate in a stable order so identical requests build identical filters.
	aliases := lo.Keys(fields)
	slices.Sort(aliases)

	for _, alias := range aliases {
		rule := fields[alias]
		column := lo.Ternary(rule.Column != "", rule.Column, alias)

		switch rule.Type {
		case FieldExact:
			v := firstValue(raw, alias)
			if v == "" {
				continue
			}
			parsed, err := parseValue(rule.Kind, v, false)
			if err != nil {
				return Filter{}, invalidFilterValue(alias, v, rule.Kind, err)
			}
			ret.All = append(ret.All, Term{Column: column, Predicate: Equals{Value: parsed}})

		case FieldRegex:
			v := firstValue(raw, alias)
			if v == "" {
				continue
			}
			ret.All = append(ret.All, Term{
				Column:    column,
				Predicate: Matches{Pattern: regexp.QuoteMeta(v), CaseInsensitive: !rule.CaseSensitive},
			})

		case FieldSearch:
			v := firstValue(raw, alias)
			if v == "" {
				continue
			}
			searchColumns := lo.Ternary(len(rule.Columns) > 0, rule.Columns, []string{column})
			for _, searchColumn := range searchColumns {
				ret.Any = append(ret.Any, Term{
					Column:    searchColumn,
					Predicate: Matches{Pattern: regexp.QuoteMeta(v), CaseInsensitive: true},
				})
			}

		case FieldSet:
			values := splitValues(raw[alias])
			if len(values) == 0 {
				continue
			}
			parsed := make([]any, 0, len(values))
			for _, v := range values {
				p, err := parseValue(rule.Kind, v, false)
				if err != nil {
					return Filter{}, invalidFilterValue(alias, v, rule.Kind, err)
				}
				parsed = append(parsed, p)
			}
			ret.All = append(ret.All, Term{Column: column, Predicate: OneOf{Values: parsed}})

		case FieldRange, FieldDateRange:
			term, ok, err := buildRange(raw, alias, column, rule)
			if err != nil {
				return Filter{}, err
			}
			if ok {
				ret.All = append(ret.All, term)
			}

		default:
			return Filter{}, fmt.Errorf("filter field '%s' has unknown type '%s'", alias, rule.Type)
		}
	}

	return ret, nil
}

func buildRange(raw url.Values, alias, column string, rule FieldRule) (Term, bool, error) {
	kind := rule.Kind
	minKey, maxKey := alias+suffixMin, alias+suffixMax
	if rule.Type == FieldDateRange {
		kind = KindTime
		minKey, maxKey = alias+suffixFrom, alias+suffixTo
	}

	var rng Range
	if v := firstValue(raw, minKey); v != "" {
		parsed, err := parseValue(kind, v, false)
		if err != nil {
			return Term{}, false, invalidFilterValue(minKey, v, kind, err)
		}
		rng.Min = parsed
	}
	if v := firstValue(raw, maxKey); v != "" {
		parsed, err := parseValue(kind, v, true)
		if err != nil {
			return Term{}, false, invalidFilterValue(maxKey, v, kind, err)
		}
		rng.Max = parsed
	}

	if rng.Min == nil && rng.Max == nil {
		return Term{}, false, nil
	}

	return Term{Column: column, Predicate: rng}, true, nil
}

func invalidFilterValue(key, value string, kind ValueKind, err error) *InputError {
	return newInputError(ErrInvalidFilter, key, "value '%s' is not a valid %s: %s", value, kindOrDefault(kind), err)
}

func kindOrDefault(kind ValueKind) ValueKind {
	return lo.Ternary(kind == "", KindString, kind)
}

func firstValue(raw url.Values, key string) string {
	return strings.TrimSpace(raw.Get(key))
}

// splitValues flattens repeated and comma separated values, dropping blanks.
func splitValues(values []string) []string {
	ret := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				ret = append(ret, part)
			}
		}
	}

	return lo.Uniq(ret)
}

// Accepted time layouts, most specific first.
var _timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly}

// parseValue parses v as kind. For times given as a bare date, upperBound
// moves the value to the last instant of that day so the range covers it.
func parseValue(kind ValueKind, v string, upperBound bool) (any, error) {
	switch kindOrDefault(kind) {
	case KindString:
		return v, nil
	case KindInt:
		return strconv.ParseInt(v, 10, 64)
	case KindFloat:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("expected a finite number")
		}
		return f, nil
	case KindBool:
		return strconv.ParseBool(v)
	case KindUUID:
		return uuid.Parse(v)
	case KindTime:
		for _, layout := range _timeLayouts {
			ts, err := time.Parse(layout, v)
			if err != nil {
				continue
			}
			if layout == time.DateOnly && upperBound {
				ts = ts.Add(24*time.Hour - time.Nanosecond)
			}
			return ts.UTC(), nil
		}
		return nil, fmt.Errorf("expected RFC 3339 timestamp or YYYY-MM-DD date")
	default:
		return nil, fmt.Errorf("unknown value kind '%s'", kind)
	}
}
