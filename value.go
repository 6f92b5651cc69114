package pager

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// valueTag preserves the Go type of a cursor value across the JSON round trip.
type valueTag string

const (
	tagString valueTag = "s"
	tagInt    valueTag = "i"
	tagUint   valueTag = "u"
	tagFloat  valueTag = "f"
	tagBool   valueTag = "b"
	tagTime   valueTag = "t"
	tagUUID   valueTag = "d"
)

// NormalizeValue converts v into the canonical representation used by
// cursors and filters: signed integers become int64, unsigned integers
// uint64, floats float64 and times UTC. Pointers are dereferenced. Strings,
// bools and uuid.UUID are returned as is.
func NormalizeValue(v any) (any, error) {
	switch vt := v.(type) {
	case string, bool, int64, uint64, float64, uuid.UUID:
		return vt, nil
	case int:
		return int64(vt), nil
	case int8:
		return int64(vt), nil
	case int16:
		return int64(vt), nil
	case int32:
		return int64(vt), nil
	case uint:
		return uint64(vt), nil
	case uint8:
		return uint64(vt), nil
	case uint16:
		return uint64(vt), nil
	case uint32:
		return uint64(vt), nil
	case float32:
		return float64(vt), nil
	case time.Time:
		return vt.UTC(), nil
	case *string:
		return derefValue(vt)
	case *int64:
		return derefValue(vt)
	case *int:
		return derefValue(vt)
	case *float64:
		return derefValue(vt)
	case *time.Time:
		return derefValue(vt)
	case *uuid.UUID:
		return derefValue(vt)
	case nil:
		return nil, fmt.Errorf("nil value is not supported")
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func derefValue[V any](p *V) (any, error) {
	if p == nil {
		return nil, fmt.Errorf("nil value is not supported")
	}

	return NormalizeValue(*p)
}

// CompareValues compares two values after normalization. It returns an error
// when the values are of different kinds. Integers of different signedness
// and floats are compared numerically.
func CompareValues(a, b any) (int, error) {
	na, err := NormalizeValue(a)
	if err != nil {
		return 0, err
	}
	nb, err := NormalizeValue(b)
	if err != nil {
		return 0, err
	}

	switch va := na.(type) {
	case string:
		if vb, ok := nb.(string); ok {
			return cmp.Compare(va, vb), nil
		}
	case bool:
		if vb, ok := nb.(bool); ok {
			return compareBool(va, vb), nil
		}
	case time.Time:
		if vb, ok := nb.(time.Time); ok {
			return va.Compare(vb), nil
		}
	case uuid.UUID:
		if vb, ok := nb.(uuid.UUID); ok {
			return bytes.Compare(va[:], vb[:]), nil
		}
	case int64, uint64, float64:
		if fa, fb, ok := numericPair(na, nb); ok {
			return cmp.Compare(fa, fb), nil
		}
		if ia, ib, ok := integerPair(na, nb); ok {
			return ia.cmp(ib), nil
		}
	}

	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// numericPair returns both values as float64 when at least one of them is a
// float.
func numericPair(a, b any) (float64, float64, bool) {
	_, aFloat := a.(float64)
	_, bFloat := b.(float64)
	if !aFloat && !bFloat {
		return 0, 0, false
	}

	fa, okA := asFloat(a)
	fb, okB := asFloat(b)

	return fa, fb, okA && okB
}

func asFloat(v any) (float64, bool) {
	switch vt := v.(type) {
	case float64:
		return vt, true
	case int64:
		return float64(vt), true
	case uint64:
		return float64(vt), true
	default:
		return 0, false
	}
}

// wideInt is an integer that can hold both int64 and uint64 values.
type wideInt struct {
	negative bool
	abs      uint64
}

func (w wideInt) cmp(o wideInt) int {
	switch {
	case w.negative && !o.negative:
		return -1
	case !w.negative && o.negative:
		return 1
	case w.negative:
		return cmp.Compare(o.abs, w.abs)
	default:
		return cmp.Compare(w.abs, o.abs)
	}
}

func integerPair(a, b any) (wideInt, wideInt, bool) {
	wa, okA := asWideInt(a)
	wb, okB := asWideInt(b)

	return wa, wb, okA && okB
}

func asWideInt(v any) (wideInt, bool) {
	switch vt := v.(type) {
	case int64:
		if vt < 0 {
			return wideInt{negative: true, abs: uint64(-(vt + 1)) + 1}, true
		}
		return wideInt{abs: uint64(vt)}, true
	case uint64:
		return wideInt{abs: vt}, true
	default:
		return wideInt{}, false
	}
}

// acceptsTag reports whether a cursor value tagged tag fits a column of kind
// k. Integers fit float columns, an empty kind fits anything.
func (k ValueKind) acceptsTag(tag valueTag) bool {
	switch k {
	case "":
		return true
	case KindString:
		return tag == tagString
	case KindInt:
		return tag == tagInt || tag == tagUint
	case KindFloat:
		return tag == tagFloat || tag == tagInt || tag == tagUint
	case KindBool:
		return tag == tagBool
	case KindTime:
		return tag == tagTime
	case KindUUID:
		return tag == tagUUID
	default:
		return false
	}
}

// tagValue returns the tag and the JSON friendly form of a normalized value.
func tagValue(v any) (valueTag, any, error) {
	nv, err := NormalizeValue(v)
	if err != nil {
		return "", nil, err
	}

	switch vt := nv.(type) {
	case string:
		return tagString, vt, nil
	case int64:
		return tagInt, strconv.FormatInt(vt, 10), nil
	case uint64:
		return tagUint, strconv.FormatUint(vt, 10), nil
	case float64:
		return tagFloat, vt, nil
	case bool:
		return tagBool, vt, nil
	case time.Time:
		return tagTime, vt.Format(time.RFC3339Nano), nil
	case uuid.UUID:
		return tagUUID, vt.String(), nil
	default:
		return "", nil, fmt.Errorf("unsupported value type %T", nv)
	}
}

// untagValue restores a normalized value from its tag and raw JSON form. A
// raw value that does not match its tag is an error.
func untagValue(tag valueTag, raw json.RawMessage) (any, error) {
	switch tag {
	case tagString:
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	case tagInt:
		s, err := unmarshalString(raw)
		if err != nil {
			return nil, err
		}
		return strconv.ParseInt(s, 10, 64)
	case tagUint:
		s, err := unmarshalString(raw)
		if err != nil {
			return nil, err
		}
		return strconv.ParseUint(s, 10, 64)
	case tagFloat:
		var f float64
		err := json.Unmarshal(raw, &f)
		return f, err
	case tagBool:
		var b bool
		err := json.Unmarshal(raw, &b)
		return b, err
	case tagTime:
		s, err := unmarshalString(raw)
		if err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, err
		}
		return ts.UTC(), nil
	case tagUUID:
		s, err := unmarshalString(raw)
		if err != nil {
			return nil, err
		}
		return uuid.Parse(s)
	default:
		return nil, fmt.Errorf("unknown value tag '%s'", tag)
	}
}

func unmarshalString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}

	return s, nil
}
