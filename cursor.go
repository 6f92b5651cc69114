package pager

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"slices"
)

var _encoder = base64.RawURLEncoding

// Cursor is the boundary record most recently returned to a client: one value
// per non tie-breaker ordering (in ordering order) plus the tie-breaker value.
//
// Values are always normalized (see NormalizeValue), so cursors built from a
// record and cursors decoded from a token compare equal.
type Cursor struct {
	Key []any
	ID  any
}

// NewCursor normalizes key and id into a Cursor.
func NewCursor(id any, key ...any) (*Cursor, error) {
	nid, err := NormalizeValue(id)
	if err != nil {
		return nil, fmt.Errorf("cursor id: %w", err)
	}

	nkey := make([]any, 0, len(key))
	for i, v := range key {
		nv, err := NormalizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("cursor key %d: %w", i, err)
		}
		nkey = append(nkey, nv)
	}

	return &Cursor{Key: nkey, ID: nid}, nil
}

// Getters maps columns to value accessors of a record. Specify every column
// that can take part in an ordering, the tie-breaker included.
// Example:
//
//	pager.Getters[models.Client]{
//		"_id":        func(c models.Client) any { return c.ID },
//		"created_at": func(c models.Client) any { return c.CreatedAt },
//	}
type Getters[T any] map[string]func(T) any

// Get returns the value of column for record.
func (g Getters[T]) Get(record T, column string) (any, error) {
	getter, ok := g[column]
	if !ok {
		return nil, fmt.Errorf("cannot find getter for column '%s' met in ordering", column)
	}

	return getter(record), nil
}

// CursorFromRecord derives the cursor pointing at record under sort.
func CursorFromRecord[T any](record T, sort Orderings, getters Getters[T]) (*Cursor, error) {
	if len(sort) == 0 {
		return nil, fmt.Errorf("empty ordering list")
	}

	key := make([]any, 0, len(sort)-1)
	for _, orderBy := range sort.Keys() {
		v, err := getters.Get(record, orderBy.Column)
		if err != nil {
			return nil, err
		}
		key = append(key, v)
	}

	id, err := getters.Get(record, sort.TieBreaker().Column)
	if err != nil {
		return nil, err
	}

	return NewCursor(id, key...)
}

// EncodeCursor derives the cursor of record under sort and encodes it.
func EncodeCursor[T any](record T, sort Orderings, getters Getters[T]) (string, error) {
	c, err := CursorFromRecord(record, sort, getters)
	if err != nil {
		return "", err
	}

	return c.Encode(sort)
}

// cursorElement is the serialized form of one cursor value: the column it
// belongs to, the operator implied by the ordering direction, the value type
// tag and the value itself.
type cursorElement struct {
	Column   string          `json:"c"`
	Operator Operator        `json:"o"`
	Tag      valueTag        `json:"t"`
	Value    json.RawMessage `json:"v"`
}

type cursorPayload struct {
	Value []cursorElement `json:"v"`
	ID    cursorElement   `json:"id"`
}

func newCursorElement(orderBy OrderBy, v any) (cursorElement, error) {
	tag, jsonValue, err := tagValue(v)
	if err != nil {
		return cursorElement{}, fmt.Errorf("column '%s': %w", orderBy.Column, err)
	}
	if !orderBy.Kind.acceptsTag(tag) {
		return cursorElement{}, fmt.Errorf("column '%s': %T value for %s column", orderBy.Column, v, orderBy.Kind)
	}

	raw, err := json.Marshal(jsonValue)
	if err != nil {
		return cursorElement{}, fmt.Errorf("column '%s': %w", orderBy.Column, err)
	}

	operator, err := orderBy.Direction.SeekOperator()
	if err != nil {
		return cursorElement{}, err
	}

	return cursorElement{
		Column:   orderBy.Column,
		Operator: operator,
		Tag:      tag,
		Value:    raw,
	}, nil
}

// Encode serializes c into an opaque base64url token bound to sort.
func (c *Cursor) Encode(sort Orderings) (string, error) {
	if c == nil {
		return "", nil
	}

	if err := sort.validate(); err != nil {
		return "", fmt.Errorf("cannot encode cursor: %w", err)
	}

	keys := sort.Keys()
	if len(c.Key) != len(keys) {
		return "", fmt.Errorf("cannot encode cursor: %d key values for %d orderings", len(c.Key), len(keys))
	}

	payload := cursorPayload{Value: make([]cursorElement, 0, len(keys))}
	for i, orderBy := range keys {
		elem, err := newCursorElement(orderBy, c.Key[i])
		if err != nil {
			return "", fmt.Errorf("cannot encode cursor: %w", err)
		}
		payload.Value = append(payload.Value, elem)
	}

	idElem, err := newCursorElement(sort.TieBreaker(), c.ID)
	if err != nil {
		return "", fmt.Errorf("cannot encode cursor: %w", err)
	}
	payload.ID = idElem

	jTok, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("cannot marshal cursor value: %w", err)
	}

	return _encoder.EncodeToString(jTok), nil
}

// DecodeCursor parses a token produced by Cursor.Encode for the same sort.
//
// It never fails: an empty, malformed or tampered token, or a token issued
// for a different ordering, yields nil, which callers treat as the start of
// the sequence.
func DecodeCursor(token string, sort Orderings) *Cursor {
	c, err := decodeCursor(token, sort)
	if err != nil {
		return nil
	}

	return c
}

func decodeCursor(token string, sort Orderings) (*Cursor, error) {
	if len(token) == 0 {
		return nil, fmt.Errorf("empty cursor")
	}

	if err := sort.validate(); err != nil {
		return nil, err
	}

	jsonData, err := _encoder.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 encoded cursor: %w", err)
	}

	var payload cursorPayload
	if err = json.Unmarshal(jsonData, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal json encoded cursor: %w", err)
	}

	keys := sort.Keys()

	// Do not allow a mismatch between cursor elements and the ordering.
	if len(payload.Value) != len(keys) {
		return nil, fmt.Errorf("cursor column number mismatch")
	}

	ret := &Cursor{Key: make([]any, 0, len(keys))}
	for i, elem := range payload.Value {
		v, err := elem.decode(keys[i])
		if err != nil {
			return nil, err
		}
		ret.Key = append(ret.Key, v)
	}

	ret.ID, err = payload.ID.decode(sort.TieBreaker())
	if err != nil {
		return nil, err
	}

	return ret, nil
}

// decode checks the element against the ordering it is expected to belong to
// and restores its value.
func (e cursorElement) decode(orderBy OrderBy) (any, error) {
	if e.Column != orderBy.Column {
		return nil, fmt.Errorf("unexpected cursor column '%s'", e.Column)
	}

	direction, ok := e.Operator.SeekDirection()
	if !ok {
		return nil, fmt.Errorf("invalid cursor operator '%s'", e.Operator)
	} else if direction != orderBy.Direction {
		return nil, fmt.Errorf("unexpected cursor operator '%s'", e.Operator)
	}

	if !orderBy.Kind.acceptsTag(e.Tag) {
		return nil, fmt.Errorf("cursor column '%s' holds '%s' value for %s column", e.Column, e.Tag, orderBy.Kind)
	}

	if len(e.Value) == 0 || string(e.Value) == "null" {
		return nil, fmt.Errorf("cursor column '%s' has no value", e.Column)
	}

	v, err := untagValue(e.Tag, e.Value)
	if err != nil {
		return nil, fmt.Errorf("cursor column '%s': %w", e.Column, err)
	}

	return v, nil
}

// Values returns Key followed by ID, aligned with the orderings it was built for.
func (c *Cursor) Values() []any {
	if c == nil {
		return nil
	}

	return append(slices.Clone(c.Key), c.ID)
}
