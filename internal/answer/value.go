// Package answer holds answer values and the per-run answer store.
package answer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a sealed interface over answer shapes.
// Only Text and List implement it. A nil Value means "unanswered".
type Value interface {
	// IsEmpty reports whether the value carries no usable answer.
	IsEmpty() bool
	value()
}

// Text is a scalar answer: single-choice option value, free text, or a
// number carried as its string form.
type Text string

func (Text) value() {}

// IsEmpty reports whether the text is blank.
func (t Text) IsEmpty() bool { return strings.TrimSpace(string(t)) == "" }

// List is a multi-choice answer in selection order (oldest first).
type List []string

func (List) value() {}

// IsEmpty reports whether no item is selected.
func (l List) IsEmpty() bool { return len(l) == 0 }

// Contains reports whether item is selected.
func (l List) Contains(item string) bool {
	for _, v := range l {
		if v == item {
			return true
		}
	}
	return false
}

// Clone returns a copy of v that shares no memory with it.
func Clone(v Value) Value {
	switch val := v.(type) {
	case List:
		if val == nil {
			return List(nil)
		}
		out := make(List, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}

// Equal reports whether two values hold the same answer.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case Text:
		bv, ok := b.(Text)
		return ok && av == bv
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// FromAny converts a decoded YAML/JSON value into a Value.
// Strings become Text, numbers become their decimal Text form, and
// sequences of strings become List.
func FromAny(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return nil, nil
	case Value:
		return Clone(v), nil
	case string:
		return Text(v), nil
	case int:
		return Text(strconv.Itoa(v)), nil
	case int64:
		return Text(strconv.FormatInt(v, 10)), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("unsupported number %v", v)
		}
		return Text(strconv.FormatFloat(v, 'f', -1, 64)), nil
	case []string:
		return Clone(List(v)), nil
	case []any:
		out := make(List, 0, len(v))
		for i, elem := range v {
			s, ok := elem.(string)
			if !ok {
				return nil, fmt.Errorf("[%d]: list items must be strings, got %T", i, elem)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported answer type %T", x)
	}
}

// ToAny converts a Value into plain Go data (string or []string).
func ToAny(v Value) any {
	switch val := v.(type) {
	case Text:
		return string(val)
	case List:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return nil
	}
}
