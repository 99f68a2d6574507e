// Package rules evaluates answers against the constraints a question carries.
//
// Evaluation order:
//  1. An optional question accepts anything, including no answer.
//  2. A required question rejects a missing or empty answer.
//  3. Multi-choice answers must hold at least MinItems (and at most MaxItems) items.
//  4. Numeric and scalar-range answers must parse as numbers within [Min, Max].
//  5. Free-text answers only need to be present.
//
// The engine only consumes the boolean (IsAnswerValid / IsSectionValid);
// Check exposes which rule failed for diagnostics.
package rules

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/glowprofile/internal/answer"
	"github.com/roach88/glowprofile/internal/question"
)

// Rule identifies the check that rejected an answer.
type Rule string

const (
	// RuleNone is the Failed rule of a valid answer.
	RuleNone Rule = ""
	// RuleRequired rejects a missing or empty answer to a required question.
	RuleRequired Rule = "required"
	// RuleType rejects a value of the wrong shape, such as a list answer
	// to a single-choice question.
	RuleType Rule = "type"
	// RuleMinItems rejects a multi-choice answer with fewer than min_items.
	RuleMinItems Rule = "min_items"
	// RuleMaxItems rejects a multi-choice answer with more than max_items.
	RuleMaxItems Rule = "max_items"
	// RuleNotNumeric rejects numeric input that does not parse as a number.
	RuleNotNumeric Rule = "not_numeric"
	// RuleBelowMin rejects a number below the field's min.
	RuleBelowMin Rule = "below_min"
	// RuleAboveMax rejects a number above the field's max.
	RuleAboveMax Rule = "above_max"
)

// Result is the outcome of checking one answer.
type Result struct {
	Valid  bool `json:"valid"`
	Failed Rule `json:"failed_rule,omitempty"`
}

var valid = Result{Valid: true}

func fail(r Rule) Result { return Result{Failed: r} }

// Lookup reads answers by question id. *answer.Store satisfies it.
type Lookup interface {
	Get(id string) (answer.Value, bool)
}

// Check evaluates v against q. A nil v means unanswered.
func Check(q question.Question, v answer.Value) Result {
	if !q.Required {
		return valid
	}
	if v == nil || v.IsEmpty() {
		return fail(RuleRequired)
	}

	switch q.Type {
	case question.MultiChoice:
		list, ok := v.(answer.List)
		if !ok {
			return fail(RuleType)
		}
		if q.MinItems != nil && len(list) < *q.MinItems {
			return fail(RuleMinItems)
		}
		if q.MaxItems != nil && len(list) > *q.MaxItems {
			return fail(RuleMaxItems)
		}
		return valid

	case question.Numeric, question.ScalarRange:
		text, ok := v.(answer.Text)
		if !ok {
			return fail(RuleType)
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(string(text)), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return fail(RuleNotNumeric)
		}
		if q.Min != nil && n < *q.Min {
			return fail(RuleBelowMin)
		}
		if q.Max != nil && n > *q.Max {
			return fail(RuleAboveMax)
		}
		return valid

	case question.SingleChoice, question.FreeText:
		if _, ok := v.(answer.Text); !ok {
			return fail(RuleType)
		}
		return valid

	default:
		return fail(RuleType)
	}
}

// IsAnswerValid reports whether v satisfies q.
func IsAnswerValid(q question.Question, v answer.Value) bool {
	return Check(q, v).Valid
}

// IsSectionValid reports whether every question has a valid answer.
func IsSectionValid(qs []question.Question, answers Lookup) bool {
	for _, q := range qs {
		v, _ := answers.Get(q.ID)
		if !IsAnswerValid(q, v) {
			return false
		}
	}
	return true
}

// Normalize shapes a value at the point of mutation.
//
// For multi-choice questions duplicates collapse to their most recent
// selection and, when MaxItems is set, the oldest selections are evicted
// until the list fits (sliding window). Selecting one more item than
// allowed therefore drops the least recently selected item instead of
// rejecting the write. Numeric text is trimmed and free text is put in
// Unicode NFC form. Other values pass through.
func Normalize(q question.Question, v answer.Value) answer.Value {
	switch val := v.(type) {
	case answer.List:
		if q.Type != question.MultiChoice {
			return val
		}
		list := dedupeKeepLatest(val)
		if q.MaxItems != nil && len(list) > *q.MaxItems {
			keep := max(*q.MaxItems, 0)
			list = list[len(list)-keep:]
		}
		out := make(answer.List, len(list))
		copy(out, list)
		return out

	case answer.Text:
		switch q.Type {
		case question.Numeric, question.ScalarRange:
			return answer.Text(strings.TrimSpace(string(val)))
		case question.FreeText:
			return answer.Text(norm.NFC.String(string(val)))
		}
		return val

	default:
		return v
	}
}

// Toggle adds item to a multi-choice answer, or removes it when already
// selected. The result is normalized, so adding past MaxItems evicts the
// oldest selection.
func Toggle(q question.Question, current answer.Value, item string) answer.Value {
	list, _ := current.(answer.List)

	next := make(answer.List, 0, len(list)+1)
	removed := false
	for _, v := range list {
		if v == item {
			removed = true
			continue
		}
		next = append(next, v)
	}
	if !removed {
		next = append(next, item)
	}

	return Normalize(q, next)
}

// dedupeKeepLatest keeps only the last occurrence of each item, preserving
// relative order of those occurrences.
func dedupeKeepLatest(list answer.List) answer.List {
	last := make(map[string]int, len(list))
	for i, v := range list {
		last[v] = i
	}
	out := make(answer.List, 0, len(last))
	for i, v := range list {
		if last[v] == i {
			out = append(out, v)
		}
	}
	return out
}
