package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/glowprofile/internal/answer"
	"github.com/roach88/glowprofile/internal/profile"
)

// marshalValue converts one field value to canonical JSON TEXT.
func marshalValue(v answer.Value) (string, error) {
	data, err := answer.MarshalValue(v)
	if err != nil {
		return "", fmt.Errorf("marshal value: %w", err)
	}
	return string(data), nil
}

// marshalSection converts a section mapping to a canonical JSON object.
// Nil values are left out, matching what a merge writes.
func marshalSection(sec profile.Section) (string, error) {
	m := make(map[string]answer.Value, len(sec))
	for k, v := range sec {
		if v != nil {
			m[k] = v
		}
	}
	data, err := answer.MarshalCanonical(m)
	if err != nil {
		return "", fmt.Errorf("marshal section: %w", err)
	}
	return string(data), nil
}

// marshalCleared lists the fields partial removes, as a sorted JSON array.
func marshalCleared(sec profile.Section) (string, error) {
	cleared := []string{}
	for _, field := range sec.FieldNames() {
		if sec[field] == nil {
			cleared = append(cleared, field)
		}
	}
	data, err := answer.MarshalCanonical(cleared)
	if err != nil {
		return "", fmt.Errorf("marshal cleared fields: %w", err)
	}
	return string(data), nil
}

// unmarshalSection parses a JSON object written by marshalSection.
func unmarshalSection(data string) (profile.Section, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal section: %w", err)
	}
	sec := make(profile.Section, len(raw))
	for k, r := range raw {
		v, err := answer.UnmarshalValue(r)
		if err != nil {
			return nil, fmt.Errorf("unmarshal section field %q: %w", k, err)
		}
		sec[k] = v
	}
	return sec, nil
}
