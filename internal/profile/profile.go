// Package profile defines the shared, long-lived user profile.
//
// The profile is a set of sections, each a mapping of field name to the
// last committed value. The questionnaire engine writes to it through
// MergeSection and never owns it.
package profile

import (
	"sort"
	"sync"

	"github.com/roach88/glowprofile/internal/answer"
	"github.com/roach88/glowprofile/internal/schema"
)

// Section maps field name to value for one profile section.
type Section map[string]answer.Value

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	if s == nil {
		return nil
	}
	out := make(Section, len(s))
	for k, v := range s {
		out[k] = answer.Clone(v)
	}
	return out
}

// FieldNames returns the section's field names, sorted.
func (s Section) FieldNames() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Reader is the read side of the shared profile.
type Reader interface {
	// GetSection returns a copy of the section's current values.
	// An unknown or empty section yields an empty, non-nil Section.
	GetSection(id schema.SectionID) Section
}

// Store is the shared profile repository.
//
// MergeSection is a partial merge: fields present in partial overwrite,
// a field present with a nil value is removed, fields absent from partial
// are left as they are, and other sections are never touched. Both operations are synchronous and
// always succeed from the caller's point of view; durability is the
// implementation's concern.
type Store interface {
	Reader
	MergeSection(id schema.SectionID, partial Section)
}

// Memory is an in-memory Store safe for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	sections map[schema.SectionID]Section
}

// NewMemory creates an empty in-memory profile.
func NewMemory() *Memory {
	return &Memory{sections: make(map[schema.SectionID]Section)}
}

// GetSection implements Reader.
func (m *Memory) GetSection(id schema.SectionID) Section {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sec := m.sections[id].Clone()
	if sec == nil {
		sec = make(Section)
	}
	return sec
}

// MergeSection implements Store.
func (m *Memory) MergeSection(id schema.SectionID, partial Section) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sec, ok := m.sections[id]
	if !ok {
		sec = make(Section, len(partial))
		m.sections[id] = sec
	}
	for field, v := range partial {
		if v == nil {
			delete(sec, field)
			continue
		}
		sec[field] = answer.Clone(v)
	}
}

// Snapshot returns a deep copy of every non-empty section.
func (m *Memory) Snapshot() map[schema.SectionID]Section {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[schema.SectionID]Section, len(m.sections))
	for id, sec := range m.sections {
		if len(sec) == 0 {
			continue
		}
		out[id] = sec.Clone()
	}
	return out
}
