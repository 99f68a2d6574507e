package answer

// Store is the working set of answers for one questionnaire run, keyed by
// question id. Absence of a key means the question is unanswered.
//
// Store is not safe for concurrent use: it is owned by the run's single
// writer. Values are cloned on the way in and out so callers never alias
// stored lists.
type Store struct {
	values map[string]Value
	order  []string // ids in first-write order
}

// NewStore creates an empty answer store.
func NewStore() *Store {
	return &Store{values: make(map[string]Value)}
}

// Get returns the answer for a question id.
func (s *Store) Get(id string) (Value, bool) {
	v, ok := s.values[id]
	if !ok {
		return nil, false
	}
	return Clone(v), true
}

// Set records an answer. A nil value removes the answer.
func (s *Store) Set(id string, v Value) {
	if v == nil {
		s.Delete(id)
		return
	}
	if _, ok := s.values[id]; !ok {
		s.order = append(s.order, id)
	}
	s.values[id] = Clone(v)
}

// Merge records every answer in m.
// Keys are applied in the order given by ids when provided, so first-write
// order stays deterministic; keys of m missing from ids are ignored.
func (s *Store) Merge(ids []string, m map[string]Value) {
	for _, id := range ids {
		if v, ok := m[id]; ok {
			s.Set(id, v)
		}
	}
}

// Delete removes an answer.
func (s *Store) Delete(id string) {
	if _, ok := s.values[id]; !ok {
		return
	}
	delete(s.values, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of answered questions.
func (s *Store) Len() int {
	return len(s.values)
}

// IDs returns answered question ids in first-write order.
func (s *Store) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Snapshot returns a copy of all answers.
func (s *Store) Snapshot() map[string]Value {
	out := make(map[string]Value, len(s.values))
	for id, v := range s.values {
		out[id] = Clone(v)
	}
	return out
}
