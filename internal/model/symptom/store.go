package symptom

import "strings"

// Store exposes symptom lookup for the assistant and HTTP handlers.
type Store interface {
	List() []Symptom
	FindByID(id string) (Symptom, bool)
	Match(text string) (Symptom, bool)
}

// MemoryStore implements Store over an in-memory slice.
type MemoryStore struct {
	items []Symptom
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied symptoms.
func NewMemoryStore(items []Symptom) *MemoryStore {
	return &MemoryStore{items: append([]Symptom(nil), items...)}
}

// List returns the symptom table.
func (s *MemoryStore) List() []Symptom {
	return append([]Symptom(nil), s.items...)
}

// FindByID looks up a symptom by identifier.
func (s *MemoryStore) FindByID(id string) (Symptom, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Symptom{}, false
}

// Match returns the first entry whose name or any keyword occurs in text,
// case-insensitively.
func (s *MemoryStore) Match(text string) (Symptom, bool) {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return Symptom{}, false
	}
	for _, item := range s.items {
		if strings.Contains(lower, strings.ToLower(item.Name)) {
			return item, true
		}
		for _, kw := range item.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return item, true
			}
		}
	}
	return Symptom{}, false
}
