// Package dirty keeps the set of form field names whose values currently
// differ from their baseline.
package dirty

import "sort"

// NameSet is a set of dirty field names. A name that is absent is clean.
// The zero value is not usable; create one with NewNameSet.
type NameSet struct {
	names map[string]struct{}
}

func NewNameSet() *NameSet {
	return &NameSet{names: make(map[string]struct{})}
}

// Add marks name as dirty.
func (s *NameSet) Add(name string) {
	s.names[name] = struct{}{}
}

// Delete marks name as clean.
func (s *NameSet) Delete(name string) {
	delete(s.names, name)
}

func (s *NameSet) Clear() {
	s.names = make(map[string]struct{})
}

// Merge adds every name that is dirty in other. Names dirty only in s stay
// dirty.
func (s *NameSet) Merge(other *NameSet) {
	if other == nil {
		return
	}
	for name := range other.names {
		s.Add(name)
	}
}

func (s *NameSet) Has(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Size returns the number of dirty names.
func (s *NameSet) Size() int {
	return len(s.names)
}

// Names returns the dirty names in sorted order.
func (s *NameSet) Names() []string {
	out := make([]string, 0, len(s.names))
	for name := range s.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *NameSet) Clone() *NameSet {
	c := &NameSet{names: make(map[string]struct{}, len(s.names))}
	for name := range s.names {
		c.names[name] = struct{}{}
	}
	return c
}
