package selection

import "sort"

// Set is an unordered set of item ids
type Set map[string]struct{}

// NewSet creates a set holding the given ids
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is a member of the set
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts ids into the set
func (s Set) Add(ids ...string) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// Remove deletes ids from the set
func (s Set) Remove(ids ...string) {
	for _, id := range ids {
		delete(s, id)
	}
}

// Clone returns an independent copy of the set
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Equal reports whether both sets hold the same ids
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// Sorted returns the ids in lexical order
func (s Set) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Ordered returns the members in flattened display order. Members not present in
// flat are omitted.
func (s Set) Ordered(flat []Item) []string {
	ids := make([]string, 0, len(s))
	for _, item := range flat {
		if s.Has(item.ID) {
			ids = append(ids, item.ID)
		}
	}
	return ids
}
