package entities

// VisitKey identifies one vendoring step inside a walk.
type VisitKey struct {
	Path string // Absolute, cleaned
	URL  string
}

// VisitedSet records the (path, url) pairs a single walk already handled.
// It is owned by one walk and never shared or persisted.
type VisitedSet struct {
	seen map[VisitKey]struct{}
}

// NewVisitedSet returns an empty set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{seen: make(map[VisitKey]struct{})}
}

// Mark adds the key and reports whether it was newly added.
func (s *VisitedSet) Mark(key VisitKey) bool {
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Len returns the number of marked keys.
func (s *VisitedSet) Len() int {
	return len(s.seen)
}
