package merge

// SeenSet holds every key already present in the consolidated output plus the
// keys accepted during the current run. It only grows.
type SeenSet struct {
	keys map[IdentityKey]struct{}
}

// NewSeenSet creates an empty set.
func NewSeenSet() *SeenSet {
	return &SeenSet{keys: make(map[IdentityKey]struct{})}
}

// Contains reports whether key has been seen.
func (s *SeenSet) Contains(key IdentityKey) bool {
	_, ok := s.keys[key]
	return ok
}

// Add inserts key and reports whether it was new.
func (s *SeenSet) Add(key IdentityKey) bool {
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

// Len returns the number of keys.
func (s *SeenSet) Len() int {
	return len(s.keys)
}
