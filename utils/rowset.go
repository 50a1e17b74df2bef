package utils

// RowSet collects rendered rows for one relation of one listing and
// suppresses exact duplicates. It must not outlive the listing it was
// created for.
type RowSet struct {
	seen  map[string]struct{}
	order []string
}

// NewRowSet creates an empty RowSet.
func NewRowSet() *RowSet {
	return &RowSet{seen: make(map[string]struct{})}
}

// Add returns true if the row was newly added, false if already present.
func (s *RowSet) Add(row string) bool {
	if _, exists := s.seen[row]; exists {
		return false
	}
	s.seen[row] = struct{}{}
	s.order = append(s.order, row)
	return true
}

// Contains returns true if the exact row has already been added.
func (s *RowSet) Contains(row string) bool {
	_, exists := s.seen[row]
	return exists
}

// Rows returns the distinct rows in first-seen order.
func (s *RowSet) Rows() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of distinct rows.
func (s *RowSet) Len() int {
	return len(s.order)
}
