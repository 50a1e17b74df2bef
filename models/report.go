package models

// RunReport holds counters accumulated over one run.
type RunReport struct {
	Documents     int
	Listings      int
	Rows          map[Relation]int
	Skipped       int
	UnknownMonths int
	Loaded        map[Relation]int
}

// NewRunReport returns a report with its maps initialised.
func NewRunReport() *RunReport {
	return &RunReport{
		Rows:   make(map[Relation]int),
		Loaded: make(map[Relation]int),
	}
}

// TotalRows sums written rows across relations.
func (r *RunReport) TotalRows() int {
	total := 0
	for _, n := range r.Rows {
		total += n
	}
	return total
}
