package dataset

import "fmt"

// Issue is one record that failed validation and was left out of the dataset.
type Issue struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Report describes what a parse kept and what it quarantined.
type Report struct {
	Rounds        int     `json:"rounds"`
	Players       int     `json:"players"`
	JourneyPoints int     `json:"journeyPoints"`
	NonFinite     int     `json:"nonFinite"`
	Issues        []Issue `json:"issues"`
	// Cause is set when an empty dataset was substituted for an unreadable source.
	Cause string `json:"cause,omitempty"`
}

func (r *Report) quarantine(path, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Path: path, Reason: fmt.Sprintf(format, args...)})
}

// Quarantined returns the number of records left out
func (r *Report) Quarantined() int {
	if r == nil {
		return 0
	}
	return len(r.Issues)
}

// Clean reports whether every record passed validation
func (r *Report) Clean() bool {
	return r.Quarantined() == 0 && r.Cause == ""
}
