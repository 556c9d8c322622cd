package sync

import "time"

// Result is the outcome of one unit's run. A unit always returns a Result;
// failures are carried in Err, never panicked or re-thrown.
type Result struct {
	Unit      string        `json:"unit"`
	Doctype   Doctype       `json:"doc_type"`
	Success   bool          `json:"success"`
	Changed   bool          `json:"changed"`
	Pushed    int           `json:"pushed"`
	Pulled    int           `json:"pulled"`
	Failed    int           `json:"failed"`
	Conflicts int           `json:"conflicts"`
	Duration  time.Duration `json:"duration_ns"`
	Err       error         `json:"-"`
	Error     string        `json:"error,omitempty"`
}

// Report aggregates the results of one engine run.
type Report struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Results   []Result      `json:"results"`
	Success   bool          `json:"success"`
}

// ByDoctype returns the result for one doctype, if present in the report.
func (r Report) ByDoctype(dt Doctype) (Result, bool) {
	for _, res := range r.Results {
		if res.Doctype == dt {
			return res, true
		}
	}
	return Result{}, false
}

// Totals sums pushed/pulled/conflict counts across all units.
func (r Report) Totals() (pushed, pulled, conflicts int) {
	for _, res := range r.Results {
		pushed += res.Pushed
		pulled += res.Pulled
		conflicts += res.Conflicts
	}
	return pushed, pulled, conflicts
}
