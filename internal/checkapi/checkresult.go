package checkapi

import (
	"cmp"
	"slices"
	"time"
)

// FixOutcome tags the result of a hotfix or source fix.
type FixOutcome string

const (
	FixApplied FixOutcome = "FIXED"
	FixFailed  FixOutcome = "FIX_ERROR"
)

type FixResult struct {
	Outcome FixOutcome `json:"outcome"`
	Message string     `json:"message,omitempty"`
}

func Fixed() *FixResult { return &FixResult{Outcome: FixApplied} }

func FixError(err error) *FixResult {
	return &FixResult{Outcome: FixFailed, Message: err.Error()}
}

// CheckResult is the outcome of one check against one testable.
type CheckResult struct {
	CheckID        string `json:"check_id"`
	CheckName      string `json:"check_name"`
	CheckRationale string `json:"check_rationale,omitempty"`
	// Filename is empty for family-level results.
	Filename     string        `json:"filename,omitempty"`
	Section      string        `json:"section,omitempty"`
	Time         time.Duration `json:"time_ns"`
	Subresults   StatusList    `json:"subresults"`
	HotfixResult *FixResult    `json:"hotfix_result,omitempty"`
}

// WorstStatus is the highest subresult severity, Pass when there are none.
func (r *CheckResult) WorstStatus() StatusCode {
	return r.Subresults.WorstStatus()
}

// IsError reports whether the check hit an infrastructure fault.
func (r *CheckResult) IsError() bool {
	return r.WorstStatus() == StatusError
}

const (
	AllFontsLabel  = "All fonts"
	NoSectionLabel = "No section"
)

// RunResults holds every CheckResult of a run, in no particular order.
type RunResults struct {
	Results []*CheckResult
}

func NewRunResults(results []*CheckResult) *RunResults {
	return &RunResults{Results: results}
}

func (rr *RunResults) Len() int { return len(rr.Results) }

// WorstStatus is the maximum over all results, Pass when empty.
func (rr *RunResults) WorstStatus() StatusCode {
	worst := StatusPass
	for i, r := range rr.Results {
		if w := r.WorstStatus(); i == 0 || w > worst {
			worst = w
		}
	}
	return worst
}

// Summary counts subresults by severity.
func (rr *RunResults) Summary() map[StatusCode]int {
	out := make(map[StatusCode]int)
	for _, r := range rr.Results {
		for _, s := range r.Subresults {
			out[s.Severity]++
		}
	}
	return out
}

// Sorted returns the results ordered by section, check ID and filename.
func (rr *RunResults) Sorted() []*CheckResult {
	out := slices.Clone(rr.Results)
	slices.SortStableFunc(out, func(a, b *CheckResult) int {
		return cmp.Or(
			cmp.Compare(a.Section, b.Section),
			cmp.Compare(a.CheckID, b.CheckID),
			cmp.Compare(a.Filename, b.Filename),
		)
	})
	return out
}

// Organize groups results as filename → section → results. Family-level
// results are filed under AllFontsLabel, unsectioned ones under NoSectionLabel.
func (rr *RunResults) Organize() map[string]map[string][]*CheckResult {
	out := make(map[string]map[string][]*CheckResult)
	for _, r := range rr.Sorted() {
		file := r.Filename
		if file == "" {
			file = AllFontsLabel
		}
		section := r.Section
		if section == "" {
			section = NoSectionLabel
		}
		if out[file] == nil {
			out[file] = make(map[string][]*CheckResult)
		}
		out[file][section] = append(out[file][section], r)
	}
	return out
}
