package engine

import (
	"fmt"

	"fontspector/internal/checkapi"
)

// Plan is the flattened, deterministic list of check executions for a run.
type Plan struct {
	Items      []checkapi.PlanItem
	Unresolved []checkapi.UnresolvedCheck
	Files      int
	Families   int
}

type PlanOptions struct {
	Includes       []string
	Excludes       []string
	Base           *checkapi.Context
	PerCheckConfig map[string]any
}

func BuildPlan(reg *checkapi.Registry, profile *checkapi.Profile, collections []*checkapi.TestableCollection, opts PlanOptions) (*Plan, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	if profile == nil {
		return nil, fmt.Errorf("profile is nil")
	}
	base := opts.Base
	if base == nil {
		base = checkapi.NewContext()
	}

	testables := Testables(collections)
	items, unresolved := profile.CheckOrder(opts.Includes, opts.Excludes, reg, base, opts.PerCheckConfig, testables)

	p := &Plan{Items: items, Unresolved: unresolved}
	for _, tt := range testables {
		if tt.IsSingle() {
			p.Files++
		} else {
			p.Families++
		}
	}
	return p, nil
}

// UnresolvedResults reports each profile entry without a registered check as
// an Error result so that it shows up in reports and the exit code.
func (p *Plan) UnresolvedResults() []*checkapi.CheckResult {
	out := make([]*checkapi.CheckResult, 0, len(p.Unresolved))
	for _, u := range p.Unresolved {
		out = append(out, &checkapi.CheckResult{
			CheckID:   u.CheckID,
			CheckName: u.CheckID,
			Section:   u.Section,
			Subresults: checkapi.StatusList{
				checkapi.ErrorStatus("", fmt.Sprintf("Check %s is listed in the profile but is not registered", u.CheckID)),
			},
		})
	}
	return out
}

// Describe is the one-line run announcement.
func (p *Plan) Describe() string {
	n := len(p.Items)
	return fmt.Sprintf("Running %d check%s on %d file%s in %d famil%s",
		n, plural(n, "", "s"),
		p.Files, plural(p.Files, "", "s"),
		p.Families, plural(p.Families, "y", "ies"),
	)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
