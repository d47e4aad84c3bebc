package checkapi

import (
	"slices"
	"strings"
)

// Section is a named, ordered group of check IDs.
type Section struct {
	Name     string
	CheckIDs []string
}

// Profile is a named selection of checks. It refers to checks by ID only;
// IDs are resolved through a Registry when the execution plan is built.
type Profile struct {
	Name      string
	Sections  []Section
	Overrides map[string][]Override
	Defaults  map[string]map[string]any
}

func NewProfile() *Profile {
	return &Profile{
		Overrides: make(map[string][]Override),
		Defaults:  make(map[string]map[string]any),
	}
}

// CheckIDs lists every referenced ID in section order, without duplicates.
func (p *Profile) CheckIDs() []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range p.Sections {
		for _, id := range s.CheckIDs {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

func (p *Profile) section(name string) *Section {
	for i := range p.Sections {
		if p.Sections[i].Name == name {
			return &p.Sections[i]
		}
	}
	return nil
}

// PlanItem is one unit of work: a check, its target and its specialized context.
type PlanItem struct {
	Section  string
	Testable TestableType
	Check    *Check
	Context  *Context
}

// UnresolvedCheck is a profile entry naming a check the registry does not know.
type UnresolvedCheck struct {
	Section string
	CheckID string
}

// SelectCheckID applies include and exclude substring filters to id.
// An empty include list selects everything.
func SelectCheckID(id string, includes, excludes []string) bool {
	if len(includes) > 0 && !slices.ContainsFunc(includes, func(s string) bool { return strings.Contains(id, s) }) {
		return false
	}
	return !slices.ContainsFunc(excludes, func(s string) bool { return strings.Contains(id, s) })
}

// CheckOrder flattens the profile into an execution plan.
//
// Sections are walked in declaration order and check IDs in section order;
// for each check the testables are taken in the given order. Every target
// shares one cache among all checks that run against it. IDs that pass the
// filters but are not registered are returned separately.
func (p *Profile) CheckOrder(
	includes, excludes []string,
	reg *Registry,
	base *Context,
	perCheckConfig map[string]any,
	testables []TestableType,
) ([]PlanItem, []UnresolvedCheck) {
	var (
		plan       []PlanItem
		unresolved []UnresolvedCheck
	)
	caches := make(map[TestableType]*Cache, len(testables))
	cacheFor := func(tt TestableType) *Cache {
		c, ok := caches[tt]
		if !ok {
			c = NewCache()
			caches[tt] = c
		}
		return c
	}

	for _, section := range p.Sections {
		for _, id := range section.CheckIDs {
			if !SelectCheckID(id, includes, excludes) {
				continue
			}
			check, ok := reg.Check(id)
			if !ok {
				unresolved = append(unresolved, UnresolvedCheck{Section: section.Name, CheckID: id})
				continue
			}
			for _, tt := range testables {
				if !reg.Applies(check, tt) {
					continue
				}
				cx := base.Specialize(check, perCheckConfig, p.Defaults[id], p.Overrides[id], cacheFor(tt))
				plan = append(plan, PlanItem{Section: section.Name, Testable: tt, Check: check, Context: cx})
			}
		}
	}
	return plan, unresolved
}
