package checkapi

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ProfileBuilder assembles a Profile fluently. Steps are recorded and
// applied in order by Build, so included profiles and checks registered via
// AddAndRegisterCheck only need to exist by then.
//
//	err := checkapi.NewProfileBuilder().
//		IncludeProfile("universal").
//		ExcludeCheck("opentype/monospace").
//		AddSection("Vendor Checks").
//		AddAndRegisterCheck(vendorCheck).
//		Build("vendor", reg)
type ProfileBuilder struct {
	steps []func(*assembly) error
}

type assembly struct {
	reg     *Registry
	profile *Profile
	current string
}

func NewProfileBuilder() *ProfileBuilder {
	return &ProfileBuilder{}
}

func (b *ProfileBuilder) step(fn func(*assembly) error) *ProfileBuilder {
	b.steps = append(b.steps, fn)
	return b
}

// IncludeProfile copies the sections, overrides and defaults of a registered profile.
func (b *ProfileBuilder) IncludeProfile(name string) *ProfileBuilder {
	return b.step(func(a *assembly) error {
		other, ok := a.reg.Profile(name)
		if !ok {
			return fmt.Errorf("included profile %s not found", name)
		}
		for _, s := range other.Sections {
			a.appendChecks(s.Name, s.CheckIDs...)
		}
		for id, ov := range other.Overrides {
			a.profile.Overrides[id] = append(a.profile.Overrides[id], ov...)
		}
		for id, defaults := range other.Defaults {
			merged := maps.Clone(defaults)
			if merged == nil {
				merged = make(map[string]any)
			}
			maps.Copy(merged, a.profile.Defaults[id])
			a.profile.Defaults[id] = merged
		}
		return nil
	})
}

// AddSection starts a section; later AddCheck calls append to it.
func (b *ProfileBuilder) AddSection(name string) *ProfileBuilder {
	return b.step(func(a *assembly) error {
		a.current = name
		a.appendChecks(name)
		return nil
	})
}

func (b *ProfileBuilder) AddCheck(id string) *ProfileBuilder {
	return b.step(func(a *assembly) error {
		if a.current == "" {
			return fmt.Errorf("check %s added before any section", id)
		}
		a.appendChecks(a.current, id)
		return nil
	})
}

// AddAndRegisterCheck registers c and adds it to the current section.
func (b *ProfileBuilder) AddAndRegisterCheck(c Check) *ProfileBuilder {
	return b.step(func(a *assembly) error {
		if a.current == "" {
			return fmt.Errorf("check %s added before any section", c.ID)
		}
		if err := a.reg.RegisterCheck(c); err != nil {
			return err
		}
		a.appendChecks(a.current, c.ID)
		return nil
	})
}

// ExcludeCheck removes id from every section assembled so far.
func (b *ProfileBuilder) ExcludeCheck(id string) *ProfileBuilder {
	return b.step(func(a *assembly) error {
		for i := range a.profile.Sections {
			s := &a.profile.Sections[i]
			s.CheckIDs = slices.DeleteFunc(s.CheckIDs, func(x string) bool { return x == id })
		}
		return nil
	})
}

func (b *ProfileBuilder) WithOverrides(id string, overrides []Override) *ProfileBuilder {
	return b.step(func(a *assembly) error {
		a.profile.Overrides[id] = append(a.profile.Overrides[id], overrides...)
		return nil
	})
}

// WithConfigurationDefaults sets defaults for id; user configuration takes precedence.
func (b *ProfileBuilder) WithConfigurationDefaults(id string, defaults map[string]any) *ProfileBuilder {
	return b.step(func(a *assembly) error {
		if a.profile.Defaults[id] == nil {
			a.profile.Defaults[id] = make(map[string]any)
		}
		maps.Copy(a.profile.Defaults[id], defaults)
		return nil
	})
}

func (a *assembly) appendChecks(section string, ids ...string) {
	s := a.profile.section(section)
	if s == nil {
		a.profile.Sections = append(a.profile.Sections, Section{Name: section})
		s = &a.profile.Sections[len(a.profile.Sections)-1]
	}
	for _, id := range ids {
		if !slices.Contains(s.CheckIDs, id) {
			s.CheckIDs = append(s.CheckIDs, id)
		}
	}
}

func (b *ProfileBuilder) assemble(reg *Registry) (*Profile, error) {
	a := &assembly{reg: reg, profile: NewProfile()}
	for _, step := range b.steps {
		if err := step(a); err != nil {
			return nil, err
		}
	}
	return a.profile, nil
}

// Build assembles the profile, verifies that every referenced check is
// registered and installs it under name.
func (b *ProfileBuilder) Build(name string, reg *Registry) error {
	p, err := b.assemble(reg)
	if err != nil {
		return fmt.Errorf("profile %s: %w", name, err)
	}
	var errs []error
	for _, id := range p.CheckIDs() {
		if _, ok := reg.Check(id); !ok {
			errs = append(errs, fmt.Errorf("unknown check %s", id))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("profile %s: %w", name, err)
	}
	return reg.RegisterProfile(name, p)
}

// BuildDeferred is Build without the unknown-check verification; unresolved
// IDs surface when the execution plan is built.
func (b *ProfileBuilder) BuildDeferred(name string, reg *Registry) error {
	p, err := b.assemble(reg)
	if err != nil {
		return fmt.Errorf("profile %s: %w", name, err)
	}
	return reg.RegisterProfile(name, p)
}
