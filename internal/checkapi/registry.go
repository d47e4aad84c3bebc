package checkapi

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Registry is the catalog of checks, profiles and file types.
//
// It is populated before a run starts and only read afterwards.
type Registry struct {
	mu        sync.RWMutex
	checks    map[string]*Check
	profiles  map[string]*Profile
	fileTypes map[string]FileType
}

// NewRegistry returns a registry holding the built-in file types.
func NewRegistry() *Registry {
	r := &Registry{
		checks:    make(map[string]*Check),
		profiles:  make(map[string]*Profile),
		fileTypes: make(map[string]FileType),
	}
	for _, ft := range []FileType{FileTypeTTF, FileTypeMDPB, FileTypeDesignspace, FileTypeGlyphs, FileTypeLicense} {
		r.fileTypes[ft.Tag] = ft
	}
	return r
}

// RegisterCheck adds c. A duplicate ID is an error and leaves the registry unchanged.
func (r *Registry) RegisterCheck(c Check) error {
	if err := c.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.checks[c.ID]; exists {
		return fmt.Errorf("check %s already registered", c.ID)
	}
	r.checks[c.ID] = &c
	return nil
}

// RegisterProfile installs p under name. Check IDs are resolved when a plan is built.
func (r *Registry) RegisterProfile(name string, p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.profiles[name]; exists {
		return fmt.Errorf("profile %s already registered", name)
	}
	p.Name = name
	r.profiles[name] = p
	return nil
}

// RegisterFileType adds or replaces a file type.
func (r *Registry) RegisterFileType(ft FileType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fileTypes[ft.Tag] = ft
}

func (r *Registry) Check(id string) (*Check, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.checks[id]
	return c, ok
}

func (r *Registry) Profile(name string) (*Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[name]
	return p, ok
}

func (r *Registry) FileType(tag string) (FileType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ft, ok := r.fileTypes[tag]
	return ft, ok
}

// Checks returns every registered check sorted by ID.
func (r *Registry) Checks() []*Check {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := slices.Collect(maps.Values(r.checks))
	slices.SortFunc(out, func(a, b *Check) int { return strings.Compare(a.ID, b.ID) })
	return out
}

func (r *Registry) ProfileNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.profiles))
}

// Applies reports whether check c targets tt.
//
// Single-file checks apply when the file matches the check's file type.
// Family checks apply to non-empty collections with at least one matching member.
func (r *Registry) Applies(c *Check, tt TestableType) bool {
	var ft FileType
	if c.AppliesTo != "" {
		var ok bool
		if ft, ok = r.FileType(c.AppliesTo); !ok {
			return false
		}
	}
	if tt.IsSingle() {
		if c.IsFamilyCheck() {
			return false
		}
		return c.AppliesTo == "" || ft.Applies(tt.Testable())
	}
	if !c.IsFamilyCheck() || tt.Collection().Len() == 0 {
		return false
	}
	if c.AppliesTo == "" {
		return true
	}
	return slices.ContainsFunc(tt.Collection().Testables, ft.Applies)
}
