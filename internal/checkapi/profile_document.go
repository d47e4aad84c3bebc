package checkapi

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// ExternalCheckSpec declares a command-backed check inside a profile document.
type ExternalCheckSpec struct {
	Title     string   `toml:"title"`
	Rationale string   `toml:"rationale"`
	AppliesTo string   `toml:"applies_to"`
	Command   []string `toml:"command"`
}

// ProfileDocument is a declarative profile:
//
//	include_profiles = ["universal"]
//
//	[sections]
//	"Vendor Checks" = ["vendor/check_a", "opentype/fsselection"]
//
//	[overrides]
//	"vendor/check_a" = [{ code = "bad-foo", status = "WARN", reason = "tolerated" }]
//
//	["universal/file_size"]
//	WARN_SIZE = 1048576
type ProfileDocument struct {
	IncludeProfiles []string
	Sections        []Section
	Overrides       map[string][]Override
	Defaults        map[string]map[string]any
	ExternalChecks  map[string]ExternalCheckSpec
}

type profileDocumentFile struct {
	IncludeProfiles []string                     `toml:"include_profiles"`
	Sections        map[string][]string          `toml:"sections"`
	Overrides       map[string][]Override        `toml:"overrides"`
	ExternalChecks  map[string]ExternalCheckSpec `toml:"external_checks"`
}

var reservedProfileKeys = map[string]bool{
	"include_profiles": true,
	"sections":         true,
	"overrides":        true,
	"external_checks":  true,
}

// ParseProfileDocument decodes a TOML profile, keeping section order.
func ParseProfileDocument(data []byte) (*ProfileDocument, error) {
	var file profileDocumentFile
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return nil, ParsingError("profile", err)
	}
	if len(file.Sections) == 0 {
		return nil, ParsingError("profile", fmt.Errorf("no [sections] table"))
	}

	doc := &ProfileDocument{
		IncludeProfiles: file.IncludeProfiles,
		Overrides:       file.Overrides,
		Defaults:        make(map[string]map[string]any),
		ExternalChecks:  file.ExternalChecks,
	}
	for _, key := range md.Keys() {
		if len(key) == 2 && key[0] == "sections" {
			doc.Sections = append(doc.Sections, Section{Name: key[1], CheckIDs: file.Sections[key[1]]})
		}
	}

	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, ParsingError("profile", err)
	}
	for key, value := range raw {
		if reservedProfileKeys[key] {
			continue
		}
		if table, ok := value.(map[string]any); ok {
			doc.Defaults[key] = table
		}
	}
	return doc, nil
}

// Builder turns the document into a ProfileBuilder. External checks are not
// registered here; callers register them before building.
func (d *ProfileDocument) Builder() *ProfileBuilder {
	b := NewProfileBuilder()
	for _, name := range d.IncludeProfiles {
		b.IncludeProfile(name)
	}
	for _, s := range d.Sections {
		b.AddSection(s.Name)
		for _, id := range s.CheckIDs {
			b.AddCheck(id)
		}
	}
	for id, ov := range d.Overrides {
		b.WithOverrides(id, ov)
	}
	for id, defaults := range d.Defaults {
		b.WithConfigurationDefaults(id, defaults)
	}
	return b
}
