// Package googlefonts holds the Google Fonts onboarding profile: licensing,
// METADATA.pb and catalog checks on top of the universal profile.
package googlefonts

import (
	"fontspector/internal/checkapi"
	"fontspector/internal/profiles/universal"
	"fontspector/internal/upstream"
)

const ProfileName = "googlefonts"

// Options wires external collaborators into the checks.
type Options struct {
	// Upstream answers catalog lookups. Nil skips the upstream checks.
	Upstream upstream.Lookup
}

// Profile configuration for checks defined elsewhere.
var (
	fileSizeDefaults = map[string]any{
		"WARN_SIZE": 1048576, // 1 MB
		"FAIL_SIZE": 9437184, // 9 MB
	}
	unitsPerEmOverrides = []checkapi.Override{{
		Code:   "suboptimal",
		Status: checkapi.StatusFail,
		Reason: "Google Fonts only accepts a power of two, 1000 or 2000.",
	}}
)

// New returns the plugin registering the googlefonts checks and profile.
// The universal profile must already be registered.
func New(opts Options) checkapi.Plugin {
	listed := ListedUpstream(opts.Upstream)
	return checkapi.PluginFunc(func(reg *checkapi.Registry) error {
		return checkapi.NewProfileBuilder().
			IncludeProfile(universal.ProfileName).
			AddSection("Google Fonts Licensing").
			AddAndRegisterCheck(FSType).
			AddSection("Google Fonts Metadata").
			AddAndRegisterCheck(MetadataParses).
			AddAndRegisterCheck(MetadataFilenames).
			AddAndRegisterCheck(listed).
			WithConfigurationDefaults(universal.FileSize.ID, fileSizeDefaults).
			WithOverrides("opentype/unitsperem", unitsPerEmOverrides).
			Build(ProfileName, reg)
	})
}
