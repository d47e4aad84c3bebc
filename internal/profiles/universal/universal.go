// Package universal holds checks that apply to any font, whatever its
// distribution channel.
package universal

import (
	"fontspector/internal/checkapi"
	"fontspector/internal/profiles/opentype"
)

const ProfileName = "universal"

func Checks() []checkapi.Check {
	return []checkapi.Check{
		FileSize,
		WhitespaceGlyphs,
		TrailingSpaces,
	}
}

// Register installs the universal checks and profile. The opentype profile
// must already be registered.
func Register(reg *checkapi.Registry) error {
	b := checkapi.NewProfileBuilder().
		IncludeProfile(opentype.ProfileName).
		AddSection("Universal Profile Checks")
	for _, c := range Checks() {
		b.AddAndRegisterCheck(c)
	}
	return b.Build(ProfileName, reg)
}

var Plugin = checkapi.PluginFunc(Register)
