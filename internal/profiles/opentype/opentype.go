// Package opentype holds checks against the OpenType specification itself.
package opentype

import "fontspector/internal/checkapi"

const ProfileName = "opentype"

// Checks lists every check in this package, in profile order.
func Checks() []checkapi.Check {
	return []checkapi.Check{
		RequiredTables,
		UnitsPerEm,
		FamilyEqualUnitsPerEm,
	}
}

// Register installs the checks and the opentype profile.
func Register(reg *checkapi.Registry) error {
	b := checkapi.NewProfileBuilder().AddSection("OpenType Specification Checks")
	for _, c := range Checks() {
		b.AddAndRegisterCheck(c)
	}
	return b.Build(ProfileName, reg)
}

// Plugin adapts Register for Registry.RegisterPlugins.
var Plugin = checkapi.PluginFunc(Register)
