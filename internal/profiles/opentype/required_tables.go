package opentype

import (
	"fmt"
	"strings"

	"fontspector/internal/checkapi"
	"fontspector/internal/sfntio"
)

const (
	sfntVersionTrueType = 0x00010000
	sfntVersionCFF      = 0x4F54544F // "OTTO"
)

var (
	requiredTables = []string{"cmap", "head", "hhea", "hmtx", "maxp", "name", "OS/2", "post"}
	optionalTables = []string{
		"cvt ", "fpgm", "loca", "prep", "VORG", "EBDT", "EBLC", "EBSC", "BASE", "GPOS",
		"GSUB", "JSTF", "gasp", "hdmx", "LTSH", "PCLT", "VDMX", "vhea", "vmtx", "kern",
	}
)

var RequiredTables = checkapi.Check{
	ID:    "opentype/required_tables",
	Title: "Font contains all required tables?",
	Rationale: `Whether TrueType or CFF outlines are used in an OpenType font, the cmap,
head, hhea, hmtx, maxp, name, OS/2 and post tables are required for the font to
function correctly. Variable fonts additionally need a STAT table.`,
	Proposal:       []string{"https://github.com/fonttools/fontbakery/issues/4829"},
	AppliesTo:      checkapi.FileTypeTTF.Tag,
	Implementation: checkapi.CheckOne(requiredTablesCheck),
}

func requiredTablesCheck(t *checkapi.Testable, _ *checkapi.Context) (checkapi.StatusList, error) {
	f, err := checkapi.RequireFont(t)
	if err != nil {
		return nil, err
	}
	return tableProblems(f.Tables), nil
}

func tableProblems(f *sfntio.Font) checkapi.StatusList {
	var problems checkapi.StatusList
	variable := f.HasTable("fvar")

	var present []string
	for _, tag := range optionalTables {
		if f.HasTable(tag) {
			present = append(present, tag)
		}
	}
	if len(present) > 0 {
		problems = append(problems, checkapi.Info("optional-tables",
			"This font contains the following optional tables:\n\n    "+strings.Join(present, "\n    ")))
	}

	missing := missingTables(f)
	if len(missing) > 0 {
		problems = append(problems, checkapi.Fail("required-tables",
			"This font is missing the following required tables:\n\n    "+strings.Join(missing, "\n    ")))
	}

	if variable && f.HasTable("vmtx") && !f.HasTable("VVAR") {
		problems = append(problems, checkapi.Warn("missing-vvar",
			"Font has a vmtx table but no VVAR table. Adding VVAR speeds up vertical typesetting significantly at a small size cost."))
	}
	return problems
}

func missingTables(f *sfntio.Font) []string {
	var missing []string
	for _, tag := range requiredTables {
		if !f.HasTable(tag) {
			missing = append(missing, tag)
		}
	}
	if f.HasTable("fvar") && !f.HasTable("STAT") {
		missing = append(missing, "STAT")
	}
	switch f.SFNTVersion {
	case sfntVersionCFF:
		if !f.HasTable("CFF ") && !f.HasTable("CFF2") {
			if f.HasTable("fvar") {
				missing = append(missing, "CFF2")
			} else {
				missing = append(missing, "CFF ")
			}
		}
	case sfntVersionTrueType:
		if !f.HasTable("glyf") {
			missing = append(missing, "glyf")
		}
	default:
		missing = append(missing, fmt.Sprintf("(unknown sfnt version %#08x)", f.SFNTVersion))
	}
	return missing
}
