package universal

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/sfnt"

	"fontspector/internal/checkapi"
)

var TrailingSpaces = checkapi.Check{
	ID:    "universal/name/trailing_spaces",
	Title: "Name table records must not have trailing spaces.",
	Rationale: `Trailing spaces in name table entries, particularly in font names, can be
confusing to users. In most cases this can be fixed by removing trailing spaces
from the metadata fields in the font editor.`,
	Proposal:       []string{"https://github.com/googlefonts/fontbakery/issues/2417"},
	AppliesTo:      checkapi.FileTypeTTF.Tag,
	Implementation: checkapi.CheckOne(trailingSpaces),
}

// lastNameID is the highest predefined name ID (variations PostScript name prefix).
const lastNameID = sfnt.NameID(25)

func trailingSpaces(t *checkapi.Testable, _ *checkapi.Context) (checkapi.StatusList, error) {
	f, err := checkapi.RequireFont(t)
	if err != nil {
		return nil, err
	}
	var problems checkapi.StatusList
	for id := sfnt.NameID(0); id <= lastNameID; id++ {
		s, err := f.Name(id)
		if err != nil || s == "" {
			continue
		}
		problems = append(problems, judgeName(id, s)...)
	}
	return problems, nil
}

func judgeName(id sfnt.NameID, s string) checkapi.StatusList {
	var problems checkapi.StatusList
	if strings.TrimRight(s, " ") != s {
		problems = append(problems, checkapi.Fail("trailing-space",
			fmt.Sprintf("Name table record with ID %d has trailing spaces that must be removed:\n`%s`", id, s)))
	}
	if strings.Contains(s, "  ") {
		problems = append(problems, checkapi.Warn("double-spaces",
			fmt.Sprintf("Name table record with ID %d has double spaces:\n`%s`", id, s)))
	}
	return problems
}
