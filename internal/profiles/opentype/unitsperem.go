package opentype

import (
	"fmt"

	"fontspector/internal/checkapi"
)

const (
	minUnitsPerEm = 16
	maxUnitsPerEm = 16384
)

var UnitsPerEm = checkapi.Check{
	ID:    "opentype/unitsperem",
	Title: "Checking unitsPerEm value is reasonable.",
	Rationale: `According to the OpenType spec, the value of unitsPerEm in the head table
must be between 16 and 16384. Some rasterizers also work better with powers of
two, while 1000 and 2000 are traditional values for PostScript outlines.`,
	Proposal:       []string{"https://github.com/fonttools/fontbakery/issues/4829"},
	AppliesTo:      checkapi.FileTypeTTF.Tag,
	Implementation: checkapi.CheckOne(unitsPerEmCheck),
}

func unitsPerEmCheck(t *checkapi.Testable, _ *checkapi.Context) (checkapi.StatusList, error) {
	f, err := checkapi.RequireFont(t)
	if err != nil {
		return nil, err
	}
	return judgeUnitsPerEm(f.UnitsPerEm()), nil
}

func judgeUnitsPerEm(upm int) checkapi.StatusList {
	problem := checkapi.TableProblem{TableTag: "head", FieldName: "unitsPerEm", Actual: upm}
	switch {
	case upm < minUnitsPerEm || upm > maxUnitsPerEm:
		problem.Message = "unitsPerEm is out of range"
		return checkapi.StatusList{checkapi.Fail("out-of-range", fmt.Sprintf(
			"The value of unitsPerEm at the head table must be a value between %d and %d. Got %d instead.",
			minUnitsPerEm, maxUnitsPerEm, upm)).WithMetadata(problem)}
	case !goodUnitsPerEm(upm):
		problem.Message = "unitsPerEm is not a power of two, 1000 or 2000"
		return checkapi.StatusList{checkapi.Warn("suboptimal", fmt.Sprintf(
			"In order to optimize performance on some legacy renderers, the value of unitsPerEm should be a power of two or 1000 or 2000. Got %d instead.",
			upm)).WithMetadata(problem)}
	default:
		return checkapi.StatusList{checkapi.Pass()}
	}
}

func goodUnitsPerEm(upm int) bool {
	if upm == 1000 || upm == 2000 {
		return true
	}
	return upm > 0 && upm&(upm-1) == 0
}
