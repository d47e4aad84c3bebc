package opentype

import (
	"fmt"

	"fontspector/internal/checkapi"
)

var FamilyEqualUnitsPerEm = checkapi.Check{
	ID:        "opentype/family/equal_unitsperem",
	Title:     "Fonts have equal unit per em?",
	Rationale: "Fonts in a family should have the same units per em.",
	AppliesTo: checkapi.FileTypeTTF.Tag,
	Implementation: checkapi.CheckAll(func(coll *checkapi.TestableCollection, cx *checkapi.Context) (checkapi.StatusList, error) {
		var seen []checkapi.Observation[int]
		for _, t := range coll.Testables {
			if !checkapi.FileTypeTTF.Applies(t) {
				continue
			}
			f, err := checkapi.LoadTestFont(t)
			if err != nil {
				return nil, err
			}
			upm := f.UnitsPerEm()
			seen = append(seen, checkapi.Observation[int]{Value: upm, Display: fmt.Sprint(upm), Label: t.Basename()})
		}
		if len(seen) < 2 {
			return checkapi.JustOneSkip("single-font", "Family has fewer than two binary fonts")
		}
		return checkapi.AssertAllTheSame(cx, seen, "mismatch",
			"Fonts have different units per em: 'head.unitsPerEm' values differ.", checkapi.StatusFail)
	}),
}
