package universal

import (
	"fmt"

	"fontspector/internal/checkapi"
)

var WhitespaceGlyphs = checkapi.Check{
	ID:    "universal/whitespace_glyphs",
	Title: "Font contains glyphs for whitespace characters?",
	Rationale: `The space and no-break space characters are needed by virtually every
text, and a font that lacks them forces a fallback font for every word break.`,
	Proposal:       []string{"https://github.com/fonttools/fontbakery/issues/4829"},
	AppliesTo:      checkapi.FileTypeTTF.Tag,
	Implementation: checkapi.CheckOne(whitespaceGlyphs),
}

var requiredWhitespace = []rune{0x0020, 0x00A0}

func whitespaceGlyphs(t *checkapi.Testable, _ *checkapi.Context) (checkapi.StatusList, error) {
	f, err := checkapi.RequireFont(t)
	if err != nil {
		return nil, err
	}
	var problems checkapi.StatusList
	for _, r := range requiredWhitespace {
		if _, ok := f.GlyphFor(r); !ok {
			problems = append(problems, checkapi.Fail(
				fmt.Sprintf("missing-whitespace-glyph-0x%04X", r),
				fmt.Sprintf("Whitespace glyph missing for codepoint 0x%04X.", r)))
		}
	}
	return problems, nil
}
