package checkapi

import (
	"errors"
	"fmt"

	"golang.org/x/image/font/sfnt"

	"fontspector/internal/sfntio"
)

// TestFont is the parsed view of a binary font Testable.
type TestFont struct {
	Filename string
	// Font gives glyph, name and metrics access. It is safe for concurrent use.
	Font *sfnt.Font
	// Tables gives raw table access.
	Tables *sfntio.Font
}

// LoadTestFont parses t, reusing an earlier parse of the same contents.
// The parsed view lives on t and is dropped when t.Set replaces the bytes.
func LoadTestFont(t *Testable) (*TestFont, error) {
	t.parseMu.Lock()
	defer t.parseMu.Unlock()
	gen := t.Generation()
	if t.parsed != nil && t.parsedGen == gen {
		return t.parsed, nil
	}
	f, err := sfnt.Parse(t.Contents())
	if err != nil {
		return nil, ParsingError(t.Filename, err)
	}
	tables, err := sfntio.Parse(t.Contents())
	if err != nil {
		return nil, ParsingError(t.Filename, err)
	}
	t.parsed = &TestFont{Filename: t.Filename, Font: f, Tables: tables}
	t.parsedGen = gen
	return t.parsed, nil
}

// RequireFont is LoadTestFont for checks: a non-font testable is skipped
// rather than reported as an error.
func RequireFont(t *Testable) (*TestFont, error) {
	if !FileTypeTTF.Applies(t) {
		return nil, Skip("unfulfilled-conditions", fmt.Sprintf("%s is not a binary font", t.Basename()))
	}
	return LoadTestFont(t)
}

// Name returns a name table string, or "" when the record is missing.
func (f *TestFont) Name(id sfnt.NameID) (string, error) {
	s, err := f.Font.Name(nil, id)
	if errors.Is(err, sfnt.ErrNotFound) {
		return "", nil
	}
	return s, err
}

func (f *TestFont) FamilyName() (string, error) {
	if s, err := f.Name(sfnt.NameIDTypographicFamily); err != nil || s != "" {
		return s, err
	}
	return f.Name(sfnt.NameIDFamily)
}

func (f *TestFont) UnitsPerEm() int {
	return int(f.Font.UnitsPerEm())
}

func (f *TestFont) NumGlyphs() int {
	return f.Font.NumGlyphs()
}

// GlyphFor maps r through the cmap; ok is false for unmapped code points.
func (f *TestFont) GlyphFor(r rune) (gid sfnt.GlyphIndex, ok bool) {
	gid, err := f.Font.GlyphIndex(nil, r)
	if err != nil || gid == 0 {
		return 0, false
	}
	return gid, true
}

func (f *TestFont) GlyphName(gid sfnt.GlyphIndex) string {
	name, err := f.Font.GlyphName(nil, gid)
	if err != nil || name == "" {
		return fmt.Sprintf("gid%d", gid)
	}
	return name
}

func (f *TestFont) HasTable(tag string) bool {
	return f.Tables.HasTable(tag)
}

func (f *TestFont) IsVariable() bool {
	return f.HasTable("fvar")
}
