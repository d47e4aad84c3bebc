package googlefonts

import (
	"fmt"
	"strings"

	"fontspector/internal/checkapi"
	"fontspector/internal/sfntio"
)

// os2FsTypeOffset is the byte offset of fsType in the OS/2 table.
const os2FsTypeOffset = 8

var fsTypeRestrictions = []struct {
	bit  uint16
	name string
}{
	{0x0002, "Restricted License embedding"},
	{0x0004, "Preview & Print embedding"},
	{0x0008, "Editable embedding"},
	{0x0100, "No subsetting"},
	{0x0200, "Bitmap embedding only"},
}

var FSType = checkapi.Check{
	ID:    "googlefonts/fstype",
	Title: "Checking OS/2 fsType does not impose restrictions.",
	Rationale: `The fsType in the OS/2 table is a legacy DRM-related field. Fonts in the
Google Fonts collection must have it set to zero ("Installable Embedding"). This
setting indicates that the fonts can be embedded in documents and permanently
installed by applications on remote systems.`,
	Proposal:       []string{"https://github.com/fonttools/fontbakery/issues/4829"},
	AppliesTo:      checkapi.FileTypeTTF.Tag,
	Implementation: checkapi.CheckOne(fsType),
	Hotfix:         fixFsType,
	FixSource:      fixFsTypeSource,
}

func fsType(t *checkapi.Testable, _ *checkapi.Context) (checkapi.StatusList, error) {
	f, err := checkapi.RequireFont(t)
	if err != nil {
		return nil, err
	}
	v, err := f.Tables.Uint16("OS/2", os2FsTypeOffset)
	if err != nil {
		return nil, err
	}
	if v == 0 {
		return checkapi.JustOnePass()
	}
	var found []string
	for _, r := range fsTypeRestrictions {
		if v&r.bit != 0 {
			found = append(found, r.name)
		}
	}
	if len(found) == 0 {
		found = append(found, "reserved bits")
	}
	msg := fmt.Sprintf("In this font fsType is set to %d meaning that:\n\n%s\n\nNo such DRM restrictions can be enabled on the Google Fonts collection, so the fsType field must be set to zero (Installable Embedding) instead.",
		v, "* "+strings.Join(found, "\n* "))
	return checkapi.StatusList{checkapi.Fail("drm", msg).WithMetadata(checkapi.TableProblem{
		TableTag:  "OS/2",
		FieldName: "fsType",
		Actual:    v,
		Expected:  0,
		Message:   "fsType must be zero",
	})}, nil
}

func fixFsType(t *checkapi.Testable) (bool, error) {
	f, err := sfntio.Parse(t.Contents())
	if err != nil {
		return false, checkapi.ParsingError(t.Filename, err)
	}
	v, err := f.Uint16("OS/2", os2FsTypeOffset)
	if err != nil {
		return false, err
	}
	if v == 0 {
		return false, nil
	}
	if err := f.SetUint16("OS/2", os2FsTypeOffset, 0); err != nil {
		return false, err
	}
	out, err := f.Bytes()
	if err != nil {
		return false, err
	}
	t.Set(out)
	return true, nil
}

const (
	ufoFsTypeKey    = "openTypeOS2Type"
	glyphsFsTypeKey = "fsType"
)

func fixFsTypeSource(s *checkapi.SourceFile) (bool, error) {
	if g, ok := s.Source.(*checkapi.GlyphsFont); ok {
		if v, ok := g.CustomParameter(glyphsFsTypeKey); ok && isEmptyList(v) {
			return false, nil
		}
		g.SetCustomParameter(glyphsFsTypeKey, []any{})
		return true, nil
	}
	return s.ApplyToUfos(func(u *checkapi.UfoFont) (bool, error) {
		if u.FontInfo == nil {
			u.FontInfo = map[string]any{}
		}
		if v, ok := u.FontInfo[ufoFsTypeKey]; ok && isEmptyList(v) {
			return false, nil
		}
		u.FontInfo[ufoFsTypeKey] = []any{}
		return true, nil
	})
}

func isEmptyList(v any) bool {
	switch l := v.(type) {
	case []any:
		return len(l) == 0
	case string:
		// OpenStep plists may spell an empty array as "()".
		return strings.TrimSpace(l) == "()"
	}
	return false
}
