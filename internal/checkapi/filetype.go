package checkapi

import "path/filepath"

// FileType associates a tag such as "TTF" with basename glob patterns.
type FileType struct {
	Tag      string
	Patterns []string
}

func NewFileType(tag string, patterns ...string) FileType {
	return FileType{Tag: tag, Patterns: patterns}
}

// Applies reports whether the testable's basename matches any pattern.
func (ft FileType) Applies(t *Testable) bool {
	base := t.Basename()
	for _, p := range ft.Patterns {
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}
	return false
}

// Built-in file types.
var (
	FileTypeTTF         = NewFileType("TTF", "*.[ot]tf")
	FileTypeMDPB        = NewFileType("MDPB", "METADATA.pb")
	FileTypeDesignspace = NewFileType("DESIGNSPACE", "*.designspace")
	FileTypeGlyphs      = NewFileType("GLYPHS", "*.glyphs")
	FileTypeLicense     = NewFileType("LICENSE", "OFL.txt", "LICENSE.txt", "UFL.txt")
)
