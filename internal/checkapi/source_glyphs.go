package checkapi

import (
	"os"
	"path/filepath"
	"strings"

	"howett.net/plist"
)

// GlyphsFont is a Glyphs 2 or Glyphs 3 source held as its decoded property list.
// For .glyphspackage directories only fontinfo.plist is loaded and saved.
type GlyphsFont struct {
	Path    string
	Package bool
	Data    map[string]any
}

func (*GlyphsFont) Format() string { return "Glyphs" }

func LoadGlyphs(path string) (*GlyphsFont, error) {
	g := &GlyphsFont{Path: path, Package: strings.EqualFold(filepath.Ext(path), ".glyphspackage")}
	file := path
	if g.Package {
		file = filepath.Join(path, "fontinfo.plist")
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, ParsingError(path, err)
	}
	g.Data = map[string]any{}
	if _, err := plist.Unmarshal(b, &g.Data); err != nil {
		return nil, ParsingError(path, err)
	}
	return g, nil
}

// FormatVersion is 3 when the file declares .formatVersion = 3, otherwise 2.
func (g *GlyphsFont) FormatVersion() int {
	switch v := g.Data[".formatVersion"].(type) {
	case string:
		if v == "3" {
			return 3
		}
	case uint64:
		if v == 3 {
			return 3
		}
	case int64:
		if v == 3 {
			return 3
		}
	}
	return 2
}

func (g *GlyphsFont) customParameters() []any {
	params, _ := g.Data["customParameters"].([]any)
	return params
}

// CustomParameter returns the font-level custom parameter called name.
func (g *GlyphsFont) CustomParameter(name string) (any, bool) {
	for _, p := range g.customParameters() {
		m, ok := p.(map[string]any)
		if ok && m["name"] == name {
			return m["value"], true
		}
	}
	return nil, false
}

// SetCustomParameter replaces or appends a font-level custom parameter.
func (g *GlyphsFont) SetCustomParameter(name string, value any) {
	params := g.customParameters()
	for _, p := range params {
		if m, ok := p.(map[string]any); ok && m["name"] == name {
			m["value"] = value
			return
		}
	}
	g.Data["customParameters"] = append(params, map[string]any{"name": name, "value": value})
}

func (g *GlyphsFont) save(path string) error {
	file := path
	if g.Package {
		file = filepath.Join(path, "fontinfo.plist")
	}
	return writePlist(file, g.Data, plist.OpenStepFormat)
}
