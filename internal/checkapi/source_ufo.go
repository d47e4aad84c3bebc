package checkapi

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"howett.net/plist"
)

const (
	ufoMetaInfo = "metainfo.plist"
	ufoFontInfo = "fontinfo.plist"
	ufoLib      = "lib.plist"
)

// UfoFont exposes the font-level property lists of a UFO directory.
// Glyph data is left on disk untouched.
type UfoFont struct {
	Path     string
	MetaInfo map[string]any
	FontInfo map[string]any
	Lib      map[string]any
}

func (*UfoFont) Format() string { return "UFO" }

func LoadUfo(path string) (*UfoFont, error) {
	u := &UfoFont{Path: path}
	var err error
	if u.MetaInfo, err = readPlist(filepath.Join(path, ufoMetaInfo)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{Kind: KindUnrecognizedSource, Path: path, Err: err}
		}
		return nil, ParsingError(path, err)
	}
	if u.FontInfo, err = readOptionalPlist(filepath.Join(path, ufoFontInfo)); err != nil {
		return nil, ParsingError(path, err)
	}
	if u.Lib, err = readOptionalPlist(filepath.Join(path, ufoLib)); err != nil {
		return nil, ParsingError(path, err)
	}
	return u, nil
}

func (u *UfoFont) save(path string) error {
	if err := writePlist(filepath.Join(path, ufoFontInfo), u.FontInfo, plist.XMLFormat); err != nil {
		return err
	}
	if len(u.Lib) > 0 {
		return writePlist(filepath.Join(path, ufoLib), u.Lib, plist.XMLFormat)
	}
	return nil
}

// Save writes the property lists back to the UFO's own directory.
func (u *UfoFont) Save() error {
	if err := u.save(u.Path); err != nil {
		return NewError(KindSave, u.Path, err)
	}
	return nil
}

func readPlist(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if _, err := plist.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func readOptionalPlist(path string) (map[string]any, error) {
	out, err := readPlist(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, nil
	}
	return out, err
}

func writePlist(path string, v map[string]any, format int) error {
	if v == nil {
		v = map[string]any{}
	}
	b, err := plist.MarshalIndent(v, format, "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
