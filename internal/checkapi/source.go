package checkapi

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Source is one of *UfoFont, *DesignSpace or *GlyphsFont.
type Source interface {
	Format() string
	save(path string) error
}

// SourceFile is a font source loaded from File.
type SourceFile struct {
	Source Source
	File   string
}

// LoadSourceFile picks the source format from the path's extension.
func LoadSourceFile(path string) (*SourceFile, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, FileNotFoundError(path)
	}
	var (
		src Source
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".designspace":
		src, err = LoadDesignSpace(path)
	case ".ufo":
		src, err = LoadUfo(path)
	case ".glyphs", ".glyphspackage":
		src, err = LoadGlyphs(path)
	default:
		return nil, &Error{Kind: KindUnrecognizedSource, Path: path}
	}
	if err != nil {
		return nil, err
	}
	return &SourceFile{Source: src, File: path}, nil
}

// Filename returns the base name of the source path.
func (s *SourceFile) Filename() string {
	if s.File == "" {
		return "unknown"
	}
	return filepath.Base(s.File)
}

func (s *SourceFile) Save() error {
	if err := s.Source.save(s.File); err != nil {
		var fe *Error
		if errors.As(err, &fe) && fe.Kind == KindSave {
			return err
		}
		return NewError(KindSave, s.File, err)
	}
	return nil
}

// ApplyToUfos runs fn on the UFO source, or on every UFO source of a
// DesignSpace, and reports whether any call changed something. Glyphs
// sources are rejected.
func (s *SourceFile) ApplyToUfos(fn func(*UfoFont) (bool, error)) (bool, error) {
	switch src := s.Source.(type) {
	case *UfoFont:
		return fn(src)
	case *DesignSpace:
		changed := false
		for _, ufo := range src.Sources {
			c, err := fn(ufo)
			if err != nil {
				return changed, err
			}
			changed = changed || c
		}
		return changed, nil
	default:
		return false, fmt.Errorf("%s source %s has no UFO fonts", s.Source.Format(), s.Filename())
	}
}
