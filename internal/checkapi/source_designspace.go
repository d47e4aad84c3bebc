package checkapi

import (
	"encoding/xml"
	"os"
	"path/filepath"
)

// DesignSpace is a designspace document together with its UFO sources.
type DesignSpace struct {
	Path     string
	Document DesignSpaceDocument
	Sources  []*UfoFont
}

type DesignSpaceDocument struct {
	XMLName xml.Name           `xml:"designspace"`
	Format  string             `xml:"format,attr,omitempty"`
	Axes    *DesignSpaceAxes   `xml:"axes,omitempty"`
	Sources DesignSpaceSources `xml:"sources"`
	Rest    []xmlElement       `xml:",any"`
}

type DesignSpaceAxes struct {
	Axis []DesignSpaceAxis `xml:"axis"`
	Rest []xmlElement      `xml:",any"`
}

type DesignSpaceAxis struct {
	Tag     string `xml:"tag,attr"`
	Name    string `xml:"name,attr"`
	Minimum string `xml:"minimum,attr,omitempty"`
	Default string `xml:"default,attr,omitempty"`
	Maximum string `xml:"maximum,attr,omitempty"`
	Inner   []byte `xml:",innerxml"`
}

type DesignSpaceSources struct {
	Source []DesignSpaceSource `xml:"source"`
}

type DesignSpaceSource struct {
	Filename   string     `xml:"filename,attr"`
	Name       string     `xml:"name,attr,omitempty"`
	FamilyName string     `xml:"familyname,attr,omitempty"`
	StyleName  string     `xml:"stylename,attr,omitempty"`
	Attrs      []xml.Attr `xml:",any,attr"`
	Inner      []byte     `xml:",innerxml"`
}

// xmlElement round-trips elements the document model does not interpret.
type xmlElement struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Inner   []byte     `xml:",innerxml"`
}

func (*DesignSpace) Format() string { return "DesignSpace" }

func LoadDesignSpace(path string) (*DesignSpace, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, ParsingError(path, err)
	}
	ds := &DesignSpace{Path: path}
	if err := xml.Unmarshal(b, &ds.Document); err != nil {
		return nil, ParsingError(path, err)
	}
	dir := filepath.Dir(path)
	for _, s := range ds.Document.Sources.Source {
		ufo, err := LoadUfo(filepath.Join(dir, s.Filename))
		if err != nil {
			return nil, err
		}
		ds.Sources = append(ds.Sources, ufo)
	}
	return ds, nil
}

func (ds *DesignSpace) save(path string) error {
	b, err := xml.MarshalIndent(ds.Document, "", "  ")
	if err != nil {
		return err
	}
	b = append([]byte(xml.Header), b...)
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return err
	}
	for _, ufo := range ds.Sources {
		if err := ufo.Save(); err != nil {
			return err
		}
	}
	return nil
}
