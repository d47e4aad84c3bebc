package checkapi

import "encoding/json"

// Metadata is structured data attached to a Status.
//
// Implementations are GlyphProblem, TableProblem, FontProblem and OtherMetadata.
type Metadata interface {
	metadataKind() string
}

// Position is an (x, y) point in font units.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type GlyphProblem struct {
	GlyphName         string             `json:"glyph_name"`
	GlyphID           uint32             `json:"glyph_id"`
	UserspaceLocation map[string]float64 `json:"userspace_location,omitempty"`
	Position          *Position          `json:"position,omitempty"`
	Actual            any                `json:"actual,omitempty"`
	Expected          any                `json:"expected,omitempty"`
	Message           string             `json:"message"`
}

type TableProblem struct {
	TableTag  string `json:"table_tag"`
	FieldName string `json:"field_name,omitempty"`
	Actual    any    `json:"actual,omitempty"`
	Expected  any    `json:"expected,omitempty"`
	Message   string `json:"message"`
}

type FontProblem struct {
	Message string `json:"message"`
	Context any    `json:"context,omitempty"`
}

// OtherMetadata carries arbitrary JSON.
type OtherMetadata struct {
	Value any
}

func (GlyphProblem) metadataKind() string  { return "GlyphProblem" }
func (TableProblem) metadataKind() string  { return "TableProblem" }
func (FontProblem) metadataKind() string   { return "FontProblem" }
func (OtherMetadata) metadataKind() string { return "Other" }

func tagged(kind string, v any) ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Data any    `json:"data"`
	}{kind, v})
}

func (m GlyphProblem) MarshalJSON() ([]byte, error) {
	type alias GlyphProblem
	return tagged(m.metadataKind(), alias(m))
}

func (m TableProblem) MarshalJSON() ([]byte, error) {
	type alias TableProblem
	return tagged(m.metadataKind(), alias(m))
}

func (m FontProblem) MarshalJSON() ([]byte, error) {
	type alias FontProblem
	return tagged(m.metadataKind(), alias(m))
}

func (m OtherMetadata) MarshalJSON() ([]byte, error) {
	return tagged(m.metadataKind(), m.Value)
}
