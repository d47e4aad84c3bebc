// Package metadatapb reads Google Fonts METADATA.pb files.
//
// The files are text-format protobuf messages of type
// google.fonts.FamilyProto. The message descriptor is built at init time so
// no generated code is needed; fields we do not model are discarded.
package metadatapb

import (
	"fmt"

	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

type Family struct {
	Name       string
	Designer   string
	License    string
	Categories []string
	DateAdded  string
	Fonts      []Font
	Subsets    []string
	Axes       []Axis
	Languages  []string
}

type Font struct {
	Name           string
	Style          string
	Weight         int32
	Filename       string
	PostScriptName string
	FullName       string
	Copyright      string
}

type Axis struct {
	Tag      string
	MinValue float32
	MaxValue float32
}

var familyDesc = mustFamilyDescriptor()

func field(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type, repeated bool, typeName string) *descriptorpb.FieldDescriptorProto {
	label := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	if repeated {
		label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED
	}
	f := &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(name),
		Number:   proto.Int32(number),
		Label:    label.Enum(),
		Type:     typ.Enum(),
		JsonName: proto.String(name),
	}
	if typeName != "" {
		f.TypeName = proto.String(typeName)
	}
	return f
}

func mustFamilyDescriptor() protoreflect.MessageDescriptor {
	const (
		str = descriptorpb.FieldDescriptorProto_TYPE_STRING
		i32 = descriptorpb.FieldDescriptorProto_TYPE_INT32
		flt = descriptorpb.FieldDescriptorProto_TYPE_FLOAT
		msg = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
	)
	fd := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("fonts_public.proto"),
		Package: proto.String("google.fonts"),
		Syntax:  proto.String("proto2"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("FamilyProto"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("name", 1, str, false, ""),
					field("designer", 2, str, false, ""),
					field("license", 3, str, false, ""),
					field("category", 4, str, true, ""),
					field("date_added", 5, str, false, ""),
					field("fonts", 6, msg, true, ".google.fonts.FontProto"),
					field("aliases", 7, str, true, ""),
					field("subsets", 8, str, true, ""),
					field("axes", 10, msg, true, ".google.fonts.AxisSegmentProto"),
					field("languages", 14, str, true, ""),
				},
			},
			{
				Name: proto.String("FontProto"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("name", 1, str, false, ""),
					field("style", 2, str, false, ""),
					field("weight", 3, i32, false, ""),
					field("filename", 4, str, false, ""),
					field("post_script_name", 5, str, false, ""),
					field("full_name", 6, str, false, ""),
					field("copyright", 7, str, false, ""),
				},
			},
			{
				Name: proto.String("AxisSegmentProto"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("tag", 1, str, false, ""),
					field("min_value", 2, flt, false, ""),
					field("max_value", 3, flt, false, ""),
				},
			},
		},
	}
	file, err := protodesc.NewFile(fd, nil)
	if err != nil {
		panic(fmt.Sprintf("metadatapb: invalid descriptor: %v", err))
	}
	return file.Messages().ByName("FamilyProto")
}

// Parse decodes a METADATA.pb document.
func Parse(b []byte) (*Family, error) {
	m := dynamicpb.NewMessage(familyDesc)
	opts := prototext.UnmarshalOptions{DiscardUnknown: true, AllowPartial: true}
	if err := opts.Unmarshal(b, m); err != nil {
		return nil, fmt.Errorf("parse METADATA.pb: %w", err)
	}
	fam := &Family{
		Name:       getString(m, "name"),
		Designer:   getString(m, "designer"),
		License:    getString(m, "license"),
		Categories: getStrings(m, "category"),
		DateAdded:  getString(m, "date_added"),
		Subsets:    getStrings(m, "subsets"),
		Languages:  getStrings(m, "languages"),
	}
	eachMessage(m, "fonts", func(f protoreflect.Message) {
		fam.Fonts = append(fam.Fonts, Font{
			Name:           getString(f, "name"),
			Style:          getString(f, "style"),
			Weight:         int32(f.Get(fieldOf(f, "weight")).Int()),
			Filename:       getString(f, "filename"),
			PostScriptName: getString(f, "post_script_name"),
			FullName:       getString(f, "full_name"),
			Copyright:      getString(f, "copyright"),
		})
	})
	eachMessage(m, "axes", func(a protoreflect.Message) {
		fam.Axes = append(fam.Axes, Axis{
			Tag:      getString(a, "tag"),
			MinValue: float32(a.Get(fieldOf(a, "min_value")).Float()),
			MaxValue: float32(a.Get(fieldOf(a, "max_value")).Float()),
		})
	})
	return fam, nil
}

// FontByFilename returns the font entry describing filename.
func (f *Family) FontByFilename(filename string) (Font, bool) {
	for _, font := range f.Fonts {
		if font.Filename == filename {
			return font, true
		}
	}
	return Font{}, false
}

func fieldOf(m protoreflect.Message, name string) protoreflect.FieldDescriptor {
	return m.Descriptor().Fields().ByName(protoreflect.Name(name))
}

func getString(m protoreflect.Message, name string) string {
	return m.Get(fieldOf(m, name)).String()
}

func getStrings(m protoreflect.Message, name string) []string {
	list := m.Get(fieldOf(m, name)).List()
	out := make([]string, list.Len())
	for i := range list.Len() {
		out[i] = list.Get(i).String()
	}
	return out
}

func eachMessage(m protoreflect.Message, name string, fn func(protoreflect.Message)) {
	list := m.Get(fieldOf(m, name)).List()
	for i := range list.Len() {
		fn(list.Get(i).Message())
	}
}
