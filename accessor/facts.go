package accessor

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wippyai/molecule/codec"
	"github.com/wippyai/molecule/errors"
	"github.com/wippyai/molecule/schema"
)

// Facts is everything a backend needs to emit the wrapper type for one
// declaration.
type Facts struct {
	Name      string
	Kind      schema.Kind
	Static    bool
	Size      uint32 // only when Static
	Members   []Member
	Encode    Encode
	Decode    Decode
	Union     []UnionCase
	Accessors []Accessor
}

// Member is one addressable part of a value. Struct fields carry a static
// Offset and Size, array and fixvec items a Stride, and table fields and
// dynvec items are located through the offset table.
type Member struct {
	Name   string
	Type   string
	Index  int
	Offset uint32
	Size   uint32
	Stride uint32
	Static bool
}

// Encode names the encode variant and the parameters it takes.
type Encode struct {
	Variant string
	Params  []string
}

// Decode names the validation variant and every structural error it can report.
type Decode struct {
	Variant string
	Checks  []errors.Kind
}

// UnionCase maps a discriminant to its item type.
type UnionCase struct {
	Type string
	ID   uint32
}

// Accessor is one generated method: its name, the type of view it returns
// and the byte range it reads.
type Accessor struct {
	Name    string
	Returns string
	Range   string
}

// ExportName turns a schema field name such as "tx_hash" into the exported
// accessor name "TxHash".
func ExportName(name string) string {
	title := cases.Title(language.Und, cases.NoLower)
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, p := range parts {
		parts[i] = title.String(p)
	}
	return strings.Join(parts, "")
}

// Derive computes the facts for a single compiled type.
func Derive(t *codec.CompiledType) (*Facts, error) {
	if t == nil {
		return nil, errors.New(errors.PhaseGenerate, errors.KindNilPointer).
			Detail("compiled type cannot be nil").
			Build()
	}

	f := &Facts{
		Name:   t.Name,
		Kind:   t.Kind,
		Static: t.Fixed,
	}
	if t.Fixed {
		f.Size = t.Size
	}
	f.Accessors = append(f.Accessors,
		Accessor{Name: "AsSlice", Returns: "[]byte", Range: "[0:)"},
		Accessor{Name: "FromSliceUnchecked", Returns: t.Name},
	)

	switch t.Kind {
	case schema.KindArray:
		deriveArray(f, t)
	case schema.KindStruct:
		deriveStruct(f, t)
	case schema.KindFixVec:
		deriveFixVec(f, t)
	case schema.KindDynVec:
		deriveDynVec(f, t)
	case schema.KindTable:
		deriveTable(f, t)
	case schema.KindUnion:
		deriveUnion(f, t)
	case schema.KindOption:
		deriveOption(f, t)
	default:
		return nil, errors.New(errors.PhaseGenerate, errors.KindUnsupported).
			Type(t.Name).
			Detail("no accessors for kind %s", t.Kind).
			Build()
	}
	return f, nil
}

func deriveArray(f *Facts, t *codec.CompiledType) {
	f.Encode = Encode{Variant: "concat", Params: repeat(t.Item.Name, t.Count)}
	f.Decode = Decode{Variant: "fixed", Checks: []errors.Kind{errors.KindSizeMismatch}}
	for i := 0; i < t.Count; i++ {
		off := uint32(i) * t.ItemSize
		f.Members = append(f.Members, Member{
			Name:   fmt.Sprintf("nth%d", i),
			Type:   t.Item.Name,
			Index:  i,
			Offset: off,
			Size:   t.ItemSize,
			Stride: t.ItemSize,
			Static: true,
		})
		f.Accessors = append(f.Accessors, Accessor{
			Name:    fmt.Sprintf("Nth%d", i),
			Returns: t.Item.Name,
			Range:   fmt.Sprintf("[%d:%d)", off, off+t.ItemSize),
		})
	}
	if t.HasRawData() {
		f.Accessors = append(f.Accessors, Accessor{Name: "RawData", Returns: "[]byte", Range: "[0:)"})
	}
}

func deriveStruct(f *Facts, t *codec.CompiledType) {
	f.Encode = Encode{Variant: "concat", Params: fieldTypes(t)}
	f.Decode = Decode{Variant: "fixed", Checks: []errors.Kind{errors.KindSizeMismatch}}
	for i, fld := range t.Fields {
		f.Members = append(f.Members, Member{
			Name:   fld.Name,
			Type:   fld.Type.Name,
			Index:  i,
			Offset: fld.Offset,
			Size:   fld.Size,
			Static: true,
		})
		f.Accessors = append(f.Accessors, Accessor{
			Name:    ExportName(fld.Name),
			Returns: fld.Type.Name,
			Range:   fmt.Sprintf("[%d:%d)", fld.Offset, fld.Offset+fld.Size),
		})
	}
}

func deriveFixVec(f *Facts, t *codec.CompiledType) {
	f.Encode = Encode{Variant: "count_header", Params: []string{"[]" + t.Item.Name}}
	f.Decode = Decode{Variant: "fixvec", Checks: []errors.Kind{
		errors.KindHeaderTooShort,
		errors.KindSizeMismatch,
	}}
	f.Members = []Member{{Name: "item", Type: t.Item.Name, Offset: codec.HeaderSize, Size: t.ItemSize, Stride: t.ItemSize, Static: true}}
	f.Accessors = append(f.Accessors,
		Accessor{Name: "Len", Returns: "int", Range: "[0:4)"},
		Accessor{Name: "IsEmpty", Returns: "bool", Range: "[0:4)"},
		Accessor{Name: "Get", Returns: t.Item.Name, Range: fmt.Sprintf("[4+i*%d:4+(i+1)*%d)", t.ItemSize, t.ItemSize)},
	)
	if t.HasRawData() {
		f.Accessors = append(f.Accessors, Accessor{Name: "RawData", Returns: "[]byte", Range: "[4:)"})
	}
}

func deriveDynVec(f *Facts, t *codec.CompiledType) {
	f.Encode = Encode{Variant: "offset_table", Params: []string{"[]" + t.Item.Name}}
	f.Decode = Decode{Variant: "dynvec", Checks: offsetChecks(false)}
	f.Members = []Member{{Name: "item", Type: t.Item.Name}}
	f.Accessors = append(f.Accessors,
		Accessor{Name: "Len", Returns: "int", Range: "[4:8)"},
		Accessor{Name: "IsEmpty", Returns: "bool", Range: "[4:8)"},
		Accessor{Name: "Get", Returns: t.Item.Name, Range: "[offset[i]:offset[i+1])"},
	)
}

func deriveTable(f *Facts, t *codec.CompiledType) {
	f.Encode = Encode{Variant: "offset_table", Params: fieldTypes(t)}
	f.Decode = Decode{Variant: "table", Checks: offsetChecks(true)}
	for i, fld := range t.Fields {
		f.Members = append(f.Members, Member{
			Name:   fld.Name,
			Type:   fld.Type.Name,
			Index:  i,
			Static: fld.Type.Fixed,
			Size:   staticSize(fld.Type),
		})
		f.Accessors = append(f.Accessors, Accessor{
			Name:    ExportName(fld.Name),
			Returns: fld.Type.Name,
			Range:   fmt.Sprintf("[offset[%d]:offset[%d])", i, i+1),
		})
	}
	f.Accessors = append(f.Accessors,
		Accessor{Name: "FieldCount", Returns: "int", Range: "[4:8)"},
		Accessor{Name: "CountExtraFields", Returns: "int", Range: "[4:8)"},
		Accessor{Name: "HasExtraFields", Returns: "bool", Range: "[4:8)"},
	)
}

func deriveUnion(f *Facts, t *codec.CompiledType) {
	f.Encode = Encode{Variant: "discriminant", Params: []string{"item_id", "item"}}
	f.Decode = Decode{Variant: "union", Checks: []errors.Kind{
		errors.KindHeaderTooShort,
		errors.KindUnknownDiscriminant,
	}}
	for i, c := range t.Cases {
		f.Union = append(f.Union, UnionCase{ID: c.ID, Type: c.Type.Name})
		f.Members = append(f.Members, Member{Name: c.Type.Name, Type: c.Type.Name, Index: i, Offset: codec.HeaderSize})
	}
	f.Accessors = append(f.Accessors,
		Accessor{Name: "ItemID", Returns: "uint32", Range: "[0:4)"},
		Accessor{Name: "ToEnum", Returns: t.Name + "Union", Range: "[4:)"},
	)
}

func deriveOption(f *Facts, t *codec.CompiledType) {
	f.Encode = Encode{Variant: "optional", Params: []string{"*" + t.Item.Name}}
	f.Decode = Decode{Variant: "option", Checks: nil}
	f.Members = []Member{{Name: "value", Type: t.Item.Name}}
	f.Accessors = append(f.Accessors,
		Accessor{Name: "IsNone", Returns: "bool"},
		Accessor{Name: "IsSome", Returns: "bool"},
		Accessor{Name: "IntoOption", Returns: "*" + t.Item.Name, Range: "[0:)"},
	)
}

func offsetChecks(table bool) []errors.Kind {
	checks := []errors.Kind{
		errors.KindHeaderTooShort,
		errors.KindSizeMismatch,
		errors.KindOffsetMisaligned,
	}
	if table {
		checks = append(checks, errors.KindFieldCountMismatch)
	}
	return append(checks, errors.KindOffsetNotMonotonic)
}

func fieldTypes(t *codec.CompiledType) []string {
	out := make([]string, len(t.Fields))
	for i, fld := range t.Fields {
		out[i] = fld.Type.Name
	}
	return out
}

func staticSize(t *codec.CompiledType) uint32 {
	if t.Fixed {
		return t.Size
	}
	return 0
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}
