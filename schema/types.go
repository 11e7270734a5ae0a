package schema

// Type is a verified schema node. The set of implementations is closed:
// *Byte, *Option, *Union, *Array, *Struct, *FixVec, *DynVec and *Table.
type Type interface {
	Name() string
	Kind() Kind
	sealed()
}

// Byte is the only primitive: a single opaque byte.
type Byte struct{}

// ByteType is the shared byte atom.
var ByteType = &Byte{}

func (*Byte) Name() string { return "byte" }
func (*Byte) Kind() Kind   { return KindByte }
func (*Byte) sealed()      {}

// Option is either empty (none) or the encoding of Item (some).
type Option struct {
	TypeName string
	Item     Type
}

func (o *Option) Name() string { return o.TypeName }
func (*Option) Kind() Kind     { return KindOption }
func (*Option) sealed()        {}

// UnionItem is one (discriminant, type) pair of a union.
type UnionItem struct {
	Type Type
	ID   uint32
}

// Union is a 4-byte item id followed by the encoding of that item.
type Union struct {
	TypeName string
	Items    []UnionItem
}

func (u *Union) Name() string { return u.TypeName }
func (*Union) Kind() Kind     { return KindUnion }
func (*Union) sealed()        {}

// Item returns the type declared for id.
func (u *Union) Item(id uint32) (Type, bool) {
	for _, it := range u.Items {
		if it.ID == id {
			return it.Type, true
		}
	}
	return nil, false
}

// Array is Count fixed-size items with no header.
type Array struct {
	TypeName string
	Item     Type
	Count    int
}

func (a *Array) Name() string { return a.TypeName }
func (*Array) Kind() Kind     { return KindArray }
func (*Array) sealed()        {}

// Field is a named member of a Struct or Table.
type Field struct {
	Type Type
	Name string
}

// Struct is an ordered list of fixed-size fields with no header.
type Struct struct {
	TypeName string
	Fields   []Field
}

func (s *Struct) Name() string { return s.TypeName }
func (*Struct) Kind() Kind     { return KindStruct }
func (*Struct) sealed()        {}

// FixVec is an item count header followed by fixed-size items.
type FixVec struct {
	TypeName string
	Item     Type
}

func (v *FixVec) Name() string { return v.TypeName }
func (*FixVec) Kind() Kind     { return KindFixVec }
func (*FixVec) sealed()        {}

// DynVec is a total size header, an offset table and variable-size items.
type DynVec struct {
	TypeName string
	Item     Type
}

func (v *DynVec) Name() string { return v.TypeName }
func (*DynVec) Kind() Kind     { return KindDynVec }
func (*DynVec) sealed()        {}

// Table has the physical shape of a DynVec but named, heterogeneous fields.
type Table struct {
	TypeName string
	Fields   []Field
}

func (t *Table) Name() string { return t.TypeName }
func (*Table) Kind() Kind     { return KindTable }
func (*Table) sealed()        {}

// ItemOf returns the single inner type of an Option, Array, FixVec or DynVec.
func ItemOf(t Type) (Type, bool) {
	switch v := t.(type) {
	case *Option:
		return v.Item, true
	case *Array:
		return v.Item, true
	case *FixVec:
		return v.Item, true
	case *DynVec:
		return v.Item, true
	default:
		return nil, false
	}
}

// FieldsOf returns the fields of a Struct or Table.
func FieldsOf(t Type) ([]Field, bool) {
	switch v := t.(type) {
	case *Struct:
		return v.Fields, true
	case *Table:
		return v.Fields, true
	default:
		return nil, false
	}
}

// IsFixed reports whether t has a size determined by the schema alone.
// Only the byte atom and compositions of Array and Struct are fixed.
func IsFixed(t Type) bool {
	switch v := t.(type) {
	case *Byte:
		return true
	case *Array:
		return IsFixed(v.Item)
	case *Struct:
		for _, f := range v.Fields {
			if !IsFixed(f.Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// IsAtom reports whether t is the byte atom.
func IsAtom(t Type) bool {
	_, ok := t.(*Byte)
	return ok
}
