package types

import (
	"github.com/wippyai/molecule/schema"
)

// CompiledType is a schema node with its layout facts resolved.
type CompiledType struct {
	Node       schema.Type
	Item       *CompiledType
	FieldIndex map[string]int
	CaseIndex  map[uint32]int
	Name       string
	Fields     []Field
	Cases      []Case
	Count      int
	Size       uint32
	ItemSize   uint32
	Kind       schema.Kind
	Fixed      bool
}

// Field is a struct or table member. Offset and Size are static for struct
// fields and zero for table fields.
type Field struct {
	Type   *CompiledType
	Name   string
	Offset uint32
	Size   uint32
}

// Case is a union item.
type Case struct {
	Type *CompiledType
	ID   uint32
}

func (ct *CompiledType) IsAtom() bool {
	return ct.Kind == schema.KindByte
}

// HasRawData reports whether the payload is a plain byte run: arrays and
// fixvecs of the byte atom.
func (ct *CompiledType) HasRawData() bool {
	switch ct.Kind {
	case schema.KindArray, schema.KindFixVec:
		return ct.Item != nil && ct.Item.IsAtom()
	default:
		return false
	}
}

// Case returns the item type declared for a union discriminant.
func (ct *CompiledType) Case(id uint32) (*CompiledType, bool) {
	i, ok := ct.CaseIndex[id]
	if !ok {
		return nil, false
	}
	return ct.Cases[i].Type, true
}

// Field returns the index of a named struct or table field.
func (ct *CompiledType) Field(name string) (int, bool) {
	i, ok := ct.FieldIndex[name]
	return i, ok
}

// DeclaredCount is the number of members a table or struct declares.
func (ct *CompiledType) DeclaredCount() int {
	return len(ct.Fields)
}
