package codec

import (
	"iter"

	"github.com/wippyai/molecule"
	"github.com/wippyai/molecule/codec/internal/header"
)

// View is a read-only window over an encoded buffer. Views returned by
// Decode, and every view derived from one, are guaranteed in bounds.
// Views built with FromSliceUnchecked carry no such guarantee.
//
// Accessors that do not apply to the view's kind return their zero value.
type View struct {
	t     *CompiledType
	data  []byte
	count int
}

var _ molecule.Entity = View{}

// FromSliceUnchecked wraps data as t without validating it. Use it only for
// buffers this process produced or validated earlier.
func FromSliceUnchecked(t *CompiledType, data []byte) View {
	return newView(t, data)
}

func newView(t *CompiledType, data []byte) View {
	v := View{t: t, data: data}
	if t == nil {
		return v
	}
	switch t.Kind {
	case KindArray:
		v.count = t.Count
	case KindStruct:
		v.count = len(t.Fields)
	case KindFixVec:
		if len(data) >= HeaderSize {
			v.count = int(header.Unpack(data))
		}
	case KindDynVec, KindTable:
		if len(data) >= 2*HeaderSize {
			v.count = int(header.UnpackAt(data, 1)/HeaderSize) - 1
		}
	}
	return v
}

// Type returns the compiled type the view was decoded as.
func (v View) Type() *CompiledType { return v.t }

// IsValid reports whether v refers to a value. The zero View, returned by
// out-of-range lookups, does not.
func (v View) IsValid() bool { return v.t != nil }

// Kind is the kind of the view's type. The zero View reports KindByte; use
// IsValid to tell it apart from a byte atom.
func (v View) Kind() TypeKind {
	if v.t == nil {
		return KindByte
	}
	return v.t.Kind
}

// AsSlice returns the underlying bytes.
func (v View) AsSlice() []byte { return v.data }

// TotalSize is the encoded length of the view.
func (v View) TotalSize() int { return len(v.data) }

// Len is the number of items of an array or vector and the number of
// members carried by a struct or table, extra table fields included.
func (v View) Len() int { return v.count }

func (v View) IsEmpty() bool { return v.count == 0 }

// ItemCount is Len for arrays and vectors.
func (v View) ItemCount() int {
	switch v.Kind() {
	case KindArray, KindFixVec, KindDynVec:
		return v.count
	}
	return 0
}

// FieldCount is the number of fields actually present in a table or struct.
func (v View) FieldCount() int {
	switch v.Kind() {
	case KindStruct, KindTable:
		return v.count
	}
	return 0
}

// CountExtraFields is the number of trailing table fields the schema does
// not declare. Only compatible decoding admits them.
func (v View) CountExtraFields() int {
	if v.Kind() != KindTable {
		return 0
	}
	if extra := v.count - len(v.t.Fields); extra > 0 {
		return extra
	}
	return 0
}

func (v View) HasExtraFields() bool { return v.CountExtraFields() > 0 }

// Get returns item i of an array, fixvec or dynvec. ok is false when i is
// out of range.
func (v View) Get(i int) (View, bool) {
	if i < 0 || i >= v.count {
		return View{}, false
	}
	switch v.Kind() {
	case KindArray:
		size := int(v.t.ItemSize)
		return newView(v.t.Item, v.data[i*size:(i+1)*size]), true
	case KindFixVec:
		size := int(v.t.ItemSize)
		start := HeaderSize + i*size
		return newView(v.t.Item, v.data[start:start+size]), true
	case KindDynVec:
		start, end := memberRange(v.data, i, v.count)
		return newView(v.t.Item, v.data[start:end]), true
	}
	return View{}, false
}

// Nth is Get without the range flag. It returns the zero View out of range.
func (v View) Nth(i int) View {
	item, _ := v.Get(i)
	return item
}

// All iterates the items of an array or vector.
func (v View) All() iter.Seq2[int, View] {
	return func(yield func(int, View) bool) {
		for i := range v.ItemCount() {
			item, _ := v.Get(i)
			if !yield(i, item) {
				return
			}
		}
	}
}

// FieldAt returns declared field i of a struct or table.
func (v View) FieldAt(i int) (View, bool) {
	switch v.Kind() {
	case KindStruct:
		if i < 0 || i >= len(v.t.Fields) {
			return View{}, false
		}
		f := v.t.Fields[i]
		return newView(f.Type, v.data[f.Offset:f.Offset+f.Size]), true
	case KindTable:
		if i < 0 || i >= len(v.t.Fields) || i >= v.count {
			return View{}, false
		}
		start, end := memberRange(v.data, i, v.count)
		return newView(v.t.Fields[i].Type, v.data[start:end]), true
	}
	return View{}, false
}

// Field returns the struct or table field called name.
func (v View) Field(name string) (View, bool) {
	if v.t == nil {
		return View{}, false
	}
	i, ok := v.t.Field(name)
	if !ok {
		return View{}, false
	}
	return v.FieldAt(i)
}

// ItemID returns the discriminant of a union.
func (v View) ItemID() uint32 {
	if v.Kind() != KindUnion || len(v.data) < HeaderSize {
		return 0
	}
	return header.Unpack(v.data)
}

// Inner returns the payload of a union, typed by its discriminant.
func (v View) Inner() (View, bool) {
	if v.Kind() != KindUnion || len(v.data) < HeaderSize {
		return View{}, false
	}
	item, ok := v.t.Case(header.Unpack(v.data))
	if !ok {
		return View{}, false
	}
	return newView(item, v.data[HeaderSize:]), true
}

func (v View) IsNone() bool { return v.Kind() == KindOption && len(v.data) == 0 }

func (v View) IsSome() bool { return v.Kind() == KindOption && len(v.data) > 0 }

// Value returns the present value of an option.
func (v View) Value() (View, bool) {
	if !v.IsSome() {
		return View{}, false
	}
	return newView(v.t.Item, v.data), true
}

// RawData returns the payload bytes of a byte array or byte fixvec.
func (v View) RawData() []byte {
	if v.t == nil || !v.t.HasRawData() {
		return nil
	}
	if v.t.Kind == KindFixVec {
		return v.data[HeaderSize:]
	}
	return v.data
}

// Byte returns the value of a byte atom.
func (v View) Byte() byte {
	if v.Kind() != KindByte || len(v.data) != 1 {
		return 0
	}
	return v.data[0]
}
