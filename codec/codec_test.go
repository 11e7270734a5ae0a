package codec

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/molecule/codec/internal/header"
	"github.com/wippyai/molecule/errors"
	"github.com/wippyai/molecule/schema"
)

const testSchema = `
namespace: test
declarations:
  - {type: array, name: Byte2, item: byte, item_count: 2}
  - {type: array, name: Uint32, item: byte, item_count: 4}
  - type: struct
    name: Point
    fields:
      - {name: x, typ: Uint32}
      - {name: y, typ: byte}
  - {type: fixvec, name: Bytes, item: byte}
  - {type: dynvec, name: BytesVec, item: Bytes}
  - {type: option, name: BytesOpt, item: Bytes}
  - type: union
    name: Value
    items:
      - {id: 3, typ: Byte2}
      - {id: 7, typ: Bytes}
  - type: table
    name: Person
    fields:
      - {name: id, typ: Uint32}
      - {name: name, typ: Bytes}
      - {name: nick, typ: BytesOpt}
  - {type: table, name: Empty}
  - {type: dynvec, name: People, item: Person}
  - {type: fixvec, name: Points, item: Point}
`

func compileAll(t *testing.T) map[string]*CompiledType {
	t.Helper()
	s, err := schema.Load([]byte(testSchema))
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	c := NewCompiler()
	out := make(map[string]*CompiledType)
	for _, typ := range s.Types() {
		ct, err := c.Compile(typ)
		if err != nil {
			t.Fatalf("compile %s: %v", typ.Name(), err)
		}
		out[typ.Name()] = ct
	}
	return out
}

func u32(v uint32) []byte { return header.Pack(v) }

func cat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func mustEncode(t *testing.T, ct *CompiledType, children ...[]byte) []byte {
	t.Helper()
	out, err := Encode(ct, children...)
	if err != nil {
		t.Fatalf("encode %s: %v", ct.Name, err)
	}
	return out
}

func mustRaw(t *testing.T, ct *CompiledType, raw string) []byte {
	t.Helper()
	out, err := EncodeRaw(ct, []byte(raw))
	if err != nil {
		t.Fatalf("encode raw %s: %v", ct.Name, err)
	}
	return out
}

func encodePerson(t *testing.T, types map[string]*CompiledType, id uint32, name string, nick *string) []byte {
	t.Helper()
	nickBuf := mustEncode(t, types["BytesOpt"])
	if nick != nil {
		nickBuf = mustEncode(t, types["BytesOpt"], mustRaw(t, types["Bytes"], *nick))
	}
	return mustEncode(t, types["Person"], u32(id), mustRaw(t, types["Bytes"], name), nickBuf)
}

func TestDynVecLayout(t *testing.T) {
	types := compileAll(t)

	a := mustRaw(t, types["Bytes"], "ab")
	b := mustRaw(t, types["Bytes"], "cdefgh")
	if len(a) != 6 || len(b) != 10 {
		t.Fatalf("item sizes = %d, %d, want 6, 10", len(a), len(b))
	}

	got := mustEncode(t, types["BytesVec"], a, b)
	want := cat(u32(28), u32(12), u32(18), a, b)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("encoding mismatch (-want +got):\n%s", diff)
	}

	v, err := Decode(types["BytesVec"], got, false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v.ItemCount() != 2 {
		t.Fatalf("ItemCount = %d, want 2", v.ItemCount())
	}
	first, ok := v.Get(0)
	if !ok {
		t.Fatal("Get(0) failed")
	}
	if diff := cmp.Diff(got[12:18], first.AsSlice()); diff != "" {
		t.Errorf("item 0 bytes (-want +got):\n%s", diff)
	}
	second, ok := v.Get(1)
	if !ok {
		t.Fatal("Get(1) failed")
	}
	if diff := cmp.Diff(got[18:28], second.AsSlice()); diff != "" {
		t.Errorf("item 1 bytes (-want +got):\n%s", diff)
	}
	if string(second.RawData()) != "cdefgh" {
		t.Errorf("item 1 = %q, want %q", second.RawData(), "cdefgh")
	}
	if _, ok := v.Get(2); ok {
		t.Error("Get(2) should be out of range")
	}
	if !first.IsValid() || v.Nth(2).IsValid() || (View{}).IsValid() {
		t.Error("IsValid should only hold for views that refer to a value")
	}
}

func TestUnion(t *testing.T) {
	types := compileAll(t)
	u := types["Value"]

	buf, err := EncodeUnion(u, 3, []byte{0xaa, 0xbb})
	if err != nil {
		t.Fatalf("EncodeUnion: %v", err)
	}
	if diff := cmp.Diff([]byte{3, 0, 0, 0, 0xaa, 0xbb}, buf); diff != "" {
		t.Errorf("encoding mismatch (-want +got):\n%s", diff)
	}

	v, err := Decode(u, buf, false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v.ItemID() != 3 {
		t.Errorf("ItemID = %d, want 3", v.ItemID())
	}
	inner, ok := v.Inner()
	if !ok {
		t.Fatal("Inner failed")
	}
	if inner.Type().Name != "Byte2" {
		t.Errorf("inner type = %s, want Byte2", inner.Type().Name)
	}
	if diff := cmp.Diff([]byte{0xaa, 0xbb}, inner.RawData()); diff != "" {
		t.Errorf("inner mismatch (-want +got):\n%s", diff)
	}

	bad := append(u32(99), 0xaa, 0xbb)
	_, err = Decode(u, bad, false)
	if !errors.Is(err, errors.ErrUnknownDiscriminant) {
		t.Errorf("Decode(id 99) error = %v, want unknown discriminant", err)
	}

	if _, err := EncodeUnion(u, 99, nil); errors.KindOf(err) != errors.KindUnknownDiscriminant {
		t.Errorf("EncodeUnion(99) error = %v", err)
	}
	if _, err := EncodeUnion(u, 3, []byte{1}); errors.KindOf(err) != errors.KindSizeMismatch {
		t.Errorf("EncodeUnion short child error = %v", err)
	}
	if _, err := Encode(u, []byte{1}); errors.KindOf(err) != errors.KindInvalidInput {
		t.Errorf("Encode(union) error = %v", err)
	}
}

func TestStructAccess(t *testing.T) {
	types := compileAll(t)
	p := types["Point"]

	buf := mustEncode(t, p, []byte{1, 2, 3, 4}, []byte{9})
	v, err := Decode(p, buf, false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	x, ok := v.Field("x")
	if !ok {
		t.Fatal("Field(x) failed")
	}
	if diff := cmp.Diff([]byte{1, 2, 3, 4}, x.RawData()); diff != "" {
		t.Errorf("x mismatch (-want +got):\n%s", diff)
	}
	y, _ := v.Field("y")
	if y.Byte() != 9 {
		t.Errorf("y = %d, want 9", y.Byte())
	}
	if _, ok := v.Field("z"); ok {
		t.Error("Field(z) should fail")
	}

	if _, err := Encode(p, []byte{1, 2, 3, 4}); errors.KindOf(err) != errors.KindArity {
		t.Errorf("short struct error = %v", err)
	}
	if _, err := Encode(p, []byte{1, 2, 3}, []byte{9}); errors.KindOf(err) != errors.KindSizeMismatch {
		t.Errorf("bad field size error = %v", err)
	}
}

func TestFixVec(t *testing.T) {
	types := compileAll(t)
	pts := types["Points"]

	empty := mustEncode(t, pts)
	if diff := cmp.Diff(u32(0), empty); diff != "" {
		t.Errorf("empty fixvec (-want +got):\n%s", diff)
	}
	v, err := Decode(pts, empty, false)
	if err != nil {
		t.Fatalf("Decode empty: %v", err)
	}
	if !v.IsEmpty() {
		t.Error("expected empty vector")
	}

	p1 := []byte{1, 0, 0, 0, 5}
	p2 := []byte{2, 0, 0, 0, 6}
	buf := mustEncode(t, pts, p1, p2)
	if len(buf) != 14 {
		t.Fatalf("len = %d, want 14", len(buf))
	}
	v, err = Decode(pts, buf, false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	var ys []byte
	for _, item := range v.All() {
		y, _ := item.Field("y")
		ys = append(ys, y.Byte())
	}
	if diff := cmp.Diff([]byte{5, 6}, ys); diff != "" {
		t.Errorf("ys mismatch (-want +got):\n%s", diff)
	}
}

func TestOption(t *testing.T) {
	types := compileAll(t)
	opt := types["BytesOpt"]

	none, err := Decode(opt, nil, false)
	if err != nil {
		t.Fatalf("Decode none: %v", err)
	}
	if !none.IsNone() || none.IsSome() {
		t.Error("expected none")
	}
	if _, ok := none.Value(); ok {
		t.Error("Value on none should fail")
	}

	some, err := Decode(opt, mustRaw(t, types["Bytes"], "x"), false)
	if err != nil {
		t.Fatalf("Decode some: %v", err)
	}
	val, ok := some.Value()
	if !ok || string(val.RawData()) != "x" {
		t.Errorf("Value = %q, %v", val.RawData(), ok)
	}

	_, err = Decode(opt, []byte{1, 0}, false)
	if !errors.Is(err, errors.ErrHeaderTooShort) {
		t.Errorf("bad some error = %v", err)
	}
	if _, err := Encode(opt, nil, nil); errors.KindOf(err) != errors.KindArity {
		t.Errorf("two children error = %v", err)
	}
}

func TestTable(t *testing.T) {
	types := compileAll(t)
	person := types["Person"]

	nick := "bo"
	buf := encodePerson(t, types, 7, "bob", &nick)
	v, err := Decode(person, buf, false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v.FieldCount() != 3 || v.HasExtraFields() {
		t.Errorf("FieldCount = %d, extra = %v", v.FieldCount(), v.HasExtraFields())
	}
	name, _ := v.Field("name")
	if string(name.RawData()) != "bob" {
		t.Errorf("name = %q", name.RawData())
	}
	nv, _ := v.Field("nick")
	val, ok := nv.Value()
	if !ok || string(val.RawData()) != "bo" {
		t.Errorf("nick = %q, %v", val.RawData(), ok)
	}

	// trailing none option is an empty last member
	buf = encodePerson(t, types, 7, "bob", nil)
	if want := 16 + 4 + 7; len(buf) != want {
		t.Fatalf("len = %d, want %d", len(buf), want)
	}
	v, err = Decode(person, buf, false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	nv, _ = v.Field("nick")
	if !nv.IsNone() {
		t.Error("expected none nick")
	}

	if _, err := Encode(person, u32(1)); errors.KindOf(err) != errors.KindArity {
		t.Errorf("short table error = %v", err)
	}
}

func TestTableCompatible(t *testing.T) {
	types := compileAll(t)
	person := types["Person"]

	buf, err := encodeOffsets(person, [][]byte{
		u32(1),
		mustRaw(t, types["Bytes"], "al"),
		{},
		{0xde, 0xad},
	})
	if err != nil {
		t.Fatalf("encodeOffsets: %v", err)
	}

	_, err = Decode(person, buf, false)
	if !errors.Is(err, errors.ErrFieldCountMismatch) {
		t.Fatalf("strict decode error = %v, want field count mismatch", err)
	}

	v, err := Decode(person, buf, true)
	if err != nil {
		t.Fatalf("compatible decode: %v", err)
	}
	if v.FieldCount() != 4 || v.CountExtraFields() != 1 || !v.HasExtraFields() {
		t.Errorf("FieldCount = %d, extra = %d", v.FieldCount(), v.CountExtraFields())
	}
	if _, ok := v.FieldAt(3); ok {
		t.Error("extra field should not be accessible")
	}
	nick, ok := v.FieldAt(2)
	if !ok || !nick.IsNone() {
		t.Error("declared field 2 should decode as none")
	}

	short, err := encodeOffsets(person, [][]byte{u32(1), mustRaw(t, types["Bytes"], "al")})
	if err != nil {
		t.Fatalf("encodeOffsets: %v", err)
	}
	if _, err := Decode(person, short, true); !errors.Is(err, errors.ErrFieldCountMismatch) {
		t.Errorf("missing field error = %v", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	types := compileAll(t)

	valid := mustEncode(t, types["BytesVec"],
		mustRaw(t, types["Bytes"], "ab"),
		mustRaw(t, types["Bytes"], "cdefgh"))

	badTotal := append([]byte{}, valid...)
	copy(badTotal, u32(30))

	lowered := append([]byte{}, valid...)
	copy(lowered[8:], u32(8))

	// three items of 4, 5 and 6 bytes: offsets 16, 20, 25
	three := mustEncode(t, types["BytesVec"],
		mustRaw(t, types["Bytes"], ""),
		mustRaw(t, types["Bytes"], "x"),
		mustRaw(t, types["Bytes"], "yz"))
	swapped := append([]byte{}, three...)
	copy(swapped[8:], three[12:16])
	copy(swapped[12:], three[8:12])

	misaligned := append([]byte{}, valid...)
	copy(misaligned[4:], u32(6))

	tests := []struct {
		name       string
		typ        string
		data       []byte
		compatible bool
		want       error
	}{
		{"short table header", "Person", []byte{1, 2}, false, errors.ErrHeaderTooShort},
		{"short union", "Value", []byte{3, 0}, false, errors.ErrHeaderTooShort},
		{"short fixvec", "Bytes", []byte{}, false, errors.ErrHeaderTooShort},
		{"total mismatch", "BytesVec", badTotal, false, errors.ErrSizeMismatch},
		{"offset below previous", "BytesVec", lowered, false, errors.ErrOffsetNotMonotonic},
		{"offsets swapped", "BytesVec", swapped, false, errors.ErrOffsetNotMonotonic},
		{"first offset misaligned", "BytesVec", misaligned, false, errors.ErrOffsetMisaligned},
		{"offset table past end", "BytesVec", cat(u32(8), u32(16)), false, errors.ErrHeaderTooShort},
		{"struct size", "Point", []byte{1, 2, 3}, false, errors.ErrSizeMismatch},
		{"array size", "Byte2", []byte{1}, false, errors.ErrSizeMismatch},
		{"fixvec count", "Bytes", cat(u32(3), []byte{1, 2}), false, errors.ErrSizeMismatch},
		{"empty fixvec with payload", "Bytes", cat(u32(0), []byte{1}), false, errors.ErrSizeMismatch},
		{"empty table with fields", "Person", u32(4), true, errors.ErrSizeMismatch},
		{"unknown union id", "Value", cat(u32(99), []byte{1, 2}), false, errors.ErrUnknownDiscriminant},
		{"union inner size", "Value", cat(u32(3), []byte{1}), false, errors.ErrSizeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(types[tt.typ], tt.data, tt.compatible)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeAcceptsEmpty(t *testing.T) {
	types := compileAll(t)

	tests := []struct {
		name string
		typ  string
		data []byte
	}{
		{"empty dynvec", "BytesVec", u32(4)},
		{"empty table", "Empty", u32(4)},
		{"empty fixvec", "Bytes", u32(0)},
		{"none", "BytesOpt", []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Decode(types[tt.typ], tt.data, false)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if v.Len() != 0 {
				t.Errorf("Len = %d, want 0", v.Len())
			}
		})
	}
}

func TestNestedErrorPath(t *testing.T) {
	types := compileAll(t)

	good := encodePerson(t, types, 1, "ann", nil)
	bad := encodePerson(t, types, 2, "bob", nil)
	// corrupt the name fixvec count of the second person
	copy(bad[20:], u32(9))

	buf := mustEncode(t, types["People"], good, bad)
	_, err := Decode(types["People"], buf, false)
	if !errors.Is(err, errors.ErrSizeMismatch) {
		t.Fatalf("error = %v, want size mismatch", err)
	}

	var e *errors.Error
	if !errors.As(err, &e) {
		t.Fatalf("error %T is not *errors.Error", err)
	}
	if diff := cmp.Diff([]string{"People", "[1]", "name"}, e.Path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	if e.Type != "Bytes" {
		t.Errorf("Type = %q, want Bytes", e.Type)
	}
}

func TestDefaultDecodes(t *testing.T) {
	types := compileAll(t)

	for name, ct := range types {
		t.Run(name, func(t *testing.T) {
			buf := Default(ct)
			if _, err := Decode(ct, buf, false); err != nil {
				t.Errorf("Default(%s) = %x does not decode: %v", name, buf, err)
			}
		})
	}

	if diff := cmp.Diff(cat(u32(3), []byte{0, 0}), Default(types["Value"])); diff != "" {
		t.Errorf("union default (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(u32(4), Default(types["BytesVec"])); diff != "" {
		t.Errorf("dynvec default (-want +got):\n%s", diff)
	}
}

func TestEncodeRaw(t *testing.T) {
	types := compileAll(t)

	if _, err := EncodeRaw(types["Byte2"], []byte{1}); errors.KindOf(err) != errors.KindArity {
		t.Errorf("short array error = %v", err)
	}
	if _, err := EncodeRaw(types["Points"], []byte{1}); errors.KindOf(err) != errors.KindInvalidInput {
		t.Errorf("non-byte fixvec error = %v", err)
	}
	got, err := EncodeRaw(types["Byte2"], []byte{1, 2})
	if err != nil {
		t.Fatalf("EncodeRaw: %v", err)
	}
	if diff := cmp.Diff([]byte{1, 2}, got); diff != "" {
		t.Errorf("array mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeNilType(t *testing.T) {
	_, err := Decode(nil, nil, false)
	if errors.KindOf(err) != errors.KindNilPointer {
		t.Errorf("error = %v, want nil pointer", err)
	}
}

func TestFromSliceUnchecked(t *testing.T) {
	types := compileAll(t)
	buf := encodePerson(t, types, 5, "eve", nil)

	v := FromSliceUnchecked(types["Person"], buf)
	id, ok := v.Field("id")
	if !ok {
		t.Fatal("Field(id) failed")
	}
	if header.Unpack(id.AsSlice()) != 5 {
		t.Errorf("id = %x", id.AsSlice())
	}
	if v.TotalSize() != len(buf) {
		t.Errorf("TotalSize = %d, want %d", v.TotalSize(), len(buf))
	}
}
