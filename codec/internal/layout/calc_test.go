package layout

import (
	"math"
	"testing"

	"github.com/wippyai/molecule/errors"
	"github.com/wippyai/molecule/schema"
)

func byteArray(name string, n int) *schema.Array {
	return &schema.Array{TypeName: name, Item: schema.ByteType, Count: n}
}

func TestCalculateByte(t *testing.T) {
	info, err := NewCalculator().Calculate(schema.ByteType)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if !info.Fixed || info.Size != 1 {
		t.Errorf("byte: got fixed=%v size=%d, want fixed size 1", info.Fixed, info.Size)
	}
}

func TestCalculateArray(t *testing.T) {
	c := NewCalculator()

	tests := []struct {
		name     string
		typ      *schema.Array
		size     uint32
		itemSize uint32
	}{
		{"byte32", byteArray("Byte32", 32), 32, 1},
		{"uint32", byteArray("Uint32", 4), 4, 1},
		{"nested", &schema.Array{TypeName: "Byte32x3", Item: byteArray("Byte32", 32), Count: 3}, 96, 32},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info, err := c.Calculate(tc.typ)
			if err != nil {
				t.Fatalf("Calculate: %v", err)
			}
			if !info.Fixed {
				t.Error("array should be fixed size")
			}
			if info.Size != tc.size {
				t.Errorf("size: got %d, want %d", info.Size, tc.size)
			}
			if info.ItemSize != tc.itemSize {
				t.Errorf("item size: got %d, want %d", info.ItemSize, tc.itemSize)
			}
		})
	}
}

func TestCalculateStruct(t *testing.T) {
	c := NewCalculator()

	t.Run("empty", func(t *testing.T) {
		info, err := c.Calculate(&schema.Struct{TypeName: "Unit"})
		if err != nil {
			t.Fatalf("Calculate: %v", err)
		}
		if !info.Fixed || info.Size != 0 {
			t.Errorf("got fixed=%v size=%d, want fixed size 0", info.Fixed, info.Size)
		}
	})

	t.Run("packed_fields", func(t *testing.T) {
		s := &schema.Struct{
			TypeName: "Point",
			Fields: []schema.Field{
				{Name: "flag", Type: schema.ByteType},
				{Name: "x", Type: byteArray("Uint32", 4)},
				{Name: "hash", Type: byteArray("Byte32", 32)},
			},
		}
		info, err := c.Calculate(s)
		if err != nil {
			t.Fatalf("Calculate: %v", err)
		}

		wantOffs := []uint32{0, 1, 5}
		wantSizes := []uint32{1, 4, 32}
		for i := range wantOffs {
			if info.FieldOffs[i] != wantOffs[i] {
				t.Errorf("field %d offset: got %d, want %d", i, info.FieldOffs[i], wantOffs[i])
			}
			if info.FieldSizes[i] != wantSizes[i] {
				t.Errorf("field %d size: got %d, want %d", i, info.FieldSizes[i], wantSizes[i])
			}
		}
		if info.Size != 37 {
			t.Errorf("size: got %d, want 37", info.Size)
		}
	})
}

func TestCalculateDynamicKinds(t *testing.T) {
	c := NewCalculator()
	u32 := byteArray("Uint32", 4)

	dynamic := []schema.Type{
		&schema.Option{TypeName: "Uint32Opt", Item: u32},
		&schema.Union{TypeName: "Value", Items: []schema.UnionItem{{ID: 0, Type: u32}}},
		&schema.DynVec{TypeName: "Uint32Vecs", Item: &schema.FixVec{TypeName: "Bytes", Item: schema.ByteType}},
		&schema.Table{TypeName: "Empty"},
	}
	for _, typ := range dynamic {
		t.Run(typ.Kind().String(), func(t *testing.T) {
			info, err := c.Calculate(typ)
			if err != nil {
				t.Fatalf("Calculate: %v", err)
			}
			if info.Fixed {
				t.Errorf("%s should not be fixed size", typ.Name())
			}
		})
	}

	t.Run("fixvec_stride", func(t *testing.T) {
		info, err := c.Calculate(&schema.FixVec{TypeName: "Uint32Vec", Item: u32})
		if err != nil {
			t.Fatalf("Calculate: %v", err)
		}
		if info.Fixed {
			t.Error("fixvec should not be fixed size")
		}
		if info.ItemSize != 4 {
			t.Errorf("item size: got %d, want 4", info.ItemSize)
		}
	})
}

func TestCalculateOverflow(t *testing.T) {
	c := NewCalculator()

	big := byteArray("Big", math.MaxInt32)
	huge := &schema.Array{TypeName: "Huge", Item: big, Count: 4}

	_, err := c.Calculate(huge)
	if err == nil {
		t.Fatal("expected overflow error")
	}
	if errors.KindOf(err) != errors.KindOverflow {
		t.Errorf("kind: got %q, want %q", errors.KindOf(err), errors.KindOverflow)
	}

	s := &schema.Struct{
		TypeName: "TooBig",
		Fields: []schema.Field{
			{Name: "a", Type: big},
			{Name: "b", Type: big},
			{Name: "c", Type: big},
		},
	}
	if _, err := c.Calculate(s); errors.KindOf(err) != errors.KindOverflow {
		t.Errorf("struct overflow: got %v", err)
	}
}

func TestCaching(t *testing.T) {
	c := NewCalculator()

	s := &schema.Struct{
		TypeName: "Pair",
		Fields: []schema.Field{
			{Name: "a", Type: schema.ByteType},
			{Name: "b", Type: schema.ByteType},
		},
	}

	info1, _ := c.Calculate(s)
	info2, _ := c.Calculate(s)

	if info1.Size != info2.Size || &info1.FieldOffs[0] != &info2.FieldOffs[0] {
		t.Error("cached results should be identical")
	}
}
