package wasmview

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/molecule/codec"
	"github.com/wippyai/molecule/errors"
	"github.com/wippyai/molecule/schema"
)

// memoryOnly exports a single one-page memory.
var memoryOnly = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x05, 0x03, 0x01, 0x00, 0x01,
	0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
}

// bumpAlloc exports a memory and a cabi_realloc that bumps a global
// starting at 1024.
var bumpAlloc = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	// type: (i32 i32 i32 i32) -> i32
	0x01, 0x09, 0x01, 0x60, 0x04, 0x7f, 0x7f, 0x7f, 0x7f, 0x01, 0x7f,
	// function
	0x03, 0x02, 0x01, 0x00,
	// memory
	0x05, 0x03, 0x01, 0x00, 0x01,
	// global: mut i32 = 1024
	0x06, 0x07, 0x01, 0x7f, 0x01, 0x41, 0x80, 0x08, 0x0b,
	// exports
	0x07, 0x19, 0x02,
	0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
	0x0c, 'c', 'a', 'b', 'i', '_', 'r', 'e', 'a', 'l', 'l', 'o', 'c', 0x00, 0x00,
	// code: global.get 0; global.get 0; local.get 3; i32.add; global.set 0
	0x0a, 0x0d, 0x01, 0x0b, 0x00, 0x23, 0x00, 0x23, 0x00, 0x20, 0x03, 0x6a, 0x24, 0x00, 0x0b,
}

const testSchema = `
declarations:
  - {type: fixvec, name: Bytes, item: byte}
  - {type: dynvec, name: BytesVec, item: Bytes}
  - {type: option, name: BytesOpt, item: Bytes}
  - {type: array, name: Byte4, item: byte, item_count: 4}
`

func instantiate(t *testing.T, wasm []byte) api.Module {
	t.Helper()
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	t.Cleanup(func() { r.Close(ctx) })

	mod, err := r.Instantiate(ctx, wasm)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	return mod
}

func compile(t *testing.T, name string) *codec.CompiledType {
	t.Helper()
	s, err := schema.Load([]byte(testSchema))
	if err != nil {
		t.Fatal(err)
	}
	ct, err := codec.NewCompiler().CompileNamed(s, name)
	if err != nil {
		t.Fatal(err)
	}
	return ct
}

func encodeVec(t *testing.T, items ...string) []byte {
	t.Helper()
	bytesType := compile(t, "Bytes")
	children := make([][]byte, len(items))
	for i, it := range items {
		b, err := codec.EncodeRaw(bytesType, []byte(it))
		if err != nil {
			t.Fatal(err)
		}
		children[i] = b
	}
	out, err := codec.Encode(compile(t, "BytesVec"), children...)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestDecodeInGuestMemory(t *testing.T) {
	g, err := FromModule(instantiate(t, memoryOnly))
	if err != nil {
		t.Fatalf("FromModule() error = %v", err)
	}

	buf := encodeVec(t, "ab", "cdefgh")
	if err := g.Store(64, buf); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	ct := compile(t, "BytesVec")
	v, err := g.Decode(64, uint32(len(buf)), ct, false)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	item, ok := v.Get(1)
	if !ok || string(item.RawData()) != "cdefgh" {
		t.Errorf("Get(1) = %q, %v", item.RawData(), ok)
	}

	at, err := g.DecodeAt(64, ct, false)
	if err != nil {
		t.Fatalf("DecodeAt() error = %v", err)
	}
	if diff := cmp.Diff(buf, at.AsSlice()); diff != "" {
		t.Errorf("DecodeAt slice (-want +got):\n%s", diff)
	}

	// views alias guest memory
	raw, _ := g.Bytes(64, uint32(len(buf)))
	raw[len(raw)-1] = 'H'
	item, _ = at.Get(1)
	if string(item.RawData()) != "cdefgH" {
		t.Errorf("view should alias guest memory, got %q", item.RawData())
	}
}

func TestGuestBounds(t *testing.T) {
	g, err := FromModule(instantiate(t, memoryOnly))
	if err != nil {
		t.Fatal(err)
	}
	const pageSize = 65536

	tests := []struct {
		name string
		run  func() error
	}{
		{"read past end", func() error {
			_, err := g.Bytes(pageSize-2, 4)
			return err
		}},
		{"store past end", func() error {
			return g.Store(pageSize-1, []byte{1, 2})
		}},
		{"decode past end", func() error {
			_, err := g.Decode(pageSize, 4, compile(t, "BytesVec"), false)
			return err
		}},
		{"size header past end", func() error {
			_, err := g.SizeAt(pageSize-2, compile(t, "Bytes"))
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); errors.KindOf(err) != errors.KindOutOfBounds {
				t.Errorf("error = %v, want out of bounds", err)
			}
		})
	}
}

func TestSizeAt(t *testing.T) {
	g, err := FromModule(instantiate(t, memoryOnly))
	if err != nil {
		t.Fatal(err)
	}

	fixvec, _ := codec.EncodeRaw(compile(t, "Bytes"), []byte("hello"))
	if err := g.Store(0, fixvec); err != nil {
		t.Fatal(err)
	}
	size, err := g.SizeAt(0, compile(t, "Bytes"))
	if err != nil || size != 9 {
		t.Errorf("SizeAt(fixvec) = %d, %v, want 9", size, err)
	}

	size, err = g.SizeAt(0, compile(t, "Byte4"))
	if err != nil || size != 4 {
		t.Errorf("SizeAt(array) = %d, %v, want 4", size, err)
	}

	if _, err := g.SizeAt(0, compile(t, "BytesOpt")); errors.KindOf(err) != errors.KindUnsupported {
		t.Errorf("SizeAt(option) error = %v, want unsupported", err)
	}
}

func TestPut(t *testing.T) {
	ctx := context.Background()

	g, err := FromModule(instantiate(t, bumpAlloc))
	if err != nil {
		t.Fatal(err)
	}
	buf := encodeVec(t, "x", "yz")
	ptr, err := g.Put(ctx, buf)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if ptr != 1024 {
		t.Errorf("ptr = %d, want 1024", ptr)
	}
	next, err := g.Put(ctx, buf)
	if err != nil {
		t.Fatal(err)
	}
	if next != 1024+uint32(len(buf)) {
		t.Errorf("second ptr = %d, want %d", next, 1024+len(buf))
	}

	v, err := g.DecodeAt(next, compile(t, "BytesVec"), false)
	if err != nil {
		t.Fatalf("DecodeAt() error = %v", err)
	}
	if v.ItemCount() != 2 {
		t.Errorf("ItemCount = %d, want 2", v.ItemCount())
	}

	noAlloc, err := FromModule(instantiate(t, memoryOnly))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := noAlloc.Put(ctx, buf); errors.KindOf(err) != errors.KindNotFound {
		t.Errorf("Put() without allocator error = %v", err)
	}
}

func TestRejectsCorruptGuestBuffer(t *testing.T) {
	g, err := FromModule(instantiate(t, memoryOnly))
	if err != nil {
		t.Fatal(err)
	}
	buf := encodeVec(t, "ab")
	buf[0] = 0xff
	if err := g.Store(0, buf); err != nil {
		t.Fatal(err)
	}
	_, err = g.Decode(0, uint32(len(buf)), compile(t, "BytesVec"), false)
	if !errors.Is(err, errors.ErrSizeMismatch) {
		t.Errorf("error = %v, want size mismatch", err)
	}
}
