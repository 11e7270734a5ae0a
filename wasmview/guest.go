package wasmview

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/molecule"
	"github.com/wippyai/molecule/codec"
	"github.com/wippyai/molecule/errors"
)

// CabiRealloc is the allocator export used by Put.
const CabiRealloc = "cabi_realloc"

// Guest reads and writes Molecule buffers in a guest's linear memory.
// Decoded views alias guest memory, so they are only valid until the guest
// next grows or rewrites that region.
type Guest struct {
	mem   molecule.Memory
	alloc api.Function
}

// New wraps a linear memory. Guests built this way cannot allocate.
func New(mem molecule.Memory) *Guest {
	return &Guest{mem: mem}
}

// FromModule wraps the exported memory of an instantiated module, along
// with its cabi_realloc export when present.
func FromModule(mod api.Module) (*Guest, error) {
	mem := mod.Memory()
	if mem == nil {
		return nil, errors.NotFound(errors.PhaseGuest, "memory export", mod.Name())
	}
	g := &Guest{mem: mem, alloc: mod.ExportedFunction(CabiRealloc)}
	Logger().Debug("guest attached",
		zap.String("module", mod.Name()),
		zap.Uint32("memory_size", mem.Size()),
		zap.Bool("allocator", g.alloc != nil))
	return g, nil
}

// Bytes returns the region [ptr, ptr+length) without copying.
func (g *Guest) Bytes(ptr, length uint32) ([]byte, error) {
	data, ok := g.mem.Read(ptr, length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseGuest, nil, int(ptr), int(length), int(g.mem.Size()))
	}
	return data, nil
}

// Decode validates the buffer at [ptr, ptr+length) as t in place.
func (g *Guest) Decode(ptr, length uint32, t *codec.CompiledType, compatible bool) (codec.View, error) {
	data, err := g.Bytes(ptr, length)
	if err != nil {
		return codec.View{}, err
	}
	return codec.Decode(t, data, compatible)
}

// DecodeAt is Decode for buffers whose length follows from their type or
// their header: fixed kinds, fixvecs, dynvecs and tables.
func (g *Guest) DecodeAt(ptr uint32, t *codec.CompiledType, compatible bool) (codec.View, error) {
	length, err := g.SizeAt(ptr, t)
	if err != nil {
		return codec.View{}, err
	}
	return g.Decode(ptr, length, t, compatible)
}

// SizeAt reports the encoded length of the t value stored at ptr.
func (g *Guest) SizeAt(ptr uint32, t *codec.CompiledType) (uint32, error) {
	switch t.Kind {
	case codec.KindByte, codec.KindArray, codec.KindStruct:
		return t.Size, nil
	case codec.KindFixVec:
		count, err := g.header(ptr)
		if err != nil {
			return 0, err
		}
		size := uint64(codec.HeaderSize) + uint64(count)*uint64(t.ItemSize)
		if size > math.MaxUint32 {
			return 0, errors.Overflow(errors.PhaseGuest, t.Name, "fixvec size exceeds 32 bits")
		}
		return uint32(size), nil
	case codec.KindDynVec, codec.KindTable:
		return g.header(ptr)
	default:
		return 0, errors.New(errors.PhaseGuest, errors.KindUnsupported).
			Type(t.Name).
			Detail("%s buffers do not record their own length", t.Kind).
			Build()
	}
}

func (g *Guest) header(ptr uint32) (uint32, error) {
	b, err := g.Bytes(ptr, codec.HeaderSize)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Store writes an encoded buffer at ptr.
func (g *Guest) Store(ptr uint32, data []byte) error {
	if !g.mem.Write(ptr, data) {
		return errors.OutOfBounds(errors.PhaseGuest, nil, int(ptr), len(data), int(g.mem.Size()))
	}
	return nil
}

// Put allocates guest memory through cabi_realloc and copies data into it.
func (g *Guest) Put(ctx context.Context, data []byte) (uint32, error) {
	if g.alloc == nil {
		return 0, errors.NotFound(errors.PhaseGuest, "allocator export", CabiRealloc)
	}
	if uint64(len(data)) > math.MaxUint32 {
		return 0, errors.Overflow(errors.PhaseGuest, "", "buffer exceeds guest address space")
	}
	res, err := g.alloc.Call(ctx, 0, 0, codec.HeaderSize, uint64(len(data)))
	if err != nil {
		return 0, errors.Wrap(errors.PhaseGuest, errors.KindInvalidInput, err, CabiRealloc+" failed")
	}
	ptr := api.DecodeU32(res[0])
	if err := g.Store(ptr, data); err != nil {
		return 0, err
	}
	return ptr, nil
}
