package molecule

// HeaderSize is the width of every size, count, offset and item id field.
const HeaderSize = 4

// Entity is the capability shared by every Molecule value: a read-only view
// over its encoded bytes.
type Entity interface {
	AsSlice() []byte
}

// Memory is a linear memory holding encoded buffers, such as a WebAssembly
// guest's. Read returns a view of the region, not a copy; ok is false when
// the region is out of range.
type Memory interface {
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
	Size() uint32
}
