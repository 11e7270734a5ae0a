package header

import (
	"encoding/binary"
	"math"
)

// Size is the width of a header unit in bytes.
const Size = 4

func SafeMulU32(a, b uint32) (uint32, bool) {
	if b != 0 && a > math.MaxUint32/b {
		return 0, false
	}
	return a * b, true
}

func SafeAddU32(a, b uint32) (uint32, bool) {
	if a > math.MaxUint32-b {
		return 0, false
	}
	return a + b, true
}

// Unpack reads the header unit at the start of b. The caller guarantees len(b) >= Size.
func Unpack(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// UnpackAt reads the i-th header unit of b.
func UnpackAt(b []byte, i int) uint32 {
	return binary.LittleEndian.Uint32(b[i*Size:])
}

// Pack returns v as a standalone header unit.
func Pack(v uint32) []byte {
	var b [Size]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

// Append appends v as a header unit to b.
func Append(b []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, v)
}

// TableSize is the size of a total-size header plus an offset table of n entries.
func TableSize(n int) uint64 {
	return uint64(Size) * (uint64(n) + 1)
}
