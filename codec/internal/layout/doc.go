// Package layout computes the static byte layout of schema nodes.
//
// Only the byte atom, arrays and structs have a size known from the schema
// alone. Every other kind is sized at runtime by its header:
//
//   - byte: size 1
//   - array: item size * count, item i at item size * i
//   - struct: sum of field sizes, fields packed back to back with no padding
//   - fixvec: header + count * item size; the calculator reports the stride
//   - option, union, dynvec, table: not statically sized
//
// # Usage
//
//	info, err := layout.NewCalculator().Calculate(node)
//	// info.Fixed, info.Size, info.ItemSize, info.FieldOffs available
package layout
