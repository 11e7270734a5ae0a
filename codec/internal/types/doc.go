// Package types defines the compiled type structures used by the codec.
//
// CompiledType is a schema node with its layout facts (static size, item
// stride, struct field offsets) and lookup indexes (field names, union ids)
// resolved once, so encoding, decoding and accessors never recompute them.
//
// This package is internal to the codec.
package types
