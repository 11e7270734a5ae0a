// Package header provides the header-unit primitives shared by the codec.
//
// Every size, count and offset in the format is a 4-byte little-endian
// unsigned integer. This package packs and unpacks those units and offers
// overflow-checked arithmetic for size computations.
//
// # Contents
//
//   - helpers.go: header-unit read/write and safe u32 arithmetic
//
// This package is internal to the codec.
package header
