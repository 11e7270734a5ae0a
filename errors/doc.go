// Package errors provides structured error types for the molecule module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the member path, the schema type name and a cause chain.
//
// Decode failures use one of six structural kinds:
//
//	header_too_short      slice shorter than the header/offset-table region
//	size_mismatch         declared or static total size != slice length
//	offset_misaligned     first offset not a multiple of 4, or below 8
//	offset_not_monotonic  adjacent offset-table entries decrease
//	field_count_mismatch  table field count below schema, or above it in strict mode
//	unknown_discriminant  union item id not declared by the schema
//
// A nested member's failure is returned unchanged, so the Path and Type of
// the error always name the leaf that failed:
//
//	[decode] size_mismatch at Person.address.zip: type Uint32 - 3 != 4
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindArity).
//		Type("Point").
//		Detail("got %d children, want %d", 1, 2).
//		Build()
//
// All errors implement the standard error interface and match with errors.Is
// by phase and kind, so the exported sentinels work as targets:
//
//	if errors.Is(err, errors.ErrFieldCountMismatch) { ... }
package errors
