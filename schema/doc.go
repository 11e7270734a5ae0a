// Package schema defines the verified schema AST consumed by the codec.
//
// A schema is a set of named declarations built from the byte atom and six
// composite kinds:
//
//	Kind     Header                         Members
//	─────────────────────────────────────────────────────────────
//	option   none                           empty = none, else item
//	union    item id (u32)                  one item chosen by id
//	array    none                           Count fixed-size items
//	struct   none                           fixed-size fields at static offsets
//	fixvec   item count (u32)               fixed-size items
//	dynvec   total size + offset table      variable-size items
//	table    total size + offset table      named variable-size fields
//
// Type is a sealed interface; every algorithm over it is a type switch over
// the closed set above.
//
// Schemas normally come from a front end. This package loads the YAML/JSON
// intermediate form of such a front end:
//
//	namespace: blockchain
//	declarations:
//	  - type: array
//	    name: Byte32
//	    item: byte
//	    item_count: 32
//	  - type: table
//	    name: Script
//	    fields:
//	      - {name: code_hash, typ: Byte32}
//	      - {name: args, typ: Bytes}
//
// Load and LoadFile run Verify before returning. A verified schema is never
// mutated, so it can be shared across goroutines.
package schema
