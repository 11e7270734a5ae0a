// Package molecule is the code-generation core of a Molecule schema compiler.
//
// Molecule is a compact, zero-copy binary serialization format. A schema
// declares types built from the single byte atom and six composite kinds;
// this module computes their layouts, encodes and validates buffers, and
// derives the facts a backend needs to emit typed accessors.
//
// # Architecture Overview
//
//	molecule/            Root package with the Entity and Memory interfaces
//	├── schema/          Schema AST, verification and the intermediate loader
//	│   └── witschema/   WIT front end
//	├── codec/           Layout, encoding, validation and zero-copy views
//	├── accessor/        Per-type facts for accessor generation
//	├── wasmview/        Validation of buffers inside guest linear memory
//	├── errors/          Structured error types
//	└── cmd/molc/        Command line tool
//
// # Quick Start
//
//	s, err := schema.LoadFile("types.yaml")
//	if err != nil {
//	    return err
//	}
//	ct, err := codec.NewCompiler().CompileNamed(s, "Person")
//	if err != nil {
//	    return err
//	}
//	v, err := codec.Decode(ct, buf, false)
//
// # Wire Format
//
// All integers are little-endian and every header unit is 4 bytes. Structs
// and arrays carry no header. Dynvecs and tables are laid out as
//
//	[total_size][offset_0]...[offset_n-1][item_0]...[item_n-1]
//
// with offset_0 = 4*(n+1).
package molecule
