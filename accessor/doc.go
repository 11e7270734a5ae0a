// Package accessor derives the per-type facts a backend needs to emit typed
// Molecule wrappers: static sizes, member byte ranges or strides, the encode
// and validate variants, union dispatch tables and the accessor methods.
//
// Every accessor range is a constant-time slice computation over a buffer
// that already passed validation.
package accessor
