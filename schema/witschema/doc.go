// Package witschema maps WebAssembly Interface Type definitions onto
// Molecule schema declarations.
//
//	WIT                         Molecule
//	──────────────────────────────────────────────────────────
//	bool, u8, s8                byte
//	u16, s16                    array of 2 bytes
//	u32, s32, f32, char         array of 4 bytes
//	u64, s64, f64               array of 8 bytes
//	string                      fixvec of byte
//	list<T>                     fixvec when T is fixed size, else dynvec
//	option<T>                   option
//	record, tuple               struct when all fields are fixed size, else table
//	variant, result             union, item ids are case positions
//	enum                        array of the discriminant width
//	flags                       array of the canonical ABI flags width
//
// Cases without a payload carry the empty Unit struct. Resources and
// handles have no Molecule form and are rejected.
package witschema
