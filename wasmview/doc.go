// Package wasmview validates Molecule buffers that live in the linear memory
// of a WebAssembly guest running under wazero.
//
// Views returned by a Guest alias guest memory; nothing is copied between
// host and guest on the read path.
//
//	g, err := wasmview.FromModule(mod)
//	if err != nil {
//	    return err
//	}
//	v, err := g.DecodeAt(ptr, ct, false)
package wasmview
