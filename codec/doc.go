// Package codec encodes, validates and reads Molecule buffers.
//
// Schema nodes are compiled once into CompiledTypes carrying their layout
// facts. Encode assembles buffers from encoded children, Decode validates a
// buffer and hands back a zero-copy View.
//
// # Wire Format
//
// Every size, count, offset and item id is a 4-byte little-endian unit.
//
//	Kind     Encoding
//	───────────────────────────────────────────────────────
//	byte     1 byte
//	array    items back to back, no header
//	struct   fields back to back, no header
//	fixvec   [count][items...]
//	dynvec   [total][offset_0..offset_n-1][items...]
//	table    [total][offset_0..offset_n-1][fields...]
//	union    [item id][item]
//	option   empty for none, the item otherwise
//
// The first offset of a dynvec or table is 4*(n+1), so the member count is
// recovered from it. An empty dynvec or table is the single unit 4.
//
// # Compatibility
//
// Decoding with compatible set accepts tables that carry more fields than
// the schema declares. Extra fields are bounds checked but not validated,
// and View.CountExtraFields reports them.
//
// # Usage
//
//	c := codec.NewCompiler()
//	ct, err := c.CompileNamed(s, "Person")
//	if err != nil {
//	    return err
//	}
//	v, err := codec.Decode(ct, buf, false)
//	if err != nil {
//	    return err
//	}
//	name, _ := v.Field("name")
//	fmt.Println(string(name.RawData()))
package codec
