package codec

import (
	"github.com/wippyai/molecule/codec/internal/header"
)

// Default returns the canonical default encoding of t: zeroed fixed data,
// empty options and vectors, the first union item, and tables of field
// defaults. The result always decodes as t.
func Default(t *CompiledType) []byte {
	switch t.Kind {
	case KindByte, KindArray, KindStruct:
		return make([]byte, t.Size)
	case KindOption:
		return []byte{}
	case KindUnion:
		if len(t.Cases) == 0 {
			return nil
		}
		first := t.Cases[0]
		return append(header.Pack(first.ID), Default(first.Type)...)
	case KindFixVec:
		return header.Pack(0)
	case KindDynVec:
		return header.Pack(HeaderSize)
	case KindTable:
		children := make([][]byte, len(t.Fields))
		for i, f := range t.Fields {
			children[i] = Default(f.Type)
		}
		out, err := encodeOffsets(t, children)
		if err != nil {
			return nil
		}
		return out
	}
	return nil
}
