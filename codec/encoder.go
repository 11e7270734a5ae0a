package codec

import (
	"math"

	"github.com/wippyai/molecule/codec/internal/header"
	"github.com/wippyai/molecule/errors"
)

// Encode assembles a buffer of type t from already encoded children.
//
//	byte         one child of length 1
//	array        Count children of ItemSize bytes each
//	struct       one child per field, sized to the field
//	fixvec       any number of children of ItemSize bytes each
//	dynvec       any number of children
//	table        one child per declared field
//	option       zero children for none, one for some
//
// Children are trusted to be valid encodings of their member types; only
// their count and, for fixed members, their size are checked. Unions are
// built with EncodeUnion. The returned buffer is freshly allocated.
func Encode(t *CompiledType, children ...[]byte) ([]byte, error) {
	if t == nil {
		return nil, errors.New(errors.PhaseEncode, errors.KindNilPointer).
			Detail("compiled type cannot be nil").
			Build()
	}

	switch t.Kind {
	case KindByte:
		if len(children) != 1 {
			return nil, errors.Arity(t.Name, len(children), 1)
		}
		if err := checkChildSize(t, 0, children[0], 1); err != nil {
			return nil, err
		}
		return []byte{children[0][0]}, nil

	case KindArray:
		if len(children) != t.Count {
			return nil, errors.Arity(t.Name, len(children), t.Count)
		}
		return concatFixed(t, children, t.ItemSize, int(t.Size))

	case KindStruct:
		if len(children) != len(t.Fields) {
			return nil, errors.Arity(t.Name, len(children), len(t.Fields))
		}
		out := make([]byte, 0, t.Size)
		for i, f := range t.Fields {
			if err := checkChildSize(t, i, children[i], f.Size); err != nil {
				return nil, err
			}
			out = append(out, children[i]...)
		}
		return out, nil

	case KindFixVec:
		if uint64(len(children)) > math.MaxUint32 {
			return nil, errors.Overflow(errors.PhaseEncode, t.Name, "item count exceeds 32 bits")
		}
		size := uint64(HeaderSize) + uint64(len(children))*uint64(t.ItemSize)
		if size > math.MaxUint32 {
			return nil, errors.Overflow(errors.PhaseEncode, t.Name, "encoded size exceeds 32 bits")
		}
		out := make([]byte, 0, size)
		out = header.Append(out, uint32(len(children)))
		for i, c := range children {
			if err := checkChildSize(t, i, c, t.ItemSize); err != nil {
				return nil, err
			}
			out = append(out, c...)
		}
		return out, nil

	case KindDynVec:
		return encodeOffsets(t, children)

	case KindTable:
		if len(children) != len(t.Fields) {
			return nil, errors.Arity(t.Name, len(children), len(t.Fields))
		}
		return encodeOffsets(t, children)

	case KindOption:
		switch len(children) {
		case 0:
			return []byte{}, nil
		case 1:
			if t.Item.Fixed {
				if err := checkChildSize(t, 0, children[0], t.Item.Size); err != nil {
					return nil, err
				}
			}
			return append([]byte{}, children[0]...), nil
		default:
			return nil, errors.Arity(t.Name, len(children), 1)
		}

	case KindUnion:
		return nil, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Type(t.Name).
			Detail("unions need an item id, use EncodeUnion").
			Build()

	default:
		return nil, errors.New(errors.PhaseEncode, errors.KindUnsupported).
			Type(t.Name).
			Detail("unsupported kind %s", t.Kind).
			Build()
	}
}

// EncodeUnion encodes child as the union item identified by id.
func EncodeUnion(t *CompiledType, id uint32, child []byte) ([]byte, error) {
	if t == nil || t.Kind != KindUnion {
		return nil, errors.InvalidInput(errors.PhaseEncode, "EncodeUnion requires a union type")
	}
	item, ok := t.Case(id)
	if !ok {
		return nil, errors.New(errors.PhaseEncode, errors.KindUnknownDiscriminant).
			Type(t.Name).
			Detail("item id %d", id).
			Value(id).
			Build()
	}
	if item.Fixed {
		if err := checkChildSize(t, 0, child, item.Size); err != nil {
			return nil, err
		}
	}
	out := make([]byte, 0, HeaderSize+len(child))
	out = header.Append(out, id)
	return append(out, child...), nil
}

// EncodeRaw encodes raw as a byte array or a fixvec of bytes.
func EncodeRaw(t *CompiledType, raw []byte) ([]byte, error) {
	if t == nil || !t.HasRawData() {
		return nil, errors.InvalidInput(errors.PhaseEncode, "EncodeRaw requires a byte array or byte fixvec")
	}
	if t.Kind == KindArray {
		if len(raw) != t.Count {
			return nil, errors.Arity(t.Name, len(raw), t.Count)
		}
		return append([]byte{}, raw...), nil
	}
	if uint64(len(raw))+HeaderSize > math.MaxUint32 {
		return nil, errors.Overflow(errors.PhaseEncode, t.Name, "encoded size exceeds 32 bits")
	}
	out := make([]byte, 0, HeaderSize+len(raw))
	out = header.Append(out, uint32(len(raw)))
	return append(out, raw...), nil
}

func concatFixed(t *CompiledType, children [][]byte, itemSize uint32, total int) ([]byte, error) {
	out := make([]byte, 0, total)
	for i, c := range children {
		if err := checkChildSize(t, i, c, itemSize); err != nil {
			return nil, err
		}
		out = append(out, c...)
	}
	return out, nil
}

// encodeOffsets writes [total][offset_0..offset_n-1][children...].
func encodeOffsets(t *CompiledType, children [][]byte) ([]byte, error) {
	size := header.TableSize(len(children))
	for _, c := range children {
		size += uint64(len(c))
	}
	if size > math.MaxUint32 {
		return nil, errors.Overflow(errors.PhaseEncode, t.Name, "encoded size exceeds 32 bits")
	}

	out := make([]byte, 0, size)
	out = header.Append(out, uint32(size))
	offset := uint32(header.TableSize(len(children)))
	for _, c := range children {
		out = header.Append(out, offset)
		offset += uint32(len(c))
	}
	for _, c := range children {
		out = append(out, c...)
	}
	return out, nil
}

func checkChildSize(t *CompiledType, index int, child []byte, want uint32) error {
	if uint64(len(child)) != uint64(want) {
		return errors.New(errors.PhaseEncode, errors.KindSizeMismatch).
			Type(t.Name).
			Detail("child %d has %d bytes, want %d", index, len(child), want).
			Value(len(child)).
			Build()
	}
	return nil
}
