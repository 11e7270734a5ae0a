package codec

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/molecule/codec/internal/header"
	"github.com/wippyai/molecule/errors"
)

// Decode validates data against t and returns a view over it. The view
// borrows data; nothing is copied. With compatible set, tables may carry
// trailing fields the schema does not declare.
//
// Decode never returns a partially validated view: once it succeeds every
// accessor on the view, and on the views it hands out, stays in bounds.
func Decode(t *CompiledType, data []byte, compatible bool) (View, error) {
	if t == nil {
		return View{}, errors.New(errors.PhaseDecode, errors.KindNilPointer).
			Detail("compiled type cannot be nil").
			Build()
	}
	if err := validate(t, data, compatible, []string{t.Name}); err != nil {
		Logger().Debug("buffer rejected",
			zap.String("type", t.Name),
			zap.Int("len", len(data)),
			zap.Bool("compatible", compatible),
			zap.Error(err))
		return View{}, err
	}
	return newView(t, data), nil
}

// Verify is Decode without the view.
func Verify(t *CompiledType, data []byte, compatible bool) error {
	_, err := Decode(t, data, compatible)
	return err
}

func validate(t *CompiledType, data []byte, compatible bool, path []string) error {
	switch t.Kind {
	case KindByte, KindArray, KindStruct:
		if len(data) != int(t.Size) {
			return errors.SizeMismatch(path, t.Name, len(data), int(t.Size))
		}
		// fixed-size members carry no headers, so any content is valid
		return nil
	case KindOption:
		if len(data) == 0 {
			return nil
		}
		return validate(t.Item, data, compatible, path)
	case KindUnion:
		return validateUnion(t, data, compatible, path)
	case KindFixVec:
		return validateFixVec(t, data, path)
	case KindDynVec, KindTable:
		return validateOffsets(t, data, compatible, path)
	default:
		return errors.New(errors.PhaseDecode, errors.KindUnsupported).
			Path(path...).
			Type(t.Name).
			Detail("unsupported kind %s", t.Kind).
			Build()
	}
}

func validateUnion(t *CompiledType, data []byte, compatible bool, path []string) error {
	if len(data) < HeaderSize {
		return errors.HeaderTooShort(path, t.Name, len(data), HeaderSize)
	}
	id := header.Unpack(data)
	item, ok := t.Case(id)
	if !ok {
		return errors.UnknownDiscriminant(path, t.Name, id)
	}
	return validate(item, data[HeaderSize:], compatible, childPath(path, item.Name))
}

func validateFixVec(t *CompiledType, data []byte, path []string) error {
	if len(data) < HeaderSize {
		return errors.HeaderTooShort(path, t.Name, len(data), HeaderSize)
	}
	count := header.Unpack(data)
	if count == 0 {
		if len(data) != HeaderSize {
			return errors.SizeMismatch(path, t.Name, len(data), HeaderSize)
		}
		return nil
	}
	want := uint64(HeaderSize) + uint64(t.ItemSize)*uint64(count)
	if uint64(len(data)) != want {
		return errors.SizeMismatch(path, t.Name, len(data), clampInt(want))
	}
	return nil
}

// validateOffsets checks the shared dynvec/table framing:
//
//	[total_size][offset_0]...[offset_n-1][item_0]...[item_n-1]
//
// then recursively validates the members the schema knows about.
func validateOffsets(t *CompiledType, data []byte, compatible bool, path []string) error {
	size := len(data)
	if size < HeaderSize {
		return errors.HeaderTooShort(path, t.Name, size, HeaderSize)
	}
	total := header.Unpack(data)
	if uint64(size) != uint64(total) {
		return errors.SizeMismatch(path, t.Name, size, int(total))
	}

	isTable := t.Kind == KindTable
	declared := t.DeclaredCount()

	if size == HeaderSize {
		// a table with declared fields needs at least their offset table
		if isTable && declared > 0 {
			return errors.SizeMismatch(path, t.Name, size, clampInt(header.TableSize(declared)))
		}
		return nil
	}
	if size < 2*HeaderSize {
		return errors.HeaderTooShort(path, t.Name, size, 2*HeaderSize)
	}

	first := header.UnpackAt(data, 1)
	if first%HeaderSize != 0 || first < 2*HeaderSize {
		return errors.OffsetMisaligned(path, t.Name, first)
	}
	count := int(first/HeaderSize - 1)

	if isTable {
		if count < declared || (count > declared && !compatible) {
			return errors.FieldCountMismatch(path, t.Name, count, declared, compatible)
		}
	}
	if tableSize := header.TableSize(count); uint64(size) < tableSize {
		return errors.HeaderTooShort(path, t.Name, size, clampInt(tableSize))
	}

	prev := first
	for i := 1; i <= count; i++ {
		next := total
		if i < count {
			next = header.UnpackAt(data, i+1)
		}
		if prev > next {
			return errors.OffsetNotMonotonic(path, t.Name, i, prev, next)
		}
		prev = next
	}

	// Trailing fields beyond the declared ones have no schema type; they are
	// counted and bounds-checked above but their content is left alone.
	members := count
	if isTable {
		members = declared
	}
	for i := 0; i < members; i++ {
		start, end := memberRange(data, i, count)
		var (
			item *CompiledType
			name string
		)
		if isTable {
			item = t.Fields[i].Type
			name = t.Fields[i].Name
		} else {
			item = t.Item
			name = "[" + strconv.Itoa(i) + "]"
		}
		if err := validate(item, data[start:end], compatible, childPath(path, name)); err != nil {
			return err
		}
	}
	return nil
}

// memberRange returns the byte range of member i of an offset-table buffer
// holding count members. The last member ends at the buffer end.
func memberRange(data []byte, i, count int) (uint32, uint32) {
	start := header.UnpackAt(data, i+1)
	if i+1 == count {
		return start, uint32(len(data))
	}
	return start, header.UnpackAt(data, i+2)
}

func childPath(path []string, elem string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = elem
	return out
}

func clampInt(v uint64) int {
	const maxInt = int(^uint(0) >> 1)
	if v > uint64(maxInt) {
		return maxInt
	}
	return int(v)
}
