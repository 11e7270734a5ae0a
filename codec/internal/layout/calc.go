package layout

import (
	"sync"

	"github.com/wippyai/molecule/codec/internal/header"
	"github.com/wippyai/molecule/errors"
	"github.com/wippyai/molecule/schema"
)

// Info holds the static layout facts of one schema node.
type Info struct {
	// FieldOffs and FieldSizes describe struct members in declaration order.
	FieldOffs  []uint32
	FieldSizes []uint32
	// Size is the total encoded size; only meaningful when Fixed.
	Size uint32
	// ItemSize is the stride of array and fixvec items.
	ItemSize uint32
	Fixed    bool
}

// Calculator computes layouts and memoizes them per node. It is safe for
// concurrent use; nodes are immutable so a cached Info never goes stale.
type Calculator struct {
	cache sync.Map // schema.Type -> Info
}

func NewCalculator() *Calculator {
	return &Calculator{}
}

func (c *Calculator) Calculate(t schema.Type) (Info, error) {
	if cached, ok := c.cache.Load(t); ok {
		return cached.(Info), nil
	}

	var (
		info Info
		err  error
	)

	switch typ := t.(type) {
	case *schema.Byte:
		info = Info{Size: 1, Fixed: true}
	case *schema.Array:
		info, err = c.calculateArray(typ)
	case *schema.Struct:
		info, err = c.calculateStruct(typ)
	case *schema.FixVec:
		info, err = c.calculateFixVec(typ)
	default:
		// option, union, dynvec and table are sized at runtime
		info = Info{}
	}
	if err != nil {
		return Info{}, err
	}

	c.cache.Store(t, info)
	return info, nil
}

func (c *Calculator) calculateArray(a *schema.Array) (Info, error) {
	item, err := c.Calculate(a.Item)
	if err != nil {
		return Info{}, err
	}

	count := uint32(a.Count)
	if a.Count < 0 || int(count) != a.Count {
		return Info{}, errors.Overflow(errors.PhaseCompile, a.TypeName, "array item count out of range")
	}
	total, ok := header.SafeMulU32(item.Size, count)
	if !ok {
		return Info{}, errors.Overflow(errors.PhaseCompile, a.TypeName, "array size overflows u32")
	}

	return Info{
		Size:     total,
		ItemSize: item.Size,
		Fixed:    true,
	}, nil
}

func (c *Calculator) calculateStruct(s *schema.Struct) (Info, error) {
	offs := make([]uint32, len(s.Fields))
	sizes := make([]uint32, len(s.Fields))
	offset := uint32(0)

	for i, field := range s.Fields {
		fieldLayout, err := c.Calculate(field.Type)
		if err != nil {
			return Info{}, err
		}

		offs[i] = offset
		sizes[i] = fieldLayout.Size

		next, ok := header.SafeAddU32(offset, fieldLayout.Size)
		if !ok {
			return Info{}, errors.Overflow(errors.PhaseCompile, s.TypeName, "struct size overflows u32")
		}
		offset = next
	}

	return Info{
		Size:       offset,
		FieldOffs:  offs,
		FieldSizes: sizes,
		Fixed:      true,
	}, nil
}

func (c *Calculator) calculateFixVec(v *schema.FixVec) (Info, error) {
	item, err := c.Calculate(v.Item)
	if err != nil {
		return Info{}, err
	}
	return Info{ItemSize: item.Size}, nil
}
