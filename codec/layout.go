package codec

import (
	"github.com/wippyai/molecule"
	"github.com/wippyai/molecule/codec/internal/layout"
	"github.com/wippyai/molecule/schema"
)

// HeaderSize is the width of every size, count, offset and item id field.
const HeaderSize = molecule.HeaderSize

type LayoutInfo = layout.Info

type LayoutCalculator struct {
	calc *layout.Calculator
}

func NewLayoutCalculator() *LayoutCalculator {
	return &LayoutCalculator{
		calc: layout.NewCalculator(),
	}
}

func (lc *LayoutCalculator) Calculate(t schema.Type) (LayoutInfo, error) {
	return lc.calc.Calculate(t)
}
