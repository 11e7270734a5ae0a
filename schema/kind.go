package schema

type Kind uint8

const (
	KindByte Kind = iota
	KindOption
	KindUnion
	KindArray
	KindStruct
	KindFixVec
	KindDynVec
	KindTable
)

var kindNames = [...]string{
	KindByte:   "byte",
	KindOption: "option",
	KindUnion:  "union",
	KindArray:  "array",
	KindStruct: "struct",
	KindFixVec: "fixvec",
	KindDynVec: "dynvec",
	KindTable:  "table",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind maps an intermediate-format kind name back to a Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// HasHeader reports whether buffers of this kind begin with at least one header unit.
func (k Kind) HasHeader() bool {
	switch k {
	case KindUnion, KindFixVec, KindDynVec, KindTable:
		return true
	default:
		return false
	}
}

// HasOffsetTable reports whether buffers of this kind carry a total size and offset table.
func (k Kind) HasOffsetTable() bool {
	return k == KindDynVec || k == KindTable
}
