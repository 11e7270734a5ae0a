package codec

import (
	"github.com/wippyai/molecule/codec/internal/types"
	"github.com/wippyai/molecule/schema"
)

type TypeKind = schema.Kind

const (
	KindByte   = schema.KindByte
	KindOption = schema.KindOption
	KindUnion  = schema.KindUnion
	KindArray  = schema.KindArray
	KindStruct = schema.KindStruct
	KindFixVec = schema.KindFixVec
	KindDynVec = schema.KindDynVec
	KindTable  = schema.KindTable
)

type CompiledType = types.CompiledType
type CompiledField = types.Field
type CompiledCase = types.Case
