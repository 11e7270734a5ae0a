package schema

import (
	"github.com/wippyai/molecule/errors"
)

// Schema is an ordered set of named declarations. It is built once by a
// front end and treated as immutable afterwards.
type Schema struct {
	byName    map[string]Type
	Namespace string
	types     []Type
}

func New(namespace string) *Schema {
	return &Schema{
		Namespace: namespace,
		byName:    make(map[string]Type),
	}
}

// Add registers a named declaration. The byte atom is implicit and cannot be declared.
func (s *Schema) Add(t Type) error {
	if t == nil {
		return errors.New(errors.PhaseVerify, errors.KindNilPointer).
			Detail("nil declaration").
			Build()
	}
	name := t.Name()
	if name == "" {
		return errors.InvalidSchema(nil, "", "declaration without a name")
	}
	if name == ByteType.Name() || IsAtom(t) {
		return errors.InvalidSchema(nil, name, "byte is a builtin and cannot be redeclared")
	}
	if _, exists := s.byName[name]; exists {
		return errors.New(errors.PhaseVerify, errors.KindDuplicate).
			Type(name).
			Detail("type %q declared twice", name).
			Value(name).
			Build()
	}
	s.byName[name] = t
	s.types = append(s.types, t)
	return nil
}

// Lookup resolves a type name, including the builtin byte.
func (s *Schema) Lookup(name string) (Type, bool) {
	if name == ByteType.Name() {
		return ByteType, true
	}
	t, ok := s.byName[name]
	return t, ok
}

// Types returns the declarations in declaration order.
func (s *Schema) Types() []Type {
	out := make([]Type, len(s.types))
	copy(out, s.types)
	return out
}

func (s *Schema) Len() int {
	return len(s.types)
}
