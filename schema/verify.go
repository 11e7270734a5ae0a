package schema

import (
	"strconv"

	"github.com/wippyai/molecule/errors"
)

// Verify checks the guarantees the layout and codec layers rely on:
// resolvable references, fixed-size members where the layout needs them,
// unique field names and union ids, and no recursion through fixed-size kinds.
func Verify(s *Schema) error {
	for _, t := range s.types {
		if err := checkRefs(s, t); err != nil {
			return err
		}
	}
	if err := checkFixedCycles(s); err != nil {
		return err
	}
	for _, t := range s.types {
		if err := checkDecl(t); err != nil {
			return err
		}
	}
	return nil
}

func checkRefs(s *Schema, t Type) error {
	resolve := func(path []string, ref Type) error {
		if ref == nil {
			return errors.InvalidSchema(path, t.Name(), "missing member type")
		}
		if IsAtom(ref) {
			return nil
		}
		if got, ok := s.byName[ref.Name()]; !ok || got != ref {
			return errors.New(errors.PhaseVerify, errors.KindNotFound).
				Path(path...).
				Type(t.Name()).
				Detail("type %q is not declared in this schema", ref.Name()).
				Value(ref.Name()).
				Build()
		}
		return nil
	}

	if item, ok := ItemOf(t); ok {
		return resolve([]string{t.Name()}, item)
	}
	if fields, ok := FieldsOf(t); ok {
		for _, f := range fields {
			if err := resolve([]string{t.Name(), f.Name}, f.Type); err != nil {
				return err
			}
		}
		return nil
	}
	if u, ok := t.(*Union); ok {
		for _, it := range u.Items {
			if err := resolve([]string{t.Name(), strconv.FormatUint(uint64(it.ID), 10)}, it.Type); err != nil {
				return err
			}
		}
	}
	return nil
}

const (
	unvisited = iota
	visiting
	done
)

// checkFixedCycles rejects Array/Struct graphs that contain themselves,
// since such a type would have no finite static size.
func checkFixedCycles(s *Schema) error {
	state := make(map[Type]int, len(s.types))

	var visit func(t Type, path []string) error
	visit = func(t Type, path []string) error {
		switch state[t] {
		case visiting:
			return errors.InvalidSchema(path, t.Name(), "recursive fixed-size type")
		case done:
			return nil
		}
		state[t] = visiting
		path = append(path, t.Name())
		switch v := t.(type) {
		case *Array:
			if err := visit(v.Item, path); err != nil {
				return err
			}
		case *Struct:
			for _, f := range v.Fields {
				if err := visit(f.Type, path); err != nil {
					return err
				}
			}
		}
		state[t] = done
		return nil
	}

	for _, t := range s.types {
		if err := visit(t, nil); err != nil {
			return err
		}
	}
	return nil
}

func checkDecl(t Type) error {
	name := t.Name()
	switch v := t.(type) {
	case *Array:
		if v.Count <= 0 {
			return errors.InvalidSchema([]string{name}, name, "array item count must be positive")
		}
		if !IsFixed(v.Item) {
			return errors.InvalidSchema([]string{name}, name, "array item "+v.Item.Name()+" is not fixed size")
		}
	case *Option:
		// an option hands its whole buffer to the item, so option chains never
		// consume input
		if _, ok := v.Item.(*Option); ok {
			return errors.InvalidSchema([]string{name}, name, "option item "+v.Item.Name()+" is itself an option")
		}
	case *FixVec:
		if !IsFixed(v.Item) {
			return errors.InvalidSchema([]string{name}, name, "fixvec item "+v.Item.Name()+" is not fixed size")
		}
	case *Struct:
		if err := checkFieldNames(name, v.Fields); err != nil {
			return err
		}
		for _, f := range v.Fields {
			if !IsFixed(f.Type) {
				return errors.InvalidSchema([]string{name, f.Name}, name, "struct field "+f.Type.Name()+" is not fixed size")
			}
		}
	case *Table:
		return checkFieldNames(name, v.Fields)
	case *Union:
		if len(v.Items) == 0 {
			return errors.InvalidSchema([]string{name}, name, "union without items")
		}
		seen := make(map[uint32]bool, len(v.Items))
		for _, it := range v.Items {
			if seen[it.ID] {
				return errors.New(errors.PhaseVerify, errors.KindDuplicate).
					Path(name).
					Type(name).
					Detail("union item id %d declared twice", it.ID).
					Value(it.ID).
					Build()
			}
			seen[it.ID] = true
		}
	}
	return nil
}

func checkFieldNames(typeName string, fields []Field) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return errors.InvalidSchema([]string{typeName}, typeName, "field without a name")
		}
		if seen[f.Name] {
			return errors.New(errors.PhaseVerify, errors.KindDuplicate).
				Path(typeName, f.Name).
				Type(typeName).
				Detail("field %q declared twice", f.Name).
				Value(f.Name).
				Build()
		}
		seen[f.Name] = true
	}
	return nil
}
