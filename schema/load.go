package schema

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/molecule/errors"
)

// The intermediate format produced by the schema front end. JSON input is
// accepted as well since it parses as YAML.
type document struct {
	Namespace    string        `yaml:"namespace"`
	Declarations []declaration `yaml:"declarations"`
}

type declaration struct {
	Type      string      `yaml:"type"`
	Name      string      `yaml:"name"`
	Item      string      `yaml:"item,omitempty"`
	Items     []unionItem `yaml:"items,omitempty"`
	Fields    []fieldDecl `yaml:"fields,omitempty"`
	ItemCount int         `yaml:"item_count,omitempty"`
}

type unionItem struct {
	ID  *uint32 `yaml:"id,omitempty"`
	Typ string  `yaml:"typ"`
}

type fieldDecl struct {
	Name string `yaml:"name"`
	Typ  string `yaml:"typ"`
}

// LoadFile reads and verifies an intermediate schema file.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "read "+path)
	}
	return Load(data)
}

// Load parses and verifies an intermediate schema document.
func Load(data []byte) (*Schema, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "parse schema")
	}

	s := New(doc.Namespace)

	// First pass allocates every declaration so references may point forward.
	for i, d := range doc.Declarations {
		t, err := shell(d)
		if err != nil {
			return nil, withPath(err, "declarations["+strconv.Itoa(i)+"]")
		}
		if err := s.Add(t); err != nil {
			return nil, err
		}
	}

	for i, d := range doc.Declarations {
		if err := link(s, s.types[i], d); err != nil {
			return nil, err
		}
	}

	if err := Verify(s); err != nil {
		return nil, err
	}
	return s, nil
}

func shell(d declaration) (Type, error) {
	kind, ok := ParseKind(d.Type)
	if !ok || kind == KindByte {
		return nil, errors.New(errors.PhaseLoad, errors.KindUnsupported).
			Type(d.Name).
			Detail("unknown declaration type %q", d.Type).
			Value(d.Type).
			Build()
	}
	switch kind {
	case KindOption:
		return &Option{TypeName: d.Name}, nil
	case KindUnion:
		return &Union{TypeName: d.Name}, nil
	case KindArray:
		return &Array{TypeName: d.Name, Count: d.ItemCount}, nil
	case KindStruct:
		return &Struct{TypeName: d.Name}, nil
	case KindFixVec:
		return &FixVec{TypeName: d.Name}, nil
	case KindDynVec:
		return &DynVec{TypeName: d.Name}, nil
	default:
		return &Table{TypeName: d.Name}, nil
	}
}

func link(s *Schema, t Type, d declaration) error {
	lookup := func(name string, path ...string) (Type, error) {
		ref, ok := s.Lookup(name)
		if !ok {
			return nil, errors.New(errors.PhaseLoad, errors.KindNotFound).
				Path(path...).
				Type(t.Name()).
				Detail("type %q not found", name).
				Value(name).
				Build()
		}
		return ref, nil
	}

	switch v := t.(type) {
	case *Option:
		item, err := lookup(d.Item, v.TypeName)
		v.Item = item
		return err
	case *Array:
		item, err := lookup(d.Item, v.TypeName)
		v.Item = item
		return err
	case *FixVec:
		item, err := lookup(d.Item, v.TypeName)
		v.Item = item
		return err
	case *DynVec:
		item, err := lookup(d.Item, v.TypeName)
		v.Item = item
		return err
	case *Struct:
		fields, err := linkFields(d.Fields, func(f fieldDecl) (Type, error) { return lookup(f.Typ, v.TypeName, f.Name) })
		v.Fields = fields
		return err
	case *Table:
		fields, err := linkFields(d.Fields, func(f fieldDecl) (Type, error) { return lookup(f.Typ, v.TypeName, f.Name) })
		v.Fields = fields
		return err
	case *Union:
		v.Items = make([]UnionItem, 0, len(d.Items))
		for i, it := range d.Items {
			item, err := lookup(it.Typ, v.TypeName, it.Typ)
			if err != nil {
				return err
			}
			id := uint32(i)
			if it.ID != nil {
				id = *it.ID
			}
			v.Items = append(v.Items, UnionItem{ID: id, Type: item})
		}
	}
	return nil
}

func linkFields(decls []fieldDecl, resolve func(fieldDecl) (Type, error)) ([]Field, error) {
	fields := make([]Field, 0, len(decls))
	for _, f := range decls {
		typ, err := resolve(f)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: f.Name, Type: typ})
	}
	return fields, nil
}

func withPath(err error, elem string) error {
	var e *errors.Error
	if errors.As(err, &e) {
		e.Path = append([]string{elem}, e.Path...)
	}
	return err
}

// Marshal renders s in the intermediate format accepted by Load.
func Marshal(s *Schema) ([]byte, error) {
	doc := document{
		Namespace:    s.Namespace,
		Declarations: make([]declaration, 0, len(s.types)),
	}
	for _, t := range s.types {
		d := declaration{Type: t.Kind().String(), Name: t.Name()}
		switch v := t.(type) {
		case *Array:
			d.Item = v.Item.Name()
			d.ItemCount = v.Count
		case *Union:
			for _, it := range v.Items {
				id := it.ID
				d.Items = append(d.Items, unionItem{Typ: it.Type.Name(), ID: &id})
			}
		default:
			if item, ok := ItemOf(t); ok {
				d.Item = item.Name()
			}
			if fields, ok := FieldsOf(t); ok {
				for _, f := range fields {
					d.Fields = append(d.Fields, fieldDecl{Name: f.Name, Typ: f.Type.Name()})
				}
			}
		}
		doc.Declarations = append(doc.Declarations, d)
	}
	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "marshal schema")
	}
	return out, nil
}
