package codec

import (
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/molecule/errors"
	"github.com/wippyai/molecule/schema"
)

// Compiler resolves schema nodes into CompiledTypes. Results are cached per
// node, and a Compiler is safe for concurrent use.
type Compiler struct {
	layout *LayoutCalculator
	cache  sync.Map // schema.Type -> *CompiledType
}

func NewCompiler() *Compiler {
	return &Compiler{
		layout: NewLayoutCalculator(),
	}
}

func (c *Compiler) Compile(t schema.Type) (*CompiledType, error) {
	if t == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindNilPointer).
			Detail("schema type cannot be nil").
			Build()
	}

	if cached, ok := c.cache.Load(t); ok {
		return cached.(*CompiledType), nil
	}

	pending := make(map[schema.Type]*CompiledType)
	ct, err := c.compile(t, pending, nil)
	if err != nil {
		return nil, err
	}

	// Publish the whole graph only once it is complete.
	for node, compiled := range pending {
		c.cache.LoadOrStore(node, compiled)
	}
	actual, _ := c.cache.LoadOrStore(t, ct)

	Logger().Debug("compiled type",
		zap.String("type", ct.Name),
		zap.Stringer("kind", ct.Kind),
		zap.Bool("fixed", ct.Fixed),
		zap.Uint32("size", ct.Size))

	return actual.(*CompiledType), nil
}

// CompileNamed compiles the declaration called name in s.
func (c *Compiler) CompileNamed(s *schema.Schema, name string) (*CompiledType, error) {
	t, ok := s.Lookup(name)
	if !ok {
		return nil, errors.NotFound(errors.PhaseCompile, "type", name)
	}
	return c.Compile(t)
}

// compile builds ct for t. Nodes under construction are tracked in pending so
// recursion through dynamically sized kinds resolves to the same pointer.
func (c *Compiler) compile(t schema.Type, pending map[schema.Type]*CompiledType, path []string) (*CompiledType, error) {
	if cached, ok := c.cache.Load(t); ok {
		return cached.(*CompiledType), nil
	}
	if ct, ok := pending[t]; ok {
		return ct, nil
	}

	info, err := c.layout.Calculate(t)
	if err != nil {
		return nil, err
	}

	ct := &CompiledType{
		Node:     t,
		Name:     t.Name(),
		Kind:     t.Kind(),
		Fixed:    info.Fixed,
		Size:     info.Size,
		ItemSize: info.ItemSize,
	}
	pending[t] = ct
	path = append(path, t.Name())

	switch typ := t.(type) {
	case *schema.Byte:
	case *schema.Option:
		if _, nested := typ.Item.(*schema.Option); nested {
			err = errors.InvalidSchema(path, t.Name(), "option item "+typ.Item.Name()+" is itself an option")
			break
		}
		ct.Item, err = c.compileChild(typ.Item, pending, path)
	case *schema.Array:
		ct.Count = typ.Count
		ct.Item, err = c.compileChild(typ.Item, pending, path)
	case *schema.FixVec:
		ct.Item, err = c.compileChild(typ.Item, pending, path)
	case *schema.DynVec:
		ct.Item, err = c.compileChild(typ.Item, pending, path)
	case *schema.Struct:
		err = c.compileFields(ct, typ.Fields, info, pending, path)
	case *schema.Table:
		err = c.compileFields(ct, typ.Fields, info, pending, path)
	case *schema.Union:
		err = c.compileUnion(ct, typ, pending, path)
	default:
		err = errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Path(path...).
			Detail("unsupported schema type: %T", t).
			Build()
	}
	if err != nil {
		delete(pending, t)
		return nil, err
	}
	return ct, nil
}

func (c *Compiler) compileChild(t schema.Type, pending map[schema.Type]*CompiledType, path []string) (*CompiledType, error) {
	if t == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindNilPointer).
			Path(path...).
			Detail("missing item type").
			Build()
	}
	return c.compile(t, pending, path)
}

func (c *Compiler) compileFields(ct *CompiledType, fields []schema.Field, info LayoutInfo, pending map[schema.Type]*CompiledType, path []string) error {
	ct.Fields = make([]CompiledField, 0, len(fields))
	ct.FieldIndex = make(map[string]int, len(fields))

	for i, f := range fields {
		fieldPath := append(append([]string{}, path...), f.Name)
		fieldType, err := c.compileChild(f.Type, pending, fieldPath)
		if err != nil {
			return err
		}

		field := CompiledField{Name: f.Name, Type: fieldType}
		if ct.Kind == KindStruct {
			field.Offset = info.FieldOffs[i]
			field.Size = info.FieldSizes[i]
		}
		ct.FieldIndex[f.Name] = i
		ct.Fields = append(ct.Fields, field)
	}
	return nil
}

func (c *Compiler) compileUnion(ct *CompiledType, u *schema.Union, pending map[schema.Type]*CompiledType, path []string) error {
	ct.Cases = make([]CompiledCase, 0, len(u.Items))
	ct.CaseIndex = make(map[uint32]int, len(u.Items))

	for i, it := range u.Items {
		itemPath := append(append([]string{}, path...), strconv.FormatUint(uint64(it.ID), 10))
		itemType, err := c.compileChild(it.Type, pending, itemPath)
		if err != nil {
			return err
		}
		if _, dup := ct.CaseIndex[it.ID]; dup {
			return errors.New(errors.PhaseCompile, errors.KindDuplicate).
				Path(path...).
				Detail("union item id %d declared twice", it.ID).
				Value(it.ID).
				Build()
		}
		ct.CaseIndex[it.ID] = i
		ct.Cases = append(ct.Cases, CompiledCase{ID: it.ID, Type: itemType})
	}
	return nil
}
