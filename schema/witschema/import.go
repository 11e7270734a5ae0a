package witschema

import (
	"os"
	"strconv"
	"strings"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wippyai/molecule/errors"
	"github.com/wippyai/molecule/schema"
)

// Importer maps WIT types onto schema declarations. Each WIT type is
// declared once; later references reuse the same node.
type Importer struct {
	schema *schema.Schema
	cache  map[wit.Type]schema.Type
	unit   *schema.Struct
}

func NewImporter(namespace string) *Importer {
	return &Importer{
		schema: schema.New(namespace),
		cache:  make(map[wit.Type]schema.Type),
	}
}

// Import declares t and everything it references.
func (im *Importer) Import(t wit.Type) (schema.Type, error) {
	return im.importType(t, nil)
}

// Schema verifies and returns the declarations imported so far.
func (im *Importer) Schema() (*schema.Schema, error) {
	if err := schema.Verify(im.schema); err != nil {
		return nil, err
	}
	return im.schema, nil
}

// FromResolve imports every named type definition of r. Definitions that
// cannot be represented, such as resources and handles, are skipped.
func FromResolve(r *wit.Resolve, namespace string) (*schema.Schema, error) {
	im := NewImporter(namespace)
	for _, td := range r.TypeDefs {
		if td.Name == nil {
			continue
		}
		if _, err := im.Import(td); err != nil {
			if errors.KindOf(err) == errors.KindUnsupported {
				Logger().Debug("skipping wit type",
					zap.String("type", *td.Name),
					zap.Error(err))
				continue
			}
			return nil, err
		}
	}
	return im.Schema()
}

// LoadFile reads a WIT package in its JSON form, as produced by
// `wasm-tools component wit --json`, and imports its named types.
func LoadFile(path, namespace string) (*schema.Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseImport, errors.KindInvalidInput, err, "open "+path)
	}
	defer f.Close()

	r, err := wit.DecodeJSON(f)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseImport, errors.KindInvalidInput, err, "decode wit json")
	}
	return FromResolve(r, namespace)
}

func (im *Importer) importType(t wit.Type, path []string) (schema.Type, error) {
	if cached, ok := im.cache[t]; ok {
		return cached, nil
	}

	var (
		out schema.Type
		err error
	)
	switch v := t.(type) {
	case wit.Bool, wit.U8, wit.S8:
		return schema.ByteType, nil
	case wit.U16:
		out, err = im.bytes("Uint16", 2)
	case wit.S16:
		out, err = im.bytes("Int16", 2)
	case wit.U32:
		out, err = im.bytes("Uint32", 4)
	case wit.S32:
		out, err = im.bytes("Int32", 4)
	case wit.U64:
		out, err = im.bytes("Uint64", 8)
	case wit.S64:
		out, err = im.bytes("Int64", 8)
	case wit.F32:
		out, err = im.bytes("Float32", 4)
	case wit.F64:
		out, err = im.bytes("Float64", 8)
	case wit.Char:
		out, err = im.bytes("Char", 4)
	case wit.String:
		out, err = im.declare(&schema.FixVec{TypeName: "String", Item: schema.ByteType})
	case *wit.TypeDef:
		out, err = im.importTypeDef(v, path)
	default:
		return nil, errors.New(errors.PhaseImport, errors.KindUnsupported).
			Path(path...).
			Detail("unsupported wit type: %T", t).
			Build()
	}
	if err != nil {
		return nil, err
	}
	im.cache[t] = out
	return out, nil
}

func (im *Importer) importTypeDef(td *wit.TypeDef, path []string) (schema.Type, error) {
	base := ""
	if td.Name != nil {
		base = exportName(*td.Name)
		path = append(path, *td.Name)
	}

	switch kind := td.Kind.(type) {
	case *wit.Record:
		fields := make([]schema.Field, 0, len(kind.Fields))
		for _, f := range kind.Fields {
			ft, err := im.importType(f.Type, append(path, f.Name))
			if err != nil {
				return nil, err
			}
			fields = append(fields, schema.Field{Name: snakeName(f.Name), Type: ft})
		}
		return im.composite(or(base, "Record"), fields)

	case *wit.Tuple:
		fields := make([]schema.Field, 0, len(kind.Types))
		names := make([]string, 0, len(kind.Types))
		for i, typ := range kind.Types {
			ft, err := im.importType(typ, append(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			fields = append(fields, schema.Field{Name: "f" + strconv.Itoa(i), Type: ft})
			names = append(names, ft.Name())
		}
		return im.composite(or(base, "Tuple"+strings.Join(names, "")), fields)

	case *wit.List:
		item, err := im.importType(kind.Type, path)
		if err != nil {
			return nil, err
		}
		name := or(base, item.Name()+"Vec")
		if schema.IsFixed(item) {
			return im.declare(&schema.FixVec{TypeName: name, Item: item})
		}
		return im.declare(&schema.DynVec{TypeName: name, Item: item})

	case *wit.Option:
		item, err := im.importType(kind.Type, path)
		if err != nil {
			return nil, err
		}
		if _, nested := item.(*schema.Option); nested {
			return nil, errors.New(errors.PhaseImport, errors.KindUnsupported).
				Path(path...).
				Detail("option<option<...>> has no molecule encoding").
				Build()
		}
		return im.declare(&schema.Option{TypeName: or(base, item.Name()+"Opt"), Item: item})

	case *wit.Variant:
		types := make([]wit.Type, len(kind.Cases))
		for i, c := range kind.Cases {
			types[i] = c.Type
		}
		u, err := im.union(or(base, "Variant"), types, path)
		if err != nil {
			return nil, err
		}
		return im.declare(u)

	case *wit.Result:
		u, err := im.union("", []wit.Type{kind.OK, kind.Err}, path)
		if err != nil {
			return nil, err
		}
		u.TypeName = or(base, u.Items[0].Type.Name()+u.Items[1].Type.Name()+"Result")
		return im.declare(u)

	case *wit.Enum:
		return im.bytes(or(base, "Enum"), enumWidth(len(kind.Cases)))

	case *wit.Flags:
		return im.bytes(or(base, "Flags"), flagsWidth(len(kind.Flags)))

	case wit.Type:
		// type alias
		return im.importType(kind, path)

	default:
		return nil, errors.New(errors.PhaseImport, errors.KindUnsupported).
			Path(path...).
			Detail("unsupported wit type definition: %T", kind).
			Build()
	}
}

// composite declares a struct when every field is fixed size and a table
// otherwise.
func (im *Importer) composite(name string, fields []schema.Field) (schema.Type, error) {
	for _, f := range fields {
		if !schema.IsFixed(f.Type) {
			return im.declare(&schema.Table{TypeName: name, Fields: fields})
		}
	}
	return im.declare(&schema.Struct{TypeName: name, Fields: fields})
}

// union builds the items of a variant or result. Ids are case positions
// and cases without a payload carry the empty Unit struct.
func (im *Importer) union(name string, cases []wit.Type, path []string) (*schema.Union, error) {
	u := &schema.Union{TypeName: name, Items: make([]schema.UnionItem, 0, len(cases))}
	for i, c := range cases {
		var (
			item schema.Type
			err  error
		)
		if c == nil {
			item, err = im.unitType()
		} else {
			item, err = im.importType(c, append(path, strconv.Itoa(i)))
		}
		if err != nil {
			return nil, err
		}
		u.Items = append(u.Items, schema.UnionItem{ID: uint32(i), Type: item})
	}
	return u, nil
}

func (im *Importer) unitType() (schema.Type, error) {
	if im.unit != nil {
		return im.unit, nil
	}
	unit := &schema.Struct{TypeName: "Unit"}
	if _, err := im.declare(unit); err != nil {
		return nil, err
	}
	im.unit = unit
	return unit, nil
}

// bytes declares a byte array of the given width, shared per name.
func (im *Importer) bytes(name string, width int) (schema.Type, error) {
	if existing, ok := im.schema.Lookup(name); ok {
		if a, ok := existing.(*schema.Array); ok && a.Count == width && schema.IsAtom(a.Item) {
			return a, nil
		}
	}
	return im.declare(&schema.Array{TypeName: name, Item: schema.ByteType, Count: width})
}

// declare registers t, renaming it if its name is already taken.
func (im *Importer) declare(t schema.Type) (schema.Type, error) {
	if existing, ok := im.schema.Lookup(t.Name()); ok && sameShape(existing, t) {
		return existing, nil
	}
	setName(t, im.unique(t.Name()))
	if err := im.schema.Add(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (im *Importer) unique(name string) string {
	if _, taken := im.schema.Lookup(name); !taken {
		return name
	}
	for i := 2; ; i++ {
		candidate := name + strconv.Itoa(i)
		if _, taken := im.schema.Lookup(candidate); !taken {
			return candidate
		}
	}
}

// sameShape reports whether two synthesized declarations are
// interchangeable. Only the leaf shapes that the importer shares by name
// qualify.
func sameShape(a, b schema.Type) bool {
	switch x := a.(type) {
	case *schema.FixVec:
		y, ok := b.(*schema.FixVec)
		return ok && x.Item == y.Item
	case *schema.DynVec:
		y, ok := b.(*schema.DynVec)
		return ok && x.Item == y.Item
	case *schema.Option:
		y, ok := b.(*schema.Option)
		return ok && x.Item == y.Item
	}
	return false
}

func setName(t schema.Type, name string) {
	switch v := t.(type) {
	case *schema.Option:
		v.TypeName = name
	case *schema.Union:
		v.TypeName = name
	case *schema.Array:
		v.TypeName = name
	case *schema.Struct:
		v.TypeName = name
	case *schema.FixVec:
		v.TypeName = name
	case *schema.DynVec:
		v.TypeName = name
	case *schema.Table:
		v.TypeName = name
	}
}

// enumWidth is the canonical ABI discriminant size for n cases.
func enumWidth(n int) int {
	switch {
	case n <= 1<<8:
		return 1
	case n <= 1<<16:
		return 2
	default:
		return 4
	}
}

// flagsWidth is the canonical ABI size of a flags value with n members.
func flagsWidth(n int) int {
	switch {
	case n <= 8:
		return 1
	case n <= 16:
		return 2
	default:
		return 4 * ((n + 31) / 32)
	}
}

// exportName turns a kebab-case WIT name into a CamelCase declaration name.
func exportName(name string) string {
	title := cases.Title(language.Und, cases.NoLower)
	parts := strings.Split(name, "-")
	for i, p := range parts {
		parts[i] = title.String(p)
	}
	return strings.Join(parts, "")
}

func snakeName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

func or(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
