// Package golang emits Go declarations for the constants and models of an
// element tree. Declarations are built with jennifer and rendered one at a
// time; functions have no Go emission rule.
package golang

import (
	"bytes"
	"cmp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dave/jennifer/jen"

	"github.com/broady/clientgen/codedom"
	"github.com/broady/clientgen/codewriter"
)

const (
	uuidPath = "github.com/google/uuid"
	timePath = "time"
)

// Emitter renders elements of one tree as Go source.
type Emitter struct {
	tree *codedom.Tree
}

// New returns a Go emitter for tree.
func New(tree *codedom.Tree) *Emitter {
	return &Emitter{tree: tree}
}

// Name returns the target name.
func (e *Emitter) Name() string { return "go" }

// FileExtension returns the extension of generated files.
func (e *Emitter) FileExtension() string { return ".go" }

// EmitHeader writes the generated-code marker, the package clause and the
// imports needed by the models among elements. Nil elements means every
// child of scope.
func (e *Emitter) EmitHeader(w *codewriter.Writer, scope codedom.ID, elements []codedom.ID) error {
	if e.tree.Element(scope) == nil {
		return e.tree.Structuralf(scope, "unknown unit %d", scope)
	}
	if elements == nil {
		for c := range e.tree.Children(scope) {
			elements = append(elements, c.ID())
		}
	}
	w.WriteLine("// Code generated by clientgen. DO NOT EDIT.")
	w.WriteLine("")
	w.Linef("package %s", e.packageName(scope))
	imports := e.imports(elements)
	switch len(imports) {
	case 0:
	case 1:
		w.WriteLine("")
		w.Linef("import %q", imports[0])
	default:
		w.WriteLine("")
		w.StartBlock("import (")
		for i, path := range imports {
			if i > 0 && isStd(imports[i-1]) && !isStd(path) {
				w.WriteLine("")
			}
			w.Linef("%q", path)
		}
		w.CloseBlock(")")
	}
	w.WriteLine("")
	return nil
}

func isStd(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}

// packageName derives the package clause from the nearest namespace.
func (e *Emitter) packageName(unit codedom.ID) string {
	name := ""
	if ns, ok := codedom.Get[*codedom.Namespace](e.tree, unit); ok {
		name = ns.Name()
	} else if ns, ok := codedom.Ancestor[*codedom.Namespace](e.tree, unit); ok {
		name = ns.Name()
	}
	name = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, name)
	if name == "" {
		return "api"
	}
	return name
}

func (e *Emitter) imports(elements []codedom.ID) []string {
	var paths []string
	for _, id := range elements {
		iface, ok := codedom.Get[*codedom.Interface](e.tree, id)
		if !ok || iface.Kind != codedom.InterfaceModel {
			continue
		}
		for p := range codedom.ChildrenOf[*codedom.Property](e.tree, id) {
			if p.ExistsInBaseType {
				continue
			}
			if path := importOf(p.Type); path != "" && !slices.Contains(paths, path) {
				paths = append(paths, path)
			}
		}
	}
	slices.SortFunc(paths, func(a, b string) int {
		if isStd(a) != isStd(b) {
			if isStd(a) {
				return -1
			}
			return 1
		}
		return cmp.Compare(a, b)
	})
	return paths
}

// EmitElement renders one declaration. Nothing is written on error.
func (e *Emitter) EmitElement(w *codewriter.Writer, id codedom.ID) error {
	var (
		stmt *jen.Statement
		err  error
	)
	switch el := e.tree.Element(id).(type) {
	case *codedom.Constant:
		stmt, err = e.constant(el)
	case *codedom.Interface:
		stmt, err = e.model(el)
	case *codedom.Enum, *codedom.Class:
	case *codedom.Function:
		err = e.tree.Unsupportedf(id, "no Go emission rule for %s function %q", el.Method(), el.Name())
	case *codedom.Namespace, *codedom.File, *codedom.Property, *codedom.Parameter, *codedom.EnumOption:
		err = e.tree.Unsupportedf(id, "%s is not a top-level declaration", el.ElementKind())
	case nil:
		err = e.tree.Structuralf(id, "unknown element %d", id)
	}
	if err != nil || stmt == nil {
		return err
	}

	var buf bytes.Buffer
	if err := stmt.Render(&buf); err != nil {
		return e.tree.Structuralf(id, "render: %v", err)
	}
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		w.WriteLine(line)
	}
	return nil
}

func (e *Emitter) constant(c *codedom.Constant) (*jen.Statement, error) {
	switch c.Kind {
	case codedom.ConstantEnumObject:
		return e.enumObject(c)
	case codedom.ConstantQueryParametersMapper:
		return e.queryParametersMapper(c)
	case codedom.ConstantURITemplate:
		return jen.Const().Id(exported(c.Name())).Op("=").Lit(c.Value), nil
	default:
		return nil, e.tree.Unsupportedf(c.ID(), "no Go emission rule for %s constant %q", c.Kind, c.Name())
	}
}

// enumObject renders an enum as a named string type and one constant per
// option. Enums without options produce nothing.
func (e *Emitter) enumObject(c *codedom.Constant) (*jen.Statement, error) {
	enum, ok := codedom.Get[*codedom.Enum](e.tree, c.Origin)
	if !ok {
		return nil, e.tree.Structuralf(c.ID(), "enum object %q is not derived from an enum", c.Name())
	}
	if _, ok := e.tree.EnumLookup(enum.ID()); !ok {
		return nil, nil
	}
	typeName := exported(enum.Name())
	var defs []jen.Code
	for opt := range codedom.ChildrenOf[*codedom.EnumOption](e.tree, enum.ID()) {
		defs = append(defs, jen.Id(typeName+exported(opt.Name())).Id(typeName).Op("=").Lit(opt.SerializationName()))
	}
	stmt := jen.Null()
	if d := enum.Doc(); d.Summary != "" {
		stmt.Comment(typeName + " " + lowerFirst(d.Summary)).Line()
	}
	stmt.Type().Id(typeName).String().Line().Line().Const().Defs(defs...)
	return stmt, nil
}

// queryParametersMapper renders the name to wire name table of a query
// parameters interface, ordered by wire name ignoring case.
func (e *Emitter) queryParametersMapper(c *codedom.Constant) (*jen.Statement, error) {
	iface, ok := codedom.Get[*codedom.Interface](e.tree, c.Origin)
	if !ok {
		return nil, e.tree.Structuralf(c.ID(), "query parameters mapper %q is not derived from an interface", c.Name())
	}
	var params []*codedom.Property
	for p := range codedom.ChildrenOf[*codedom.Property](e.tree, iface.ID()) {
		if p.Kind == codedom.PropertyQueryParameter && p.WireName != "" {
			params = append(params, p)
		}
	}
	slices.SortStableFunc(params, func(a, b *codedom.Property) int {
		return cmp.Compare(strings.ToLower(a.WireName), strings.ToLower(b.WireName))
	})
	return jen.Var().Id(lowerFirst(c.Name())).Op("=").Map(jen.String()).String().ValuesFunc(func(g *jen.Group) {
		for _, p := range params {
			g.Line().Lit(lowerFirst(p.Name())).Op(":").Lit(p.WireName)
		}
		if len(params) > 0 {
			g.Line()
		}
	}), nil
}

// model renders a model interface as a struct. A base model is embedded;
// properties it already declares are skipped.
func (e *Emitter) model(iface *codedom.Interface) (*jen.Statement, error) {
	if iface.Kind != codedom.InterfaceModel {
		return nil, e.tree.Unsupportedf(iface.ID(), "no Go emission rule for request builder interface %q", iface.Name())
	}
	var fields []jen.Code
	for _, ref := range iface.Implements {
		base, ok := codedom.Get[*codedom.Interface](e.tree, ref.Definition)
		if !ok {
			return nil, e.tree.Structuralf(iface.ID(), "%q implements %q which is not a model", iface.Name(), ref.Name)
		}
		fields = append(fields, jen.Id(exported(base.Name())))
	}
	for p := range codedom.ChildrenOf[*codedom.Property](e.tree, iface.ID()) {
		if p.ExistsInBaseType || p.Kind == codedom.PropertyBackingStore {
			continue
		}
		if p.Kind == codedom.PropertyAdditionalData {
			fields = append(fields, jen.Id(exported(p.Name())).Map(jen.String()).Any().Tag(map[string]string{"json": "-"}))
			continue
		}
		typ, err := e.fieldType(p)
		if err != nil {
			return nil, err
		}
		field := jen.Id(exported(p.Name())).Add(typ).Tag(map[string]string{"json": p.SerializationName() + ",omitempty"})
		if d := p.Doc(); d.Summary != "" {
			fields = append(fields, jen.Comment(d.Summary))
		}
		fields = append(fields, field)
	}

	stmt := jen.Null()
	if d := iface.Doc(); d.Summary != "" {
		stmt.Comment(exported(iface.Name()) + " " + lowerFirst(d.Summary)).Line()
	}
	stmt.Type().Id(exported(iface.Name())).Struct(fields...)
	return stmt, nil
}

// fieldType maps a property type to Go. Scalars are pointers so that an
// absent value can be told apart from the zero value.
func (e *Emitter) fieldType(p *codedom.Property) (*jen.Statement, error) {
	ref := p.Type
	var elem *jen.Statement
	scalar := true
	switch def := e.tree.Element(ref.Definition).(type) {
	case nil:
		if ref.Definition.Valid() {
			return nil, e.tree.Structuralf(p.ID(), "type %q references unknown element %d", ref.Name, ref.Definition)
		}
		elem, scalar = primitive(ref.Name)
	case *codedom.Enum:
		if _, ok := e.tree.EnumLookup(def.ID()); !ok {
			elem = jen.String()
			break
		}
		elem = jen.Id(exported(def.Name()))
		if def.Flags && !ref.IsCollection() {
			return jen.Index().Add(elem), nil
		}
	case *codedom.Interface, *codedom.Class:
		elem = jen.Id(exported(def.Name()))
	default:
		return nil, e.tree.Structuralf(p.ID(), "type %q is neither a primitive, an enum nor a model", ref.Name)
	}
	if ref.IsCollection() {
		return jen.Index().Add(elem), nil
	}
	if !scalar {
		return elem, nil
	}
	return jen.Op("*").Add(elem), nil
}

// primitive maps a primitive name to a Go type. The second result is false
// for types that are already nillable.
func primitive(name string) (*jen.Statement, bool) {
	switch name {
	case "string", "String", "DateOnly", "TimeOnly", "base64url":
		return jen.String(), true
	case "boolean", "Boolean":
		return jen.Bool(), true
	case "integer", "int32", "int":
		return jen.Int32(), true
	case "int64", "long":
		return jen.Int64(), true
	case "float":
		return jen.Float32(), true
	case "double", "decimal":
		return jen.Float64(), true
	case "byte":
		return jen.Uint8(), true
	case "binary", "base64":
		return jen.Index().Byte(), false
	case "Guid", "guid":
		return jen.Qual(uuidPath, "UUID"), true
	case "DateTimeOffset":
		return jen.Qual(timePath, "Time"), true
	case "TimeSpan":
		return jen.Qual(timePath, "Duration"), true
	default:
		return jen.Any(), false
	}
}

// importOf returns the import path a primitive type needs, if any.
func importOf(ref codedom.TypeRef) string {
	if ref.Definition.Valid() {
		return ""
	}
	switch ref.Name {
	case "Guid", "guid":
		return uuidPath
	case "DateTimeOffset", "TimeSpan":
		return timePath
	}
	return ""
}

// exported turns a tree name into an exported Go identifier.
func exported(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	s := b.String()
	if s == "" {
		return "X"
	}
	if first, _ := utf8.DecodeRuneInString(s); unicode.IsDigit(first) {
		return "X" + s
	}
	return s
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}
