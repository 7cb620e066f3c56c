// Package testutil provides element tree builders and output assertions for
// tests. It is import-cycle safe for every package except codedom's
// internal tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/broady/clientgen/codedom"
)

// Builder wraps a tree with helpers that panic on construction errors.
// Fixtures are static, so a failure is a bug in the fixture itself.
type Builder struct {
	Tree *codedom.Tree
}

// NewBuilder creates a builder for a tree rooted at a namespace named root.
func NewBuilder(root string) *Builder {
	return &Builder{Tree: codedom.NewTree(root)}
}

// Root returns the root namespace handle.
func (b *Builder) Root() codedom.ID { return b.Tree.Root() }

// Add places el and panics on error.
func (b *Builder) Add(parent codedom.ID, name string, el codedom.Element) codedom.ID {
	id, err := b.Tree.Add(parent, name, el)
	if err != nil {
		panic(fmt.Sprintf("testutil: add %q: %v", name, err))
	}
	return id
}

// Namespace adds a namespace.
func (b *Builder) Namespace(parent codedom.ID, name string) codedom.ID {
	return b.Add(parent, name, &codedom.Namespace{})
}

// File adds a file.
func (b *Builder) File(parent codedom.ID, name string) codedom.ID {
	return b.Add(parent, name, &codedom.File{})
}

// Interface adds a model interface implementing the given interfaces.
func (b *Builder) Interface(parent codedom.ID, name string, implements ...codedom.ID) codedom.ID {
	iface := &codedom.Interface{}
	for _, impl := range implements {
		iface.Implements = append(iface.Implements, b.Tree.Ref(impl))
	}
	return b.Add(parent, name, iface)
}

// PropertyOption adjusts a property before it is added.
type PropertyOption func(*codedom.Property)

// Wire sets the wire name.
func Wire(name string) PropertyOption {
	return func(p *codedom.Property) { p.WireName = name }
}

// OfKind sets the property kind.
func OfKind(kind codedom.PropertyKind) PropertyOption {
	return func(p *codedom.Property) { p.Kind = kind }
}

// ReadOnly marks the property read-only.
func ReadOnly() PropertyOption {
	return func(p *codedom.Property) { p.ReadOnly = true }
}

// InBase marks the property as declared by a base type.
func InBase() PropertyOption {
	return func(p *codedom.Property) { p.ExistsInBaseType = true }
}

// PrimaryMessage marks the property as the primary error message.
func PrimaryMessage() PropertyOption {
	return func(p *codedom.Property) { p.PrimaryErrorMessage = true }
}

// Property adds a property to an interface or class.
func (b *Builder) Property(owner codedom.ID, name string, typ codedom.TypeRef, opts ...PropertyOption) codedom.ID {
	p := &codedom.Property{Type: typ}
	for _, opt := range opts {
		opt(p)
	}
	return b.Add(owner, name, p)
}

// Parameter adds a parameter to a function.
func (b *Builder) Parameter(fn codedom.ID, name string, kind codedom.ParameterKind, typ codedom.TypeRef, optional bool) codedom.ID {
	return b.Add(fn, name, &codedom.Parameter{Type: typ, Kind: kind, Optional: optional})
}

// Enum adds an enum with options given as "Name=wire" or "Name" (wire
// value is then the lowercased name).
func (b *Builder) Enum(parent codedom.ID, name string, flags bool, options ...string) codedom.ID {
	id := b.Add(parent, name, &codedom.Enum{Flags: flags})
	for _, opt := range options {
		optName, wire, ok := strings.Cut(opt, "=")
		if !ok {
			wire = strings.ToLower(optName)
		}
		b.Add(id, optName, &codedom.EnumOption{WireName: wire})
	}
	return id
}

// EnumObject adds the lookup constant of an enum and links it.
func (b *Builder) EnumObject(parent, enum codedom.ID) codedom.ID {
	e, _ := codedom.Get[*codedom.Enum](b.Tree, enum)
	id := b.Add(parent, e.Name()+"Object", &codedom.Constant{Kind: codedom.ConstantEnumObject, Origin: enum})
	e.Object = id
	return id
}

// ModelFunctions holds the generated functions of one model.
type ModelFunctions struct {
	Serializer   codedom.ID
	Deserializer codedom.ID
	Factory      codedom.ID
}

// Functions adds serialize<M>, deserializeInto<M> and
// create<M>FromDiscriminatorValue for model under parent.
func (b *Builder) Functions(parent, model codedom.ID) ModelFunctions {
	name := b.Tree.Element(model).Name()
	param := LowerFirst(name)
	ref := b.Tree.Ref(model)

	var fns ModelFunctions
	fns.Serializer = b.Add(parent, "serialize"+name, &codedom.Function{
		Body:       &codedom.SerializerBody{},
		ReturnType: codedom.Primitive("void"),
	})
	b.Parameter(fns.Serializer, "writer", codedom.ParameterSerializationWriter, codedom.Primitive("SerializationWriter"), false)
	b.Add(fns.Serializer, param, &codedom.Parameter{Type: ref, Optional: true, DefaultValue: "{}"})

	fns.Deserializer = b.Add(parent, "deserializeInto"+name, &codedom.Function{
		Body:       &codedom.DeserializerBody{},
		ReturnType: codedom.Primitive("Record<string, (node: ParseNode) => void>"),
	})
	b.Add(fns.Deserializer, param, &codedom.Parameter{Type: ref, Optional: true, DefaultValue: "{}"})

	fns.Factory = b.Add(parent, "create"+name+"FromDiscriminatorValue", &codedom.Function{
		Body:       &codedom.FactoryBody{Model: model},
		ReturnType: ref,
	})
	b.Parameter(fns.Factory, "parseNode", codedom.ParameterParseNode, codedom.Primitive("ParseNode"), false)
	return fns
}

// Index populates the function index.
func (b *Builder) Index() {
	if err := codedom.IndexModelFunctions(b.Tree); err != nil {
		panic(fmt.Sprintf("testutil: index: %v", err))
	}
}

// LowerFirst lowercases the first rune of s.
func LowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}

// AssertContainsInOrder fails the test unless every want string occurs in
// got, each after the previous one.
func AssertContainsInOrder(t *testing.T, got string, want ...string) {
	t.Helper()
	rest := got
	for _, w := range want {
		i := strings.Index(rest, w)
		if i < 0 {
			t.Fatalf("output missing %q (in order)\n--- output ---\n%s", w, got)
		}
		rest = rest[i+len(w):]
	}
}

// AssertNotContains fails the test if any of the strings occurs in got.
func AssertNotContains(t *testing.T, got string, notWant ...string) {
	t.Helper()
	for _, nw := range notWant {
		if strings.Contains(got, nw) {
			t.Errorf("output should not contain %q\n--- output ---\n%s", nw, got)
		}
	}
}
