// Package typescript emits TypeScript functions, constants and interfaces
// for an element tree, targeting the Kiota TypeScript runtime.
package typescript

import (
	"cmp"
	"iter"
	"slices"
	"strings"

	"github.com/broady/clientgen/codedom"
	"github.com/broady/clientgen/codewriter"
	"github.com/broady/clientgen/discriminator"
	"github.com/broady/clientgen/serialization"
)

// Emitter renders elements of one tree. It only reads the tree, so a
// single emitter may serve concurrent emissions into separate writers.
type Emitter struct {
	tree     *codedom.Tree
	conv     *Convention
	planner  *serialization.Planner
	resolver *discriminator.Resolver
	baseURL  string
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithBaseURL makes client constructors default to url instead of the base
// URL recorded in the tree. An empty url keeps the recorded one.
func WithBaseURL(url string) Option {
	return func(e *Emitter) { e.baseURL = url }
}

// New returns an emitter for tree.
func New(tree *codedom.Tree, opts ...Option) *Emitter {
	conv := NewConvention(tree)
	e := &Emitter{
		tree:     tree,
		conv:     conv,
		planner:  serialization.NewPlanner(tree, conv),
		resolver: discriminator.NewResolver(tree),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the target name.
func (e *Emitter) Name() string { return "typescript" }

// FileExtension returns the extension of generated files.
func (e *Emitter) FileExtension() string { return ".ts" }

// Convention returns the naming convention used by the emitter.
func (e *Emitter) Convention() *Convention { return e.conv }

// EmitElement renders one declaration into w. The element is rendered into
// a scratch buffer first: on error nothing is written to w. Enums and
// classes produce no output of their own; enums are rendered through their
// lookup constant.
func (e *Emitter) EmitElement(w *codewriter.Writer, id codedom.ID) error {
	scratch := w.Scratch()
	var err error
	switch el := e.tree.Element(id).(type) {
	case *codedom.Function:
		err = e.emitFunction(scratch, el)
	case *codedom.Constant:
		err = e.emitConstant(scratch, el)
	case *codedom.Interface:
		err = e.emitInterface(scratch, el)
	case *codedom.Enum, *codedom.Class:
	case *codedom.Namespace, *codedom.File, *codedom.Property, *codedom.Parameter, *codedom.EnumOption:
		err = e.tree.Unsupportedf(id, "%s is not a top-level declaration", el.ElementKind())
	case nil:
		err = e.tree.Structuralf(id, "unknown element %d", id)
	}
	if err != nil {
		return err
	}
	w.Append(scratch)
	return nil
}

// EmitHeader writes the preamble and the import declarations of a unit
// made of elements emitted under scope. Imports are gathered from scope
// and from everything the elements contain. Nil elements means every
// child of scope.
func (e *Emitter) EmitHeader(w *codewriter.Writer, scope codedom.ID, elements []codedom.ID) error {
	if e.tree.Element(scope) == nil {
		return e.tree.Structuralf(scope, "unknown unit %d", scope)
	}
	if elements == nil {
		elements = childIDs(e.tree, scope)
	}
	w.WriteLines(
		"/* tslint:disable */",
		"/* eslint-disable */",
		"// Code generated by clientgen. DO NOT EDIT.",
	)
	groups := e.imports(scope, elements)
	for _, g := range groups {
		w.Linef("import { %s } from '%s';", strings.Join(g.symbols, ", "), g.from)
	}
	w.WriteLine("")
	return nil
}

type importGroup struct {
	from     string
	external bool
	symbols  []string
}

func (e *Emitter) imports(scope codedom.ID, elements []codedom.ID) []importGroup {
	var usings []codedom.Using
	add := func(id codedom.ID) {
		for _, u := range e.tree.Usings(id) {
			if u.From == "" || slices.Contains(usings, u) {
				continue
			}
			if u.Declaration.Definition.Valid() && e.declaredIn(u.Declaration.Definition, scope, elements) {
				continue
			}
			usings = append(usings, u)
		}
	}
	add(scope)
	for _, id := range elements {
		for el := range e.subtree(id) {
			add(el.ID())
		}
	}

	byFrom := make(map[string]*importGroup)
	var groups []*importGroup
	for _, u := range usings {
		g, ok := byFrom[u.From]
		if !ok {
			g = &importGroup{from: u.From, external: u.IsExternal}
			byFrom[u.From] = g
			groups = append(groups, g)
		}
		sym := u.Name
		if u.Alias != "" && u.Alias != u.Name {
			sym += " as " + u.Alias
		}
		if u.IsTypeOnly {
			sym = "type " + sym
		}
		if !slices.Contains(g.symbols, sym) {
			g.symbols = append(g.symbols, sym)
		}
	}

	out := make([]importGroup, 0, len(groups))
	for _, g := range groups {
		slices.SortFunc(g.symbols, func(a, b string) int {
			return cmp.Compare(strings.ToLower(strings.TrimPrefix(a, "type ")), strings.ToLower(strings.TrimPrefix(b, "type ")))
		})
		out = append(out, *g)
	}
	slices.SortFunc(out, func(a, b importGroup) int {
		if a.external != b.external {
			if a.external {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.from, b.from)
	})
	return out
}

// subtree yields unit and every element below it.
func (e *Emitter) subtree(unit codedom.ID) iter.Seq[codedom.Element] {
	return func(yield func(codedom.Element) bool) {
		var visit func(id codedom.ID) bool
		visit = func(id codedom.ID) bool {
			if !yield(e.tree.Element(id)) {
				return false
			}
			for c := range e.tree.Children(id) {
				if !visit(c.ID()) {
					return false
				}
			}
			return true
		}
		visit(unit)
	}
}

// declaredIn reports whether id is declared by the unit itself, so that
// it needs no import.
func (e *Emitter) declaredIn(id, scope codedom.ID, elements []codedom.ID) bool {
	if _, ok := codedom.Get[*codedom.File](e.tree, scope); ok && e.within(id, scope) {
		return true
	}
	return slices.ContainsFunc(elements, func(el codedom.ID) bool { return e.within(id, el) })
}

func childIDs(tree *codedom.Tree, id codedom.ID) []codedom.ID {
	ids := []codedom.ID{}
	for c := range tree.Children(id) {
		ids = append(ids, c.ID())
	}
	return ids
}

func (e *Emitter) within(id, unit codedom.ID) bool {
	for cur := id; cur.Valid(); {
		if cur == unit {
			return true
		}
		el := e.tree.Element(cur)
		if el == nil {
			return false
		}
		cur = el.Parent()
	}
	return false
}

// emitJSDoc writes a documentation block. Tags are appended as-is.
func emitJSDoc(w *codewriter.Writer, doc codedom.Documentation, tags ...string) {
	if doc.IsZero() && len(tags) == 0 {
		return
	}
	var lines []string
	for _, text := range []string{doc.Summary, doc.Body} {
		if text == "" {
			continue
		}
		for _, l := range strings.Split(text, "\n") {
			lines = append(lines, strings.TrimSpace(l))
		}
	}
	if len(lines) == 1 && len(tags) == 0 && doc.Deprecated == nil {
		w.Linef("/** %s */", lines[0])
		return
	}
	w.WriteLine("/**")
	for _, l := range lines {
		w.WriteLine(strings.TrimRight(" * "+l, " "))
	}
	for _, tag := range tags {
		w.WriteLine(" * " + tag)
	}
	if doc.Deprecated != nil {
		w.WriteLine(strings.TrimRight(" * @deprecated "+*doc.Deprecated, " "))
	}
	w.WriteLine(" */")
}
