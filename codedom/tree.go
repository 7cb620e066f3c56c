package codedom

import (
	"iter"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

// Tree owns every element of one generation run.
//
// The tree is mutated by the normalization stage (Add, AddUsing,
// RenameChild, IndexFunction) strictly before emission starts. Afterwards
// it is read-only and safe for concurrent readers.
type Tree struct {
	nodes []Element // nodes[0] is unused so that NoID never resolves
	index map[indexKey]ID
}

// NewTree creates a tree whose root is a namespace named rootName.
func NewTree(rootName string) *Tree {
	t := &Tree{
		nodes: []Element{nil},
		index: make(map[indexKey]ID),
	}
	root := &Namespace{}
	root.id = ID(len(t.nodes))
	root.name = rootName
	t.nodes = append(t.nodes, root)
	return t
}

// Root returns the root namespace handle.
func (t *Tree) Root() ID { return 1 }

// Len returns the number of elements, root included.
func (t *Tree) Len() int { return len(t.nodes) - 1 }

// Element returns the element addressed by id, or nil.
func (t *Tree) Element(id ID) Element {
	if !id.Valid() || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// Get returns the element addressed by id if it has type T.
func Get[T Element](t *Tree, id ID) (T, bool) {
	el, ok := t.Element(id).(T)
	return el, ok
}

// Add places el under parent with the given name and returns its handle.
// An element can be placed exactly once.
func (t *Tree) Add(parent ID, name string, el Element) (ID, error) {
	if el == nil {
		return NoID, t.newError(CodeUnknownElement, parent, "cannot add a nil element")
	}
	b := el.base()
	if b.id != NoID {
		return NoID, t.newError(CodeAlreadyPlaced, b.id, "element is already placed in a tree")
	}
	p := t.Element(parent)
	if p == nil {
		return NoID, t.newError(CodeUnknownElement, NoID, "unknown parent %d for %q", parent, name)
	}
	if name == "" {
		return NoID, t.newError(CodeInvalidPlacement, parent, "%s name must not be empty", el.ElementKind())
	}
	if !canContain(p.ElementKind(), el.ElementKind()) {
		return NoID, t.newError(CodeInvalidPlacement, parent, "a %s cannot contain a %s (%q)", p.ElementKind(), el.ElementKind(), name)
	}
	pb := p.base()
	key := childKey{el.ElementKind(), name}
	if _, exists := pb.byName[key]; exists {
		return NoID, t.newError(CodeDuplicateName, parent, "duplicate %s name %q", el.ElementKind(), name)
	}

	id := ID(len(t.nodes))
	b.id = id
	b.name = name
	b.parent = parent
	t.nodes = append(t.nodes, el)

	if pb.byName == nil {
		pb.byName = make(map[childKey]ID)
	}
	pb.byName[key] = id
	pb.children = append(pb.children, id)
	return id, nil
}

// Children yields the direct children of id in declaration order.
func (t *Tree) Children(id ID) iter.Seq[Element] {
	return func(yield func(Element) bool) {
		el := t.Element(id)
		if el == nil {
			return
		}
		for _, c := range el.base().children {
			if !yield(t.nodes[c]) {
				return
			}
		}
	}
}

// ChildrenOf yields the direct children of id that have type T.
func ChildrenOf[T Element](t *Tree, id ID) iter.Seq[T] {
	return func(yield func(T) bool) {
		for c := range t.Children(id) {
			if typed, ok := c.(T); ok {
				if !yield(typed) {
					return
				}
			}
		}
	}
}

// All yields every element of the tree in pre-order, starting at the root.
func (t *Tree) All() iter.Seq[Element] {
	return func(yield func(Element) bool) {
		t.walk(t.Root(), yield)
	}
}

func (t *Tree) walk(id ID, yield func(Element) bool) bool {
	el := t.Element(id)
	if el == nil {
		return true
	}
	if !yield(el) {
		return false
	}
	for _, c := range el.base().children {
		if !t.walk(c, yield) {
			return false
		}
	}
	return true
}

// Ancestor returns the nearest ancestor of id that has type T.
func Ancestor[T Element](t *Tree, id ID) (T, bool) {
	var zero T
	el := t.Element(id)
	if el == nil {
		return zero, false
	}
	for p := el.Parent(); p.Valid(); p = t.nodes[p].Parent() {
		if typed, ok := t.nodes[p].(T); ok {
			return typed, true
		}
	}
	return zero, false
}

// Path returns a slash separated location such as /api/models/Animal.
func (t *Tree) Path(id ID) string {
	el := t.Element(id)
	if el == nil {
		return ""
	}
	var parts []string
	for ; el != nil; el = t.Element(el.Parent()) {
		parts = append(parts, el.Name())
	}
	slices.Reverse(parts)
	return "/" + strings.Join(parts, "/")
}

// Locator returns the reference form of id. It is the Path, prefixed with
// the element kind (interface:/api/models/Pet) when a sibling of another
// kind shares the name.
func (t *Tree) Locator(id ID) string {
	el := t.Element(id)
	if el == nil {
		return ""
	}
	if el.Parent().Valid() {
		for c := range t.Children(el.Parent()) {
			if c.ID() != id && c.Name() == el.Name() {
				return el.ElementKind().String() + ":" + t.Path(id)
			}
		}
	}
	return t.Path(id)
}

// Resolve finds the element a locator produced by Path or Locator points
// at. A bare path whose last segment names siblings of different kinds is
// ambiguous and fails; the kind prefix selects one of them.
func (t *Tree) Resolve(locator string) (ID, error) {
	kind, path := KindAny, locator
	if prefix, rest, ok := strings.Cut(locator, ":"); ok && !strings.Contains(prefix, "/") {
		k, known := ParseKind(prefix)
		if !known {
			return NoID, t.newError(CodeUnknownElement, NoID, "unknown element kind %q in %q", prefix, locator)
		}
		kind, path = k, rest
	}
	if !strings.HasPrefix(path, "/") {
		return NoID, t.newError(CodeUnknownElement, NoID, "no element at %q", locator)
	}
	parts := strings.Split(path[1:], "/")
	if parts[0] != t.nodes[t.Root()].Name() {
		return NoID, t.newError(CodeUnknownElement, NoID, "no element at %q", locator)
	}
	if len(parts) == 1 {
		if kind != KindAny && kind != KindNamespace {
			return NoID, t.newError(CodeUnknownElement, NoID, "no element at %q", locator)
		}
		return t.Root(), nil
	}
	cur := t.Root()
	for i, name := range parts[1:] {
		want := KindAny
		if i == len(parts)-2 {
			want = kind
		}
		var found []Element
		for c := range t.Children(cur) {
			if c.Name() == name && (want == KindAny || c.ElementKind() == want) {
				found = append(found, c)
			}
		}
		switch len(found) {
		case 0:
			return NoID, t.newError(CodeUnknownElement, NoID, "no element at %q", locator)
		case 1:
			cur = found[0].ID()
		default:
			kinds := make([]string, len(found))
			for j, c := range found {
				kinds[j] = c.ElementKind().String()
			}
			err := t.newError(CodeStructural, cur, "ambiguous reference %q: %s share the name %q",
				locator, strings.Join(kinds, ", "), name)
			return NoID, errors.WithHintf(err, "qualify the reference with the element kind, e.g. %s",
				t.Locator(found[len(found)-1].ID()))
		}
	}
	return cur, nil
}

// Lookup is Resolve reporting only success. Unknown and ambiguous locators
// both report false.
func (t *Tree) Lookup(locator string) (ID, bool) {
	id, err := t.Resolve(locator)
	return id, err == nil
}

// AddUsing appends import declarations to id. Duplicates are ignored.
func (t *Tree) AddUsing(id ID, usings ...Using) error {
	el := t.Element(id)
	if el == nil {
		return t.newError(CodeUnknownElement, NoID, "unknown element %d", id)
	}
	b := el.base()
	for _, u := range usings {
		if !slices.Contains(b.usings, u) {
			b.usings = append(b.usings, u)
		}
	}
	return nil
}

// Usings returns the import declarations held by id.
func (t *Tree) Usings(id ID) []Using {
	el := t.Element(id)
	if el == nil {
		return nil
	}
	return slices.Clone(el.base().usings)
}

// Walk calls fn for every element in pre-order and stops at the first
// error.
func (t *Tree) Walk(fn func(Element) error) error {
	for el := range t.All() {
		if err := fn(el); err != nil {
			return err
		}
	}
	return nil
}
