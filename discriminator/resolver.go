// Package discriminator synthesizes the decision procedure a factory uses
// to pick the concrete deserializer of a polymorphic payload.
package discriminator

import "github.com/broady/clientgen/codedom"

// State is the branch a factory takes.
type State int

const (
	// StateDefault delegates to the model's own deserializer.
	StateDefault State = iota

	// StateResolve branches on the wire discriminator value first and
	// falls back to StateDefault.
	StateResolve
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateDefault:
		return "Default"
	case StateResolve:
		return "Resolve"
	default:
		return "Unknown"
	}
}

// Case is one branch of a resolving factory.
type Case struct {
	Value        string
	Type         codedom.TypeRef
	Deserializer codedom.ID
}

// Resolution is the decision procedure of one factory.
type Resolution struct {
	Function codedom.ID
	Model    codedom.ID
	State    State

	// PropertyName is the wire key carrying the discriminator value.
	PropertyName string

	// ParseNode is the parameter the payload is read from.
	ParseNode *codedom.Parameter

	// Cases keep the declaration order of the discriminator mappings.
	Cases []Case

	// Default is the model's own field level deserializer.
	Default codedom.ID
}

// Select returns the deserializer chosen for a wire value. The first case
// whose value matches exactly wins; an empty or unmapped value selects the
// default.
func (r Resolution) Select(value string) codedom.ID {
	if r.State == StateResolve && value != "" {
		for _, c := range r.Cases {
			if c.Value == value {
				return c.Deserializer
			}
		}
	}
	return r.Default
}

// Resolver builds resolutions. It only reads the tree.
type Resolver struct {
	tree *codedom.Tree
}

// NewResolver returns a resolver over tree.
func NewResolver(tree *codedom.Tree) *Resolver {
	return &Resolver{tree: tree}
}

// Resolve computes the resolution of a factory function. Every mapped type
// must have an indexed deserializer: a missing one means the tree was built
// inconsistently and is reported rather than skipped.
func (r *Resolver) Resolve(fn codedom.ID) (Resolution, error) {
	f, ok := codedom.Get[*codedom.Function](r.tree, fn)
	if !ok {
		return Resolution{}, r.tree.Structuralf(fn, "element is not a function")
	}
	if _, ok := f.Body.(*codedom.FactoryBody); !ok {
		return Resolution{}, r.tree.Unsupportedf(fn, "%s function %q is not a factory", f.Method(), f.Name())
	}
	model, err := r.tree.FunctionModel(fn)
	if err != nil {
		return Resolution{}, err
	}
	def, ok := r.tree.IndexedFunction(codedom.RoleDeserializer, model)
	if !ok {
		return Resolution{}, r.tree.Structuralf(fn, "no deserializer reachable for %q", r.tree.Path(model))
	}

	res := Resolution{Function: fn, Model: model, Default: def}
	for p := range codedom.ChildrenOf[*codedom.Parameter](r.tree, fn) {
		if p.Kind == codedom.ParameterParseNode {
			res.ParseNode = p
			break
		}
	}

	info := r.tree.Discriminator(model, f.OriginalParent)
	if !info.ShouldWriteDiscriminatorForInheritedType() || res.ParseNode == nil {
		return res, nil
	}

	res.State = StateResolve
	res.PropertyName = info.PropertyName
	res.Cases = make([]Case, 0, len(info.Mappings))
	for _, m := range info.Mappings {
		target, ok := r.tree.IndexedFunction(codedom.RoleDeserializer, m.Type.Definition)
		if !ok {
			return Resolution{}, r.tree.Structuralf(fn, "discriminator value %q maps to %q which has no reachable deserializer", m.Value, m.Type.Name)
		}
		res.Cases = append(res.Cases, Case{Value: m.Value, Type: m.Type, Deserializer: target})
	}
	return res, nil
}
