package codedom

// Role names the part a function plays for a model.
type Role int

const (
	RoleSerializer Role = iota + 1
	RoleDeserializer
	RoleFactory
)

// String returns the string representation of the role.
func (r Role) String() string {
	switch r {
	case RoleSerializer:
		return "serializer"
	case RoleDeserializer:
		return "deserializer"
	case RoleFactory:
		return "factory"
	default:
		return "unknown"
	}
}

type indexKey struct {
	role  Role
	model ID
}

// IndexFunction records fn as the function playing role for model.
// Re-indexing the same function is allowed; a different one is a
// duplicate.
func (t *Tree) IndexFunction(role Role, model, fn ID) error {
	if _, ok := Get[*Function](t, fn); !ok {
		return t.Structuralf(fn, "cannot index %s: element is not a function", role)
	}
	if !t.isModel(model) {
		return t.Structuralf(fn, "cannot index %s: %q is not an interface or class", role, t.Path(model))
	}
	key := indexKey{role, model}
	if existing, ok := t.index[key]; ok && existing != fn {
		return t.newError(CodeDuplicateName, fn, "%s for %s already indexed as %s", role, t.Path(model), t.Path(existing))
	}
	t.index[key] = fn
	return nil
}

// IndexedFunction returns the function playing role for model.
func (t *Tree) IndexedFunction(role Role, model ID) (ID, bool) {
	fn, ok := t.index[indexKey{role, model}]
	return fn, ok
}

// IndexModelFunctions populates the function index from the function
// bodies of the tree. It is part of normalization and must run before
// emission.
func IndexModelFunctions(t *Tree) error {
	for el := range t.All() {
		f, ok := el.(*Function)
		if !ok {
			continue
		}
		var role Role
		switch f.Body.(type) {
		case *SerializerBody:
			role = RoleSerializer
		case *DeserializerBody:
			role = RoleDeserializer
		case *FactoryBody:
			role = RoleFactory
		default:
			continue
		}
		model, err := t.FunctionModel(f.ID())
		if err != nil {
			return err
		}
		if err := t.IndexFunction(role, model, f.ID()); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) isModel(id ID) bool {
	switch t.Element(id).(type) {
	case *Interface, *Class:
		return true
	}
	return false
}

// ModelParameter returns the parameter carrying the model of a serializer
// or deserializer. Deserializers take the model first; serializers take it
// as the first parameter typed as an interface or class.
func (t *Tree) ModelParameter(fn ID) (*Parameter, error) {
	f, ok := Get[*Function](t, fn)
	if !ok {
		return nil, t.Structuralf(fn, "element is not a function")
	}
	switch f.Body.(type) {
	case *DeserializerBody:
		for p := range ChildrenOf[*Parameter](t, fn) {
			if !t.isModel(p.Type.Definition) {
				break
			}
			return p, nil
		}
		return nil, t.Structuralf(fn, "deserializer %q must take a model as its first parameter", f.Name())
	case *SerializerBody:
		for p := range ChildrenOf[*Parameter](t, fn) {
			if t.isModel(p.Type.Definition) {
				return p, nil
			}
		}
		return nil, t.Structuralf(fn, "serializer %q has no parameter typed as a model", f.Name())
	default:
		return nil, t.Structuralf(fn, "%s function %q has no model parameter", f.Method(), f.Name())
	}
}

// FunctionModel returns the interface or class a serializer, deserializer
// or factory works on.
func (t *Tree) FunctionModel(fn ID) (ID, error) {
	f, ok := Get[*Function](t, fn)
	if !ok {
		return NoID, t.Structuralf(fn, "element is not a function")
	}
	switch b := f.Body.(type) {
	case *SerializerBody, *DeserializerBody:
		p, err := t.ModelParameter(fn)
		if err != nil {
			return NoID, err
		}
		return p.Type.Definition, nil
	case *FactoryBody:
		model := b.Model
		if !model.Valid() {
			model = f.OriginalParent
		}
		if !t.isModel(model) {
			return NoID, t.Structuralf(fn, "factory %q is not linked to an interface or class", f.Name())
		}
		return model, nil
	default:
		return NoID, t.Unsupportedf(fn, "%s function %q has no model", f.Method(), f.Name())
	}
}

// BaseInterface returns the first interface that model implements.
func (t *Tree) BaseInterface(model ID) (*Interface, bool) {
	iface, ok := Get[*Interface](t, model)
	if !ok {
		return nil, false
	}
	for _, ref := range iface.Implements {
		if base, ok := Get[*Interface](t, ref.Definition); ok {
			return base, true
		}
	}
	return nil, false
}

// Discriminator returns the discriminator information of a model. An
// interface without its own information falls back to the class it was
// generated from, if any.
func (t *Tree) Discriminator(model ID, originalParent ID) DiscriminatorInformation {
	switch m := t.Element(model).(type) {
	case *Interface:
		if m.Discriminator.ShouldWriteDiscriminatorForInheritedType() {
			return m.Discriminator
		}
		if c, ok := Get[*Class](t, originalParent); ok {
			return c.Discriminator
		}
		return m.Discriminator
	case *Class:
		return m.Discriminator
	}
	return DiscriminatorInformation{}
}

// EnumLookup returns the EnumObject constant of an enum. Enums without
// options have no usable lookup object even when one is linked.
func (t *Tree) EnumLookup(enum ID) (*Constant, bool) {
	e, ok := Get[*Enum](t, enum)
	if !ok || len(e.children) == 0 {
		return nil, false
	}
	c, ok := Get[*Constant](t, e.Object)
	if !ok || c.Kind != ConstantEnumObject {
		return nil, false
	}
	return c, true
}
