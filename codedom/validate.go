package codedom

// Validate checks the cross references of the tree and returns every
// problem found. A tree that validates cleanly can be emitted without
// structural errors caused by dangling links.
func (t *Tree) Validate() []error {
	var errs []error
	ref := func(owner ID, what string, r TypeRef) {
		if r.Definition.Valid() && t.Element(r.Definition) == nil {
			errs = append(errs, t.Structuralf(owner, "%s references unknown element %d", what, r.Definition))
		}
	}

	for el := range t.All() {
		id := el.ID()
		switch e := el.(type) {
		case *Interface:
			for _, impl := range e.Implements {
				ref(id, "implements", impl)
				if impl.Definition.Valid() && !t.isModel(impl.Definition) {
					errs = append(errs, t.Structuralf(id, "implements %q which is not an interface or class", impl.Name))
				}
			}
			errs = append(errs, t.validateDiscriminator(id, e.Discriminator)...)
		case *Class:
			if e.AssociatedInterface.Valid() {
				if _, ok := Get[*Interface](t, e.AssociatedInterface); !ok {
					errs = append(errs, t.Structuralf(id, "associated interface %d is not an interface", e.AssociatedInterface))
				}
			}
			errs = append(errs, t.validateDiscriminator(id, e.Discriminator)...)
		case *Property:
			ref(id, "property type", e.Type)
		case *Parameter:
			ref(id, "parameter type", e.Type)
		case *Function:
			ref(id, "return type", e.ReturnType)
			switch e.Body.(type) {
			case *SerializerBody, *DeserializerBody, *FactoryBody:
				if _, err := t.FunctionModel(id); err != nil {
					errs = append(errs, err)
				}
			}
		case *Enum:
			if e.Object.Valid() {
				c, ok := Get[*Constant](t, e.Object)
				if !ok || c.Kind != ConstantEnumObject || c.Origin != id {
					errs = append(errs, t.Structuralf(id, "enum object %d is not an EnumObject constant derived from this enum", e.Object))
				}
			}
		case *Constant:
			errs = append(errs, t.validateConstant(e)...)
		}
	}

	errs = append(errs, t.detectCircularImplements()...)
	return errs
}

func (t *Tree) validateDiscriminator(owner ID, d DiscriminatorInformation) []error {
	var errs []error
	seen := make(map[string]bool, len(d.Mappings))
	for _, m := range d.Mappings {
		if seen[m.Value] {
			errs = append(errs, t.Structuralf(owner, "duplicate discriminator value %q", m.Value))
		}
		seen[m.Value] = true
		if !t.isModel(m.Type.Definition) {
			errs = append(errs, t.Structuralf(owner, "discriminator value %q maps to %q which is not an interface or class", m.Value, m.Type.Name))
		}
	}
	return errs
}

func (t *Tree) validateConstant(c *Constant) []error {
	switch c.Kind {
	case ConstantQueryParametersMapper:
		if _, ok := Get[*Interface](t, c.Origin); !ok {
			return []error{t.Structuralf(c.ID(), "query parameters mapper must derive from an interface")}
		}
	case ConstantEnumObject:
		if _, ok := Get[*Enum](t, c.Origin); !ok {
			return []error{t.Structuralf(c.ID(), "enum object must derive from an enum")}
		}
	case ConstantURITemplate, ConstantNavigationMetadata, ConstantRequestsMetadata:
		if _, ok := Get[*Interface](t, c.Origin); !ok {
			return []error{t.Structuralf(c.ID(), "%s constant must derive from an interface", c.Kind)}
		}
	}
	return nil
}

// detectCircularImplements reports cycles in interface inheritance.
func (t *Tree) detectCircularImplements() []error {
	var errs []error
	visited := make(map[ID]bool)
	inStack := make(map[ID]bool)

	var visit func(id ID)
	visit = func(id ID) {
		if inStack[id] {
			errs = append(errs, t.Structuralf(id, "circular inheritance detected"))
			return
		}
		if visited[id] {
			return
		}
		visited[id] = true
		inStack[id] = true
		if iface, ok := Get[*Interface](t, id); ok {
			for _, impl := range iface.Implements {
				if t.isModel(impl.Definition) {
					visit(impl.Definition)
				}
			}
		}
		inStack[id] = false
	}

	for el := range t.All() {
		if _, ok := el.(*Interface); ok {
			visit(el.ID())
		}
	}
	return errs
}
