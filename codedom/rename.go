package codedom

// RenameChild renames the descendant of scope named oldName, searching
// breadth-first across all kinds. Every type reference and using whose
// definition is the renamed element is updated, as is the name cache of its
// parent.
//
// All checks run before any mutation: on error the tree is unchanged. It
// reports false, with no error, when no descendant is named oldName.
// Renaming to the current name is a no-op.
func (t *Tree) RenameChild(scope ID, oldName, newName string) (bool, error) {
	if t.Element(scope) == nil {
		return false, t.newError(CodeUnknownElement, NoID, "unknown scope %d", scope)
	}
	target, ok := FindChild[Element](t, scope, oldName)
	if !ok {
		return false, nil
	}
	if oldName == newName {
		return true, nil
	}
	if newName == "" {
		return false, t.newError(CodeInvalidPlacement, target.ID(), "%s name must not be empty", target.ElementKind())
	}
	pb := t.nodes[target.Parent()].base()
	if _, exists := pb.byName[childKey{target.ElementKind(), newName}]; exists {
		return false, t.newError(CodeDuplicateName, target.Parent(), "cannot rename %q: duplicate %s name %q", oldName, target.ElementKind(), newName)
	}

	id := target.ID()
	delete(pb.byName, childKey{target.ElementKind(), oldName})
	pb.byName[childKey{target.ElementKind(), newName}] = id
	target.base().name = newName
	t.retarget(id, oldName, newName)
	return true, nil
}

// retarget rewrites the cached names of every reference to id.
func (t *Tree) retarget(id ID, oldName, newName string) {
	fix := func(r *TypeRef) {
		if r.Definition == id {
			r.Name = newName
		}
	}
	fixDiscriminator := func(d *DiscriminatorInformation) {
		for i := range d.Mappings {
			fix(&d.Mappings[i].Type)
		}
	}
	for _, el := range t.nodes[1:] {
		switch e := el.(type) {
		case *Interface:
			for i := range e.Implements {
				fix(&e.Implements[i])
			}
			fixDiscriminator(&e.Discriminator)
		case *Class:
			fixDiscriminator(&e.Discriminator)
		case *Property:
			fix(&e.Type)
		case *Parameter:
			fix(&e.Type)
		case *Function:
			fix(&e.ReturnType)
		}
		usings := el.base().usings
		for i := range usings {
			if usings[i].Declaration.Definition != id {
				continue
			}
			fix(&usings[i].Declaration)
			if usings[i].Name == oldName {
				usings[i].Name = newName
			}
		}
	}
}
