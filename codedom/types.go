package codedom

// CollectionKind describes how a type reference is wrapped.
type CollectionKind int

const (
	CollectionNone CollectionKind = iota
	CollectionArray
	CollectionComplex
)

// String returns the string representation of the collection kind.
func (k CollectionKind) String() string {
	switch k {
	case CollectionNone:
		return "none"
	case CollectionArray:
		return "array"
	case CollectionComplex:
		return "complex"
	default:
		return "unknown"
	}
}

// TypeRef references a type. Definition is a non-owning link to the
// declaring element, or NoID for primitives. Name mirrors the name of the
// definition and is kept in sync by Tree.RenameChild.
type TypeRef struct {
	Name       string         `json:"name"`
	Definition ID             `json:"definition,omitempty"`
	Collection CollectionKind `json:"collection,omitempty"`
	Nullable   bool           `json:"nullable,omitempty"`
}

// Primitive returns a reference to a primitive type.
func Primitive(name string) TypeRef {
	return TypeRef{Name: name}
}

// Ref returns a reference to a type declared in the tree.
func (t *Tree) Ref(id ID) TypeRef {
	el := t.Element(id)
	if el == nil {
		return TypeRef{}
	}
	return TypeRef{Name: el.Name(), Definition: id}
}

// IsCollection reports whether the reference wraps a collection.
func (r TypeRef) IsCollection() bool {
	return r.Collection != CollectionNone
}

// Elem returns the element type of a collection reference.
func (r TypeRef) Elem() TypeRef {
	r.Collection = CollectionNone
	return r
}

// Array returns r wrapped in an array.
func (r TypeRef) Array() TypeRef {
	r.Collection = CollectionArray
	return r
}

// IsPrimitive reports whether the reference has no definition in the tree.
func (r TypeRef) IsPrimitive() bool {
	return !r.Definition.Valid()
}

// DiscriminatorMapping maps one wire value to a concrete type.
type DiscriminatorMapping struct {
	Value string
	Type  TypeRef
}

// DiscriminatorInformation describes how a polymorphic payload carries its
// concrete type. Mappings keep declaration order.
type DiscriminatorInformation struct {
	PropertyName string
	Mappings     []DiscriminatorMapping
}

// ShouldWriteDiscriminatorForInheritedType reports whether the discriminator
// names a property and maps at least one value.
func (d DiscriminatorInformation) ShouldWriteDiscriminatorForInheritedType() bool {
	return d.PropertyName != "" && len(d.Mappings) > 0
}

// Using is an import declaration held by an element. Usings are compared
// by value.
type Using struct {
	Name        string  `json:"name"`
	From        string  `json:"from,omitempty"`
	Declaration TypeRef `json:"declaration"`
	Alias       string  `json:"alias,omitempty"`
	IsExternal  bool    `json:"external,omitempty"`
	IsTypeOnly  bool    `json:"typeOnly,omitempty"`
}
