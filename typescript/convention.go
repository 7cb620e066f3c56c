package typescript

import (
	"github.com/broady/clientgen/codedom"
)

// streamTypeName is the translated name of the byte stream type.
const streamTypeName = "ArrayBuffer"

// Convention spells types the way the TypeScript runtime expects. It
// implements serialization.Convention.
type Convention struct {
	tree *codedom.Tree
}

// NewConvention returns the TypeScript naming convention for tree.
func NewConvention(tree *codedom.Tree) *Convention {
	return &Convention{tree: tree}
}

// TypeString returns the name of ref as seen from context. Declarations
// imported under an alias by the enclosing file are spelled with the
// alias. Enums without options are plain strings.
func (c *Convention) TypeString(ref codedom.TypeRef, context codedom.ID) string {
	if !ref.Definition.Valid() {
		return c.TranslateType(ref)
	}
	el := c.tree.Element(ref.Definition)
	if el == nil {
		return ref.Name
	}
	if _, ok := el.(*codedom.Enum); ok {
		if _, ok := c.tree.EnumLookup(el.ID()); !ok {
			return "string"
		}
	}
	if alias := c.alias(ref.Definition, context); alias != "" {
		return alias
	}
	return el.Name()
}

// alias returns the import alias of def declared on context or on the
// file or namespace that holds it.
func (c *Convention) alias(def, context codedom.ID) string {
	scopes := []codedom.ID{context}
	if f, ok := codedom.Ancestor[*codedom.File](c.tree, context); ok {
		scopes = append(scopes, f.ID())
	} else if ns, ok := codedom.Ancestor[*codedom.Namespace](c.tree, context); ok {
		scopes = append(scopes, ns.ID())
	}
	for _, scope := range scopes {
		for _, u := range c.tree.Usings(scope) {
			if u.Alias != "" && u.Declaration.Definition == def {
				return u.Alias
			}
		}
	}
	return ""
}

// TranslateType maps a primitive type name to TypeScript.
func (c *Convention) TranslateType(ref codedom.TypeRef) string {
	switch ref.Name {
	case "":
		return "object"
	case "integer", "int32", "int64", "int", "long", "float", "double", "decimal", "byte", "sbyte":
		return "number"
	case "binary":
		return streamTypeName
	case "base64", "base64url":
		return "string"
	case "guid", "Guid":
		return "Guid"
	case "string", "String", "boolean", "Boolean", "object", "Object", "void", "Void":
		return lowerFirst(ref.Name)
	case "DateTimeOffset":
		return "Date"
	case "DateOnly", "TimeOnly":
		return ref.Name
	case "TimeSpan":
		return "Duration"
	default:
		return upperFirst(ref.Name)
	}
}

// StreamTypeName returns the byte stream type name.
func (c *Convention) StreamTypeName() string { return streamTypeName }

// typeExpr returns the full type expression of ref, including array
// brackets. A flags enum is always an array of its values.
func (c *Convention) typeExpr(ref codedom.TypeRef, context codedom.ID) string {
	s := c.TypeString(ref, context)
	if e, ok := codedom.Get[*codedom.Enum](c.tree, ref.Definition); ok && e.Flags && s != "string" {
		return s + "[]"
	}
	if ref.IsCollection() {
		return s + "[]"
	}
	return s
}
